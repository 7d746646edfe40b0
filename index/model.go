package index

// sqlite read models

type Proposal struct {
	Id              string `gorm:"primaryKey" json:"id"`
	Proposer        string `json:"proposer"`
	Description     string `json:"description"`
	Snapshot        uint64 `json:"snapshot"`
	VotingStart     uint64 `json:"voting_start"`
	VotingEnd       uint64 `json:"voting_end"`
	ForWeight       uint64 `json:"for_weight"`
	AgainstWeight   uint64 `json:"against_weight"`
	AbstainWeight   uint64 `json:"abstain_weight"`
	OperationId     string `json:"operation_id"`
	ReadyAt         uint64 `json:"ready_at"`
	Canceled        bool   `json:"canceled"`
	Executed        bool   `json:"executed"`
	CreateTimestamp int64  `json:"create_timestamp"`
}

type Vote struct {
	Id       uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Proposal string `json:"proposal"`
	Voter    string `json:"voter"`
	Support  uint64 `json:"support"`
	Weight   uint64 `json:"weight"`
	Reason   string `json:"reason"`
	Time     uint64 `json:"time"`
}

type Operation struct {
	Id          string `gorm:"primaryKey" json:"id"`
	Predecessor string `json:"predecessor"`
	Salt        string `json:"salt"`
	ReadyAt     uint64 `json:"ready_at"`
	Actions     int    `json:"actions"`
	Done        bool   `json:"done"`
	Canceled    bool   `json:"canceled"`
}

type RoleChange struct {
	Id      uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Role    string `json:"role"`
	Account string `json:"account"`
	Granted bool   `json:"granted"`
}
