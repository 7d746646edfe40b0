package api

import (
	"net/http"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/gin-gonic/gin"

	"github.com/daoforge/govern/gov"
	"github.com/daoforge/govern/index"
	"github.com/daoforge/govern/timelock"
	"github.com/daoforge/govern/types"
)

type Service struct {
	engine     *gin.Engine
	logger     cmtlog.Logger
	listenAddr string
	serviceID  string

	clock    types.Clock
	registry *gov.Registry
	gateway  *timelock.Gateway
	accounts *Accounts
	indexer  *index.Indexer
}

func NewService(listenAddr, serviceID string, clock types.Clock, registry *gov.Registry,
	gateway *timelock.Gateway, accounts *Accounts, indexer *index.Indexer, logger cmtlog.Logger) *Service {
	r := gin.Default()
	s := &Service{
		engine:     r,
		logger:     logger.With("module", "api"),
		listenAddr: listenAddr,
		serviceID:  serviceID,
		clock:      clock,
		registry:   registry,
		gateway:    gateway,
		accounts:   accounts,
		indexer:    indexer,
	}
	s.engine.GET("/info", s.handleInfo)
	s.engine.POST("/tx", s.handleTx)
	s.engine.POST("/getProposals", s.handleGetProposals)
	s.engine.POST("/getVotes", s.handleGetVotes)
	s.engine.POST("/getOperations", s.handleGetOperations)
	s.engine.POST("/getAccount", s.handleGetAccount)
	s.engine.POST("/state", s.handleState)
	return s
}

func (s *Service) Start() error {
	return s.engine.Run(s.listenAddr)
}

type InfoResponse struct {
	ServiceID         string `json:"serviceId"`
	Time              uint64 `json:"time"`
	VotingDelay       uint64 `json:"votingDelay"`
	VotingPeriod      uint64 `json:"votingPeriod"`
	ProposalThreshold uint64 `json:"proposalThreshold"`
	MinDelay          uint64 `json:"minDelay"`
	Registry          string `json:"registry"`
}

func (s *Service) handleInfo(c *gin.Context) {
	c.JSON(http.StatusOK, InfoResponse{
		ServiceID:         s.serviceID,
		Time:              s.clock.Now(),
		VotingDelay:       s.registry.VotingDelay(),
		VotingPeriod:      s.registry.VotingPeriod(),
		ProposalThreshold: s.registry.ProposalThreshold(),
		MinDelay:          s.gateway.MinDelay(),
		Registry:          s.registry.Self().Hex(),
	})
}

type GetProposalsReq struct {
	ProposalId string `json:"proposalId"`
	Proposer   string `json:"proposer"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
}

type ProposalInfo struct {
	Proposal index.Proposal `json:"proposal"`
	State    string         `json:"state"`
	VoteCnt  int            `json:"voteCnt"`
}

type GetProposalsResponse struct {
	Proposals []ProposalInfo `json:"proposals"`
	Total     uint64         `json:"total"`
}

func (s *Service) handleGetProposals(c *gin.Context) {
	var response GetProposalsResponse
	response.Proposals = make([]ProposalInfo, 0)
	var requestData GetProposalsReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if requestData.ProposalId != "" {
		info, err := s.proposalInfoById(requestData.ProposalId)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		response.Proposals = append(response.Proposals, info)
		response.Total = 1
		c.JSON(http.StatusOK, response)
		return
	}

	var rows []index.Proposal
	var total uint64
	var err error
	if requestData.Proposer != "" {
		rows, total, err = s.indexer.GetProposalsByProposer(requestData.Proposer, requestData.Page, requestData.PageSize)
	} else {
		rows, total, err = s.indexer.GetProposals(requestData.Page, requestData.PageSize)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	response.Total = total
	for _, row := range rows {
		info, err := s.proposalInfoById(row.Id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		response.Proposals = append(response.Proposals, info)
	}
	c.JSON(http.StatusOK, response)
}

func (s *Service) proposalInfoById(id string) (ProposalInfo, error) {
	row, err := s.indexer.GetProposalById(id)
	if err != nil {
		return ProposalInfo{}, err
	}
	_, total, err := s.indexer.GetVotesByProposal(id, 0, 1)
	if err != nil {
		return ProposalInfo{}, err
	}
	st := s.registry.State(hashFromHex(id))
	return ProposalInfo{
		Proposal: row,
		State:    st.String(),
		VoteCnt:  int(total),
	}, nil
}

type GetVotesReq struct {
	ProposalId string `json:"proposalId"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
}

type GetVotesResponse struct {
	Votes []index.Vote `json:"votes"`
	Total uint64       `json:"total"`
}

func (s *Service) handleGetVotes(c *gin.Context) {
	var requestData GetVotesReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if requestData.ProposalId == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "proposalId is required"})
		return
	}
	votes, total, err := s.indexer.GetVotesByProposal(requestData.ProposalId, requestData.Page, requestData.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if votes == nil {
		votes = make([]index.Vote, 0)
	}
	c.JSON(http.StatusOK, GetVotesResponse{Votes: votes, Total: total})
}

type GetOperationsReq struct {
	OperationId string `json:"operationId"`
	Page        int    `json:"page"`
	PageSize    int    `json:"pageSize"`
}

type OperationInfo struct {
	Operation index.Operation `json:"operation"`
	State     string          `json:"state"`
}

type GetOperationsResponse struct {
	Operations []OperationInfo `json:"operations"`
	Total      uint64          `json:"total"`
}

func (s *Service) handleGetOperations(c *gin.Context) {
	var response GetOperationsResponse
	response.Operations = make([]OperationInfo, 0)
	var requestData GetOperationsReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if requestData.OperationId != "" {
		row, err := s.indexer.GetOperationById(requestData.OperationId)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		response.Operations = append(response.Operations, s.operationInfo(row))
		response.Total = 1
		c.JSON(http.StatusOK, response)
		return
	}
	rows, total, err := s.indexer.GetOperations(requestData.Page, requestData.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	response.Total = total
	for _, row := range rows {
		response.Operations = append(response.Operations, s.operationInfo(row))
	}
	c.JSON(http.StatusOK, response)
}

func (s *Service) operationInfo(row index.Operation) OperationInfo {
	return OperationInfo{
		Operation: row,
		State:     s.gateway.OperationState(hashFromHex(row.Id)).String(),
	}
}

type GetAccountReq struct {
	Address string `json:"address"`
}

func (s *Service) handleGetAccount(c *gin.Context) {
	var requestData GetAccountReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	acct, ok := s.accounts.Get(addressFromHex(requestData.Address))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrAccountNoexists.Error()})
		return
	}
	c.JSON(http.StatusOK, acct)
}

type StateReq struct {
	ProposalId string `json:"proposalId"`
}

type StateResponse struct {
	State    string          `json:"state"`
	Proposal *types.Proposal `json:"proposal,omitempty"`
}

func (s *Service) handleState(c *gin.Context) {
	var requestData StateReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := hashFromHex(requestData.ProposalId)
	st := s.registry.State(id)
	p, _ := s.registry.Proposal(id)
	c.JSON(http.StatusOK, StateResponse{State: st.String(), Proposal: p})
}
