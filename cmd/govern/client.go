package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/daoforge/govern/api"
	"github.com/daoforge/govern/crypto"
	"github.com/daoforge/govern/types"
)

func postJSON(url string, body any, out any) error {
	dat, err := json.Marshal(body)
	if err != nil {
		return err
	}
	res, err := http.Post(url, "application/json", bytes.NewReader(dat))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	dat, err = io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("status %v: %s", res.StatusCode, dat)
	}
	return json.Unmarshal(dat, out)
}

func queryInfo(url string) (*api.InfoResponse, error) {
	res, err := http.Get(url + "/info")
	if err != nil {
		fmt.Printf("query info err:%v\n", err)
		return nil, err
	}
	defer res.Body.Close()
	dat, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	var info api.InfoResponse
	if err = json.Unmarshal(dat, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func queryAccount(url string, address string) (*types.Account, error) {
	var act types.Account
	err := postJSON(url+"/getAccount", map[string]string{"address": address}, &act)
	if err != nil {
		fmt.Printf("query account err:%v\n", err)
		return nil, err
	}
	return &act, nil
}

// signAndSend assembles the envelope, signs it with the key file and
// posts it to the node. A zero nonce means "ask the node"; registration
// always goes out with nonce zero.
func signAndSend(url, skey string, nonce uint64, typ api.TxType, payload any, noSend bool) {
	pv := crypto.LoadFilePV(skey)
	sender := pv.Address()

	info, err := queryInfo(url)
	if err != nil {
		return
	}
	if nonce == 0 && typ != api.TxTypeRegister {
		act, err := queryAccount(url, sender.Hex())
		if err != nil {
			return
		}
		nonce = act.Nonce
	}

	env := &api.Envelope{
		Version: api.TxVersion1,
		Type:    typ,
		Nonce:   nonce,
		Sender:  sender,
		Tx:      payload,
	}
	dat, err := env.SigData([]byte(info.ServiceID))
	if err != nil {
		fmt.Printf("tx sign data err:%v\n", err)
		return
	}
	sig, err := pv.Sign(dat)
	if err != nil {
		fmt.Printf("sign tx err:%v\n", err)
		return
	}
	env.Sig = [][]byte{sig}
	if noSend {
		fmt.Println("transaction signature:")
		fmt.Println(hex.EncodeToString(sig))
		return
	}

	var res api.TxResponse
	if err := postJSON(url+"/tx", env, &res); err != nil {
		fmt.Printf("send tx err:%v\n", err)
		return
	}
	dat, _ = json.Marshal(res)
	fmt.Printf("%v\n", string(dat))
}
