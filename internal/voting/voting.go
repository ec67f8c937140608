// Package voting carries the poll identifiers, vote outcomes and the outbound
// cast-vote contract message shared by the verification handlers.
package voting

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PollID identifies one voting round on a voting-verifier contract instance.
// It serializes as a decimal string, matching the contract's Uint64 encoding.
type PollID uint64

func (id PollID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// MarshalJSON encodes the id as a quoted decimal.
func (id PollID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON accepts both quoted and bare decimals.
func (id *PollID) UnmarshalJSON(data []byte) error {
	parsed, err := ParsePollID(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParsePollID parses a decimal poll id, quoted or bare.
func ParsePollID(s string) (PollID, error) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) >= 2 && trimmed[0] == '"' && trimmed[len(trimmed)-1] == '"' {
		trimmed = trimmed[1 : len(trimmed)-1]
	}
	v, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid poll id %q: %w", s, err)
	}
	return PollID(v), nil
}

// Vote is this node's conclusion for one claimed message. The values are the
// wire strings the voting-verifier contract expects.
type Vote string

const (
	VoteSucceededOnChain Vote = "succeeded_on_chain"
	VoteFailedOnChain    Vote = "failed_on_chain"
	VoteNotFound         Vote = "not_found"
)

// Coin is a denominated amount attached to a contract execution. Votes attach
// no funds; the type exists so the message shape matches the chain's.
type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// MsgExecuteContract is one outbound contract-invocation payload.
type MsgExecuteContract struct {
	Sender   string          `json:"sender"`
	Contract string          `json:"contract"`
	Msg      json.RawMessage `json:"msg"`
	Funds    []Coin          `json:"funds,omitempty"`
}

// VotePayload is the execute argument of the contract's vote method.
type VotePayload struct {
	PollID PollID `json:"poll_id"`
	Votes  []Vote `json:"votes"`
}

type voteExec struct {
	Vote VotePayload `json:"vote"`
}

// NewVoteMsg builds the cast-vote execution for one poll, votes in message
// order, sent by the verifier with no funds attached. Panics if the fixed
// payload shape fails to serialize.
func NewVoteMsg(sender, contract string, pollID PollID, votes []Vote) MsgExecuteContract {
	payload, err := json.Marshal(voteExec{Vote: VotePayload{PollID: pollID, Votes: votes}})
	if err != nil {
		panic(fmt.Sprintf("vote msg for poll %s must serialize: %v", pollID, err))
	}
	return MsgExecuteContract{
		Sender:   sender,
		Contract: contract,
		Msg:      payload,
	}
}

// DecodeVoteMsg recovers the vote payload from an execute message, reporting
// false when the message is not a cast-vote execution.
func DecodeVoteMsg(raw json.RawMessage) (VotePayload, bool) {
	var exec voteExec
	if err := json.Unmarshal(raw, &exec); err != nil {
		return VotePayload{}, false
	}
	if exec.Vote.Votes == nil {
		return VotePayload{}, false
	}
	return exec.Vote, true
}
