package db

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"crosschain-verification/internal/logger"
	"crosschain-verification/internal/voting"
)

// Journal behavior against a live postgres is covered by deployment smoke
// tests; here we pin down the nil-database and non-vote-message paths.

func TestJournalWithoutDatabase(t *testing.T) {
	j := NewJournal(nil, logger.New(false))

	msg := voting.NewVoteMsg("axelar1verifier", "axelar1contract", 100, []voting.Vote{voting.VoteNotFound})
	require.NoError(t, j.Submit(context.Background(), []voting.MsgExecuteContract{msg}))
}

func TestJournalSkipsNonVoteMessages(t *testing.T) {
	j := NewJournal(nil, logger.New(false))

	msg := voting.MsgExecuteContract{
		Sender:   "axelar1verifier",
		Contract: "axelar1contract",
		Msg:      json.RawMessage(`{"transfer":{}}`),
	}
	require.NoError(t, j.Submit(context.Background(), []voting.MsgExecuteContract{msg}))
}
