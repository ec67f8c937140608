// Package handler turns observed poll-started events into cast-vote messages.
package handler

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/ethereum/go-ethereum/common"

	"crosschain-verification/internal/events"
	"crosschain-verification/internal/evm"
	"crosschain-verification/internal/logger"
	"crosschain-verification/internal/voting"
)

var (
	// ErrDeserializeEvent marks a poll-started event whose payload could not
	// be decoded. Retrying the same event cannot help; the caller should
	// surface it.
	ErrDeserializeEvent = errors.New("failed to deserialize poll started event")
	// ErrEvidenceFetch marks a failed evidence fetch. The caller owns any
	// retry or backoff policy.
	ErrEvidenceFetch = errors.New("failed to fetch transaction evidence")
)

// HeightSource is a non-blocking snapshot read of the latest chain height.
// *heights.Cell satisfies it.
type HeightSource interface {
	Latest() uint64
}

// Handler verifies the messages of one poll against source-chain evidence and
// produces this verifier's vote. It holds no mutable state across calls and is
// safe for concurrent use on different events.
type Handler struct {
	verifier       string
	votingContract string
	source         evm.EvidenceSource
	heights        HeightSource
	log            *logger.Logger
}

// New builds a handler voting as verifier on polls of the given
// voting-verifier contract.
func New(verifier, votingContract string, source evm.EvidenceSource, heights HeightSource, log *logger.Logger) *Handler {
	return &Handler{
		verifier:       verifier,
		votingContract: votingContract,
		source:         source,
		heights:        heights,
		log:            log,
	}
}

// Handle processes one observed event. Events that do not concern this
// verifier resolve to an empty result: polls of other contracts, unrelated
// event types, polls it does not participate in, and expired polls. Malformed
// poll events and evidence-fetch failures are reported as errors; no partial
// vote is ever emitted.
func (h *Handler) Handle(ctx context.Context, ev events.Event) ([]voting.MsgExecuteContract, error) {
	if ev.Contract != h.votingContract {
		return nil, nil
	}

	poll, err := events.ParsePollStarted(ev)
	if errors.Is(err, events.ErrEventTypeMismatch) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeserializeEvent, err)
	}

	if !slices.Contains(poll.Participants, h.verifier) {
		return nil, nil
	}

	if height := h.heights.Latest(); height >= poll.ExpiresAt {
		h.log.Printf("skipping expired poll %s (height %d, expired at %d)", poll.PollID, height, poll.ExpiresAt)
		return nil, nil
	}

	evidence, err := h.source.TransactionsWithEvidence(ctx, distinctTxIDs(poll.Messages))
	if err != nil {
		return nil, fmt.Errorf("%w: poll %s: %w", ErrEvidenceFetch, poll.PollID, err)
	}

	votes := make([]voting.Vote, len(poll.Messages))
	for i, msg := range poll.Messages {
		txEvidence, ok := evidence[msg.TxID]
		if !ok {
			votes[i] = voting.VoteNotFound
			continue
		}
		votes[i] = evm.VerifyMessage(poll.SourceGatewayAddress, txEvidence, msg)
	}

	return []voting.MsgExecuteContract{
		voting.NewVoteMsg(h.verifier, h.votingContract, poll.PollID, votes),
	}, nil
}

// distinctTxIDs collapses duplicate transaction ids, keeping first-seen order.
func distinctTxIDs(messages []events.Message) []common.Hash {
	seen := make(map[common.Hash]struct{}, len(messages))
	ids := make([]common.Hash, 0, len(messages))
	for _, msg := range messages {
		if _, ok := seen[msg.TxID]; ok {
			continue
		}
		seen[msg.TxID] = struct{}{}
		ids = append(ids, msg.TxID)
	}
	return ids
}
