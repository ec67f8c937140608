// Package evm fetches and corroborates transaction evidence from an
// EVM-compatible source chain.
package evm

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
)

// TxEvidence is the execution result needed to corroborate claimed messages
// from one transaction: whether it succeeded and the logs it emitted.
type TxEvidence struct {
	TxID    common.Hash
	Success bool
	Logs    []gethtypes.Log
}

// EvidenceSource returns evidence for the subset of the requested transactions
// it can find. Absent transactions are omitted from the result, never
// represented by placeholders. An empty request yields an empty result and no
// error. Implementations exist per supported chain.
type EvidenceSource interface {
	TransactionsWithEvidence(ctx context.Context, txIDs []common.Hash) (map[common.Hash]TxEvidence, error)
}
