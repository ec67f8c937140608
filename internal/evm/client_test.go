package evm

import (
	"context"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fetcherFunc func(ctx context.Context, txHash common.Hash) (*gethtypes.Receipt, error)

func (f fetcherFunc) TransactionReceipt(ctx context.Context, txHash common.Hash) (*gethtypes.Receipt, error) {
	return f(ctx, txHash)
}

func TestTransactionsWithEvidence(t *testing.T) {
	found := common.HexToHash("0x01")
	missing := common.HexToHash("0x02")
	failed := common.HexToHash("0x03")

	client := NewClient(fetcherFunc(func(_ context.Context, txHash common.Hash) (*gethtypes.Receipt, error) {
		switch txHash {
		case found:
			return &gethtypes.Receipt{
				Status: gethtypes.ReceiptStatusSuccessful,
				Logs:   []*gethtypes.Log{{Address: common.HexToAddress("0xaa")}, nil},
			}, nil
		case failed:
			return &gethtypes.Receipt{Status: gethtypes.ReceiptStatusFailed}, nil
		default:
			return nil, ethereum.NotFound
		}
	}))

	evidence, err := client.TransactionsWithEvidence(context.Background(), []common.Hash{found, missing, failed})
	require.NoError(t, err)

	require.Len(t, evidence, 2)
	assert.NotContains(t, evidence, missing)

	assert.True(t, evidence[found].Success)
	assert.Equal(t, found, evidence[found].TxID)
	// nil log entries are dropped during conversion
	assert.Len(t, evidence[found].Logs, 1)

	assert.False(t, evidence[failed].Success)
}

func TestTransactionsWithEvidenceEmptyInput(t *testing.T) {
	client := NewClient(fetcherFunc(func(_ context.Context, _ common.Hash) (*gethtypes.Receipt, error) {
		t.Fatal("fetcher must not be called for an empty id set")
		return nil, nil
	}))

	evidence, err := client.TransactionsWithEvidence(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, evidence)
}

func TestTransactionsWithEvidenceFetchError(t *testing.T) {
	client := NewClient(fetcherFunc(func(_ context.Context, _ common.Hash) (*gethtypes.Receipt, error) {
		return nil, fmt.Errorf("connection refused")
	}))

	_, err := client.TransactionsWithEvidence(context.Background(), []common.Hash{common.HexToHash("0x01")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestDialRequiresEndpoint(t *testing.T) {
	_, err := Dial("  ")
	require.Error(t, err)
}
