package evm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ReceiptFetcher is the subset of the Ethereum RPC used to collect evidence.
// *ethclient.Client satisfies it.
type ReceiptFetcher interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*gethtypes.Receipt, error)
}

// Client implements EvidenceSource against an EVM node.
type Client struct {
	fetcher ReceiptFetcher
}

// NewClient wraps a receipt fetcher.
func NewClient(fetcher ReceiptFetcher) *Client {
	return &Client{fetcher: fetcher}
}

// Dial connects to an EVM RPC endpoint and returns an evidence client.
func Dial(endpoint string) (*Client, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return nil, fmt.Errorf("evm endpoint required")
	}
	eth, err := ethclient.Dial(trimmed)
	if err != nil {
		return nil, fmt.Errorf("dial evm endpoint: %w", err)
	}
	return NewClient(eth), nil
}

// TransactionsWithEvidence fetches receipts for the requested transactions.
// Transactions the node does not know are omitted from the result; any other
// fetch failure aborts the whole call.
func (c *Client) TransactionsWithEvidence(ctx context.Context, txIDs []common.Hash) (map[common.Hash]TxEvidence, error) {
	evidence := make(map[common.Hash]TxEvidence, len(txIDs))
	for _, txID := range txIDs {
		receipt, err := c.fetcher.TransactionReceipt(ctx, txID)
		if err != nil {
			if errors.Is(err, ethereum.NotFound) {
				continue
			}
			return nil, fmt.Errorf("fetch receipt %s: %w", txID.Hex(), err)
		}
		if receipt == nil {
			continue
		}
		logs := make([]gethtypes.Log, 0, len(receipt.Logs))
		for _, log := range receipt.Logs {
			if log != nil {
				logs = append(logs, *log)
			}
		}
		evidence[txID] = TxEvidence{
			TxID:    txID,
			Success: receipt.Status == gethtypes.ReceiptStatusSuccessful,
			Logs:    logs,
		}
	}
	return evidence, nil
}
