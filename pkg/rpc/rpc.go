// Package rpc reads chain state over JSON-RPC. Every call walks the
// configured RPC URLs in order and returns the first that answers, together
// with the URLs that failed.
package rpc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"chainview/pkg/models"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

var CallTimeout = 10 * time.Second

var ErrNoRPC = errors.New("no rpc urls configured")

var (
	symbolSelector   = []byte{0x95, 0xd8, 0x9b, 0x41}
	decimalsSelector = []byte{0x31, 0x3c, 0xe5, 0x67}
)

// FetchChainHead returns the latest header of the first RPC that answers.
func FetchChainHead(ctx context.Context, rpcURLs []string) (models.ChainHead, []string, error) {
	if len(rpcURLs) == 0 {
		return models.ChainHead{}, nil, ErrNoRPC
	}
	var failed []string
	var lastErr error
	for _, rpcURL := range rpcURLs {
		head, err := fetchHead(ctx, rpcURL)
		if err != nil {
			failed = append(failed, rpcURL)
			lastErr = err
			continue
		}
		return head, failed, nil
	}
	return models.ChainHead{}, failed, fmt.Errorf("chain head: %w", lastErr)
}

func fetchHead(parent context.Context, rpcURL string) (models.ChainHead, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(parent, CallTimeout)
	defer cancel()

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return models.ChainHead{}, err
	}
	defer client.Close()

	header, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		return models.ChainHead{}, err
	}
	latency := time.Since(start)
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return models.ChainHead{}, err
	}
	return models.ChainHead{
		ChainID: chainID.Int64(),
		Number:  header.Number.Uint64(),
		Time:    time.Unix(int64(header.Time), 0).UTC(),
		RPCURL:  rpcURL,
		Latency: latency,
	}, nil
}

// Enrich fills the on-chain facts of a name: whether it is a contract and,
// for tokens, the symbol and decimals.
func Enrich(ctx context.Context, rpcURLs []string, n models.Name) (models.Name, error) {
	if len(rpcURLs) == 0 {
		return n, ErrNoRPC
	}
	target := common.HexToAddress(n.Address)
	var lastErr error
	for _, rpcURL := range rpcURLs {
		out, err := enrichOne(ctx, rpcURL, target, n)
		if err != nil {
			lastErr = err
			continue
		}
		return out, nil
	}
	return n, fmt.Errorf("enrich %s: %w", n.Address, lastErr)
}

func enrichOne(parent context.Context, rpcURL string, target common.Address, n models.Name) (models.Name, error) {
	ctx, cancel := context.WithTimeout(parent, CallTimeout)
	defer cancel()
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return n, err
	}
	defer client.Close()

	code, err := client.CodeAt(ctx, target, nil)
	if err != nil {
		return n, err
	}
	n.IsContract = len(code) > 0
	if !n.IsContract {
		return n, nil
	}

	res, err := client.CallContract(ctx, ethereum.CallMsg{To: &target, Data: symbolSelector}, nil)
	if err == nil {
		if sym := decodeSymbol(res); sym != "" {
			n.Symbol = sym
		}
	}
	res, err = client.CallContract(ctx, ethereum.CallMsg{To: &target, Data: decimalsSelector}, nil)
	if err == nil && len(res) > 0 {
		n.Decimals = int(new(big.Int).SetBytes(res).Int64())
	}
	return n, nil
}

// decodeSymbol handles both bytes32 and string return encodings.
func decodeSymbol(res []byte) string {
	switch {
	case len(res) == 32:
		return string(bytes.TrimRight(res, "\x00"))
	case len(res) >= 64:
		length := new(big.Int).SetBytes(res[32:64]).Int64()
		if length > 0 && 64+int(length) <= len(res) {
			return string(res[64 : 64+length])
		}
	}
	return ""
}

// ScanTransactions walks back up to depth blocks from the head and returns
// at most limit transactions sent from or to address, newest first.
func ScanTransactions(ctx context.Context, rpcURLs []string, address string, depth, limit int) ([]models.ExportTx, []string, error) {
	if len(rpcURLs) == 0 {
		return nil, nil, ErrNoRPC
	}
	var failed []string
	var lastErr error
	target := common.HexToAddress(address)
	for _, rpcURL := range rpcURLs {
		txs, err := scanOne(ctx, rpcURL, target, depth, limit)
		if err != nil {
			failed = append(failed, rpcURL)
			lastErr = err
			continue
		}
		return txs, failed, nil
	}
	return nil, failed, fmt.Errorf("scan %s: %w", address, lastErr)
}

func scanOne(parent context.Context, rpcURL string, target common.Address, depth, limit int) ([]models.ExportTx, error) {
	ctx, cancel := context.WithTimeout(parent, CallTimeout)
	defer cancel()
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	header, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, err
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	signer := types.NewLondonSigner(chainID)

	var txs []models.ExportTx
	var blockErr error
	for i := 0; i < depth && len(txs) < limit; i++ {
		num := new(big.Int).Sub(header.Number, big.NewInt(int64(i)))
		if num.Sign() < 0 {
			break
		}
		block, err := client.BlockByNumber(ctx, num)
		if err != nil {
			blockErr = err
			continue
		}
		for idx, tx := range block.Transactions() {
			if len(txs) >= limit {
				break
			}
			from, err := types.Sender(signer, tx)
			if err != nil {
				continue
			}
			isTo := tx.To() != nil && *tx.To() == target
			if from != target && !isTo {
				continue
			}
			row := models.ExportTx{
				Hash:             tx.Hash().Hex(),
				BlockNumber:      block.NumberU64(),
				TransactionIndex: uint64(idx),
				From:             from.Hex(),
				Value:            tx.Value().String(),
				Timestamp:        int64(block.Time()),
			}
			if tx.To() != nil {
				row.To = tx.To().Hex()
			}
			txs = append(txs, row)
		}
	}
	if blockErr != nil && len(txs) == 0 {
		return nil, blockErr
	}
	return txs, nil
}
