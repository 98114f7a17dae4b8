package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/bonesdao/onboarding/internal/adapter"
	"github.com/bonesdao/onboarding/internal/disbursement"
)

// erc20ReadABI covers the ERC-20 view functions the reader needs
var erc20ReadABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(`[
		{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"payable":false,"stateMutability":"view","type":"function"},
		{"constant":true,"inputs":[{"name":"account","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"}
	]`))
	if err != nil {
		panic(fmt.Sprintf("failed to parse ABI: %v", err))
	}
	return parsed
}()

type chainReader struct {
	client adapter.EthClient
}

// NewChainReader creates a ledger reader over an RPC node
func NewChainReader(client adapter.EthClient) disbursement.ChainReader {
	return &chainReader{client: client}
}

// BalanceAt returns the native balance of an account at the latest block
func (r *chainReader) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	balance, err := r.client.BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

// TokenDecimals fetches decimals() from an ERC-20 contract
func (r *chainReader) TokenDecimals(ctx context.Context, token common.Address) (uint8, error) {
	result, err := r.call(ctx, token, "decimals")
	if err != nil {
		return 0, err
	}

	var decimals uint8
	if err := erc20ReadABI.UnpackIntoInterface(&decimals, "decimals", result); err != nil {
		return 0, fmt.Errorf("failed to unpack result: %w", err)
	}
	return decimals, nil
}

// TokenBalanceOf fetches balanceOf(account) from an ERC-20 contract
func (r *chainReader) TokenBalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error) {
	result, err := r.call(ctx, token, "balanceOf", account)
	if err != nil {
		return nil, err
	}

	var balance *big.Int
	if err := erc20ReadABI.UnpackIntoInterface(&balance, "balanceOf", result); err != nil {
		return nil, fmt.Errorf("failed to unpack result: %w", err)
	}
	return balance, nil
}

// TransactionReceipt returns the receipt of a mined transaction, ethereum.NotFound while pending
func (r *chainReader) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return r.client.TransactionReceipt(ctx, hash)
}

func (r *chainReader) call(ctx context.Context, contract common.Address, method string, args ...interface{}) ([]byte, error) {
	data, err := erc20ReadABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack data: %w", err)
	}

	result, err := r.client.CallContract(ctx, ethereum.CallMsg{
		To:   &contract,
		Data: data,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call contract: %w", err)
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("contract %s returned no data for %s", contract.Hex(), method)
	}
	return result, nil
}
