package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/bonesdao/onboarding/internal/adapter"
	"github.com/bonesdao/onboarding/internal/disbursement"
	"github.com/bonesdao/onboarding/internal/domain"
)

// errCodeUnrecognizedChain is the EIP-3326 code for a chain the wallet does not know
const errCodeUnrecognizedChain = 4902

type nativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// addChainParams is the wallet_addEthereumChain parameter (EIP-3085)
type addChainParams struct {
	ChainID           *hexutil.Big   `json:"chainId"`
	ChainName         string         `json:"chainName"`
	NativeCurrency    nativeCurrency `json:"nativeCurrency"`
	RPCURLs           []string       `json:"rpcUrls"`
	BlockExplorerURLs []string       `json:"blockExplorerUrls,omitempty"`
}

type switchChainParams struct {
	ChainID *hexutil.Big `json:"chainId"`
}

// sendTxArgs is the eth_sendTransaction parameter
type sendTxArgs struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to"`
	Gas   hexutil.Uint64  `json:"gas"`
	Value *hexutil.Big    `json:"value"`
	Data  hexutil.Bytes   `json:"data,omitempty"`
}

// rpcSigner talks to an external wallet over JSON-RPC using the EIP-1193 method set
type rpcSigner struct {
	client adapter.RPCClient
}

// NewSigner creates a signer backed by a wallet's JSON-RPC endpoint
func NewSigner(client adapter.RPCClient) disbursement.Signer {
	return &rpcSigner{client: client}
}

// DialSigner connects to a wallet endpoint
func DialSigner(ctx context.Context, dialer adapter.EthClientDialer, url string) (disbursement.Signer, adapter.RPCClient, error) {
	client, err := dialer.DialRPC(ctx, url)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrSignerUnavailable, err)
	}
	return NewSigner(client), client, nil
}

func (s *rpcSigner) ChainID(ctx context.Context) (*big.Int, error) {
	var id hexutil.Big
	if err := s.client.CallContext(ctx, &id, "eth_chainId"); err != nil {
		return nil, fmt.Errorf("eth_chainId: %w", err)
	}
	return id.ToInt(), nil
}

func (s *rpcSigner) SwitchChain(ctx context.Context, chainID *big.Int) error {
	err := s.client.CallContext(ctx, nil, "wallet_switchEthereumChain", switchChainParams{
		ChainID: (*hexutil.Big)(chainID),
	})
	if err == nil {
		return nil
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == errCodeUnrecognizedChain {
		return fmt.Errorf("%w: %s", disbursement.ErrChainNotAdded, chainID.String())
	}
	return fmt.Errorf("wallet_switchEthereumChain: %w", err)
}

func (s *rpcSigner) AddChain(ctx context.Context, params disbursement.ChainParams) error {
	decimals := params.Decimals
	if decimals == 0 {
		decimals = domain.NativeDecimals
	}

	err := s.client.CallContext(ctx, nil, "wallet_addEthereumChain", addChainParams{
		ChainID:   (*hexutil.Big)(params.ChainID),
		ChainName: params.Name,
		NativeCurrency: nativeCurrency{
			Name:     params.Symbol,
			Symbol:   params.Symbol,
			Decimals: decimals,
		},
		RPCURLs:           params.RPCURLs,
		BlockExplorerURLs: params.ExplorerURLs,
	})
	if err != nil {
		return fmt.Errorf("wallet_addEthereumChain: %w", err)
	}
	return nil
}

// Account returns the first authorized account, requesting access when none is exposed
func (s *rpcSigner) Account(ctx context.Context) (common.Address, error) {
	var accounts []common.Address
	if err := s.client.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return common.Address{}, fmt.Errorf("eth_accounts: %w", err)
	}

	if len(accounts) == 0 {
		if err := s.client.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
			return common.Address{}, fmt.Errorf("eth_requestAccounts: %w", err)
		}
	}
	if len(accounts) == 0 {
		return common.Address{}, fmt.Errorf("%w: no account authorized", domain.ErrSignerUnavailable)
	}
	return accounts[0], nil
}

func (s *rpcSigner) SendTransaction(ctx context.Context, tx disbursement.TxRequest) (common.Hash, error) {
	value := tx.Value
	if value == nil {
		value = new(big.Int)
	}
	to := tx.To

	var hash common.Hash
	err := s.client.CallContext(ctx, &hash, "eth_sendTransaction", sendTxArgs{
		From:  tx.From,
		To:    &to,
		Gas:   hexutil.Uint64(tx.Gas),
		Value: (*hexutil.Big)(value),
		Data:  tx.Data,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("eth_sendTransaction: %w", err)
	}
	return hash, nil
}
