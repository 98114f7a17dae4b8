package ethereum

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonesdao/onboarding/internal/mocks"
)

var (
	tokenAddress = common.HexToAddress("0x3333333333333333333333333333333333333333")
	holder       = common.HexToAddress("0x1111111111111111111111111111111111111111")
)

func TestChainReaderBalanceAt(t *testing.T) {
	client := mocks.NewMockEthClient(gomock.NewController(t))
	reader := NewChainReader(client)

	client.EXPECT().BalanceAt(gomock.Any(), holder, nil).Return(big.NewInt(7), nil)
	balance, err := reader.BalanceAt(context.Background(), holder)
	require.NoError(t, err)
	assert.Equal(t, int64(7), balance.Int64())

	client.EXPECT().BalanceAt(gomock.Any(), holder, nil).Return(nil, errors.New("timeout"))
	_, err = reader.BalanceAt(context.Background(), holder)
	assert.Error(t, err)
}

func TestChainReaderToken(t *testing.T) {
	client := mocks.NewMockEthClient(gomock.NewController(t))
	reader := NewChainReader(client)

	decimalsOut, err := erc20ReadABI.Methods["decimals"].Outputs.Pack(uint8(6))
	require.NoError(t, err)
	balanceOut, err := erc20ReadABI.Methods["balanceOf"].Outputs.Pack(big.NewInt(2_500_000))
	require.NoError(t, err)

	client.EXPECT().CallContract(gomock.Any(), gomock.Any(), nil).
		DoAndReturn(func(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
			assert.Equal(t, tokenAddress, *msg.To)
			assert.Equal(t, erc20ReadABI.Methods["decimals"].ID, msg.Data[:4])
			return decimalsOut, nil
		})
	decimals, err := reader.TokenDecimals(context.Background(), tokenAddress)
	require.NoError(t, err)
	assert.Equal(t, uint8(6), decimals)

	client.EXPECT().CallContract(gomock.Any(), gomock.Any(), nil).
		DoAndReturn(func(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
			assert.Equal(t, erc20ReadABI.Methods["balanceOf"].ID, msg.Data[:4])
			assert.Equal(t, holder.Bytes(), msg.Data[4+12:])
			return balanceOut, nil
		})
	balance, err := reader.TokenBalanceOf(context.Background(), tokenAddress, holder)
	require.NoError(t, err)
	assert.Equal(t, int64(2_500_000), balance.Int64())

	client.EXPECT().CallContract(gomock.Any(), gomock.Any(), nil).Return([]byte{}, nil)
	_, err = reader.TokenDecimals(context.Background(), tokenAddress)
	assert.Error(t, err)
}

func TestChainReaderTransactionReceipt(t *testing.T) {
	client := mocks.NewMockEthClient(gomock.NewController(t))
	reader := NewChainReader(client)
	hash := common.HexToHash("0x01")

	client.EXPECT().TransactionReceipt(gomock.Any(), hash).Return(nil, ethereum.NotFound)
	_, err := reader.TransactionReceipt(context.Background(), hash)
	assert.ErrorIs(t, err, ethereum.NotFound)

	client.EXPECT().TransactionReceipt(gomock.Any(), hash).Return(&types.Receipt{Status: types.ReceiptStatusSuccessful}, nil)
	receipt, err := reader.TransactionReceipt(context.Background(), hash)
	require.NoError(t, err)
	assert.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
}
