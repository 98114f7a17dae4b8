package domain

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Chain represents the ledger network identifier using CAIP-2 format
type Chain string

const (
	ChainPlatONMainnet   Chain = "eip155:210425"
	ChainPlatONDevnet    Chain = "eip155:20250407"
	ChainEthereumMainnet Chain = "eip155:1"
	ChainEthereumSepolia Chain = "eip155:11155111"
)

// IsValidChain checks if a chain is a well-formed EVM CAIP-2 identifier
func IsValidChain(chain Chain) bool {
	_, err := chain.ChainID()
	return err == nil
}

// ChainID returns the numeric EIP-155 chain id of the chain
func (c Chain) ChainID() (*big.Int, error) {
	ns, ref, ok := strings.Cut(string(c), ":")
	if !ok || ns != "eip155" {
		return nil, fmt.Errorf("unsupported chain: %q", c)
	}
	id, err := strconv.ParseUint(ref, 10, 64)
	if err != nil || id == 0 {
		return nil, fmt.Errorf("invalid chain reference: %q", c)
	}
	return new(big.Int).SetUint64(id), nil
}

// ChainFromID builds the CAIP-2 identifier for an EIP-155 chain id
func ChainFromID(id *big.Int) Chain {
	return Chain(fmt.Sprintf("eip155:%s", id.String()))
}

// SubmissionStatus is the review state of an onboarding submission
type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "pending"
	SubmissionStatusApproved SubmissionStatus = "approved"
	SubmissionStatusRejected SubmissionStatus = "rejected"

	// SubmissionStatusNotSubmitted is reported for addresses with no active row.
	// It is never persisted.
	SubmissionStatusNotSubmitted SubmissionStatus = "not_submitted"
)

// Valid reports whether the status is one of the persisted states
func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionStatusPending, SubmissionStatusApproved, SubmissionStatusRejected:
		return true
	}
	return false
}

// transitions lists the allowed review edges
var transitions = map[SubmissionStatus][]SubmissionStatus{
	SubmissionStatusPending:  {SubmissionStatusApproved, SubmissionStatusRejected},
	SubmissionStatusRejected: {SubmissionStatusPending},
}

// CanTransition reports whether a submission may move from one status to another
func CanTransition(from, to SubmissionStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AssetKind identifies which asset a disbursement moves
type AssetKind string

const (
	AssetNative AssetKind = "native"
	AssetToken  AssetKind = "token"
)

// Valid reports whether the asset kind is known
func (a AssetKind) Valid() bool {
	return a == AssetNative || a == AssetToken
}

// Contacts holds the optional social handles of a submission
type Contacts struct {
	Discord  string `json:"discord"`
	WeChat   string `json:"wechat"`
	Telegram string `json:"telegram"`
	Forum    string `json:"forum"`
}

// Normalize trims surrounding whitespace from every handle
func (c Contacts) Normalize() Contacts {
	return Contacts{
		Discord:  strings.TrimSpace(c.Discord),
		WeChat:   strings.TrimSpace(c.WeChat),
		Telegram: strings.TrimSpace(c.Telegram),
		Forum:    strings.TrimSpace(c.Forum),
	}
}

// Empty reports whether no handle is set
func (c Contacts) Empty() bool {
	return c.Discord == "" && c.WeChat == "" && c.Telegram == "" && c.Forum == ""
}

// NormalizeAddress lowercases a hex wallet address
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// IsValidAddress checks that the address is a 20-byte hex address with 0x prefix
func IsValidAddress(address string) bool {
	address = strings.TrimSpace(address)
	return strings.HasPrefix(address, "0x") && common.IsHexAddress(address)
}
