package disbursement

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/bonesdao/onboarding/internal/adapter"
	"github.com/bonesdao/onboarding/internal/logger"
)

// NetworkChange reports that the signer moved away from the engine's session
type NetworkChange struct {
	Account common.Address
	ChainID *big.Int
}

func (c NetworkChange) String() string {
	return fmt.Sprintf("account %s on chain %s", c.Account.Hex(), c.ChainID.String())
}

// NetworkWatcher polls the signer and marks the engine stale when its account or chain changes
type NetworkWatcher struct {
	engine   *Engine
	signer   Signer
	clock    adapter.Clock
	interval time.Duration
}

// NewNetworkWatcher creates a watcher for engine's signer
func NewNetworkWatcher(engine *Engine, signer Signer, clock adapter.Clock, interval time.Duration) *NetworkWatcher {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &NetworkWatcher{
		engine:   engine,
		signer:   signer,
		clock:    clock,
		interval: interval,
	}
}

// Watch polls until ctx is done. Each change is sent once; the channel is closed on return.
func (w *NetworkWatcher) Watch(ctx context.Context) <-chan NetworkChange {
	changes := make(chan NetworkChange, 1)

	go func() {
		defer close(changes)

		for {
			select {
			case <-ctx.Done():
				return
			case <-w.clock.After(w.interval):
			}

			change, ok := w.check(ctx)
			if !ok {
				continue
			}

			w.engine.MarkStale(change.String())
			select {
			case changes <- change:
			case <-ctx.Done():
				return
			}
		}
	}()

	return changes
}

// check compares the signer with the engine session. Unreadable signers are skipped.
func (w *NetworkWatcher) check(ctx context.Context) (NetworkChange, bool) {
	account, chainID, ok := w.engine.Session()
	if !ok {
		return NetworkChange{}, false
	}

	currentChain, err := w.signer.ChainID(ctx)
	if err != nil {
		logger.DebugCtx(ctx, "Failed to read signer chain", zap.Error(err))
		return NetworkChange{}, false
	}
	currentAccount, err := w.signer.Account(ctx)
	if err != nil {
		logger.DebugCtx(ctx, "Failed to read signer account", zap.Error(err))
		return NetworkChange{}, false
	}

	if currentChain.Cmp(chainID) == 0 && currentAccount == account {
		return NetworkChange{}, false
	}
	return NetworkChange{Account: currentAccount, ChainID: currentChain}, true
}
