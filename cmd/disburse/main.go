package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bonesdao/onboarding/internal/adapter"
	"github.com/bonesdao/onboarding/internal/client"
	"github.com/bonesdao/onboarding/internal/config"
	"github.com/bonesdao/onboarding/internal/disbursement"
	"github.com/bonesdao/onboarding/internal/domain"
	"github.com/bonesdao/onboarding/internal/logger"
	"github.com/bonesdao/onboarding/internal/providers/ethereum"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
	recipient  = flag.String("recipient", "", "Wallet address of an approved submission")
	forum      = flag.String("forum", "", "Forum handle of the recipient, stored with the record")
	asset      = flag.String("asset", string(domain.AssetNative), "Asset to send: native or token")
	amount     = flag.String("amount", "", "Decimal amount of the asset, e.g. 1.5")
	apiToken   = flag.String("token", os.Getenv("ONBOARDING_API_TOKEN"), "Pre-issued access token for the API")
)

// Exit codes
const (
	exitOK          = 0
	exitFailed      = 1
	exitUnconfirmed = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	config.ChdirRepoRoot()
	cfg, err := config.LoadDisburseConfig(*configFile, *envPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return exitFailed
	}

	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "disburse",
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return exitFailed
	}
	defer logger.Flush(2 * time.Second)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	chainID, err := cfg.Chain.ChainID.ChainID()
	if err != nil {
		logger.ErrorCtx(ctx, err)
		return exitFailed
	}

	dialer := adapter.NewEthClientDialer()
	signer, signerRPC, err := ethereum.DialSigner(ctx, dialer, cfg.SignerURL)
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("%w: %w", domain.ErrSignerUnavailable, err), zap.String("signer_url", cfg.SignerURL))
		return exitFailed
	}
	defer signerRPC.Close()

	ethClient, err := dialer.Dial(ctx, cfg.Chain.RPCURL)
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("rpc_url", cfg.Chain.RPCURL))
		return exitFailed
	}
	defer ethClient.Close()

	api := client.New(client.Config{
		BaseURL:  cfg.API.BaseURL,
		Username: cfg.API.Username,
		Password: cfg.API.Password,
		Token:    *apiToken,
		Timeout:  cfg.API.Timeout,
	})

	// Only approved applicants are paid
	status, err := api.CheckStatus(ctx, *recipient)
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("recipient", *recipient))
		return exitFailed
	}
	if status != domain.SubmissionStatusApproved {
		logger.WarnCtx(ctx, "Recipient is not approved", zap.String("recipient", *recipient), zap.String("status", string(status)))
		return exitFailed
	}

	var explorers []string
	if cfg.Chain.ExplorerURL != "" {
		explorers = []string{cfg.Chain.ExplorerURL}
	}
	engine := disbursement.NewEngine(disbursement.Config{
		Chain: disbursement.ChainParams{
			ChainID:      chainID,
			Name:         cfg.Chain.Name,
			Symbol:       cfg.Chain.NativeSymbol,
			Decimals:     domain.NativeDecimals,
			RPCURLs:      []string{cfg.Chain.RPCURL},
			ExplorerURLs: explorers,
		},
		TokenAddress:        common.HexToAddress(cfg.Chain.TokenAddress),
		ConfirmationTimeout: cfg.Disbursement.ConfirmationTimeout,
		PollInterval:        cfg.Disbursement.PollInterval,
	}, signer, ethereum.NewChainReader(ethClient), api, api)

	watchCtx, stopWatching := context.WithCancel(ctx)
	defer stopWatching()
	changes := disbursement.NewNetworkWatcher(engine, signer, adapter.NewClock(), cfg.Disbursement.WatchInterval).Watch(watchCtx)
	go func() {
		for change := range changes {
			logger.WarnCtx(ctx, "Signer changed during disbursement", zap.String("change", change.String()))
		}
	}()

	result, err := engine.Disburse(ctx, disbursement.Request{
		Recipient:      *recipient,
		RecipientForum: *forum,
		Asset:          domain.AssetKind(*asset),
		Amount:         *amount,
	})
	switch {
	case err == nil:
		logger.InfoCtx(ctx, "Disbursement recorded",
			zap.String("tx_hash", result.TxHash.Hex()),
			zap.Uint64("record_id", result.RecordID),
			zap.String("reviewer", result.Reviewer.Hex()))
		return exitOK
	case errors.Is(err, domain.ErrPendingUnconfirmed):
		logger.WarnCtx(ctx, "Transfer dispatched but not confirmed yet; the sweeper will record it",
			zap.String("tx_hash", txHashOf(result)))
		return exitUnconfirmed
	default:
		logger.ErrorCtx(ctx, err,
			zap.String("state", string(engine.State())),
			zap.String("tx_hash", txHashOf(result)))
		return exitFailed
	}
}

func txHashOf(result *disbursement.Result) string {
	if result == nil {
		return ""
	}
	return result.TxHash.Hex()
}
