package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/bonesdao/onboarding/internal/adapter"
	"github.com/bonesdao/onboarding/internal/auth"
	"github.com/bonesdao/onboarding/internal/config"
	"github.com/bonesdao/onboarding/internal/domain"
	"github.com/bonesdao/onboarding/internal/logger"
	"github.com/bonesdao/onboarding/internal/store"
)

const usage = `Usage: admin [-config file] [-env dir] <command> [flags]

Commands:
  create-admin -username <name> -password <password> [-wallet <address>]
  set-password -username <name> -password <password>
  issue-token  -subject <username or wallet address>
`

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	config.ChdirRepoRoot()
	cfg, err := config.LoadAdminConfig(*configFile, *envPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(logger.Config{Debug: cfg.Debug}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Flush(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}
	dataStore := store.NewPGStore(db)

	gateway, err := auth.NewGateway(auth.Config{
		Secret:          cfg.Auth.JWTSecret,
		AccessTokenTTL:  cfg.Auth.AccessTokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
	}, dataStore, adapter.NewClock())
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create auth gateway", zap.Error(err))
	}

	if err := run(ctx, flag.Args(), dataStore, gateway, os.Stdout); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("command", flag.Arg(0)))
		os.Exit(1)
	}
}

// run executes one admin command, writing its result to out
func run(ctx context.Context, args []string, st store.Store, gateway auth.Gateway, out io.Writer) error {
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	username := fs.String("username", "", "Admin username")
	password := fs.String("password", "", "Admin password, at least 8 characters")
	wallet := fs.String("wallet", "", "Wallet address allowed to log in by signature")
	subject := fs.String("subject", "", "Subject of the issued token")
	if err := fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	switch args[0] {
	case "create-admin":
		return createAdmin(ctx, st, *username, *password, *wallet, out)
	case "set-password":
		return setPassword(ctx, st, *username, *password, out)
	case "issue-token":
		return issueToken(gateway, *subject, out)
	}
	return fmt.Errorf("%w: unknown command %q", domain.ErrValidation, args[0])
}

func createAdmin(ctx context.Context, st store.Store, username, password, wallet string, out io.Writer) error {
	if username == "" {
		return fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	var walletAddress *string
	if wallet != "" {
		if !domain.IsValidAddress(wallet) {
			return fmt.Errorf("%w: wallet %q is not a valid address", domain.ErrValidation, wallet)
		}
		walletAddress = &wallet
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin, err := st.UpsertAdmin(ctx, store.UpsertAdminInput{
		Username:      username,
		PasswordHash:  hash,
		WalletAddress: walletAddress,
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "admin %q saved (id %d)\n", admin.Username, admin.ID)
	return err
}

func setPassword(ctx context.Context, st store.Store, username, password string, out io.Writer) error {
	admin, err := st.GetAdminByUsername(ctx, username)
	if err != nil {
		return err
	}
	if admin == nil {
		return fmt.Errorf("%w: admin %q does not exist", domain.ErrValidation, username)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	// Keep the registered wallet
	if _, err := st.UpsertAdmin(ctx, store.UpsertAdminInput{
		Username:      admin.Username,
		PasswordHash:  hash,
		WalletAddress: admin.WalletAddress,
	}); err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "password updated for %q\n", admin.Username)
	return err
}

func issueToken(gateway auth.Gateway, subject string, out io.Writer) error {
	if subject == "" {
		return errors.New("subject is required")
	}
	if domain.IsValidAddress(subject) {
		subject = domain.NormalizeAddress(subject)
	}

	pair, err := gateway.IssueTokenPair(subject)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "access_token=%s\nrefresh_token=%s\n", pair.AccessToken, pair.RefreshToken)
	return err
}
