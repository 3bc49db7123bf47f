package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"hospitaladmin/internal/config"
	"hospitaladmin/internal/logger"
	"hospitaladmin/internal/mongo"
	"hospitaladmin/internal/mysql"
	"hospitaladmin/internal/routing"
	"hospitaladmin/pkg/account"
	"hospitaladmin/pkg/audit"
	"hospitaladmin/pkg/middleware"
	"hospitaladmin/pkg/policy"
	"hospitaladmin/pkg/session"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "hospitaladmin",
		Short:        "Hospital administration dashboards behind a session gate",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newHashPasswordCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.Load(cfg.LogLevel)
	if cfg.EphemeralSecret {
		log.Warn("SESSION_SECRET not set, using a per-process secret; sessions end on restart")
	}

	pol := policy.Default()

	var entries []account.Entry
	switch {
	case cfg.AccountsFile != "":
		if entries, err = account.LoadFile(cfg.AccountsFile); err != nil {
			return err
		}
	case cfg.Production:
		return errors.New("ACCOUNTS_FILE is required in production")
	default:
		log.Warn("ACCOUNTS_FILE not set, using built-in development accounts")
		entries = account.DefaultEntries()
	}
	registry, err := account.NewRegistry(entries, pol, bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	log.Info("accounts loaded", "count", registry.Len(), "hash_cost", registry.HashCost())

	var revocations session.RevocationStore = session.NewMemoryRevocations(nil)
	if cfg.MySQLDSN != "" {
		db, err := mysql.LoadDB(ctx, cfg.MySQLDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		revocations = session.NewMySQLRevocationRepo(db, nil)
	}

	var recorder audit.Recorder = audit.NopRecorder{}
	if cfg.MongoURI != "" {
		mongoDB, err := mongo.LoadDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return err
		}
		defer mongoDB.Client().Disconnect(context.Background()) //nolint:errcheck
		recorder = audit.NewMongoRepo(mongoDB)
	}

	h := routing.NewHandler(routing.Deps{
		Accounts:      registry,
		Policy:        pol,
		Revocations:   revocations,
		Audit:         recorder,
		Logger:        log,
		SessionSecret: cfg.SessionSecret,
		Secure:        cfg.Production,
		StaticDir:     cfg.StaticDir,
		Throttle: middleware.ThrottleConfig{
			RequestsPerSecond: cfg.LoginRate,
			Burst:             cfg.LoginBurst,
		},
	})

	return routing.StartServer(ctx, cfg.Addr, h, log)
}

func newHashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash for an accounts file entry",
		Long:  "Reads a password from the terminal (without echo) or from stdin and prints its bcrypt hash.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			hash, err := hashPassword(password, cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}

func hashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", errors.New("empty password")
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return "", fmt.Errorf("cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hashing password error: %w", err)
	}
	return string(hash), nil
}

func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
