package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/tinoosan/finledger/internal/config"
	"github.com/tinoosan/finledger/internal/dictionary"
	"github.com/tinoosan/finledger/internal/httpapi"
	"github.com/tinoosan/finledger/internal/idempotency"
	"github.com/tinoosan/finledger/internal/ledger"
	"github.com/tinoosan/finledger/internal/service/account"
	"github.com/tinoosan/finledger/internal/service/posting"
	"github.com/tinoosan/finledger/internal/storage/memory"
	pgstore "github.com/tinoosan/finledger/internal/storage/postgres"
)

// seeder is the slice of a store needed to prepare categories and demo accounts.
type seeder interface {
	EnsureCategory(ctx context.Context, c ledger.Category) (ledger.Category, error)
	ListAccounts(ctx context.Context) ([]ledger.Account, error)
	CreateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	logger := buildLogger(cfg.Log)
	slog.SetDefault(logger)

	idem, closeIdem, err := openIdempotency(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}
	defer closeIdem()

	opts := []httpapi.Option{
		httpapi.WithCORS(cfg.CORS.AllowedOrigins),
		httpapi.WithJWT(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience),
	}

	var handler http.Handler
	var closeFn func()
	if cfg.MemoryBacked() {
		store := memory.New()
		if err := prepare(ctx, store, cfg, true, logger, "memory"); err != nil {
			logger.Error("dev seed failed", "err", err)
			os.Exit(1)
		}
		postings := posting.New(store, store,
			posting.WithLogger(logger),
			posting.WithTx(func(ctx context.Context) (posting.Tx, error) { return store.BeginTx(ctx) }))
		opts = append(opts, httpapi.WithAccountTx(func(ctx context.Context) (account.Tx, error) { return store.BeginTx(ctx) }))
		handler = httpapi.New(store, postings, idem, logger, opts...).Handler()
		logger.Info("storage backend: memory")
	} else {
		pg, err := pgstore.Open(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("failed to connect to postgres", "err", err)
			os.Exit(1)
		}
		closeFn = pg.Close
		if err := pg.Migrate(ctx); err != nil {
			logger.Error("migration failed", "err", err)
			pg.Close()
			os.Exit(1)
		}
		if err := prepare(ctx, pg, cfg, cfg.Dev.Seed, logger, "postgres"); err != nil {
			logger.Error("dev seed failed", "err", err)
		}
		postings := posting.New(pg, pg,
			posting.WithLogger(logger),
			posting.WithTx(func(ctx context.Context) (posting.Tx, error) { return pg.BeginTx(ctx) }))
		opts = append(opts, httpapi.WithAccountTx(func(ctx context.Context) (account.Tx, error) { return pg.BeginTx(ctx) }))
		handler = httpapi.New(pg, postings, idem, logger, opts...).Handler()
		logger.Info("storage backend: postgres")
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("finledger listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}
	if closeFn != nil {
		closeFn()
	}
}

// openIdempotency picks Redis when an address is configured and the in-process store otherwise.
func openIdempotency(ctx context.Context, cfg config.Config, logger *slog.Logger) (idempotency.Store, func(), error) {
	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		logger.Info("idempotency store: memory", "ttl", cfg.Idempotency.TTL)
		return idempotency.NewMemory(cfg.Idempotency.TTL), func() {}, nil
	}
	r, err := idempotency.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Idempotency.TTL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("idempotency store: redis", "addr", cfg.Redis.Addr, "ttl", cfg.Idempotency.TTL)
	return r, func() { _ = r.Close() }, nil
}

// prepare installs the curated categories, which the posting writer requires,
// and optionally a checking, savings and credit card account for local use.
func prepare(ctx context.Context, s seeder, cfg config.Config, seedAccounts bool, l *slog.Logger, backend string) error {
	for _, c := range dictionary.CategoriesFor(nil) {
		if _, err := s.EnsureCategory(ctx, ledger.Category{Name: c.Name, Type: c.Type}); err != nil {
			return fmt.Errorf("category %q: %w", c.Name, err)
		}
	}
	if !seedAccounts {
		return nil
	}
	existing, err := s.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}
	byName := make(map[string]ledger.Account, len(existing))
	for _, a := range existing {
		byName[strings.ToLower(a.Name)] = a
	}
	closing, due := 10, 20
	accs := []ledger.Account{
		{Name: "Checking", Kind: ledger.AccountKindBank, Currency: cfg.Ledger.Currency},
		{Name: "Savings", Kind: ledger.AccountKindBank, Currency: cfg.Ledger.Currency},
		{Name: "Credit Card", Kind: ledger.AccountKindCreditCard, Currency: cfg.Ledger.Currency, ClosingDay: &closing, DueDay: &due},
	}
	created := 0
	for i, a := range accs {
		// Seeded accounts are found again by name on restart.
		if found, ok := byName[strings.ToLower(a.Name)]; ok {
			accs[i] = found
			continue
		}
		a.ID = uuid.New()
		if _, err := s.CreateAccount(ctx, a); err != nil {
			return fmt.Errorf("account %q: %w", a.Name, err)
		}
		accs[i] = a
		created++
	}
	l.Debug("dev seed accounts", "created", created, "reused", len(accs)-created)
	logDevSeed(l, backend, accs)
	printDevSeedBanner(accs)
	return nil
}

// logDevSeed emits structured logs with useful IDs
func logDevSeed(l *slog.Logger, backend string, accs []ledger.Account) {
	ids := map[string]string{}
	for _, a := range accs {
		ids[seedKey(a)] = a.ID.String()
	}
	l.Info("DEV seed ("+backend+")", "ids", ids)
}

// printDevSeedBanner prints a simple banner to stdout for easy copy/paste of IDs
func printDevSeedBanner(accs []ledger.Account) {
	fmt.Println("==================== DEV SEED ====================")
	for _, a := range accs {
		fmt.Printf("%s: %s\n", seedKey(a), a.ID.String())
	}
	fmt.Println("==================================================")
}

func seedKey(a ledger.Account) string {
	return strings.ReplaceAll(strings.ToLower(a.Name), " ", "_") + "_account_id"
}

// parseLogLevel maps config values to slog.Leveler
func parseLogLevel(s string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLogger(c config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(c.Level)}
	if strings.EqualFold(strings.TrimSpace(c.Format), "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	// default to JSON
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
