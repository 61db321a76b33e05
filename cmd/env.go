package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abhisek/skillpath/internal/cache"
	"github.com/abhisek/skillpath/internal/catalog"
	"github.com/abhisek/skillpath/internal/config"
	"github.com/abhisek/skillpath/internal/engine"
	"github.com/abhisek/skillpath/internal/ledger"
	"github.com/abhisek/skillpath/internal/llm"
	"github.com/abhisek/skillpath/internal/logging"
	"github.com/abhisek/skillpath/internal/progress"
	"github.com/abhisek/skillpath/internal/quiz"
	"github.com/abhisek/skillpath/internal/store"
	"github.com/abhisek/skillpath/internal/syncbus"
)

// env is the wiring shared by every command: config, logger, store, and
// the per-process invalidation bus.
type env struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *store.Store
	catalog  *catalog.Catalog
	cache    *cache.Cache
	epochs   *syncbus.Epochs
	bus      *syncbus.Bus
	progress *progress.Store
	ledger   *ledger.Ledger
}

// loadConfig resolves the config file, environment, and flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	flags := map[string]*string{
		"db":         &cfg.DB,
		"profile":    &cfg.Profile,
		"user":       &cfg.UserID,
		"log-level":  &cfg.LogLevel,
		"log-format": &cfg.LogFormat,
	}
	for name, dst := range flags {
		if v, _ := cmd.Flags().GetString(name); v != "" {
			*dst = v
		}
	}
	return cfg, cfg.Validate()
}

// openEnv opens everything a command needs except the LLM provider.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	cat, err := catalog.Load(cfg.Catalog)
	if err != nil {
		st.Close()
		return nil, err
	}

	epochs := syncbus.NewEpochs(st.SyncRepo(), cfg.Profile)
	bus := syncbus.NewBus(uuid.NewString(), epochs, logger)
	c := cache.New(st.CacheRepo(), cfg.Profile, logger)

	logger.Debug("environment ready", "db", dbPath, "profile", cfg.Profile)
	return &env{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		catalog:  cat,
		cache:    c,
		epochs:   epochs,
		bus:      bus,
		progress: progress.New(c, bus, st.EventRepo(), logger),
		ledger:   ledger.New(st.AccountRepo(), logger),
	}, nil
}

func (e *env) Close() error {
	return e.store.Close()
}

// provider builds the configured LLM provider chain.
func (e *env) provider(ctx context.Context) (llm.Provider, error) {
	if err := e.cfg.LLM.Validate(); err != nil {
		return nil, fmt.Errorf("LLM provider not configured: %w", err)
	}
	return llm.NewProvider(ctx, e.cfg.LLM, e.store.EventRepo(), e.logger)
}

// engine builds the engine for the configured user. With withLLM the quiz
// generator and AI feedback are wired; without it submissions get
// fallback feedback and quiz generation is unavailable.
func (e *env) engine(ctx context.Context, withLLM bool) (*engine.Engine, error) {
	if err := e.cfg.RequireUser(); err != nil {
		return nil, err
	}
	opts := engine.Options{
		UserID:   e.cfg.UserID,
		Catalog:  e.catalog,
		Progress: e.progress,
		Ledger:   e.ledger,
		Cache:    e.cache,
		Bus:      e.bus,
		Logger:   e.logger,
	}
	if withLLM {
		p, err := e.provider(ctx)
		if err != nil {
			return nil, err
		}
		gen := quiz.NewLLMGenerator(p, quiz.DefaultConfig())
		opts.Generator = gen
		opts.Evaluator = quiz.NewEvaluator(gen, e.logger)
	}
	return engine.New(opts)
}

// withEnv opens the environment for the duration of fn.
func withEnv(cmd *cobra.Command, fn func(ctx context.Context, e *env) error) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()
	return fn(cmd.Context(), e)
}
