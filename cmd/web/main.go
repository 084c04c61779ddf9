package main

import (
	"context"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/donseba/go-htmx"
	"github.com/joho/godotenv"
	"github.com/myrjola/whodunit/internal/ai"
	"github.com/myrjola/whodunit/internal/casegen"
	"github.com/myrjola/whodunit/internal/content"
	"github.com/myrjola/whodunit/internal/envstruct"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/game"
	"github.com/myrjola/whodunit/internal/interrogation"
	"github.com/myrjola/whodunit/internal/logging"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/myrjola/whodunit/internal/pprofserver"
	"github.com/myrjola/whodunit/internal/repositories"
	"github.com/myrjola/whodunit/internal/responder"
	"github.com/myrjola/whodunit/internal/sqlite"
	"golang.org/x/sync/errgroup"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"WHODUNIT_ADDR" envDefault:"localhost:4000"`
	// SqliteURL is the path to the SQLite database or :memory: for an in-memory database.
	SqliteURL string `env:"WHODUNIT_SQLITE_URL" envDefault:"./whodunit.sqlite"`
	// PprofAddr is the loopback address of the pprof server. Empty disables it.
	PprofAddr string `env:"WHODUNIT_PPROF_ADDR" envDefault:""`
	// SecureCookies should only be disabled when the server is not behind TLS.
	SecureCookies     bool    `env:"WHODUNIT_SECURE_COOKIES" envDefault:"true"`
	LieProbability    float64 `env:"WHODUNIT_LIE_PROBABILITY" envDefault:"0.5"`
	SecretProbability float64 `env:"WHODUNIT_SECRET_PROBABILITY" envDefault:"0.4"`
	QuestionBudget    int     `env:"WHODUNIT_QUESTION_BUDGET" envDefault:"24"`
	SuspectCount      int     `env:"WHODUNIT_SUSPECT_COUNT" envDefault:"5"`
	// OpenAIAPIKey enables the language model responder. Without it the rule engine answers alone.
	OpenAIAPIKey     string        `env:"OPENAI_API_KEY" envDefault:""`
	OpenAIModel      string        `env:"WHODUNIT_OPENAI_MODEL" envDefault:"gpt-3.5-turbo-1106"`
	OpenAIBaseURL    string        `env:"WHODUNIT_OPENAI_BASE_URL" envDefault:""`
	ResponderTimeout time.Duration `env:"WHODUNIT_RESPONDER_TIMEOUT" envDefault:"4s"`
}

type application struct {
	logger         *slog.Logger
	cfg            config
	db             *sqlite.Database
	games          *game.Store
	transcripts    *repositories.TranscriptRepository
	sessionManager *scs.SessionManager
	htmx           *htmx.HTMX
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}
	if cfg.SuspectCount < casegen.MinSuspectCount || cfg.SuspectCount > len(content.Default().Suspects) {
		return errors.New("suspect count out of range", slog.Int("suspect_count", cfg.SuspectCount))
	}

	if cfg.PprofAddr != "" {
		// Only listen on loopback so that it's not open to the world.
		pprofserver.Launch(ctx, cfg.PprofAddr, logger)
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open database", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "failed to close database", errors.SlogError(closeErr))
		}
	}()

	sessionStore := sqlite3store.NewWithCleanupInterval(db.ReadWrite.DB, time.Hour)
	defer sessionStore.StopCleanup()
	sessionManager := scs.New()
	sessionManager.Store = sessionStore
	sessionManager.Lifetime = sessionLifetime
	sessionManager.Cookie.Secure = cfg.SecureCookies

	transcripts := repositories.NewTranscriptRepository(db, logger)
	engineConfig := interrogation.Config{
		LieProbability:    cfg.LieProbability,
		SecretProbability: cfg.SecretProbability,
	}
	responders := game.LocalResponders(engineConfig)
	if cfg.OpenAIAPIKey != "" {
		client := ai.NewClient(ai.Config{APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL})
		if err = client.Ping(ctx); err != nil {
			logger.LogAttrs(ctx, slog.LevelWarn, "language model unavailable, using the rule engine only",
				slog.String("model", client.Model()), errors.SlogError(err))
		} else {
			logger.LogAttrs(ctx, slog.LevelInfo, "language model responder enabled", slog.String("model", client.Model()))
			responders = oracleResponders(client, engineConfig, cfg.ResponderTimeout, logger)
		}
	}

	app := application{
		logger: logger,
		cfg:    cfg,
		db:     db,
		games: game.NewStore(
			func() *models.Case {
				return casegen.Today(time.Now(), casegen.WithSuspectCount(cfg.SuspectCount))
			},
			game.WithSessionOptions(
				game.WithBudget(cfg.QuestionBudget),
				game.WithArchive(transcripts),
				game.WithResponders(responders),
				game.WithLogger(logger),
			),
			game.WithStoreLogger(logger),
		),
		transcripts:    transcripts,
		sessionManager: sessionManager,
		htmx:           htmx.New(),
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		db.RunOptimizer(ctx, time.Hour)
		return nil
	})
	g.Go(func() error {
		app.games.RunEviction(ctx, time.Hour, sessionLifetime)
		return nil
	})
	g.Go(func() error {
		return app.configureAndStartServer(ctx, cfg.Addr)
	})
	if err = g.Wait(); err != nil {
		return errors.Wrap(err, "run")
	}
	return nil
}

// oracleResponders asks the language model first and falls back to the rule engine.
func oracleResponders(
	client *ai.Client,
	engineConfig interrogation.Config,
	timeout time.Duration,
	logger *slog.Logger,
) game.ResponderFactory {
	return func(c *models.Case) responder.Responder {
		local := responder.NewLocal(interrogation.NewEngine(c, interrogation.WithConfig(engineConfig)))
		return responder.NewFallback(responder.NewOracle(c, client, logger), local, timeout, logger)
	}
}

func main() {
	ctx := context.Background()
	logger := logging.NewLogger(os.Stdout, slog.LevelDebug)

	// A missing .env file is fine, the environment may already be set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.LogAttrs(ctx, slog.LevelError, "failure loading .env file", errors.SlogError(err))
		os.Exit(1)
	}

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
