package main

import (
	"context"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/sqlite"
	"github.com/myrjola/whodunit/internal/testhelpers"
	"log/slog"
	"os"
	"time"
)

// main migrates a copy of the production database and checks that the archive survived.
func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	var (
		err       error
		start     = time.Now()
		ctx       context.Context
		sqliteURL string
		ok        bool
		cancel    context.CancelFunc
	)
	ctx = context.Background()
	ctx, cancel = context.WithTimeout(ctx, 5*time.Second) //nolint:mnd // 5 seconds

	if sqliteURL, ok = os.LookupEnv("WHODUNIT_SQLITE_URL"); !ok {
		logger.LogAttrs(ctx, slog.LevelError, "WHODUNIT_SQLITE_URL not set")
		os.Exit(1)
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, sqliteURL, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating database",
			slog.String("url", sqliteURL), errors.SlogError(err))
		os.Exit(1)
	}

	var counts struct {
		Completions int `db:"completions"`
		Verdicts    int `db:"verdicts"`
	}
	if err = db.ReadOnly.GetContext(ctx, &counts, `SELECT
    (SELECT COUNT(*) FROM completions) AS completions,
    (SELECT COUNT(*) FROM verdicts) AS verdicts`); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error counting archive", errors.SlogError(err))
		os.Exit(1)
	}
	if counts.Completions == 0 {
		logger.LogAttrs(ctx, slog.LevelError, "no completions found, something is likely wrong")
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "archive count",
		slog.Int("completions", counts.Completions), slog.Int("verdicts", counts.Verdicts))

	logger.LogAttrs(ctx, slog.LevelInfo, "Migration test successful 🙌", slog.Duration("duration", time.Since(start)))
	cancel()
	os.Exit(0)
}
