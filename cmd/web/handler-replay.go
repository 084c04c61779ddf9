package main

import (
	"github.com/myrjola/whodunit/internal/casegen"
	"github.com/myrjola/whodunit/internal/contexthelpers"
	"log/slog"
	"net/http"
	"time"
)

// replay deals a fresh variation of today's case. The case number stays the same.
func (app *application) replay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c := contexthelpers.GameSession(ctx).Replay(time.Now(), casegen.WithSuspectCount(app.cfg.SuspectCount))
	app.logger.LogAttrs(ctx, slog.LevelInfo, "case replayed",
		slog.Int("case_number", c.CaseNumber), slog.Int64("seed", c.Seed))

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
