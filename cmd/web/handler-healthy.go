package main

import (
	"github.com/myrjola/whodunit/internal/errors"
	"log/slog"
	"net/http"
)

// healthy reports ok once the server can reach its database.
func (app *application) healthy(w http.ResponseWriter, r *http.Request) {
	if err := app.db.ReadOnly.PingContext(r.Context()); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "database unreachable", errors.SlogError(err))
		app.renderJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	app.renderJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
