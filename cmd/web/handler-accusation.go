package main

import (
	"github.com/myrjola/whodunit/internal/contexthelpers"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/models"
	"log/slog"
	"net/http"
)

func (app *application) accuse(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	suspectID := r.PostForm.Get("suspect_id")
	correct, err := contexthelpers.GameSession(ctx).Accuse(ctx, suspectID)
	if err != nil {
		if errors.Is(err, models.ErrUnknownSuspect) {
			app.clientError(w, r, http.StatusUnprocessableEntity)
			return
		}
		app.serverError(w, r, errors.Wrap(err, "accuse"))
		return
	}
	app.logger.LogAttrs(ctx, slog.LevelInfo, "accusation made",
		slog.String("suspect_id", suspectID), slog.Bool("correct", correct))

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
