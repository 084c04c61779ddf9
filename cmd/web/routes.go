package main

import (
	"github.com/justinas/alice"
	"github.com/myrjola/whodunit/ui"
	"io/fs"
	"net/http"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	static, err := fs.Sub(ui.Files, "static")
	if err != nil {
		// The static directory is embedded at compile time.
		panic(err)
	}
	mux.Handle("GET /static/", cacheForeverHeaders(http.StripPrefix("/static", http.FileServerFS(static))))

	mux.HandleFunc("GET /api/healthy", app.healthy)

	session := alice.New(app.sessionManager.LoadAndSave, app.noSurf, commonContext, app.loadGame)

	mux.Handle("GET /{$}", session.ThenFunc(app.home))
	mux.Handle("GET /suspects/{suspectID}", session.ThenFunc(app.suspect))
	mux.Handle("POST /suspects/{suspectID}/questions", session.Append(app.timeout).ThenFunc(app.askQuestion))
	mux.Handle("POST /accusations", session.ThenFunc(app.accuse))
	mux.Handle("POST /replay", session.ThenFunc(app.replay))
	mux.Handle("GET /api/case", session.ThenFunc(app.caseBrief))

	return alice.New(app.recoverPanic, app.logRequest, secureHeaders).Then(mux)
}
