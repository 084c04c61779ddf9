package main

import (
	"github.com/myrjola/whodunit/internal/contexthelpers"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/models"
	"net/http"
	"strings"
)

const maxQuestionLength = 500

type exchange struct {
	Question string
	Answer   string
}

type suspectTemplateData struct {
	BaseTemplateData
	Suspect   suspectCard
	Exchanges []exchange
	TimesUp   bool
}

func (app *application) suspect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st := contexthelpers.GameSession(ctx).State()
	card, ok := findCard(suspectCards(st), r.PathValue("suspectID"))
	if !ok {
		app.notFound(w, r)
		return
	}

	completions, err := app.transcripts.Completions(ctx, st.TranscriptID, card.ID)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "read transcript"))
		return
	}
	data := suspectTemplateData{
		BaseTemplateData: newBaseTemplateData(r, st),
		Suspect:          card,
		TimesUp:          st.Ledger.Exhausted(),
	}
	for _, c := range completions {
		data.Exchanges = append(data.Exchanges, exchange{Question: c.Question, Answer: c.Answer})
	}

	app.render(w, r, http.StatusOK, "suspect", "", data)
}

// askQuestion answers with the exchange fragment to htmx requests and redirects back to the suspect otherwise.
func (app *application) askQuestion(w http.ResponseWriter, r *http.Request) {
	var err error
	if err = r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	question := strings.TrimSpace(r.PostForm.Get("question"))
	if question == "" || len(question) > maxQuestionLength {
		app.clientError(w, r, http.StatusUnprocessableEntity)
		return
	}

	ctx := r.Context()
	session := contexthelpers.GameSession(ctx)
	suspectID := r.PathValue("suspectID")
	answer, err := session.Ask(ctx, suspectID, question)
	if err != nil {
		if errors.Is(err, models.ErrUnknownSuspect) {
			app.notFound(w, r)
			return
		}
		app.serverError(w, r, errors.Wrap(err, "ask question"))
		return
	}

	if !app.htmx.NewHandler(w, r).Request().HxRequest {
		http.Redirect(w, r, "/suspects/"+suspectID, http.StatusSeeOther)
		return
	}

	st := session.State()
	card, _ := findCard(suspectCards(st), suspectID)
	data := suspectTemplateData{
		BaseTemplateData: newBaseTemplateData(r, st),
		Suspect:          card,
		Exchanges:        []exchange{{Question: question, Answer: answer.Reply.Text}},
		TimesUp:          answer.TimesUp,
	}
	app.render(w, r, http.StatusOK, "suspect", "exchange", data)
}
