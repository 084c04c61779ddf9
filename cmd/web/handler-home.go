package main

import (
	"github.com/myrjola/whodunit/internal/contexthelpers"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/models"
	"net/http"
)

type disclosureView struct {
	From  string
	About string
	Info  string
	Kind  models.InfoType
}

type verdictView struct {
	Accused  string
	Correct  bool
	Murderer string
	Motive   string
	How      string
}

type homeTemplateData struct {
	BaseTemplateData
	Victim      models.Victim
	Crime       models.Crime
	Suspects    []suspectCard
	Disclosures []disclosureView
	Verdict     *verdictView
	Stats       models.CaseStats
}

func (app *application) home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st := contexthelpers.GameSession(ctx).State()

	stats, err := app.transcripts.Stats(ctx, st.Case.CaseNumber)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "case stats"))
		return
	}

	cards := suspectCards(st)
	label := func(id string) string {
		card, _ := findCard(cards, id)
		return card.Label
	}

	data := homeTemplateData{
		BaseTemplateData: newBaseTemplateData(r, st),
		Victim:           st.Case.Victim,
		Crime:            st.Case.Crime,
		Suspects:         cards,
		Stats:            stats,
	}
	for _, d := range st.Ledger.Disclosures() {
		data.Disclosures = append(data.Disclosures, disclosureView{
			From:  label(d.FromCharacterID),
			About: label(d.AboutCharacterID),
			Info:  d.Info,
			Kind:  d.InfoType,
		})
	}
	if st.Accusation != nil {
		// The solution is only shown once the detective has committed to a verdict.
		murderer := st.Case.Murderer()
		data.Verdict = &verdictView{
			Accused:  label(st.Accusation.SuspectID),
			Correct:  st.Accusation.Correct,
			Murderer: murderer.Name(),
			Motive:   st.Case.Crime.KillerMotive,
			How:      st.Case.Crime.HowItHappened,
		}
	}

	app.render(w, r, http.StatusOK, "home", "", data)
}
