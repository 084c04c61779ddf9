package main

import (
	"github.com/myrjola/whodunit/internal/contexthelpers"
	"net/http"
)

type suspectBrief struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	Occupation   string `json:"occupation"`
	NameRevealed bool   `json:"nameRevealed"`
}

// caseBrief is the public crime report. It never carries the solution.
type caseBrief struct {
	CaseNumber int            `json:"caseNumber"`
	Date       string         `json:"date"`
	VictimName string         `json:"victimName"`
	Occupation string         `json:"victimOccupation"`
	Background string         `json:"victimBackground"`
	Cause      string         `json:"cause"`
	Time       string         `json:"time"`
	Location   string         `json:"location"`
	Suspects   []suspectBrief `json:"suspects"`
	Remaining  int            `json:"questionsRemaining"`
	Accused    bool           `json:"accused"`
}

func (app *application) caseBrief(w http.ResponseWriter, r *http.Request) {
	st := contexthelpers.GameSession(r.Context()).State()
	brief := caseBrief{
		CaseNumber: st.Case.CaseNumber,
		Date:       st.Case.Date.Format("2006-01-02"),
		VictimName: st.Case.Victim.Name,
		Occupation: st.Case.Victim.Occupation,
		Background: st.Case.Victim.Background,
		Cause:      st.Case.Crime.Cause,
		Time:       st.Case.Crime.Time,
		Location:   st.Case.Crime.Location,
		Remaining:  st.Ledger.Remaining(),
		Accused:    st.Accusation != nil,
	}
	for _, card := range suspectCards(st) {
		brief.Suspects = append(brief.Suspects, suspectBrief{
			ID:           card.ID,
			Label:        card.Label,
			Occupation:   card.Occupation,
			NameRevealed: card.Evidence.NameRevealed,
		})
	}
	app.renderJSON(w, r, http.StatusOK, brief)
}
