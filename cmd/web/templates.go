package main

import (
	"fmt"
	"github.com/myrjola/whodunit/internal/contexthelpers"
	"github.com/myrjola/whodunit/internal/game"
	"github.com/myrjola/whodunit/internal/models"
	"net/http"
)

type BaseTemplateData struct {
	CaseNumber  int
	Date        string
	Remaining   int
	Budget      int
	CurrentPath string
}

func newBaseTemplateData(r *http.Request, st game.State) BaseTemplateData {
	return BaseTemplateData{
		CaseNumber:  st.Case.CaseNumber,
		Date:        st.Case.Date.Format("January 2, 2006"),
		Remaining:   st.Ledger.Remaining(),
		Budget:      st.Ledger.Budget(),
		CurrentPath: contexthelpers.CurrentPath(r.Context()),
	}
}

// suspectCard shows a suspect the way the detective knows them. The name stays hidden until the suspect gives it.
type suspectCard struct {
	ID         string
	Label      string
	Occupation string
	Evidence   models.CharacterEvidence
}

func suspectCards(st game.State) []suspectCard {
	cards := make([]suspectCard, 0, len(st.Case.Characters))
	for i, ch := range st.Case.Characters {
		ev := st.Ledger.Evidence(ch.ID())
		label := fmt.Sprintf("Suspect %d", i+1)
		if ev.NameRevealed {
			label = ch.Name()
		}
		cards = append(cards, suspectCard{
			ID:         ch.ID(),
			Label:      label,
			Occupation: ch.Facts.Suspect.Occupation,
			Evidence:   ev,
		})
	}
	return cards
}

func findCard(cards []suspectCard, id string) (suspectCard, bool) {
	for _, c := range cards {
		if c.ID == id {
			return c, true
		}
	}
	return suspectCard{}, false
}
