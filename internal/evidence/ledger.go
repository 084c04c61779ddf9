// Package evidence keeps the detective's notebook: what each suspect revealed, who told what about whom, and how many
// questions are left.
package evidence

import (
	"github.com/myrjola/whodunit/internal/models"
)

// DefaultBudget is the number of questions a detective gets per case.
const DefaultBudget = 24

// Accusation is the final verdict of a play-through.
type Accusation struct {
	SuspectID string
	Correct   bool
}

// Ledger is owned by the caller and is not safe for concurrent use.
type Ledger struct {
	characters     map[string]*models.CharacterEvidence
	disclosures    []models.Disclosure
	questionsAsked int
	budget         int
	accusation     *Accusation
}

func NewLedger(budget int) *Ledger {
	return &Ledger{
		characters: map[string]*models.CharacterEvidence{},
		budget:     budget,
	}
}

func (l *Ledger) Budget() int {
	return l.budget
}

func (l *Ledger) QuestionsAsked() int {
	return l.questionsAsked
}

func (l *Ledger) Remaining() int {
	return max(l.budget-l.questionsAsked, 0)
}

func (l *Ledger) Exhausted() bool {
	return l.Remaining() == 0
}

// CountQuestion spends one question of the budget.
func (l *Ledger) CountQuestion() {
	l.questionsAsked++
}

// Fold merges the side effects of one reply by suspectID. Reveal flags are ORed in and disclosures are
// deduplicated by subject and content. It reports whether the disclosure was new.
func (l *Ledger) Fold(suspectID string, update models.EvidenceUpdate, disclosure *models.Disclosure) bool {
	if !update.Empty() {
		l.character(suspectID).Apply(update)
	}
	if disclosure == nil {
		return false
	}
	for _, d := range l.disclosures {
		if d.AboutCharacterID == disclosure.AboutCharacterID && d.Info == disclosure.Info {
			return false
		}
	}
	l.disclosures = append(l.disclosures, *disclosure)
	return true
}

func (l *Ledger) character(id string) *models.CharacterEvidence {
	e, ok := l.characters[id]
	if !ok {
		e = &models.CharacterEvidence{}
		l.characters[id] = e
	}
	return e
}

// Evidence returns what is known about the suspect.
func (l *Ledger) Evidence(suspectID string) models.CharacterEvidence {
	if e, ok := l.characters[suspectID]; ok {
		return *e
	}
	return models.CharacterEvidence{}
}

// Disclosures returns a copy of the testimony log in the order it was heard.
func (l *Ledger) Disclosures() []models.Disclosure {
	return append([]models.Disclosure(nil), l.disclosures...)
}

// Accuse records the verdict against the solution of c.
func (l *Ledger) Accuse(c *models.Case, suspectID string) (bool, error) {
	if _, err := c.Character(suspectID); err != nil {
		return false, err
	}
	l.accusation = &Accusation{SuspectID: suspectID, Correct: c.IsMurderer(suspectID)}
	return l.accusation.Correct, nil
}

// Accusation returns the recorded verdict, if any.
func (l *Ledger) Accusation() (Accusation, bool) {
	if l.accusation == nil {
		return Accusation{}, false
	}
	return *l.accusation, true
}

// Snapshot returns a deep copy that can be handed to responders without sharing state.
func (l *Ledger) Snapshot() *Ledger {
	s := &Ledger{
		characters:     make(map[string]*models.CharacterEvidence, len(l.characters)),
		disclosures:    l.Disclosures(),
		questionsAsked: l.questionsAsked,
		budget:         l.budget,
	}
	for id, e := range l.characters {
		c := *e
		s.characters[id] = &c
	}
	if l.accusation != nil {
		a := *l.accusation
		s.accusation = &a
	}
	return s
}
