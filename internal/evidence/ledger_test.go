package evidence_test

import (
	"github.com/myrjola/whodunit/internal/casegen"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/evidence"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestLedger_Budget(t *testing.T) {
	l := evidence.NewLedger(2)
	require.Equal(t, 2, l.Remaining())
	require.False(t, l.Exhausted())
	l.CountQuestion()
	l.CountQuestion()
	require.True(t, l.Exhausted())
	l.CountQuestion()
	require.Zero(t, l.Remaining())
	require.Equal(t, 3, l.QuestionsAsked())
}

func TestLedger_FoldIsIdempotent(t *testing.T) {
	l := evidence.NewLedger(evidence.DefaultBudget)
	name := models.EvidenceUpdate{NameRevealed: true}

	l.Fold("sarah", name, nil)
	l.CountQuestion()
	l.Fold("sarah", name, nil)
	l.CountQuestion()

	require.Equal(t, models.CharacterEvidence{NameRevealed: true}, l.Evidence("sarah"))
	require.Equal(t, evidence.DefaultBudget-2, l.Remaining())
	require.Empty(t, l.Disclosures())
	require.Equal(t, models.CharacterEvidence{}, l.Evidence("marcus"))
}

func TestLedger_FoldDeduplicatesDisclosures(t *testing.T) {
	l := evidence.NewLedger(evidence.DefaultBudget)
	d := models.Disclosure{FromCharacterID: "sarah", AboutCharacterID: "marcus", Info: "was near the study"}

	require.True(t, l.Fold("sarah", models.EvidenceUpdate{}, &d))
	require.False(t, l.Fold("sarah", models.EvidenceUpdate{}, &d))
	again := d
	again.FromCharacterID = "jerome"
	require.False(t, l.Fold("jerome", models.EvidenceUpdate{}, &again), "same fact about the same suspect")
	other := d
	other.Info = "argued with the victim"
	require.True(t, l.Fold("sarah", models.EvidenceUpdate{}, &other))

	require.Len(t, l.Disclosures(), 2)
}

func TestLedger_Accuse(t *testing.T) {
	for seed := range int64(50) {
		c := casegen.Generate(seed, casegen.WithClock(func() time.Time { return time.Unix(0, 0) }))
		for _, ch := range c.Characters {
			l := evidence.NewLedger(evidence.DefaultBudget)
			correct, err := l.Accuse(c, ch.ID())
			require.NoError(t, err)
			require.Equal(t, ch.ID() == c.MurdererID, correct)
			a, ok := l.Accusation()
			require.True(t, ok)
			require.Equal(t, evidence.Accusation{SuspectID: ch.ID(), Correct: correct}, a)
		}
	}

	c := casegen.Generate(1)
	_, err := evidence.NewLedger(1).Accuse(c, "nobody")
	require.True(t, errors.Is(err, models.ErrUnknownSuspect))
}

func TestLedger_Snapshot(t *testing.T) {
	l := evidence.NewLedger(evidence.DefaultBudget)
	l.Fold("sarah", models.EvidenceUpdate{ItemRevealed: true, ItemText: "rope"}, &models.Disclosure{Info: "x"})

	s := l.Snapshot()
	l.Fold("sarah", models.EvidenceUpdate{MotiveRevealed: true, MotiveText: "money"}, &models.Disclosure{Info: "y"})
	l.CountQuestion()

	require.False(t, s.Evidence("sarah").MotiveRevealed)
	require.True(t, s.Evidence("sarah").ItemRevealed)
	require.Len(t, s.Disclosures(), 1)
	require.Equal(t, evidence.DefaultBudget, s.Remaining())
}
