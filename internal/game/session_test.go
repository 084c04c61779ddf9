package game_test

import (
	"context"
	"fmt"
	"github.com/myrjola/whodunit/internal/casegen"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/game"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/myrjola/whodunit/internal/testhelpers"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeArchive struct {
	mu          sync.Mutex
	completions []models.Completion
	verdicts    []models.Verdict
	err         error
}

func (a *fakeArchive) AppendCompletion(_ context.Context, sessionID, suspectID, question, answer string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.completions = append(a.completions, models.Completion{
		SessionID: sessionID,
		SuspectID: suspectID,
		Order:     int64(len(a.completions)),
		Question:  question,
		Answer:    answer,
	})
	return nil
}

func (a *fakeArchive) RecordVerdict(_ context.Context, verdict models.Verdict) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.verdicts = append(a.verdicts, verdict)
	return nil
}

var june15 = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func newSession(t *testing.T, opts ...game.Option) (*game.Session, *fakeArchive) {
	t.Helper()
	archive := &fakeArchive{}
	c := casegen.Generate(20240615, casegen.WithClock(func() time.Time { return june15 }))
	opts = append([]game.Option{game.WithArchive(archive), game.WithLogger(testhelpers.NewLogger(io.Discard))}, opts...)
	return game.NewSession("session-1", c, opts...), archive
}

func TestSession_Ask(t *testing.T) {
	ctx := context.Background()
	s, archive := newSession(t)
	killer := s.State().Case.MurdererID

	for range 2 {
		answer, err := s.Ask(ctx, killer, "What is your name?")
		require.NoError(t, err)
		require.False(t, answer.TimesUp)
		require.NotEmpty(t, answer.Reply.Text)
	}

	st := s.State()
	require.Equal(t, st.Ledger.Budget()-2, st.Ledger.Remaining())
	require.True(t, st.Ledger.Evidence(killer).NameRevealed)
	require.Len(t, st.History[killer], 4)
	require.Len(t, archive.completions, 2)
	require.Equal(t, "session-1-20240615", archive.completions[0].SessionID)
	require.Equal(t, st.TranscriptID, archive.completions[0].SessionID)
	require.Equal(t, "What is your name?", archive.completions[1].Question)
}

func TestSession_UnknownSuspect(t *testing.T) {
	s, archive := newSession(t)
	_, err := s.Ask(context.Background(), "nobody", "Who are you?")
	require.True(t, errors.Is(err, models.ErrUnknownSuspect))

	st := s.State()
	require.Equal(t, st.Ledger.Budget(), st.Ledger.Remaining())
	require.Empty(t, st.History)
	require.Empty(t, archive.completions)
}

func TestSession_BudgetExhausted(t *testing.T) {
	ctx := context.Background()
	s, archive := newSession(t, game.WithBudget(1))
	id := s.State().Case.Characters[1].ID()

	answer, err := s.Ask(ctx, id, "Where were you?")
	require.NoError(t, err)
	require.Zero(t, answer.Remaining)

	answer, err = s.Ask(ctx, id, "What is your name?")
	require.NoError(t, err)
	require.True(t, answer.TimesUp)
	require.Equal(t, game.TimesUpMessage, answer.Reply.Text)

	// Even unknown suspects get the same answer once time is up.
	answer, err = s.Ask(ctx, "nobody", "Hello?")
	require.NoError(t, err)
	require.True(t, answer.TimesUp)

	st := s.State()
	require.False(t, st.Ledger.Evidence(id).NameRevealed)
	require.Len(t, st.History[id], 2)
	require.Len(t, archive.completions, 1)
}

func TestSession_ConcurrentQuestionsRespectBudget(t *testing.T) {
	s, _ := newSession(t, game.WithBudget(10))
	ids := s.State().Case.Characters

	var answered atomic.Int32
	g, ctx := errgroup.WithContext(context.Background())
	for i := range 40 {
		g.Go(func() error {
			answer, err := s.Ask(ctx, ids[i%len(ids)].ID(), "What do you think of the victim?")
			if err != nil {
				return err
			}
			if !answer.TimesUp {
				answered.Add(1)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Equal(t, int32(10), answered.Load())
	require.True(t, s.State().Ledger.Exhausted())
}

func TestSession_ArchiveErrorsDoNotFailQuestions(t *testing.T) {
	s, archive := newSession(t)
	archive.err = errors.New("disk full")
	c := s.State().Case

	_, err := s.Ask(context.Background(), c.MurdererID, "What is your name?")
	require.NoError(t, err)
	correct, err := s.Accuse(context.Background(), c.MurdererID)
	require.NoError(t, err)
	require.True(t, correct)
}

func TestSession_Accuse(t *testing.T) {
	ctx := context.Background()
	s, archive := newSession(t)
	c := s.State().Case

	_, err := s.Accuse(ctx, "nobody")
	require.True(t, errors.Is(err, models.ErrUnknownSuspect))
	require.Nil(t, s.State().Accusation)

	innocent := c.Characters[1].ID()
	correct, err := s.Accuse(ctx, innocent)
	require.NoError(t, err)
	require.False(t, correct)
	require.Equal(t, innocent, s.State().Accusation.SuspectID)

	correct, err = s.Accuse(ctx, c.MurdererID)
	require.NoError(t, err)
	require.True(t, correct)

	require.Len(t, archive.verdicts, 2)
	require.Equal(t, c.CaseNumber, archive.verdicts[1].CaseNumber)
	require.Equal(t, c.Seed, archive.verdicts[1].Seed)
	require.Equal(t, s.State().TranscriptID, archive.verdicts[1].SessionID)
	require.True(t, archive.verdicts[1].Correct)
}

func TestSession_Replay(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t)
	before := s.State().Case
	_, err := s.Ask(ctx, before.MurdererID, "What is your name?")
	require.NoError(t, err)

	replayed := s.Replay(june15.Add(time.Minute), casegen.WithClock(func() time.Time { return june15 }))
	require.Equal(t, june15.Add(time.Minute).UnixMilli(), replayed.Seed)
	require.Equal(t, before.CaseNumber, replayed.CaseNumber)

	st := s.State()
	require.Same(t, replayed, st.Case)
	require.Equal(t, st.Ledger.Budget(), st.Ledger.Remaining())
	require.Empty(t, st.History)
	require.Empty(t, st.Ledger.Disclosures())
	require.Equal(t, fmt.Sprintf("session-1-%d", replayed.Seed), st.TranscriptID)
}

func TestStore(t *testing.T) {
	newCase := func() *models.Case {
		return casegen.Generate(1, casegen.WithClock(func() time.Time { return june15 }))
	}
	st := game.NewStore(newCase, game.WithSessionOptions(game.WithLogger(testhelpers.NewLogger(io.Discard))))

	s := st.Create()
	require.NotEmpty(t, s.ID())
	got, err := st.Get(s.ID())
	require.NoError(t, err)
	require.Same(t, s, got)
	require.Same(t, s, st.GetOrCreate(s.ID()))

	_, err = st.Get("missing")
	require.True(t, errors.Is(err, game.ErrSessionNotFound))

	fresh := st.GetOrCreate("missing")
	require.NotEqual(t, "missing", fresh.ID())
	require.Equal(t, 2, st.Len())
}

func TestStore_Evict(t *testing.T) {
	newCase := func() *models.Case {
		return casegen.Generate(1, casegen.WithClock(func() time.Time { return june15 }))
	}
	now := june15
	st := game.NewStore(newCase, game.WithClock(func() time.Time { return now }))

	touched := st.Create()
	now = now.Add(time.Hour)
	untouched := st.Create()
	now = now.Add(time.Hour)
	_, err := st.Get(touched.ID())
	require.NoError(t, err)
	now = now.Add(time.Hour)
	late := st.Create()
	now = now.Add(24 * time.Hour)

	tests := []struct {
		name      string
		cutoff    time.Time
		evicted   int
		remaining int
		gone      *game.Session
	}{
		{"nothing idle long enough", june15, 0, 3, nil},
		{"get counts as use", june15.Add(90 * time.Minute), 1, 2, untouched},
		{"everything", now, 2, 0, late},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.evicted, st.Evict(tt.cutoff))
			require.Equal(t, tt.remaining, st.Len())
			if tt.gone != nil {
				_, err := st.Get(tt.gone.ID())
				require.True(t, errors.Is(err, game.ErrSessionNotFound))
			}
		})
	}

	require.NotEqual(t, touched.ID(), st.GetOrCreate(touched.ID()).ID(), "an evicted visitor starts over")
}

func TestStore_RunEviction(t *testing.T) {
	newCase := func() *models.Case {
		return casegen.Generate(1, casegen.WithClock(func() time.Time { return june15 }))
	}
	var now atomic.Int64
	now.Store(june15.UnixNano())
	st := game.NewStore(newCase,
		game.WithClock(func() time.Time { return time.Unix(0, now.Load()) }),
		game.WithStoreLogger(testhelpers.NewLogger(io.Discard)),
	)
	st.Create()
	st.Create()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		st.RunEviction(ctx, time.Millisecond, 24*time.Hour)
	}()

	time.Sleep(10 * time.Millisecond)
	require.Equal(t, 2, st.Len(), "sessions within the idle limit survive")

	now.Store(june15.Add(25 * time.Hour).UnixNano())
	require.Eventually(t, func() bool { return st.Len() == 0 }, time.Second, time.Millisecond)

	cancel()
	<-done
}
