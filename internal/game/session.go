// Package game runs play-throughs: one case, one ledger and one transcript per session.
package game

import (
	"context"
	"fmt"
	"github.com/myrjola/whodunit/internal/casegen"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/evidence"
	"github.com/myrjola/whodunit/internal/interrogation"
	"github.com/myrjola/whodunit/internal/logging"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/myrjola/whodunit/internal/responder"
	"io"
	"log/slog"
	"sync"
	"time"
)

// TimesUpMessage answers every question once the budget is spent.
const TimesUpMessage = "Time's up, detective. There are no more questions to ask. It's time to make your accusation."

// Archive stores the play log. It is never read back to rebuild a case.
type Archive interface {
	AppendCompletion(ctx context.Context, sessionID string, suspectID string, question string, answer string) error
	RecordVerdict(ctx context.Context, verdict models.Verdict) error
}

// ResponderFactory builds the responder for a freshly generated case.
type ResponderFactory func(c *models.Case) responder.Responder

// LocalResponders answers with the rule engine only.
func LocalResponders(cfg interrogation.Config) ResponderFactory {
	return func(c *models.Case) responder.Responder {
		return responder.NewLocal(interrogation.NewEngine(c, interrogation.WithConfig(cfg)))
	}
}

// Answer is the outcome of one question.
type Answer struct {
	Reply     interrogation.Reply
	Remaining int
	// TimesUp is set when the question was refused because the budget is spent.
	TimesUp bool
}

type Session struct {
	mu           sync.Mutex
	id           string
	c            *models.Case
	ledger       *evidence.Ledger
	history      map[string][]interrogation.Turn
	responder    responder.Responder
	newResponder ResponderFactory
	archive      Archive
	budget       int
	logger       *slog.Logger
}

type Option func(*Session)

func WithBudget(n int) Option {
	return func(s *Session) {
		s.budget = n
	}
}

func WithArchive(a Archive) Option {
	return func(s *Session) {
		s.archive = a
	}
}

func WithResponders(f ResponderFactory) Option {
	return func(s *Session) {
		s.newResponder = f
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

func NewSession(id string, c *models.Case, opts ...Option) *Session {
	s := &Session{
		id:           id,
		budget:       evidence.DefaultBudget,
		newResponder: LocalResponders(interrogation.DefaultConfig()),
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("source", "game.Session")
	s.reset(c)
	return s
}

func (s *Session) reset(c *models.Case) {
	s.c = c
	s.ledger = evidence.NewLedger(s.budget)
	s.history = map[string][]interrogation.Turn{}
	s.responder = s.newResponder(c)
}

func (s *Session) ID() string {
	return s.id
}

// transcriptID keys the archive. A replay starts a new transcript within the same session.
func (s *Session) transcriptID() string {
	return fmt.Sprintf("%s-%d", s.id, s.c.Seed)
}

// Ask answers question by suspectID. Questions of one session are answered one at a time, and the budget and ledger
// change together with the reply.
func (s *Session) Ask(ctx context.Context, suspectID string, question string) (Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = logging.WithAttrs(ctx,
		slog.String("session_id", s.id),
		slog.Int("case_number", s.c.CaseNumber),
		slog.String("suspect_id", suspectID),
	)

	if s.ledger.Exhausted() {
		return Answer{Reply: interrogation.Reply{Text: TimesUpMessage}, TimesUp: true}, nil
	}
	if _, err := s.c.Character(suspectID); err != nil {
		return Answer{}, err
	}

	reply, err := s.responder.Respond(ctx, interrogation.Request{
		SuspectID:   suspectID,
		Question:    question,
		Disclosures: s.ledger.Disclosures(),
		Known:       s.ledger.Evidence(suspectID),
		History:     append([]interrogation.Turn(nil), s.history[suspectID]...),
	})
	if err != nil {
		return Answer{}, errors.Wrap(err, "respond")
	}

	s.ledger.CountQuestion()
	if s.ledger.Fold(suspectID, reply.Evidence, reply.Disclosure) {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "new disclosure",
			slog.String("about_id", reply.Disclosure.AboutCharacterID))
	}
	s.history[suspectID] = append(s.history[suspectID],
		interrogation.Turn{Role: "user", Content: question},
		interrogation.Turn{Role: "assistant", Content: reply.Text},
	)
	if s.archive != nil {
		if err = s.archive.AppendCompletion(ctx, s.transcriptID(), suspectID, question, reply.Text); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelError, "could not archive completion", errors.SlogError(err))
		}
	}
	return Answer{Reply: reply, Remaining: s.ledger.Remaining()}, nil
}

// Accuse records the verdict and reports whether suspectID is the murderer.
func (s *Session) Accuse(ctx context.Context, suspectID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	correct, err := s.ledger.Accuse(s.c, suspectID)
	if err != nil {
		return false, err
	}
	if s.archive != nil {
		verdict := models.Verdict{
			SessionID:  s.transcriptID(),
			CaseNumber: s.c.CaseNumber,
			Seed:       s.c.Seed,
			AccusedID:  suspectID,
			Correct:    correct,
			CreatedAt:  time.Now(),
		}
		if err = s.archive.RecordVerdict(ctx, verdict); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelError, "could not archive verdict", errors.SlogError(err))
		}
	}
	return correct, nil
}

// Replay throws the current case away and starts over with a case seeded from now.
func (s *Session) Replay(now time.Time, opts ...casegen.Option) *models.Case {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(casegen.Replay(now, opts...))
	return s.c
}

// State is a consistent view of a session for rendering.
type State struct {
	// TranscriptID is the session id the archive knows this play-through by.
	TranscriptID string
	Case         *models.Case
	Ledger       *evidence.Ledger
	History      map[string][]interrogation.Turn
	Accusation   *evidence.Accusation
}

// State returns a snapshot. The case is shared and must be treated as read-only.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := make(map[string][]interrogation.Turn, len(s.history))
	for id, turns := range s.history {
		history[id] = append([]interrogation.Turn(nil), turns...)
	}
	st := State{
		TranscriptID: s.transcriptID(),
		Case:         s.c,
		Ledger:       s.ledger.Snapshot(),
		History:      history,
	}
	if a, ok := s.ledger.Accusation(); ok {
		st.Accusation = &a
	}
	return st
}
