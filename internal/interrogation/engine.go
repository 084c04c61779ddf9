// Package interrogation answers free-text questions put to a suspect.
//
// Questions are classified by an ordered list of keyword rules; the first rule that matches answers. Characters
// never lie about others, only about themselves, and stop lying for good once they have been confronted with
// verified testimony.
package interrogation

import (
	"context"
	"github.com/myrjola/whodunit/internal/content"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/myrjola/whodunit/internal/random"
	"log/slog"
)

type Intent string

const (
	IntentConfront       Intent = "confront"
	IntentConfess        Intent = "confess"
	IntentName           Intent = "name"
	IntentItem           Intent = "item"
	IntentRelationship   Intent = "relationship"
	IntentOtherCharacter Intent = "other_character"
	IntentSuspicion      Intent = "suspicion"
	IntentAlibi          Intent = "alibi"
	IntentMotive         Intent = "motive"
	IntentVictim         Intent = "victim"
	IntentFallback       Intent = "fallback"
)

// Decider reports true with probability p. It decides whether a cornered character lies and whether a secret slips.
type Decider func(p float64) bool

// Config holds the behavioural probabilities.
type Config struct {
	// LieProbability is the chance that the murderer lies about the weapon, alibi or motive before being confronted.
	LieProbability float64
	// SecretProbability is the chance that a character volunteers a secret about someone they are asked about.
	SecretProbability float64
}

func DefaultConfig() Config {
	return Config{
		LieProbability:    0.5, //nolint:mnd // see DESIGN.md
		SecretProbability: 0.4, //nolint:mnd // see DESIGN.md
	}
}

// Turn is one line of an interrogation transcript.
type Turn struct {
	// Role is "user" for the detective and "assistant" for the suspect.
	Role    string
	Content string
}

type Request struct {
	SuspectID string
	Question  string
	// Disclosures is the detective's log of what characters told about each other.
	Disclosures []models.Disclosure
	// Known is what the detective already learned about the suspect.
	Known models.CharacterEvidence
	// History is the earlier conversation with the suspect. The rule engine ignores it.
	History []Turn
}

type Reply struct {
	Text   string
	Intent Intent
	// Lied is set when the answer replaced the truth.
	Lied       bool
	Disclosure *models.Disclosure
	Evidence   models.EvidenceUpdate
}

type Engine struct {
	c        *models.Case
	catalog  *content.Catalog
	cfg      Config
	decide   Decider
	phrasing random.Source
	classify *Classifier
	rules    []rule
}

type Option func(*Engine)

func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithDecider replaces the probabilistic lie and secret decisions. Tests use it to force either branch.
func WithDecider(d Decider) Option {
	return func(e *Engine) {
		e.decide = d
	}
}

// WithPhrasing sets the randomness used for mannerisms and sentence choice.
func WithPhrasing(src random.Source) Option {
	return func(e *Engine) {
		e.phrasing = src
	}
}

func WithCatalog(c *content.Catalog) Option {
	return func(e *Engine) {
		e.catalog = c
	}
}

func NewEngine(c *models.Case, opts ...Option) *Engine {
	e := &Engine{
		c:        c,
		catalog:  content.Default(),
		cfg:      DefaultConfig(),
		phrasing: random.Global(),
		classify: NewClassifier(c),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.decide == nil {
		e.decide = func(p float64) bool { return random.Chance(e.phrasing, p) }
	}
	e.rules = e.newRules()
	return e
}

// Ask answers one question. The only error is models.ErrUnknownSuspect; any text gets an answer.
func (e *Engine) Ask(_ context.Context, req Request) (Reply, error) {
	ch, err := e.c.Character(req.SuspectID)
	if err != nil {
		return Reply{}, err
	}
	q := e.classify.parse(req, ch)
	for _, r := range e.rules {
		if r.match(q) {
			reply := r.handle(q)
			reply.Intent = r.intent
			reply.Text = e.mannerism(ch) + reply.Text
			return reply, nil
		}
	}
	return Reply{}, errors.New("no rule matched", slog.String("question", req.Question))
}

// Classifier runs the intent rules against one case without answering. The case's name patterns are compiled once.
type Classifier struct {
	c     *models.Case
	names *names
}

func NewClassifier(c *models.Case) *Classifier {
	return &Classifier{c: c, names: compileNames(c)}
}

func (cl *Classifier) parse(req Request, ch *models.Character) *question {
	return parse(req, ch, cl.c, cl.names)
}

// Classify returns the intent the engine would answer question with. It has no side effects.
func (cl *Classifier) Classify(question string, ch *models.Character, disclosures []models.Disclosure) Intent {
	q := cl.parse(Request{Question: question, Disclosures: disclosures}, ch)
	for _, r := range classifiers {
		if r.match(q) {
			return r.intent
		}
	}
	return IntentFallback
}

// FindConfrontation reports whether question presents verified testimony to ch, without side effects.
func (cl *Classifier) FindConfrontation(
	question string,
	ch *models.Character,
	disclosures []models.Disclosure,
) (*models.Disclosure, bool) {
	q := cl.parse(Request{Question: question, Disclosures: disclosures}, ch)
	return q.confrontation, q.confrontation != nil
}

// ApplyConfrontation is FindConfrontation that also records the testimony on the character's disclosure state.
func (cl *Classifier) ApplyConfrontation(
	question string,
	ch *models.Character,
	disclosures []models.Disclosure,
) (*models.Disclosure, bool) {
	q := cl.parse(Request{Question: question, Disclosures: disclosures}, ch)
	if q.confrontation == nil {
		return nil, false
	}
	presentEvidence(q)
	return q.confrontation, true
}

func (e *Engine) mannerism(ch *models.Character) string {
	if len(ch.Facts.Suspect.Mannerisms) == 0 {
		return ""
	}
	return random.Pick(e.phrasing, ch.Facts.Suspect.Mannerisms)
}

// canLie reports whether ch may still replace an incriminating truth with a lie.
func canLie(ch *models.Character) bool {
	return ch.Facts.IsGuilty && !ch.Disclosure.HasOpenedUp && !ch.Disclosure.Confronted()
}
