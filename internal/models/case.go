package models

import (
	"github.com/myrjola/whodunit/internal/errors"
	"log/slog"
	"time"
)

// ErrUnknownSuspect is returned when a suspect id is not part of the case.
var ErrUnknownSuspect = errors.NewSentinel("unknown suspect")

// VictimID is the relationship target id used for opinions and secrets about the victim.
const VictimID = "victim"

// Suspect is an entry of the static roster shared by all cases.
type Suspect struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Occupation  string   `yaml:"occupation"`
	Personality string   `yaml:"personality"`
	Aliases     []string `yaml:"aliases"`
	// Mannerisms are prefixes that flavour replies, e.g. "*adjusts hat* ".
	Mannerisms []string `yaml:"mannerisms"`
}

type Victim struct {
	Name        string
	Occupation  string
	Description string
	Background  string
}

// Crime holds the solution of the case.
type Crime struct {
	Cause         string
	WeaponID      string
	WeaponName    string
	Time          string
	Location      string
	KillerMotive  string
	HowItHappened string
}

type Polarity string

const (
	PolarityPositive Polarity = "positive"
	PolarityNeutral  Polarity = "neutral"
	PolarityNegative Polarity = "negative"
)

// InfoType categorises a secret or a disclosure by the trait it points at.
type InfoType string

const (
	InfoMotive      InfoType = "motive"
	InfoMeans       InfoType = "means"
	InfoOpportunity InfoType = "opportunity"
	InfoGeneral     InfoType = "general"
)

// Relationship is what one character thinks and knows about another participant, the victim included.
type Relationship struct {
	TargetID       string
	TargetName     string
	Opinion        Polarity
	Reason         string
	Type           string
	Secret         string
	SecretCategory InfoType
}

type Alibi struct {
	Description string
	Verifiable  bool
	// AtCrimeScene is the OPPORTUNITY signal.
	AtCrimeScene bool
	Time         string
	Location     string
	Witness      string
}

type Item struct {
	ID          string
	Name        string
	Description string
	Emoji       string
	// WeaponTypeMatch is true when the item could have caused the death. It is the physical MEANS channel.
	WeaponTypeMatch bool
	IsMurderWeapon  bool
	// OriginalOwnerID is who held the item after distribution and before any swap.
	OriginalOwnerID string
}

type Motive struct {
	Description string
	HasMotive   bool
}

// Traits are the three guilt signals. Only the murderer holds all of them.
type Traits struct {
	Motive      bool
	Means       bool
	Opportunity bool
}

func (t Traits) Count() int {
	n := 0
	for _, b := range []bool{t.Motive, t.Means, t.Opportunity} {
		if b {
			n++
		}
	}
	return n
}

func (t Traits) All() bool {
	return t.Count() == 3 //nolint:mnd // motive, means and opportunity
}

type SuspicionKind string

const (
	SuspicionNone     SuspicionKind = "none"
	SuspicionOne      SuspicionKind = "one"
	SuspicionMultiple SuspicionKind = "multiple"
)

// Suspicion is a character's own theory of the crime.
type Suspicion struct {
	Kind      SuspicionKind
	TargetIDs []string
	Reason    string
}

// CharacterFacts are generated once and must not be modified afterwards.
type CharacterFacts struct {
	Suspect              Suspect
	IsGuilty             bool
	Traits               Traits
	Alibi                Alibi
	Item                 Item
	Motive               Motive
	Relationships        []Relationship
	RelationshipToVictim string
	Suspicion            Suspicion
}

// Relationship returns the relationship towards targetID. The victim is addressed with VictimID.
func (f *CharacterFacts) Relationship(targetID string) (Relationship, bool) {
	for _, r := range f.Relationships {
		if r.TargetID == targetID {
			return r, true
		}
	}
	return Relationship{}, false
}

// DisclosureState is the only part of a character that changes during play.
type DisclosureState struct {
	// PresentedEvidence grows only.
	PresentedEvidence []string
	// HasOpenedUp stays true once set. An opened up character no longer lies.
	HasOpenedUp bool
	// SecretsRevealed is keyed by relationship target id.
	SecretsRevealed map[string]bool
}

func NewDisclosureState() *DisclosureState {
	return &DisclosureState{SecretsRevealed: map[string]bool{}}
}

// Confronted reports whether verified evidence has been put to the character.
func (d *DisclosureState) Confronted() bool {
	return len(d.PresentedEvidence) > 0
}

// Present records a confrontation and opens the character up for good.
func (d *DisclosureState) Present(evidence string) {
	d.PresentedEvidence = append(d.PresentedEvidence, evidence)
	d.HasOpenedUp = true
}

type Character struct {
	Facts      CharacterFacts
	Disclosure *DisclosureState
}

func (c *Character) ID() string {
	return c.Facts.Suspect.ID
}

func (c *Character) Name() string {
	return c.Facts.Suspect.Name
}

// ItemSwap records two suspects exchanging their current items.
type ItemSwap struct {
	FirstID      string
	SecondID     string
	FirstItemID  string
	SecondItemID string
	Reason       string
}

// RelationshipPair marks two suspects who know each other. Corroborating pairs vouch for each other's alibi.
type RelationshipPair struct {
	FirstID      string
	SecondID     string
	Type         string
	Description  string
	Corroborates bool
}

// Case is the aggregate of one play-through. Everything but the characters' DisclosureState is read-only.
type Case struct {
	CaseNumber        int
	Date              time.Time
	Seed              int64
	Victim            Victim
	Crime             Crime
	Characters        []*Character
	MurdererID        string
	ItemSwaps         []ItemSwap
	RelationshipPairs []RelationshipPair
}

// Character returns the character with the given suspect id or ErrUnknownSuspect.
func (c *Case) Character(id string) (*Character, error) {
	for _, ch := range c.Characters {
		if ch.ID() == id {
			return ch, nil
		}
	}
	return nil, errors.Wrap(ErrUnknownSuspect, "find character", slog.String("suspect_id", id))
}

// Murderer returns the guilty character.
func (c *Case) Murderer() *Character {
	for _, ch := range c.Characters {
		if ch.Facts.IsGuilty {
			return ch
		}
	}
	return nil
}

// IsMurderer compares id against the solution.
func (c *Case) IsMurderer(id string) bool {
	return id == c.MurdererID
}

// PairOf returns the corroborating partner id of the suspect, if any.
func (c *Case) PairOf(id string) (string, bool) {
	for _, p := range c.RelationshipPairs {
		if !p.Corroborates {
			continue
		}
		switch id {
		case p.FirstID:
			return p.SecondID, true
		case p.SecondID:
			return p.FirstID, true
		}
	}
	return "", false
}
