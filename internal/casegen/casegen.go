// Package casegen builds murder cases from a seed.
//
// Every fact of a case is a pure function of the seed and the catalog: the only randomness consumed is the
// prng stream, in a fixed order. Reordering draws changes every case ever generated, so new draws go at the end of
// the step they belong to.
package casegen

import (
	"fmt"
	"github.com/myrjola/whodunit/internal/content"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/myrjola/whodunit/internal/prng"
	"time"
)

const (
	// DefaultSuspectCount is how many suspects a case has unless WithSuspectCount says otherwise.
	DefaultSuspectCount = 5
	// MinSuspectCount is needed for two disjoint corroborating pairs.
	MinSuspectCount = 4

	guiltyIndex = 0
	decoyIndex  = 2

	acquaintancePairProbability = 0.6
	verifiableAlibiProbability  = 0.6
	witnessProbability          = 0.5
	positiveOpinionThreshold    = 0.3
	neutralOpinionThreshold     = 0.6
	noSuspicionThreshold        = 0.2
	oneSuspicionThreshold       = 0.6
	suspectKillerProbability    = 0.4
	maxSwaps                    = 2
)

var caseNumberEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

type options struct {
	catalog      *content.Catalog
	now          func() time.Time
	suspectCount int
}

type Option func(*options)

// WithClock sets the clock used for the case number and date.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func WithCatalog(c *content.Catalog) Option {
	return func(o *options) {
		o.catalog = c
	}
}

// WithSuspectCount overrides the number of suspects. It panics at generation if n is below MinSuspectCount or
// above the roster size.
func WithSuspectCount(n int) Option {
	return func(o *options) {
		o.suspectCount = n
	}
}

// Today generates the case of the calendar day of now. Everybody gets the same case on the same day.
func Today(now time.Time, opts ...Option) *models.Case {
	return Generate(prng.TodaySeed(now), append([]Option{WithClock(func() time.Time { return now })}, opts...)...)
}

// Replay generates a fresh case seeded from the timestamp.
func Replay(now time.Time, opts ...Option) *models.Case {
	return Generate(prng.ReplaySeed(now), append([]Option{WithClock(func() time.Time { return now })}, opts...)...)
}

// Generate builds the case for seed. It panics if the result violates a case invariant, which is a programming
// error in the generator or the catalog.
func Generate(seed int64, opts ...Option) *models.Case {
	o := options{
		catalog:      content.Default(),
		now:          time.Now,
		suspectCount: DefaultSuspectCount,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.suspectCount < MinSuspectCount || o.suspectCount > len(o.catalog.Suspects) {
		panic(fmt.Sprintf("casegen: suspect count %d out of range [%d, %d]",
			o.suspectCount, MinSuspectCount, len(o.catalog.Suspects)))
	}

	g := &generator{
		r:   prng.New(seed),
		cat: o.catalog,
		c:   &models.Case{Seed: seed},
	}
	g.caseNumber(o.now())
	g.cast(o.suspectCount)
	g.crime()
	g.pairs()
	g.items()
	g.swaps()
	g.traits()
	g.alibis()
	g.motives()
	g.relationships()
	g.suspicions()

	if err := Validate(g.c); err != nil {
		panic(fmt.Sprintf("casegen: seed %d: %v", seed, err))
	}
	return g.c
}

type generator struct {
	r   *prng.Rand
	cat *content.Catalog
	c   *models.Case
}

func (g *generator) caseNumber(now time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	g.c.CaseNumber = int(day.Sub(caseNumberEpoch).Hours()/24) + 1 //nolint:mnd // hours per day
	g.c.Date = now
}

// cast draws the victim and the suspects. The suspect at guiltyIndex is the murderer; the shuffle decides who that
// is.
func (g *generator) cast(n int) {
	v := prng.Pick(g.r, g.cat.Victims)
	g.c.Victim = models.Victim{
		Name:       v.Name,
		Occupation: v.Occupation,
		Background: v.Background,
	}
	for i, s := range prng.Shuffle(g.r, g.cat.Suspects)[:n] {
		g.c.Characters = append(g.c.Characters, &models.Character{
			Facts: models.CharacterFacts{
				Suspect:  s,
				IsGuilty: i == guiltyIndex,
			},
			Disclosure: models.NewDisclosureState(),
		})
	}
	g.c.MurdererID = g.c.Characters[guiltyIndex].ID()
}

func (g *generator) crime() {
	g.c.Crime = models.Crime{
		Cause:        prng.Pick(g.r, g.cat.Causes),
		Location:     prng.Pick(g.r, g.cat.Locations),
		Time:         prng.Pick(g.r, g.cat.Times),
		KillerMotive: prng.Pick(g.r, g.cat.KillerMotives),
	}
	g.c.Victim.Description = fmt.Sprintf("%s, %s, was found %s in %s around %s.",
		g.c.Victim.Name, g.c.Victim.Occupation, g.c.Crime.Cause, g.c.Crime.Location, g.c.Crime.Time)
}

// pairs seeds two disjoint pairs that know each other well and corroborate each other's alibi, plus an optional
// weaker acquaintance link for the fifth suspect.
func (g *generator) pairs() {
	types := prng.Shuffle(g.r, g.cat.RelationshipTypes)
	chars := g.c.Characters
	for k := range 2 {
		a, b := chars[2*k], chars[2*k+1]
		g.c.RelationshipPairs = append(g.c.RelationshipPairs, models.RelationshipPair{
			FirstID:      a.ID(),
			SecondID:     b.ID(),
			Type:         types[k].Type,
			Description:  types[k].Description,
			Corroborates: true,
		})
	}
	if len(chars) > MinSuspectCount && g.r.Chance(acquaintancePairProbability) {
		partner := chars[g.r.Intn(MinSuspectCount)]
		g.c.RelationshipPairs = append(g.c.RelationshipPairs, models.RelationshipPair{
			FirstID:     chars[MinSuspectCount].ID(),
			SecondID:    partner.ID(),
			Type:        g.cat.AcquaintanceType,
			Description: g.cat.AcquaintanceType,
		})
	}
}

// items hands the murder weapon to the guilty suspect, a decoy of the same kind to one innocent and innocent items
// to the rest.
func (g *generator) items() {
	weapons := prng.Shuffle(g.r, g.cat.WeaponsFor(g.c.Crime.Cause))
	innocent := prng.Shuffle(g.r, g.cat.InnocentItems)
	next := 0
	for i, ch := range g.c.Characters {
		var item models.Item
		switch i {
		case guiltyIndex:
			item = toItem(weapons[0], true)
			item.IsMurderWeapon = true
			g.c.Crime.WeaponID = item.ID
			g.c.Crime.WeaponName = item.Name
		case decoyIndex:
			item = toItem(weapons[1], true)
		default:
			item = toItem(innocent[next], false)
			next++
		}
		item.OriginalOwnerID = ch.ID()
		ch.Facts.Item = item
	}
	g.c.Crime.HowItHappened = fmt.Sprintf("%s %s %s with the %s in %s around %s. %s.",
		g.c.Characters[guiltyIndex].Name(), g.c.Crime.Cause, g.c.Victim.Name, g.c.Crime.WeaponName,
		g.c.Crime.Location, g.c.Crime.Time, g.c.Crime.KillerMotive)
}

func toItem(t content.ItemTemplate, weapon bool) models.Item {
	return models.Item{
		ID:              t.ID,
		Name:            t.Name,
		Description:     t.Description,
		Emoji:           t.Emoji,
		WeaponTypeMatch: weapon,
	}
}

// swaps exchanges current items between random pairs. OriginalOwnerID travels with the item.
func (g *generator) swaps() {
	n := len(g.c.Characters)
	for range g.r.Intn(maxSwaps + 1) {
		i := g.r.Intn(n)
		j := g.r.Intn(n - 1)
		if j >= i {
			j++
		}
		a, b := g.c.Characters[i], g.c.Characters[j]
		g.c.ItemSwaps = append(g.c.ItemSwaps, models.ItemSwap{
			FirstID:      a.ID(),
			SecondID:     b.ID(),
			FirstItemID:  a.Facts.Item.ID,
			SecondItemID: b.Facts.Item.ID,
			Reason:       prng.Pick(g.r, g.cat.SwapReasons),
		})
		a.Facts.Item, b.Facts.Item = b.Facts.Item, a.Facts.Item
	}
}
