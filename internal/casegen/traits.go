package casegen

import (
	"github.com/myrjola/whodunit/internal/content"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/myrjola/whodunit/internal/prng"
)

type trait int

const (
	traitMotive trait = iota
	traitMeans
	traitOpportunity
)

var allTraits = []trait{traitMotive, traitMeans, traitOpportunity}

func has(t models.Traits, tr trait) bool {
	switch tr {
	case traitMotive:
		return t.Motive
	case traitMeans:
		return t.Means
	default:
		return t.Opportunity
	}
}

func set(t *models.Traits, tr trait, v bool) {
	switch tr {
	case traitMotive:
		t.Motive = v
	case traitMeans:
		t.Means = v
	default:
		t.Opportunity = v
	}
}

// traits assigns MOTIVE, MEANS and OPPORTUNITY. The murderer holds all three. Innocents draw one or two, then MEANS
// is widened by the item they currently carry. Two repairs keep the puzzle fair: an innocent that ends up with all
// three loses MOTIVE or OPPORTUNITY, and every trait is held by at least one innocent so that no single trait
// identifies the murderer.
func (g *generator) traits() {
	for _, ch := range g.c.Characters {
		if ch.Facts.IsGuilty {
			ch.Facts.Traits = models.Traits{Motive: true, Means: true, Opportunity: true}
			continue
		}
		var t models.Traits
		for _, tr := range prng.Shuffle(g.r, allTraits)[:1+g.r.Intn(2)] {
			set(&t, tr, true)
		}
		t.Means = t.Means || ch.Facts.Item.WeaponTypeMatch
		if t.All() {
			if g.r.Chance(0.5) { //nolint:mnd // coin flip
				t.Motive = false
			} else {
				t.Opportunity = false
			}
		}
		ch.Facts.Traits = t
	}
	g.coverTraits()
}

func (g *generator) coverTraits() {
	innocents := g.innocents()
	for _, tr := range allTraits {
		covered := false
		for _, ch := range innocents {
			covered = covered || has(ch.Facts.Traits, tr)
		}
		if covered {
			continue
		}
		repaired := false
		for _, ch := range innocents {
			if ch.Facts.Traits.Count() == 1 {
				set(&ch.Facts.Traits, tr, true)
				repaired = true
				break
			}
		}
		if repaired {
			continue
		}
		// Every innocent holds the same two traits. Swap one of them for the missing trait, never MEANS because
		// it may come from the item.
		t := &innocents[0].Facts.Traits
		if t.Opportunity {
			t.Opportunity = false
		} else {
			t.Motive = false
		}
		set(t, tr, true)
	}
}

func (g *generator) innocents() []*models.Character {
	var innocents []*models.Character
	for _, ch := range g.c.Characters {
		if !ch.Facts.IsGuilty {
			innocents = append(innocents, ch)
		}
	}
	return innocents
}

// alibis places OPPORTUNITY holders near the crime scene with nothing to back them up. Everybody else was
// elsewhere, and a corroborating partner vouches for them.
func (g *generator) alibis() {
	crime := g.c.Crime
	for _, ch := range g.c.Characters {
		if ch.Facts.Traits.Opportunity {
			ch.Facts.Alibi = models.Alibi{
				Description:  content.Fill(prng.Pick(g.r, g.cat.Alibis.Near), "location", crime.Location),
				AtCrimeScene: true,
				Time:         crime.Time,
				Location:     "near " + crime.Location,
			}
			continue
		}
		alibi := models.Alibi{
			Description: prng.Pick(g.r, g.cat.Alibis.Elsewhere),
			Location:    prng.Pick(g.r, g.cat.Alibis.ElsewhereLocations),
			Time:        crime.Time,
			Verifiable:  g.r.Chance(verifiableAlibiProbability),
		}
		if partnerID, ok := g.c.PairOf(ch.ID()); ok {
			partner, _ := g.c.Character(partnerID)
			alibi.Witness = partner.Name()
			alibi.Description += ". " + content.Fill(g.cat.Alibis.PartnerWitness, "name", partner.Name())
		} else if g.r.Chance(witnessProbability) {
			alibi.Witness = "another guest"
			alibi.Description += ". " + g.cat.Alibis.Witness
		}
		ch.Facts.Alibi = alibi
	}
}

func (g *generator) motives() {
	for _, ch := range g.c.Characters {
		switch {
		case ch.Facts.IsGuilty:
			ch.Facts.Motive = models.Motive{Description: g.c.Crime.KillerMotive, HasMotive: true}
		case ch.Facts.Traits.Motive:
			ch.Facts.Motive = models.Motive{Description: prng.Pick(g.r, g.cat.WeakMotives), HasMotive: true}
		default:
			ch.Facts.Motive = models.Motive{Description: g.cat.NeutralMotive}
		}
	}
}
