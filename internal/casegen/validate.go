package casegen

import (
	"fmt"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/models"
	"log/slog"
)

// Validate checks the invariants that make a case fair and solvable.
func Validate(c *models.Case) error {
	var errs []error
	fail := func(msg string, attrs ...slog.Attr) {
		errs = append(errs, errors.New(msg, attrs...))
	}

	if len(c.Characters) < MinSuspectCount {
		fail(fmt.Sprintf("case has %d suspects, need at least %d", len(c.Characters), MinSuspectCount))
	}

	var (
		guilty        []*models.Character
		murderWeapons int
		decoys        int
		ids           = map[string]bool{}
		innocentHas   models.Traits
	)
	for _, ch := range c.Characters {
		id := slog.String("suspect_id", ch.ID())
		if ids[ch.ID()] {
			fail("duplicate suspect", id)
		}
		ids[ch.ID()] = true

		f := ch.Facts
		if f.Item.IsMurderWeapon {
			murderWeapons++
		} else if f.Item.WeaponTypeMatch {
			decoys++
		}
		if f.Item.WeaponTypeMatch && !f.Traits.Means {
			fail("carries a weapon without MEANS", id)
		}
		if f.Traits.Opportunity != f.Alibi.AtCrimeScene {
			fail("alibi disagrees with OPPORTUNITY", id)
		}
		if f.Traits.Motive != f.Motive.HasMotive {
			fail("motive disagrees with MOTIVE", id)
		}
		for _, target := range f.Suspicion.TargetIDs {
			if target == ch.ID() {
				fail("suspects themselves", id)
			}
		}

		if f.IsGuilty {
			guilty = append(guilty, ch)
			if !f.Traits.All() {
				fail("murderer lacks a trait", id)
			}
			continue
		}
		if f.Traits.All() {
			fail("innocent holds all three traits", id)
		}
		innocentHas.Motive = innocentHas.Motive || f.Traits.Motive
		innocentHas.Means = innocentHas.Means || f.Traits.Means
		innocentHas.Opportunity = innocentHas.Opportunity || f.Traits.Opportunity
	}

	switch {
	case len(guilty) != 1:
		fail(fmt.Sprintf("case has %d guilty suspects", len(guilty)))
	case guilty[0].ID() != c.MurdererID:
		fail("murderer id does not match the guilty suspect", slog.String("murderer_id", c.MurdererID))
	}
	if murderWeapons != 1 {
		fail(fmt.Sprintf("case has %d murder weapons", murderWeapons))
	}
	if decoys != 1 {
		fail(fmt.Sprintf("case has %d decoy weapons", decoys))
	}
	if !innocentHas.All() {
		fail("a trait is held by the murderer alone")
	}

	if len(errs) > 0 {
		return errors.Wrap(errors.Join(errs...), "invalid case", slog.Int64("seed", c.Seed))
	}
	return nil
}
