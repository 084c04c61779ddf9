package casegen

import (
	"github.com/myrjola/whodunit/internal/content"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/myrjola/whodunit/internal/prng"
)

// relationships builds what every suspect thinks and knows about every other participant. Secrets about a suspect
// point at a trait that suspect really has, so they work as checkable clues.
func (g *generator) relationships() {
	for _, ch := range g.c.Characters {
		ch.Facts.RelationshipToVictim = prng.Pick(g.r, g.cat.RelationshipsToVictim)
		for _, other := range g.c.Characters {
			if other == ch {
				continue
			}
			polarity, reason := g.opinion(other.Name())
			category, secret := g.secretAbout(other)
			ch.Facts.Relationships = append(ch.Facts.Relationships, models.Relationship{
				TargetID:       other.ID(),
				TargetName:     other.Name(),
				Opinion:        polarity,
				Reason:         reason,
				Type:           g.pairType(ch.ID(), other.ID()),
				Secret:         secret,
				SecretCategory: category,
			})
		}
		ch.Facts.Relationships = append(ch.Facts.Relationships, g.victimRelationship(ch))
	}
}

func (g *generator) victimRelationship(ch *models.Character) models.Relationship {
	rel := models.Relationship{
		TargetID:       models.VictimID,
		TargetName:     g.c.Victim.Name,
		Type:           prng.Pick(g.r, g.cat.VictimRelationshipTypes),
		Secret:         prng.Pick(g.r, g.cat.Secrets.Victim),
		SecretCategory: models.InfoGeneral,
	}
	if ch.Facts.IsGuilty {
		rel.Opinion = models.PolarityNegative
		rel.Reason = g.cat.KillerVictimOpinion
		return rel
	}
	rel.Opinion, rel.Reason = g.opinion(g.c.Victim.Name)
	return rel
}

func (g *generator) opinion(target string) (models.Polarity, string) {
	var (
		polarity models.Polarity
		pool     []string
	)
	switch f := g.r.Float(); {
	case f < positiveOpinionThreshold:
		polarity, pool = models.PolarityPositive, g.cat.Opinions.Positive
	case f < neutralOpinionThreshold:
		polarity, pool = models.PolarityNeutral, g.cat.Opinions.Neutral
	default:
		polarity, pool = models.PolarityNegative, g.cat.Opinions.Negative
	}
	return polarity, content.Fill(prng.Pick(g.r, pool), "target", target)
}

func (g *generator) secretAbout(target *models.Character) (models.InfoType, string) {
	var categories []models.InfoType
	t := target.Facts.Traits
	if t.Motive {
		categories = append(categories, models.InfoMotive)
	}
	if t.Means {
		categories = append(categories, models.InfoMeans)
	}
	if t.Opportunity {
		categories = append(categories, models.InfoOpportunity)
	}
	if len(categories) == 0 {
		return models.InfoGeneral, content.Fill(g.cat.Secrets.General, "name", target.Name())
	}

	category := prng.Pick(g.r, categories)
	var pool []string
	switch category {
	case models.InfoMotive:
		pool = g.cat.Secrets.Motive
	case models.InfoMeans:
		pool = g.cat.Secrets.Means
	default:
		pool = g.cat.Secrets.Opportunity
	}
	weapon := g.c.Crime.WeaponName
	if target.Facts.Item.WeaponTypeMatch {
		weapon = target.Facts.Item.Name
	}
	return category, content.Fill(prng.Pick(g.r, pool),
		"name", target.Name(),
		"weapon", weapon,
		"location", g.c.Crime.Location,
		"time", g.c.Crime.Time,
	)
}

func (g *generator) pairType(a, b string) string {
	for _, p := range g.c.RelationshipPairs {
		if (p.FirstID == a && p.SecondID == b) || (p.FirstID == b && p.SecondID == a) {
			return p.Type
		}
	}
	return g.cat.DefaultRelationshipType
}

// suspicions gives every suspect a theory. The murderer points at a random innocent; innocents may suspect nobody,
// one person (the murderer, sometimes) or several.
func (g *generator) suspicions() {
	chars := g.c.Characters
	killer := chars[guiltyIndex]
	for _, ch := range chars {
		if ch.Facts.IsGuilty {
			innocents := make([]*models.Character, 0, len(chars)-1)
			for _, o := range chars {
				if o != ch {
					innocents = append(innocents, o)
				}
			}
			target := prng.Pick(g.r, innocents)
			ch.Facts.Suspicion = models.Suspicion{
				Kind:      models.SuspicionOne,
				TargetIDs: []string{target.ID()},
				Reason:    content.Fill(g.cat.Suspicion.Killer, "name", target.Name()),
			}
			continue
		}

		var others []*models.Character
		for _, o := range chars {
			if o != ch && o != killer {
				others = append(others, o)
			}
		}
		switch f := g.r.Float(); {
		case f < noSuspicionThreshold:
			ch.Facts.Suspicion = models.Suspicion{Kind: models.SuspicionNone, Reason: g.cat.Suspicion.None}
		case f < oneSuspicionThreshold:
			target := killer
			if !g.r.Chance(suspectKillerProbability) {
				target = prng.Pick(g.r, others)
			}
			ch.Facts.Suspicion = models.Suspicion{
				Kind:      models.SuspicionOne,
				TargetIDs: []string{target.ID()},
				Reason:    content.Fill(g.cat.Suspicion.One, "name", target.Name()),
			}
		default:
			var ids []string
			for _, o := range prng.Shuffle(g.r, append(others, killer))[:2] {
				ids = append(ids, o.ID())
			}
			ch.Facts.Suspicion = models.Suspicion{
				Kind:      models.SuspicionMultiple,
				TargetIDs: ids,
				Reason:    g.cat.Suspicion.Multiple,
			}
		}
	}
}
