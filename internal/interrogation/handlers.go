package interrogation

import (
	"fmt"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/myrjola/whodunit/internal/random"
	"strings"
)

var denials = []string{
	"I didn't kill anyone. I swear it.",
	"How dare you! I had nothing to do with this.",
	"No. Absolutely not. I am not a murderer.",
	"You're barking up the wrong tree, detective.",
}

var fallbacks = []string{
	"I'm not sure what you're asking, detective.",
	"Could you rephrase that?",
	"What exactly do you want to know?",
	"I don't follow. Ask me something specific.",
}

// Denials returns every sentence a suspect may use to deny the murder.
func Denials() []string {
	return append([]string(nil), denials...)
}

// Fallbacks returns every sentence used for questions the engine does not understand.
func Fallbacks() []string {
	return append([]string(nil), fallbacks...)
}

type rule struct {
	matcher
	handle func(q *question) Reply
}

func (e *Engine) newRules() []rule {
	handlers := map[Intent]func(q *question) Reply{
		IntentConfront:       e.confront,
		IntentConfess:        e.confess,
		IntentName:           e.name,
		IntentItem:           e.item,
		IntentRelationship:   e.relationship,
		IntentOtherCharacter: e.otherCharacter,
		IntentSuspicion:      e.suspicion,
		IntentAlibi:          e.alibi,
		IntentMotive:         e.motive,
		IntentVictim:         e.victim,
		IntentFallback:       e.fallback,
	}
	rules := make([]rule, 0, len(classifiers))
	for _, m := range classifiers {
		rules = append(rules, rule{matcher: m, handle: handlers[m.intent]})
	}
	return rules
}

// sentence terminates s with a full stop unless it already ends in punctuation.
func sentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s[len(s)-1:], ".!?") {
		return s
	}
	return s + "."
}

func presentEvidence(q *question) {
	from := q.mentioned.Name()
	q.ch.Disclosure.Present(fmt.Sprintf("%s: %s", from, q.confrontation.Info))
}

// confront forces the truth about the fact the testimony points at. The murderer admits the fact, throws in
// whatever motive and opportunity the detective has not heard yet, and still denies the murder.
func (e *Engine) confront(q *question) Reply {
	presentEvidence(q)
	f := q.ch.Facts
	var (
		parts  = []string{fmt.Sprintf("%s told you that? Fine.", q.mentioned.Name())}
		update models.EvidenceUpdate
	)
	switch q.confrontation.InfoType {
	case models.InfoMotive:
		parts = append(parts, "It's true. "+sentence(f.Motive.Description))
		revealMotive(f, &update)
	case models.InfoMeans:
		parts = append(parts, fmt.Sprintf("Yes, I have the %s.", f.Item.Name))
		revealItem(f, &update)
		if f.Traits.Means && !update.MeansRevealed {
			update.MeansRevealed = true
			update.MeansText = "had access to a weapon of the kind that was used"
			parts = append(parts, "And yes, I could have gotten my hands on a weapon like that.")
		}
	case models.InfoOpportunity:
		parts = append(parts, "I'll tell you where I really was. "+sentence(f.Alibi.Description))
		revealOpportunity(f, &update)
	default:
		parts = append(parts, "I have nothing more to hide. "+sentence(f.Alibi.Description))
		revealOpportunity(f, &update)
	}

	if f.IsGuilty {
		if !q.req.Known.MotiveRevealed && !update.MotiveRevealed {
			parts = append(parts, "Since you'll find out anyway: "+sentence(f.Motive.Description))
			revealMotive(f, &update)
		}
		if !q.req.Known.OpportunityRevealed && !update.OpportunityRevealed {
			parts = append(parts, "And I was there. "+sentence(f.Alibi.Description))
			revealOpportunity(f, &update)
		}
		parts = append(parts, "But I did not kill anyone.")
	}
	return Reply{Text: strings.Join(parts, " "), Evidence: update}
}

func revealMotive(f models.CharacterFacts, u *models.EvidenceUpdate) {
	if f.Motive.HasMotive {
		u.MotiveRevealed = true
		u.MotiveText = f.Motive.Description
	}
}

func revealOpportunity(f models.CharacterFacts, u *models.EvidenceUpdate) {
	if f.Alibi.AtCrimeScene {
		u.OpportunityRevealed = true
		u.OpportunityText = f.Alibi.Description
	}
}

func revealItem(f models.CharacterFacts, u *models.EvidenceUpdate) {
	u.ItemRevealed = true
	u.ItemText = f.Item.Name
	if f.Item.WeaponTypeMatch {
		u.MeansRevealed = true
		u.MeansText = "carries the " + f.Item.Name
	}
}

func (e *Engine) confess(*question) Reply {
	return Reply{Text: random.Pick(e.phrasing, denials)}
}

func (e *Engine) name(q *question) Reply {
	s := q.ch.Facts.Suspect
	return Reply{
		Text:     fmt.Sprintf("I'm %s, the %s.", s.Name, strings.ToLower(s.Occupation)),
		Evidence: models.EvidenceUpdate{NameRevealed: true},
	}
}

func (e *Engine) item(q *question) Reply {
	f := q.ch.Facts
	if f.Item.IsMurderWeapon && canLie(q.ch) && e.decide(e.cfg.LieProbability) {
		claim := random.Pick(e.phrasing, e.catalog.InnocuousClaims)
		return Reply{Text: fmt.Sprintf("I'm carrying %s.", claim), Lied: true}
	}

	text := fmt.Sprintf("I have this %s on me. %s", f.Item.Name, sentence(f.Item.Description))
	if f.Item.OriginalOwnerID != q.ch.ID() {
		if owner, err := q.c.Character(f.Item.OriginalOwnerID); err == nil {
			text += fmt.Sprintf(" It isn't mine, actually. It belongs to %s.", owner.Name())
		}
	}
	var update models.EvidenceUpdate
	revealItem(f, &update)
	return Reply{Text: text, Evidence: update}
}

func (e *Engine) relationship(q *question) Reply {
	f := q.ch.Facts
	text := fmt.Sprintf("I was %s's %s.", q.c.Victim.Name, f.RelationshipToVictim)
	if rel, ok := f.Relationship(models.VictimID); ok {
		text += " " + sentence(rel.Reason)
	}
	return Reply{
		Text: text,
		Evidence: models.EvidenceUpdate{
			RelationshipRevealed: true,
			RelationshipText:     f.RelationshipToVictim,
		},
	}
}

// otherCharacter always tells the truth about the other character. The secret slips out by chance, or every time
// once the speaker has opened up.
func (e *Engine) otherCharacter(q *question) Reply {
	rel, ok := q.ch.Facts.Relationship(q.mentioned.ID())
	if !ok {
		return e.fallback(q)
	}
	text := sentence(rel.Reason)
	if rel.Type != "" && rel.Type != e.catalog.DefaultRelationshipType {
		text += fmt.Sprintf(" We're %s.", strings.ReplaceAll(rel.Type, "_", " "))
	}
	if !q.ch.Disclosure.HasOpenedUp && !e.decide(e.cfg.SecretProbability) {
		return Reply{Text: text}
	}
	q.ch.Disclosure.SecretsRevealed[rel.TargetID] = true
	return Reply{
		Text: text + " Between you and me, " + sentence(lowerFirst(rel.Secret, rel.TargetName)),
		Disclosure: &models.Disclosure{
			FromCharacterID:  q.ch.ID(),
			AboutCharacterID: rel.TargetID,
			Info:             rel.Secret,
			InfoType:         rel.SecretCategory,
		},
	}
}

// lowerFirst lower-cases the first letter of s unless s starts with the name.
func lowerFirst(s, name string) string {
	if s == "" || strings.HasPrefix(s, name) {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func (e *Engine) suspicion(q *question) Reply {
	return Reply{Text: sentence(q.ch.Facts.Suspicion.Reason)}
}

func (e *Engine) alibi(q *question) Reply {
	f := q.ch.Facts
	if f.Alibi.AtCrimeScene && canLie(q.ch) && e.decide(e.cfg.LieProbability) {
		return Reply{Text: sentence(e.catalog.Alibis.FalseClaim), Lied: true}
	}
	var update models.EvidenceUpdate
	revealOpportunity(f, &update)
	return Reply{
		Text:     fmt.Sprintf("%s That was around %s.", sentence(f.Alibi.Description), f.Alibi.Time),
		Evidence: update,
	}
}

func (e *Engine) motive(q *question) Reply {
	f := q.ch.Facts
	if f.Motive.HasMotive && canLie(q.ch) && e.decide(e.cfg.LieProbability) {
		return Reply{Text: sentence(e.catalog.DeniedMotive), Lied: true}
	}
	var update models.EvidenceUpdate
	revealMotive(f, &update)
	return Reply{Text: sentence(f.Motive.Description), Evidence: update}
}

func (e *Engine) victim(q *question) Reply {
	rel, ok := q.ch.Facts.Relationship(models.VictimID)
	if !ok {
		return e.fallback(q)
	}
	return Reply{Text: sentence(rel.Reason)}
}

func (e *Engine) fallback(*question) Reply {
	return Reply{Text: random.Pick(e.phrasing, fallbacks)}
}
