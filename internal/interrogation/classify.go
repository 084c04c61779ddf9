package interrogation

import (
	"github.com/myrjola/whodunit/internal/models"
	"regexp"
	"strings"
)

var (
	toldPattern     = regexp.MustCompile(`\b(told|said|says|confessed|mentioned|claims|claimed|admitted)\b`)
	confessPattern  = regexp.MustCompile(`\b(did you (kill|murder|do it)|are you (guilty|the (killer|murderer))|you did it|you killed|you murdered|(you're|you are) the (killer|murderer)|confess)\b`)
	namePattern     = regexp.MustCompile(`\b(your name|who are you|what do you do|occupation|your (job|profession|work)|introduce yourself)\b`)
	itemPattern     = regexp.MustCompile(`\b(carry|carrying|holding|on you|pockets?|items?|belongings|possess|weapons?|what do you have|what have you got)\b`)
	relationPattern = regexp.MustCompile(`\b(relationship|relation|related|connection|how (did|do) you know|know (the victim|him|her|them))\b`)
	suspectPattern  = regexp.MustCompile(`\b(suspect|suspicious|who do you think|who did it|who killed|who could have|anyone (else )?(who|that) (could|would|might))\b`)
	alibiPattern    = regexp.MustCompile(`\b(where were you|alibi|whereabouts|at the time|that night|that evening|doing at|what were you doing|time of death)\b`)
	motivePattern   = regexp.MustCompile(`\b(motive|why would you|reason to|grudge|hate|hated|benefit|inherit|quarrel|resent|want (him|her|them) dead)\b`)
	victimPattern   = regexp.MustCompile(`\b(victim|deceased|the dead|the body|think of (him|her|them)|feel about)\b`)
)

// names holds the case-specific patterns, compiled once per case.
type names struct {
	characters []characterPattern
	// victim matches the longer parts of the victim's name. Nil when no part is long enough.
	victim *regexp.Regexp
}

type characterPattern struct {
	ch *models.Character
	re *regexp.Regexp
}

// compileNames builds the patterns for c. Names match on word boundaries only, so "grant" matches "Grant" but not
// "granted".
func compileNames(c *models.Case) *names {
	n := &names{characters: make([]characterPattern, 0, len(c.Characters))}
	for _, ch := range c.Characters {
		aliases := make([]string, 0, len(ch.Facts.Suspect.Aliases)+1)
		aliases = append(aliases, regexp.QuoteMeta(strings.ToLower(ch.Name())))
		for _, a := range ch.Facts.Suspect.Aliases {
			aliases = append(aliases, regexp.QuoteMeta(strings.ToLower(a)))
		}
		n.characters = append(n.characters, characterPattern{
			ch: ch,
			re: regexp.MustCompile(`\b(` + strings.Join(aliases, "|") + `)\b`),
		})
	}
	var parts []string
	for _, part := range strings.Fields(strings.ToLower(c.Victim.Name)) {
		part = strings.Trim(part, ".")
		if len(part) > 2 { //nolint:mnd // skip initials and honorifics like "Dr"
			parts = append(parts, regexp.QuoteMeta(part))
		}
	}
	if len(parts) > 0 {
		n.victim = regexp.MustCompile(`\b(` + strings.Join(parts, "|") + `)\b`)
	}
	return n
}

// question is a parsed request. Mention and confrontation lookups are done once and shared by all rules.
type question struct {
	req           Request
	text          string
	ch            *models.Character
	c             *models.Case
	names         *names
	mentioned     *models.Character
	confrontation *models.Disclosure
}

func parse(req Request, ch *models.Character, c *models.Case, n *names) *question {
	q := &question{
		req:   req,
		text:  strings.ToLower(req.Question),
		ch:    ch,
		c:     c,
		names: n,
	}
	q.mentioned = n.mentioned(q.text, ch)
	if q.mentioned != nil && toldPattern.MatchString(q.text) {
		q.confrontation = findTestimony(req.Disclosures, q.mentioned.ID(), ch.ID())
	}
	return q
}

// mentioned returns the first suspect other than self named in text.
func (n *names) mentioned(text string, self *models.Character) *models.Character {
	for _, p := range n.characters {
		if p.ch != self && p.re.MatchString(text) {
			return p.ch
		}
	}
	return nil
}

// findTestimony returns the latest thing from told the detective about about.
func findTestimony(log []models.Disclosure, from, about string) *models.Disclosure {
	for i := len(log) - 1; i >= 0; i-- {
		if log[i].FromCharacterID == from && log[i].AboutCharacterID == about {
			d := log[i]
			return &d
		}
	}
	return nil
}

func mentionsVictim(q *question) bool {
	if victimPattern.MatchString(q.text) {
		return true
	}
	return q.names.victim != nil && q.names.victim.MatchString(q.text)
}

type matcher struct {
	intent Intent
	match  func(q *question) bool
}

// classifiers is the priority order. The first match wins, so questions that fit several intents resolve the same
// way every time.
var classifiers = []matcher{
	{IntentConfront, func(q *question) bool { return q.confrontation != nil }},
	{IntentConfess, func(q *question) bool { return confessPattern.MatchString(q.text) }},
	{IntentName, func(q *question) bool { return namePattern.MatchString(q.text) }},
	{IntentItem, func(q *question) bool { return itemPattern.MatchString(q.text) }},
	{IntentRelationship, func(q *question) bool { return q.mentioned == nil && relationPattern.MatchString(q.text) }},
	{IntentOtherCharacter, func(q *question) bool { return q.mentioned != nil }},
	{IntentSuspicion, func(q *question) bool { return suspectPattern.MatchString(q.text) }},
	{IntentAlibi, func(q *question) bool { return alibiPattern.MatchString(q.text) }},
	{IntentMotive, func(q *question) bool { return motivePattern.MatchString(q.text) }},
	{IntentVictim, mentionsVictim},
	{IntentFallback, func(*question) bool { return true }},
}
