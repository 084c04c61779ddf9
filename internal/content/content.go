// Package content holds the static tables that cases are generated from.
package content

import (
	_ "embed"
	"fmt"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/models"
	"gopkg.in/yaml.v3"
	"strings"
)

//go:embed catalog.yaml
var catalogYAML []byte

// MinSuspects is the smallest roster a catalog must provide.
const MinSuspects = 5

type VictimTemplate struct {
	Name       string `yaml:"name"`
	Occupation string `yaml:"occupation"`
	Background string `yaml:"background"`
}

type ItemTemplate struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Cause       string `yaml:"cause"`
	Emoji       string `yaml:"emoji"`
}

type RelationshipType struct {
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
}

type SecretTemplates struct {
	Motive      []string `yaml:"motive"`
	Means       []string `yaml:"means"`
	Opportunity []string `yaml:"opportunity"`
	General     string   `yaml:"general"`
	Victim      []string `yaml:"victim"`
}

type OpinionTemplates struct {
	Positive []string `yaml:"positive"`
	Neutral  []string `yaml:"neutral"`
	Negative []string `yaml:"negative"`
}

type AlibiTemplates struct {
	Near               []string `yaml:"near"`
	Elsewhere          []string `yaml:"elsewhere"`
	ElsewhereLocations []string `yaml:"elsewhere_locations"`
	Witness            string   `yaml:"witness"`
	PartnerWitness     string   `yaml:"partner_witness"`
	FalseClaim         string   `yaml:"false_claim"`
}

type SuspicionTemplates struct {
	Killer   string `yaml:"killer"`
	None     string `yaml:"none"`
	One      string `yaml:"one"`
	Multiple string `yaml:"multiple"`
}

// Catalog is the full set of tables. Slices keep their document order, which matters because the generator picks
// from them by index.
type Catalog struct {
	Victims                 []VictimTemplate   `yaml:"victims"`
	Suspects                []models.Suspect   `yaml:"suspects"`
	Causes                  []string           `yaml:"causes"`
	Weapons                 []ItemTemplate     `yaml:"weapons"`
	InnocentItems           []ItemTemplate     `yaml:"innocent_items"`
	InnocuousClaims         []string           `yaml:"innocuous_claims"`
	Locations               []string           `yaml:"locations"`
	Times                   []string           `yaml:"times"`
	KillerMotives           []string           `yaml:"killer_motives"`
	WeakMotives             []string           `yaml:"weak_motives"`
	NeutralMotive           string             `yaml:"neutral_motive"`
	DeniedMotive            string             `yaml:"denied_motive"`
	RelationshipTypes       []RelationshipType `yaml:"relationship_types"`
	AcquaintanceType        string             `yaml:"acquaintance_type"`
	DefaultRelationshipType string             `yaml:"default_relationship_type"`
	VictimRelationshipTypes []string           `yaml:"victim_relationship_types"`
	RelationshipsToVictim   []string           `yaml:"relationships_to_victim"`
	Secrets                 SecretTemplates    `yaml:"secrets"`
	Opinions                OpinionTemplates   `yaml:"opinions"`
	KillerVictimOpinion     string             `yaml:"killer_victim_opinion"`
	Alibis                  AlibiTemplates     `yaml:"alibis"`
	SwapReasons             []string           `yaml:"swap_reasons"`
	Suspicion               SuspicionTemplates `yaml:"suspicion"`
}

var defaultCatalog = mustParse(catalogYAML)

// Default returns the embedded catalog. Callers must not modify it.
func Default() *Catalog {
	return defaultCatalog
}

func mustParse(data []byte) *Catalog {
	c, err := Parse(data)
	if err != nil {
		panic(fmt.Sprintf("content: embedded catalog: %v", err))
	}
	return c
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "unmarshal catalog")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// WeaponsFor returns the weapons of the given cause of death in catalog order.
func (c *Catalog) WeaponsFor(cause string) []ItemTemplate {
	var weapons []ItemTemplate
	for _, w := range c.Weapons {
		if w.Cause == cause {
			weapons = append(weapons, w)
		}
	}
	return weapons
}

// Validate checks that every table the generator draws from is large enough.
func (c *Catalog) Validate() error {
	var errs []error
	check := func(ok bool, msg string, args ...any) {
		if !ok {
			errs = append(errs, errors.New(fmt.Sprintf(msg, args...)))
		}
	}

	check(len(c.Suspects) >= MinSuspects, "roster has %d suspects, need %d", len(c.Suspects), MinSuspects)
	check(len(c.InnocentItems) >= MinSuspects, "%d innocent items, need %d", len(c.InnocentItems), MinSuspects)
	check(len(c.Causes) > 0, "no causes of death")
	for _, cause := range c.Causes {
		n := len(c.WeaponsFor(cause))
		check(n >= 2, "cause %q has %d weapons, need a murder weapon and a decoy", cause, n)
	}
	check(len(c.RelationshipTypes) >= 2, "need two distinct relationship pair types")

	seen := make(map[string]bool, len(c.Suspects))
	for _, s := range c.Suspects {
		check(s.ID != "" && !seen[s.ID], "suspect id %q is empty or duplicated", s.ID)
		seen[s.ID] = true
		check(len(s.Aliases) > 0, "suspect %q has no aliases", s.ID)
		for _, a := range s.Aliases {
			check(a == strings.ToLower(a), "suspect %q alias %q must be lower case", s.ID, a)
		}
	}

	for name, table := range map[string]int{
		"victims":                    len(c.Victims),
		"innocuous_claims":           len(c.InnocuousClaims),
		"locations":                  len(c.Locations),
		"times":                      len(c.Times),
		"killer_motives":             len(c.KillerMotives),
		"weak_motives":               len(c.WeakMotives),
		"victim_relationship_types":  len(c.VictimRelationshipTypes),
		"relationships_to_victim":    len(c.RelationshipsToVictim),
		"secrets.motive":             len(c.Secrets.Motive),
		"secrets.means":              len(c.Secrets.Means),
		"secrets.opportunity":        len(c.Secrets.Opportunity),
		"secrets.victim":             len(c.Secrets.Victim),
		"opinions.positive":          len(c.Opinions.Positive),
		"opinions.neutral":           len(c.Opinions.Neutral),
		"opinions.negative":          len(c.Opinions.Negative),
		"alibis.near":                len(c.Alibis.Near),
		"alibis.elsewhere":           len(c.Alibis.Elsewhere),
		"alibis.elsewhere_locations": len(c.Alibis.ElsewhereLocations),
		"swap_reasons":               len(c.SwapReasons),
	} {
		check(table > 0, "table %s is empty", name)
	}

	if len(errs) > 0 {
		return errors.Wrap(errors.Join(errs...), "invalid catalog")
	}
	return nil
}

// Fill substitutes {key} placeholders in template.
func Fill(template string, pairs ...string) string {
	oldnew := make([]string, 0, len(pairs))
	for i := 0; i+1 < len(pairs); i += 2 {
		oldnew = append(oldnew, "{"+pairs[i]+"}", pairs[i+1])
	}
	return strings.NewReplacer(oldnew...).Replace(template)
}
