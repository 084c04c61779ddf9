package models

// Disclosure is character From telling the player something about character About.
type Disclosure struct {
	FromCharacterID  string
	AboutCharacterID string
	Info             string
	InfoType         InfoType
}

// EvidenceUpdate is the structured side effect of a reply. Flags only ever turn reveals on.
type EvidenceUpdate struct {
	NameRevealed         bool
	RelationshipRevealed bool
	ItemRevealed         bool
	MotiveRevealed       bool
	MeansRevealed        bool
	OpportunityRevealed  bool
	RelationshipText     string
	ItemText             string
	MotiveText           string
	MeansText            string
	OpportunityText      string
}

// Empty reports whether the update reveals nothing.
func (u EvidenceUpdate) Empty() bool {
	return u == EvidenceUpdate{}
}

// CharacterEvidence is what the player has learned about one suspect.
type CharacterEvidence struct {
	NameRevealed         bool
	RelationshipRevealed bool
	ItemRevealed         bool
	MotiveRevealed       bool
	MeansRevealed        bool
	OpportunityRevealed  bool
	RelationshipText     string
	ItemText             string
	MotiveText           string
	MeansText            string
	OpportunityText      string
}

// Apply ORs the flags of u into e. Texts are kept from the first reveal.
func (e *CharacterEvidence) Apply(u EvidenceUpdate) {
	reveal := func(flag *bool, text *string, revealed bool, newText string) {
		if !revealed {
			return
		}
		if !*flag && text != nil {
			*text = newText
		}
		*flag = true
	}
	reveal(&e.NameRevealed, nil, u.NameRevealed, "")
	reveal(&e.RelationshipRevealed, &e.RelationshipText, u.RelationshipRevealed, u.RelationshipText)
	reveal(&e.ItemRevealed, &e.ItemText, u.ItemRevealed, u.ItemText)
	reveal(&e.MotiveRevealed, &e.MotiveText, u.MotiveRevealed, u.MotiveText)
	reveal(&e.MeansRevealed, &e.MeansText, u.MeansRevealed, u.MeansText)
	reveal(&e.OpportunityRevealed, &e.OpportunityText, u.OpportunityRevealed, u.OpportunityText)
}
