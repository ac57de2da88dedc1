package model

import "strings"

// RootHead is the head value of a token that governs itself (the sentence root)
const RootHead = 0

// RelationSubject marks a token as the grammatical subject of its head verb
const RelationSubject = "SBV"

// Token is one annotated word of a news item
type Token struct {
	Index    int       `json:"index"`              // Position in the item (0-based)
	Text     string    `json:"text"`               // Surface form
	POS      string    `json:"pos,omitempty"`      // Part-of-speech tag
	Entity   EntityTag `json:"entity"`             // Named-entity tag
	Relation string    `json:"relation,omitempty"` // Dependency relation label (e.g., "SBV")
	Head     int       `json:"head"`               // 1-based index of the governing token, RootHead for the root
}

// HeadIndex returns the 0-based position of the governing token, or -1 for the root
func (t Token) HeadIndex() int {
	return t.Head - 1
}

// EntityKind classifies a named entity
type EntityKind string

const (
	EntityNone         EntityKind = ""
	EntityPerson       EntityKind = "Nh" // Person name
	EntityOrganization EntityKind = "Ni" // Organization name
	EntityPlace        EntityKind = "Ns" // Place name
)

// EntityPosition is the position of a token inside an entity span
type EntityPosition string

const (
	PositionOutside EntityPosition = "O"
	PositionBegin   EntityPosition = "B"
	PositionInside  EntityPosition = "I"
	PositionEnd     EntityPosition = "E"
	PositionSingle  EntityPosition = "S" // Entity made of exactly one token
)

// EntityTag is a BIESO named-entity tag such as "S-Nh"
type EntityTag struct {
	Position EntityPosition `json:"position"`
	Kind     EntityKind     `json:"kind,omitempty"`
}

// ParseEntityTag parses an LTP-style tag ("S-Nh", "B-Ni", "O").
// Unknown tags parse as outside.
func ParseEntityTag(raw string) EntityTag {
	raw = strings.TrimSpace(raw)
	pos, kind, ok := strings.Cut(raw, "-")
	if !ok {
		return EntityTag{Position: PositionOutside}
	}

	tag := EntityTag{Position: EntityPosition(pos), Kind: EntityKind(kind)}
	switch tag.Position {
	case PositionBegin, PositionInside, PositionEnd, PositionSingle:
	default:
		return EntityTag{Position: PositionOutside}
	}
	switch tag.Kind {
	case EntityPerson, EntityOrganization, EntityPlace:
	default:
		return EntityTag{Position: PositionOutside}
	}
	return tag
}

// String renders the tag back to LTP form
func (e EntityTag) String() string {
	if e.Position == "" || e.Position == PositionOutside || e.Kind == EntityNone {
		return string(PositionOutside)
	}
	return string(e.Position) + "-" + string(e.Kind)
}

// IsSingleName reports whether the tag marks a one-token person,
// organization or place name
func (e EntityTag) IsSingleName() bool {
	if e.Position != PositionSingle {
		return false
	}
	switch e.Kind {
	case EntityPerson, EntityOrganization, EntityPlace:
		return true
	}
	return false
}

// Words returns the surface text of every token
func Words(tokens []Token) []string {
	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = t.Text
	}
	return words
}
