package domain

// FrameType is the integer rarity/category discriminant carried by every item
// in the stash API payload.
type FrameType int

const (
	FrameNormal     FrameType = 0
	FrameMagic      FrameType = 1
	FrameRare       FrameType = 2
	FrameUnique     FrameType = 3
	FrameGem        FrameType = 4
	FrameCurrency   FrameType = 5
	FrameDivination FrameType = 6
)

// Property is a free-text item property record. Values is a list of
// [text, displayMode] pairs; only the text half is meaningful to pricing.
type Property struct {
	Name   string   `json:"name"`
	Values [][2]any `json:"values"`
}

// Text returns the first value's text, or "" when the property carries none.
func (p Property) Text() string {
	if len(p.Values) == 0 {
		return ""
	}
	s, _ := p.Values[0][0].(string)
	return s
}

// Socket is a single socket slot. Sockets sharing a Group value are linked.
type Socket struct {
	Group  int    `json:"group"`
	Attr   string `json:"attr,omitempty"`
	Colour string `json:"sColour,omitempty"`
}

// Item is a single stash item as returned by the inventory endpoint. It is
// read-only input to the valuation engine.
type Item struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	TypeLine   string    `json:"typeLine"`
	BaseType   string    `json:"baseType"`
	League     string    `json:"league"`
	Icon       string    `json:"icon,omitempty"`
	Identified bool      `json:"identified"`
	Corrupted  bool      `json:"corrupted,omitempty"`
	ItemLevel  int       `json:"ilvl"`
	FrameType  FrameType `json:"frameType"`

	Properties           []Property `json:"properties,omitempty"`
	AdditionalProperties []Property `json:"additionalProperties,omitempty"`
	ImplicitMods         []string   `json:"implicitMods,omitempty"`
	ExplicitMods         []string   `json:"explicitMods,omitempty"`
	Sockets              []Socket   `json:"sockets,omitempty"`

	StashTab string `json:"-"`
}

// DisplayName returns the item's name, falling back to the type line for
// items (gems, currency, magic items) whose name field is empty.
func (it Item) DisplayName() string {
	if it.Name != "" {
		return it.Name
	}
	return it.TypeLine
}
