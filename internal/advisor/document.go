package advisor

import "encoding/json"

// Document is the validated recommendation returned to callers.
type Document struct {
	UsefulStacks []UsefulStack `json:"usefulStacks"`
	AvoidStacks  []AvoidStack  `json:"avoidStacks"`
	Roadmap      []Phase       `json:"roadmap"`
	Summary      string        `json:"summary"`

	raw json.RawMessage
}

// UsefulStack is a technology worth learning.
type UsefulStack struct {
	Name    string `json:"name"`
	Reason  string `json:"reason"`
	Synergy string `json:"synergy"`
}

// AvoidStack is a technology to deprioritize.
type AvoidStack struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Phase is one step of the learning roadmap. Roadmap order is chronological.
type Phase struct {
	Phase     string     `json:"phase"`
	Duration  string     `json:"duration"`
	Skills    []string   `json:"skills"`
	Resources []Resource `json:"resources"`
}

// Resource is a learning link inside a roadmap phase.
type Resource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"`
}

// Raw returns the JSON object exactly as extracted from the completion, or nil
// for documents that were not produced by Decode.
func (d Document) Raw() json.RawMessage {
	return d.raw
}

// MarshalJSON writes the extracted object unchanged when available.
func (d Document) MarshalJSON() ([]byte, error) {
	if len(d.raw) > 0 {
		return d.raw, nil
	}
	type plain Document
	return json.Marshal(plain(d))
}
