package advisor

import (
	"fmt"
	"strings"
)

// Profile is the caller's self-reported skill profile.
type Profile struct {
	Skills      string `json:"skills"`
	CurrentRole string `json:"currentRole,omitempty"`
	TargetRole  string `json:"targetRole"`
	Experience  string `json:"experience,omitempty"`
}

// Prompts is the system/user instruction pair sent to the completion backend.
type Prompts struct {
	System string
	User   string
}

// Normalize returns a copy of p with every field trimmed.
func (p Profile) Normalize() Profile {
	return Profile{
		Skills:      strings.TrimSpace(p.Skills),
		CurrentRole: strings.TrimSpace(p.CurrentRole),
		TargetRole:  strings.TrimSpace(p.TargetRole),
		Experience:  strings.TrimSpace(p.Experience),
	}
}

// Validate reports a KindValidation error when a required field is blank.
func (p Profile) Validate() error {
	n := p.Normalize()
	var missing []string
	if n.Skills == "" {
		missing = append(missing, "skills")
	}
	if n.TargetRole == "" {
		missing = append(missing, "targetRole")
	}
	switch len(missing) {
	case 0:
		return nil
	case 1:
		return &Error{Kind: KindValidation, Message: fmt.Sprintf("%s is required", missing[0]), Path: missing[0]}
	default:
		return &Error{Kind: KindValidation, Message: strings.Join(missing, " and ") + " are required", Path: missing[0]}
	}
}

// Build validates p and assembles the prompts. It is a pure function of p.
func Build(p Profile) (Prompts, error) {
	if err := p.Validate(); err != nil {
		return Prompts{}, err
	}
	n := p.Normalize()
	return Prompts{
		System: systemPrompt,
		User:   buildUserPrompt(n),
	}, nil
}
