package advisor

import (
	_ "embed"
	"fmt"
)

//go:embed prompts/system.txt
var systemPrompt string

// notSpecified replaces optional profile fields left empty.
const notSpecified = "Not specified"

const userPromptTemplate = `Analyze this career profile and recommend technology stacks:

Current Skills: %s
Current Role: %s
Target Role: %s
Years of Experience: %s

List the technologies worth learning, the technologies to avoid or deprioritize, and a complete phased learning roadmap with real resource links.`

// SystemPrompt returns the fixed advisor instruction.
func SystemPrompt() string {
	return systemPrompt
}

func buildUserPrompt(p Profile) string {
	return fmt.Sprintf(userPromptTemplate,
		p.Skills,
		orNotSpecified(p.CurrentRole),
		p.TargetRole,
		orNotSpecified(p.Experience),
	)
}

func orNotSpecified(v string) string {
	if v == "" {
		return notSpecified
	}
	return v
}
