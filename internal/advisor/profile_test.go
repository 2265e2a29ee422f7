package advisor

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRejectsMissingRequiredFields(t *testing.T) {
	cases := []struct {
		name    string
		profile Profile
		message string
		path    string
	}{
		{"empty skills", Profile{TargetRole: "SRE"}, "skills is required", "skills"},
		{"whitespace skills", Profile{Skills: " \t\n", TargetRole: "SRE"}, "skills is required", "skills"},
		{"empty target", Profile{Skills: "Go"}, "targetRole is required", "targetRole"},
		{"both empty", Profile{CurrentRole: "Dev", Experience: "3"}, "skills and targetRole are required", "skills"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(tc.profile)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tc.message, e.Message)
			assert.Equal(t, tc.path, e.Path)
		})
	}
}

func TestBuildSubstitutesNotSpecified(t *testing.T) {
	prompts, err := Build(validProfile())
	require.NoError(t, err)

	assert.Contains(t, prompts.User, "Current Skills: JavaScript, React, Node.js")
	assert.Contains(t, prompts.User, "Target Role: Full-stack engineer")
	assert.Contains(t, prompts.User, "Current Role: Not specified")
	assert.Contains(t, prompts.User, "Years of Experience: Not specified")
	assert.Equal(t, SystemPrompt(), prompts.System)
}

func TestBuildKeepsOptionalFieldsVerbatim(t *testing.T) {
	prompts, err := Build(Profile{
		Skills:      "  Python; SQL <script>  ",
		CurrentRole: "Data analyst",
		TargetRole:  "ML engineer",
		Experience:  "4 years",
	})
	require.NoError(t, err)

	assert.Contains(t, prompts.User, "Current Skills: Python; SQL <script>\n")
	assert.Contains(t, prompts.User, "Current Role: Data analyst")
	assert.Contains(t, prompts.User, "Years of Experience: 4 years")
	assert.NotContains(t, prompts.User, notSpecified)
}

func TestBuildIsDeterministic(t *testing.T) {
	p := Profile{Skills: "Go", TargetRole: "Platform engineer", Experience: "2"}
	first, err := Build(p)
	require.NoError(t, err)
	second, err := Build(p)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSystemPromptDescribesDocumentShape(t *testing.T) {
	for _, key := range []string{"usefulStacks", "avoidStacks", "roadmap", "resources", "summary", "synergy"} {
		assert.True(t, strings.Contains(SystemPrompt(), key), "system prompt should mention %s", key)
	}
}
