package careers

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"

	"career-backend/internal/advisor"
)

//go:embed request.schema.json
var requestSchemaJSON []byte

var requestSchema = mustCompileSchema(requestSchemaJSON)

var errInvalidJSON = errors.New("Invalid JSON body")

func mustCompileSchema(raw []byte) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("compile request schema: %v", err))
	}
	return schema
}

// analyzeRequest is the inbound body. Null and absent keys both mean empty.
type analyzeRequest struct {
	Skills      *string `json:"skills"`
	CurrentRole *string `json:"currentRole"`
	TargetRole  *string `json:"targetRole"`
	Experience  *string `json:"experience"`
}

func (r analyzeRequest) profile() advisor.Profile {
	return advisor.Profile{
		Skills:      deref(r.Skills),
		CurrentRole: deref(r.CurrentRole),
		TargetRole:  deref(r.TargetRole),
		Experience:  deref(r.Experience),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// decodeProfile checks body against the request schema and decodes it.
// Returned errors carry a message suitable for a 400 response.
func decodeProfile(body []byte) (advisor.Profile, error) {
	if !json.Valid(body) {
		return advisor.Profile{}, errInvalidJSON
	}
	result, err := requestSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return advisor.Profile{}, errInvalidJSON
	}
	if !result.Valid() {
		return advisor.Profile{}, firstSchemaError(result.Errors())
	}
	var req analyzeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return advisor.Profile{}, errInvalidJSON
	}
	return req.profile(), nil
}

func firstSchemaError(errs []gojsonschema.ResultError) error {
	if len(errs) == 0 {
		return errors.New("Invalid request body")
	}
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Field() < errs[j].Field() })
	first := errs[0]
	if first.Field() == "(root)" {
		return fmt.Errorf("Invalid request body: %s", first.Description())
	}
	return fmt.Errorf("Invalid request body: %s: %s", first.Field(), first.Description())
}
