package advisor

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

var (
	errNoObject      = errors.New("no JSON object found")
	errNoValidObject = errors.New("no parseable JSON object found")
	errInvalidUTF8   = errors.New("JSON object is not valid UTF-8")
)

// validateBudget caps the bytes handed to json.Valid at this multiple of the input length.
const validateBudget = 4

type span struct{ start, end int }

// ExtractJSONObject returns the first balanced {...} substring of text that parses
// as JSON. Braces inside string literals do not count toward nesting, and a
// candidate that fails to parse is skipped in favour of the next opening brace.
func ExtractJSONObject(text string) (string, error) {
	spans, opened := braceSpans(text)
	if !opened {
		return "", &Error{Kind: KindMalformedResponse, Message: msgMalformedResponse, Err: errNoObject}
	}
	budget := validateBudget * len(text)
	for _, sp := range spans {
		candidate := text[sp.start : sp.end+1]
		if len(candidate) > budget {
			continue
		}
		budget -= len(candidate)
		if json.Valid([]byte(candidate)) {
			return candidate, nil
		}
	}
	return "", &Error{Kind: KindMalformedResponse, Message: msgMalformedResponse, Err: errNoValidObject}
}

// braceSpans walks text once and returns every balanced {...} span ordered by
// its opening offset. A quote outside every brace is prose and opens no string.
// Walking bytes is safe because the delimiters are ASCII and never appear inside
// multi-byte UTF-8 sequences.
func braceSpans(text string) ([]span, bool) {
	var (
		spans    []span
		open     []int
		opened   bool
		inString bool
		escaped  bool
	)
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = len(open) > 0
		case '{':
			opened = true
			open = append(open, i)
		case '}':
			if len(open) == 0 {
				continue
			}
			spans = append(spans, span{start: open[len(open)-1], end: i})
			open = open[:len(open)-1]
		}
	}
	slices.SortFunc(spans, func(a, b span) int { return cmp.Compare(a.start, b.start) })
	return spans, opened
}

// Decode extracts the recommendation object embedded in a completion, validates
// it against RecommendationSchema and returns it with its original bytes kept.
func Decode(text string) (Document, error) {
	candidate, err := ExtractJSONObject(text)
	if err != nil {
		return Document{}, err
	}
	if !utf8.ValidString(candidate) {
		return Document{}, &Error{Kind: KindMalformedResponse, Message: msgMalformedResponse, Err: errInvalidUTF8}
	}

	dec := json.NewDecoder(strings.NewReader(candidate))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return Document{}, &Error{Kind: KindMalformedResponse, Message: msgMalformedResponse, Err: err}
	}
	if err := RecommendationSchema.Validate(generic); err != nil {
		return Document{}, err
	}

	var doc Document
	if err := json.Unmarshal([]byte(candidate), &doc); err != nil {
		return Document{}, &Error{Kind: KindMalformedResponse, Message: msgMalformedResponse, Err: fmt.Errorf("decode document: %w", err)}
	}
	doc.raw = json.RawMessage(bytes.Clone([]byte(candidate)))
	return doc, nil
}
