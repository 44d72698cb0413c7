package concepts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformedOutput means a model response could not be read as a JSON
// object of term/definition pairs.
var ErrMalformedOutput = errors.New("malformed model output")

// Record is one extracted concept.
type Record struct {
	Term       string `json:"term" bson:"term"`
	Definition string `json:"definition" bson:"definition"`
}

var outputCleaner = strings.NewReplacer(
	"```json", "",
	"```", "",
	"\r", "",
	"\n", "",
)

// CleanOutput strips code fences and newlines and drops anything before the
// first opening brace.
func CleanOutput(raw string) string {
	out := outputCleaner.Replace(raw)
	if i := strings.Index(out, "{"); i >= 0 {
		out = out[i:]
	}
	return out
}

// ParseRecords decodes one cleaned JSON object, keeping key order. A key
// repeated inside the object keeps its first position and its last value.
// Non-string values are kept as their compact JSON text.
func ParseRecords(cleaned string) ([]Record, error) {
	dec := json.NewDecoder(strings.NewReader(cleaned))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformedOutput)
	}

	var records []Record
	position := map[string]int{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
		}
		term, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected a string key", ErrMalformedOutput)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("%w: value for %q: %v", ErrMalformedOutput, term, err)
		}
		definition, err := definitionText(value)
		if err != nil {
			return nil, fmt.Errorf("%w: value for %q: %v", ErrMalformedOutput, term, err)
		}

		if i, seen := position[term]; seen {
			records[i].Definition = definition
			continue
		}
		position[term] = len(records)
		records = append(records, Record{Term: term, Definition: definition})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after the object", ErrMalformedOutput)
	}
	return records, nil
}

// ParseOutput is CleanOutput followed by ParseRecords.
func ParseOutput(raw string) ([]Record, error) {
	return ParseRecords(CleanOutput(raw))
}

func definitionText(value json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return s, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, value); err != nil {
		return "", err
	}
	return buf.String(), nil
}
