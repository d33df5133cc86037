// Package parse isolates the JSON object embedded in the model's free-form
// response text and validates it against the taxonomy and field schema. The
// model's phrasing is not deterministic; the acceptance criteria here are.
package parse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"bganalyzer/internal/analysis"
	"bganalyzer/internal/taxonomy"
)

// Reason classifies why a structurally present payload failed validation.
type Reason string

const (
	ReasonMissing    Reason = "missing"
	ReasonEmpty      Reason = "empty"
	ReasonOutOfRange Reason = "out_of_range"
)

// ValidationError reports a single failed schema or taxonomy check. There is
// no best-effort defaulting: a failure always propagates.
type ValidationError struct {
	Field  string
	Reason Reason
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// ParseError reports that no syntactically valid JSON object with the
// required top-level keys could be isolated from the response text.
type ParseError struct {
	Detail string
}

func (e *ParseError) Error() string {
	return "no valid JSON object in model response: " + e.Detail
}

// Output is the validated payload extracted from one model response.
type Output struct {
	Category   analysis.CategoryInfo
	Annotation analysis.AnnotationFields
}

// annotationOrder fixes the canonical field order for validation and error
// reporting.
var annotationOrder = []string{
	"SceneExp",
	"ColortoneExp",
	"CompositionExp",
	"ObjectExp1",
	"ObjectExp2",
	"Explanation",
}

// placeholderRe matches unresolved template markers such as
// "{metadata_section}" leaking into field values.
var placeholderRe = regexp.MustCompile(`\{[a-z][a-z0-9_]*\}`)

// ParseAndValidate extracts the first syntactically valid JSON object that
// contains both category_info and annotation_info, then applies the strict
// schema and taxonomy checks.
func ParseAndValidate(raw string) (*Output, error) {
	obj, err := extractObject(raw)
	if err != nil {
		return nil, err
	}

	category, err := validateCategories(obj["category_info"])
	if err != nil {
		return nil, err
	}
	annotation, err := validateAnnotation(obj["annotation_info"])
	if err != nil {
		return nil, err
	}
	return &Output{Category: *category, Annotation: *annotation}, nil
}

// extractObject tolerates a clean JSON payload, a code-fenced payload, and
// prose wrapped around the object. Candidate objects missing the required
// top-level keys are skipped in favor of later ones.
func extractObject(raw string) (map[string]json.RawMessage, error) {
	text := trimCodeFence(raw)
	if strings.TrimSpace(text) == "" {
		return nil, &ParseError{Detail: "empty response"}
	}
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		var obj map[string]json.RawMessage
		if err := dec.Decode(&obj); err != nil {
			continue
		}
		_, hasCategory := obj["category_info"]
		_, hasAnnotation := obj["annotation_info"]
		if hasCategory && hasAnnotation {
			return obj, nil
		}
	}
	return nil, &ParseError{Detail: "no object with category_info and annotation_info keys"}
}

// trimCodeFence strips a single leading and trailing fence line. Fences that
// appear inside field values are left alone; the object scan below never
// reads past the closing brace anyway.
func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

func validateCategories(raw json.RawMessage) (*analysis.CategoryInfo, error) {
	if raw == nil {
		return nil, &ValidationError{Field: "category_info", Reason: ReasonMissing}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, &ValidationError{Field: "category_info", Reason: ReasonMissing}
	}

	var out analysis.CategoryInfo
	for _, axis := range taxonomy.Axes() {
		code, err := categoryCode(fields, axis.Name)
		if err != nil {
			return nil, err
		}
		switch axis.Name {
		case taxonomy.AxisLocation:
			out.Location = code
		case taxonomy.AxisEra:
			out.Era = code
		}
	}
	return &out, nil
}

// categoryCode enforces the documented numeric-to-enum mapping and nothing
// else: the value must be a JSON number holding an integral code valid for
// the axis. Booleans, strings and fractional numbers are rejected.
func categoryCode(fields map[string]json.RawMessage, name taxonomy.AxisName) (int, error) {
	raw, ok := fields[string(name)]
	if !ok {
		return 0, &ValidationError{Field: string(name), Reason: ReasonMissing}
	}
	// json.Number would happily decode a quoted numeric string; the code
	// must arrive as a bare JSON number.
	value := bytes.TrimSpace(raw)
	if len(value) == 0 || value[0] == '"' {
		return 0, &ValidationError{Field: string(name), Reason: ReasonOutOfRange}
	}
	var num json.Number
	if err := json.Unmarshal(value, &num); err != nil {
		return 0, &ValidationError{Field: string(name), Reason: ReasonOutOfRange}
	}
	code, err := num.Int64()
	if err != nil {
		return 0, &ValidationError{Field: string(name), Reason: ReasonOutOfRange}
	}
	if !taxonomy.Validate(name, int(code)) {
		return 0, &ValidationError{Field: string(name), Reason: ReasonOutOfRange}
	}
	return int(code), nil
}

func validateAnnotation(raw json.RawMessage) (*analysis.AnnotationFields, error) {
	if raw == nil {
		return nil, &ValidationError{Field: "annotation_info", Reason: ReasonMissing}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, &ValidationError{Field: "annotation_info", Reason: ReasonMissing}
	}

	values := make(map[string]string, len(annotationOrder))
	for _, name := range annotationOrder {
		fieldRaw, ok := fields[name]
		if !ok {
			return nil, &ValidationError{Field: name, Reason: ReasonMissing}
		}
		var s string
		if err := json.Unmarshal(fieldRaw, &s); err != nil {
			return nil, &ValidationError{Field: name, Reason: ReasonMissing}
		}
		if strings.TrimSpace(s) == "" {
			return nil, &ValidationError{Field: name, Reason: ReasonEmpty}
		}
		if placeholderRe.MatchString(s) {
			return nil, &ValidationError{Field: name, Reason: ReasonEmpty}
		}
		values[name] = s
	}
	return &analysis.AnnotationFields{
		Scene:       values["SceneExp"],
		Colortone:   values["ColortoneExp"],
		Composition: values["CompositionExp"],
		Object1:     values["ObjectExp1"],
		Object2:     values["ObjectExp2"],
		Explanation: values["Explanation"],
	}, nil
}
