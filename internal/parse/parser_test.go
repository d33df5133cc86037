package parse

import (
	"errors"
	"fmt"
	"testing"
)

const validPayload = `{
  "category_info": {"LocationCategory": 2, "EraCategory": 1},
  "annotation_info": {
    "SceneExp": "넓은 해변이 펼쳐진 장면이다.",
    "ColortoneExp": "밝은 모래빛이 어우러진 색감이다.",
    "CompositionExp": "높은 시점에서 내려다보는 구도이다.",
    "ObjectExp1": "사람들이 여유롭게 걷고 있다.",
    "ObjectExp2": "고층 건물들이 늘어서 있다.",
    "Explanation": "넓은 해변이 펼쳐진 장면이다. 밝은 모래빛이 어우러진 색감이다."
  }
}`

func TestParseAndValidateCleanPayload(t *testing.T) {
	out, err := ParseAndValidate(validPayload)
	if err != nil {
		t.Fatalf("ParseAndValidate returned error: %v", err)
	}
	if out.Category.Location != 2 || out.Category.Era != 1 {
		t.Fatalf("category codes = %d, %d", out.Category.Location, out.Category.Era)
	}
	if out.Annotation.Scene != "넓은 해변이 펼쳐진 장면이다." {
		t.Fatalf("SceneExp = %q", out.Annotation.Scene)
	}
	if out.Annotation.Object2 == "" || out.Annotation.Explanation == "" {
		t.Fatal("annotation fields lost during parsing")
	}
}

func TestParseAndValidateFencedPayload(t *testing.T) {
	raw := "Here is the analysis you asked for:\n```json\n" + validPayload + "\n```\nLet me know if you need anything else."
	out, err := ParseAndValidate(raw)
	if err != nil {
		t.Fatalf("ParseAndValidate returned error: %v", err)
	}
	if out.Category.Location != 2 {
		t.Fatalf("LocationCategory = %d, want 2", out.Category.Location)
	}
}

func TestParseAndValidateKeepsFencesInsideFields(t *testing.T) {
	text := "코드 블록 ``` 표기가 그대로 남아야 하는 설명이다."
	raw := annotationPayload(map[string]string{"Explanation": text})
	out, err := ParseAndValidate(raw)
	if err != nil {
		t.Fatalf("ParseAndValidate returned error: %v", err)
	}
	if out.Annotation.Explanation != text {
		t.Fatalf("Explanation = %q, want %q", out.Annotation.Explanation, text)
	}
}

func TestParseAndValidateFencedPayloadWithFenceInField(t *testing.T) {
	text := "값 안의 ```json 표기는 유지되는 설명이다."
	raw := "```json\n" + annotationPayload(map[string]string{"Explanation": text}) + "\n```"
	out, err := ParseAndValidate(raw)
	if err != nil {
		t.Fatalf("ParseAndValidate returned error: %v", err)
	}
	if out.Annotation.Explanation != text {
		t.Fatalf("Explanation = %q, want %q", out.Annotation.Explanation, text)
	}
}

func TestParseAndValidateSkipsUnrelatedObjects(t *testing.T) {
	raw := `{"note": "ignore me"} some prose ` + validPayload
	out, err := ParseAndValidate(raw)
	if err != nil {
		t.Fatalf("ParseAndValidate returned error: %v", err)
	}
	if out.Category.Era != 1 {
		t.Fatalf("EraCategory = %d, want 1", out.Category.Era)
	}
}

func TestParseAndValidateNoJSON(t *testing.T) {
	for _, raw := range []string{"", "I could not analyze this image.", "{broken"} {
		_, err := ParseAndValidate(raw)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("raw %q: error = %v, want ParseError", raw, err)
		}
	}
}

func TestParseAndValidateMissingAnnotationField(t *testing.T) {
	raw := `{
  "category_info": {"LocationCategory": 2, "EraCategory": 2},
  "annotation_info": {
    "SceneExp": "장면이다.",
    "ColortoneExp": "색감이다.",
    "CompositionExp": "구도이다.",
    "ObjectExp1": "객체다.",
    "Explanation": "설명이다."
  }
}`
	_, err := ParseAndValidate(raw)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if ve.Field != "ObjectExp2" || ve.Reason != ReasonMissing {
		t.Fatalf("ValidationError = {%s, %s}, want {ObjectExp2, missing}", ve.Field, ve.Reason)
	}
}

func TestParseAndValidateEmptyField(t *testing.T) {
	raw := annotationPayload(map[string]string{"ColortoneExp": "   "})
	_, err := ParseAndValidate(raw)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if ve.Field != "ColortoneExp" || ve.Reason != ReasonEmpty {
		t.Fatalf("ValidationError = {%s, %s}", ve.Field, ve.Reason)
	}
}

func TestParseAndValidateUnresolvedPlaceholder(t *testing.T) {
	raw := annotationPayload(map[string]string{"SceneExp": "a scene with {metadata_section} inside"})
	_, err := ParseAndValidate(raw)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if ve.Field != "SceneExp" || ve.Reason != ReasonEmpty {
		t.Fatalf("ValidationError = {%s, %s}", ve.Field, ve.Reason)
	}
}

func TestParseAndValidateCategoryChecks(t *testing.T) {
	cases := []struct {
		name       string
		category   string
		wantField  string
		wantReason Reason
	}{
		{"out of range", `{"LocationCategory": 7, "EraCategory": 1}`, "LocationCategory", ReasonOutOfRange},
		{"missing axis", `{"LocationCategory": 1}`, "EraCategory", ReasonMissing},
		{"string code", `{"LocationCategory": "2", "EraCategory": 1}`, "LocationCategory", ReasonOutOfRange},
		{"boolean code", `{"LocationCategory": true, "EraCategory": 1}`, "LocationCategory", ReasonOutOfRange},
		{"fractional code", `{"LocationCategory": 1.5, "EraCategory": 1}`, "LocationCategory", ReasonOutOfRange},
	}
	for _, tc := range cases {
		raw := fmt.Sprintf(`{"category_info": %s, "annotation_info": %s}`, tc.category, validAnnotationJSON)
		_, err := ParseAndValidate(raw)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: error = %v, want ValidationError", tc.name, err)
		}
		if ve.Field != tc.wantField || ve.Reason != tc.wantReason {
			t.Fatalf("%s: ValidationError = {%s, %s}, want {%s, %s}", tc.name, ve.Field, ve.Reason, tc.wantField, tc.wantReason)
		}
	}
}

const validAnnotationJSON = `{
  "SceneExp": "장면이다.",
  "ColortoneExp": "색감이다.",
  "CompositionExp": "구도이다.",
  "ObjectExp1": "객체 하나다.",
  "ObjectExp2": "객체 둘이다.",
  "Explanation": "설명이다."
}`

// annotationPayload builds a valid payload with selected annotation fields
// overridden.
func annotationPayload(overrides map[string]string) string {
	fields := map[string]string{
		"SceneExp":       "장면이다.",
		"ColortoneExp":   "색감이다.",
		"CompositionExp": "구도이다.",
		"ObjectExp1":     "객체 하나다.",
		"ObjectExp2":     "객체 둘이다.",
		"Explanation":    "설명이다.",
	}
	for k, v := range overrides {
		fields[k] = v
	}
	ann := "{"
	first := true
	for _, name := range annotationOrder {
		if !first {
			ann += ","
		}
		first = false
		ann += fmt.Sprintf("%q: %q", name, fields[name])
	}
	ann += "}"
	return fmt.Sprintf(`{"category_info": {"LocationCategory": 1, "EraCategory": 2}, "annotation_info": %s}`, ann)
}
