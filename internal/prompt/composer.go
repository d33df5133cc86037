// Package prompt turns a user-editable instruction template plus the fixed
// taxonomy into the finalized prompt sent to the inference service.
package prompt

import (
	"fmt"
	"strings"

	"bganalyzer/internal/imagemeta"
	"bganalyzer/internal/taxonomy"
)

// Required substitution markers. Templates without both markers are rejected
// before any remote call is attempted.
const (
	MarkerMetadata   = "{metadata_section}"
	MarkerCategories = "{categories_text}"
)

// TemplateError reports a prompt template missing a required substitution
// marker.
type TemplateError struct {
	Marker string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("prompt template missing required marker %s", e.Marker)
}

// Composer renders finalized prompts. Composition is deterministic: the same
// template and image metadata always produce byte-identical output.
type Composer struct {
	axes []taxonomy.Axis
}

func NewComposer() *Composer {
	return &Composer{axes: taxonomy.Axes()}
}

// Compose substitutes the metadata and category sections into template.
func (c *Composer) Compose(template string, meta imagemeta.Meta) (string, error) {
	for _, marker := range []string{MarkerMetadata, MarkerCategories} {
		if !strings.Contains(template, marker) {
			return "", &TemplateError{Marker: marker}
		}
	}
	out := strings.ReplaceAll(template, MarkerMetadata, c.metadataSection(meta))
	out = strings.ReplaceAll(out, MarkerCategories, c.categoriesText())
	return out, nil
}

func (c *Composer) metadataSection(meta imagemeta.Meta) string {
	var b strings.Builder
	b.WriteString("## Image metadata (exact values - use as provided)\n")
	b.WriteString("These values were extracted from the actual image. Do not guess or alter them; copy them verbatim into the JSON output:\n")
	fmt.Fprintf(&b, "- Resolution: %d x %d pixels\n", meta.Width, meta.Height)
	fmt.Fprintf(&b, "- Format: %s", meta.Format)
	return b.String()
}

func (c *Composer) categoriesText() string {
	var b strings.Builder
	for i, axis := range c.axes {
		if i > 0 {
			b.WriteString("\n")
		}
		labels := make([]string, 0, len(axis.Categories))
		for _, cat := range axis.Categories {
			labels = append(labels, fmt.Sprintf("%s(%d)", taxonomy.DisplayLabel(cat), cat.Code))
		}
		fmt.Fprintf(&b, "- **%s** (%s): %s", axis.Name, axis.Display, strings.Join(labels, ", "))
	}
	return b.String()
}

// DefaultTemplate is the built-in instruction template. Callers may edit it
// before invocation as long as both substitution markers survive.
const DefaultTemplate = `Analyze the image and return the following information as a single JSON object.

{metadata_section}

## Step 1: category classification (category_info)

Pick exactly one code per axis from the categories below:
{categories_text}

Classification rules:

1. LocationCategory
   - Indoor(1): interior of a building, a room, any enclosed space
   - Outdoor(2): open air, nature, streets, building exteriors
   - Mixed(3): interior and exterior both clearly visible
   - Other(4): ambiguous or hard to judge

2. EraCategory
   - Traditional(1): hanok architecture, traditional clothing, historic scenery
   - Modern(2): contemporary buildings, clothing, cityscapes, modern facilities
   - Mixed(3): traditional and modern elements together
   - Other(4): ambiguous or hard to judge

## Step 2: descriptive sentences (annotation_info)

Write five Korean sentences describing the image, then a sixth field joining them:

1. SceneExp - the place, environment and mood; ends with "~장면이다."
2. ColortoneExp - color harmony, lighting and tone; ends with "~색감이다."
   For traditional-era images, describe the color tone with reference to the
   Obangsaek palette, the five traditional Korean cardinal colors (blue, red,
   yellow, white, black).
3. CompositionExp - camera viewpoint, angle, perspective; ends with "~구도이다."
4. ObjectExp1 - one prominent object: concrete shape, surface, appearance; ends with "~다."
5. ObjectExp2 - a different prominent object, never the same as ObjectExp1; ends with "~다."
6. Explanation - all five sentences above joined in order, separated by single spaces.

Rules:
- ObjectExp1 and ObjectExp2 must describe different objects.
- Do not repeat content across sentences.
- Ignore any captions or text rendered inside the image.
- Keep sentences plain and concrete, one object per object sentence.
- When people appear: count 1-4 people exactly ("한 명", "두 명", ...); for five
  or more, or when uncertain, use expressions like "여러 명" or "다수의".
- The five sentences together must total at least 50 eojeol (space-separated
  Korean words). If short, add concrete detail to SceneExp first, then the
  object sentences.

## Output format

Return only the JSON object below, with every placeholder replaced by real
analysis results. category_info must contain the class numbers only.

{
  "category_info": {
    "LocationCategory": 2,
    "EraCategory": 2
  },
  "annotation_info": {
    "SceneExp": "...",
    "ColortoneExp": "...",
    "CompositionExp": "...",
    "ObjectExp1": "...",
    "ObjectExp2": "...",
    "Explanation": "..."
  }
}`
