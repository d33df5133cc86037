// Package analysis defines the final structured artifact of the pipeline and
// the assembler that produces it.
package analysis

import "bganalyzer/internal/imagemeta"

// Meta is the image metadata section of the record.
type Meta struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// CategoryInfo carries the resolved code for each classification axis. JSON
// keys match the taxonomy axis names exactly.
type CategoryInfo struct {
	Location int `json:"LocationCategory"`
	Era      int `json:"EraCategory"`
}

// AnnotationFields is the six descriptive text fields, in canonical order.
type AnnotationFields struct {
	Scene       string `json:"SceneExp"`
	Colortone   string `json:"ColortoneExp"`
	Composition string `json:"CompositionExp"`
	Object1     string `json:"ObjectExp1"`
	Object2     string `json:"ObjectExp2"`
	Explanation string `json:"Explanation"`
}

// Record is the final artifact of one pipeline invocation. It is constructed
// once by Assemble and immutable afterwards; serialization yields exactly the
// three top-level keys below.
type Record struct {
	Meta       Meta             `json:"meta"`
	Category   CategoryInfo     `json:"category_info"`
	Annotation AnnotationFields `json:"annotation_info"`
}

// Assemble merges the image metadata with already-validated category codes
// and annotation fields. It is a pure merge and cannot fail: every upstream
// error has been resolved before this stage is reached.
func Assemble(meta imagemeta.Meta, category CategoryInfo, ann AnnotationFields) *Record {
	return &Record{
		Meta: Meta{
			Width:  meta.Width,
			Height: meta.Height,
			Format: string(meta.Format),
		},
		Category:   category,
		Annotation: ann,
	}
}
