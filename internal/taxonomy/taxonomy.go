// Package taxonomy defines the fixed classification axes used for background
// image analysis. The definitions are the single source of truth for both
// prompt composition and response validation.
package taxonomy

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// AxisName identifies a classification axis. The value doubles as the exact
// JSON key expected inside the model's category_info object.
type AxisName string

const (
	AxisLocation AxisName = "LocationCategory"
	AxisEra      AxisName = "EraCategory"
)

// Category is one selectable code within an axis.
type Category struct {
	Code  int
	Label string
}

// Axis is an immutable classification axis with exactly four ordered codes.
type Axis struct {
	Name       AxisName
	Display    string
	Categories [4]Category
}

var axes = [2]Axis{
	{
		Name:    AxisLocation,
		Display: "location",
		Categories: [4]Category{
			{Code: 1, Label: "indoor"},
			{Code: 2, Label: "outdoor"},
			{Code: 3, Label: "mixed"},
			{Code: 4, Label: "other"},
		},
	},
	{
		Name:    AxisEra,
		Display: "era",
		Categories: [4]Category{
			{Code: 1, Label: "traditional"},
			{Code: 2, Label: "modern"},
			{Code: 3, Label: "mixed"},
			{Code: 4, Label: "other"},
		},
	},
}

var titleCaser = cases.Title(language.English)

// Axes returns the classification axes in their canonical order.
func Axes() []Axis {
	out := make([]Axis, len(axes))
	copy(out, axes[:])
	return out
}

// Validate reports whether code is a valid category code for the named axis.
func Validate(name AxisName, code int) bool {
	for _, axis := range axes {
		if axis.Name != name {
			continue
		}
		for _, cat := range axis.Categories {
			if cat.Code == code {
				return true
			}
		}
		return false
	}
	return false
}

// Label returns the label of the given code within the named axis.
func Label(name AxisName, code int) (string, bool) {
	for _, axis := range axes {
		if axis.Name != name {
			continue
		}
		for _, cat := range axis.Categories {
			if cat.Code == code {
				return cat.Label, true
			}
		}
	}
	return "", false
}

// DisplayLabel renders a category label for human-readable output, e.g.
// "indoor" becomes "Indoor".
func DisplayLabel(c Category) string {
	return titleCaser.String(c.Label)
}
