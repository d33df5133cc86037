package handlers

import (
	"net/http"

	"bganalyzer/internal/taxonomy"
)

type taxonomyCategory struct {
	Code  int    `json:"code"`
	Label string `json:"label"`
}

type taxonomyAxis struct {
	Name       string             `json:"name"`
	Display    string             `json:"display"`
	Categories []taxonomyCategory `json:"categories"`
}

// Taxonomy exposes the fixed classification axes so clients can render
// code-to-label mappings without hardcoding them.
func (a *App) Taxonomy(w http.ResponseWriter, r *http.Request) {
	axes := taxonomy.Axes()
	out := make([]taxonomyAxis, 0, len(axes))
	for _, ax := range axes {
		cats := make([]taxonomyCategory, 0, len(ax.Categories))
		for _, c := range ax.Categories {
			cats = append(cats, taxonomyCategory{Code: c.Code, Label: c.Label})
		}
		out = append(out, taxonomyAxis{Name: string(ax.Name), Display: ax.Display, Categories: cats})
	}
	a.json(w, http.StatusOK, map[string]any{"axes": out})
}
