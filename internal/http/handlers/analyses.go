package handlers

import (
	"errors"
	"io"
	"net/http"

	"bganalyzer/internal/adapter/repo"
)

type analysisResponse struct {
	ID        string `json:"id,omitempty"`
	FileHash  string `json:"file_hash"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Record    any    `json:"record"`
}

// Analyze accepts a multipart upload with an "image" part and an optional
// "prompt" part overriding the default template, runs the full analysis
// pipeline, and returns the assembled record. Archive failures are logged
// but never fail the request once a record exists.
func (a *App) Analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.MaxUploadBytes)
	if err := r.ParseMultipartForm(a.MaxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "missing image file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "failed to read image")
		return
	}
	if len(data) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "empty image file")
		return
	}
	template := r.FormValue("prompt")

	rec, err := a.Pipeline.Run(r.Context(), data, template)
	if err != nil {
		a.analysisError(w, err)
		return
	}

	resp := analysisResponse{FileHash: repo.FileHash(data), Record: rec}
	if a.Archive != nil {
		id, err := a.Archive.Save(r.Context(), resp.FileHash, rec)
		switch {
		case errors.Is(err, repo.ErrDuplicate):
			resp.Duplicate = true
		case err != nil:
			a.Logger.Error().Err(err).Str("file_hash", resp.FileHash).Msg("archive save failed")
		default:
			resp.ID = id
		}
	}
	a.json(w, http.StatusCreated, resp)
}
