package handlers

import (
	"net/http"

	"github.com/xavierca1/leadreach/internal/usecase"
)

type SheetsHandler struct {
	Export *usecase.ExportUseCase
}

func NewSheetsHandler(export *usecase.ExportUseCase) *SheetsHandler {
	return &SheetsHandler{Export: export}
}

// HandleSave writes search results to a tab named after the phrase.
// POST /api/google-sheets/save
func (h *SheetsHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var in usecase.SheetsExportInput
	if !decodeJSON(w, r, &in, "Invalid search results data") {
		return
	}

	out, err := h.Export.SaveToSheets(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
