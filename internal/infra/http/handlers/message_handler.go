package handlers

import (
	"net/http"

	"github.com/xavierca1/leadreach/internal/usecase"
)

// MessageHandler serves message templates and the category/character catalog.
type MessageHandler struct {
	Messages *usecase.MessagesUseCase
	Catalog  *usecase.CatalogUseCase
}

func NewMessageHandler(messages *usecase.MessagesUseCase, catalog *usecase.CatalogUseCase) *MessageHandler {
	return &MessageHandler{Messages: messages, Catalog: catalog}
}

func (h *MessageHandler) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	sets, err := h.Messages.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

// HandleSaveMessages upserts the template set of a category. POST /api/messages
func (h *MessageHandler) HandleSaveMessages(w http.ResponseWriter, r *http.Request) {
	var in usecase.SaveMessagesInput
	if !decodeJSON(w, r, &in, "Category is required") {
		return
	}

	out, err := h.Messages.Save(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *MessageHandler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Catalog.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

type categoryRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *MessageHandler) HandleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req, "Category name is required") {
		return
	}

	c, err := h.Catalog.AddCategory(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *MessageHandler) HandleListCharacters(w http.ResponseWriter, r *http.Request) {
	characters, err := h.Catalog.ListCharacters(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, characters)
}

type characterRequest struct {
	Name     string `json:"name" validate:"required"`
	Category string `json:"category" validate:"required"`
}

func (h *MessageHandler) HandleAddCharacter(w http.ResponseWriter, r *http.Request) {
	var req characterRequest
	if !decodeJSON(w, r, &req, "Name and category are required") {
		return
	}

	c, err := h.Catalog.AddCharacter(r.Context(), req.Name, req.Category)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
