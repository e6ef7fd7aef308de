package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"pathscategories/resolver/internal/category"
	"pathscategories/resolver/internal/domain"
	"pathscategories/resolver/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

// SelectRequest is the body of POST /items/{itemSlug}/fields/{fieldName}/selection
type SelectRequest struct {
	CategoryID *domain.CategoryID `json:"categoryId" validate:"required"`
	FieldType  string             `json:"fieldType,omitempty" validate:"omitempty,max=64"`
}

// RenameRequest is the body of POST /items/{itemSlug}/fields/{fieldName}/rename
type RenameRequest struct {
	NewSlug   string `json:"newSlug" validate:"required,max=255"`
	FieldType string `json:"fieldType,omitempty" validate:"omitempty,max=64"`
}

type snapshotInfo struct {
	Generation uint64   `json:"generation"`
	Records    int      `json:"records"`
	Options    int      `json:"options"`
	Unresolved []string `json:"unresolved"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "healthy",
		"generation": s.service.Snapshot().Generation,
	})
}

func (s *Server) getTree(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.service.Snapshot().Forest)
}

func (s *Server) getOptions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.service.Snapshot().Options)
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.Refresh(r.Context())
	if err != nil {
		log.Errorf("❌ Refresh requested over HTTP failed: %v", err)
		respondError(w, http.StatusBadGateway, "Failed to fetch categories")
		return
	}

	info := snapshotInfo{
		Generation: snap.Generation,
		Records:    len(snap.Records),
		Options:    len(snap.Options),
		Unresolved: []string{},
	}
	var be *category.BuildError
	if errors.As(snap.BuildErr, &be) {
		for _, rec := range be.Records {
			info.Unresolved = append(info.Unresolved, rec.Error())
		}
	}
	respondJSON(w, http.StatusOK, info)
}

func (s *Server) getBreadcrumbs(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCategoryID(chi.URLParam(r, "categoryID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	crumbs, err := s.service.Breadcrumbs(id)
	if err != nil {
		respondCategoryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, crumbs)
}

func (s *Server) getSelection(w http.ResponseWriter, r *http.Request) {
	payload, ok, err := s.service.CurrentSelection(r.Context(), chi.URLParam(r, "itemSlug"), chi.URLParam(r, "fieldName"))
	if err != nil {
		log.Errorf("❌ Failed to read selection: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to read selection")
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondJSON(w, http.StatusOK, payload)
}

func (s *Server) postSelection(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if !s.decode(w, r, &req) {
		return
	}

	payload, _, err := s.service.Select(r.Context(), service.SelectRequest{
		ItemSlug:   chi.URLParam(r, "itemSlug"),
		FieldName:  chi.URLParam(r, "fieldName"),
		FieldType:  req.FieldType,
		CategoryID: *req.CategoryID,
	})
	if err != nil {
		respondCategoryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, payload)
}

func (s *Server) renameItem(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if !s.decode(w, r, &req) {
		return
	}

	payload, ok, err := s.service.RenameItem(r.Context(), chi.URLParam(r, "itemSlug"), req.NewSlug, chi.URLParam(r, "fieldName"), req.FieldType)
	if err != nil {
		respondCategoryError(w, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondJSON(w, http.StatusOK, payload)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Validation error: "+formatValidationError(err))
		return false
	}
	return true
}

func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}

func respondCategoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, category.ErrUnknownSelection):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, category.ErrUnresolvedParent), errors.Is(err, category.ErrCyclicAncestry):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Errorf("❌ Request failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal error")
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("Failed to write response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
