package category

import (
	"encoding/json"
	"fmt"
	"strings"

	"pathscategories/resolver/internal/domain"
)

// NewSelection resolves the trail for selectedID and builds the payload stored in the host field.
// The payload path is the selected category's full path followed by the item's own slug.
func NewSelection(records []domain.CategoryRecord, selectedID domain.CategoryID, itemSlug string) (domain.SelectionPayload, error) {
	crumbs, err := ResolveBreadcrumbs(records, selectedID)
	if err != nil {
		return domain.SelectionPayload{}, err
	}

	return domain.SelectionPayload{
		CategoryID:  selectedID,
		Path:        ItemPath(crumbs[len(crumbs)-1].Slug, itemSlug),
		Breadcrumbs: crumbs,
	}, nil
}

func ItemPath(categoryPath, itemSlug string) string {
	return categoryPath + "/" + itemSlug
}

// Rebase recomputes the payload path for the item's current slug, so a slug edited after the category
// was picked does not leave a stale path behind.
func Rebase(payload domain.SelectionPayload, itemSlug string) domain.SelectionPayload {
	var categoryPath string
	if n := len(payload.Breadcrumbs); n > 0 {
		categoryPath = payload.Breadcrumbs[n-1].Slug
	} else if i := strings.LastIndex(payload.Path, "/"); i >= 0 {
		categoryPath = payload.Path[:i]
	} else {
		return payload
	}

	payload.Path = ItemPath(categoryPath, itemSlug)
	return payload
}

// EncodeSelection serializes the payload with exactly the categoryId, path and breadcrumbs keys
func EncodeSelection(payload domain.SelectionPayload) (string, error) {
	if payload.Breadcrumbs == nil {
		payload.Breadcrumbs = []domain.Breadcrumb{}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode selection: %w", err)
	}
	return string(data), nil
}

// DecodeSelection parses a stored field value. All three payload keys must be present.
func DecodeSelection(raw string) (domain.SelectionPayload, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.SelectionPayload{}, fmt.Errorf("%w: empty value", ErrMalformedStoredValue)
	}

	var present struct {
		CategoryID  *domain.CategoryID   `json:"categoryId"`
		Path        *string              `json:"path"`
		Breadcrumbs *[]domain.Breadcrumb `json:"breadcrumbs"`
	}
	if err := json.Unmarshal([]byte(raw), &present); err != nil {
		return domain.SelectionPayload{}, fmt.Errorf("%w: %v", ErrMalformedStoredValue, err)
	}

	switch {
	case present.CategoryID == nil:
		return domain.SelectionPayload{}, fmt.Errorf("%w: missing categoryId", ErrMalformedStoredValue)
	case present.Path == nil:
		return domain.SelectionPayload{}, fmt.Errorf("%w: missing path", ErrMalformedStoredValue)
	case present.Breadcrumbs == nil:
		return domain.SelectionPayload{}, fmt.Errorf("%w: missing breadcrumbs", ErrMalformedStoredValue)
	}

	return domain.SelectionPayload{
		CategoryID:  *present.CategoryID,
		Path:        *present.Path,
		Breadcrumbs: *present.Breadcrumbs,
	}, nil
}

// ParseStoredValue reports whether raw holds a prior selection. Anything unparseable counts as none.
func ParseStoredValue(raw string) (domain.SelectionPayload, bool) {
	payload, err := DecodeSelection(raw)
	if err != nil {
		return domain.SelectionPayload{}, false
	}
	return payload, true
}
