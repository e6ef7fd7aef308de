package domain

import (
	"fmt"
	"strconv"
	"strings"
)

type CategoryID int64

// ParseCategoryID accepts the decimal form used in URLs and catalog strings
func ParseCategoryID(s string) (CategoryID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid category id %q: %w", s, err)
	}
	return CategoryID(v), nil
}

// UnmarshalJSON accepts both 12 and "12"; some hosts stringify ids in stored field values.
func (id *CategoryID) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if raw == "null" {
		return nil
	}
	v, err := ParseCategoryID(strings.Trim(raw, `"`))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// ParentRef points at the parent category. Hosts may send the full parent object; only the id is read.
type ParentRef struct {
	ID CategoryID `json:"id"`
}

// CategoryRecord is a category as delivered by the records endpoint
type CategoryRecord struct {
	ID     CategoryID `json:"id"`
	Name   string     `json:"name"`
	Slug   string     `json:"slug"`   // URL-safe segment, unique among siblings
	Parent *ParentRef `json:"parent"` // nil for roots
}

func (r CategoryRecord) IsRoot() bool {
	return r.Parent == nil
}

// CategoryNode is a resolved record inside a forest built from a record set
type CategoryNode struct {
	ID       CategoryID      `json:"id"`
	Name     string          `json:"name"`
	Slug     string          `json:"slug"`
	Parent   *ParentRef      `json:"parent"`
	FullPath string          `json:"fullPath"` // "clothing/shoes"
	Depth    int             `json:"depth"`    // 0 for roots
	Children []*CategoryNode `json:"children"`
}

// FlatEntry is one option of the category select list
type FlatEntry struct {
	Name       string     `json:"name"`
	Slug       string     `json:"slug"`
	FullPath   string     `json:"fullPath"`
	CategoryID CategoryID `json:"categoryId"`
	Depth      int        `json:"depth"`
}

const labelIndent = "\u00a0\u00a0\u00a0\u00a0"

// Label returns the name indented by four non-breaking spaces per depth level
func (e FlatEntry) Label() string {
	return strings.Repeat(labelIndent, e.Depth) + e.Name
}

// Breadcrumb is one step of the root-first trail. Slug holds the full path of that category.
type Breadcrumb struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// SelectionPayload is the value persisted into the host field
type SelectionPayload struct {
	CategoryID  CategoryID   `json:"categoryId"`
	Path        string       `json:"path"`
	Breadcrumbs []Breadcrumb `json:"breadcrumbs"`
}
