package category

import (
	"fmt"

	"pathscategories/resolver/internal/domain"
)

// ResolveBreadcrumbs returns the trail from the topmost ancestor of selectedID down to selectedID itself.
// Each crumb carries the full path of its category, recomputed from the parent chain.
func ResolveBreadcrumbs(records []domain.CategoryRecord, selectedID domain.CategoryID) ([]domain.Breadcrumb, error) {
	index := indexRecords(records)

	pos, ok := index[selectedID]
	if !ok {
		return nil, fmt.Errorf("%w: category %d", ErrUnknownSelection, selectedID)
	}

	// selected first, root last
	chain := []domain.CategoryRecord{records[pos]}
	cur := records[pos]
	for !cur.IsRoot() {
		if len(chain) == len(records) {
			return nil, fmt.Errorf("%w: category %d never reaches a root", ErrCyclicAncestry, selectedID)
		}

		parentPos, ok := index[cur.Parent.ID]
		if !ok {
			return nil, fmt.Errorf("%w: parent %d of category %d not found", ErrUnresolvedParent, cur.Parent.ID, cur.ID)
		}
		cur = records[parentPos]
		chain = append(chain, cur)
	}

	crumbs := make([]domain.Breadcrumb, 0, len(chain))
	var fullPath string
	for k := len(chain) - 1; k >= 0; k-- {
		rec := chain[k]
		if k == len(chain)-1 {
			fullPath = rec.Slug
		} else {
			fullPath += "/" + rec.Slug
		}
		crumbs = append(crumbs, domain.Breadcrumb{Name: rec.Name, Slug: fullPath})
	}

	return crumbs, nil
}

// indexRecords maps ids to their first position, matching BuildTree's handling of duplicates
func indexRecords(records []domain.CategoryRecord) map[domain.CategoryID]int {
	index := make(map[domain.CategoryID]int, len(records))
	for i, rec := range records {
		if _, exists := index[rec.ID]; !exists {
			index[rec.ID] = i
		}
	}
	return index
}
