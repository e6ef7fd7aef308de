package category

import (
	"fmt"

	"pathscategories/resolver/internal/domain"
)

// BuildTree turns a flat record set into a forest. Roots keep their encounter order and children keep
// input order under their parent. Records whose ancestry cannot be resolved are left out and reported
// through a *BuildError; everything else is still returned. The input is never modified.
func BuildTree(records []domain.CategoryRecord) ([]*domain.CategoryNode, error) {
	forest := make([]*domain.CategoryNode, 0)
	if len(records) == 0 {
		return forest, nil
	}

	r := newResolver(records)

	nodes := make([]*domain.CategoryNode, len(records))
	var failed []*RecordError
	for i := range records {
		res := r.resolve(i)
		if res.err != nil {
			failed = append(failed, &RecordError{ID: records[i].ID, Err: res.err})
			continue
		}
		nodes[i] = newNode(records[i], res)
	}

	for i, rec := range records {
		node := nodes[i]
		if node == nil {
			continue
		}
		if rec.IsRoot() {
			forest = append(forest, node)
			continue
		}
		parent := nodes[r.index[rec.Parent.ID]]
		parent.Children = append(parent.Children, node)
	}

	if len(failed) > 0 {
		return forest, &BuildError{Records: failed}
	}
	return forest, nil
}

type resolution struct {
	fullPath string
	depth    int
	err      error
	done     bool
}

type resolver struct {
	records []domain.CategoryRecord
	index   map[domain.CategoryID]int
	results []resolution
}

func newResolver(records []domain.CategoryRecord) *resolver {
	r := &resolver{
		records: records,
		index:   make(map[domain.CategoryID]int, len(records)),
		results: make([]resolution, len(records)),
	}

	for i, rec := range records {
		if _, exists := r.index[rec.ID]; exists {
			r.results[i] = resolution{
				err:  fmt.Errorf("%w: %d", ErrDuplicateID, rec.ID),
				done: true,
			}
			continue
		}
		r.index[rec.ID] = i
	}

	return r
}

// resolve walks up from record i until it meets a root or an already resolved ancestor, then annotates
// every record on the way back down. The walk never takes more steps than there are records.
func (r *resolver) resolve(i int) resolution {
	var chain []int
	cur := i

	for !r.results[cur].done {
		if len(chain) == len(r.records) {
			// after len(records) steps cur is on the cycle itself
			return r.fail(chain, fmt.Errorf("%w: parent chain loops through category %d", ErrCyclicAncestry, r.records[cur].ID))
		}

		rec := r.records[cur]
		if rec.IsRoot() {
			r.results[cur] = resolution{fullPath: rec.Slug, done: true}
			break
		}

		chain = append(chain, cur)

		parent, ok := r.index[rec.Parent.ID]
		if !ok {
			return r.fail(chain, fmt.Errorf("%w: parent %d of category %d not found", ErrUnresolvedParent, rec.Parent.ID, rec.ID))
		}
		cur = parent
	}

	base := r.results[cur]
	if base.err != nil {
		return r.fail(chain, base.err)
	}

	for k := len(chain) - 1; k >= 0; k-- {
		idx := chain[k]
		base = resolution{
			fullPath: base.fullPath + "/" + r.records[idx].Slug,
			depth:    base.depth + 1,
			done:     true,
		}
		r.results[idx] = base
	}

	return r.results[i]
}

func (r *resolver) fail(chain []int, err error) resolution {
	for _, idx := range chain {
		r.results[idx] = resolution{err: err, done: true}
	}
	return resolution{err: err, done: true}
}

func newNode(rec domain.CategoryRecord, res resolution) *domain.CategoryNode {
	node := &domain.CategoryNode{
		ID:       rec.ID,
		Name:     rec.Name,
		Slug:     rec.Slug,
		FullPath: res.fullPath,
		Depth:    res.depth,
		Children: make([]*domain.CategoryNode, 0),
	}
	if rec.Parent != nil {
		parent := *rec.Parent
		node.Parent = &parent
	}
	return node
}
