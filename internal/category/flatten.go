package category

import "pathscategories/resolver/internal/domain"

// Flatten lists the forest in pre-order: each node before its descendants, siblings in order.
func Flatten(forest []*domain.CategoryNode) []domain.FlatEntry {
	entries := make([]domain.FlatEntry, 0, countNodes(forest))
	return appendEntries(entries, forest)
}

func appendEntries(entries []domain.FlatEntry, nodes []*domain.CategoryNode) []domain.FlatEntry {
	for _, node := range nodes {
		entries = append(entries, domain.FlatEntry{
			Name:       node.Name,
			Slug:       node.Slug,
			FullPath:   node.FullPath,
			CategoryID: node.ID,
			Depth:      node.Depth,
		})
		entries = appendEntries(entries, node.Children)
	}
	return entries
}

func countNodes(nodes []*domain.CategoryNode) int {
	n := len(nodes)
	for _, node := range nodes {
		n += countNodes(node.Children)
	}
	return n
}
