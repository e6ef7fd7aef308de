package category

import (
	"pathscategories/resolver/internal/domain"
)

func root(id domain.CategoryID, name, slug string) domain.CategoryRecord {
	return domain.CategoryRecord{ID: id, Name: name, Slug: slug}
}

func child(id domain.CategoryID, name, slug string, parent domain.CategoryID) domain.CategoryRecord {
	return domain.CategoryRecord{ID: id, Name: name, Slug: slug, Parent: &domain.ParentRef{ID: parent}}
}

// catalogRecords is a two-root forest listed with some children ahead of their parents
func catalogRecords() []domain.CategoryRecord {
	return []domain.CategoryRecord{
		root(1, "Clothing", "clothing"),
		child(4, "Sneakers", "sneakers", 2),
		child(2, "Shoes", "shoes", 1),
		root(3, "Books", "books"),
		child(5, "Boots", "boots", 2),
		child(6, "Hats", "hats", 1),
		child(7, "Novels", "novels", 3),
	}
}
