package catalog

import (
	"afdscraper/pkg/afdian"
)

// PostRef identifies one post of an album catalog
type PostRef struct {
	ID    string
	Title string
}

// Walk flattens a catalog listing into post references in listing order.
// A nil listing yields an empty slice.
func Walk(data *afdian.CatalogData) []PostRef {
	if data == nil {
		return []PostRef{}
	}

	refs := make([]PostRef, 0, len(data.List))
	for _, entry := range data.List {
		refs = append(refs, PostRef{
			ID:    entry.PostID,
			Title: entry.Title,
		})
	}
	return refs
}
