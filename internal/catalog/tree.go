package catalog

// CategoryTree is an immutable index of categories by id.
// It is built once per export run and shared by concurrent mapping calls.
type CategoryTree struct {
	byID map[int64]Category
}

// NewCategoryTree creates a tree from the given categories. A later category with the same id replaces an earlier one.
func NewCategoryTree(categories ...Category) *CategoryTree {
	byID := make(map[int64]Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}
	return &CategoryTree{byID: byID}
}

// Category returns the category with the given id.
func (t *CategoryTree) Category(id int64) (Category, bool) {
	if t == nil {
		return Category{}, false
	}
	c, ok := t.byID[id]
	return c, ok
}

// Len returns the number of categories in the tree.
func (t *CategoryTree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byID)
}
