package course

// RootKind tags the shape a course's real content takes.
type RootKind int

const (
	// LegacyFlat content lives in the flat Course.Videos list.
	LegacyFlat RootKind = iota
	// Hierarchical content lives in the Category → Subcategory tree.
	Hierarchical
)

// ContentRoot is a tagged view of a course's content: exactly one shape is
// authoritative at a time. When both stored fields are populated (a repaired
// legacy course), the hierarchy wins and the legacy list stays addressable
// only through an index-less Location.
type ContentRoot struct {
	Kind       RootKind
	Categories []*Category
	Videos     []Video
}

func (c Course) Root() ContentRoot {
	if len(c.Content) > 0 {
		return ContentRoot{Kind: Hierarchical, Categories: c.Content}
	}
	return ContentRoot{Kind: LegacyFlat, Videos: c.Videos}
}

// Location addresses a target video list within a specific tree snapshot.
// It is positional, not stable: a structural edit invalidates prior indices.
type Location struct {
	CategoryIndex    *int `json:"categoryIndex,omitempty"`
	SubcategoryIndex *int `json:"subcategoryIndex,omitempty"`
}

// WellFormed reports whether the course's tree is structurally sound:
// no nil Category/Subcategory slots and every node's array fields
// materialized (present even if empty).
func WellFormed(c Course) bool {
	if c.Videos == nil {
		return false
	}
	return WellFormedContent(c.Content)
}

// WellFormedContent checks the structural invariant on a category tree
// alone; used both by WellFormed and to vet full-tree replacements.
func WellFormedContent(cats []*Category) bool {
	for _, cat := range cats {
		if cat == nil || cat.Videos == nil || cat.Subcategories == nil {
			return false
		}
		for _, sub := range cat.Subcategories {
			if sub == nil || sub.Videos == nil {
				return false
			}
		}
	}
	return true
}

// Locate returns a reference to the target video list for a location, or
// false if any referenced index is absent or a nil slot.
func Locate(c *Course, loc Location) (*[]Video, bool) {
	if loc.CategoryIndex == nil {
		return &c.Videos, true
	}
	ci := *loc.CategoryIndex
	if ci < 0 || ci >= len(c.Content) || c.Content[ci] == nil {
		return nil, false
	}
	cat := c.Content[ci]
	if loc.SubcategoryIndex == nil {
		return &cat.Videos, true
	}
	si := *loc.SubcategoryIndex
	if si < 0 || si >= len(cat.Subcategories) || cat.Subcategories[si] == nil {
		return nil, false
	}
	return &cat.Subcategories[si].Videos, true
}

// findVideo walks the repaired tree and the legacy list looking for a video
// by ID, returning it along with the location it was found at.
func findVideo(c *Course, videoID string) (Video, Location, bool) {
	for i := range c.Videos {
		if c.Videos[i].ID == videoID {
			return c.Videos[i], Location{}, true
		}
	}
	for ci, cat := range c.Content {
		if cat == nil {
			continue
		}
		for i := range cat.Videos {
			if cat.Videos[i].ID == videoID {
				ci := ci
				return cat.Videos[i], Location{CategoryIndex: &ci}, true
			}
		}
		for si, sub := range cat.Subcategories {
			if sub == nil {
				continue
			}
			for i := range sub.Videos {
				if sub.Videos[i].ID == videoID {
					ci, si := ci, si
					return sub.Videos[i], Location{CategoryIndex: &ci, SubcategoryIndex: &si}, true
				}
			}
		}
	}
	return Video{}, Location{}, false
}
