package course

import "fmt"

// Report summarizes what a repair pass changed on one course.
type Report struct {
	CourseID                 string `json:"course_id"`
	CategoriesBefore         int    `json:"categories_before"`
	CategoriesAfter          int    `json:"categories_after"`
	DefaultCategoryAdded     bool   `json:"default_category_added"`
	PlaceholderCategories    int    `json:"placeholder_categories"`
	PlaceholderSubcategories int    `json:"placeholder_subcategories"`
	MaterializedArrays       int    `json:"materialized_arrays"`
	Changed                  bool   `json:"changed"`
}

// Repair normalizes a possibly-inconsistent course into a well-formed tree.
// It is pure (the input is never mutated) and idempotent: a second pass over
// its own output changes nothing. Read paths run it in memory before
// serving; Service.RepairCourse persists the result when it differs.
//
// Legacy flat videos are deliberately NOT migrated into the synthesized
// default category: moving them changes their addressing and would break
// already-shared links. That migration is a manual admin decision.
func Repair(c Course) (Course, Report) {
	out := c.clone()
	rep := Report{CourseID: c.ID, CategoriesBefore: len(c.Content)}

	// 1. legacy course with no hierarchy yet: synthesize an empty default
	// category; the flat list stays untouched.
	if len(out.Content) == 0 && len(out.Videos) > 0 {
		out.Content = append(out.Content, &Category{
			CategoryName:  DefaultCategoryName,
			Subcategories: []*Subcategory{},
			Videos:        []Video{},
		})
		rep.DefaultCategoryAdded = true
	}

	// 2. + 3. eliminate nil slots, materialize missing arrays.
	for i, cat := range out.Content {
		if cat == nil {
			out.Content[i] = &Category{
				CategoryName:  fmt.Sprintf("Category %d", i+1),
				Subcategories: []*Subcategory{},
				Videos:        []Video{},
			}
			rep.PlaceholderCategories++
			continue
		}
		if cat.Videos == nil {
			cat.Videos = []Video{}
			rep.MaterializedArrays++
		}
		if cat.Subcategories == nil {
			cat.Subcategories = []*Subcategory{}
			rep.MaterializedArrays++
		}
		for j, sub := range cat.Subcategories {
			if sub == nil {
				cat.Subcategories[j] = &Subcategory{
					SubcategoryName: fmt.Sprintf("Subcategory %d", j+1),
					Videos:          []Video{},
				}
				rep.PlaceholderSubcategories++
				continue
			}
			if sub.Videos == nil {
				sub.Videos = []Video{}
				rep.MaterializedArrays++
			}
		}
	}

	if out.Videos == nil {
		out.Videos = []Video{}
		rep.MaterializedArrays++
	}

	rep.CategoriesAfter = len(out.Content)
	rep.Changed = rep.DefaultCategoryAdded ||
		rep.PlaceholderCategories > 0 ||
		rep.PlaceholderSubcategories > 0 ||
		rep.MaterializedArrays > 0
	return out, rep
}
