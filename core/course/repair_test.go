package course

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepair_synthesizesDefaultCategoryForLegacyCourse(t *testing.T) {
	crs := Course{
		ID:     "c1",
		Videos: []Video{video("v1", "Intro")},
	}

	repaired, rep := Repair(crs)

	assert.True(t, rep.Changed)
	assert.True(t, rep.DefaultCategoryAdded)
	assert.Equal(t, 0, rep.CategoriesBefore)
	assert.Equal(t, 1, rep.CategoriesAfter)

	if assert.Len(t, repaired.Content, 1) {
		assert.Equal(t, DefaultCategoryName, repaired.Content[0].CategoryName)
		assert.Empty(t, repaired.Content[0].Videos)
		assert.Empty(t, repaired.Content[0].Subcategories)
	}
	// legacy list is never migrated automatically
	if assert.Len(t, repaired.Videos, 1) {
		assert.Equal(t, "v1", repaired.Videos[0].ID)
	}
}

func TestRepair_eliminatesNilSlots(t *testing.T) {
	crs := Course{
		ID: "c1",
		Content: []*Category{
			nil,
			{CategoryName: "Basics", Subcategories: []*Subcategory{nil, {SubcategoryName: "Sub"}}},
			nil,
		},
	}

	repaired, rep := Repair(crs)

	assert.True(t, rep.Changed)
	assert.Equal(t, 2, rep.PlaceholderCategories)
	assert.Equal(t, 1, rep.PlaceholderSubcategories)

	for _, cat := range repaired.Content {
		if assert.NotNil(t, cat) {
			assert.NotNil(t, cat.Videos)
			assert.NotNil(t, cat.Subcategories)
			for _, sub := range cat.Subcategories {
				if assert.NotNil(t, sub) {
					assert.NotNil(t, sub.Videos)
				}
			}
		}
	}
	assert.Equal(t, "Category 1", repaired.Content[0].CategoryName)
	assert.Equal(t, "Category 3", repaired.Content[2].CategoryName)
	assert.Equal(t, "Subcategory 1", repaired.Content[1].Subcategories[0].SubcategoryName)
	assert.True(t, WellFormed(repaired))
}

func TestRepair_isIdempotent(t *testing.T) {
	courses := []Course{
		{ID: "legacy", Videos: []Video{video("v1", "One")}},
		{ID: "corrupt", Content: []*Category{nil, {CategoryName: "A"}}},
		{ID: "empty"},
		{ID: "healthy", Content: []*Category{{
			CategoryName:  "A",
			Subcategories: []*Subcategory{{SubcategoryName: "S", Videos: []Video{}}},
			Videos:        []Video{video("v2", "Two")},
		}}, Videos: []Video{}},
	}

	for _, crs := range courses {
		crs := crs
		t.Run(crs.ID, func(t *testing.T) {
			once, rep1 := Repair(crs)
			twice, rep2 := Repair(once)

			b1, err := json.Marshal(once)
			assert.NoError(t, err)
			b2, err := json.Marshal(twice)
			assert.NoError(t, err)
			assert.Equal(t, string(b1), string(b2))

			assert.False(t, rep2.Changed, "second pass must be a no-op (first: %+v)", rep1)
		})
	}
}

func TestRepair_doesNotMutateInput(t *testing.T) {
	crs := Course{
		ID:      "c1",
		Content: []*Category{nil},
		Videos:  []Video{video("v1", "One")},
	}

	_, _ = Repair(crs)

	assert.Nil(t, crs.Content[0])
	assert.Len(t, crs.Videos, 1)
}

func TestRepair_noopOnWellFormedCourse(t *testing.T) {
	crs := Course{
		ID: "c1",
		Content: []*Category{{
			CategoryName:  "A",
			Subcategories: []*Subcategory{},
			Videos:        []Video{video("v1", "One")},
		}},
		Videos: []Video{},
	}

	repaired, rep := Repair(crs)

	assert.False(t, rep.Changed)
	b1, _ := json.Marshal(crs)
	b2, _ := json.Marshal(repaired)
	assert.Equal(t, string(b1), string(b2))
}
