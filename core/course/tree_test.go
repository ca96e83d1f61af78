package course

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWellFormed(t *testing.T) {
	tests := []struct {
		name string
		crs  Course
		want bool
	}{
		{name: "empty course with materialized arrays", crs: Course{Content: []*Category{}, Videos: []Video{}}, want: true},
		{name: "nil videos array", crs: Course{Content: []*Category{}}, want: false},
		{name: "nil category slot", crs: Course{Content: []*Category{nil}, Videos: []Video{}}, want: false},
		{name: "category with nil arrays", crs: Course{Content: []*Category{{CategoryName: "A"}}, Videos: []Video{}}, want: false},
		{name: "nil subcategory slot", crs: Course{
			Content: []*Category{{CategoryName: "A", Subcategories: []*Subcategory{nil}, Videos: []Video{}}},
			Videos:  []Video{},
		}, want: false},
		{name: "subcategory with nil videos", crs: Course{
			Content: []*Category{{CategoryName: "A", Subcategories: []*Subcategory{{SubcategoryName: "S"}}, Videos: []Video{}}},
			Videos:  []Video{},
		}, want: false},
		{name: "fully materialized tree", crs: Course{
			Content: []*Category{{
				CategoryName:  "A",
				Subcategories: []*Subcategory{{SubcategoryName: "S", Videos: []Video{}}},
				Videos:        []Video{},
			}},
			Videos: []Video{},
		}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WellFormed(tt.crs))
		})
	}
}

func TestRoot(t *testing.T) {
	legacy := Course{Videos: []Video{video("v1", "One")}}
	root := legacy.Root()
	assert.Equal(t, LegacyFlat, root.Kind)
	assert.Len(t, root.Videos, 1)

	hier := Course{
		Content: []*Category{{CategoryName: "A", Subcategories: []*Subcategory{}, Videos: []Video{}}},
		Videos:  []Video{video("v1", "One")},
	}
	root = hier.Root()
	// the hierarchy wins when both stored fields are populated
	assert.Equal(t, Hierarchical, root.Kind)
	assert.Len(t, root.Categories, 1)
	assert.Empty(t, root.Videos)
}

func TestLocate(t *testing.T) {
	crs := twoCatCourse()
	ci0, ci9, si0 := 0, 9, 0

	target, ok := Locate(&crs, Location{})
	assert.True(t, ok)
	assert.Same(t, &crs.Videos, target)

	target, ok = Locate(&crs, Location{CategoryIndex: &ci0})
	assert.True(t, ok)
	assert.Same(t, &crs.Content[0].Videos, target)

	target, ok = Locate(&crs, Location{CategoryIndex: &ci0, SubcategoryIndex: &si0})
	assert.True(t, ok)
	assert.Same(t, &crs.Content[0].Subcategories[0].Videos, target)

	_, ok = Locate(&crs, Location{CategoryIndex: &ci9})
	assert.False(t, ok)
}

func TestFindVideo(t *testing.T) {
	crs := twoCatCourse()
	crs.Videos = append(crs.Videos, video("legacy-v", "Legacy"))
	crs.Content[0].Videos = append(crs.Content[0].Videos, video("cat-v", "InCat"))
	crs.Content[0].Subcategories[0].Videos = append(crs.Content[0].Subcategories[0].Videos, video("sub-v", "InSub"))

	vid, loc, ok := findVideo(&crs, "legacy-v")
	assert.True(t, ok)
	assert.Equal(t, "legacy-v", vid.ID)
	assert.Nil(t, loc.CategoryIndex)

	vid, loc, ok = findVideo(&crs, "cat-v")
	assert.True(t, ok)
	assert.Equal(t, "cat-v", vid.ID)
	if assert.NotNil(t, loc.CategoryIndex) {
		assert.Equal(t, 0, *loc.CategoryIndex)
	}
	assert.Nil(t, loc.SubcategoryIndex)

	vid, loc, ok = findVideo(&crs, "sub-v")
	assert.True(t, ok)
	assert.Equal(t, "sub-v", vid.ID)
	if assert.NotNil(t, loc.SubcategoryIndex) {
		assert.Equal(t, 0, *loc.SubcategoryIndex)
	}

	_, _, ok = findVideo(&crs, "nope")
	assert.False(t, ok)
}
