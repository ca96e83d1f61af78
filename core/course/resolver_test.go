package course

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

// twoCatCourse builds the reference fixture: 2 categories, the first one
// having 1 subcategory.
func twoCatCourse() Course {
	return Course{
		ID: "c1",
		Content: []*Category{
			{
				CategoryName:  "First",
				Subcategories: []*Subcategory{{SubcategoryName: "Sub", Videos: []Video{}}},
				Videos:        []Video{},
			},
			{CategoryName: "Second", Subcategories: []*Subcategory{}, Videos: []Video{}},
		},
		Videos: []Video{},
	}
}

func TestResolve(t *testing.T) {
	none := Index{}

	tests := []struct {
		name    string
		catIdx  Index
		subIdx  Index
		want    func(c *Course) *[]Video
		wantErr error
	}{
		{name: "no indices targets legacy list", catIdx: none, subIdx: none,
			want: func(c *Course) *[]Video { return &c.Videos }},
		{name: "category only", catIdx: NewIndex(0), subIdx: none,
			want: func(c *Course) *[]Video { return &c.Content[0].Videos }},
		{name: "category and subcategory", catIdx: NewIndex(0), subIdx: NewIndex(0),
			want: func(c *Course) *[]Video { return &c.Content[0].Subcategories[0].Videos }},
		{name: "second category", catIdx: NewIndex(1), subIdx: none,
			want: func(c *Course) *[]Video { return &c.Content[1].Videos }},
		{name: "category out of range", catIdx: NewIndex(2), subIdx: none, wantErr: ErrInvalidCategoryIndex},
		{name: "negative category", catIdx: NewIndex(-1), subIdx: none, wantErr: ErrInvalidCategoryIndex},
		{name: "subcategory out of range", catIdx: NewIndex(0), subIdx: NewIndex(5), wantErr: ErrInvalidSubcategoryIndex},
		{name: "subcategory on category without subcategories", catIdx: NewIndex(1), subIdx: NewIndex(0), wantErr: ErrInvalidSubcategoryIndex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			crs := twoCatCourse()
			got, err := Resolve(&crs, tt.catIdx, tt.subIdx)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			assert.NoError(t, err)
			assert.Same(t, tt.want(&crs), got)
		})
	}
}

func TestResolve_rejectsUnparsableIndices(t *testing.T) {
	crs := twoCatCourse()

	_, err := Resolve(&crs, Index{set: true, raw: "abc"}, Index{})
	assert.Equal(t, ErrInvalidCategoryIndex, err)

	_, err = Resolve(&crs, NewIndex(0), Index{set: true, raw: "1.5"})
	assert.Equal(t, ErrInvalidSubcategoryIndex, err)
}

func TestResolve_emptyContentRejectsAnyCategoryIndex(t *testing.T) {
	crs := Course{ID: "c1", Videos: []Video{video("v1", "One")}}

	_, err := Resolve(&crs, NewIndex(0), Index{})
	assert.Equal(t, ErrInvalidCategoryIndex, err)
}

func TestResolve_nilSlotsAreNotValidTargets(t *testing.T) {
	crs := Course{
		ID:      "c1",
		Content: []*Category{nil, {CategoryName: "A", Subcategories: []*Subcategory{nil}, Videos: []Video{}}},
	}

	_, err := Resolve(&crs, NewIndex(0), Index{})
	assert.Equal(t, ErrInvalidCategoryIndex, err)

	_, err = Resolve(&crs, NewIndex(1), NewIndex(0))
	assert.Equal(t, ErrInvalidSubcategoryIndex, err)
}

func TestIndex_UnmarshalJSON(t *testing.T) {
	var payload struct {
		CategoryIndex    Index `json:"categoryIndex"`
		SubcategoryIndex Index `json:"subcategoryIndex"`
	}

	// numbers and numeric strings are both accepted
	err := json.Unmarshal([]byte(`{"categoryIndex": 1, "subcategoryIndex": "0"}`), &payload)
	assert.NoError(t, err)
	crs := twoCatCourse()
	_, err = Resolve(&crs, payload.CategoryIndex, Index{})
	assert.NoError(t, err)

	// absent and null mean "legacy list"
	payload.CategoryIndex = Index{}
	err = json.Unmarshal([]byte(`{"categoryIndex": null}`), &payload)
	assert.NoError(t, err)
	target, err := Resolve(&crs, payload.CategoryIndex, payload.SubcategoryIndex)
	assert.NoError(t, err)
	assert.Same(t, &crs.Videos, target)
}
