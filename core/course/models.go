package course

import (
	"time"

	"github.com/trezcool/darasa/core"
)

// DefaultCategoryName is the name given to the category synthesized for
// legacy courses whose content predates the category hierarchy.
const DefaultCategoryName = "General"

type (
	// Course owns a tree of Category → Subcategory → Video, plus a legacy
	// flat Videos list retained for backward compatibility. Legacy documents
	// may carry nil slots in Content/Subcategories; Repair eliminates them.
	Course struct {
		ID          string      `json:"id"`
		Title       string      `json:"title"`
		Slug        string      `json:"slug"`
		Description string      `json:"description"`
		Instructor  string      `json:"instructor"`
		Price       int         `json:"price"` // minor units; 0 = free
		IsPublished bool        `json:"is_published"`
		Content     []*Category `json:"content"`
		Videos      []Video     `json:"videos"` // legacy flat list
		CreatedAt   time.Time   `json:"created_at"` // UTC
		UpdatedAt   time.Time   `json:"updated_at"` // UTC
	}

	Category struct {
		CategoryName        string         `json:"categoryName"`
		CategoryDescription string         `json:"categoryDescription,omitempty"`
		Subcategories       []*Subcategory `json:"subcategories"`
		Videos              []Video        `json:"videos"`
	}

	Subcategory struct {
		SubcategoryName        string  `json:"subcategoryName"`
		SubcategoryDescription string  `json:"subcategoryDescription,omitempty"`
		Videos                 []Video `json:"videos"`
	}

	// Video is owned by exactly one location: the legacy list, a category's
	// direct list, or a subcategory's list. Order is its position within
	// that list.
	Video struct {
		ID              string `json:"id"`
		Title           string `json:"title"`
		SourceURL       string `json:"source_url,omitempty"`
		DurationSeconds int    `json:"duration_seconds,omitempty"`
		Order           int    `json:"order"`
	}
)

func (c Course) IsFree() bool { return c.Price == 0 }

// clone returns a deep copy; mutating service paths are copy-on-write.
func (c Course) clone() Course {
	cp := c
	if c.Videos != nil {
		cp.Videos = append([]Video(nil), c.Videos...)
	}
	if c.Content != nil {
		cp.Content = make([]*Category, len(c.Content))
		for i, cat := range c.Content {
			if cat == nil {
				continue
			}
			catCp := *cat
			if cat.Videos != nil {
				catCp.Videos = append([]Video(nil), cat.Videos...)
			}
			if cat.Subcategories != nil {
				catCp.Subcategories = make([]*Subcategory, len(cat.Subcategories))
				for j, sub := range cat.Subcategories {
					if sub == nil {
						continue
					}
					subCp := *sub
					if sub.Videos != nil {
						subCp.Videos = append([]Video(nil), sub.Videos...)
					}
					catCp.Subcategories[j] = &subCp
				}
			}
			cp.Content[i] = &catCp
		}
	}
	return cp
}

// Redacted strips playable references from every video; titles, ordering
// and durations stay visible.
func (c Course) Redacted() Course {
	cp := c.clone()
	for i := range cp.Videos {
		cp.Videos[i].SourceURL = ""
	}
	for _, cat := range cp.Content {
		if cat == nil {
			continue
		}
		for i := range cat.Videos {
			cat.Videos[i].SourceURL = ""
		}
		for _, sub := range cat.Subcategories {
			if sub == nil {
				continue
			}
			for i := range sub.Videos {
				sub.Videos[i].SourceURL = ""
			}
		}
	}
	return cp
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Instructor  string `json:"instructor"`
	Price       int    `json:"price" validate:"gte=0"`
	IsPublished bool   `json:"is_published"`
}

func (nc *NewCourse) Validate() error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.Instructor = core.CleanString(nc.Instructor)
	return core.Validate.Struct(nc)
}

// UpdateCourse defines what may be modified on an existing Course. When
// Content is given the whole tree is replaced in the same write; a
// rejected tree leaves the document untouched, metadata included.
type UpdateCourse struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Instructor  string       `json:"instructor"`
	Price       *int         `json:"price" validate:"omitempty,gte=0"`
	IsPublished *bool        `json:"is_published"`
	Content     *[]*Category `json:"content"`
}

func (uc *UpdateCourse) Validate(orig Course) error {
	if title := core.CleanString(uc.Title); title != "" {
		uc.Title = title
	} else {
		uc.Title = orig.Title
	}
	if desc := core.CleanString(uc.Description); desc != "" {
		uc.Description = desc
	} else {
		uc.Description = orig.Description
	}
	if instr := core.CleanString(uc.Instructor); instr != "" {
		uc.Instructor = instr
	} else {
		uc.Instructor = orig.Instructor
	}
	return core.Validate.Struct(uc)
}

// NewVideo contains information needed to add a Video to a Course.
type NewVideo struct {
	Title           string `json:"title" validate:"required"`
	SourceURL       string `json:"source_url" validate:"required,url"`
	DurationSeconds int    `json:"duration_seconds" validate:"gte=0"`
}

func (nv *NewVideo) Validate() error {
	nv.Title = core.CleanString(nv.Title)
	nv.SourceURL = core.CleanString(nv.SourceURL)
	return core.Validate.Struct(nv)
}
