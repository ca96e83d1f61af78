package course

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

var (
	// index resolution rejections; recoverable by re-fetching the tree and
	// retrying against the fresh snapshot. Never coerced or clamped.
	ErrInvalidCategoryIndex    = errors.New("invalid category index")
	ErrInvalidSubcategoryIndex = errors.New("invalid subcategory index")
)

// Index is a client-supplied positional index. Clients send it as a JSON
// number, a numeric string or not at all; it is parsed leniently but
// validated strictly.
type Index struct {
	set bool
	raw string
}

var _ json.Unmarshaler = (*Index)(nil)

func (ix *Index) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		var err error
		if s, err = strconv.Unquote(s); err != nil {
			return err
		}
	}
	ix.set = true
	ix.raw = strings.TrimSpace(s)
	return nil
}

// NewIndex makes a set Index; tests and the admin CLI use it.
func NewIndex(i int) Index {
	return Index{set: true, raw: strconv.Itoa(i)}
}

// ParseIndex makes an Index from a raw form value; an empty string means
// the index was omitted.
func ParseIndex(s string) Index {
	s = strings.TrimSpace(s)
	if s == "" {
		return Index{}
	}
	return Index{set: true, raw: s}
}

// absent reports whether the client omitted the index (or sent an empty
// string, which means the same thing).
func (ix Index) absent() bool { return !ix.set || ix.raw == "" }

// value parses the raw index into a non-negative int.
func (ix Index) value() (int, error) {
	i, err := strconv.Atoi(ix.raw)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		return 0, errors.New("negative index")
	}
	return i, nil
}

// Resolve turns a client-supplied (categoryIndex, subcategoryIndex) pair
// into the target video list within this exact course snapshot, or a
// precise rejection. No categoryIndex targets the legacy flat list;
// categoryIndex alone targets that category's direct list; both target the
// subcategory's list. Out-of-range requests fail loudly so the caller can
// re-fetch the current tree rather than silently write to the wrong place.
func Resolve(c *Course, catIdx, subIdx Index) (*[]Video, error) {
	if catIdx.absent() {
		return &c.Videos, nil
	}

	ci, err := catIdx.value()
	if err != nil {
		return nil, ErrInvalidCategoryIndex
	}
	if len(c.Content) == 0 || ci >= len(c.Content) || c.Content[ci] == nil {
		return nil, ErrInvalidCategoryIndex
	}
	cat := c.Content[ci]

	if subIdx.absent() {
		return &cat.Videos, nil
	}

	si, err := subIdx.value()
	if err != nil {
		return nil, ErrInvalidSubcategoryIndex
	}
	if len(cat.Subcategories) == 0 || si >= len(cat.Subcategories) || cat.Subcategories[si] == nil {
		return nil, ErrInvalidSubcategoryIndex
	}
	return &cat.Subcategories[si].Videos, nil
}
