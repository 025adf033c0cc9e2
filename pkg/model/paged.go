package model

import "encoding/json"

// BeerPagedList is one page of a beer listing, shaped like the page object
// the catalog service serializes.
type BeerPagedList struct {
	Content          []Beer `json:"content"`
	Number           int    `json:"number"`
	Size             int    `json:"size"`
	TotalElements    int64  `json:"totalElements"`
	TotalPages       int    `json:"totalPages"`
	NumberOfElements int    `json:"numberOfElements,omitempty"`
	First            bool   `json:"first,omitempty"`
	Last             bool   `json:"last,omitempty"`
	Empty            bool   `json:"empty,omitempty"`
}

// UnmarshalJSON keeps Content non-nil so an out-of-range page reads as an
// empty page.
func (p *BeerPagedList) UnmarshalJSON(data []byte) error {
	type plain BeerPagedList
	var raw plain
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Content == nil {
		raw.Content = []Beer{}
	}
	*p = BeerPagedList(raw)
	return nil
}

// Len returns the number of beers on this page.
func (p BeerPagedList) Len() int { return len(p.Content) }

// IsEmpty reports whether the page holds no beers.
func (p BeerPagedList) IsEmpty() bool { return len(p.Content) == 0 }
