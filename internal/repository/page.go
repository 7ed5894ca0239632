package repository

import "docentes/internal/model"

// PageRequest selects a zero-based page of a given size.
type PageRequest struct {
	Page int
	Size int
}

// Offset is the number of rows skipped before the page starts.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Page is an ordered slice of teachers with its position in the full result.
type Page struct {
	Items  []model.Teacher
	Number int
	Size   int
	Total  int64
}

// TotalPages is ceil(Total/Size); a zero size counts as a single page.
func (p *Page) TotalPages() int {
	if p.Size <= 0 {
		return 1
	}
	return int((p.Total + int64(p.Size) - 1) / int64(p.Size))
}

func (p *Page) HasNext() bool {
	return p.Number+1 < p.TotalPages()
}

func (p *Page) HasPrevious() bool {
	return p.Number > 0
}

func (p *Page) IsFirst() bool {
	return !p.HasPrevious()
}

func (p *Page) IsLast() bool {
	return !p.HasNext()
}
