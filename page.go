package sqlrepo

// Pageable requests one page of a result. PageNumber is zero based.
type Pageable struct {
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
}

// Offset returns the number of rows skipped before the page.
func (p Pageable) Offset() int {
	return p.PageNumber * p.PageSize
}

// Next returns the request for the following page.
func (p Pageable) Next() Pageable {
	return Pageable{PageNumber: p.PageNumber + 1, PageSize: p.PageSize}
}

// Page is one page of a result together with the request that produced it.
type Page[T any] struct {
	Pageable Pageable `json:"pageable"`
	Content  []T      `json:"content"`
	Sort     Order    `json:"sort,omitempty"`
}

// NewPage wraps content read for p.
func NewPage[T any](p Pageable, content []T) Page[T] {
	if content == nil {
		content = []T{}
	}
	return Page[T]{Pageable: p, Content: content}
}

// Last reports whether the page holds fewer rows than requested, which
// means no rows follow it.
func (p Page[T]) Last() bool {
	return len(p.Content) < p.Pageable.PageSize
}
