// Package domain holds the content entities served by the remote content API
// and persisted in the build-time snapshot.
package domain

// Pagination mirrors the paging block the content API attaches to list responses.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
	PageSize    int  `json:"pageSize,omitzero"`
	TotalCount  int  `json:"totalCount,omitzero"`
}

// Envelope is the wrapper shared by every API response and snapshot file.
// Live and snapshot data travel in the same shape so callers never branch on origin.
type Envelope[T any] struct {
	Success    bool        `json:"success"`
	Data       T           `json:"data"`
	Message    string      `json:"message,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// OK wraps data in a successful envelope.
func OK[T any](data T) Envelope[T] {
	return Envelope[T]{Success: true, Data: data}
}

// Failed returns an unsuccessful envelope carrying the zero value.
func Failed[T any](message string) Envelope[T] {
	return Envelope[T]{Success: false, Message: message}
}

// WithData returns a copy of e with its payload replaced.
// Success, message and pagination are carried over.
func WithData[T, U any](e Envelope[T], data U) Envelope[U] {
	out := Envelope[U]{
		Success: e.Success,
		Data:    data,
		Message: e.Message,
	}
	if e.Pagination != nil {
		p := *e.Pagination
		out.Pagination = &p
	}
	return out
}
