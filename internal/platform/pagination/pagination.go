package pagination

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultSize = 20
	MaxSize     = 100
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Order sorts by a public field name such as "startDate".
type Order struct {
	Field     string
	Direction Direction
}

// Request is a zero-based page request.
type Request struct {
	Page int
	Size int
	Sort []Order
}

// Page is one slice of a sorted result set.
type Page[T any] struct {
	Items      []T
	Page       int
	Size       int
	TotalItems int
	TotalPages int
}

func NewPage[T any](items []T, req Request, total int) Page[T] {
	totalPages := 0
	if req.Size > 0 {
		totalPages = (total + req.Size - 1) / req.Size
	}
	return Page[T]{
		Items:      items,
		Page:       req.Page,
		Size:       req.Size,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

// Map converts the items of a page, keeping its bounds.
func Map[T, R any](in Page[T], fn func(T) R) Page[R] {
	out := make([]R, 0, len(in.Items))
	for _, item := range in.Items {
		out = append(out, fn(item))
	}
	return Page[R]{
		Items:      out,
		Page:       in.Page,
		Size:       in.Size,
		TotalItems: in.TotalItems,
		TotalPages: in.TotalPages,
	}
}

// Clone copies the item slice so cached pages are never shared with callers.
func Clone[T any](in Page[T]) Page[T] {
	in.Items = append([]T(nil), in.Items...)
	return in
}

func (r Request) Offset() int {
	return r.Page * r.Size
}

// WithDefaults fills size and sort when the caller left them empty.
func (r Request) WithDefaults(defaultSort ...Order) Request {
	if r.Size <= 0 {
		r.Size = DefaultSize
	}
	if r.Page < 0 {
		r.Page = 0
	}
	if len(r.Sort) == 0 {
		r.Sort = append([]Order(nil), defaultSort...)
	}
	return r
}

// Key renders a stable cache key segment for the request.
func (r Request) Key() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(r.Page))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(r.Size))
	for _, o := range r.Sort {
		b.WriteByte(':')
		b.WriteString(o.Field)
		b.WriteByte(',')
		b.WriteString(string(o.Direction))
	}
	return b.String()
}

// ParseSort parses "field,dir" values and rejects fields outside allowed.
func ParseSort(values []string, allowed map[string]struct{}) ([]Order, error) {
	out := make([]Order, 0, len(values))
	for _, raw := range values {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		parts := strings.SplitN(raw, ",", 2)
		field := strings.TrimSpace(parts[0])
		if _, ok := allowed[field]; !ok {
			return nil, fmt.Errorf("unsupported sort field %q", field)
		}
		dir := Asc
		if len(parts) == 2 {
			switch Direction(strings.ToLower(strings.TrimSpace(parts[1]))) {
			case Asc:
			case Desc:
				dir = Desc
			default:
				return nil, fmt.Errorf("unsupported sort direction %q", parts[1])
			}
		}
		out = append(out, Order{Field: field, Direction: dir})
	}
	return out, nil
}
