package pagination

import "testing"

func TestNewPage_TotalPages(t *testing.T) {
	tests := []struct {
		name  string
		size  int
		total int
		want  int
	}{
		{name: "empty", size: 20, total: 0, want: 0},
		{name: "exact", size: 10, total: 30, want: 3},
		{name: "remainder", size: 10, total: 31, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPage([]int{}, Request{Size: tt.size}, tt.total)
			if got.TotalPages != tt.want {
				t.Fatalf("total pages: got=%d want=%d", got.TotalPages, tt.want)
			}
		})
	}
}

func TestRequest_WithDefaultsAndKey(t *testing.T) {
	req := Request{Page: 2}.WithDefaults(Order{Field: "startDate", Direction: Desc})
	if req.Size != DefaultSize {
		t.Fatalf("expected default size, got %d", req.Size)
	}
	if got := req.Offset(); got != 2*DefaultSize {
		t.Fatalf("unexpected offset %d", got)
	}
	if got, want := req.Key(), "2:20:startDate,desc"; got != want {
		t.Fatalf("unexpected key: got=%q want=%q", got, want)
	}
}

func TestParseSort(t *testing.T) {
	allowed := map[string]struct{}{"startDate": {}, "type": {}}

	orders, err := ParseSort([]string{"startDate,DESC", "type"}, allowed)
	if err != nil {
		t.Fatalf("parse sort: %v", err)
	}
	if len(orders) != 2 || orders[0].Direction != Desc || orders[1].Direction != Asc {
		t.Fatalf("unexpected orders: %+v", orders)
	}

	if _, err := ParseSort([]string{"winnerId"}, allowed); err == nil {
		t.Fatalf("expected unknown field to be rejected")
	}
	if _, err := ParseSort([]string{"type,sideways"}, allowed); err == nil {
		t.Fatalf("expected unknown direction to be rejected")
	}
}

func TestMapKeepsBounds(t *testing.T) {
	in := NewPage([]int{1, 2}, Request{Page: 1, Size: 2}, 4)
	out := Map(in, func(v int) string { return string(rune('a' + v)) })
	if out.TotalItems != 4 || out.Page != 1 || len(out.Items) != 2 || out.Items[0] != "b" {
		t.Fatalf("unexpected mapped page: %+v", out)
	}
}
