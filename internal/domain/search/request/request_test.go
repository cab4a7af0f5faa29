package request

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/searchd/internal/domain"
	"github.com/kailas-cloud/searchd/internal/domain/search/filter"
)

func categoryFilter(t *testing.T) filter.Expression {
	t.Helper()
	e, err := filter.FromMap(map[string]any{"category": "shoes"})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	return e
}

func TestNew_Defaults(t *testing.T) {
	r, err := New(Params{Query: "hello", AppKey: "shop"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Query() != "hello" || r.AppKey() != "shop" {
		t.Errorf("unexpected query/appKey: %q %q", r.Query(), r.AppKey())
	}
	if r.Fusion() != Weighted {
		t.Errorf("Fusion() = %q, want weighted", r.Fusion())
	}
	s := r.Strategy()
	if !s.Keyword || !s.Hot || s.VectorEnabled() {
		t.Errorf("unexpected default strategy: %+v", s)
	}
	if r.Page() != 1 || r.PageSize() != DefaultPageSize {
		t.Errorf("page=%d pageSize=%d", r.Page(), r.PageSize())
	}
	if r.Sort() != nil {
		t.Error("expected nil sort")
	}
}

func TestNew_FiltersOnly(t *testing.T) {
	r, err := New(Params{Filters: categoryFilter(t)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.HasQuery() {
		t.Error("expected no query")
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		p    Params
	}{
		{"neither query nor filters", Params{}},
		{"query too long", Params{Query: strings.Repeat("x", MaxQueryLength+1)}},
		{"bad fusion", Params{Query: "q", Fusion: "borda"}},
		{"bad direction", Params{Query: "q", Sort: &Sort{Field: "price", Direction: "up"}}},
		{"negative vector weight", Params{Query: "q", Strategy: &Strategy{Vector: &VectorConfig{Enabled: true, Weight: ptr(-1)}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.p)
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestNew_VectorDefaults(t *testing.T) {
	r, err := New(Params{Query: "q", Strategy: &Strategy{Keyword: true, Vector: &VectorConfig{Enabled: true}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := r.Strategy()
	if !s.VectorEnabled() {
		t.Fatal("expected vector enabled")
	}
	if s.Vector.FusionWeight() != DefaultVectorWeight || s.Vector.K != DefaultVectorK {
		t.Errorf("unexpected vector config: %+v", *s.Vector)
	}
	if s.Hot {
		t.Error("explicit strategy must not re-enable hot")
	}
}

func TestNew_ExplicitZeroVectorWeight(t *testing.T) {
	r, err := New(Params{Query: "q", Strategy: &Strategy{Vector: &VectorConfig{Enabled: true, Weight: ptr(0)}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := r.Strategy().Vector
	if !r.Strategy().VectorEnabled() {
		t.Fatal("zero weight must not disable the vector path")
	}
	if v.FusionWeight() != 0 {
		t.Errorf("weight = %v, want 0", v.FusionWeight())
	}
}

func TestNew_Pagination(t *testing.T) {
	r, err := New(Params{Query: "q", Page: -3, PageSize: 1000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Page() != 1 {
		t.Errorf("Page() = %d, want 1", r.Page())
	}
	if r.PageSize() != MaxPageSize {
		t.Errorf("PageSize() = %d, want %d", r.PageSize(), MaxPageSize)
	}
}

func TestNew_SortDefaultsDesc(t *testing.T) {
	r, err := New(Params{Query: "q", Sort: &Sort{Field: "price"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Sort() == nil || r.Sort().Direction != Desc {
		t.Errorf("unexpected sort: %+v", r.Sort())
	}
}

func TestWindow(t *testing.T) {
	r, _ := New(Params{Query: "q", Page: 2, PageSize: 10})
	start, end := r.Window(25)
	if start != 10 || end != 20 {
		t.Errorf("Window(25) = [%d,%d), want [10,20)", start, end)
	}

	r, _ = New(Params{Query: "q", Page: 3, PageSize: 10})
	start, end = r.Window(25)
	if start != 20 || end != 25 {
		t.Errorf("Window(25) = [%d,%d), want [20,25)", start, end)
	}

	r, _ = New(Params{Query: "q", Page: 9, PageSize: 10})
	start, end = r.Window(25)
	if start != 25 || end != 25 {
		t.Errorf("Window(25) past end = [%d,%d), want empty", start, end)
	}
}

func ptr(f float64) *float64 { return &f }
