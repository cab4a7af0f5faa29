package recall

import "testing"

func TestSource_IsValid(t *testing.T) {
	for _, s := range []Source{Keyword, Vector, Hot, Fusion, RRF, Rerank} {
		if !s.IsValid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if Source("geo").IsValid() {
		t.Error("expected geo to be invalid")
	}
}

func TestResult_SameCandidate(t *testing.T) {
	a := New("d1", 0.5, Keyword)
	b := New("d1", 0.9, Hot)
	c := New("d2", 0.5, Keyword)
	if !a.SameCandidate(b) {
		t.Error("same id with different score/source must be the same candidate")
	}
	if a.SameCandidate(c) {
		t.Error("different ids must differ")
	}
}

func TestResult_Rescored(t *testing.T) {
	r := New("d1", 0.5, Keyword)
	got := r.Rescored(2, Rerank)
	if got.ID() != "d1" || got.Score() != 2 || got.Source() != Rerank {
		t.Errorf("unexpected rescored result: %+v", got)
	}
	if r.Score() != 0.5 || r.Source() != Keyword {
		t.Error("original result must not change")
	}
}

func TestGroupBySource(t *testing.T) {
	in := []Result{
		New("k1", 3, Keyword),
		New("k2", 1, Keyword),
		New("h1", 1, Hot),
		New("f1", 1, Fusion),
	}
	groups := GroupBySource(in, Paths)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if len(groups[0]) != 2 || groups[0][0].ID() != "k1" || groups[0][1].ID() != "k2" {
		t.Errorf("unexpected keyword group: %v", IDs(groups[0]))
	}
	if len(groups[1]) != 0 {
		t.Errorf("expected empty vector group, got %v", IDs(groups[1]))
	}
	if len(groups[2]) != 1 || groups[2][0].ID() != "h1" {
		t.Errorf("unexpected hot group: %v", IDs(groups[2]))
	}
}
