package sample

import "testing"

func TestIsValid(t *testing.T) {
	for _, m := range []Mode{FullMatch, PartialMatch, FullRandom} {
		if !m.IsValid() {
			t.Errorf("%q.IsValid() = false, want true", m)
		}
	}
	for _, m := range []Mode{"", "random", "FULL_MATCH"} {
		if m.IsValid() {
			t.Errorf("%q.IsValid() = true, want false", m)
		}
	}
}

func TestNew(t *testing.T) {
	r := New(nil, PartialMatch, 4, 2)
	if r.Mode() != PartialMatch || r.Requested() != 4 || r.Matched() != 2 {
		t.Errorf("unexpected result: %+v", r)
	}
	if len(r.Books()) != 0 {
		t.Errorf("Books() = %v", r.Books())
	}
}
