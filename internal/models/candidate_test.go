package models

import "testing"

// The stored pair has no explicit denied flag: denial is not-approved
// with a motif, pending is not-approved without one.
func TestStatusFromColumns(t *testing.T) {
	if s := StatusFromColumns(false, ""); s.State != Pending || s.Note != "" {
		t.Fatalf("unexpected pending status: %+v", s)
	}
	if s := StatusFromColumns(true, "great composition"); s.State != Approved || s.Note != "great composition" {
		t.Fatalf("unexpected approved status: %+v", s)
	}
	if s := StatusFromColumns(false, "too blurry"); s.State != Denied || s.Note != "too blurry" {
		t.Fatalf("unexpected denied status: %+v", s)
	}
}

func TestStatusColumns(t *testing.T) {
	approved, motif := Status{State: Denied, Note: "too blurry"}.Columns()
	if approved || motif != "too blurry" {
		t.Fatalf("unexpected columns: %v %q", approved, motif)
	}
	approved, motif = Status{State: Approved, Note: "nice"}.Columns()
	if !approved || motif != "nice" {
		t.Fatalf("unexpected columns: %v %q", approved, motif)
	}
}
