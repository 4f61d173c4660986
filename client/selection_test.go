package client_test

import (
	"testing"

	"github.com/mhmd-ipx/Lead-sub001/client"
)

func TestSelectionState(t *testing.T) {
	visible := []int{1, 2, 3}
	s := client.NewSelection()

	if got := s.State(visible); got != client.SelectAllNone {
		t.Fatalf("empty selection state = %v, want unchecked", got)
	}

	s.Toggle(1)
	if got := s.State(visible); got != client.SelectAllSome {
		t.Fatalf("partial selection state = %v, want indeterminate", got)
	}

	s.Toggle(2)
	s.Toggle(3)
	if got := s.State(visible); got != client.SelectAllChecked {
		t.Fatalf("full selection state = %v, want checked", got)
	}

	s.Toggle(2)
	if got := s.State(visible); got != client.SelectAllSome {
		t.Fatalf("after deselect state = %v, want indeterminate", got)
	}
}

func TestSelectionState_EmptyListIsUnchecked(t *testing.T) {
	s := client.NewSelection()
	s.Toggle(99)
	if got := s.State(nil); got != client.SelectAllNone {
		t.Fatalf("empty list state = %v, want unchecked", got)
	}
}

func TestSelectionSetAll(t *testing.T) {
	visible := []int{1, 2, 3}
	s := client.NewSelection()

	s.SetAll(visible, true)
	if got := s.State(visible); got != client.SelectAllChecked {
		t.Fatalf("select all state = %v, want checked", got)
	}

	s.SetAll(visible, false)
	if got := s.State(visible); got != client.SelectAllNone {
		t.Fatalf("clear all state = %v, want unchecked", got)
	}
}

func TestSelectionSetAll_KeepsOffscreenRows(t *testing.T) {
	s := client.NewSelection()
	s.Toggle(99)

	s.SetAll([]int{1, 2}, false)
	if !s.IsSelected(99) {
		t.Fatalf("clearing visible rows must not touch offscreen rows")
	}
}

func TestSelectionIds_DropsVanishedRows(t *testing.T) {
	s := client.NewSelection()
	s.Toggle(1)
	s.Toggle(2)
	s.Toggle(5)

	// row 5 disappeared from the list between render and submit
	ids := s.Ids([]int{1, 2, 3})
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("ids = %v, want [1 2]", ids)
	}
}

func TestSelectionToggleTwiceClears(t *testing.T) {
	s := client.NewSelection()
	s.Toggle(7)
	s.Toggle(7)
	if s.IsSelected(7) || s.Count() != 0 {
		t.Fatalf("double toggle should clear the row")
	}
}
