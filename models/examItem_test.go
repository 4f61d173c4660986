package models_test

import (
	"testing"

	"github.com/mhmd-ipx/Lead-sub001/models"
)

func makeItems(titles ...string) []*models.ExamItem {
	items := make([]*models.ExamItem, 0, len(titles))
	for i, title := range titles {
		items = append(items, &models.ExamItem{ID: i + 1, Title: title, Priority: i + 1})
	}
	return items
}

func titlesOf(items []*models.ExamItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Title)
	}
	return out
}

func assertOrder(t *testing.T, got []*models.ExamItem, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Title != want[i] {
			t.Fatalf("order = %v, want %v", titlesOf(got), want)
		}
	}
}

func TestReorderByPriority_MoveDown(t *testing.T) {
	items := makeItems("a", "b", "c", "d")
	got := models.ReorderByPriority(items, 0, 2)
	assertOrder(t, got, "b", "c", "a", "d")
}

func TestReorderByPriority_MoveUp(t *testing.T) {
	items := makeItems("a", "b", "c", "d")
	got := models.ReorderByPriority(items, 3, 0)
	assertOrder(t, got, "d", "a", "b", "c")
}

func TestReorderByPriority_RenumbersOneToN(t *testing.T) {
	items := makeItems("a", "b", "c", "d", "e")
	// priorities may have gaps before a reorder (e.g. after a delete)
	items[2].Priority = 9
	items[4].Priority = 30

	got := models.ReorderByPriority(items, 1, 3)
	for i, item := range got {
		if item.Priority != i+1 {
			t.Fatalf("priority at index %d = %d, want %d", i, item.Priority, i+1)
		}
	}
}

func TestReorderByPriority_InputStaysUntouched(t *testing.T) {
	items := makeItems("a", "b", "c", "d")
	models.ReorderByPriority(items, 0, 2)

	assertOrder(t, items, "a", "b", "c", "d")
	for i, item := range items {
		if item.Priority != i+1 {
			t.Fatalf("input priority mutated at %d: %d", i, item.Priority)
		}
	}
}

func TestReorderByPriority_CancelledDragIsNoop(t *testing.T) {
	items := makeItems("a", "b", "c")
	got := models.ReorderByPriority(items, 1, -1)
	assertOrder(t, got, "a", "b", "c")
	// priorities stay untouched on a cancelled drag
	for i, item := range got {
		if item.Priority != i+1 {
			t.Fatalf("priority changed on cancelled drag: %d", item.Priority)
		}
	}
}

func TestReorderByPriority_SameSlotIsNoop(t *testing.T) {
	items := makeItems("a", "b", "c")
	got := models.ReorderByPriority(items, 2, 2)
	assertOrder(t, got, "a", "b", "c")
}

func TestReorderByPriority_OutOfRangeIsNoop(t *testing.T) {
	items := makeItems("a", "b", "c")

	for _, tc := range []struct{ src, dest int }{
		{-1, 1},
		{3, 1},
		{0, 3},
	} {
		got := models.ReorderByPriority(items, tc.src, tc.dest)
		assertOrder(t, got, "a", "b", "c")
	}
}

func TestReorderByPriority_PreservesMembership(t *testing.T) {
	items := makeItems("a", "b", "c", "d", "e", "f")

	for src := 0; src < len(items); src++ {
		for dest := 0; dest < len(items); dest++ {
			got := models.ReorderByPriority(makeItems("a", "b", "c", "d", "e", "f"), src, dest)
			if len(got) != len(items) {
				t.Fatalf("src=%d dest=%d: length %d, want %d", src, dest, len(got), len(items))
			}
			seen := map[string]bool{}
			for _, item := range got {
				if seen[item.Title] {
					t.Fatalf("src=%d dest=%d: duplicate %q", src, dest, item.Title)
				}
				seen[item.Title] = true
			}
			if got[dest].Title != items[src].Title && src != dest {
				t.Fatalf("src=%d dest=%d: moved item not at destination, got %v", src, dest, titlesOf(got))
			}
		}
	}
}
