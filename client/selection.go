package client

// SelectAllState is the header checkbox of a selectable list.
type SelectAllState int

const (
	SelectAllNone SelectAllState = iota
	SelectAllSome
	SelectAllChecked
)

func (s SelectAllState) String() string {
	switch s {
	case SelectAllChecked:
		return "checked"
	case SelectAllSome:
		return "indeterminate"
	default:
		return "unchecked"
	}
}

// Selection tracks which rows of a list are picked.
type Selection struct {
	picked map[int]bool
}

func NewSelection() *Selection {
	return &Selection{picked: map[int]bool{}}
}

func (s *Selection) Toggle(id int) {
	if s.picked[id] {
		delete(s.picked, id)
		return
	}
	s.picked[id] = true
}

func (s *Selection) IsSelected(id int) bool { return s.picked[id] }

func (s *Selection) Count() int { return len(s.picked) }

// Ids returns the selection restricted to ids still present in the
// list; rows that disappeared between render and submit are dropped.
func (s *Selection) Ids(visible []int) []int {
	ids := make([]int, 0, len(s.picked))
	for _, id := range visible {
		if s.picked[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *Selection) Clear() { s.picked = map[int]bool{} }

// SetAll selects or clears every visible row.
func (s *Selection) SetAll(visible []int, selected bool) {
	if !selected {
		for _, id := range visible {
			delete(s.picked, id)
		}
		return
	}
	for _, id := range visible {
		s.picked[id] = true
	}
}

// State derives the tri-state header value from the visible rows.
// An empty list is unchecked.
func (s *Selection) State(visible []int) SelectAllState {
	if len(visible) == 0 {
		return SelectAllNone
	}
	selected := 0
	for _, id := range visible {
		if s.picked[id] {
			selected++
		}
	}
	switch {
	case selected == 0:
		return SelectAllNone
	case selected == len(visible):
		return SelectAllChecked
	default:
		return SelectAllSome
	}
}
