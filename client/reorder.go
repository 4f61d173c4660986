package client

import (
	"context"
	"encoding/json"
	"fmt"
)

type reorderInput struct {
	SourceIndex      int `json:"source_index"`
	DestinationIndex int `json:"destination_index"`
}

func (c *Client) ReorderExamItems(ctx context.Context, sourceIndex, destinationIndex int) ([]*ExamItem, error) {
	return putJSON[[]*ExamItem](ctx, c, "/api/exam-items/reorder", reorderInput{
		SourceIndex:      sourceIndex,
		DestinationIndex: destinationIndex,
	})
}

func (c *Client) ListExamItems(ctx context.Context) ([]*ExamItem, error) {
	return getJSON[[]*ExamItem](ctx, c, "/api/exam-items", nil)
}

// ReorderLocal applies one drag to an ordered slice: remove at
// sourceIndex, reinsert at destinationIndex, renumber 1..N. A cancelled
// drag (negative destination) or a drop on the source index returns the
// input unchanged.
func ReorderLocal(items []*ExamItem, sourceIndex, destinationIndex int) []*ExamItem {
	if destinationIndex < 0 || sourceIndex == destinationIndex {
		return items
	}
	if sourceIndex < 0 || sourceIndex >= len(items) || destinationIndex >= len(items) {
		return items
	}

	reordered := make([]*ExamItem, len(items))
	copy(reordered, items)
	moved := reordered[sourceIndex]
	reordered = append(reordered[:sourceIndex], reordered[sourceIndex+1:]...)
	reordered = append(reordered[:destinationIndex], append([]*ExamItem{moved}, reordered[destinationIndex:]...)...)

	// clone before renumbering, the caller's items must stay untouched
	// so a failed persist can roll back to them
	for i := range reordered {
		item := *reordered[i]
		item.Priority = i + 1
		reordered[i] = &item
	}
	return reordered
}

// ExamItemList keeps the ordered list, applies drags optimistically and
// rolls back to the server order when the persist call fails.
type ExamItemList struct {
	dashboard *Dashboard
	items     []*ExamItem
}

func NewExamItemList(d *Dashboard) *ExamItemList {
	return &ExamItemList{dashboard: d}
}

func (l *ExamItemList) Items() []*ExamItem { return l.items }

// Refresh loads the list through the cache.
func (l *ExamItemList) Refresh(ctx context.Context) (ListResult, error) {
	result, err := l.dashboard.Lists.Load(ctx, cacheKeyExamItems, func(ctx context.Context) ([]byte, error) {
		items, err := l.dashboard.Client.ListExamItems(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(items)
	})
	if err != nil {
		return ListResult{}, err
	}
	var items []*ExamItem
	if err := json.Unmarshal(result.Data, &items); err != nil {
		return ListResult{}, &NetworkOrServerError{Err: err}
	}
	l.items = items
	return result, nil
}

// Drag applies the move locally first so the UI updates immediately,
// then persists it. On failure the previous order is restored and the
// error surfaces.
func (l *ExamItemList) Drag(ctx context.Context, sourceIndex, destinationIndex int) error {
	if destinationIndex < 0 || sourceIndex == destinationIndex {
		return nil
	}
	if sourceIndex < 0 || sourceIndex >= len(l.items) || destinationIndex >= len(l.items) {
		return &ValidationError{Message: fmt.Sprintf("index out of range: %d -> %d", sourceIndex, destinationIndex)}
	}

	previous := l.items
	l.items = ReorderLocal(l.items, sourceIndex, destinationIndex)

	persisted, err := l.dashboard.Client.ReorderExamItems(ctx, sourceIndex, destinationIndex)
	if err != nil {
		l.items = previous
		return err
	}

	// The server order wins over the optimistic one.
	if len(persisted) > 0 {
		l.items = persisted
	}
	l.dashboard.Lists.Invalidate(ctx, cacheKeyExamItems)
	return nil
}
