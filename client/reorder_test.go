package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mhmd-ipx/Lead-sub001/client"
)

func examItems(titles ...string) []*client.ExamItem {
	items := make([]*client.ExamItem, 0, len(titles))
	for i, title := range titles {
		items = append(items, &client.ExamItem{ID: i + 1, Title: title, Priority: i + 1})
	}
	return items
}

func TestReorderLocal(t *testing.T) {
	items := examItems("a", "b", "c", "d")

	got := client.ReorderLocal(items, 0, 2)
	want := []string{"b", "c", "a", "d"}
	for i := range want {
		if got[i].Title != want[i] {
			t.Fatalf("index %d = %q, want %q", i, got[i].Title, want[i])
		}
		if got[i].Priority != i+1 {
			t.Fatalf("priority at %d = %d, want %d", i, got[i].Priority, i+1)
		}
	}

	// the input slice must stay untouched, priorities included
	for i, item := range items {
		if item.Title != string(rune('a'+i)) {
			t.Fatalf("input order mutated: %q at %d", item.Title, i)
		}
		if item.Priority != i+1 {
			t.Fatalf("input priority mutated: %d at %d", item.Priority, i)
		}
	}
}

func TestReorderLocal_CancelledDrag(t *testing.T) {
	items := examItems("a", "b", "c")
	got := client.ReorderLocal(items, 1, -1)
	if &got[0] != &items[0] && got[0].Title != "a" {
		t.Fatalf("cancelled drag must return the input unchanged")
	}
	for i, item := range got {
		if item.Title != items[i].Title {
			t.Fatalf("cancelled drag changed order at %d", i)
		}
	}
}

func TestExamItemList_DragPersistsAndTakesServerOrder(t *testing.T) {
	var gotBody string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/exam-items", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[
			{"id":1,"title":"a","question_count":20,"duration":45,"priority":1},
			{"id":2,"title":"b","priority":2},
			{"id":3,"title":"c","priority":3}
		],"message":""}`))
	})
	mux.HandleFunc("PUT /api/exam-items/reorder", func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.Write([]byte(`{"success":true,"data":[
			{"id":2,"title":"b","priority":1},
			{"id":3,"title":"c","priority":2},
			{"id":1,"title":"a","priority":3}
		],"message":""}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL, "tok")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	list := client.NewExamItemList(client.NewDashboard(c))
	if _, err := list.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got := list.Items()[0]; got.QuestionCount != 20 || got.Duration != 45 {
		t.Fatalf("exam fields dropped on decode: %+v", got)
	}

	if err := list.Drag(context.Background(), 0, 2); err != nil {
		t.Fatalf("Drag: %v", err)
	}
	if gotBody != `{"source_index":0,"destination_index":2}` {
		t.Fatalf("request body = %s", gotBody)
	}
	items := list.Items()
	if items[0].Title != "b" || items[2].Title != "a" {
		t.Fatalf("server order not applied: %+v", items)
	}
	if items[0].Priority != 1 || items[2].Priority != 3 {
		t.Fatalf("server priorities not applied: %+v", items)
	}
}

func TestExamItemList_DragRollsBackOnFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/exam-items", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[
			{"id":1,"title":"a","priority":1},
			{"id":2,"title":"b","priority":2},
			{"id":3,"title":"c","priority":3}
		],"message":""}`))
	})
	mux.HandleFunc("PUT /api/exam-items/reorder", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"data":null,"message":"boom"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL, "tok")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	list := client.NewExamItemList(client.NewDashboard(c))
	if _, err := list.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	err = list.Drag(context.Background(), 0, 2)
	if !client.IsRetriable(err) {
		t.Fatalf("expected server error, got %v", err)
	}

	items := list.Items()
	want := []string{"a", "b", "c"}
	for i := range want {
		if items[i].Title != want[i] {
			t.Fatalf("order not rolled back: %+v", items)
		}
		// the optimistic renumbering must not survive the rollback
		if items[i].Priority != i+1 {
			t.Fatalf("priority not rolled back at %d: %d", i, items[i].Priority)
		}
	}
}

func TestExamItemList_CancelledDragSkipsRequest(t *testing.T) {
	requests := 0
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/exam-items", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[{"id":1,"title":"a","priority":1}],"message":""}`))
	})
	mux.HandleFunc("PUT /api/exam-items/reorder", func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{"success":true,"data":[],"message":""}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL, "tok")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	list := client.NewExamItemList(client.NewDashboard(c))
	if _, err := list.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if err := list.Drag(context.Background(), 0, -1); err != nil {
		t.Fatalf("cancelled drag errored: %v", err)
	}
	if err := list.Drag(context.Background(), 0, 0); err != nil {
		t.Fatalf("same-slot drag errored: %v", err)
	}
	if requests != 0 {
		t.Fatalf("no request expected for a cancelled drag, got %d", requests)
	}
}
