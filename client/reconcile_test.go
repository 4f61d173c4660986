package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/mhmd-ipx/Lead-sub001/client"
	"github.com/shopspring/decimal"
)

func TestDashboard_AttachTakesServerTotal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/bills/1/documents", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			DocumentIds []int `json:"document_ids"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if len(body.DocumentIds) != 2 {
			t.Errorf("document_ids = %v", body.DocumentIds)
		}
		// server-side recompute yields a total the client could not
		// have derived from its stale view
		w.Write([]byte(`{"success":true,"data":{
			"id":1,"total_amount":"350.50",
			"financial_documents":[
				{"id":10,"amount":"150.50","status":"pending","bills_exists":true},
				{"id":11,"amount":"200","status":"pending","bills_exists":true}
			]
		},"message":""}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL, "tok")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d := client.NewDashboard(c)

	bill, err := d.AttachDocuments(context.Background(), 1, []int{10, 11})
	if err != nil {
		t.Fatalf("AttachDocuments: %v", err)
	}
	if !bill.TotalAmount.Equal(decimal.RequireFromString("350.50")) {
		t.Fatalf("total = %s, want 350.50", bill.TotalAmount)
	}
	if len(bill.Documents) != 2 {
		t.Fatalf("documents = %+v", bill.Documents)
	}
}

func TestDashboard_DetachReturnsRecomputedBill(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/bills/1/documents/10", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{
			"id":1,"total_amount":"200",
			"financial_documents":[{"id":11,"amount":"200","status":"pending","bills_exists":true}]
		},"message":""}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL, "tok")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	bill, err := client.NewDashboard(c).DetachDocument(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("DetachDocument: %v", err)
	}
	if !bill.TotalAmount.Equal(decimal.NewFromInt(200)) || len(bill.Documents) != 1 {
		t.Fatalf("bill = %+v", bill)
	}
}

func TestDashboard_CreateBillRequiresSelection(t *testing.T) {
	c, err := client.New("http://127.0.0.1:1", "tok")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.NewDashboard(c).CreateBillFromSelection(context.Background(), client.NewBillInput{
		BillDate: "2026-08-01T00:00:00",
	})
	var ve *client.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("empty selection must fail client-side, got %v", err)
	}
}

func TestDashboard_CrossCompanySelectionFailsWholeBatch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/bills", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"success":false,"data":null,"message":"cannot attach a document owned by another company"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL, "tok")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.NewDashboard(c).CreateBillFromSelection(context.Background(), client.NewBillInput{
		BillDate:    "2026-08-01T00:00:00",
		DocumentIds: []int{1, 2, 3},
	})
	var ve *client.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestDashboard_EligibleDocumentsCachedAndExcluded(t *testing.T) {
	var fetches int64
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/financial-documents/eligible", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&fetches, 1)
		w.Write([]byte(`{"success":true,"data":[
			{"id":1,"amount":"10","status":"pending"},
			{"id":2,"amount":"20","status":"pending"},
			{"id":3,"amount":"30","status":"pending"}
		],"message":""}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL, "tok")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d := client.NewDashboard(c)

	docs, _, err := d.EligibleDocuments(context.Background(), nil)
	if err != nil {
		t.Fatalf("EligibleDocuments: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("docs = %d, want 3", len(docs))
	}

	// second read excludes a locally-picked row and must hit the cache
	docs, result, err := d.EligibleDocuments(context.Background(), []int{2})
	if err != nil {
		t.Fatalf("EligibleDocuments: %v", err)
	}
	if !result.FromCache {
		t.Fatalf("second read should come from the cache")
	}
	if len(docs) != 2 || docs[0].ID != 1 || docs[1].ID != 3 {
		t.Fatalf("excluded row leaked: %+v", docs)
	}
	if atomic.LoadInt64(&fetches) != 1 {
		t.Fatalf("fetches = %d, want 1", fetches)
	}
}

func TestDashboard_MutationInvalidatesEligibleCache(t *testing.T) {
	var fetches int64
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/financial-documents/eligible", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&fetches, 1)
		w.Write([]byte(`{"success":true,"data":[{"id":1,"amount":"10","status":"pending"}],"message":""}`))
	})
	mux.HandleFunc("POST /api/bills", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true,"data":{"id":9,"total_amount":"10"},"message":""}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL, "tok")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d := client.NewDashboard(c)

	if _, _, err := d.EligibleDocuments(context.Background(), nil); err != nil {
		t.Fatalf("seed read: %v", err)
	}
	if _, err := d.CreateBillFromSelection(context.Background(), client.NewBillInput{
		BillDate:    "2026-08-01T00:00:00",
		DocumentIds: []int{1},
	}); err != nil {
		t.Fatalf("CreateBillFromSelection: %v", err)
	}
	if _, _, err := d.EligibleDocuments(context.Background(), nil); err != nil {
		t.Fatalf("read after create: %v", err)
	}
	if atomic.LoadInt64(&fetches) != 2 {
		t.Fatalf("fetches = %d, want 2 (cache invalidated by create)", fetches)
	}
}

func TestDashboard_StaleEligibleListOnOutage(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/financial-documents/eligible", func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"success":false,"data":null,"message":"unavailable"}`))
			return
		}
		w.Write([]byte(`{"success":true,"data":[{"id":1,"amount":"10","status":"pending"}],"message":""}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL, "tok")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d := client.NewDashboard(c)
	// force every read through the fetch path
	d.Lists.TTL = 1

	if _, _, err := d.EligibleDocuments(context.Background(), nil); err != nil {
		t.Fatalf("seed read: %v", err)
	}

	healthy.Store(false)
	docs, result, err := d.EligibleDocuments(context.Background(), nil)
	if err != nil {
		t.Fatalf("outage read should serve stale data: %v", err)
	}
	if !result.Stale {
		t.Fatalf("expected stale result, got %+v", result)
	}
	if len(docs) != 1 || docs[0].ID != 1 {
		t.Fatalf("stale docs = %+v", docs)
	}
}
