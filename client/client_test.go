package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mhmd-ipx/Lead-sub001/client"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*client.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := client.New(srv.URL, "test-token")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, srv
}

func TestClient_EnvelopeSuccess(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("token"); got != "test-token" {
			t.Errorf("token header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"id":7,"bill_number":"BILL-7"},"message":""}`))
	})

	bill, err := c.GetBill(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetBill: %v", err)
	}
	if bill.ID != 7 || bill.BillNumber != "BILL-7" {
		t.Fatalf("bill = %+v", bill)
	}
}

func TestClient_NotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"data":null,"message":"record not found"}`))
	})

	_, err := c.GetBill(context.Background(), 404)
	if !errors.Is(err, client.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestClient_ValidationError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"success":false,"data":null,"message":"document 3 is not pending"}`))
	})

	_, err := c.AttachDocuments(context.Background(), 1, []int{3})
	var ve *client.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if ve.Message != "document 3 is not pending" {
		t.Fatalf("message = %q", ve.Message)
	}
	if client.IsRetriable(err) {
		t.Fatalf("validation errors must not be retriable")
	}
}

func TestClient_ServerError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"data":null,"message":"boom"}`))
	})

	_, err := c.GetBill(context.Background(), 1)
	if !client.IsRetriable(err) {
		t.Fatalf("5xx must map to NetworkOrServerError, got %v", err)
	}
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c, err := client.New(srv.URL, "tok")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	srv.Close()

	_, err = c.GetBill(context.Background(), 1)
	if !client.IsRetriable(err) {
		t.Fatalf("connection refused must map to NetworkOrServerError, got %v", err)
	}
}

func TestClient_NonEnvelopeBodyIsServerFault(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>502 Bad Gateway</html>`))
	})

	_, err := c.GetBill(context.Background(), 1)
	if !client.IsRetriable(err) {
		t.Fatalf("proxy error page must map to NetworkOrServerError, got %v", err)
	}
}

func TestClient_SuccessFalseIsValidationError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"data":null,"message":"rejected"}`))
	})

	_, err := c.GetBill(context.Background(), 1)
	var ve *client.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("success=false must map to ValidationError, got %v", err)
	}
}
