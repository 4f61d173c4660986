package client_test

import (
	"encoding/json"
	"testing"

	"github.com/mhmd-ipx/Lead-sub001/client"
)

func TestBillUnmarshal_FlatDocuments(t *testing.T) {
	payload := []byte(`{
		"id": 1,
		"bill_number": "BILL-1",
		"total_amount": "300",
		"financial_documents": [
			{"id": 10, "amount": "100", "status": "pending"},
			{"id": 11, "amount": "200", "status": "pending"}
		]
	}`)

	var bill client.Bill
	if err := json.Unmarshal(payload, &bill); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(bill.Documents) != 2 || bill.Documents[0].ID != 10 || bill.Documents[1].ID != 11 {
		t.Fatalf("documents = %+v", bill.Documents)
	}
}

func TestBillUnmarshal_WrappedItems(t *testing.T) {
	payload := []byte(`{
		"id": 2,
		"bill_number": "BILL-2",
		"items": [
			{"financial_document": {"id": 20, "amount": "50", "status": "pending"}},
			{"financial_document": null},
			{"financial_document": {"id": 21, "amount": "70", "status": "pending"}}
		]
	}`)

	var bill client.Bill
	if err := json.Unmarshal(payload, &bill); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(bill.Documents) != 2 || bill.Documents[0].ID != 20 || bill.Documents[1].ID != 21 {
		t.Fatalf("documents = %+v", bill.Documents)
	}
}

func TestBillUnmarshal_FlatShapeWins(t *testing.T) {
	// When both shapes are present the flat list is authoritative.
	payload := []byte(`{
		"id": 3,
		"financial_documents": [{"id": 30, "amount": "10", "status": "pending"}],
		"items": [{"financial_document": {"id": 99, "amount": "1", "status": "pending"}}]
	}`)

	var bill client.Bill
	if err := json.Unmarshal(payload, &bill); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(bill.Documents) != 1 || bill.Documents[0].ID != 30 {
		t.Fatalf("documents = %+v", bill.Documents)
	}
}

func TestBillUnmarshal_NoDocuments(t *testing.T) {
	var bill client.Bill
	if err := json.Unmarshal([]byte(`{"id": 4, "bill_number": "BILL-4"}`), &bill); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(bill.Documents) != 0 {
		t.Fatalf("documents = %+v, want empty", bill.Documents)
	}
}
