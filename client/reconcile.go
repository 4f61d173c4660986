package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

type NewBillInput struct {
	BillDate                 string `json:"bill_date"`
	Subject                  string `json:"subject"`
	Notes                    string `json:"notes"`
	OfficialInvoiceRequested bool   `json:"official_invoice_requested"`
	DocumentIds              []int  `json:"document_ids"`
}

// UpdateBillInput is a partial update, nil fields are left unchanged.
type UpdateBillInput struct {
	Subject                  *string `json:"subject,omitempty"`
	Notes                    *string `json:"notes,omitempty"`
	BillDate                 *string `json:"bill_date,omitempty"`
	OfficialInvoiceRequested *bool   `json:"official_invoice_requested,omitempty"`
}

type attachInput struct {
	DocumentIds []int `json:"document_ids"`
}

func (c *Client) GetBill(ctx context.Context, id int) (*Bill, error) {
	return getJSON[*Bill](ctx, c, "/api/bills/"+strconv.Itoa(id), nil)
}

// ListEligibleDocuments returns documents that can be attached to a
// bill: pending, unbilled, same company. excludeIds drops documents the
// caller has already picked locally so the list stays consistent while
// a selection is in flight.
func (c *Client) ListEligibleDocuments(ctx context.Context, excludeIds []int) ([]*FinancialDocument, error) {
	params := url.Values{}
	if len(excludeIds) > 0 {
		ids := make([]string, 0, len(excludeIds))
		for _, id := range excludeIds {
			ids = append(ids, strconv.Itoa(id))
		}
		params.Set("exclude_ids", strings.Join(ids, ","))
	}
	return getJSON[[]*FinancialDocument](ctx, c, "/api/financial-documents/eligible", params)
}

// CreateBillFromSelection creates a bill and attaches every selected
// document in one request. The server validates the whole selection
// before writing anything, so a bad id fails the call without partial
// attachment.
func (c *Client) CreateBillFromSelection(ctx context.Context, input NewBillInput) (*Bill, error) {
	if len(input.DocumentIds) == 0 {
		return nil, &ValidationError{Message: "at least one document is required"}
	}
	return postJSON[*Bill](ctx, c, "/api/bills", input)
}

// AttachDocuments attaches documents to an existing bill. The response
// carries the recomputed total; callers must take it over any locally
// derived sum.
func (c *Client) AttachDocuments(ctx context.Context, billId int, documentIds []int) (*Bill, error) {
	if len(documentIds) == 0 {
		return nil, &ValidationError{Message: "at least one document is required"}
	}
	path := fmt.Sprintf("/api/bills/%d/documents", billId)
	return postJSON[*Bill](ctx, c, path, attachInput{DocumentIds: documentIds})
}

func (c *Client) DetachDocument(ctx context.Context, billId int, documentId int) (*Bill, error) {
	path := fmt.Sprintf("/api/bills/%d/documents/%d", billId, documentId)
	return deleteJSON[*Bill](ctx, c, path)
}

// UpdateBill edits bill fields such as official_invoice_requested.
func (c *Client) UpdateBill(ctx context.Context, billId int, input UpdateBillInput) (*Bill, error) {
	return putJSON[*Bill](ctx, c, "/api/bills/"+strconv.Itoa(billId), input)
}

type payInput struct {
	Amount string `json:"amount"`
}

func (c *Client) PayBill(ctx context.Context, billId int, amount string) (*Bill, error) {
	path := fmt.Sprintf("/api/bills/%d/pay", billId)
	return postJSON[*Bill](ctx, c, path, payInput{Amount: amount})
}

// Dashboard bundles the transport with the list cache. List reads go
// through the cache; every successful mutation invalidates the lists it
// could have changed.
type Dashboard struct {
	Client *Client
	Lists  *CachedLister
}

func NewDashboard(c *Client) *Dashboard {
	return &Dashboard{
		Client: c,
		Lists:  NewCachedLister(NewMemoryCache()),
	}
}

const (
	cacheKeyEligibleDocuments = "financial-documents:eligible"
	cacheKeyExamItems         = "exam-items"
	cacheKeyBills             = "bills"
)

// EligibleDocuments is the cached read path for the attach picker.
// Stale data may come back after a network failure; Stale on the result
// tells the caller to surface that.
func (d *Dashboard) EligibleDocuments(ctx context.Context, excludeIds []int) ([]*FinancialDocument, ListResult, error) {
	key := cacheKeyEligibleDocuments
	result, err := d.Lists.Load(ctx, key, func(ctx context.Context) ([]byte, error) {
		docs, err := d.Client.ListEligibleDocuments(ctx, nil)
		if err != nil {
			return nil, err
		}
		return json.Marshal(docs)
	})
	if err != nil {
		return nil, ListResult{}, err
	}

	var docs []*FinancialDocument
	if err := json.Unmarshal(result.Data, &docs); err != nil {
		return nil, ListResult{}, &NetworkOrServerError{Err: err}
	}

	// Exclusion is applied after the cache so one cached copy serves
	// every in-flight selection.
	if len(excludeIds) > 0 {
		excluded := make(map[int]bool, len(excludeIds))
		for _, id := range excludeIds {
			excluded[id] = true
		}
		filtered := docs[:0]
		for _, doc := range docs {
			if !excluded[doc.ID] {
				filtered = append(filtered, doc)
			}
		}
		docs = filtered
	}
	return docs, result, nil
}

func (d *Dashboard) CreateBillFromSelection(ctx context.Context, input NewBillInput) (*Bill, error) {
	bill, err := d.Client.CreateBillFromSelection(ctx, input)
	if err != nil {
		return nil, err
	}
	d.invalidateBillLists(ctx)
	return bill, nil
}

func (d *Dashboard) AttachDocuments(ctx context.Context, billId int, documentIds []int) (*Bill, error) {
	bill, err := d.Client.AttachDocuments(ctx, billId, documentIds)
	if err != nil {
		return nil, err
	}
	d.invalidateBillLists(ctx)
	return bill, nil
}

func (d *Dashboard) DetachDocument(ctx context.Context, billId int, documentId int) (*Bill, error) {
	bill, err := d.Client.DetachDocument(ctx, billId, documentId)
	if err != nil {
		return nil, err
	}
	d.invalidateBillLists(ctx)
	return bill, nil
}

func (d *Dashboard) UpdateBill(ctx context.Context, billId int, input UpdateBillInput) (*Bill, error) {
	bill, err := d.Client.UpdateBill(ctx, billId, input)
	if err != nil {
		return nil, err
	}
	d.invalidateBillLists(ctx)
	return bill, nil
}

func (d *Dashboard) invalidateBillLists(ctx context.Context) {
	d.Lists.Invalidate(ctx, cacheKeyBills)
	d.Lists.Invalidate(ctx, cacheKeyEligibleDocuments)
}
