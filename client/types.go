package client

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type FinancialDocument struct {
	ID             int             `json:"id"`
	CompanyId      string          `json:"company_id"`
	DocumentNumber string          `json:"document_number"`
	Amount         decimal.Decimal `json:"amount"`
	Status         string          `json:"status"`
	BillsExists    bool            `json:"bills_exists"`
	BillId         *int            `json:"bill_id"`
	IssuedDate     string          `json:"issued_date"`
	Description    string          `json:"description"`
}

type Bill struct {
	ID          int             `json:"id"`
	CompanyId   string          `json:"company_id"`
	BillNumber  string          `json:"bill_number"`
	BillDate    string          `json:"bill_date"`
	Subject     string          `json:"subject"`
	Notes       string          `json:"notes"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`

	OfficialInvoiceRequested bool `json:"official_invoice_requested"`

	Documents []*FinancialDocument `json:"-"`
}

// Older deployments return attached documents wrapped one level deeper
// (items[].financial_document); current ones return financial_documents
// directly. UnmarshalJSON accepts both and always fills Documents.
func (b *Bill) UnmarshalJSON(data []byte) error {
	type billAlias Bill
	aux := struct {
		*billAlias
		FinancialDocuments []*FinancialDocument `json:"financial_documents"`
		Items              []struct {
			FinancialDocument *FinancialDocument `json:"financial_document"`
		} `json:"items"`
	}{billAlias: (*billAlias)(b)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if len(aux.FinancialDocuments) > 0 {
		b.Documents = aux.FinancialDocuments
		return nil
	}
	for _, item := range aux.Items {
		if item.FinancialDocument != nil {
			b.Documents = append(b.Documents, item.FinancialDocument)
		}
	}
	return nil
}

type ExamItem struct {
	ID            int    `json:"id"`
	CompanyId     string `json:"company_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	QuestionCount int    `json:"question_count"`
	Duration      int    `json:"duration"`
	Priority      int    `json:"priority"`
	IsActive      *bool  `json:"is_active"`
}

type Ticket struct {
	ID      int    `json:"id"`
	Subject string `json:"subject"`
	Status  string `json:"status"`
}
