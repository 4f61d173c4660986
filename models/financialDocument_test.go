package models_test

import (
	"testing"

	"github.com/mhmd-ipx/Lead-sub001/models"
	"github.com/shopspring/decimal"
)

func doc(id int, companyId string, status models.FinancialDocumentStatus, billed bool) *models.FinancialDocument {
	return &models.FinancialDocument{
		ID:          id,
		CompanyId:   companyId,
		Amount:      decimal.NewFromInt(int64(id * 100)),
		Status:      status,
		BillsExists: billed,
	}
}

func idsOf(docs []*models.FinancialDocument) []int {
	out := make([]int, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}

func TestFilterEligibleDocuments_PendingUnbilledOnly(t *testing.T) {
	docs := []*models.FinancialDocument{
		doc(1, "co1", models.FinancialDocumentStatusPending, false),
		doc(2, "co1", models.FinancialDocumentStatusPaid, false),
		doc(3, "co1", models.FinancialDocumentStatusCancelled, false),
		doc(4, "co1", models.FinancialDocumentStatusPending, true),
		doc(5, "co1", models.FinancialDocumentStatusPending, false),
	}

	got := models.FilterEligibleDocuments(docs, models.EligibilityFilter{CompanyId: "co1"}, true)
	want := []int{1, 5}
	if len(got) != len(want) {
		t.Fatalf("ids = %v, want %v", idsOf(got), want)
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("ids = %v, want %v", idsOf(got), want)
		}
	}
}

func TestFilterEligibleDocuments_StrictOffKeepsFlaggedRows(t *testing.T) {
	docs := []*models.FinancialDocument{
		doc(1, "co1", models.FinancialDocumentStatusPending, true),
		doc(2, "co1", models.FinancialDocumentStatusPending, false),
	}

	got := models.FilterEligibleDocuments(docs, models.EligibilityFilter{CompanyId: "co1"}, false)
	if len(got) != 2 {
		t.Fatalf("strict off should keep flagged rows, got %v", idsOf(got))
	}

	got = models.FilterEligibleDocuments(docs, models.EligibilityFilter{CompanyId: "co1"}, true)
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("strict on should drop flagged rows, got %v", idsOf(got))
	}
}

func TestFilterEligibleDocuments_CompanyScope(t *testing.T) {
	docs := []*models.FinancialDocument{
		doc(1, "co1", models.FinancialDocumentStatusPending, false),
		doc(2, "co2", models.FinancialDocumentStatusPending, false),
	}

	got := models.FilterEligibleDocuments(docs, models.EligibilityFilter{CompanyId: "co1"}, true)
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("cross-company document leaked: %v", idsOf(got))
	}
}

func TestFilterEligibleDocuments_ExcludeIds(t *testing.T) {
	docs := []*models.FinancialDocument{
		doc(1, "co1", models.FinancialDocumentStatusPending, false),
		doc(2, "co1", models.FinancialDocumentStatusPending, false),
		doc(3, "co1", models.FinancialDocumentStatusPending, false),
	}

	got := models.FilterEligibleDocuments(docs, models.EligibilityFilter{
		CompanyId:  "co1",
		ExcludeIds: []int{2},
	}, true)
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Fatalf("exclude not applied, got %v", idsOf(got))
	}
}

func TestFilterEligibleDocuments_SkipsNilAndEmptyInput(t *testing.T) {
	got := models.FilterEligibleDocuments(nil, models.EligibilityFilter{CompanyId: "co1"}, true)
	if len(got) != 0 {
		t.Fatalf("nil input should yield empty result, got %v", idsOf(got))
	}

	docs := []*models.FinancialDocument{
		nil,
		doc(1, "co1", models.FinancialDocumentStatusPending, false),
		nil,
	}
	got = models.FilterEligibleDocuments(docs, models.EligibilityFilter{CompanyId: "co1"}, true)
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("nil entries should be skipped, got %v", idsOf(got))
	}
}

func TestFilterEligibleDocuments_PreservesOrder(t *testing.T) {
	docs := []*models.FinancialDocument{
		doc(5, "co1", models.FinancialDocumentStatusPending, false),
		doc(3, "co1", models.FinancialDocumentStatusPending, false),
		doc(9, "co1", models.FinancialDocumentStatusPending, false),
	}

	got := models.FilterEligibleDocuments(docs, models.EligibilityFilter{CompanyId: "co1"}, true)
	want := []int{5, 3, 9}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("order changed: %v, want %v", idsOf(got), want)
		}
	}
}
