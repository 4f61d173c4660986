package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mhmd-ipx/Lead-sub001/config"
	"github.com/mhmd-ipx/Lead-sub001/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type FinancialDocument struct {
	ID             int                     `gorm:"primary_key" json:"id"`
	CompanyId      string                  `gorm:"index;not null" json:"company_id" binding:"required"`
	DocumentNumber string                  `gorm:"size:255;not null" json:"document_number" binding:"required"`
	SequenceNo     decimal.Decimal         `gorm:"type:decimal(15);not null" json:"sequence_no"`
	Amount         decimal.Decimal         `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Status         FinancialDocumentStatus `gorm:"type:enum('pending', 'paid', 'cancelled');default:pending" json:"status"`
	BillsExists    bool                    `gorm:"index;not null;default:false" json:"bills_exists"`
	BillId         *int                    `gorm:"index;default:null" json:"bill_id"`
	IssuedDate     time.Time               `gorm:"not null" json:"issued_date" binding:"required"`
	Description    string                  `gorm:"type:text;default:null" json:"description"`
	Documents      []*Document             `gorm:"polymorphic:Reference" json:"documents"`
	CreatedAt      time.Time               `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time               `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewFinancialDocument struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	IssuedDate  time.Time       `json:"issued_date" binding:"required"`
	Description string          `json:"description"`
	Documents   []*NewDocument  `json:"documents"`
}

type FinancialDocumentsConnection struct {
	Edges    []*FinancialDocumentsEdge `json:"edges"`
	PageInfo *PageInfo                 `json:"pageInfo"`
}

type FinancialDocumentsEdge Edge[FinancialDocument]

/*
caches:
	FinancialDocument:$id
	AllFinancialDocumentList:$companyId
*/

func (d FinancialDocument) GetId() int {
	return d.ID
}

func (d FinancialDocument) GetCompanyId() string {
	return d.CompanyId
}

func (d FinancialDocument) GetCursor() string {
	return d.CreatedAt.String()
}

// a paid document belongs to a settled bill and must not change
func (d FinancialDocument) CheckChangeLock(ctx context.Context) error {
	if d.Status == FinancialDocumentStatusPaid {
		return errors.New("cannot change a paid document")
	}
	return nil
}

// EligibilityFilter carries the caller-side constraints for the attach list.
type EligibilityFilter struct {
	CompanyId  string
	ExcludeIds []int
}

// FilterEligibleDocuments returns the documents that can be attached to a bill:
// same company, still pending, not already billed, and not in the exclude set.
// With strict off, documents already flagged bills_exists pass through so
// legacy rows with a stale flag stay reachable.
func FilterEligibleDocuments(docs []*FinancialDocument, filter EligibilityFilter, strict bool) []*FinancialDocument {
	excluded := make(map[int]bool, len(filter.ExcludeIds))
	for _, id := range filter.ExcludeIds {
		excluded[id] = true
	}

	results := make([]*FinancialDocument, 0, len(docs))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		if filter.CompanyId != "" && doc.CompanyId != filter.CompanyId {
			continue
		}
		if doc.Status != FinancialDocumentStatusPending {
			continue
		}
		if strict && doc.BillsExists {
			continue
		}
		if excluded[doc.ID] {
			continue
		}
		results = append(results, doc)
	}
	return results
}

// ListEligibleDocuments lists the pending documents that can be attached
// to a bill, excluding the ones the bill already holds.
func ListEligibleDocuments(ctx context.Context, excludeIds []int) ([]*FinancialDocument, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	db := config.GetDB()
	var docs []*FinancialDocument
	dbCtx := db.WithContext(ctx).
		Where("company_id = ?", companyId).
		Where("status = ?", FinancialDocumentStatusPending).
		Order("issued_date DESC, id DESC")
	if config.StrictEligibilityFilter() {
		dbCtx = dbCtx.Where("bills_exists = ?", false)
	}
	if err := dbCtx.Find(&docs).Error; err != nil {
		return nil, err
	}

	// the exclude set is applied in memory so the same predicate serves
	// both the query path and the cached path
	return FilterEligibleDocuments(docs, EligibilityFilter{
		CompanyId:  companyId,
		ExcludeIds: excludeIds,
	}, config.StrictEligibilityFilter()), nil
}

func (input NewFinancialDocument) validate(ctx context.Context, companyId string, id int) error {
	if input.Amount.IsNegative() {
		return errors.New("amount cannot be negative")
	}
	if input.IssuedDate.IsZero() {
		return errors.New("issued date is required")
	}
	return nil
}

func CreateFinancialDocument(ctx context.Context, input *NewFinancialDocument) (*FinancialDocument, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	if err := input.validate(ctx, companyId, 0); err != nil {
		return nil, err
	}

	db := config.GetDB()

	// construct attachments
	documents, err := mapNewDocuments(input.Documents, "financial_documents", 0)
	if err != nil {
		return nil, err
	}

	tx := db.Begin()
	// IMPORTANT: always rollback on early-return or panic to avoid leaking DB locks
	// (leaked transactions are a common cause of MySQL 1205 lock wait timeouts).
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback().Error
			panic(r)
		}
	}()
	defer func() { _ = tx.Rollback().Error }()

	doc := FinancialDocument{
		CompanyId:   companyId,
		Amount:      input.Amount,
		Status:      FinancialDocumentStatusPending,
		BillsExists: false,
		IssuedDate:  input.IssuedDate,
		Description: input.Description,
		Documents:   documents,
	}

	seqNo, err := utils.GetSequence[FinancialDocument](ctx, companyId)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	doc.SequenceNo = decimal.NewFromInt(seqNo)
	doc.DocumentNumber = "FD-" + fmt.Sprint(seqNo)

	if err := tx.WithContext(ctx).Create(&doc).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := SaveHistoryCreate(tx.WithContext(ctx), doc.ID, doc, "created financial document "+doc.DocumentNumber); err != nil {
		tx.Rollback()
		return nil, err
	}

	// outbox record, publishing happens after commit via dispatcher
	if err := PublishNotificationOutbox(ctx, tx, companyId, doc.IssuedDate, doc.ID, NotificationReferenceTypeFinancialDocument, doc, nil, NotificationActionCreate); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := doc.RemoveAllRedis(); err != nil {
		return nil, err
	}

	return &doc, nil
}

// GetFinancialDocument finds in redis then db, ownership checked either way
func GetFinancialDocument(ctx context.Context, id int) (*FinancialDocument, error) {
	return GetResource[FinancialDocument](ctx, id, "Documents")
}

func UpdateFinancialDocument(ctx context.Context, id int, input *NewFinancialDocument) (*FinancialDocument, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	if err := input.validate(ctx, companyId, id); err != nil {
		return nil, err
	}

	oldDoc, err := utils.FetchModelForChange[FinancialDocument](ctx, companyId, id)
	if err != nil {
		return nil, err
	}
	if err := oldDoc.CheckChangeLock(ctx); err != nil {
		return nil, err
	}
	if oldDoc.BillsExists {
		return nil, errors.New("cannot update a document attached to a bill")
	}

	db := config.GetDB()
	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback().Error
			panic(r)
		}
	}()
	defer func() { _ = tx.Rollback().Error }()

	if err := tx.WithContext(ctx).Model(oldDoc).Updates(map[string]interface{}{
		"Amount":      input.Amount,
		"IssuedDate":  input.IssuedDate,
		"Description": input.Description,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := SaveHistoryUpdate(tx.WithContext(ctx), id, oldDoc, "updated financial document "+oldDoc.DocumentNumber); err != nil {
		tx.Rollback()
		return nil, err
	}

	// upsert attachments
	if _, err := upsertDocuments(ctx, tx, input.Documents, "financial_documents", id); err != nil {
		tx.Rollback()
		return nil, err
	}

	var doc FinancialDocument
	if err := tx.WithContext(ctx).Preload("Documents").First(&doc, id).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := PublishNotificationOutbox(ctx, tx, companyId, doc.IssuedDate, doc.ID, NotificationReferenceTypeFinancialDocument, doc, oldDoc, NotificationActionUpdate); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

func CancelFinancialDocument(ctx context.Context, id int) (*FinancialDocument, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	oldDoc, err := utils.FetchModelForChange[FinancialDocument](ctx, companyId, id)
	if err != nil {
		return nil, err
	}
	if err := oldDoc.CheckChangeLock(ctx); err != nil {
		return nil, err
	}
	if oldDoc.BillsExists {
		return nil, errors.New("detach the document from its bill first")
	}
	if oldDoc.Status == FinancialDocumentStatusCancelled {
		return nil, errors.New("document is already cancelled")
	}

	db := config.GetDB()
	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback().Error
			panic(r)
		}
	}()
	defer func() { _ = tx.Rollback().Error }()

	if err := tx.WithContext(ctx).Model(oldDoc).
		Update("Status", FinancialDocumentStatusCancelled).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := SaveHistoryUpdate(tx.WithContext(ctx), id, oldDoc, "cancelled financial document "+oldDoc.DocumentNumber); err != nil {
		tx.Rollback()
		return nil, err
	}

	doc := *oldDoc
	doc.Status = FinancialDocumentStatusCancelled

	if err := PublishNotificationOutbox(ctx, tx, companyId, time.Now(), doc.ID, NotificationReferenceTypeFinancialDocument, doc, oldDoc, NotificationActionUpdate); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

func DeleteFinancialDocument(ctx context.Context, id int) (*FinancialDocument, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	oldDoc, err := utils.FetchModelForChange[FinancialDocument](ctx, companyId, id, "Documents")
	if err != nil {
		return nil, err
	}
	if err := oldDoc.CheckChangeLock(ctx); err != nil {
		return nil, err
	}
	if oldDoc.BillsExists {
		return nil, errors.New("detach the document from its bill first")
	}

	db := config.GetDB()
	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback().Error
			panic(r)
		}
	}()
	defer func() { _ = tx.Rollback().Error }()

	if err := deleteDocuments(ctx, tx, oldDoc.Documents); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.WithContext(ctx).Delete(oldDoc).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := SaveHistoryDelete(tx.WithContext(ctx), id, oldDoc, "deleted financial document "+oldDoc.DocumentNumber); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := PublishNotificationOutbox(ctx, tx, companyId, time.Now(), oldDoc.ID, NotificationReferenceTypeFinancialDocument, nil, oldDoc, NotificationActionDelete); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*oldDoc); err != nil {
		return nil, err
	}

	return oldDoc, nil
}

func PaginateFinancialDocuments(ctx context.Context,
	limit *int,
	after *string,
	status *FinancialDocumentStatus,
	billsExists *bool,
) (*FinancialDocumentsConnection, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("company_id = ?", companyId)
	if status != nil && *status != "" {
		dbCtx.Where("status = ?", *status)
	}
	if billsExists != nil {
		dbCtx.Where("bills_exists = ?", *billsExists)
	}

	edges, pageInfo, err := FetchPageCompositeCursor[FinancialDocument](dbCtx, *limit, after, "created_at", "<")
	if err != nil {
		return nil, err
	}
	var connection FinancialDocumentsConnection
	connection.PageInfo = pageInfo
	for _, edge := range edges {
		docEdge := FinancialDocumentsEdge(edge)
		connection.Edges = append(connection.Edges, &docEdge)
	}

	return &connection, nil
}

// markDocumentsBilled flips bills_exists and bill_id inside the caller tx.
// releasing passes a nil billId.
func markDocumentsBilled(tx *gorm.DB, ctx context.Context, docIds []int, billId *int) error {
	if len(docIds) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Model(&FinancialDocument{}).
		Where("id IN ?", docIds).
		Updates(map[string]interface{}{
			"bills_exists": billId != nil,
			"bill_id":      billId,
		}).Error
}
