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

type Bill struct {
	ID          int             `gorm:"primary_key" json:"id"`
	CompanyId   string          `gorm:"index;not null" json:"company_id" binding:"required"`
	BillNumber  string          `gorm:"size:255;not null" json:"bill_number" binding:"required"`
	SequenceNo  decimal.Decimal `gorm:"type:decimal(15);not null" json:"sequence_no"`
	BillDate    time.Time       `gorm:"not null" json:"bill_date" binding:"required"`
	Subject     string          `gorm:"size:255;default:null" json:"subject"`
	Notes       string          `gorm:"type:text;default:null" json:"notes"`
	Status      BillStatus      `gorm:"type:enum('pending', 'partially_paid', 'paid');default:pending" json:"status"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	PaidAmount  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"paid_amount"`

	OfficialInvoiceRequested bool                 `gorm:"default:false" json:"official_invoice_requested"`
	Items                    []*FinancialDocument `gorm:"foreignKey:BillId" json:"financial_documents"`
	Documents                []*Document          `gorm:"polymorphic:Reference" json:"documents"`
	CreatedAt                time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewBill struct {
	BillDate                 time.Time      `json:"bill_date" binding:"required"`
	Subject                  string         `json:"subject"`
	Notes                    string         `json:"notes"`
	OfficialInvoiceRequested bool           `json:"official_invoice_requested"`
	DocumentIds              []int          `json:"document_ids" binding:"required"`
	Documents                []*NewDocument `json:"documents"`
}

// UpdateBillInput carries the editable bill fields, nil means keep.
type UpdateBillInput struct {
	Subject                  *string    `json:"subject"`
	Notes                    *string    `json:"notes"`
	BillDate                 *time.Time `json:"bill_date"`
	OfficialInvoiceRequested *bool      `json:"official_invoice_requested"`
}

type BillsConnection struct {
	Edges    []*BillsEdge `json:"edges"`
	PageInfo *PageInfo    `json:"pageInfo"`
}

type BillsEdge Edge[Bill]

/*
caches:
	Bill:$id
	AllBillList:$companyId
*/

func (b Bill) GetId() int {
	return b.ID
}

func (b Bill) GetCompanyId() string {
	return b.CompanyId
}

func (b Bill) GetCursor() string {
	return b.CreatedAt.String()
}

// a settled bill is immutable, detach/attach must happen before payment
func (b Bill) CheckChangeLock(ctx context.Context) error {
	if b.Status == BillStatusPaid {
		return errors.New("cannot change a paid bill")
	}
	return nil
}

// recomputeBillTotal reloads the attached documents inside the tx and
// writes the summed total. Totals are never adjusted incrementally, the
// reload keeps the stored value consistent with the rows after
// concurrent attaches.
func recomputeBillTotal(tx *gorm.DB, ctx context.Context, bill *Bill) error {

	var docs []*FinancialDocument
	if err := tx.WithContext(ctx).
		Where("bill_id = ?", bill.ID).
		Find(&docs).Error; err != nil {
		return err
	}

	total := decimal.Zero
	for _, doc := range docs {
		total = total.Add(doc.Amount)
	}

	if err := tx.WithContext(ctx).Model(bill).
		UpdateColumn("total_amount", total).Error; err != nil {
		return err
	}
	bill.TotalAmount = total
	bill.Items = docs
	return nil
}

// validateAttachable fail-fasts before any write: every document must
// exist, belong to the caller's company, be pending and not already billed.
func validateAttachable(tx *gorm.DB, ctx context.Context, companyId string, docIds []int) ([]*FinancialDocument, error) {

	if len(docIds) == 0 {
		return nil, errors.New("at least one document is required")
	}
	uniqueIds := utils.UniqueSlice(docIds)
	if len(uniqueIds) != len(docIds) {
		return nil, errors.New("duplicate document ids")
	}

	var docs []*FinancialDocument
	if err := tx.WithContext(ctx).
		Where("id IN ?", docIds).
		Find(&docs).Error; err != nil {
		return nil, err
	}
	if len(docs) != len(docIds) {
		return nil, errors.New("document not found")
	}

	for _, doc := range docs {
		if doc.CompanyId != companyId {
			return nil, errors.New("cannot attach a document owned by another company")
		}
		if doc.Status != FinancialDocumentStatusPending {
			return nil, fmt.Errorf("document %s is not pending", doc.DocumentNumber)
		}
		if doc.BillsExists {
			return nil, fmt.Errorf("document %s already belongs to a bill", doc.DocumentNumber)
		}
	}
	return docs, nil
}

// CreateBillFromDocuments builds one bill from the selected pending
// documents. The whole selection is validated before anything is written,
// one bad document fails the entire request.
func CreateBillFromDocuments(ctx context.Context, input *NewBill) (*Bill, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	// serialize bill creation per company, two concurrent bulk creates
	// must not share a document
	if err := utils.CompanyLock(ctx, companyId, "BillCreate", "bill", "CreateBillFromDocuments"); err != nil {
		return nil, err
	}

	billDate := input.BillDate
	if billDate.IsZero() {
		billDate = time.Now()
	}

	// construct attachments
	documents, err := mapNewDocuments(input.Documents, "bills", 0)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
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

	docs, err := validateAttachable(tx, ctx, companyId, input.DocumentIds)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	bill := Bill{
		CompanyId:                companyId,
		BillDate:                 billDate,
		Subject:                  input.Subject,
		Notes:                    input.Notes,
		OfficialInvoiceRequested: input.OfficialInvoiceRequested,
		Status:                   BillStatusPending,
		Documents:                documents,
	}

	seqNo, err := utils.GetSequence[Bill](ctx, companyId)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	bill.SequenceNo = decimal.NewFromInt(seqNo)
	bill.BillNumber = "BILL-" + fmt.Sprint(seqNo)

	if err := tx.WithContext(ctx).Create(&bill).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := markDocumentsBilled(tx, ctx, input.DocumentIds, &bill.ID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := recomputeBillTotal(tx, ctx, &bill); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := SaveHistoryCreate(tx.WithContext(ctx), bill.ID, bill, "created bill "+bill.BillNumber); err != nil {
		tx.Rollback()
		return nil, err
	}

	// outbox record, publishing happens after commit via dispatcher
	if err := PublishNotificationOutbox(ctx, tx, companyId, bill.BillDate, bill.ID, NotificationReferenceTypeBill, bill, nil, NotificationActionCreate); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(bill); err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if err := RemoveRedisBoth(*doc); err != nil {
			return nil, err
		}
	}

	return &bill, nil
}

// AttachDocuments adds pending documents to an existing bill and
// recomputes the total inside the same transaction.
func AttachDocuments(ctx context.Context, billId int, docIds []int) (*Bill, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	if err := utils.CompanyLock(ctx, companyId, "BillChange", "bill", "AttachDocuments"); err != nil {
		return nil, err
	}

	oldBill, err := utils.FetchModelForChange[Bill](ctx, companyId, billId, "Items")
	if err != nil {
		return nil, err
	}
	if err := oldBill.CheckChangeLock(ctx); err != nil {
		return nil, err
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

	docs, err := validateAttachable(tx, ctx, companyId, docIds)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := markDocumentsBilled(tx, ctx, docIds, &oldBill.ID); err != nil {
		tx.Rollback()
		return nil, err
	}

	bill := *oldBill
	if err := recomputeBillTotal(tx, ctx, &bill); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := SaveHistoryUpdate(tx.WithContext(ctx), bill.ID, oldBill, fmt.Sprintf("attached %d document(s) to bill %s", len(docIds), bill.BillNumber)); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := PublishNotificationOutbox(ctx, tx, companyId, time.Now(), bill.ID, NotificationReferenceTypeBill, bill, oldBill, NotificationActionUpdate); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(bill); err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if err := RemoveRedisBoth(*doc); err != nil {
			return nil, err
		}
	}

	return &bill, nil
}

// DetachDocument removes one document from a bill, releases it back to
// the eligible pool and recomputes the total inside the same transaction.
func DetachDocument(ctx context.Context, billId int, docId int) (*Bill, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	if err := utils.CompanyLock(ctx, companyId, "BillChange", "bill", "DetachDocument"); err != nil {
		return nil, err
	}

	oldBill, err := utils.FetchModelForChange[Bill](ctx, companyId, billId, "Items")
	if err != nil {
		return nil, err
	}
	if err := oldBill.CheckChangeLock(ctx); err != nil {
		return nil, err
	}

	var detached *FinancialDocument
	for _, doc := range oldBill.Items {
		if doc.ID == docId {
			detached = doc
			break
		}
	}
	if detached == nil {
		return nil, utils.ErrorRecordNotFound
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

	if err := markDocumentsBilled(tx, ctx, []int{docId}, nil); err != nil {
		tx.Rollback()
		return nil, err
	}

	bill := *oldBill
	if err := recomputeBillTotal(tx, ctx, &bill); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := SaveHistoryUpdate(tx.WithContext(ctx), bill.ID, oldBill, fmt.Sprintf("detached document %s from bill %s", detached.DocumentNumber, bill.BillNumber)); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := PublishNotificationOutbox(ctx, tx, companyId, time.Now(), bill.ID, NotificationReferenceTypeBill, bill, oldBill, NotificationActionUpdate); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(bill); err != nil {
		return nil, err
	}
	if err := RemoveRedisBoth(*detached); err != nil {
		return nil, err
	}

	return &bill, nil
}

// UpdateBill applies a partial update to the editable bill fields.
// Attachments and totals are untouched here, those go through
// AttachDocuments/DetachDocument.
func UpdateBill(ctx context.Context, billId int, input *UpdateBillInput) (*Bill, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	if err := utils.CompanyLock(ctx, companyId, "BillChange", "bill", "UpdateBill"); err != nil {
		return nil, err
	}

	oldBill, err := utils.FetchModelForChange[Bill](ctx, companyId, billId, "Items")
	if err != nil {
		return nil, err
	}
	if err := oldBill.CheckChangeLock(ctx); err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if input.Subject != nil {
		changes["Subject"] = *input.Subject
	}
	if input.Notes != nil {
		changes["Notes"] = *input.Notes
	}
	if input.BillDate != nil {
		if input.BillDate.IsZero() {
			return nil, errors.New("bill date is invalid")
		}
		changes["BillDate"] = *input.BillDate
	}
	if input.OfficialInvoiceRequested != nil {
		changes["OfficialInvoiceRequested"] = *input.OfficialInvoiceRequested
	}
	if len(changes) == 0 {
		return oldBill, nil
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

	if err := tx.WithContext(ctx).Model(oldBill).Updates(changes).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	bill := *oldBill
	if input.Subject != nil {
		bill.Subject = *input.Subject
	}
	if input.Notes != nil {
		bill.Notes = *input.Notes
	}
	if input.BillDate != nil {
		bill.BillDate = *input.BillDate
	}
	if input.OfficialInvoiceRequested != nil {
		bill.OfficialInvoiceRequested = *input.OfficialInvoiceRequested
	}

	if err := SaveHistoryUpdate(tx.WithContext(ctx), bill.ID, oldBill, "updated bill "+bill.BillNumber); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := PublishNotificationOutbox(ctx, tx, companyId, time.Now(), bill.ID, NotificationReferenceTypeBill, bill, oldBill, NotificationActionUpdate); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(bill); err != nil {
		return nil, err
	}

	return &bill, nil
}

// PayBill records a payment. A full payment settles the bill and marks
// every attached document paid, a partial one only moves the status.
func PayBill(ctx context.Context, billId int, amount decimal.Decimal) (*Bill, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	if amount.IsNegative() || amount.IsZero() {
		return nil, errors.New("payment amount must be positive")
	}

	if err := utils.CompanyLock(ctx, companyId, "BillChange", "bill", "PayBill"); err != nil {
		return nil, err
	}

	oldBill, err := utils.FetchModelForChange[Bill](ctx, companyId, billId, "Items")
	if err != nil {
		return nil, err
	}
	if err := oldBill.CheckChangeLock(ctx); err != nil {
		return nil, err
	}

	paid := oldBill.PaidAmount.Add(amount)
	if paid.GreaterThan(oldBill.TotalAmount) {
		return nil, errors.New("payment exceeds the bill total")
	}

	status := BillStatusPartiallyPaid
	if paid.Equal(oldBill.TotalAmount) {
		status = BillStatusPaid
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

	if err := tx.WithContext(ctx).Model(oldBill).Updates(map[string]interface{}{
		"PaidAmount": paid,
		"Status":     status,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// settle the attached documents along with the bill
	if status == BillStatusPaid && len(oldBill.Items) > 0 {
		var docIds []int
		for _, doc := range oldBill.Items {
			docIds = append(docIds, doc.ID)
		}
		if err := tx.WithContext(ctx).Model(&FinancialDocument{}).
			Where("id IN ?", docIds).
			Update("status", FinancialDocumentStatusPaid).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := SaveHistoryUpdate(tx.WithContext(ctx), billId, oldBill, fmt.Sprintf("paid %s on bill %s", amount, oldBill.BillNumber)); err != nil {
		tx.Rollback()
		return nil, err
	}

	bill := *oldBill
	bill.PaidAmount = paid
	bill.Status = status

	if err := PublishNotificationOutbox(ctx, tx, companyId, time.Now(), bill.ID, NotificationReferenceTypeBill, bill, oldBill, NotificationActionUpdate); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(bill); err != nil {
		return nil, err
	}
	for _, doc := range oldBill.Items {
		if err := RemoveRedisBoth(*doc); err != nil {
			return nil, err
		}
	}

	return &bill, nil
}

// DeleteBill removes an unpaid bill and releases its documents back to
// the eligible pool.
func DeleteBill(ctx context.Context, billId int) (*Bill, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	if err := utils.CompanyLock(ctx, companyId, "BillChange", "bill", "DeleteBill"); err != nil {
		return nil, err
	}

	oldBill, err := utils.FetchModelForChange[Bill](ctx, companyId, billId, "Items", "Documents")
	if err != nil {
		return nil, err
	}
	if err := oldBill.CheckChangeLock(ctx); err != nil {
		return nil, err
	}
	if oldBill.Status == BillStatusPartiallyPaid {
		return nil, errors.New("cannot delete a partially paid bill")
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

	var docIds []int
	for _, doc := range oldBill.Items {
		docIds = append(docIds, doc.ID)
	}
	if err := markDocumentsBilled(tx, ctx, docIds, nil); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := deleteDocuments(ctx, tx, oldBill.Documents); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.WithContext(ctx).Delete(&Bill{}, billId).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := SaveHistoryDelete(tx.WithContext(ctx), billId, oldBill, "deleted bill "+oldBill.BillNumber); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := PublishNotificationOutbox(ctx, tx, companyId, time.Now(), oldBill.ID, NotificationReferenceTypeBill, nil, oldBill, NotificationActionDelete); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*oldBill); err != nil {
		return nil, err
	}
	for _, doc := range oldBill.Items {
		if err := RemoveRedisBoth(*doc); err != nil {
			return nil, err
		}
	}

	return oldBill, nil
}

// GetBill finds in redis then db, ownership checked either way
func GetBill(ctx context.Context, id int) (*Bill, error) {
	return GetResource[Bill](ctx, id, "Items", "Documents")
}

func PaginateBills(ctx context.Context,
	limit *int,
	after *string,
	status *BillStatus,
) (*BillsConnection, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("company_id = ?", companyId).Preload("Items")
	if status != nil && *status != "" {
		dbCtx.Where("status = ?", *status)
	}

	edges, pageInfo, err := FetchPageCompositeCursor[Bill](dbCtx, *limit, after, "created_at", "<")
	if err != nil {
		return nil, err
	}
	var connection BillsConnection
	connection.PageInfo = pageInfo
	for _, edge := range edges {
		billsEdge := BillsEdge(edge)
		connection.Edges = append(connection.Edges, &billsEdge)
	}

	return &connection, nil
}
