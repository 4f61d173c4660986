package models

import (
	"context"
	"errors"
	"time"

	"github.com/mhmd-ipx/Lead-sub001/config"
	"github.com/mhmd-ipx/Lead-sub001/utils"
	"gorm.io/gorm"
)

type ExamItem struct {
	ID            int       `gorm:"primary_key" json:"id"`
	CompanyId     string    `gorm:"index;not null" json:"company_id" binding:"required"`
	Title         string    `gorm:"size:255;not null" json:"title" binding:"required"`
	Description   string    `gorm:"type:text;default:null" json:"description"`
	QuestionCount int       `gorm:"default:0" json:"question_count"`
	Duration      int       `gorm:"default:0" json:"duration"` // minutes
	Priority      int       `gorm:"index;not null" json:"priority"`
	IsActive      *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewExamItem struct {
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description"`
	QuestionCount int    `json:"question_count"`
	Duration      int    `json:"duration"`
}

type ReorderInput struct {
	SourceIndex      int `json:"source_index"`
	DestinationIndex int `json:"destination_index"`
}

/*
caches:
	ExamItem:$id
	AllExamItemList:$companyId
*/

func (e ExamItem) GetId() int {
	return e.ID
}

func (e ExamItem) GetCompanyId() string {
	return e.CompanyId
}

// exam items have no terminal state, deletion is guarded separately by
// the active-assignment count
func (e ExamItem) CheckChangeLock(ctx context.Context) error {
	return nil
}

// ReorderByPriority moves the item at srcIndex to destIndex and renumbers
// priorities 1..N. A cancelled drag (negative destination) or a drop on
// the same slot returns the input untouched.
func ReorderByPriority(items []*ExamItem, srcIndex int, destIndex int) []*ExamItem {

	if destIndex < 0 || srcIndex == destIndex {
		return items
	}
	if srcIndex < 0 || srcIndex >= len(items) || destIndex >= len(items) {
		return items
	}

	reordered := make([]*ExamItem, 0, len(items))
	reordered = append(reordered, items...)

	// remove from source position
	moved := reordered[srcIndex]
	reordered = append(reordered[:srcIndex], reordered[srcIndex+1:]...)

	// reinsert at destination position
	reordered = append(reordered[:destIndex], append([]*ExamItem{moved}, reordered[destIndex:]...)...)

	// renumber 1..N on clones, the input slice stays untouched
	for i := range reordered {
		item := *reordered[i]
		item.Priority = i + 1
		reordered[i] = &item
	}
	return reordered
}

func CreateExamItem(ctx context.Context, input *NewExamItem) (*ExamItem, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	db := config.GetDB()

	// new items land at the end of the list
	var maxPriority int
	if err := db.WithContext(ctx).Model(&ExamItem{}).
		Where("company_id = ?", companyId).
		Select("COALESCE(MAX(priority), 0)").
		Scan(&maxPriority).Error; err != nil {
		return nil, err
	}

	item := ExamItem{
		CompanyId:     companyId,
		Title:         input.Title,
		Description:   input.Description,
		QuestionCount: input.QuestionCount,
		Duration:      input.Duration,
		Priority:      maxPriority + 1,
		IsActive:      utils.NewTrue(),
	}

	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback().Error
			panic(r)
		}
	}()
	defer func() { _ = tx.Rollback().Error }()

	if err := tx.WithContext(ctx).Create(&item).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := SaveHistoryCreate(tx.WithContext(ctx), item.ID, item, "created exam item "+item.Title); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := PublishNotificationOutbox(ctx, tx, companyId, time.Now(), item.ID, NotificationReferenceTypeExamItem, item, nil, NotificationActionCreate); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := item.RemoveAllRedis(); err != nil {
		return nil, err
	}

	return &item, nil
}

// GetExamItem finds in redis then db, ownership checked either way
func GetExamItem(ctx context.Context, id int) (*ExamItem, error) {
	return GetResource[ExamItem](ctx, id)
}

// ListExamItems returns the company's items in priority order.
func ListExamItems(ctx context.Context) ([]*ExamItem, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	db := config.GetDB()
	var items []*ExamItem
	if err := db.WithContext(ctx).
		Where("company_id = ?", companyId).
		Order("priority").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func UpdateExamItem(ctx context.Context, id int, input *NewExamItem) (*ExamItem, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	oldItem, err := utils.FetchModelForChange[ExamItem](ctx, companyId, id)
	if err != nil {
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

	if err := tx.WithContext(ctx).Model(oldItem).Updates(map[string]interface{}{
		"Title":         input.Title,
		"Description":   input.Description,
		"QuestionCount": input.QuestionCount,
		"Duration":      input.Duration,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := SaveHistoryUpdate(tx.WithContext(ctx), id, oldItem, "updated exam item "+input.Title); err != nil {
		tx.Rollback()
		return nil, err
	}

	item := *oldItem
	item.Title = input.Title
	item.Description = input.Description
	item.QuestionCount = input.QuestionCount
	item.Duration = input.Duration

	if err := PublishNotificationOutbox(ctx, tx, companyId, time.Now(), item.ID, NotificationReferenceTypeExamItem, item, oldItem, NotificationActionUpdate); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(item); err != nil {
		return nil, err
	}

	return &item, nil
}

// ReorderExamItems applies one drag and persists the renumbered
// priorities in a single transaction. The full ordered list is written
// back, a partial update could interleave with a concurrent drag.
func ReorderExamItems(ctx context.Context, input *ReorderInput) ([]*ExamItem, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	// one drag at a time per company
	if err := utils.CompanyLock(ctx, companyId, "ExamItemReorder", "examItem", "ReorderExamItems"); err != nil {
		return nil, err
	}

	items, err := ListExamItems(ctx)
	if err != nil {
		return nil, err
	}
	if input.SourceIndex < 0 || input.SourceIndex >= len(items) {
		return nil, errors.New("source index out of range")
	}
	if input.DestinationIndex >= len(items) {
		return nil, errors.New("destination index out of range")
	}

	reordered := ReorderByPriority(items, input.SourceIndex, input.DestinationIndex)

	// cancelled drag, nothing to persist
	if input.DestinationIndex < 0 || input.SourceIndex == input.DestinationIndex {
		return reordered, nil
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

	for _, item := range reordered {
		if err := tx.WithContext(ctx).Model(&ExamItem{}).
			Where("id = ?", item.ID).
			UpdateColumn("priority", item.Priority).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := utils.RemoveRedisList[AllExamItem](companyId); err != nil {
		return nil, err
	}

	return reordered, nil
}

func DeleteExamItem(ctx context.Context, id int) (*ExamItem, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	oldItem, err := utils.FetchModelForChange[ExamItem](ctx, companyId, id)
	if err != nil {
		return nil, err
	}

	// an item with active assignments cannot be removed
	var count int64
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&ExamAssignment{}).
		Where("exam_item_id = ? AND status <> ?", id, ExamAssignmentStatusGraded).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("exam item has active assignments")
	}

	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback().Error
			panic(r)
		}
	}()
	defer func() { _ = tx.Rollback().Error }()

	if err := tx.WithContext(ctx).Delete(&ExamItem{}, id).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// close the gap left behind
	if err := tx.WithContext(ctx).Model(&ExamItem{}).
		Where("company_id = ? AND priority > ?", companyId, oldItem.Priority).
		UpdateColumn("priority", gorm.Expr("priority - 1")).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := SaveHistoryDelete(tx.WithContext(ctx), id, oldItem, "deleted exam item "+oldItem.Title); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := PublishNotificationOutbox(ctx, tx, companyId, time.Now(), oldItem.ID, NotificationReferenceTypeExamItem, nil, oldItem, NotificationActionDelete); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*oldItem); err != nil {
		return nil, err
	}

	return oldItem, nil
}

func ToggleExamItemActive(ctx context.Context, id int, isActive bool) (*ExamItem, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}
	return ToggleActiveModel[ExamItem](ctx, companyId, id, isActive)
}
