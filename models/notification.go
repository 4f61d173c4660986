package models

import (
	"context"
	"time"

	"github.com/mhmd-ipx/Lead-sub001/config"
	"gorm.io/gorm"
)

// Outbox publish lifecycle (producer side).
const (
	OutboxPublishStatusPending    = "PENDING"
	OutboxPublishStatusProcessing = "PROCESSING"
	OutboxPublishStatusSent       = "SENT"
	OutboxPublishStatusFailed     = "FAILED"
	OutboxPublishStatusDead       = "DEAD"
)

type NotificationRecord struct {
	ID            int                       `gorm:"primary_key;index:idx_outbox_dispatch,priority:3;index:idx_outbox_reconcile,priority:3" json:"id"`
	CompanyId     string                    `gorm:"size:64;not null;index;index:idx_outbox_reconcile,priority:1" json:"company_id"`
	OccurredAt    time.Time                 `gorm:"index;not null" json:"occurred_at"`
	ReferenceId   int                       `json:"reference_id"`
	ReferenceType NotificationReferenceType `gorm:"type:enum('BILL','FINANCIAL_DOCUMENT','EXAM_ITEM','TICKET','USER')" json:"reference_type"`
	Action        NotificationAction        `gorm:"type:enum('C','U','D')" json:"action"`
	OldObj        []byte                    `gorm:"type:blob" json:"old_obj"`
	NewObj        []byte                    `gorm:"type:blob" json:"new_obj"`
	IsProcessed   bool                      `gorm:"index;not null;index:idx_outbox_reconcile,priority:2" json:"is_processed"`
	// Outbox metadata (publish happens after commit via dispatcher).
	PublishStatus    string     `gorm:"size:20;index;not null;default:'PENDING';index:idx_outbox_dispatch,priority:1" json:"publish_status"` // PENDING|PROCESSING|SENT|FAILED|DEAD
	PublishedAt      *time.Time `gorm:"index" json:"published_at"`
	PubSubMessageId  *string    `gorm:"size:255" json:"pubsub_message_id"`
	PublishAttempts  int        `gorm:"not null;default:0" json:"publish_attempts"`
	NextAttemptAt    *time.Time `gorm:"index;index:idx_outbox_dispatch,priority:2" json:"next_attempt_at"`
	LockedAt         *time.Time `gorm:"index" json:"locked_at"`
	LockedBy         *string    `gorm:"size:100" json:"locked_by"`
	LastPublishError *string    `gorm:"type:text" json:"last_publish_error"`
	ProcessedAt      *time.Time `gorm:"index" json:"processed_at"`
	CorrelationId    string     `gorm:"size:64;index" json:"correlation_id"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func ConvertToNotificationMessage(record NotificationRecord) config.NotificationMessage {
	return config.NotificationMessage{
		ID:            record.ID,
		CompanyId:     record.CompanyId,
		OccurredAt:    record.OccurredAt,
		ReferenceId:   record.ReferenceId,
		ReferenceType: string(record.ReferenceType),
		Action:        string(record.Action),
		OldObj:        record.OldObj,
		NewObj:        record.NewObj,
		CorrelationId: record.CorrelationId,
	}
}

type OutboxStatusCount struct {
	PublishStatus string `json:"publish_status"`
	Count         int64  `json:"count"`
}

// GetOutboxStatusCounts reports the per-status backlog for the ops endpoint.
func GetOutboxStatusCounts(ctx context.Context) ([]*OutboxStatusCount, error) {
	db := config.GetDB()
	var results []*OutboxStatusCount
	err := db.WithContext(ctx).Model(&NotificationRecord{}).
		Select("publish_status, COUNT(*) as count").
		Group("publish_status").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// RevertDeadNotifications moves DEAD records back to PENDING so the
// dispatcher picks them up again. Attempts are reset, the error is kept
// for the audit trail.
func RevertDeadNotifications(ctx context.Context, ids []int) (int64, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&NotificationRecord{}).
		Where("publish_status = ?", OutboxPublishStatusDead)
	if len(ids) > 0 {
		dbCtx = dbCtx.Where("id IN ?", ids)
	}
	result := dbCtx.Updates(map[string]interface{}{
		"publish_status":   OutboxPublishStatusPending,
		"publish_attempts": 0,
		"next_attempt_at":  nil,
		"locked_at":        nil,
		"locked_by":        nil,
	})
	return result.RowsAffected, result.Error
}

// ReleaseStaleProcessing unlocks PROCESSING records whose lock expired,
// typically after a dispatcher crash.
func ReleaseStaleProcessing(ctx context.Context, lockTimeout time.Duration) (int64, error) {
	db := config.GetDB()
	cutoff := time.Now().Add(-lockTimeout)
	result := db.WithContext(ctx).Model(&NotificationRecord{}).
		Where("publish_status = ? AND locked_at < ?", OutboxPublishStatusProcessing, cutoff).
		Updates(map[string]interface{}{
			"publish_status": OutboxPublishStatusPending,
			"locked_at":      nil,
			"locked_by":      nil,
		})
	return result.RowsAffected, result.Error
}

// MarkNotificationSent finalizes a record after a successful publish.
func MarkNotificationSent(tx *gorm.DB, id int, messageId string) error {
	now := time.Now()
	return tx.Model(&NotificationRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"publish_status":    OutboxPublishStatusSent,
			"published_at":      &now,
			"pubsub_message_id": messageId,
			"locked_at":         nil,
			"locked_by":         nil,
		}).Error
}
