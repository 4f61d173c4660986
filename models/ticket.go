package models

import (
	"context"
	"errors"
	"time"

	"github.com/mhmd-ipx/Lead-sub001/config"
	"github.com/mhmd-ipx/Lead-sub001/utils"
)

type Ticket struct {
	ID        int            `gorm:"primary_key" json:"id"`
	CompanyId string         `gorm:"index;not null" json:"company_id" binding:"required"`
	Subject   string         `gorm:"size:255;not null" json:"subject" binding:"required"`
	Body      string         `gorm:"type:text;not null" json:"body" binding:"required"`
	Status    TicketStatus   `gorm:"type:enum('open', 'answered', 'closed');default:open" json:"status"`
	UserId    int            `gorm:"index;not null" json:"user_id"`
	UserName  string         `gorm:"size:100" json:"user_name"`
	Replies   []*TicketReply `gorm:"foreignKey:TicketId" json:"replies"`
	Documents []*Document    `gorm:"polymorphic:Reference" json:"documents"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

type TicketReply struct {
	ID        int       `gorm:"primary_key" json:"id"`
	TicketId  int       `gorm:"index;not null" json:"ticket_id" binding:"required"`
	Body      string    `gorm:"type:text;not null" json:"body" binding:"required"`
	UserId    int       `gorm:"index;not null" json:"user_id"`
	UserName  string    `gorm:"size:100" json:"user_name"`
	IsStaff   bool      `gorm:"not null;default:false" json:"is_staff"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewTicket struct {
	Subject   string         `json:"subject" binding:"required"`
	Body      string         `json:"body" binding:"required"`
	Documents []*NewDocument `json:"documents"`
}

type NewTicketReply struct {
	Body string `json:"body" binding:"required"`
}

/*
caches:
	Ticket:$id
	AllTicketList:$companyId
*/

func (t Ticket) GetId() int {
	return t.ID
}

func (t Ticket) GetCompanyId() string {
	return t.CompanyId
}

// closed is terminal, no replies or further transitions
func (t Ticket) CheckChangeLock(ctx context.Context) error {
	if t.Status == TicketStatusClosed {
		return errors.New("cannot change a closed ticket")
	}
	return nil
}

func (t Ticket) GetCursor() string {
	return t.CreatedAt.String()
}

func CreateTicket(ctx context.Context, input *NewTicket) (*Ticket, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	userName, _ := utils.GetUserNameFromContext(ctx)

	// construct attachments
	documents, err := mapNewDocuments(input.Documents, "tickets", 0)
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

	ticket := Ticket{
		CompanyId: companyId,
		Subject:   input.Subject,
		Body:      input.Body,
		Status:    TicketStatusOpen,
		UserId:    userId,
		UserName:  userName,
		Documents: documents,
	}

	if err := tx.WithContext(ctx).Create(&ticket).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := PublishNotificationOutbox(ctx, tx, companyId, time.Now(), ticket.ID, NotificationReferenceTypeTicket, ticket, nil, NotificationActionCreate); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := ticket.RemoveAllRedis(); err != nil {
		return nil, err
	}

	return &ticket, nil
}

// GetTicket finds in redis then db, ownership checked either way
func GetTicket(ctx context.Context, id int) (*Ticket, error) {
	return GetResource[Ticket](ctx, id, "Replies", "Documents")
}

// ReplyTicket appends a reply. A staff reply moves the ticket to
// answered, an applicant reply reopens it.
func ReplyTicket(ctx context.Context, ticketId int, input *NewTicketReply) (*Ticket, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	userName, _ := utils.GetUserNameFromContext(ctx)
	isAdmin, _ := utils.GetIsAdminFromContext(ctx)

	oldTicket, err := utils.FetchModelForChange[Ticket](ctx, companyId, ticketId)
	if err != nil {
		return nil, err
	}
	if oldTicket.Status == TicketStatusClosed {
		return nil, errors.New("ticket is closed")
	}

	isStaff := isAdmin || oldTicket.UserId != userId

	status := TicketStatusOpen
	if isStaff {
		status = TicketStatusAnswered
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

	reply := TicketReply{
		TicketId: ticketId,
		Body:     input.Body,
		UserId:   userId,
		UserName: userName,
		IsStaff:  isStaff,
	}
	if err := tx.WithContext(ctx).Create(&reply).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.WithContext(ctx).Model(oldTicket).
		Update("Status", status).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	ticket := *oldTicket
	ticket.Status = status

	if err := PublishNotificationOutbox(ctx, tx, companyId, time.Now(), ticket.ID, NotificationReferenceTypeTicket, ticket, oldTicket, NotificationActionUpdate); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(ticket); err != nil {
		return nil, err
	}

	return &ticket, nil
}

func CloseTicket(ctx context.Context, ticketId int) (*Ticket, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	oldTicket, err := utils.FetchModelForChange[Ticket](ctx, companyId, ticketId)
	if err != nil {
		return nil, err
	}
	if oldTicket.Status == TicketStatusClosed {
		return nil, errors.New("ticket is already closed")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(oldTicket).
		Update("Status", TicketStatusClosed).Error; err != nil {
		return nil, err
	}

	ticket := *oldTicket
	ticket.Status = TicketStatusClosed

	if err := RemoveRedisBoth(ticket); err != nil {
		return nil, err
	}

	return &ticket, nil
}

func ListTickets(ctx context.Context, status *TicketStatus) ([]*Ticket, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("company_id = ?", companyId)
	if status != nil && *status != "" {
		dbCtx = dbCtx.Where("status = ?", *status)
	}

	var results []*Ticket
	if err := dbCtx.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
