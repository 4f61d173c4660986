package models

import (
	"context"
	"errors"
	"time"

	"github.com/mhmd-ipx/Lead-sub001/config"
	"github.com/mhmd-ipx/Lead-sub001/utils"
	"github.com/shopspring/decimal"
)

// get AllModelMap for lookups, redis or db
func MapAllModel[ModelT any, AllT Identifier](ctx context.Context) (map[int]*AllT, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	// retrieve from redis
	key := utils.GetTypeName[AllT]() + "Map:" + companyId

	var allMap map[int]*AllT

	// retrieve from redis
	if exists, err := config.GetRedisObject(key, &allMap); err != nil {
		return nil, err
	} else if !exists {
		// if the map has not been cached yet
		// fetch resources and constrcut the map, cache the result

		allMap = make(map[int]*AllT)
		var allSlice []*AllT
		db := config.GetDB()
		var m ModelT
		dbCtx := db.WithContext(ctx).Model(&m)
		dbCtx.Where("company_id = ?", companyId)
		if err := dbCtx.Find(&allSlice).Error; err != nil {
			return nil, err
		}

		// fill the map
		for _, allModel := range allSlice {
			allMap[(*allModel).GetId()] = allModel
		}

		// store redis
		var duration time.Duration
		if err := config.SetRedisObject(key, &allMap, duration); err != nil {
			return nil, err
		}
	}

	return allMap, nil
}

// get AllModelMap for lookups, redis or db
func MapAllAdmin[ModelT any, AllT Identifier](ctx context.Context) (map[int]*AllT, error) {

	// retrieve from redis
	key := utils.GetTypeName[AllT]() + "Map"

	var allMap map[int]*AllT

	// retrieve from redis
	if exists, err := config.GetRedisObject(key, &allMap); err != nil {
		return nil, err
	} else if !exists {
		// if the map has not been cached yet
		// fetch resources and constrcut the map, cache the result

		allMap = make(map[int]*AllT)
		var allSlice []*AllT
		db := config.GetDB()
		var m ModelT
		dbCtx := db.WithContext(ctx).Model(&m)
		if err := dbCtx.Find(&allSlice).Error; err != nil {
			return nil, err
		}

		// fill the map
		for _, allModel := range allSlice {
			allMap[(*allModel).GetId()] = allModel
		}

		// store redis
		var duration time.Duration
		if err := config.SetRedisObject(key, &allMap, duration); err != nil {
			return nil, err
		}
	}

	return allMap, nil
}

type AllCompany struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
	Address  string `json:"address"`
	Country  string `json:"country"`
	City     string `json:"city"`
}

type AllUser struct {
	HasId
	Username string   `json:"username"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Role     UserRole `json:"role"`
	IsActive bool     `json:"is_active"`
}

type AllBill struct {
	HasId
	BillNumber  string          `json:"bill_number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      BillStatus      `json:"status"`
	BillDate    time.Time       `json:"bill_date"`
}

type AllFinancialDocument struct {
	HasId
	DocumentNumber string                  `json:"document_number"`
	Amount         decimal.Decimal         `json:"amount"`
	Status         FinancialDocumentStatus `json:"status"`
	BillsExists    bool                    `json:"bills_exists"`
	IssuedDate     time.Time               `json:"issued_date"`
}

type AllExamItem struct {
	HasId
	Title    string `json:"title"`
	Priority int    `json:"priority"`
	IsActive bool   `json:"is_active"`
}

type AllTicket struct {
	HasId
	Subject string       `json:"subject"`
	Status  TicketStatus `json:"status"`
}

func ListAllUsers(ctx context.Context) ([]*AllUser, error) {
	return ListAllResource[User, AllUser](ctx, "name")
}

func ListAllBills(ctx context.Context) ([]*AllBill, error) {
	return ListAllResource[Bill, AllBill](ctx, "bill_date DESC")
}

func MapAllBills(ctx context.Context) (map[int]*AllBill, error) {
	return MapAllModel[Bill, AllBill](ctx)
}

func ListAllFinancialDocuments(ctx context.Context) ([]*AllFinancialDocument, error) {
	return ListAllResource[FinancialDocument, AllFinancialDocument](ctx, "issued_date DESC")
}

func MapAllFinancialDocuments(ctx context.Context) (map[int]*AllFinancialDocument, error) {
	return MapAllModel[FinancialDocument, AllFinancialDocument](ctx)
}

func ListAllExamItems(ctx context.Context) ([]*AllExamItem, error) {
	return ListAllResource[ExamItem, AllExamItem](ctx, "priority")
}

func ListAllTickets(ctx context.Context) ([]*AllTicket, error) {
	return ListAllResource[Ticket, AllTicket](ctx, "created_at DESC")
}
