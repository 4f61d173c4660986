package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mhmd-ipx/Lead-sub001/config"
	"github.com/mhmd-ipx/Lead-sub001/utils"
	"gorm.io/gorm"
)

type Company struct {
	ID        uuid.UUID `gorm:"primary_key" json:"id"`
	LogoUrl   string    `json:"logo_url"`
	Name      string    `gorm:"index;size:100;not null" json:"name" binding:"required"`
	Email     string    `gorm:"size:255" json:"email"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Website   string    `gorm:"size:255" json:"website"`
	About     string    `gorm:"type:text" json:"about"`
	Address   string    `gorm:"type:text" json:"address"`
	Country   string    `gorm:"size:100"  json:"country"`
	City      string    `gorm:"size:100"  json:"city"`
	Timezone  string    `gorm:"size:50" json:"timezone"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCompany struct {
	LogoUrl  string `json:"logo_url"`
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone"`
	Website  string `json:"website"`
	About    string `json:"about"`
	Address  string `json:"address"`
	Country  string `json:"country"`
	City     string `json:"city"`
	Timezone string `json:"timezone"`
}

func (company *Company) StoreRedis() error {
	return config.SetRedisObject("Company:"+fmt.Sprint(company.ID), company, 0)
}

func (company *Company) RemoveRedis() error {
	return config.RemoveRedisKey("Company:" + fmt.Sprint(company.ID))
}

func (input *NewCompany) validate(ctx context.Context, id string) error {
	// name
	if err := utils.ValidateUnique[Company](ctx, "", "name", input.Name, id); err != nil {
		return err
	}
	// email
	if err := utils.ValidateUnique[Company](ctx, "", "email", input.Email, id); err != nil {
		return err
	}
	// phone
	if input.Phone != "" {
		if err := utils.ValidateUnique[Company](ctx, "", "phone", input.Phone, id); err != nil {
			return err
		}
	}
	return nil
}

func CreateCompany(ctx context.Context, input *NewCompany) (*Company, error) {
	// only admin have access

	// When creating a company,
	// - create the 'Owner' user with a temporary password
	if err := input.validate(ctx, ""); err != nil {
		return nil, err
	}
	db := config.GetDB()

	tx := db.Begin()

	CID := uuid.New()
	timezone := "UTC"
	if input.Timezone != "" {
		timezone = input.Timezone
	}

	company := Company{
		ID:       CID,
		LogoUrl:  input.LogoUrl,
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Website:  input.Website,
		About:    input.About,
		Address:  input.Address,
		Country:  input.Country,
		City:     input.City,
		Timezone: timezone,
		IsActive: utils.NewTrue(),
	}

	// create company
	err := tx.WithContext(ctx).Create(&company).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	companyId := company.ID.String()
	ctx = context.WithValue(ctx, utils.ContextKeyCompanyId, companyId)

	if _, err := createDefaultOwner(tx, ctx, companyId, company.Email, company.Name); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err = tx.Commit().Error; err != nil {
		return nil, err
	}

	// caching
	if err := utils.ClearRedisAdmin[AllCompany](); err != nil {
		return nil, err
	}

	return &company, nil
}

// the owner logs in with the company email and must change the password
func createDefaultOwner(tx *gorm.DB, ctx context.Context, companyId string, email string, name string) (*User, error) {

	hashedPassword, err := utils.HashPassword(uuid.NewString())
	if err != nil {
		return nil, err
	}

	owner := User{
		CompanyId: companyId,
		Username:  email,
		Name:      name + " Owner",
		Email:     utils.NilIfEmpty(email),
		Password:  string(hashedPassword),
		IsActive:  utils.NewTrue(),
		Role:      UserRoleOwner,
	}
	if err := tx.WithContext(ctx).Create(&owner).Error; err != nil {
		return nil, err
	}
	return &owner, nil
}

// GetCompanyById is used by every request path, cache aggressively
func GetCompanyById(ctx context.Context, id string) (*Company, error) {

	var company Company
	exists, err := config.GetRedisObject("Company:"+id, &company)
	if err != nil {
		return nil, err
	}
	if !exists {
		db := config.GetDB()
		if err := db.WithContext(ctx).Model(&Company{}).Where("id = ?", id).First(&company).Error; err != nil {
			return nil, utils.ErrorRecordNotFound
		}
		if err := company.StoreRedis(); err != nil {
			return nil, err
		}
	}
	return &company, nil
}

func GetAllCompanies(ctx context.Context) ([]*AllCompany, error) {
	return ListAllAdmin[Company, AllCompany](ctx,
		"id", "name", "email", "is_active", "address", "country", "city")
}

func UpdateCompany(ctx context.Context, id string, input *NewCompany) (*Company, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var company Company
	if err := db.WithContext(ctx).Model(&Company{}).Where("id = ?", id).First(&company).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	if err := db.WithContext(ctx).Model(&company).Updates(map[string]interface{}{
		"LogoUrl":  input.LogoUrl,
		"Name":     input.Name,
		"Email":    input.Email,
		"Phone":    input.Phone,
		"Website":  input.Website,
		"About":    input.About,
		"Address":  input.Address,
		"Country":  input.Country,
		"City":     input.City,
		"Timezone": input.Timezone,
	}).Error; err != nil {
		return nil, err
	}

	if err := company.RemoveRedis(); err != nil {
		return nil, err
	}
	if err := utils.ClearRedisAdmin[AllCompany](); err != nil {
		return nil, err
	}
	return &company, nil
}

// suspending a company locks out its users on the next session check
func ToggleCompanyActive(ctx context.Context, id string, isActive bool) (*Company, error) {

	db := config.GetDB()
	var company Company
	if err := db.WithContext(ctx).Model(&Company{}).Where("id = ?", id).First(&company).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	if err := db.WithContext(ctx).Model(&company).UpdateColumn("IsActive", isActive).Error; err != nil {
		return nil, err
	}

	if err := company.RemoveRedis(); err != nil {
		return nil, err
	}
	if err := utils.ClearRedisAdmin[AllCompany](); err != nil {
		return nil, err
	}
	return &company, nil
}

// used by the company guard when a request carries no company claim
func ValidateCompanyActive(ctx context.Context, id string) error {
	company, err := GetCompanyById(ctx, id)
	if err != nil {
		return err
	}
	if company.IsActive == nil || !*company.IsActive {
		return errors.New("company is suspended")
	}
	return nil
}
