package models

import (
	"context"
	"errors"
	"time"

	"github.com/mhmd-ipx/Lead-sub001/config"
	"github.com/mhmd-ipx/Lead-sub001/utils"
	"github.com/shopspring/decimal"
)

type ExamAssignment struct {
	ID          int                  `gorm:"primary_key" json:"id"`
	CompanyId   string               `gorm:"index;not null" json:"company_id" binding:"required"`
	ExamItemId  int                  `gorm:"index;not null" json:"exam_item_id" binding:"required"`
	ApplicantId int                  `gorm:"index;not null" json:"applicant_id" binding:"required"`
	Status      ExamAssignmentStatus `gorm:"type:enum('assigned', 'submitted', 'graded');default:assigned" json:"status"`
	Score       decimal.Decimal      `gorm:"type:decimal(5,2);default:0" json:"score"`
	SubmittedAt *time.Time           `gorm:"default:null" json:"submitted_at"`
	GradedAt    *time.Time           `gorm:"default:null" json:"graded_at"`
	CreatedAt   time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewExamAssignment struct {
	ExamItemId  int `json:"exam_item_id" binding:"required"`
	ApplicantId int `json:"applicant_id" binding:"required"`
}

func (a ExamAssignment) GetId() int {
	return a.ID
}

func (a ExamAssignment) GetCompanyId() string {
	return a.CompanyId
}

// a graded assignment is immutable
func (a ExamAssignment) CheckChangeLock(ctx context.Context) error {
	if a.Status == ExamAssignmentStatusGraded {
		return errors.New("cannot change a graded assignment")
	}
	return nil
}

func (input NewExamAssignment) validate(ctx context.Context, companyId string) error {
	if err := utils.ValidateResourceId[ExamItem](ctx, companyId, input.ExamItemId); err != nil {
		return errors.New("exam item not found")
	}

	db := config.GetDB()
	var applicant User
	if err := db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyId, input.ApplicantId).
		First(&applicant).Error; err != nil {
		return errors.New("applicant not found")
	}
	if applicant.Role != UserRoleApplicant {
		return errors.New("user is not an applicant")
	}
	return nil
}

func AssignExamItem(ctx context.Context, input *NewExamAssignment) (*ExamAssignment, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	if err := input.validate(ctx, companyId); err != nil {
		return nil, err
	}

	db := config.GetDB()

	// one open assignment per applicant per item
	var count int64
	if err := db.WithContext(ctx).Model(&ExamAssignment{}).
		Where("exam_item_id = ? AND applicant_id = ? AND status <> ?",
			input.ExamItemId, input.ApplicantId, ExamAssignmentStatusGraded).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("applicant already has an open assignment for this item")
	}

	assignment := ExamAssignment{
		CompanyId:   companyId,
		ExamItemId:  input.ExamItemId,
		ApplicantId: input.ApplicantId,
		Status:      ExamAssignmentStatusAssigned,
	}
	if err := db.WithContext(ctx).Create(&assignment).Error; err != nil {
		return nil, err
	}

	return &assignment, nil
}

// SubmitExamAssignment is called by the applicant, ownership is enforced
// against the session user rather than the company alone.
func SubmitExamAssignment(ctx context.Context, id int) (*ExamAssignment, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}

	assignment, err := utils.FetchModelForChange[ExamAssignment](ctx, companyId, id)
	if err != nil {
		return nil, err
	}
	if assignment.ApplicantId != userId {
		return nil, errors.New("unauthorized")
	}
	if assignment.Status != ExamAssignmentStatusAssigned {
		return nil, errors.New("assignment is not open")
	}

	now := time.Now()
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(assignment).Updates(map[string]interface{}{
		"Status":      ExamAssignmentStatusSubmitted,
		"SubmittedAt": &now,
	}).Error; err != nil {
		return nil, err
	}

	assignment.Status = ExamAssignmentStatusSubmitted
	assignment.SubmittedAt = &now
	return assignment, nil
}

func GradeExamAssignment(ctx context.Context, id int, score decimal.Decimal) (*ExamAssignment, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	if score.IsNegative() || score.GreaterThan(decimal.NewFromInt(100)) {
		return nil, errors.New("score must be between 0 and 100")
	}

	assignment, err := utils.FetchModelForChange[ExamAssignment](ctx, companyId, id)
	if err != nil {
		return nil, err
	}
	if assignment.Status != ExamAssignmentStatusSubmitted {
		return nil, errors.New("assignment has not been submitted")
	}

	now := time.Now()
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(assignment).Updates(map[string]interface{}{
		"Status":   ExamAssignmentStatusGraded,
		"Score":    score,
		"GradedAt": &now,
	}).Error; err != nil {
		return nil, err
	}

	assignment.Status = ExamAssignmentStatusGraded
	assignment.Score = score
	assignment.GradedAt = &now
	return assignment, nil
}

func ListExamAssignments(ctx context.Context, examItemId *int, applicantId *int) ([]*ExamAssignment, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("company_id = ?", companyId)
	if examItemId != nil && *examItemId > 0 {
		dbCtx = dbCtx.Where("exam_item_id = ?", *examItemId)
	}
	if applicantId != nil && *applicantId > 0 {
		dbCtx = dbCtx.Where("applicant_id = ?", *applicantId)
	}

	var results []*ExamAssignment
	if err := dbCtx.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
