package workflow

import (
	"context"

	"github.com/mhmd-ipx/Lead-sub001/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("dashboard-backend/workflow")

type BillTotalsCheckResult struct {
	BillsChecked  int `json:"bills_checked"`
	TotalsFixed   int `json:"totals_fixed"`
	FlagsFixed    int `json:"flags_fixed"`
	OrphanedLinks int `json:"orphaned_links"`
}

// RunBillTotalsCheck sweeps a company's bills and repairs drift between
// the stored total and the sum of the attached documents. Intended to be
// run on a schedule (nightly) or via an admin trigger.
func RunBillTotalsCheck(ctx context.Context, db *gorm.DB, logger *logrus.Logger, companyId string) (*BillTotalsCheckResult, error) {

	ctx, span := tracer.Start(ctx, "BillTotalsCheck")
	defer span.End()
	span.SetAttributes(attribute.String("company_id", companyId))

	result := &BillTotalsCheckResult{}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var bills []*models.Bill
		dbCtx := tx.Preload("Items")
		if companyId != "" {
			dbCtx = dbCtx.Where("company_id = ?", companyId)
		}
		if err := dbCtx.Find(&bills).Error; err != nil {
			return err
		}

		for _, bill := range bills {
			result.BillsChecked++

			total := decimal.Zero
			for _, doc := range bill.Items {
				total = total.Add(doc.Amount)
			}
			if !total.Equal(bill.TotalAmount) {
				if err := tx.Model(&models.Bill{}).
					Where("id = ?", bill.ID).
					UpdateColumn("total_amount", total).Error; err != nil {
					return err
				}
				result.TotalsFixed++
				if logger != nil {
					logger.WithFields(logrus.Fields{
						"field":      "BillTotalsCheck",
						"company_id": bill.CompanyId,
						"bill_id":    bill.ID,
						"stored":     bill.TotalAmount.String(),
						"computed":   total.String(),
					}).Warn("bill total drift repaired")
				}
			}
		}

		// documents flagged as billed but pointing at no bill
		orphaned := tx.Model(&models.FinancialDocument{}).
			Where("bills_exists = ? AND bill_id IS NULL", true)
		if companyId != "" {
			orphaned = orphaned.Where("company_id = ?", companyId)
		}
		res := orphaned.Update("bills_exists", false)
		if res.Error != nil {
			return res.Error
		}
		result.FlagsFixed = int(res.RowsAffected)

		// documents pointing at a deleted bill
		dangling := tx.Model(&models.FinancialDocument{}).
			Where("bill_id IS NOT NULL AND bill_id NOT IN (?)",
				tx.Session(&gorm.Session{NewDB: true}).Model(&models.Bill{}).Select("id"))
		if companyId != "" {
			dangling = dangling.Where("company_id = ?", companyId)
		}
		res = dangling.Updates(map[string]interface{}{
			"bills_exists": false,
			"bill_id":      nil,
		})
		if res.Error != nil {
			return res.Error
		}
		result.OrphanedLinks = int(res.RowsAffected)

		return nil
	})
	if err != nil {
		return nil, err
	}

	if logger != nil {
		logger.WithFields(logrus.Fields{
			"field":          "BillTotalsCheck",
			"company_id":     companyId,
			"bills_checked":  result.BillsChecked,
			"totals_fixed":   result.TotalsFixed,
			"flags_fixed":    result.FlagsFixed,
			"orphaned_links": result.OrphanedLinks,
		}).Info("bill totals check completed")
	}

	return result, nil
}
