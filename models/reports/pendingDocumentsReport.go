package reports

import (
	"context"
	"errors"
	"time"

	"github.com/mhmd-ipx/Lead-sub001/config"
	"github.com/mhmd-ipx/Lead-sub001/utils"
	"github.com/shopspring/decimal"
)

type PendingDocumentsResponse struct {
	Month         string          `json:"Month"`
	DocumentCount int             `json:"DocumentCount"`
	TotalAmount   decimal.Decimal `json:"TotalAmount"`
}

// GetPendingDocumentsReport buckets unbilled pending documents by month.
// filterType is one of last6months, last12months, thisMonth, previousMonth.
func GetPendingDocumentsReport(ctx context.Context, filterType string) ([]*PendingDocumentsResponse, error) {

	sql := `
SELECT
    DATE_FORMAT(issued_date, '%Y-%m') AS month,
    COUNT(id) AS document_count,
    SUM(amount) AS total_amount
FROM
    financial_documents
WHERE
    company_id = @companyId
        AND status = 'pending'
        AND bills_exists = FALSE
        AND issued_date BETWEEN @fromDate AND @toDate
GROUP BY DATE_FORMAT(issued_date, '%Y-%m')
ORDER BY month;
`

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	fromDate, toDate, err := utils.GetReportDateRange(filterType)
	if err != nil {
		return nil, err
	}

	var records []*PendingDocumentsResponse
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"companyId": companyId,
		"fromDate":  fromDate.Format(time.DateTime),
		"toDate":    toDate.Format(time.DateTime),
	}).Scan(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}
