package reports

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mhmd-ipx/Lead-sub001/config"
	"github.com/mhmd-ipx/Lead-sub001/models"
	"github.com/mhmd-ipx/Lead-sub001/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type BillSummaryResponse struct {
	Status          string          `json:"Status"`
	BillCount       int             `json:"BillCount"`
	DocumentCount   int             `json:"DocumentCount"`
	TotalAmount     decimal.Decimal `json:"TotalAmount"`
	TotalPaidAmount decimal.Decimal `json:"TotalPaidAmount"`
}

func GetBillSummaryReport(ctx context.Context, status *string, fromDate models.MyDateString, toDate models.MyDateString) ([]*BillSummaryResponse, error) {

	sqlT := `
SELECT
    bills.status,
    COUNT(DISTINCT bills.id) AS bill_count,
    COUNT(fd.id) AS document_count,
    SUM(DISTINCT bills.total_amount) AS total_amount,
    SUM(DISTINCT bills.paid_amount) AS total_paid_amount
FROM
    bills
        LEFT JOIN
    financial_documents fd ON fd.bill_id = bills.id
WHERE
    bills.company_id = @companyId
        AND bills.bill_date BETWEEN @fromDate AND @toDate
	{{- if .status }} AND bills.status = @status {{- end }}
GROUP BY bills.status;
`

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}
	company, err := models.GetCompanyById(ctx, companyId)
	if err != nil {
		return nil, errors.New("company id is required")
	}
	if err := fromDate.StartOfDayUTCTime(company.Timezone); err != nil {
		return nil, err
	}
	if err := toDate.EndOfDayUTCTime(company.Timezone); err != nil {
		return nil, err
	}

	// generating sql from template
	sql, err := utils.ExecTemplate(sqlT, map[string]interface{}{
		"status": utils.DereferencePtr(status),
	})
	if err != nil {
		return nil, err
	}

	var records []*BillSummaryResponse
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"companyId": companyId,
		"fromDate":  fromDate,
		"toDate":    toDate,
		"status":    status,
	}).Scan(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (r BillSummaryResponse) GetCellValues() []interface{} {
	return []interface{}{
		r.Status,
		r.BillCount,
		r.DocumentCount,
		r.TotalAmount,
		r.TotalPaidAmount,
	}
}

// ExportBillSummaryExcel streams the report as an xlsx attachment.
func ExportBillSummaryExcel(ctx context.Context, w http.ResponseWriter, status *string, fromDate models.MyDateString, toDate models.MyDateString) error {

	data, err := GetBillSummaryReport(ctx, status, fromDate, toDate)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	if _, err := f.NewSheet("Sheet1"); err != nil {
		return err
	}

	// Add headers
	f.SetCellValue("Sheet1", "A1", "Status")
	f.SetCellValue("Sheet1", "B1", "BillCount")
	f.SetCellValue("Sheet1", "C1", "DocumentCount")
	f.SetCellValue("Sheet1", "D1", "TotalAmount")
	f.SetCellValue("Sheet1", "E1", "TotalPaidAmount")

	// Add data
	for i, d := range data {
		col := 'A'
		for _, value := range d.GetCellValues() {
			f.SetCellValue("Sheet1", string(col)+fmt.Sprint(i+2), fmt.Sprint(value))
			col++
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=billSummary.xlsx")
	if err := f.Write(w); err != nil {
		return err
	}
	return nil
}
