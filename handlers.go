package main

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mhmd-ipx/Lead-sub001/models"
	"github.com/mhmd-ipx/Lead-sub001/models/reports"
	"github.com/shopspring/decimal"
)

func pathId(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		respondBadRequest(c, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string) *int {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

func queryStr(c *gin.Context, name string) *string {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return nil
	}
	return &v
}

func queryIntList(c *gin.Context, name string) []int {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		if n, err := strconv.Atoi(strings.TrimSpace(p)); err == nil && n > 0 {
			ids = append(ids, n)
		}
	}
	return ids
}

// --- auth ---

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func loginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "username and password are required")
		return
	}
	info, err := models.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, info)
}

func logoutHandler(c *gin.Context) {
	ok, err := models.Logout(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, ok)
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func changePasswordHandler(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "old_password and new_password are required")
		return
	}
	user, err := models.ChangePassword(c.Request.Context(), req.OldPassword, req.NewPassword)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, user)
}

// --- companies (admin) ---

func createCompanyHandler(c *gin.Context) {
	var input models.NewCompany
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}
	company, err := models.CreateCompany(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, company)
}

func listCompaniesHandler(c *gin.Context) {
	companies, err := models.GetAllCompanies(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, companies)
}

func getCompanyHandler(c *gin.Context) {
	company, err := models.GetCompanyById(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, company)
}

func updateCompanyHandler(c *gin.Context) {
	var input models.NewCompany
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}
	company, err := models.UpdateCompany(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, company)
}

type toggleActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

func toggleCompanyActiveHandler(c *gin.Context) {
	var req toggleActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "is_active is required")
		return
	}
	company, err := models.ToggleCompanyActive(c.Request.Context(), c.Param("id"), *req.IsActive)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, company)
}

// --- users ---

func createUserHandler(c *gin.Context) {
	var input models.NewUser
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}
	user, err := models.CreateUser(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, user)
}

func listUsersHandler(c *gin.Context) {
	users, err := models.GetAllUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, users)
}

func getUserHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	user, err := models.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, user)
}

func updateUserHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.User
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}
	user, err := input.UpdateUser(id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, user)
}

func deleteUserHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.User
	user, err := input.DeleteUser(id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, user)
}

// --- financial documents ---

func createFinancialDocumentHandler(c *gin.Context) {
	var input models.NewFinancialDocument
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}
	doc, err := models.CreateFinancialDocument(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, doc)
}

func getFinancialDocumentHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	doc, err := models.GetFinancialDocument(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, doc)
}

func updateFinancialDocumentHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.NewFinancialDocument
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}
	doc, err := models.UpdateFinancialDocument(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, doc)
}

func cancelFinancialDocumentHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	doc, err := models.CancelFinancialDocument(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, doc)
}

func deleteFinancialDocumentHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	doc, err := models.DeleteFinancialDocument(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, doc)
}

// Documents already picked on the client side arrive as
// ?exclude_ids=1,2,3 so the list stays consistent mid-selection.
func listEligibleDocumentsHandler(c *gin.Context) {
	docs, err := models.ListEligibleDocuments(c.Request.Context(), queryIntList(c, "exclude_ids"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, docs)
}

func paginateFinancialDocumentsHandler(c *gin.Context) {
	var status *models.FinancialDocumentStatus
	if s := queryStr(c, "status"); s != nil {
		st := models.FinancialDocumentStatus(*s)
		if !st.Valid() {
			respondBadRequest(c, "invalid status")
			return
		}
		status = &st
	}
	var billsExists *bool
	if v := queryStr(c, "bills_exists"); v != nil {
		b := strings.EqualFold(*v, "true")
		billsExists = &b
	}
	conn, err := models.PaginateFinancialDocuments(c.Request.Context(), queryInt(c, "limit"), queryStr(c, "after"), status, billsExists)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, conn)
}

// --- bills ---

func createBillHandler(c *gin.Context) {
	var input models.NewBill
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}
	bill, err := models.CreateBillFromDocuments(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, bill)
}

func getBillHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	bill, err := models.GetBill(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, bill)
}

func paginateBillsHandler(c *gin.Context) {
	var status *models.BillStatus
	if s := queryStr(c, "status"); s != nil {
		st := models.BillStatus(*s)
		if !st.Valid() {
			respondBadRequest(c, "invalid status")
			return
		}
		status = &st
	}
	conn, err := models.PaginateBills(c.Request.Context(), queryInt(c, "limit"), queryStr(c, "after"), status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, conn)
}

func updateBillHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.UpdateBillInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}
	bill, err := models.UpdateBill(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, bill)
}

type attachDocumentsRequest struct {
	DocumentIds []int `json:"document_ids" binding:"required"`
}

func attachDocumentsHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var req attachDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "document_ids is required")
		return
	}
	bill, err := models.AttachDocuments(c.Request.Context(), id, req.DocumentIds)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, bill)
}

func detachDocumentHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	docId, ok := pathId(c, "documentId")
	if !ok {
		return
	}
	bill, err := models.DetachDocument(c.Request.Context(), id, docId)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, bill)
}

type payBillRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

func payBillHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var req payBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "amount is required")
		return
	}
	bill, err := models.PayBill(c.Request.Context(), id, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, bill)
}

func deleteBillHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	bill, err := models.DeleteBill(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, bill)
}

// --- exam items ---

func createExamItemHandler(c *gin.Context) {
	var input models.NewExamItem
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}
	item, err := models.CreateExamItem(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, item)
}

func listExamItemsHandler(c *gin.Context) {
	items, err := models.ListExamItems(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, items)
}

func getExamItemHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	item, err := models.GetExamItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, item)
}

func updateExamItemHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.NewExamItem
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}
	item, err := models.UpdateExamItem(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, item)
}

func reorderExamItemsHandler(c *gin.Context) {
	var input models.ReorderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "source_index and destination_index are required")
		return
	}
	items, err := models.ReorderExamItems(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, items)
}

func deleteExamItemHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	item, err := models.DeleteExamItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, item)
}

func toggleExamItemActiveHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var req toggleActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "is_active is required")
		return
	}
	item, err := models.ToggleExamItemActive(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, item)
}

// --- exam assignments ---

func assignExamItemHandler(c *gin.Context) {
	var input models.NewExamAssignment
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}
	assignment, err := models.AssignExamItem(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, assignment)
}

func submitExamAssignmentHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	assignment, err := models.SubmitExamAssignment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, assignment)
}

type gradeRequest struct {
	Score decimal.Decimal `json:"score"`
}

func gradeExamAssignmentHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var req gradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "score is required")
		return
	}
	assignment, err := models.GradeExamAssignment(c.Request.Context(), id, req.Score)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, assignment)
}

func listExamAssignmentsHandler(c *gin.Context) {
	assignments, err := models.ListExamAssignments(c.Request.Context(), queryInt(c, "exam_item_id"), queryInt(c, "applicant_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, assignments)
}

// --- tickets ---

func createTicketHandler(c *gin.Context) {
	var input models.NewTicket
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}
	ticket, err := models.CreateTicket(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, ticket)
}

func listTicketsHandler(c *gin.Context) {
	var status *models.TicketStatus
	if s := queryStr(c, "status"); s != nil {
		st := models.TicketStatus(*s)
		if !st.Valid() {
			respondBadRequest(c, "invalid status")
			return
		}
		status = &st
	}
	tickets, err := models.ListTickets(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, tickets)
}

func getTicketHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	ticket, err := models.GetTicket(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, ticket)
}

func replyTicketHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.NewTicketReply
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "body is required")
		return
	}
	ticket, err := models.ReplyTicket(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, ticket)
}

func closeTicketHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	ticket, err := models.CloseTicket(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, ticket)
}

// --- histories ---

func listHistoriesHandler(c *gin.Context) {
	conn, err := models.PaginateHistory(c.Request.Context(),
		queryInt(c, "limit"),
		queryStr(c, "after"),
		queryStr(c, "reference_type"),
		queryInt(c, "reference_id"),
		queryInt(c, "user_id"),
		queryStr(c, "action_type"),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, conn)
}

// --- reports ---

func billSummaryReportHandler(c *gin.Context) {
	fromDate, toDate, ok := reportDateRange(c)
	if !ok {
		return
	}
	records, err := reports.GetBillSummaryReport(c.Request.Context(), queryStr(c, "status"), fromDate, toDate)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, records)
}

func billSummaryExportHandler(c *gin.Context) {
	fromDate, toDate, ok := reportDateRange(c)
	if !ok {
		return
	}
	if err := reports.ExportBillSummaryExcel(c.Request.Context(), c.Writer, queryStr(c, "status"), fromDate, toDate); err != nil {
		respondError(c, err)
	}
}

func pendingDocumentsReportHandler(c *gin.Context) {
	filterType := strings.TrimSpace(c.Query("filter_type"))
	if filterType == "" {
		filterType = "last6months"
	}
	records, err := reports.GetPendingDocumentsReport(c.Request.Context(), filterType)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, records)
}

func reportDateRange(c *gin.Context) (models.MyDateString, models.MyDateString, bool) {
	var fromDate, toDate models.MyDateString
	from := strings.TrimSpace(c.Query("from_date"))
	to := strings.TrimSpace(c.Query("to_date"))
	if from == "" || to == "" {
		respondBadRequest(c, "from_date and to_date are required")
		return fromDate, toDate, false
	}
	if err := fromDate.UnmarshalJSON([]byte(strconv.Quote(from))); err != nil {
		respondBadRequest(c, "from_date: "+err.Error())
		return fromDate, toDate, false
	}
	if err := toDate.UnmarshalJSON([]byte(strconv.Quote(to))); err != nil {
		respondBadRequest(c, "to_date: "+err.Error())
		return fromDate, toDate, false
	}
	return fromDate, toDate, true
}
