package main

import (
	"github.com/gin-gonic/gin"
	"github.com/mhmd-ipx/Lead-sub001/config"
	"github.com/mhmd-ipx/Lead-sub001/models"
	"github.com/mhmd-ipx/Lead-sub001/utils"
	"github.com/mhmd-ipx/Lead-sub001/workflow"
)

// Ops tooling, admin only. Mounted under /internal/ops.

func outboxStatusHandler(c *gin.Context) {
	counts, err := models.GetOutboxStatusCounts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, counts)
}

type revertDeadRequest struct {
	RecordIds []int `json:"record_ids" binding:"required"`
}

// Requeues DEAD outbox records after the underlying fault is fixed.
func outboxRevertDeadHandler(c *gin.Context) {
	var req revertDeadRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.RecordIds) == 0 {
		respondBadRequest(c, "record_ids is required")
		return
	}
	reverted, err := models.RevertDeadNotifications(c.Request.Context(), req.RecordIds)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"reverted": reverted})
}

type billTotalsCheckRequest struct {
	CompanyId string `json:"company_id"`
}

func billTotalsCheckHandler(c *gin.Context) {
	var req billTotalsCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request")
		return
	}
	// The sweep runs across companies, so the per-request company scope
	// guard has to be lifted.
	ctx := utils.SetSkipCompanyScopeInContext(c.Request.Context(), true)
	result, err := workflow.RunBillTotalsCheck(ctx, config.GetDB(), config.GetLogger(), req.CompanyId)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}
