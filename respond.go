package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mhmd-ipx/Lead-sub001/utils"
)

// Every endpoint answers with the same envelope so clients can branch
// on success without inspecting status codes first.
func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "message": ""})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data, "message": ""})
}

func respondError(c *gin.Context, err error) {
	status := classifyError(err)
	_ = c.Error(err)
	c.JSON(status, gin.H{"success": false, "data": nil, "message": err.Error()})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "data": nil, "message": message})
}

// classifyError maps model errors onto HTTP statuses. Anything not
// recognizably a caller mistake is reported as a server fault.
func classifyError(err error) int {
	if errors.Is(err, utils.ErrorRecordNotFound) {
		return http.StatusNotFound
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		return http.StatusNotFound
	case strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "cannot access resource owned by other company"):
		return http.StatusForbidden
	case strings.Contains(msg, "is required"),
		strings.Contains(msg, "invalid"),
		strings.Contains(msg, "duplicate"),
		strings.Contains(msg, "cannot "),
		strings.Contains(msg, "already "),
		strings.Contains(msg, "must "),
		strings.Contains(msg, "out of range"):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
