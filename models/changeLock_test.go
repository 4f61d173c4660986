package models_test

import (
	"context"
	"testing"

	"github.com/mhmd-ipx/Lead-sub001/models"
)

func TestCheckChangeLock_TerminalStatesRefuseChanges(t *testing.T) {
	ctx := context.Background()

	if err := (models.Bill{Status: models.BillStatusPaid}).CheckChangeLock(ctx); err == nil {
		t.Fatalf("paid bill must be locked")
	}
	if err := (models.Ticket{Status: models.TicketStatusClosed}).CheckChangeLock(ctx); err == nil {
		t.Fatalf("closed ticket must be locked")
	}
	if err := (models.ExamAssignment{Status: models.ExamAssignmentStatusGraded}).CheckChangeLock(ctx); err == nil {
		t.Fatalf("graded assignment must be locked")
	}
}

func TestCheckChangeLock_OpenStatesStayEditable(t *testing.T) {
	ctx := context.Background()

	for _, status := range []models.BillStatus{models.BillStatusPending, models.BillStatusPartiallyPaid} {
		if err := (models.Bill{Status: status}).CheckChangeLock(ctx); err != nil {
			t.Fatalf("bill %s: %v", status, err)
		}
	}
	for _, status := range []models.TicketStatus{models.TicketStatusOpen, models.TicketStatusAnswered} {
		if err := (models.Ticket{Status: status}).CheckChangeLock(ctx); err != nil {
			t.Fatalf("ticket %s: %v", status, err)
		}
	}
	for _, status := range []models.ExamAssignmentStatus{models.ExamAssignmentStatusAssigned, models.ExamAssignmentStatusSubmitted} {
		if err := (models.ExamAssignment{Status: status}).CheckChangeLock(ctx); err != nil {
			t.Fatalf("assignment %s: %v", status, err)
		}
	}
	if err := (models.ExamItem{}).CheckChangeLock(ctx); err != nil {
		t.Fatalf("exam item: %v", err)
	}
}
