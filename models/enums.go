package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

type UserRole string

const (
	UserRoleAdmin     UserRole = "A"
	UserRoleOwner     UserRole = "O"
	UserRoleApplicant UserRole = "P"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRoleOwner, UserRoleApplicant:
		return true
	}
	return false
}

// DisplayName returns the role label used by the dashboard login response.
func (r UserRole) DisplayName() string {
	switch r {
	case UserRoleAdmin:
		return "Admin"
	case UserRoleOwner:
		return "Owner"
	case UserRoleApplicant:
		return "Applicant"
	}
	return string(r)
}

type FinancialDocumentStatus string

const (
	FinancialDocumentStatusPending   FinancialDocumentStatus = "pending"
	FinancialDocumentStatusPaid      FinancialDocumentStatus = "paid"
	FinancialDocumentStatusCancelled FinancialDocumentStatus = "cancelled"
)

func (s FinancialDocumentStatus) Valid() bool {
	switch s {
	case FinancialDocumentStatusPending, FinancialDocumentStatusPaid, FinancialDocumentStatusCancelled:
		return true
	}
	return false
}

type BillStatus string

const (
	BillStatusPending       BillStatus = "pending"
	BillStatusPartiallyPaid BillStatus = "partially_paid"
	BillStatusPaid          BillStatus = "paid"
)

func (s BillStatus) Valid() bool {
	switch s {
	case BillStatusPending, BillStatusPartiallyPaid, BillStatusPaid:
		return true
	}
	return false
}

type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "open"
	TicketStatusAnswered TicketStatus = "answered"
	TicketStatusClosed   TicketStatus = "closed"
)

func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusAnswered, TicketStatusClosed:
		return true
	}
	return false
}

type ExamAssignmentStatus string

const (
	ExamAssignmentStatusAssigned  ExamAssignmentStatus = "assigned"
	ExamAssignmentStatusSubmitted ExamAssignmentStatus = "submitted"
	ExamAssignmentStatusGraded    ExamAssignmentStatus = "graded"
)

func (s ExamAssignmentStatus) Valid() bool {
	switch s {
	case ExamAssignmentStatusAssigned, ExamAssignmentStatusSubmitted, ExamAssignmentStatusGraded:
		return true
	}
	return false
}

type NotificationAction string

const (
	NotificationActionCreate NotificationAction = "C"
	NotificationActionUpdate NotificationAction = "U"
	NotificationActionDelete NotificationAction = "D"
)

type NotificationReferenceType string

const (
	NotificationReferenceTypeBill              NotificationReferenceType = "BILL"
	NotificationReferenceTypeFinancialDocument NotificationReferenceType = "FINANCIAL_DOCUMENT"
	NotificationReferenceTypeExamItem          NotificationReferenceType = "EXAM_ITEM"
	NotificationReferenceTypeTicket            NotificationReferenceType = "TICKET"
	NotificationReferenceTypeUser              NotificationReferenceType = "USER"
)

type MyDateString time.Time

func (t MyDateString) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(time.Time(t).Format("2006-01-02T15:04:05"))), nil
}

// Parse the string into time.Time object
func (t *MyDateString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return errors.New("MyDateString must be string")
	}

	// Parse the date string into a time.Time object
	localTime, err := time.Parse("2006-01-02T15:04:05", str)
	if err != nil {
		// tolerate plain dates
		localTime, err = time.Parse("2006-01-02", str)
		if err != nil {
			return errors.New("error parsing datetime")
		}
	}
	*t = MyDateString(localTime)

	return nil
}

func (t *MyDateString) StartOfDayUTCTime(timezone string) error {
	// do nothing if the pointer is nil
	if t == nil {
		return nil
	}

	localTime := time.Time(*t)

	if timezone == "" {
		timezone = "UTC"
	}

	// Load the location for the given timezone
	location, err := time.LoadLocation(timezone)
	if err != nil {
		fmt.Println("Error loading location:", err)
		return err
	}

	localTimeInZone := time.Date(
		localTime.Year(), localTime.Month(), localTime.Day(),
		0, 0, 0, 0,
		location,
	)

	*t = MyDateString(localTimeInZone.In(time.UTC))

	return nil
}

func (t *MyDateString) EndOfDayUTCTime(timezone string) error {
	// do nothing if the pointer is nil
	if t == nil {
		return nil
	}

	localTime := time.Time(*t)

	if timezone == "" {
		timezone = "UTC"
	}

	// Load the location for the given timezone
	location, err := time.LoadLocation(timezone)
	if err != nil {
		fmt.Println("Error loading location:", err)
		return err
	}

	localTimeInZone := time.Date(
		localTime.Year(), localTime.Month(), localTime.Day(),
		23, 59, 59, 999, // Max nanoseconds
		location,
	)

	*t = MyDateString(localTimeInZone.In(time.UTC))

	return nil
}
