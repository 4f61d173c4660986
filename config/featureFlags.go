package config

import (
	"os"
	"strings"
)

// StrictEligibilityFilter keeps the strict document eligibility rules for bill
// attachment: same company, pending status, not attached to another bill, and
// not in the caller's exclusion set. When disabled, only the company and
// attachment checks apply (legacy behaviour for old mobile clients).
//
// Set via env:
// - STRICT_ELIGIBILITY_FILTER=true (default true)
func StrictEligibilityFilter() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("STRICT_ELIGIBILITY_FILTER")))
	if v == "" {
		return true
	}
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// NotificationsEnabledFor enables the outbox notification publisher per reference type.
//
// Set via env:
// - NOTIFY_REFERENCE_TYPES="BILL,FINANCIAL_DOCUMENT,EXAM_ITEM,TICKET"
//
// Reference type keys are case-insensitive.
func NotificationsEnabledFor(refType string) bool {
	refType = strings.ToUpper(strings.TrimSpace(refType))
	if refType == "" {
		return false
	}
	raw := os.Getenv("NOTIFY_REFERENCE_TYPES")
	if strings.TrimSpace(raw) == "" {
		return true
	}
	for _, part := range strings.Split(raw, ",") {
		if strings.ToUpper(strings.TrimSpace(part)) == refType {
			return true
		}
	}
	return false
}
