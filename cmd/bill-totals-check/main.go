// bill-totals-check recomputes every bill's total from its attached
// financial documents and repairs drift, then clears orphaned
// bills_exists flags. Safe to run repeatedly.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/bill-totals-check [companyId]
//
// Without an argument the sweep covers all companies.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mhmd-ipx/Lead-sub001/config"
	"github.com/mhmd-ipx/Lead-sub001/utils"
	"github.com/mhmd-ipx/Lead-sub001/workflow"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	companyId := ""
	if len(os.Args) > 1 {
		companyId = os.Args[1]
	}

	ctx = utils.SetUserIdInContext(ctx, 0)
	ctx = utils.SetUserNameInContext(ctx, "System")
	ctx = utils.SetSkipCompanyScopeInContext(ctx, true)

	result, err := workflow.RunBillTotalsCheck(ctx, db, config.GetLogger(), companyId)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bill totals check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("bills checked: %d\n", result.BillsChecked)
	fmt.Printf("totals fixed: %d\n", result.TotalsFixed)
	fmt.Printf("flags fixed: %d\n", result.FlagsFixed)
	fmt.Printf("orphaned links cleared: %d\n", result.OrphanedLinks)
}
