package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"bitbucket.org/sofidex/tracing_backend/config"
	"bitbucket.org/sofidex/tracing_backend/models"
	"bitbucket.org/sofidex/tracing_backend/utils"
)

// Marks a billing entry paid, freezing it against recomputation. Serialized
// per case so a concurrent contestation reversal cannot interleave.
func main() {
	tenantID := flag.String("tenant-id", "", "Required: tenant id")
	caseID := flag.Int("case-id", 0, "Required: case id the entry belongs to")
	entryID := flag.Int("entry-id", 0, "Required: billing entry id")
	flag.Parse()

	if strings.TrimSpace(*tenantID) == "" || *caseID <= 0 || *entryID <= 0 {
		fmt.Fprintln(os.Stderr, "--tenant-id, --case-id and --entry-id are required")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	ctx := utils.WithTenantId(context.Background(), *tenantID)

	release, err := utils.CaseLock(ctx, *tenantID, *caseID, "cmd", "mark-paid")
	if err != nil {
		fmt.Fprintf(os.Stderr, "lock case: %v\n", err)
		os.Exit(1)
	}
	defer release()

	if err := models.MarkBillingEntryPaid(ctx, *tenantID, *entryID); err != nil {
		fmt.Fprintf(os.Stderr, "mark paid: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("billing entry %d marked paid\n", *entryID)
}
