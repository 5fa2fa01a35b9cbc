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
	"bitbucket.org/sofidex/tracing_backend/workflow"
	"github.com/google/uuid"
)

func main() {
	tenantID := flag.String("tenant-id", "", "Required: tenant id")
	filePath := flag.String("file", "", "Required: path of the client file to import")
	format := flag.String("format", "fixed_width", "Input format (fixed_width/tabular/vertical)")
	resumeBatch := flag.String("resume-batch", "", "Optional: resume an interrupted batch by id")
	flag.Parse()

	if strings.TrimSpace(*tenantID) == "" {
		fmt.Fprintln(os.Stderr, "--tenant-id is required")
		os.Exit(1)
	}
	if strings.TrimSpace(*filePath) == "" {
		fmt.Fprintln(os.Stderr, "--file is required")
		os.Exit(1)
	}
	formatKind := models.FormatKind(*format)
	if !formatKind.Valid() {
		fmt.Fprintf(os.Stderr, "unknown format %q\n", *format)
		os.Exit(1)
	}

	raw, err := os.ReadFile(*filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read file: %v\n", err)
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	ctx := utils.WithTenantId(context.Background(), *tenantID)
	ctx = utils.WithCorrelationId(ctx, uuid.NewString())

	report, err := workflow.ImportFile(ctx, *tenantID, raw, workflow.ImportOptions{
		FileName:      *filePath,
		FormatKind:    formatKind,
		ResumeBatchId: *resumeBatch,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}

	for _, issue := range report.Issues {
		fmt.Fprintf(os.Stderr, "issue: %v\n", issue)
	}
	b := report.Batch
	fmt.Printf("import complete batch=%s total=%d imported=%d skipped=%d unresolved-links=%d\n",
		b.ID, b.TotalRecords, b.ImportedRecords, b.SkippedRecords, b.UnresolvedLinks)
}
