package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"bitbucket.org/sofidex/tracing_backend/config"
	"bitbucket.org/sofidex/tracing_backend/utils"
	"bitbucket.org/sofidex/tracing_backend/workflow"
)

func main() {
	tenantID := flag.String("tenant-id", "", "Required: tenant id")
	outDir := flag.String("out", ".", "Directory receiving the wire file and the control report")
	flag.Parse()

	if strings.TrimSpace(*tenantID) == "" {
		fmt.Fprintln(os.Stderr, "--tenant-id is required")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	ctx := utils.WithTenantId(context.Background(), *tenantID)

	report, err := workflow.ExportRun(ctx, *tenantID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
		os.Exit(1)
	}
	if report.ExportedCases == 0 {
		fmt.Println("nothing to export")
		return
	}

	stamp := time.Now().Format("20060102-150405")
	wirePath := fmt.Sprintf("%s/export-%s.txt", *outDir, stamp)
	reportPath := fmt.Sprintf("%s/export-%s.xlsx", *outDir, stamp)
	if err := os.WriteFile(wirePath, report.WireData, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write wire file: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(reportPath, report.ControlReport, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write control report: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("export complete cases=%d skipped=%d wire=%s report=%s\n",
		report.ExportedCases, report.SkippedCases, wirePath, reportPath)
}
