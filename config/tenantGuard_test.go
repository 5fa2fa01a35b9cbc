package config

import (
	"context"
	"testing"

	"bitbucket.org/sofidex/tracing_backend/appctx"
)

func TestShouldBypassTenantScope(t *testing.T) {
	ctx := context.Background()
	if shouldBypassTenantScope(ctx) {
		t.Fatal("bare context must not bypass tenant scoping")
	}
	if !shouldBypassTenantScope(appctx.Set(ctx, appctx.ContextKeySkipTenantScope, true)) {
		t.Fatal("skip flag ignored")
	}
	if !shouldBypassTenantScope(appctx.Set(ctx, appctx.ContextKeyIsAdmin, true)) {
		t.Fatal("admin flag ignored")
	}
	if shouldBypassTenantScope(appctx.Set(ctx, appctx.ContextKeyIsAdmin, false)) {
		t.Fatal("false admin flag must not bypass")
	}
	// a flag stored with the wrong type never bypasses
	if shouldBypassTenantScope(appctx.Set(ctx, appctx.ContextKeyIsAdmin, "true")) {
		t.Fatal("string-typed flag must not bypass")
	}
}

func TestTenantIdFromContext(t *testing.T) {
	ctx := context.Background()
	if got := tenantIdFromContext(ctx); got != "" {
		t.Fatalf("tenant id = %q, want empty", got)
	}
	ctx = appctx.Set(ctx, appctx.ContextKeyTenantId, "tenant-1")
	if got := tenantIdFromContext(ctx); got != "tenant-1" {
		t.Fatalf("tenant id = %q, want tenant-1", got)
	}
}
