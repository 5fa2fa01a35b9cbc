package workflow

import (
	"errors"
	"testing"
	"time"

	"bitbucket.org/sofidex/tracing_backend/models"
	"github.com/shopspring/decimal"
)

func fixedTariff(s string) func() (decimal.Decimal, error) {
	return func() (decimal.Decimal, error) { return decimal.RequireFromString(s), nil }
}

func unresolvedTariff() (decimal.Decimal, error) {
	return decimal.Zero, ErrTariffUnresolved
}

func TestWithinReinstatementWindow(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		daysAfter int
		want      bool
	}{
		{0, true},
		{14, true},
		{15, true}, // deadline day itself is inside
		{16, false},
		{40, false},
	}
	for _, c := range cases {
		at := base.AddDate(0, 0, c.daysAfter)
		if got := WithinReinstatementWindow(&base, at); got != c.want {
			t.Fatalf("day +%d: within = %v, want %v", c.daysAfter, got, c.want)
		}
	}
	if WithinReinstatementWindow(nil, base) {
		t.Fatal("missing result date treated as inside the window")
	}
}

func TestContestationUpheldReversesOriginalCharge(t *testing.T) {
	out, err := ComputeContestationOutcome(models.ResultCodeNegative,
		decimal.RequireFromString("25.00"), nil, time.Now(), fixedTariff("0"))
	if err != nil {
		t.Fatalf("ComputeContestationOutcome: %v", err)
	}
	if out.ReversalAmount.StringFixed(2) != "-25.00" {
		t.Fatalf("reversal = %s, want -25.00", out.ReversalAmount)
	}
	if !out.Final.IsZero() || !out.Applied.IsZero() || !out.Reinstatement.IsZero() {
		t.Fatalf("contestation entry not zero: %+v", out)
	}
}

func TestContestationUpheldOnUnbilledOriginal(t *testing.T) {
	out, err := ComputeContestationOutcome(models.ResultCodeNegative,
		decimal.Zero, nil, time.Now(), fixedTariff("0"))
	if err != nil {
		t.Fatalf("ComputeContestationOutcome: %v", err)
	}
	if !out.ReversalAmount.IsZero() {
		t.Fatalf("reversal = %s, want none for a zero original charge", out.ReversalAmount)
	}
}

func TestContestationConfirmedInsideWindowReinstates(t *testing.T) {
	resultDate := time.Now().AddDate(0, 0, -10)
	original := decimal.RequireFromString("25.00")

	out, err := ComputeContestationOutcome(models.ResultCodeConfirmed,
		original, &resultDate, time.Now(), unresolvedTariff)
	if err != nil {
		t.Fatalf("ComputeContestationOutcome: %v", err)
	}
	if out.Reinstatement.StringFixed(2) != "25.00" {
		t.Fatalf("reinstatement = %s, want the original charge", out.Reinstatement)
	}
	if out.Final.StringFixed(2) != "25.00" {
		t.Fatalf("final = %s, want 25.00", out.Final)
	}
	if out.ReversalAmount.StringFixed(2) != "-25.00" {
		t.Fatalf("reversal = %s, want -25.00", out.ReversalAmount)
	}
	// net effect: reversal + reinstatement cancel out, nothing extra billed
	if !out.ReversalAmount.Add(out.Final).IsZero() {
		t.Fatal("confirmed contestation raised an additional charge")
	}
}

func TestContestationConfirmedOutsideWindowRecomputes(t *testing.T) {
	resultDate := time.Now().AddDate(0, 0, -30)
	original := decimal.RequireFromString("25.00")

	out, err := ComputeContestationOutcome(models.ResultCodeConfirmed,
		original, &resultDate, time.Now(), fixedTariff("15.00"))
	if err != nil {
		t.Fatalf("ComputeContestationOutcome: %v", err)
	}
	if out.ReversalAmount.StringFixed(2) != "-10.00" {
		t.Fatalf("reversal = %s, want the -10.00 difference", out.ReversalAmount)
	}
	if !out.Final.IsZero() {
		t.Fatalf("final = %s, want 0", out.Final)
	}
}

func TestReducedScopeLowersCharge(t *testing.T) {
	original := decimal.RequireFromString("25.00")

	out, err := ComputeContestationOutcome(models.ResultCodePositive,
		original, nil, time.Now(), fixedTariff("15.00"))
	if err != nil {
		t.Fatalf("ComputeContestationOutcome: %v", err)
	}
	if out.ReversalAmount.StringFixed(2) != "-10.00" {
		t.Fatalf("reversal = %s, want -10.00", out.ReversalAmount)
	}

	// a recomputed tariff at or above the original never raises the charge
	out, err = ComputeContestationOutcome(models.ResultCodePositive,
		original, nil, time.Now(), fixedTariff("30.00"))
	if err != nil {
		t.Fatalf("ComputeContestationOutcome: %v", err)
	}
	if !out.ReversalAmount.IsZero() {
		t.Fatalf("reversal = %s, want none", out.ReversalAmount)
	}
	if !out.Final.IsZero() {
		t.Fatalf("final = %s, want 0", out.Final)
	}
}

func TestReducedScopeUnresolvedTariffSurfaces(t *testing.T) {
	_, err := ComputeContestationOutcome(models.ResultCodePositive,
		decimal.RequireFromString("25.00"), nil, time.Now(), unresolvedTariff)
	if !errors.Is(err, ErrTariffUnresolved) {
		t.Fatalf("err = %v, want ErrTariffUnresolved", err)
	}
}

func TestBuildReversalEntryMirrorsOriginal(t *testing.T) {
	originalEntry := &models.BillingEntry{
		ID:          42,
		TenantId:    "tenant-1",
		CaseId:      7,
		FinalAmount: decimal.RequireFromString("25.00"),
	}
	rev := buildReversalEntry(originalEntry, decimal.RequireFromString("-25.00"), "contestation upheld")
	if rev.CaseId != 7 || rev.TenantId != "tenant-1" {
		t.Fatalf("reversal posted to the wrong case: %+v", rev)
	}
	if rev.ReversesEntryId == nil || *rev.ReversesEntryId != 42 {
		t.Fatalf("ReversesEntryId = %v", rev.ReversesEntryId)
	}
	if rev.IsReversal == nil || !*rev.IsReversal {
		t.Fatal("IsReversal not set")
	}
	if !rev.FinalAmount.Add(originalEntry.FinalAmount).IsZero() {
		t.Fatal("reversal does not sum to zero with the original entry")
	}
	if err := rev.CheckConsistency(); err != nil {
		t.Fatalf("CheckConsistency: %v", err)
	}
}

func TestBillingEntryConsistencyInvariant(t *testing.T) {
	entry := models.BillingEntry{
		AppliedAmount:       decimal.RequireFromString("25.00"),
		PriorAmountReversal: decimal.RequireFromString("-5.00"),
		ReinstatementAmount: decimal.Zero,
		Discount:            decimal.RequireFromString("-2.00"),
		FinalAmount:         decimal.RequireFromString("18.00"),
	}
	if err := entry.CheckConsistency(); err != nil {
		t.Fatalf("CheckConsistency: %v", err)
	}
	entry.FinalAmount = decimal.RequireFromString("20.00")
	if err := entry.CheckConsistency(); err == nil {
		t.Fatal("inconsistent entry accepted")
	}
}
