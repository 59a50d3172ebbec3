package shared

import (
	"testing"
	"time"
)

func TestParseDateAcceptsBothLayouts(t *testing.T) {
	if _, err := ParseDate("2025-06-29"); err != nil {
		t.Fatalf("date-only layout rejected: %v", err)
	}
	if _, err := ParseDate("2025-06-29T10:30:00Z"); err != nil {
		t.Fatalf("RFC3339 layout rejected: %v", err)
	}
	if _, err := ParseDate("29/06/2025"); err == nil {
		t.Fatal("unknown layout accepted")
	}
	if _, err := ParseDate("  "); err == nil {
		t.Fatal("blank date accepted")
	}
}

func TestParseOptionalDate(t *testing.T) {
	got, err := ParseOptionalDate("")
	if err != nil || got != nil {
		t.Fatalf("empty value should parse to nil, got %v / %v", got, err)
	}
	got, err = ParseOptionalDate("2025-06-29")
	if err != nil || got == nil {
		t.Fatalf("valid value should parse, got %v / %v", got, err)
	}
}

func TestValidatorCollectsSortedIssues(t *testing.T) {
	v := NewValidator()
	v.Required("title", "", "title is required")
	v.Enum("size", "enormous", []string{"easy", "medium", "difficult"}, "unknown size")
	v.MinLength("reason", "short", 10, "too short")

	issues := v.Issues()
	if len(issues) != 3 {
		t.Fatalf("expected 3 issues, got %d", len(issues))
	}
	for i := 1; i < len(issues); i++ {
		if issues[i-1].Field > issues[i].Field {
			t.Fatalf("issues not sorted by field: %+v", issues)
		}
	}
}

func TestValidatorEnumIgnoresEmptyAndCase(t *testing.T) {
	v := NewValidator()
	v.Enum("status", "", []string{"new"}, "unknown status")
	v.Enum("status", "NEW", []string{"new"}, "unknown status")
	if v.HasIssues() {
		t.Fatalf("empty and case-folded values should pass, got %+v", v.Issues())
	}
}

func TestValidatorDateOrder(t *testing.T) {
	v := NewValidator()
	start := time.Date(2025, 6, 29, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)
	v.DateOrder("from", start, "to", end)
	if !v.HasIssues() {
		t.Fatal("reversed range should be flagged")
	}

	v = NewValidator()
	v.DateOrder("from", start, "to", start.AddDate(0, 0, 7))
	if v.HasIssues() {
		t.Fatalf("valid range flagged: %+v", v.Issues())
	}
}
