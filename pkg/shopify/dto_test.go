package shopify

import (
	"errors"
	"testing"
)

func TestParseGID(t *testing.T) {
	cases := []struct {
		gid  string
		want int64
	}{
		{"gid://shopify/Product/123456", 123456},
		{"gid://shopify/ProductVariant/987", 987},
		{"gid://shopify/InventoryItem/42", 42},
		{"no-slash", 0},
		{"gid://shopify/Product/abc", 0},
		{"", 0},
	}
	for _, tc := range cases {
		if got := ParseGID(tc.gid); got != tc.want {
			t.Errorf("ParseGID(%q) = %d, want %d", tc.gid, got, tc.want)
		}
	}
}

func TestVariantGID(t *testing.T) {
	gid := VariantGID(987)
	if gid != "gid://shopify/ProductVariant/987" {
		t.Errorf("VariantGID(987) = %q", gid)
	}
	// 与 ParseGID 互逆
	if got := ParseGID(gid); got != 987 {
		t.Errorf("ParseGID(VariantGID(987)) = %d", got)
	}
}

func TestParseMoneyToCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"12.50", 1250},
		{"12.5", 1250},
		{"0.00", 0},
		{"19.99", 1999},
		{"8", 800},
		{"", 0},
		{"abc", 0},
	}
	for _, tc := range cases {
		if got := ParseMoneyToCents(tc.in); got != tc.want {
			t.Errorf("ParseMoneyToCents(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestBatchResult(t *testing.T) {
	var r BatchResult
	r.AddSuccess(1)
	r.AddSuccess(2)
	r.AddFailure(3, errors.New("boom"))

	if len(r.Succeeded) != 2 || len(r.Failed) != 1 {
		t.Fatalf("succeeded=%d failed=%d", len(r.Succeeded), len(r.Failed))
	}
	if !r.HasFailures() {
		t.Error("HasFailures 应为 true")
	}
	if r.Failed[0].ID != 3 || r.Failed[0].Reason != "boom" {
		t.Errorf("failure = %+v", r.Failed[0])
	}
	if r.Summary() == "" {
		t.Error("Summary 不应为空")
	}
}
