package service

import (
	"testing"

	"orderpro_v1_202608/internal/model"
)

// ==================== 描述串格式化 ====================

func TestFormatItemDescriptor(t *testing.T) {
	cases := []struct {
		sku, color, size string
		want             string
	}{
		{"CREATOR", "Terra Cotta", "M", "CREATOR - Heritage Brown - M"},
		{"CREATOR", "Noir", "L", "CREATOR - Black - L"},
		{"MUG-01", "", "", "MUG-01"},
		{"CREATOR", "", "XL", "CREATOR - XL"},
	}
	for _, tc := range cases {
		if got := FormatItemDescriptor(tc.sku, tc.color, tc.size); got != tc.want {
			t.Errorf("FormatItemDescriptor(%q, %q, %q) = %q, want %q",
				tc.sku, tc.color, tc.size, got, tc.want)
		}
	}
}

// ==================== substring 匹配 ====================

func TestMatchRules(t *testing.T) {
	rules := []model.PriceRule{
		{ID: 1, RuleType: model.RuleTypeSubstring, SearchString: "CREATOR", PriceCents: 900, Active: true},
		{ID: 2, RuleType: model.RuleTypeSubstring, SearchString: "heritage brown", PriceCents: 300, Active: true},
		{ID: 3, RuleType: model.RuleTypeSubstring, SearchString: "XXL", PriceCents: 200, Active: true},
		{ID: 4, RuleType: model.RuleTypeSubstring, SearchString: "CREATOR", PriceCents: 100, Active: false},
	}

	matched := MatchRules("CREATOR - Heritage Brown - M", rules)
	if len(matched) != 2 {
		t.Fatalf("命中 %d 条规则, want 2", len(matched))
	}
	if matched[0].ID != 1 || matched[1].ID != 2 {
		t.Errorf("命中顺序 = [%d, %d], want [1, 2]", matched[0].ID, matched[1].ID)
	}
}

func TestCalculateItemPrice_Additive(t *testing.T) {
	rules := []model.PriceRule{
		{RuleType: model.RuleTypeSubstring, SearchString: "CREATOR - Heritage Brown - M", PriceCents: 1200, Active: true},
		{RuleType: model.RuleTypeSubstring, SearchString: "Heritage Brown", PriceCents: 300, Active: true},
	}

	// 两条规则同时命中，金额叠加
	got := CalculateItemPrice("CREATOR - Heritage Brown - M", rules)
	if got != 1500 {
		t.Errorf("price = %d, want 1500", got)
	}
}

func TestCalculateItemPrice_NoMatch(t *testing.T) {
	rules := []model.PriceRule{
		{RuleType: model.RuleTypeSubstring, SearchString: "HOODIE", PriceCents: 2000, Active: true},
	}
	if got := CalculateItemPrice("CREATOR - Black - M", rules); got != 0 {
		t.Errorf("零命中应该返回 0, got %d", got)
	}
}

func TestCalculateItemPrice_CaseInsensitive(t *testing.T) {
	rules := []model.PriceRule{
		{RuleType: model.RuleTypeSubstring, SearchString: "creator", PriceCents: 800, Active: true},
	}
	if got := CalculateItemPrice("CREATOR - Black - M", rules); got != 800 {
		t.Errorf("匹配应该不区分大小写, got %d", got)
	}
}

// ==================== 结构化匹配 ====================

func TestCalculateStructuredPrice_Metafield(t *testing.T) {
	rules := []model.PriceRule{
		{
			RuleType:           model.RuleTypeMetafield,
			MetafieldNamespace: "custom",
			MetafieldKey:       "fabric",
			MetafieldValue:     "organic",
			PriceCents:         1000,
			ModifierCents:      250,
			Active:             true,
		},
	}
	attrs := ItemAttributes{
		Metafields: map[string]string{"custom.fabric": "organic"},
	}

	total, matched := CalculateStructuredPrice(attrs, rules)
	if total != 1250 {
		t.Errorf("total = %d, want 1250", total)
	}
	if len(matched) != 1 {
		t.Errorf("命中 %d 条, want 1", len(matched))
	}
}

func TestCalculateStructuredPrice_Option(t *testing.T) {
	rules := []model.PriceRule{
		{
			RuleType:    model.RuleTypeOption,
			OptionName:  "Taille",
			OptionValue: "XXL",
			PriceCents:  200,
			Active:      true,
		},
	}
	attrs := ItemAttributes{
		Options: []SelectedOption{{Name: "taille", Value: "xxl"}},
	}

	// option 匹配不区分大小写
	total, _ := CalculateStructuredPrice(attrs, rules)
	if total != 200 {
		t.Errorf("total = %d, want 200", total)
	}
}

func TestCalculateStructuredPrice_NoAttributes(t *testing.T) {
	rules := []model.PriceRule{
		{
			RuleType:           model.RuleTypeMetafield,
			MetafieldNamespace: "custom",
			MetafieldKey:       "fabric",
			MetafieldValue:     "organic",
			PriceCents:         1000,
			Active:             true,
		},
	}

	total, matched := CalculateStructuredPrice(ItemAttributes{}, rules)
	if total != 0 || matched != nil {
		t.Errorf("空属性不应命中任何规则: total=%d matched=%d", total, len(matched))
	}
}
