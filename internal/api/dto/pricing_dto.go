package dto

// ==================== 价格规则 ====================

// CreatePriceRuleRequest 创建价格规则请求
type CreatePriceRuleRequest struct {
	ShopID   int64  `json:"shop_id" binding:"required"`
	RuleType string `json:"rule_type" binding:"required"` // substring, metafield, option

	// substring 规则
	SearchString string `json:"search_string"`

	// metafield 规则
	MetafieldNamespace string `json:"metafield_namespace"`
	MetafieldKey       string `json:"metafield_key"`
	MetafieldValue     string `json:"metafield_value"`

	// option 规则
	OptionName  string `json:"option_name"`
	OptionValue string `json:"option_value"`

	PriceCents    int64 `json:"price_cents"`
	ModifierCents int64 `json:"modifier_cents"`
	Priority      int   `json:"priority"`
	Active        *bool `json:"active"`
}

// UpdatePriceRuleRequest 更新价格规则请求
type UpdatePriceRuleRequest struct {
	SearchString       *string `json:"search_string"`
	MetafieldNamespace *string `json:"metafield_namespace"`
	MetafieldKey       *string `json:"metafield_key"`
	MetafieldValue     *string `json:"metafield_value"`
	OptionName         *string `json:"option_name"`
	OptionValue        *string `json:"option_value"`
	PriceCents         *int64  `json:"price_cents"`
	ModifierCents      *int64  `json:"modifier_cents"`
	Priority           *int    `json:"priority"`
	Active             *bool   `json:"active"`
}

// ==================== 规则预览 ====================

// PreviewPriceRequest 规则预览请求
type PreviewPriceRequest struct {
	ShopID int64  `form:"shop_id" binding:"required"`
	SKU    string `form:"sku" binding:"required"`
	Color  string `form:"color"`
	Size   string `form:"size"`
}

// PreviewPriceResponse 规则预览响应
type PreviewPriceResponse struct {
	Descriptor string        `json:"descriptor"`
	Matched    []RuleMatchVO `json:"matched"`
	TotalCents int64         `json:"total_cents"`
}

// RuleMatchVO 命中规则视图对象
type RuleMatchVO struct {
	ID           int64  `json:"id"`
	RuleType     string `json:"rule_type"`
	SearchString string `json:"search_string,omitempty"`
	PriceCents   int64  `json:"price_cents"`
}
