package dto

import "time"

// ==================== 补货单 ====================

// CreateSupplierOrderRequest 创建补货单请求
type CreateSupplierOrderRequest struct {
	ShopID int64  `json:"shop_id" binding:"required"`
	Note   string `json:"note"`
}

// ListSupplierOrdersRequest 补货单列表请求
type ListSupplierOrdersRequest struct {
	ShopID   int64  `form:"shop_id" binding:"required"`
	Status   string `form:"status"` // draft, requested, produced, completed
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
}

// AddSupplierItemRequest 添加条目请求
type AddSupplierItemRequest struct {
	VariantID      int64 `json:"variant_id" binding:"required"`
	Quantity       int   `json:"quantity" binding:"required"`
	UnitPriceCents int64 `json:"unit_price_cents"` // 0 取变体成本
}

// UpdateSupplierItemRequest 更新条目请求
type UpdateSupplierItemRequest struct {
	Quantity       int   `json:"quantity" binding:"required"`
	UnitPriceCents int64 `json:"unit_price_cents"`
}

// ValidateSupplierItemRequest 核对条目请求
type ValidateSupplierItemRequest struct {
	Validated bool `json:"validated"`
}

// SupplierBalanceRequest 差额调整请求
type SupplierBalanceRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

// TransitionSupplierOrderRequest 状态迁移请求
type TransitionSupplierOrderRequest struct {
	Status string `json:"status" binding:"required"` // requested, produced, completed
}

// ==================== 视图对象 ====================

// SupplierOrderVO 补货单视图对象
type SupplierOrderVO struct {
	ID                     int64                 `json:"id"`
	ShopID                 int64                 `json:"shop_id"`
	Reference              string                `json:"reference"`
	Status                 string                `json:"status"`
	SubtotalCents          int64                 `json:"subtotal_cents"`
	BalanceAdjustmentCents int64                 `json:"balance_adjustment_cents"`
	TotalHTCents           int64                 `json:"total_ht_cents"`
	TotalTTCCents          int64                 `json:"total_ttc_cents"`
	Note                   string                `json:"note,omitempty"`
	CompletedAt            *time.Time            `json:"completed_at,omitempty"`
	CreatedAt              time.Time             `json:"created_at"`
	Items                  []SupplierOrderItemVO `json:"items,omitempty"`
}

// SupplierOrderItemVO 补货单条目视图对象
type SupplierOrderItemVO struct {
	ID             int64  `json:"id"`
	VariantID      int64  `json:"variant_id"`
	SKU            string `json:"sku"`
	Title          string `json:"title"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Validated      bool   `json:"validated"`
}
