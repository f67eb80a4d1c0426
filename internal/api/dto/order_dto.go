package dto

import "time"

// ==================== 订单列表查询 ====================

// ListOrdersRequest 订单列表请求
type ListOrdersRequest struct {
	ShopID            int64  `form:"shop_id" binding:"required"`
	FulfillmentStatus string `form:"fulfillment_status"` // unfulfilled, partial, fulfilled
	FinancialStatus   string `form:"financial_status"`   // pending, paid, partially_refunded, refunded
	StartDate         string `form:"start_date"`         // 2026-01-01
	EndDate           string `form:"end_date"`
	Keyword           string `form:"keyword"` // 搜索：订单号、备注、标签
	Page              int    `form:"page,default=1"`
	PageSize          int    `form:"page_size,default=20"`
}

// ListOrdersResponse 订单列表响应
type ListOrdersResponse struct {
	Total int64           `json:"total"`
	List  []OrderListItem `json:"list"`
}

// OrderListItem 订单列表项
type OrderListItem struct {
	ID                int64      `json:"id"`
	ShopifyOrderID    int64      `json:"shopify_order_id"`
	ShopID            int64      `json:"shop_id"`
	Name              string     `json:"name"`
	FulfillmentStatus string     `json:"fulfillment_status"`
	FinancialStatus   string     `json:"financial_status"`
	ItemCount         int        `json:"item_count"`
	TotalUnits        int        `json:"total_units"`
	Tags              string     `json:"tags"`
	ShopifyCreatedAt  *time.Time `json:"shopify_created_at,omitempty"`
	SyncedAt          *time.Time `json:"synced_at,omitempty"`
}

// ==================== 订单详情 ====================

// OrderDetailResponse 订单详情响应
type OrderDetailResponse struct {
	Order *OrderVO      `json:"order"`
	Items []OrderItemVO `json:"items"`
}

// OrderVO 订单视图对象
type OrderVO struct {
	ID                int64      `json:"id"`
	ShopifyOrderID    int64      `json:"shopify_order_id"`
	ShopID            int64      `json:"shop_id"`
	Name              string     `json:"name"`
	FulfillmentStatus string     `json:"fulfillment_status"`
	FinancialStatus   string     `json:"financial_status"`
	Note              string     `json:"note,omitempty"`
	Tags              string     `json:"tags,omitempty"`
	TotalUnits        int        `json:"total_units"`
	ShopifyCreatedAt  *time.Time `json:"shopify_created_at,omitempty"`
	ShopifyUpdatedAt  *time.Time `json:"shopify_updated_at,omitempty"`
	SyncedAt          *time.Time `json:"synced_at,omitempty"`
}

// OrderItemVO 订单行视图对象
type OrderItemVO struct {
	ID                 int64   `json:"id"`
	ShopifyLineItemID  int64   `json:"shopify_line_item_id"`
	Title              string  `json:"title"`
	SKU                string  `json:"sku"`
	VariantTitle       string  `json:"variant_title"`
	Quantity           int     `json:"quantity"`
	RefundableQuantity int     `json:"refundable_quantity"`
	Cancelled          bool    `json:"cancelled"`
	UnitPrice          float64 `json:"unit_price"`
	Currency           string  `json:"currency"`
}

// ==================== 同步 ====================

// SyncResultResponse 同步结果响应
type SyncResultResponse struct {
	ShopID    int64         `json:"shop_id"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Failures  []SyncFailure `json:"failures,omitempty"`
}

// SyncFailure 同步失败条目
type SyncFailure struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}
