package dto

import "time"

// ==================== 店铺 ====================

// CreateShopRequest 创建店铺请求
type CreateShopRequest struct {
	Name        string `json:"name" binding:"required"`
	Domain      string `json:"domain" binding:"required"` // xxx.myshopify.com
	AccessToken string `json:"access_token"`
	APIVersion  string `json:"api_version"`
	Currency    string `json:"currency"`
}

// ListShopsRequest 店铺列表请求
type ListShopsRequest struct {
	Status   *int   `form:"status"`
	Keyword  string `form:"keyword"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
}

// ShopVO 店铺视图对象（不回显 AccessToken）
type ShopVO struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Domain            string     `json:"domain"`
	APIVersion        string     `json:"api_version"`
	CurrencyCode      string     `json:"currency_code"`
	HandlingFeeCents  int64      `json:"handling_fee_cents"`
	DefaultLocationID int64      `json:"default_location_id"`
	Status            int        `json:"status"`
	HasToken          bool       `json:"has_token"`
	LastOrderSyncAt   *time.Time `json:"last_order_sync_at,omitempty"`
	LastProductSyncAt *time.Time `json:"last_product_sync_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// LocationVO 发货地点视图对象
type LocationVO struct {
	ID                int64  `json:"id"`
	ShopifyLocationID int64  `json:"shopify_location_id"`
	Name              string `json:"name"`
	Active            bool   `json:"active"`
	IsDefault         bool   `json:"is_default"`
}

// ==================== 商品 ====================

// ListProductsRequest 商品列表请求
type ListProductsRequest struct {
	ShopID   int64  `form:"shop_id" binding:"required"`
	Status   string `form:"status"`
	Keyword  string `form:"keyword"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
}

// PushCostsRequest 成本回写请求
type PushCostsRequest struct {
	Updates []CostUpdateItem `json:"updates" binding:"required,min=1"`
}

// CostUpdateItem 成本回写条目
type CostUpdateItem struct {
	VariantID int64 `json:"variant_id" binding:"required"`
	CostCents int64 `json:"cost_cents" binding:"required"`
}

// PushMetafieldsRequest 元字段回写请求
type PushMetafieldsRequest struct {
	Updates []MetafieldUpdateItem `json:"updates" binding:"required,min=1"`
}

// MetafieldUpdateItem 元字段回写条目
// type 缺省时按单行文本写入
type MetafieldUpdateItem struct {
	VariantID int64  `json:"variant_id" binding:"required"`
	Namespace string `json:"namespace" binding:"required"`
	Key       string `json:"key" binding:"required"`
	Type      string `json:"type"`
	Value     string `json:"value" binding:"required"`
}
