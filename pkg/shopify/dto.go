package shopify

import (
	"strconv"
	"strings"
)

// ==================== REST 响应结构 ====================

// RestOrder Shopify REST 订单
type RestOrder struct {
	ID                int64          `json:"id"`
	Name              string         `json:"name"`
	Note              string         `json:"note"`
	Tags              string         `json:"tags"`
	Currency          string         `json:"currency"`
	FulfillmentStatus *string        `json:"fulfillment_status"` // null = unfulfilled
	FinancialStatus   string         `json:"financial_status"`
	CreatedAt         string         `json:"created_at"` // ISO8601
	UpdatedAt         string         `json:"updated_at"`
	LineItems         []RestLineItem `json:"line_items"`
}

// RestLineItem Shopify REST 订单行
type RestLineItem struct {
	ID           int64  `json:"id"`
	ProductID    int64  `json:"product_id"`
	VariantID    int64  `json:"variant_id"`
	Title        string `json:"title"`
	VariantTitle string `json:"variant_title"` // 斜杠分隔选项串，如 "Terra Cotta / M"
	SKU          string `json:"sku"`
	Quantity     int    `json:"quantity"`
	// 退款后递减；quantity > current_quantity 即视为取消
	CurrentQuantity int    `json:"current_quantity"`
	Price           string `json:"price"` // "12.00"
}

// RestLocation Shopify REST 发货地点
type RestLocation struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// RestShop Shopify REST 店铺信息（连通性检查用）
type RestShop struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Domain   string `json:"myshopify_domain"`
	Currency string `json:"currency"`
}

// ==================== GraphQL 响应结构 ====================

// GQLProduct GraphQL 商品节点
type GQLProduct struct {
	ID       string       `json:"id"` // gid://shopify/Product/123
	Title    string       `json:"title"`
	Vendor   string       `json:"vendor"`
	Status   string       `json:"status"`
	Variants []GQLVariant `json:"variants"`
}

// GQLVariant GraphQL 变体节点
type GQLVariant struct {
	ID                string         `json:"id"`
	SKU               string         `json:"sku"`
	Title             string         `json:"title"`
	Price             string         `json:"price"`
	InventoryQuantity int            `json:"inventoryQuantity"`
	InventoryItemID   string         `json:"inventoryItemId"`
	UnitCost          string         `json:"unitCost"`
	Metafields        []GQLMetafield `json:"metafields"`
}

// GQLMetafield GraphQL 元字段节点
type GQLMetafield struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
}

// ProductsPage 一页商品（游标分页）
type ProductsPage struct {
	Products    []GQLProduct
	EndCursor   string
	HasNextPage bool
}

// ==================== 辅助函数 ====================

// ParseGID 解析 Shopify 全局 ID 的数字部分
// "gid://shopify/Product/123" -> 123
func ParseGID(gid string) int64 {
	idx := strings.LastIndex(gid, "/")
	if idx < 0 {
		return 0
	}
	id, _ := strconv.ParseInt(gid[idx+1:], 10, 64)
	return id
}

// VariantGID 数字变体 ID 转 GraphQL 全局 ID
// 123 -> "gid://shopify/ProductVariant/123"
func VariantGID(id int64) string {
	return "gid://shopify/ProductVariant/" + strconv.FormatInt(id, 10)
}

// ParseMoneyToCents 金额字符串转分
// "12.50" -> 1250；解析失败返回 0
func ParseMoneyToCents(s string) int64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	// 加 0.5 做四舍五入，金额都是非负数
	return int64(f*100 + 0.5)
}
