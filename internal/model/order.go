package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ==================== 订单状态常量 ====================

// FulfillmentStatus Shopify 发货状态
const (
	FulfillmentUnfulfilled = "unfulfilled" // 未发货
	FulfillmentPartial     = "partial"     // 部分发货
	FulfillmentFulfilled   = "fulfilled"   // 已发货
)

// FinancialStatus Shopify 支付状态
const (
	FinancialPending           = "pending"            // 待支付
	FinancialPaid              = "paid"               // 已支付
	FinancialPartiallyRefunded = "partially_refunded" // 部分退款
	FinancialRefunded          = "refunded"           // 已退款
)

// ==================== Order 订单主表 ====================

// Order 订单
// 由同步任务从 Shopify 创建；除状态字段（同步/手动标记发货）外不可变；
// 仅保留期清理任务（6 个月）会删除
type Order struct {
	ID             int64 `gorm:"primaryKey;autoIncrement"`
	ShopifyOrderID int64 `gorm:"uniqueIndex;not null"`
	ShopID         int64 `gorm:"index;not null"`

	// 展示名，如 #1001
	Name string `gorm:"size:64;index"`

	// 状态
	FulfillmentStatus string `gorm:"size:32;index;default:unfulfilled"`
	FinancialStatus   string `gorm:"size:32"`

	// 备注与标签（标签以逗号分隔存储）
	Note string `gorm:"type:text"`
	Tags string `gorm:"size:500"`

	// Shopify 原始数据（PostgreSQL JSONB）
	ShopifyRawData datatypes.JSON `gorm:"type:jsonb"`

	// 同步时间
	ShopifyCreatedAt *time.Time `gorm:"index"`
	ShopifyUpdatedAt *time.Time
	SyncedAt         *time.Time

	// 审计字段
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	// 关联
	Items []LineItem `gorm:"foreignKey:OrderID"`
}

func (*Order) TableName() string {
	return "orders"
}

// TotalUnits 订单有效件数（取消的行不计入）
func (o *Order) TotalUnits() int {
	total := 0
	for i := range o.Items {
		if o.Items[i].IsCancelled() {
			continue
		}
		total += o.Items[i].Quantity
	}
	return total
}

// ==================== LineItem 订单行 ====================

// LineItem 订单行
// 归属于唯一一个 Order（内嵌聚合，不单独对外）
type LineItem struct {
	ID                int64 `gorm:"primaryKey;autoIncrement"`
	OrderID           int64 `gorm:"index;not null"`
	ShopifyLineItemID int64 `gorm:"uniqueIndex;not null"`

	// 商品信息
	ShopifyProductID int64 `gorm:"index"`
	ShopifyVariantID int64
	Title            string `gorm:"size:500"`
	SKU              string `gorm:"size:100;index"` // 可为空串（Shopify 中 SKU 可空）

	// 变体选项串，如 "Terra Cotta / M"，斜杠分隔
	VariantTitle string `gorm:"size:255"`

	// 数量与价格
	Quantity           int `gorm:"default:1"`
	RefundableQuantity int `gorm:"default:0"`
	UnitPriceCents     int64
	Currency           string `gorm:"size:10"`

	// 变体元字段（打印文件路由信息等，PostgreSQL JSONB）
	// 键格式为 "namespace.key"
	Metafields datatypes.JSONMap `gorm:"type:jsonb"`

	// 审计字段
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (*LineItem) TableName() string {
	return "line_items"
}

// IsCancelled 行是否已取消
// 判定标准：数量超过可退数量（Shopify 退款后 refundable_quantity 减少）
func (li *LineItem) IsCancelled() bool {
	return li.Quantity > li.RefundableQuantity
}

// GetUnitPrice 获取单价（元）
func (li *LineItem) GetUnitPrice() float64 {
	return float64(li.UnitPriceCents) / 100
}

// GetMetafield 按 (namespace, key) 读取元字段
// 显式存在性检查，避免对动态结构做投机访问
func (li *LineItem) GetMetafield(namespace, key string) (string, bool) {
	if li.Metafields == nil {
		return "", false
	}
	v, ok := li.Metafields[namespace+"."+key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
