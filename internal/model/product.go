package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ==================== Product 商品主表 ====================

// Product 商品
type Product struct {
	ID               int64 `gorm:"primaryKey;autoIncrement"`
	ShopifyProductID int64 `gorm:"uniqueIndex;not null"`
	ShopID           int64 `gorm:"index;not null"`

	Title  string `gorm:"size:500"`
	Vendor string `gorm:"size:255"`
	Status string `gorm:"size:32;default:active"`

	// 同步时间
	SyncedAt *time.Time

	// 审计字段
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	// 关联
	Variants []Variant `gorm:"foreignKey:ProductID"`
}

func (*Product) TableName() string {
	return "products"
}

// ==================== Variant 商品变体 ====================

// Variant 商品变体
type Variant struct {
	ID               int64 `gorm:"primaryKey;autoIncrement"`
	ProductID        int64 `gorm:"index;not null"`
	ShopID           int64 `gorm:"index;not null"`
	ShopifyVariantID int64 `gorm:"uniqueIndex;not null"`

	SKU   string `gorm:"size:100;index"`
	Title string `gorm:"size:255"` // 如 "Terra Cotta / M"

	// 价格与成本（分为单位）
	PriceCents int64
	CostCents  int64

	// 库存
	InventoryQuantity      int
	ShopifyInventoryItemID int64

	// 变体元字段（PostgreSQL JSONB，键格式 "namespace.key"）
	Metafields datatypes.JSONMap `gorm:"type:jsonb"`

	// 审计字段
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (*Variant) TableName() string {
	return "variants"
}

// GetPrice 获取售价（元）
func (v *Variant) GetPrice() float64 {
	return float64(v.PriceCents) / 100
}

// GetCost 获取成本（元）
func (v *Variant) GetCost() float64 {
	return float64(v.CostCents) / 100
}
