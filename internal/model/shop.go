package model

import (
	"time"

	"gorm.io/gorm"
)

// ==================== 店铺状态常量 ====================

// ShopStatus 店铺状态
const (
	ShopStatusDisabled = 0 // 停用
	ShopStatusActive   = 1 // 正常
	ShopStatusTokenBad = 2 // Token 异常，需要重新授权
)

// ==================== Shop 店铺（租户边界） ====================

// Shop 店铺
// 多租户边界：所有订单/商品/价格规则/地点/设置均挂在 Shop 下，
// 查询必须携带 shop_id 过滤条件
// API 凭证存库而非环境变量（每个租户一份）
type Shop struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"size:255;not null"`

	// Shopify 连接信息
	Domain      string `gorm:"size:255;uniqueIndex;not null"` // xxx.myshopify.com
	AccessToken string `gorm:"size:255"`
	APIVersion  string `gorm:"size:32;default:2024-01"`

	// 基础设置
	CurrencyCode string `gorm:"size:10;default:EUR"`

	// 计费设置：人工费（分为单位），小计为 0 时不收取
	HandlingFeeCents int64 `gorm:"default:800"`

	// 默认发货地点（本地 Location.ID）
	DefaultLocationID int64

	// 状态
	Status int `gorm:"default:1;index"`

	// 同步时间
	LastOrderSyncAt   *time.Time
	LastProductSyncAt *time.Time

	// 审计字段
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (*Shop) TableName() string {
	return "shops"
}

// IsActive 店铺是否可同步
func (s *Shop) IsActive() bool {
	return s.Status == ShopStatusActive && s.AccessToken != ""
}

// AdminBaseURL 拼接 Admin API 基础地址
func (s *Shop) AdminBaseURL() string {
	return "https://" + s.Domain + "/admin/api/" + s.APIVersion
}

// ==================== Location 发货地点 ====================

// Location 发货地点
type Location struct {
	ID                int64  `gorm:"primaryKey;autoIncrement"`
	ShopID            int64  `gorm:"index;not null"`
	ShopifyLocationID int64  `gorm:"uniqueIndex;not null"`
	Name              string `gorm:"size:255"`
	Active            bool   `gorm:"default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (*Location) TableName() string {
	return "locations"
}
