package model

import (
	"time"

	"gorm.io/gorm"
)

// ==================== 规则类型常量 ====================

// RuleType 价格规则匹配方式
const (
	RuleTypeSubstring = "substring" // 描述串包含匹配（不区分大小写）
	RuleTypeMetafield = "metafield" // 元字段 (namespace, key, value) 等值匹配
	RuleTypeOption    = "option"    // 选项 (name, value) 等值匹配（不区分大小写）
)

// ==================== PriceRule 价格规则 ====================

// PriceRule 价格规则
// 同一条目可被多条规则命中，命中规则的金额无条件叠加（见引擎实现）
type PriceRule struct {
	ID     int64 `gorm:"primaryKey;autoIncrement"`
	ShopID int64 `gorm:"index;not null"`

	RuleType string `gorm:"size:16;index;default:substring"`

	// substring 规则：描述串匹配条件
	SearchString string `gorm:"size:500"`

	// metafield 规则
	MetafieldNamespace string `gorm:"size:100"`
	MetafieldKey       string `gorm:"size:100"`
	MetafieldValue     string `gorm:"size:255"`

	// option 规则
	OptionName  string `gorm:"size:100"`
	OptionValue string `gorm:"size:255"`

	// 金额（分为单位）
	// substring 规则只用 PriceCents；
	// metafield/option 规则在 PriceCents 基础上追加 ModifierCents
	PriceCents    int64
	ModifierCents int64

	// 排序与开关
	Priority int  `gorm:"default:0;index"`
	Active   bool `gorm:"default:true;index"`

	// 审计字段
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (*PriceRule) TableName() string {
	return "price_rules"
}

// GetPrice 获取规则金额（元）
func (r *PriceRule) GetPrice() float64 {
	return float64(r.PriceCents) / 100
}
