package model

import (
	"time"
)

// ==================== CheckboxState 生产勾选状态 ====================

// CheckboxState 单件生产勾选状态
// 每个未取消订单行的每一件数量对应恰好一行（按确定性变体键 upsert，不会重复）；
// 懒创建（首次勾选）或批量初始化；仅清理/重建操作会删除
type CheckboxState struct {
	ID      int64 `gorm:"primaryKey;autoIncrement"`
	ShopID  int64 `gorm:"index;not null"`
	OrderID int64 `gorm:"index;not null"`

	// 确定性变体键（唯一 join key，格式必须保持稳定）：
	// orderId--sku--color--size--productIndex--unitIndex
	VariantKey string `gorm:"size:500;uniqueIndex;not null"`

	// 键的组成部分，冗余存储：
	// 清理重建时按 (sku, color, size) 匹配恢复勾选状态，而不是按过期的索引键
	SKU          string `gorm:"size:100;index"`
	Color        string `gorm:"size:100"`
	Size         string `gorm:"size:100"`
	ProductIndex int
	UnitIndex    int

	// 勾选状态
	Checked   bool `gorm:"default:false;index"`
	CheckedAt *time.Time

	// 审计字段
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (*CheckboxState) TableName() string {
	return "checkbox_states"
}
