package model

import (
	"time"

	"gorm.io/gorm"
)

// ==================== 补货单状态常量 ====================

// SupplierOrderStatus 补货单状态
// draft -> requested -> produced -> completed（终态，不可逆）
const (
	SupplierStatusDraft     = "draft"     // 草稿
	SupplierStatusRequested = "requested" // 已下单
	SupplierStatusProduced  = "produced"  // 已生产
	SupplierStatusCompleted = "completed" // 已完成（触发库存入库）
)

// TTC 税率：TTC = HT × 1.2
const TTCRatePercent = 120

// ==================== SupplierOrder 补货单 ====================

// SupplierOrder 供应商补货单
// 不变量：total_ht = subtotal + balance_adjustment；total_ttc = total_ht × 1.2；
// 条目或差额调整变化时必须重算
type SupplierOrder struct {
	ID     int64 `gorm:"primaryKey;autoIncrement"`
	ShopID int64 `gorm:"index;not null"`

	// 业务单号，如 SUP-9F3A2C1B
	Reference string `gorm:"size:64;uniqueIndex;not null"`

	Status string `gorm:"size:32;index;default:draft"`

	// 金额（分为单位）
	SubtotalCents          int64
	BalanceAdjustmentCents int64
	TotalHTCents           int64
	TotalTTCCents          int64

	Note string `gorm:"type:text"`

	// 完成时间（终态）
	CompletedAt *time.Time

	// 审计字段
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	// 关联
	Items []SupplierOrderItem `gorm:"foreignKey:SupplierOrderID"`
}

func (*SupplierOrder) TableName() string {
	return "supplier_orders"
}

// Recalculate 重算金额
// subtotal = Σ 数量×单价；HT = subtotal + 差额调整；TTC = HT × 1.2
func (so *SupplierOrder) Recalculate() {
	var subtotal int64
	for i := range so.Items {
		subtotal += int64(so.Items[i].Quantity) * so.Items[i].UnitPriceCents
	}
	so.SubtotalCents = subtotal
	so.TotalHTCents = subtotal + so.BalanceAdjustmentCents
	so.TotalTTCCents = so.TotalHTCents * TTCRatePercent / 100
}

// IsTerminal 是否已处于终态
func (so *SupplierOrder) IsTerminal() bool {
	return so.Status == SupplierStatusCompleted
}

// CanTransitionTo 状态迁移校验
func (so *SupplierOrder) CanTransitionTo(next string) bool {
	if so.IsTerminal() {
		return false
	}
	switch so.Status {
	case SupplierStatusDraft:
		return next == SupplierStatusRequested
	case SupplierStatusRequested:
		return next == SupplierStatusProduced
	case SupplierStatusProduced:
		return next == SupplierStatusCompleted
	}
	return false
}

// ==================== SupplierOrderItem 补货单条目 ====================

// SupplierOrderItem 补货单条目
type SupplierOrderItem struct {
	ID              int64 `gorm:"primaryKey;autoIncrement"`
	SupplierOrderID int64 `gorm:"index;not null"`

	// 本地变体引用
	VariantID int64  `gorm:"index;not null"`
	SKU       string `gorm:"size:100"`
	Title     string `gorm:"size:255"`

	Quantity       int `gorm:"default:1"`
	UnitPriceCents int64

	// 人工核对标记
	Validated bool `gorm:"default:false"`

	// 审计字段
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (*SupplierOrderItem) TableName() string {
	return "supplier_order_items"
}
