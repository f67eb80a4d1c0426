package model

import (
	"time"
)

// ==================== 计费周期常量 ====================

// BillingPeriodKind 计费周期类型
const (
	PeriodKindWeek  = "week"  // ISO 周，如 2026-W35
	PeriodKindMonth = "month" // 自然月，如 2026-08
)

// ==================== BalanceAdjustment 计费差额调整 ====================

// BalanceAdjustment 手工录入的周期差额调整
// 周/月汇总 = Σ 订单计费总额 + 该周期的差额调整
type BalanceAdjustment struct {
	ID     int64 `gorm:"primaryKey;autoIncrement"`

	// 复合唯一：一个店铺一个周期只有一条调整记录
	ShopID int64 `gorm:"not null;uniqueIndex:idx_balance_shop_period,priority:1"`

	// 周期标识，"2026-W35" 或 "2026-08"
	Kind   string `gorm:"size:16;not null"`
	Period string `gorm:"size:16;not null;uniqueIndex:idx_balance_shop_period,priority:2"`

	AmountCents int64
	Note        string `gorm:"size:500"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (*BalanceAdjustment) TableName() string {
	return "balance_adjustments"
}
