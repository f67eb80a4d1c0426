package dto

// ==================== 计费 ====================

// BillingSummaryRequest 周期汇总请求
// anchor 为周期内任意一天，缺省为今天
type BillingSummaryRequest struct {
	ShopID int64  `form:"shop_id" binding:"required"`
	Anchor string `form:"anchor"` // 2026-08-31
}

// SetBalanceAdjustmentRequest 录入周期差额调整请求
type SetBalanceAdjustmentRequest struct {
	ShopID      int64  `json:"shop_id" binding:"required"`
	Period      string `json:"period" binding:"required"` // 2026-W35 或 2026-08
	Kind        string `json:"kind" binding:"required"`   // week, month
	AmountCents int64  `json:"amount_cents"`
	Note        string `json:"note"`
}
