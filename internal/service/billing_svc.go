package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"orderpro_v1_202608/internal/model"
	"orderpro_v1_202608/internal/repository"

	"go.uber.org/zap"
)

// ==================== BillingService 计费服务 ====================

// BillingService 订单计费服务
// 订单总额 = Σ(命中规则金额 × 已勾选件数) + 人工费；
// 小计为 0 时人工费不收（明确的业务规则，不是疏漏）
type BillingService struct {
	orderRepo    repository.OrderRepository
	checkboxRepo repository.CheckboxRepository
	ruleRepo     repository.PriceRuleRepository
	balanceRepo  repository.BalanceAdjustmentRepository
	shopRepo     repository.ShopRepository
}

// NewBillingService 创建计费服务
func NewBillingService(
	orderRepo repository.OrderRepository,
	checkboxRepo repository.CheckboxRepository,
	ruleRepo repository.PriceRuleRepository,
	balanceRepo repository.BalanceAdjustmentRepository,
	shopRepo repository.ShopRepository,
) *BillingService {
	return &BillingService{
		orderRepo:    orderRepo,
		checkboxRepo: checkboxRepo,
		ruleRepo:     ruleRepo,
		balanceRepo:  balanceRepo,
		shopRepo:     shopRepo,
	}
}

// ==================== 单笔订单计费 ====================

// OrderBilling 单笔订单计费明细
type OrderBilling struct {
	OrderID          int64              `json:"order_id"`
	OrderName        string             `json:"order_name"`
	Lines            []OrderBillingLine `json:"lines"`
	SubtotalCents    int64              `json:"subtotal_cents"`
	HandlingFeeCents int64              `json:"handling_fee_cents"`
	TotalCents       int64              `json:"total_cents"`
}

// OrderBillingLine 订单行计费明细
type OrderBillingLine struct {
	Descriptor     string `json:"descriptor"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	CheckedUnits   int    `json:"checked_units"`
	AmountCents    int64  `json:"amount_cents"`
}

// CalculateOrderTotal 计算单笔订单计费总额（分）
// 逐件读取持久化勾选状态；单件查不到一律按未勾选计，
// 个别脏数据只压低总额，不让整单计算失败
func (s *BillingService) CalculateOrderTotal(ctx context.Context, order *model.Order, rules []model.PriceRule, handlingFeeCents int64) *OrderBilling {
	// 整单勾选状态一次取回，缺失的键视为未勾选
	checkedByKey := make(map[string]bool)
	states, err := s.checkboxRepo.ListByOrder(ctx, order.ID)
	if err != nil {
		zap.S().Warnf("[Billing] 订单 %s 勾选状态读取失败，按全未勾选计: %v", order.Name, err)
	} else {
		for i := range states {
			checkedByKey[states[i].VariantKey] = states[i].Checked
		}
	}

	billing := &OrderBilling{
		OrderID:   order.ID,
		OrderName: order.Name,
	}

	orderIDStr := strconv.FormatInt(order.ID, 10)
	for i := range order.Items {
		item := &order.Items[i]
		if item.IsCancelled() {
			continue
		}

		color, size := ExtractColorSize(nil, item.VariantTitle)
		descriptor := FormatItemDescriptor(item.SKU, color, size)
		unitPrice := CalculateItemPrice(descriptor, rules)

		checkedUnits := 0
		for j := 0; j < item.Quantity; j++ {
			key, err := NewVariantKey(orderIDStr, item.SKU, color, size, i, j)
			if err != nil {
				// 键生成失败（如缺 SKU）按未勾选计
				continue
			}
			if checkedByKey[key.String()] {
				checkedUnits++
			}
		}

		amount := unitPrice * int64(checkedUnits)
		billing.SubtotalCents += amount
		billing.Lines = append(billing.Lines, OrderBillingLine{
			Descriptor:     descriptor,
			UnitPriceCents: unitPrice,
			CheckedUnits:   checkedUnits,
			AmountCents:    amount,
		})
	}

	// 一件未勾；整单计 0，人工费不收
	if billing.SubtotalCents == 0 {
		billing.TotalCents = 0
		return billing
	}

	billing.HandlingFeeCents = handlingFeeCents
	billing.TotalCents = billing.SubtotalCents + handlingFeeCents
	return billing
}

// GetOrderBilling 读取订单计费明细
func (s *BillingService) GetOrderBilling(ctx context.Context, shopID, orderID int64) (*OrderBilling, error) {
	order, err := s.orderRepo.GetByIDWithItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("订单不存在")
	}
	if order.ShopID != shopID {
		return nil, fmt.Errorf("订单不属于该店铺")
	}

	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("店铺不存在")
	}

	rules, err := s.ruleRepo.ListActive(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("查询价格规则失败: %w", err)
	}

	return s.CalculateOrderTotal(ctx, order, rules, shop.HandlingFeeCents), nil
}

// ==================== 周期汇总 ====================

// PeriodSummary 周期计费汇总
type PeriodSummary struct {
	Period                 string         `json:"period"`
	OrderCount             int            `json:"order_count"`
	Orders                 []OrderBilling `json:"orders"`
	OrdersTotalCents       int64          `json:"orders_total_cents"`
	BalanceAdjustmentCents int64          `json:"balance_adjustment_cents"`
	TotalCents             int64          `json:"total_cents"`
}

// GetWeekSummary 周汇总（ISO 周，如 2026-W35）
func (s *BillingService) GetWeekSummary(ctx context.Context, shopID int64, anchor time.Time) (*PeriodSummary, error) {
	start, end := weekRange(anchor)
	return s.summarize(ctx, shopID, WeekPeriod(anchor), start, end)
}

// GetMonthSummary 月汇总（自然月，如 2026-08）
func (s *BillingService) GetMonthSummary(ctx context.Context, shopID int64, anchor time.Time) (*PeriodSummary, error) {
	start, end := monthRange(anchor)
	return s.summarize(ctx, shopID, MonthPeriod(anchor), start, end)
}

// summarize 按时间区间汇总订单计费 + 周期差额调整
func (s *BillingService) summarize(ctx context.Context, shopID int64, period string, start, end time.Time) (*PeriodSummary, error) {
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("店铺不存在")
	}

	rules, err := s.ruleRepo.ListActive(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("查询价格规则失败: %w", err)
	}

	orders, err := s.orderRepo.ListByPeriod(ctx, shopID, start, end)
	if err != nil {
		return nil, fmt.Errorf("查询订单失败: %w", err)
	}

	summary := &PeriodSummary{Period: period, OrderCount: len(orders)}
	for i := range orders {
		billing := s.CalculateOrderTotal(ctx, &orders[i], rules, shop.HandlingFeeCents)
		summary.Orders = append(summary.Orders, *billing)
		summary.OrdersTotalCents += billing.TotalCents
	}

	// 手工差额调整，缺省为 0
	if adj, err := s.balanceRepo.Get(ctx, shopID, period); err == nil {
		summary.BalanceAdjustmentCents = adj.AmountCents
	}

	summary.TotalCents = summary.OrdersTotalCents + summary.BalanceAdjustmentCents
	return summary, nil
}

// SetBalanceAdjustment 录入/覆盖周期差额调整
func (s *BillingService) SetBalanceAdjustment(ctx context.Context, adj *model.BalanceAdjustment) error {
	if adj.ShopID == 0 || adj.Period == "" {
		return fmt.Errorf("缺少店铺 ID 或周期")
	}
	if adj.Kind != model.PeriodKindWeek && adj.Kind != model.PeriodKindMonth {
		return fmt.Errorf("未知周期类型: %s", adj.Kind)
	}
	return s.balanceRepo.Upsert(ctx, adj)
}

// ==================== 周期辅助 ====================

// WeekPeriod ISO 周标识，如 2026-W35
func WeekPeriod(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// MonthPeriod 月标识，如 2026-08
func MonthPeriod(t time.Time) string {
	return t.Format("2006-01")
}

// weekRange ISO 周的 [周一 00:00, 下周一 00:00)
func weekRange(t time.Time) (time.Time, time.Time) {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // 周日归上一周
	}
	start := t.AddDate(0, 0, -(weekday - 1))
	return start, start.AddDate(0, 0, 7)
}

// monthRange 自然月的 [1 号 00:00, 下月 1 号 00:00)
func monthRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}
