package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"orderpro_v1_202608/internal/model"
	"orderpro_v1_202608/internal/repository"
)

// ==================== 测试辅助 ====================

func setupBillingTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "连接测试数据库失败")

	require.NoError(t, db.AutoMigrate(
		&model.Shop{}, &model.Order{}, &model.LineItem{},
		&model.CheckboxState{}, &model.PriceRule{}, &model.BalanceAdjustment{},
	))
	return db
}

func newBillingService(db *gorm.DB) *BillingService {
	return NewBillingService(
		repository.NewOrderRepository(db),
		repository.NewCheckboxRepository(db),
		repository.NewPriceRuleRepository(db),
		repository.NewBalanceAdjustmentRepository(db),
		repository.NewShopRepository(db),
	)
}

// seedBillingOrder 一笔订单：CREATOR Terra Cotta / M 共 3 件
func seedBillingOrder(t *testing.T, db *gorm.DB) *model.Order {
	created := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	order := &model.Order{
		ID:               1,
		ShopifyOrderID:   900001,
		ShopID:           1,
		Name:             "#1001",
		ShopifyCreatedAt: &created,
		Items: []model.LineItem{
			{
				ShopifyLineItemID:  800001,
				SKU:                "CREATOR",
				VariantTitle:       "Terra Cotta / M",
				Quantity:           3,
				RefundableQuantity: 3,
			},
		},
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

// checkUnits 勾选订单前 n 件
func checkUnits(t *testing.T, db *gorm.DB, order *model.Order, n int) {
	now := time.Now()
	for j := 0; j < n; j++ {
		key, err := NewVariantKey("1", "CREATOR", "Terra Cotta", "M", 0, j)
		require.NoError(t, err)
		require.NoError(t, db.Create(&model.CheckboxState{
			ShopID:     1,
			OrderID:    order.ID,
			VariantKey: key.String(),
			SKU:        "CREATOR",
			Color:      "Terra Cotta",
			Size:       "M",
			UnitIndex:  j,
			Checked:    true,
			CheckedAt:  &now,
		}).Error)
	}
}

// ==================== 单笔订单计费 ====================

func TestCalculateOrderTotal_CheckedUnits(t *testing.T) {
	db := setupBillingTestDB(t)
	svc := newBillingService(db)
	order := seedBillingOrder(t, db)
	checkUnits(t, db, order, 3)

	rules := []model.PriceRule{
		{RuleType: model.RuleTypeSubstring, SearchString: "CREATOR - Heritage Brown - M", PriceCents: 1200, Active: true},
	}

	billing := svc.CalculateOrderTotal(context.Background(), order, rules, 800)

	// 1200 * 3 件 + 800 人工费
	assert.Equal(t, int64(3600), billing.SubtotalCents)
	assert.Equal(t, int64(800), billing.HandlingFeeCents)
	assert.Equal(t, int64(4400), billing.TotalCents)
	require.Len(t, billing.Lines, 1)
	assert.Equal(t, 3, billing.Lines[0].CheckedUnits)
	assert.Equal(t, "CREATOR - Heritage Brown - M", billing.Lines[0].Descriptor)
}

func TestCalculateOrderTotal_PartiallyChecked(t *testing.T) {
	db := setupBillingTestDB(t)
	svc := newBillingService(db)
	order := seedBillingOrder(t, db)
	checkUnits(t, db, order, 2)

	rules := []model.PriceRule{
		{RuleType: model.RuleTypeSubstring, SearchString: "CREATOR", PriceCents: 1000, Active: true},
	}

	billing := svc.CalculateOrderTotal(context.Background(), order, rules, 500)
	assert.Equal(t, int64(2000), billing.SubtotalCents)
	assert.Equal(t, int64(2500), billing.TotalCents)
}

func TestCalculateOrderTotal_FeeWithheldAtZero(t *testing.T) {
	db := setupBillingTestDB(t)
	svc := newBillingService(db)
	order := seedBillingOrder(t, db)
	// 一件都没勾

	rules := []model.PriceRule{
		{RuleType: model.RuleTypeSubstring, SearchString: "CREATOR", PriceCents: 1000, Active: true},
	}

	billing := svc.CalculateOrderTotal(context.Background(), order, rules, 800)

	// 小计为 0 时人工费不收，整单计 0
	assert.Equal(t, int64(0), billing.SubtotalCents)
	assert.Equal(t, int64(0), billing.HandlingFeeCents)
	assert.Equal(t, int64(0), billing.TotalCents)
}

func TestCalculateOrderTotal_CancelledExcluded(t *testing.T) {
	db := setupBillingTestDB(t)
	svc := newBillingService(db)

	created := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	order := &model.Order{
		ID:               2,
		ShopifyOrderID:   900002,
		ShopID:           1,
		Name:             "#1002",
		ShopifyCreatedAt: &created,
		Items: []model.LineItem{
			// 退款后 refundable 归零，整行取消
			{
				ShopifyLineItemID:  800010,
				SKU:                "CREATOR",
				VariantTitle:       "Noir / L",
				Quantity:           2,
				RefundableQuantity: 0,
			},
		},
	}
	require.NoError(t, db.Create(order).Error)

	rules := []model.PriceRule{
		{RuleType: model.RuleTypeSubstring, SearchString: "CREATOR", PriceCents: 1000, Active: true},
	}

	billing := svc.CalculateOrderTotal(context.Background(), order, rules, 800)
	assert.Empty(t, billing.Lines)
	assert.Equal(t, int64(0), billing.TotalCents)
}

// ==================== 周期汇总 ====================

func TestGetWeekSummary(t *testing.T) {
	db := setupBillingTestDB(t)
	svc := newBillingService(db)

	require.NoError(t, db.Create(&model.Shop{
		ID: 1, Name: "Test Shop", Domain: "test.myshopify.com",
		HandlingFeeCents: 800, Status: model.ShopStatusActive,
	}).Error)
	require.NoError(t, db.Create(&model.PriceRule{
		ShopID: 1, RuleType: model.RuleTypeSubstring,
		SearchString: "CREATOR", PriceCents: 1200, Active: true,
	}).Error)

	order := seedBillingOrder(t, db)
	checkUnits(t, db, order, 3)

	// 2026-08-26 周三，ISO 周 2026-W35
	anchor := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	summary, err := svc.GetWeekSummary(context.Background(), 1, anchor)
	require.NoError(t, err)

	assert.Equal(t, "2026-W35", summary.Period)
	assert.Equal(t, 1, summary.OrderCount)
	assert.Equal(t, int64(4400), summary.OrdersTotalCents)
	assert.Equal(t, int64(4400), summary.TotalCents)
}

func TestGetWeekSummary_WithBalanceAdjustment(t *testing.T) {
	db := setupBillingTestDB(t)
	svc := newBillingService(db)

	require.NoError(t, db.Create(&model.Shop{
		ID: 1, Name: "Test Shop", Domain: "test.myshopify.com",
		HandlingFeeCents: 800, Status: model.ShopStatusActive,
	}).Error)
	require.NoError(t, db.Create(&model.PriceRule{
		ShopID: 1, RuleType: model.RuleTypeSubstring,
		SearchString: "CREATOR", PriceCents: 1200, Active: true,
	}).Error)

	order := seedBillingOrder(t, db)
	checkUnits(t, db, order, 3)

	require.NoError(t, svc.SetBalanceAdjustment(context.Background(), &model.BalanceAdjustment{
		ShopID: 1, Kind: model.PeriodKindWeek, Period: "2026-W35",
		AmountCents: -1000, Note: "上周多算一单",
	}))

	anchor := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	summary, err := svc.GetWeekSummary(context.Background(), 1, anchor)
	require.NoError(t, err)

	assert.Equal(t, int64(-1000), summary.BalanceAdjustmentCents)
	assert.Equal(t, int64(3400), summary.TotalCents)
}

func TestGetMonthSummary_Empty(t *testing.T) {
	db := setupBillingTestDB(t)
	svc := newBillingService(db)

	require.NoError(t, db.Create(&model.Shop{
		ID: 1, Name: "Test Shop", Domain: "test.myshopify.com",
		Status: model.ShopStatusActive,
	}).Error)

	anchor := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)
	summary, err := svc.GetMonthSummary(context.Background(), 1, anchor)
	require.NoError(t, err)

	assert.Equal(t, "2026-07", summary.Period)
	assert.Equal(t, 0, summary.OrderCount)
	assert.Equal(t, int64(0), summary.TotalCents)
}

func TestSetBalanceAdjustment_Validation(t *testing.T) {
	db := setupBillingTestDB(t)
	svc := newBillingService(db)
	ctx := context.Background()

	assert.Error(t, svc.SetBalanceAdjustment(ctx, &model.BalanceAdjustment{
		Period: "2026-W35", Kind: model.PeriodKindWeek,
	}), "缺店铺 ID 应该报错")
	assert.Error(t, svc.SetBalanceAdjustment(ctx, &model.BalanceAdjustment{
		ShopID: 1, Period: "2026-W35", Kind: "quarter",
	}), "未知周期类型应该报错")
}

// ==================== 周期辅助 ====================

func TestWeekPeriod(t *testing.T) {
	cases := []struct {
		date time.Time
		want string
	}{
		{time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC), "2026-W35"},
		{time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), "2026-W35"}, // 周日归本周
		{time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), "2026-W36"}, // 下周一
		{time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), "2026-W01"},
	}
	for _, tc := range cases {
		if got := WeekPeriod(tc.date); got != tc.want {
			t.Errorf("WeekPeriod(%s) = %s, want %s", tc.date.Format("2006-01-02"), got, tc.want)
		}
	}
}

func TestWeekRange_MondayStart(t *testing.T) {
	// 周三锚点回落到周一
	start, end := weekRange(time.Date(2026, 8, 26, 15, 30, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), end)

	// 周日归上一周
	start, _ = weekRange(time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), start)
}
