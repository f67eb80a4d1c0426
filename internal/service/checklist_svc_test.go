package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"orderpro_v1_202608/internal/model"
	"orderpro_v1_202608/internal/repository"
)

// ==================== 测试辅助 ====================

func setupChecklistTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	if err := db.AutoMigrate(&model.Order{}, &model.LineItem{}, &model.CheckboxState{}); err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	return db
}

func newChecklistService(db *gorm.DB) *ChecklistService {
	return NewChecklistService(
		repository.NewOrderRepository(db),
		repository.NewCheckboxRepository(db),
		repository.NewCheckboxCache(nil), // 测试不起 Redis，缓存层全 no-op
	)
}

// seedChecklistOrder 两行订单：CREATOR x2（Terra Cotta / M）+ MUG-01 x1（无变体）
func seedChecklistOrder(t *testing.T, db *gorm.DB) *model.Order {
	created := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
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
				Quantity:           2,
				RefundableQuantity: 2,
			},
			{
				ShopifyLineItemID:  800002,
				SKU:                "MUG-01",
				VariantTitle:       "",
				Quantity:           1,
				RefundableQuantity: 1,
			},
		},
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("创建测试订单失败: %v", err)
	}
	return order
}

// ==================== 键生成 ====================

func TestBuildOrderKeys(t *testing.T) {
	db := setupChecklistTestDB(t)
	order := seedChecklistOrder(t, db)

	keys, err := BuildOrderKeys(order)
	if err != nil {
		t.Fatalf("生成键失败: %v", err)
	}

	// 2 + 1 件，每件一行
	if len(keys) != 3 {
		t.Fatalf("生成 %d 行, want 3", len(keys))
	}
	if keys[0].VariantKey != "1--CREATOR--Terra Cotta--M--0--0" {
		t.Errorf("key[0] = %s", keys[0].VariantKey)
	}
	if keys[1].VariantKey != "1--CREATOR--Terra Cotta--M--0--1" {
		t.Errorf("key[1] = %s", keys[1].VariantKey)
	}
	// 无变体行落到哨兵值
	if keys[2].VariantKey != "1--MUG-01--no-color--no-size--1--0" {
		t.Errorf("key[2] = %s", keys[2].VariantKey)
	}
}

func TestBuildOrderKeys_CancelledExcluded(t *testing.T) {
	order := &model.Order{
		ID:     5,
		ShopID: 1,
		Items: []model.LineItem{
			{SKU: "CREATOR", VariantTitle: "Noir / L", Quantity: 2, RefundableQuantity: 0},
		},
	}

	keys, err := BuildOrderKeys(order)
	if err != nil {
		t.Fatalf("生成键失败: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("取消行不应产生勾选行, got %d", len(keys))
	}
}

// ==================== 初始化与勾选 ====================

func TestInitializeOrder_Idempotent(t *testing.T) {
	db := setupChecklistTestDB(t)
	svc := newChecklistService(db)
	seedChecklistOrder(t, db)
	ctx := context.Background()

	created, err := svc.InitializeOrder(ctx, 1, 1)
	if err != nil {
		t.Fatalf("初始化失败: %v", err)
	}
	if created != 3 {
		t.Errorf("首次初始化创建 %d 行, want 3", created)
	}

	// 再跑一遍不应重复创建
	created, err = svc.InitializeOrder(ctx, 1, 1)
	if err != nil {
		t.Fatalf("二次初始化失败: %v", err)
	}
	if created != 0 {
		t.Errorf("二次初始化创建 %d 行, want 0", created)
	}
}

func TestToggle(t *testing.T) {
	db := setupChecklistTestDB(t)
	svc := newChecklistService(db)
	seedChecklistOrder(t, db)
	ctx := context.Background()

	key := "1--CREATOR--Terra Cotta--M--0--0"
	state, err := svc.Toggle(ctx, 1, 1, key, true)
	if err != nil {
		t.Fatalf("勾选失败: %v", err)
	}
	if !state.Checked || state.CheckedAt == nil {
		t.Error("勾选后状态未更新")
	}

	// 取消勾选
	state, err = svc.Toggle(ctx, 1, 1, key, false)
	if err != nil {
		t.Fatalf("取消勾选失败: %v", err)
	}
	if state.Checked {
		t.Error("取消勾选后仍为已勾选")
	}

	progress, err := svc.GetProgress(ctx, 1, 1)
	if err != nil {
		t.Fatalf("读取进度失败: %v", err)
	}
	if progress.Checked != 0 || progress.Total != 3 {
		t.Errorf("progress = %d/%d, want 0/3", progress.Checked, progress.Total)
	}
}

func TestToggle_StaleKeyRejected(t *testing.T) {
	db := setupChecklistTestDB(t)
	svc := newChecklistService(db)
	seedChecklistOrder(t, db)

	// 不属于当前订单内容的键
	_, err := svc.Toggle(context.Background(), 1, 1, "1--HOODIE--Noir--XL--9--0", true)
	if err == nil {
		t.Error("过期键应该被拒绝")
	}
}

func TestToggle_WrongShop(t *testing.T) {
	db := setupChecklistTestDB(t)
	svc := newChecklistService(db)
	seedChecklistOrder(t, db)

	_, err := svc.Toggle(context.Background(), 99, 1, "1--CREATOR--Terra Cotta--M--0--0", true)
	if err == nil {
		t.Error("跨店铺访问应该被拒绝")
	}
}

// ==================== 进度聚合 ====================

func TestGetProgress(t *testing.T) {
	db := setupChecklistTestDB(t)
	svc := newChecklistService(db)
	seedChecklistOrder(t, db)
	ctx := context.Background()

	svc.Toggle(ctx, 1, 1, "1--CREATOR--Terra Cotta--M--0--0", true)
	svc.Toggle(ctx, 1, 1, "1--MUG-01--no-color--no-size--1--0", true)

	progress, err := svc.GetProgress(ctx, 1, 1)
	if err != nil {
		t.Fatalf("读取进度失败: %v", err)
	}
	if progress.Checked != 2 || progress.Total != 3 {
		t.Errorf("progress = %d/%d, want 2/3", progress.Checked, progress.Total)
	}
}

func TestGetSKUProgress(t *testing.T) {
	db := setupChecklistTestDB(t)
	svc := newChecklistService(db)
	seedChecklistOrder(t, db)
	ctx := context.Background()

	svc.Toggle(ctx, 1, 1, "1--CREATOR--Terra Cotta--M--0--1", true)

	groups, err := svc.GetSKUProgress(ctx, 1, 1)
	if err != nil {
		t.Fatalf("读取 SKU 进度失败: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("分组数 = %d, want 2", len(groups))
	}
	if groups[0].SKU != "CREATOR" || groups[0].Checked != 1 || groups[0].Total != 2 {
		t.Errorf("CREATOR 组 = %+v", groups[0])
	}
	if groups[1].SKU != "MUG-01" || groups[1].Checked != 0 || groups[1].Total != 1 {
		t.Errorf("MUG-01 组 = %+v", groups[1])
	}
}

// ==================== 全量清单 ====================

func TestListUnits(t *testing.T) {
	db := setupChecklistTestDB(t)
	svc := newChecklistService(db)
	seedChecklistOrder(t, db)
	ctx := context.Background()

	// 只勾一件，其余两件应该以未勾选骨架出现
	svc.Toggle(ctx, 1, 1, "1--CREATOR--Terra Cotta--M--0--0", true)

	units, err := svc.ListUnits(ctx, 1, 1)
	if err != nil {
		t.Fatalf("读取清单失败: %v", err)
	}
	if len(units) != 3 {
		t.Fatalf("清单 %d 件, want 3", len(units))
	}

	checked := 0
	for _, u := range units {
		if u.Checked {
			checked++
		}
	}
	if checked != 1 {
		t.Errorf("已勾选 %d 件, want 1", checked)
	}
}

// ==================== 缓存一致性 ====================

// newRedisChecklistService 用内嵌 Redis 构建服务，验证缓存路径
func newRedisChecklistService(t *testing.T, db *gorm.DB) (*ChecklistService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewChecklistService(
		repository.NewOrderRepository(db),
		repository.NewCheckboxRepository(db),
		repository.NewCheckboxCache(rdb),
	)
	return svc, mr
}

func TestGetProgress_ColdCacheAfterExpiry(t *testing.T) {
	db := setupChecklistTestDB(t)
	svc, mr := newRedisChecklistService(t, db)
	seedChecklistOrder(t, db)
	ctx := context.Background()

	if _, err := svc.InitializeOrder(ctx, 1, 1); err != nil {
		t.Fatalf("初始化失败: %v", err)
	}
	if _, err := svc.Toggle(ctx, 1, 1, "1--CREATOR--Terra Cotta--M--0--0", true); err != nil {
		t.Fatalf("勾选失败: %v", err)
	}
	if _, err := svc.Toggle(ctx, 1, 1, "1--CREATOR--Terra Cotta--M--0--1", true); err != nil {
		t.Fatalf("勾选失败: %v", err)
	}

	// 模拟 hash TTL 过期 / Redis 重启
	mr.FlushAll()

	// 冷缓存下的增量勾选不能长出只有单个 field 的残缺 hash
	if _, err := svc.Toggle(ctx, 1, 1, "1--MUG-01--no-color--no-size--1--0", true); err != nil {
		t.Fatalf("勾选失败: %v", err)
	}

	progress, err := svc.GetProgress(ctx, 1, 1)
	if err != nil {
		t.Fatalf("读取进度失败: %v", err)
	}
	if progress.Checked != 3 || progress.Total != 3 {
		t.Errorf("progress = %d/%d, want 3/3", progress.Checked, progress.Total)
	}

	// 缓存被整单回填，件数齐全
	states, err := svc.cache.GetOrderStates(ctx, 1)
	if err != nil {
		t.Fatalf("读取缓存失败: %v", err)
	}
	if len(states) != 3 {
		t.Errorf("回填后缓存 %d 个 field, want 3", len(states))
	}
}

func TestCleanupDropsOrderCache(t *testing.T) {
	db := setupChecklistTestDB(t)
	svc, _ := newRedisChecklistService(t, db)
	seedChecklistOrder(t, db)
	ctx := context.Background()

	if _, err := svc.InitializeOrder(ctx, 1, 1); err != nil {
		t.Fatalf("初始化失败: %v", err)
	}

	svc.DropOrderCache(ctx, 1)

	states, err := svc.cache.GetOrderStates(ctx, 1)
	if err != nil {
		t.Fatalf("读取缓存失败: %v", err)
	}
	if states != nil {
		t.Errorf("清理后缓存应为空, got %d 个 field", len(states))
	}
}

// ==================== 无 SKU 行 ====================

func TestChecklistSkipsSKULessLines(t *testing.T) {
	db := setupChecklistTestDB(t)
	svc := newChecklistService(db)
	ctx := context.Background()

	// 真实订单会带小费、礼品卡这类无 SKU 行，不能让它拖垮整单清单
	order := &model.Order{
		ID:             2,
		ShopifyOrderID: 900002,
		ShopID:         1,
		Name:           "#1002",
		Items: []model.LineItem{
			{ShopifyLineItemID: 800003, SKU: "CREATOR", VariantTitle: "Noir / L", Quantity: 2, RefundableQuantity: 2},
			{ShopifyLineItemID: 800004, SKU: "", Title: "Tip", Quantity: 1, RefundableQuantity: 1},
		},
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("创建测试订单失败: %v", err)
	}

	keys, err := BuildOrderKeys(order)
	if err != nil {
		t.Fatalf("无 SKU 行不应让键生成报错: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("生成 %d 行, want 2（无 SKU 行不产生勾选件）", len(keys))
	}

	created, err := svc.InitializeOrder(ctx, 1, 2)
	if err != nil {
		t.Fatalf("初始化失败: %v", err)
	}
	if created != 2 {
		t.Errorf("初始化创建 %d 行, want 2", created)
	}

	if _, err := svc.Toggle(ctx, 1, 2, "2--CREATOR--Noir--L--0--0", true); err != nil {
		t.Fatalf("勾选失败: %v", err)
	}

	progress, err := svc.GetProgress(ctx, 1, 2)
	if err != nil {
		t.Fatalf("读取进度失败: %v", err)
	}
	if progress.Checked != 1 || progress.Total != 2 {
		t.Errorf("progress = %d/%d, want 1/2", progress.Checked, progress.Total)
	}

	groups, err := svc.GetSKUProgress(ctx, 1, 2)
	if err != nil {
		t.Fatalf("读取 SKU 进度失败: %v", err)
	}
	if len(groups) != 1 || groups[0].SKU != "CREATOR" {
		t.Errorf("无 SKU 行不应出现在分组里: %+v", groups)
	}
}

// ==================== 清理重建 ====================

func TestPurgeAndRecalculate_PreservesChecked(t *testing.T) {
	db := setupChecklistTestDB(t)
	svc := newChecklistService(db)
	seedChecklistOrder(t, db)
	ctx := context.Background()

	// 模拟键算法变更前落库的孤儿行：product_index 偏移，但 (sku, color, size) 正确
	now := time.Now()
	orphans := []model.CheckboxState{
		{
			ShopID: 1, OrderID: 1,
			VariantKey: "1--CREATOR--Terra Cotta--M--7--0",
			SKU:        "CREATOR", Color: "Terra Cotta", Size: "M",
			ProductIndex: 7, UnitIndex: 0,
			Checked: true, CheckedAt: &now,
		},
		{
			ShopID: 1, OrderID: 1,
			VariantKey: "1--MUG-01--no-color--no-size--8--0",
			SKU:        "MUG-01", Color: "no-color", Size: "no-size",
			ProductIndex: 8, UnitIndex: 0,
			Checked: true, CheckedAt: &now,
		},
	}
	if err := db.Create(&orphans).Error; err != nil {
		t.Fatalf("写入孤儿行失败: %v", err)
	}

	progress, err := svc.PurgeAndRecalculate(ctx, 1, 1)
	if err != nil {
		t.Fatalf("清理重建失败: %v", err)
	}

	// 勾选数量按 (sku, color, size) 恢复
	if progress.Checked != 2 || progress.Total != 3 {
		t.Errorf("progress = %d/%d, want 2/3", progress.Checked, progress.Total)
	}

	// 重建后的键必须是当前内容的规范键
	var rebuilt []model.CheckboxState
	db.Where("order_id = ?", 1).Order("variant_key ASC").Find(&rebuilt)
	if len(rebuilt) != 3 {
		t.Fatalf("重建 %d 行, want 3", len(rebuilt))
	}
	for _, s := range rebuilt {
		if s.ProductIndex >= 7 {
			t.Errorf("孤儿键未被清理: %s", s.VariantKey)
		}
	}
}
