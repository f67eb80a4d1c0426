package repository

import (
	"context"
	"testing"
	"time"

	"orderpro_v1_202608/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupCheckboxTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开内存数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.CheckboxState{}); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}
	return db
}

func TestCheckboxUpsertIdempotent(t *testing.T) {
	db := setupCheckboxTestDB(t)
	repo := NewCheckboxRepository(db)
	ctx := context.Background()

	now := time.Now()
	state := &model.CheckboxState{
		ShopID:     1,
		OrderID:    100,
		VariantKey: "100--CREATOR--Terra Cotta--M--0--0",
		SKU:        "CREATOR",
		Color:      "Terra Cotta",
		Size:       "M",
		Checked:    true,
		CheckedAt:  &now,
	}
	if err := repo.Upsert(ctx, state); err != nil {
		t.Fatalf("首次 upsert 失败: %v", err)
	}

	// 同键再写一次：覆盖而不新增
	second := &model.CheckboxState{
		ShopID:     1,
		OrderID:    100,
		VariantKey: "100--CREATOR--Terra Cotta--M--0--0",
		SKU:        "CREATOR",
		Color:      "Terra Cotta",
		Size:       "M",
		Checked:    false,
	}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("二次 upsert 失败: %v", err)
	}

	var count int64
	db.Model(&model.CheckboxState{}).Count(&count)
	if count != 1 {
		t.Errorf("同 variant_key 重复 upsert 后应只有 1 行, got %d", count)
	}

	got, err := repo.GetByKey(ctx, "100--CREATOR--Terra Cotta--M--0--0")
	if err != nil {
		t.Fatalf("GetByKey 失败: %v", err)
	}
	if got.Checked {
		t.Error("第二次写入取消勾选，读回应为未勾选")
	}
	if got.ID != state.ID {
		t.Errorf("覆盖写应保留原主键, want %d got %d", state.ID, got.ID)
	}
}

func TestCheckboxCountAndDelete(t *testing.T) {
	db := setupCheckboxTestDB(t)
	repo := NewCheckboxRepository(db)
	ctx := context.Background()

	states := []model.CheckboxState{
		{ShopID: 1, OrderID: 200, VariantKey: "200--A--no-color--no-size--0--0", SKU: "A", Checked: true},
		{ShopID: 1, OrderID: 200, VariantKey: "200--A--no-color--no-size--0--1", SKU: "A"},
		{ShopID: 1, OrderID: 201, VariantKey: "201--B--no-color--no-size--0--0", SKU: "B", Checked: true},
	}
	if err := repo.BatchCreate(ctx, states); err != nil {
		t.Fatalf("批量写入失败: %v", err)
	}

	checked, total, err := repo.CountByOrder(ctx, 200)
	if err != nil {
		t.Fatalf("计数失败: %v", err)
	}
	if checked != 1 || total != 2 {
		t.Errorf("订单 200 进度应为 1/2, got %d/%d", checked, total)
	}

	list, err := repo.ListByOrder(ctx, 200)
	if err != nil {
		t.Fatalf("ListByOrder 失败: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("订单 200 应有 2 行, got %d", len(list))
	}

	if err := repo.DeleteByOrder(ctx, 200); err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	_, total, _ = repo.CountByOrder(ctx, 200)
	if total != 0 {
		t.Errorf("删除后订单 200 不应有残留, got %d", total)
	}

	// 其他订单不受影响
	checked, total, _ = repo.CountByOrder(ctx, 201)
	if checked != 1 || total != 1 {
		t.Errorf("订单 201 不应被波及, got %d/%d", checked, total)
	}
}
