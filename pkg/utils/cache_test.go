package utils

import (
	"testing"
)

func TestSyncResultCache(t *testing.T) {
	defer DeleteSyncResult("orders", 1)

	if _, ok := GetSyncResult("orders", 1); ok {
		t.Fatal("未写入时不应命中")
	}

	SetSyncResult("orders", 1, "成功 12 条, 失败 0 条")
	got, ok := GetSyncResult("orders", 1)
	if !ok || got != "成功 12 条, 失败 0 条" {
		t.Errorf("got = %q, ok = %v", got, ok)
	}

	// 类型维度隔离
	if _, ok := GetSyncResult("products", 1); ok {
		t.Error("不同同步类型不应共享缓存")
	}

	DeleteSyncResult("orders", 1)
	if _, ok := GetSyncResult("orders", 1); ok {
		t.Error("删除后不应命中")
	}
}
