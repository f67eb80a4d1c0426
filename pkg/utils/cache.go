package utils

import (
	"fmt"
	"sync"
	"time"
)

// 使用 sync.Map 保证并发安全
var (
	memoryCache sync.Map
)

// cacheItem 内部结构，包含值和过期时间
type cacheItem struct {
	value      string
	expiration int64
}

// syncResultKey 同步结果缓存键
// syncType: orders / products
func syncResultKey(syncType string, shopID int64) string {
	return fmt.Sprintf("sync:%s:%d", syncType, shopID)
}

// SetSyncResult 记录店铺最近一次同步结果摘要
// 保留 1 小时，给状态查询接口用
func SetSyncResult(syncType string, shopID int64, summary string) {
	exp := time.Now().Add(time.Hour).Unix()

	memoryCache.Store(syncResultKey(syncType, shopID), cacheItem{
		value:      summary,
		expiration: exp,
	})
}

// GetSyncResult 读取店铺最近一次同步结果摘要
func GetSyncResult(syncType string, shopID int64) (string, bool) {
	val, ok := memoryCache.Load(syncResultKey(syncType, shopID))
	if !ok {
		return "", false
	}

	item := val.(cacheItem)

	// 检查是否过期
	if time.Now().Unix() > item.expiration {
		memoryCache.Delete(syncResultKey(syncType, shopID)) // 懒删除
		return "", false
	}

	return item.value, true
}

// DeleteSyncResult 删除同步结果摘要
func DeleteSyncResult(syncType string, shopID int64) {
	memoryCache.Delete(syncResultKey(syncType, shopID))
}
