package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ==================== CheckboxCache 勾选状态缓存 ====================

// 缓存键格式：checklist:{orderID}，hash field 为 variant_key，值 "1"/"0"
const checkboxKeyPrefix = "checklist:"

// 进度徽章轮询频繁，缓存 24h，写穿透保持新鲜
const checkboxCacheTTL = 24 * time.Hour

// CheckboxCache 勾选状态 Redis 缓存
// 文档库角色：订单维度一个 hash，读侧容忍冷缓存（miss 时回源 Postgres）
// 缓存故障只降级不报错，Postgres 永远是事实来源
type CheckboxCache struct {
	rdb *redis.Client
}

// NewCheckboxCache 创建勾选状态缓存
// rdb 可为 nil（未配置 Redis 时所有操作为 no-op）
func NewCheckboxCache(rdb *redis.Client) *CheckboxCache {
	return &CheckboxCache{rdb: rdb}
}

func checkboxCacheKey(orderID int64) string {
	return checkboxKeyPrefix + strconv.FormatInt(orderID, 10)
}

// SetChecked 写入单个勾选状态
// 只更新已存在的 hash：过期或 Redis 重启后的冷缓存不允许被单个 field 重新长出来，
// 否则进度读取会信任残缺 hash。返回 false 表示缓存冷，调用方应整单回填
func (c *CheckboxCache) SetChecked(ctx context.Context, orderID int64, variantKey string, checked bool) (bool, error) {
	if c.rdb == nil {
		return true, nil
	}
	key := checkboxCacheKey(orderID)
	exists, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if exists == 0 {
		return false, nil
	}

	val := "0"
	if checked {
		val = "1"
	}
	pipe := c.rdb.Pipeline()
	pipe.HSet(ctx, key, variantKey, val)
	pipe.Expire(ctx, key, checkboxCacheTTL)
	_, err = pipe.Exec(ctx)
	return true, err
}

// GetOrderStates 读取订单全部勾选状态
// 返回 map[variantKey]checked；缓存为空或 Redis 不可用时返回 nil（调用方回源）
func (c *CheckboxCache) GetOrderStates(ctx context.Context, orderID int64) (map[string]bool, error) {
	if c.rdb == nil {
		return nil, nil
	}
	fields, err := c.rdb.HGetAll(ctx, checkboxCacheKey(orderID)).Result()
	if err != nil || len(fields) == 0 {
		return nil, err
	}
	states := make(map[string]bool, len(fields))
	for k, v := range fields {
		states[k] = v == "1"
	}
	return states, nil
}

// FillOrder 整单回填（批量初始化 / 清理重建后）
func (c *CheckboxCache) FillOrder(ctx context.Context, orderID int64, states map[string]bool) error {
	if c.rdb == nil || len(states) == 0 {
		return nil
	}
	fields := make(map[string]interface{}, len(states))
	for k, v := range states {
		val := "0"
		if v {
			val = "1"
		}
		fields[k] = val
	}
	key := checkboxCacheKey(orderID)
	pipe := c.rdb.Pipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, checkboxCacheTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// InvalidateOrder 失效整单缓存
func (c *CheckboxCache) InvalidateOrder(ctx context.Context, orderID int64) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, checkboxCacheKey(orderID)).Err()
}
