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

// ==================== ChecklistService 生产清单服务 ====================

// ChecklistService 生产清单服务
// 勾选行按确定性变体键 upsert 持久化（Postgres 为事实来源），
// Redis 以订单维度 hash 做读缓存，写穿透、读侧容忍冷缓存
type ChecklistService struct {
	orderRepo    repository.OrderRepository
	checkboxRepo repository.CheckboxRepository
	cache        *repository.CheckboxCache
}

// NewChecklistService 创建生产清单服务
func NewChecklistService(
	orderRepo repository.OrderRepository,
	checkboxRepo repository.CheckboxRepository,
	cache *repository.CheckboxCache,
) *ChecklistService {
	return &ChecklistService{
		orderRepo:    orderRepo,
		checkboxRepo: checkboxRepo,
		cache:        cache,
	}
}

// ==================== 键生成 ====================

// BuildOrderKeys 从订单内容生成全量勾选行骨架（未勾选）
// 不变量：每个可建键的未取消订单行的每件数量恰好一行；
// 取消行和无 SKU 行（小费、礼品卡等）不产生勾选行，与计费侧的降级口径一致
func BuildOrderKeys(order *model.Order) ([]model.CheckboxState, error) {
	orderID := strconv.FormatInt(order.ID, 10)
	var states []model.CheckboxState

	for i := range order.Items {
		item := &order.Items[i]
		if item.IsCancelled() || item.SKU == "" {
			continue
		}

		color, size := ExtractColorSize(nil, item.VariantTitle)
		for j := 0; j < item.Quantity; j++ {
			key, err := NewVariantKey(orderID, item.SKU, color, size, i, j)
			if err != nil {
				return nil, fmt.Errorf("订单 %s 行 %d 生成变体键失败: %w", order.Name, i, err)
			}
			states = append(states, model.CheckboxState{
				ShopID:       order.ShopID,
				OrderID:      order.ID,
				VariantKey:   key.String(),
				SKU:          key.SKU,
				Color:        key.Color,
				Size:         key.Size,
				ProductIndex: i,
				UnitIndex:    j,
			})
		}
	}
	return states, nil
}

// ==================== 初始化与勾选 ====================

// InitializeOrder 批量初始化订单勾选行（幂等，已存在的键跳过）
func (s *ChecklistService) InitializeOrder(ctx context.Context, shopID, orderID int64) (int, error) {
	order, err := s.loadOrder(ctx, shopID, orderID)
	if err != nil {
		return 0, err
	}

	wanted, err := BuildOrderKeys(order)
	if err != nil {
		return 0, err
	}

	existing, err := s.checkboxRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return 0, fmt.Errorf("查询勾选状态失败: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for i := range existing {
		have[existing[i].VariantKey] = true
	}

	var missing []model.CheckboxState
	for i := range wanted {
		if !have[wanted[i].VariantKey] {
			missing = append(missing, wanted[i])
		}
	}
	if len(missing) > 0 {
		if err := s.checkboxRepo.BatchCreate(ctx, missing); err != nil {
			return 0, fmt.Errorf("批量创建勾选行失败: %w", err)
		}
	}

	s.refillCache(ctx, orderID)
	return len(missing), nil
}

// Toggle 勾选/取消单件
// 键必须属于该订单当前内容（挡住过期键）；行懒创建，重复勾选 last-write-wins
func (s *ChecklistService) Toggle(ctx context.Context, shopID, orderID int64, variantKey string, checked bool) (*model.CheckboxState, error) {
	order, err := s.loadOrder(ctx, shopID, orderID)
	if err != nil {
		return nil, err
	}

	wanted, err := BuildOrderKeys(order)
	if err != nil {
		return nil, err
	}

	var target *model.CheckboxState
	for i := range wanted {
		if wanted[i].VariantKey == variantKey {
			target = &wanted[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("变体键不属于该订单: %s", variantKey)
	}

	target.Checked = checked
	if checked {
		now := time.Now()
		target.CheckedAt = &now
	}

	if err := s.checkboxRepo.Upsert(ctx, target); err != nil {
		return nil, fmt.Errorf("写入勾选状态失败: %w", err)
	}

	// 缓存写穿透；冷缓存不做增量写（会产生残缺 hash），改为整单回填
	updated, err := s.cache.SetChecked(ctx, orderID, variantKey, checked)
	if err != nil {
		zap.S().Warnf("[Checklist] 勾选缓存写入失败 order=%d: %v", orderID, err)
	} else if !updated {
		s.refillCache(ctx, orderID)
	}

	return target, nil
}

// ListUnits 订单全量单件清单（骨架 + 持久化勾选状态叠加）
// 骨架从当前订单内容生成，没落过库的件按未勾选展示
func (s *ChecklistService) ListUnits(ctx context.Context, shopID, orderID int64) ([]model.CheckboxState, error) {
	order, err := s.loadOrder(ctx, shopID, orderID)
	if err != nil {
		return nil, err
	}

	units, err := BuildOrderKeys(order)
	if err != nil {
		return nil, err
	}

	persisted, err := s.checkboxRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("查询勾选状态失败: %w", err)
	}
	byKey := make(map[string]*model.CheckboxState, len(persisted))
	for i := range persisted {
		byKey[persisted[i].VariantKey] = &persisted[i]
	}

	for i := range units {
		if p, ok := byKey[units[i].VariantKey]; ok {
			units[i].ID = p.ID
			units[i].Checked = p.Checked
			units[i].CheckedAt = p.CheckedAt
		}
	}
	return units, nil
}

// ==================== 进度聚合 ====================

// Progress 进度徽章数据
type Progress struct {
	Checked int `json:"checked"`
	Total   int `json:"total"`
}

// SKUProgress 按 SKU 分组的进度
type SKUProgress struct {
	SKU     string `json:"sku"`
	Checked int    `json:"checked"`
	Total   int    `json:"total"`
}

// GetProgress 订单进度 N/M
// 总数从订单内容实时计算（取消行、无 SKU 行不计入）；
// 勾选数优先读缓存，冷缓存回源 Postgres 重算，保证正确性
func (s *ChecklistService) GetProgress(ctx context.Context, shopID, orderID int64) (*Progress, error) {
	order, err := s.loadOrder(ctx, shopID, orderID)
	if err != nil {
		return nil, err
	}

	units, err := BuildOrderKeys(order)
	if err != nil {
		return nil, err
	}
	total := len(units)

	if cached, err := s.cache.GetOrderStates(ctx, orderID); err == nil && cached != nil {
		checked := 0
		for _, c := range cached {
			if c {
				checked++
			}
		}
		return &Progress{Checked: checked, Total: total}, nil
	}

	checked, _, err := s.checkboxRepo.CountByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("统计勾选状态失败: %w", err)
	}
	return &Progress{Checked: int(checked), Total: total}, nil
}

// GetSKUProgress 按 SKU 分组的进度列表
func (s *ChecklistService) GetSKUProgress(ctx context.Context, shopID, orderID int64) ([]SKUProgress, error) {
	order, err := s.loadOrder(ctx, shopID, orderID)
	if err != nil {
		return nil, err
	}

	// 总数按订单内容分组，无 SKU 行不参与分组
	totals := make(map[string]int)
	var skuOrder []string
	for i := range order.Items {
		item := &order.Items[i]
		if item.IsCancelled() || item.SKU == "" {
			continue
		}
		if _, ok := totals[item.SKU]; !ok {
			skuOrder = append(skuOrder, item.SKU)
		}
		totals[item.SKU] += item.Quantity
	}

	// 勾选数按持久化行分组
	states, err := s.checkboxRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("查询勾选状态失败: %w", err)
	}
	checked := make(map[string]int)
	for i := range states {
		if states[i].Checked {
			checked[states[i].SKU]++
		}
	}

	result := make([]SKUProgress, 0, len(skuOrder))
	for _, sku := range skuOrder {
		result = append(result, SKUProgress{
			SKU:     sku,
			Checked: checked[sku],
			Total:   totals[sku],
		})
	}
	return result, nil
}

// ==================== 清理重建 ====================

// PurgeAndRecalculate 清理并重建订单的全部勾选行
// 修复键算法变更造成的孤儿数据：删除旧行、按当前订单内容重新生成，
// 勾选状态按 (sku, color, size) 的勾选数量恢复，而不是按过期的索引键
func (s *ChecklistService) PurgeAndRecalculate(ctx context.Context, shopID, orderID int64) (*Progress, error) {
	order, err := s.loadOrder(ctx, shopID, orderID)
	if err != nil {
		return nil, err
	}

	existing, err := s.checkboxRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("查询勾选状态失败: %w", err)
	}

	// 保留的勾选数量按 (sku, color, size) 分组
	type groupKey struct{ sku, color, size string }
	keep := make(map[groupKey]int)
	for i := range existing {
		if existing[i].Checked {
			keep[groupKey{existing[i].SKU, existing[i].Color, existing[i].Size}]++
		}
	}

	if err := s.checkboxRepo.DeleteByOrder(ctx, orderID); err != nil {
		return nil, fmt.Errorf("删除旧勾选行失败: %w", err)
	}

	rebuilt, err := BuildOrderKeys(order)
	if err != nil {
		return nil, err
	}

	// 按件序恢复勾选，每组最多恢复保留数量
	now := time.Now()
	checked := 0
	for i := range rebuilt {
		gk := groupKey{rebuilt[i].SKU, rebuilt[i].Color, rebuilt[i].Size}
		if keep[gk] > 0 {
			rebuilt[i].Checked = true
			rebuilt[i].CheckedAt = &now
			keep[gk]--
			checked++
		}
	}

	if err := s.checkboxRepo.BatchCreate(ctx, rebuilt); err != nil {
		return nil, fmt.Errorf("重建勾选行失败: %w", err)
	}

	s.refillCache(ctx, orderID)

	zap.S().Infof("[Checklist] 订单 %s 清理重建完成: 重建 %d 行, 恢复勾选 %d 件",
		order.Name, len(rebuilt), checked)

	return &Progress{Checked: checked, Total: len(rebuilt)}, nil
}

// DropOrderCache 删除订单时连带清掉缓存的勾选 hash
// 不等 TTL 自然过期，避免已删订单的进度还能从缓存读出来
func (s *ChecklistService) DropOrderCache(ctx context.Context, orderID int64) {
	if err := s.cache.InvalidateOrder(ctx, orderID); err != nil {
		zap.S().Warnf("[Checklist] 勾选缓存清理失败 order=%d: %v", orderID, err)
	}
}

// ==================== 内部辅助 ====================

// loadOrder 加载订单并校验租户归属
func (s *ChecklistService) loadOrder(ctx context.Context, shopID, orderID int64) (*model.Order, error) {
	order, err := s.orderRepo.GetByIDWithItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("订单不存在")
	}
	if order.ShopID != shopID {
		return nil, fmt.Errorf("订单不属于该店铺")
	}
	return order, nil
}

// refillCache 从持久化行整单回填缓存，失败只记日志
func (s *ChecklistService) refillCache(ctx context.Context, orderID int64) {
	states, err := s.checkboxRepo.ListByOrder(ctx, orderID)
	if err != nil {
		zap.S().Warnf("[Checklist] 缓存回填读取失败 order=%d: %v", orderID, err)
		return
	}
	m := make(map[string]bool, len(states))
	for i := range states {
		m[states[i].VariantKey] = states[i].Checked
	}
	if err := s.cache.FillOrder(ctx, orderID, m); err != nil {
		zap.S().Warnf("[Checklist] 缓存回填写入失败 order=%d: %v", orderID, err)
	}
}
