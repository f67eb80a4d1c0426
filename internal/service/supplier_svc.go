package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"orderpro_v1_202608/internal/model"
	"orderpro_v1_202608/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ==================== SupplierService 补货单服务 ====================

// SupplierService 供应商补货单服务
// 条目或差额调整每次变化都重算金额并落库，金额字段永远与条目一致
type SupplierService struct {
	shopRepo     repository.ShopRepository
	locationRepo repository.LocationRepository
	supplierRepo repository.SupplierOrderRepository
	variantRepo  repository.VariantRepository
	clients      *ClientFactory
}

// NewSupplierService 创建补货单服务
func NewSupplierService(
	shopRepo repository.ShopRepository,
	locationRepo repository.LocationRepository,
	supplierRepo repository.SupplierOrderRepository,
	variantRepo repository.VariantRepository,
	clients *ClientFactory,
) *SupplierService {
	return &SupplierService{
		shopRepo:     shopRepo,
		locationRepo: locationRepo,
		supplierRepo: supplierRepo,
		variantRepo:  variantRepo,
		clients:      clients,
	}
}

// ==================== 基础 CRUD ====================

// Create 创建补货单（草稿态）
func (s *SupplierService) Create(ctx context.Context, shopID int64, note string) (*model.SupplierOrder, error) {
	if _, err := s.shopRepo.GetByID(ctx, shopID); err != nil {
		return nil, fmt.Errorf("店铺不存在")
	}

	order := &model.SupplierOrder{
		ShopID:    shopID,
		Reference: newSupplierReference(),
		Status:    model.SupplierStatusDraft,
		Note:      note,
	}
	if err := s.supplierRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("创建补货单失败: %w", err)
	}
	return order, nil
}

// List 分页查询补货单
func (s *SupplierService) List(ctx context.Context, filter repository.SupplierOrderFilter) ([]model.SupplierOrder, int64, error) {
	if filter.ShopID == 0 {
		return nil, 0, fmt.Errorf("缺少店铺 ID")
	}
	return s.supplierRepo.List(ctx, filter)
}

// GetDetail 查询补货单详情（含条目）
func (s *SupplierService) GetDetail(ctx context.Context, shopID, orderID int64) (*model.SupplierOrder, error) {
	order, err := s.supplierRepo.GetByIDWithItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("补货单不存在")
	}
	if order.ShopID != shopID {
		return nil, fmt.Errorf("补货单不属于该店铺")
	}
	return order, nil
}

// Delete 删除补货单（仅草稿态允许）
func (s *SupplierService) Delete(ctx context.Context, shopID, orderID int64) error {
	order, err := s.GetDetail(ctx, shopID, orderID)
	if err != nil {
		return err
	}
	if order.Status != model.SupplierStatusDraft {
		return fmt.Errorf("只有草稿态补货单可以删除")
	}
	return s.supplierRepo.Delete(ctx, orderID)
}

// ==================== 条目操作 ====================

// AddItem 添加补货条目并重算金额
func (s *SupplierService) AddItem(ctx context.Context, shopID, orderID, variantID int64, quantity int, unitPriceCents int64) (*model.SupplierOrder, error) {
	order, err := s.GetDetail(ctx, shopID, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsTerminal() {
		return nil, fmt.Errorf("补货单已完成，不能修改条目")
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("数量必须大于 0")
	}

	variant, err := s.variantRepo.GetByID(ctx, variantID)
	if err != nil {
		return nil, fmt.Errorf("变体不存在")
	}
	if variant.ShopID != shopID {
		return nil, fmt.Errorf("变体不属于该店铺")
	}
	if unitPriceCents <= 0 {
		// 未指定单价时取变体成本
		unitPriceCents = variant.CostCents
	}

	item := &model.SupplierOrderItem{
		SupplierOrderID: orderID,
		VariantID:       variantID,
		SKU:             variant.SKU,
		Title:           variant.Title,
		Quantity:        quantity,
		UnitPriceCents:  unitPriceCents,
	}
	if err := s.supplierRepo.AddItem(ctx, item); err != nil {
		return nil, fmt.Errorf("添加条目失败: %w", err)
	}

	return s.recalculate(ctx, orderID)
}

// UpdateItem 修改条目数量/单价并重算金额
func (s *SupplierService) UpdateItem(ctx context.Context, shopID, orderID, itemID int64, quantity int, unitPriceCents int64) (*model.SupplierOrder, error) {
	order, err := s.GetDetail(ctx, shopID, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsTerminal() {
		return nil, fmt.Errorf("补货单已完成，不能修改条目")
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("数量必须大于 0")
	}

	item, err := s.supplierRepo.GetItem(ctx, itemID)
	if err != nil || item.SupplierOrderID != orderID {
		return nil, fmt.Errorf("条目不存在")
	}

	item.Quantity = quantity
	if unitPriceCents > 0 {
		item.UnitPriceCents = unitPriceCents
	}
	if err := s.supplierRepo.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("更新条目失败: %w", err)
	}

	return s.recalculate(ctx, orderID)
}

// RemoveItem 删除条目并重算金额
func (s *SupplierService) RemoveItem(ctx context.Context, shopID, orderID, itemID int64) (*model.SupplierOrder, error) {
	order, err := s.GetDetail(ctx, shopID, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsTerminal() {
		return nil, fmt.Errorf("补货单已完成，不能修改条目")
	}

	item, err := s.supplierRepo.GetItem(ctx, itemID)
	if err != nil || item.SupplierOrderID != orderID {
		return nil, fmt.Errorf("条目不存在")
	}
	if err := s.supplierRepo.DeleteItem(ctx, itemID); err != nil {
		return nil, fmt.Errorf("删除条目失败: %w", err)
	}

	return s.recalculate(ctx, orderID)
}

// ValidateItem 标记条目人工核对完成
func (s *SupplierService) ValidateItem(ctx context.Context, shopID, orderID, itemID int64, validated bool) error {
	order, err := s.GetDetail(ctx, shopID, orderID)
	if err != nil {
		return err
	}
	if order.IsTerminal() {
		return fmt.Errorf("补货单已完成，不能修改条目")
	}

	item, err := s.supplierRepo.GetItem(ctx, itemID)
	if err != nil || item.SupplierOrderID != orderID {
		return fmt.Errorf("条目不存在")
	}
	item.Validated = validated
	return s.supplierRepo.UpdateItem(ctx, item)
}

// SetBalanceAdjustment 设置差额调整并重算金额（可为负数）
func (s *SupplierService) SetBalanceAdjustment(ctx context.Context, shopID, orderID, amountCents int64) (*model.SupplierOrder, error) {
	order, err := s.GetDetail(ctx, shopID, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsTerminal() {
		return nil, fmt.Errorf("补货单已完成，不能修改金额")
	}

	order.BalanceAdjustmentCents = amountCents
	order.Recalculate()
	if err := s.supplierRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("更新补货单失败: %w", err)
	}
	return order, nil
}

// ==================== 状态迁移 ====================

// Transition 推进补货单状态
// draft -> requested -> produced -> completed，跳级和回退都拒绝；
// 进入 completed 时库存入库（本地 + Shopify）
func (s *SupplierService) Transition(ctx context.Context, shopID, orderID int64, next string) (*model.SupplierOrder, error) {
	order, err := s.GetDetail(ctx, shopID, orderID)
	if err != nil {
		return nil, err
	}
	if !order.CanTransitionTo(next) {
		return nil, fmt.Errorf("补货单状态不能从 %s 变为 %s", order.Status, next)
	}
	if next == model.SupplierStatusRequested && len(order.Items) == 0 {
		return nil, fmt.Errorf("补货单没有条目，不能下单")
	}

	order.Status = next
	if next == model.SupplierStatusCompleted {
		now := time.Now()
		order.CompletedAt = &now
	}
	if err := s.supplierRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("更新补货单失败: %w", err)
	}

	if next == model.SupplierStatusCompleted {
		s.receiveStock(ctx, order)
	}
	return order, nil
}

// receiveStock 完成入库：本地库存增量 + Shopify 库存水位调整
// 远端失败只告警，本地库存以补货单为准
func (s *SupplierService) receiveStock(ctx context.Context, order *model.SupplierOrder) {
	shop, err := s.shopRepo.GetByID(ctx, order.ShopID)
	if err != nil {
		zap.S().Errorf("[Supplier] 补货单 %s 入库失败，店铺不存在", order.Reference)
		return
	}

	var remoteLocationID int64
	if shop.DefaultLocationID != 0 {
		if loc, err := s.locationRepo.GetByID(ctx, shop.DefaultLocationID); err == nil {
			remoteLocationID = loc.ShopifyLocationID
		}
	}

	client := s.clients.Rest(shop)
	for i := range order.Items {
		item := &order.Items[i]

		if err := s.variantRepo.IncrementInventory(ctx, item.VariantID, item.Quantity); err != nil {
			zap.S().Errorf("[Supplier] 补货单 %s 条目 %s 本地入库失败: %v", order.Reference, item.SKU, err)
			continue
		}

		if !shop.IsActive() || remoteLocationID == 0 {
			continue
		}
		variant, err := s.variantRepo.GetByID(ctx, item.VariantID)
		if err != nil || variant.ShopifyInventoryItemID == 0 {
			continue
		}
		if err := client.AdjustInventoryLevel(ctx, variant.ShopifyInventoryItemID, remoteLocationID, item.Quantity); err != nil {
			zap.S().Warnf("[Supplier] 补货单 %s 条目 %s 远端库存调整失败: %v", order.Reference, item.SKU, err)
		}
	}
	zap.S().Infof("[Supplier] 补货单 %s 入库完成，共 %d 个条目", order.Reference, len(order.Items))
}

// ==================== 内部辅助 ====================

// recalculate 重新加载条目并重算金额落库
func (s *SupplierService) recalculate(ctx context.Context, orderID int64) (*model.SupplierOrder, error) {
	order, err := s.supplierRepo.GetByIDWithItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("补货单不存在")
	}
	order.Recalculate()
	if err := s.supplierRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("更新补货单金额失败: %w", err)
	}
	return order, nil
}

// newSupplierReference 生成业务单号，如 SUP-9F3A2C1B
func newSupplierReference() string {
	return "SUP-" + strings.ToUpper(uuid.NewString()[:8])
}
