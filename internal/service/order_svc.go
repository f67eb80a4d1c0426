package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"orderpro_v1_202608/internal/model"
	"orderpro_v1_202608/internal/repository"
	"orderpro_v1_202608/pkg/shopify"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ==================== OrderService 订单服务 ====================

// 订单保留期，超期的订单由清理任务硬删除
const orderRetentionMonths = 6

// OrderService 订单服务
type OrderService struct {
	shopRepo     repository.ShopRepository
	orderRepo    repository.OrderRepository
	lineItemRepo repository.LineItemRepository
	checkboxRepo repository.CheckboxRepository
	checklist    *ChecklistService
	clients      *ClientFactory
}

// NewOrderService 创建订单服务
func NewOrderService(
	shopRepo repository.ShopRepository,
	orderRepo repository.OrderRepository,
	lineItemRepo repository.LineItemRepository,
	checkboxRepo repository.CheckboxRepository,
	checklist *ChecklistService,
	clients *ClientFactory,
) *OrderService {
	return &OrderService{
		shopRepo:     shopRepo,
		orderRepo:    orderRepo,
		lineItemRepo: lineItemRepo,
		checkboxRepo: checkboxRepo,
		checklist:    checklist,
		clients:      clients,
	}
}

// ==================== 查询 ====================

// List 分页查询订单
func (s *OrderService) List(ctx context.Context, filter repository.OrderFilter) ([]model.Order, int64, error) {
	if filter.ShopID == 0 {
		return nil, 0, fmt.Errorf("缺少店铺 ID")
	}
	return s.orderRepo.List(ctx, filter)
}

// GetDetail 查询订单详情（含订单行）
func (s *OrderService) GetDetail(ctx context.Context, shopID, orderID int64) (*model.Order, error) {
	order, err := s.orderRepo.GetByIDWithItems(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("订单不存在")
		}
		return nil, fmt.Errorf("查询订单失败: %w", err)
	}
	if order.ShopID != shopID {
		return nil, fmt.Errorf("订单不属于该店铺")
	}
	return order, nil
}

// ==================== 订单同步 ====================

// SyncOrders 从 Shopify 拉取订单并入库
// Link 头逐页翻页；单条失败记入结果不中断整页，由调用方决定部分成功是否可接受
func (s *OrderService) SyncOrders(ctx context.Context, shopID int64, sink EventSink) (*shopify.BatchResult, error) {
	shop, err := s.loadActiveShop(ctx, shopID)
	if err != nil {
		sink.emit(EventError, err.Error())
		return nil, err
	}

	client := s.clients.Rest(shop)
	result := &shopify.BatchResult{}

	params := url.Values{}
	params.Set("status", "any")
	params.Set("limit", "250")
	if shop.LastOrderSyncAt != nil {
		// 回看 1 小时，弥补时钟偏差和上次同步时的在途更新
		params.Set("updated_at_min", shop.LastOrderSyncAt.Add(-time.Hour).UTC().Format(time.RFC3339))
	}

	sink.emit(EventInfo, fmt.Sprintf("开始同步店铺 %s 的订单", shop.Name))

	pageURL := ""
	page := 0
	for {
		orders, next, err := client.GetOrdersPage(ctx, pageURL, params)
		if err != nil {
			s.markTokenIfAuthFailed(ctx, shop, err)
			sink.emit(EventError, fmt.Sprintf("拉取订单失败: %v", err))
			return result, fmt.Errorf("拉取订单失败: %w", err)
		}

		page++
		sink.emit(EventInfo, fmt.Sprintf("第 %d 页获取 %d 笔订单", page, len(orders)))

		for i := range orders {
			if err := s.upsertFromRest(ctx, shop, &orders[i]); err != nil {
				zap.S().Warnf("[Sync] 订单 %s 入库失败: %v", orders[i].Name, err)
				sink.emit(EventWarning, fmt.Sprintf("订单 %s 入库失败: %v", orders[i].Name, err))
				result.AddFailure(orders[i].ID, err)
				continue
			}
			result.AddSuccess(orders[i].ID)
		}

		if next == "" {
			break
		}
		pageURL = next
	}

	if err := s.shopRepo.TouchOrderSync(ctx, shopID, time.Now()); err != nil {
		zap.S().Warnf("[Sync] 更新店铺 %d 订单同步时间失败: %v", shopID, err)
	}

	sink.emit(EventSuccess, fmt.Sprintf("订单同步完成: %s", result.Summary()))
	return result, nil
}

// upsertFromRest 单笔订单入库（存在则更新状态与订单行数量）
func (s *OrderService) upsertFromRest(ctx context.Context, shop *model.Shop, ro *shopify.RestOrder) error {
	raw, err := json.Marshal(ro)
	if err != nil {
		return fmt.Errorf("序列化原始数据失败: %w", err)
	}

	now := time.Now()
	existing, err := s.orderRepo.GetByShopifyOrderID(ctx, ro.ID)
	switch {
	case err == nil:
		// 已存在：只更新状态类字段和订单行数量，订单内容不回改
		fields := map[string]interface{}{
			"fulfillment_status": restFulfillmentStatus(ro.FulfillmentStatus),
			"financial_status":   ro.FinancialStatus,
			"note":               ro.Note,
			"tags":               ro.Tags,
			"shopify_raw_data":   raw,
			"synced_at":          now,
		}
		if t := parseShopifyTime(ro.UpdatedAt); t != nil {
			fields["shopify_updated_at"] = *t
		}
		if err := s.orderRepo.UpdateFields(ctx, existing.ID, fields); err != nil {
			return fmt.Errorf("更新订单失败: %w", err)
		}
		return s.syncLineItems(ctx, existing.ID, ro)

	case errors.Is(err, gorm.ErrRecordNotFound):
		order := &model.Order{
			ShopifyOrderID:    ro.ID,
			ShopID:            shop.ID,
			Name:              ro.Name,
			FulfillmentStatus: restFulfillmentStatus(ro.FulfillmentStatus),
			FinancialStatus:   ro.FinancialStatus,
			Note:              ro.Note,
			Tags:              ro.Tags,
			ShopifyRawData:    raw,
			ShopifyCreatedAt:  parseShopifyTime(ro.CreatedAt),
			ShopifyUpdatedAt:  parseShopifyTime(ro.UpdatedAt),
			SyncedAt:          &now,
		}
		for i := range ro.LineItems {
			order.Items = append(order.Items, restLineItemToModel(&ro.LineItems[i], ro.Currency))
		}
		if err := s.orderRepo.Create(ctx, order); err != nil {
			return fmt.Errorf("创建订单失败: %w", err)
		}
		// 新订单立即建生产清单骨架
		if _, err := s.checklist.InitializeOrder(ctx, shop.ID, order.ID); err != nil {
			zap.S().Warnf("[Sync] 订单 %s 初始化生产清单失败: %v", order.Name, err)
		}
		return nil

	default:
		return fmt.Errorf("查询订单失败: %w", err)
	}
}

// syncLineItems 同步订单行数量（退款后 current_quantity 会变化）
func (s *OrderService) syncLineItems(ctx context.Context, orderID int64, ro *shopify.RestOrder) error {
	for i := range ro.LineItems {
		rli := &ro.LineItems[i]
		existing, err := s.lineItemRepo.GetByShopifyLineItemID(ctx, rli.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			item := restLineItemToModel(rli, ro.Currency)
			item.OrderID = orderID
			if err := s.lineItemRepo.Create(ctx, &item); err != nil {
				return fmt.Errorf("创建订单行失败: %w", err)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("查询订单行失败: %w", err)
		}
		if existing.Quantity != rli.Quantity || existing.RefundableQuantity != rli.CurrentQuantity {
			existing.Quantity = rli.Quantity
			existing.RefundableQuantity = rli.CurrentQuantity
			if err := s.lineItemRepo.Update(ctx, existing); err != nil {
				return fmt.Errorf("更新订单行失败: %w", err)
			}
		}
	}
	return nil
}

// ==================== 发货标记 ====================

// MarkFulfilled 标记订单已发货并回写 Shopify 关闭订单
// 本地状态先落库；远端关闭失败只告警，下次同步会对齐
func (s *OrderService) MarkFulfilled(ctx context.Context, shopID, orderID int64) error {
	order, err := s.GetDetail(ctx, shopID, orderID)
	if err != nil {
		return err
	}
	if order.FulfillmentStatus == model.FulfillmentFulfilled {
		return nil
	}

	if err := s.orderRepo.UpdateFields(ctx, order.ID, map[string]interface{}{
		"fulfillment_status": model.FulfillmentFulfilled,
	}); err != nil {
		return fmt.Errorf("更新发货状态失败: %w", err)
	}

	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		return fmt.Errorf("店铺不存在")
	}
	if !shop.IsActive() {
		return nil
	}
	if err := s.clients.Rest(shop).CloseOrder(ctx, order.ShopifyOrderID); err != nil {
		zap.S().Warnf("[Order] 订单 %s 远端关闭失败: %v", order.Name, err)
	}
	return nil
}

// ==================== 保留期清理 ====================

// CleanupExpired 清理超过保留期的订单及其勾选状态
func (s *OrderService) CleanupExpired(ctx context.Context, shopID int64) (int64, error) {
	cutoff := time.Now().AddDate(0, -orderRetentionMonths, 0)

	// 先清勾选行和缓存 hash，订单删掉后就找不回 order_id 了
	expired, err := s.orderRepo.ListByPeriod(ctx, shopID, time.Time{}, cutoff)
	if err != nil {
		return 0, fmt.Errorf("查询过期订单失败: %w", err)
	}
	for i := range expired {
		if err := s.checkboxRepo.DeleteByOrder(ctx, expired[i].ID); err != nil {
			zap.S().Warnf("[Cleanup] 订单 %s 勾选行清理失败: %v", expired[i].Name, err)
		}
		s.checklist.DropOrderCache(ctx, expired[i].ID)
	}

	deleted, err := s.orderRepo.DeleteOlderThan(ctx, shopID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("清理过期订单失败: %w", err)
	}
	if deleted > 0 {
		zap.S().Infof("[Cleanup] 店铺 %d 清理 %d 笔过期订单", shopID, deleted)
	}
	return deleted, nil
}

// ==================== 内部辅助 ====================

// loadActiveShop 加载可同步的店铺
func (s *OrderService) loadActiveShop(ctx context.Context, shopID int64) (*model.Shop, error) {
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("店铺不存在")
	}
	if !shop.IsActive() {
		return nil, fmt.Errorf("店铺 %s 未启用或缺少访问令牌", shop.Name)
	}
	return shop, nil
}

// markTokenIfAuthFailed 401/403 时标记店铺 Token 异常，阻止后续任务反复撞墙
func (s *OrderService) markTokenIfAuthFailed(ctx context.Context, shop *model.Shop, err error) {
	msg := err.Error()
	if !strings.Contains(msg, "[401]") && !strings.Contains(msg, "[403]") {
		return
	}
	zap.S().Errorf("[Sync] 店铺 %s 访问令牌失效，标记为异常", shop.Name)
	if uerr := s.shopRepo.UpdateFields(ctx, shop.ID, map[string]interface{}{
		"status": model.ShopStatusTokenBad,
	}); uerr != nil {
		zap.S().Warnf("[Sync] 标记店铺 %d 状态失败: %v", shop.ID, uerr)
	}
}

// restFulfillmentStatus Shopify 的 null 发货状态归一为 unfulfilled
func restFulfillmentStatus(status *string) string {
	if status == nil || *status == "" {
		return model.FulfillmentUnfulfilled
	}
	return *status
}

// restLineItemToModel REST 订单行转存储模型
func restLineItemToModel(rli *shopify.RestLineItem, currency string) model.LineItem {
	return model.LineItem{
		ShopifyLineItemID:  rli.ID,
		ShopifyProductID:   rli.ProductID,
		ShopifyVariantID:   rli.VariantID,
		Title:              rli.Title,
		SKU:                rli.SKU,
		VariantTitle:       rli.VariantTitle,
		Quantity:           rli.Quantity,
		RefundableQuantity: rli.CurrentQuantity,
		UnitPriceCents:     shopify.ParseMoneyToCents(rli.Price),
		Currency:           currency,
	}
}

// parseShopifyTime 解析 ISO8601 时间串，失败返回 nil
func parseShopifyTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
