package repository

import (
	"context"
	"time"

	"orderpro_v1_202608/internal/model"

	"gorm.io/gorm"
)

// ==================== 过滤条件 ====================

// OrderFilter 订单过滤条件
type OrderFilter struct {
	ShopID            int64
	FulfillmentStatus string
	FinancialStatus   string
	StartDate         *time.Time
	EndDate           *time.Time
	Keyword           string
	Page              int
	PageSize          int
}

// ==================== OrderRepository 订单仓库 ====================

// OrderRepository 订单仓库接口
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByIDWithItems(ctx context.Context, id int64) (*model.Order, error)
	GetByShopifyOrderID(ctx context.Context, shopifyOrderID int64) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
	ListByPeriod(ctx context.Context, shopID int64, start, end time.Time) ([]model.Order, error)
	Update(ctx context.Context, order *model.Order) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error

	// 保留期清理：硬删除 cutoff 之前创建的订单及其订单行
	DeleteOlderThan(ctx context.Context, shopID int64, cutoff time.Time) (int64, error)
}

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) GetByIDWithItems(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_items.id ASC")
		}).
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) GetByShopifyOrderID(ctx context.Context, shopifyOrderID int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("shopify_order_id = ?", shopifyOrderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Order{}).Where("shop_id = ?", filter.ShopID)

	if filter.FulfillmentStatus != "" {
		query = query.Where("fulfillment_status = ?", filter.FulfillmentStatus)
	}
	if filter.FinancialStatus != "" {
		query = query.Where("financial_status = ?", filter.FinancialStatus)
	}
	if filter.StartDate != nil {
		query = query.Where("shopify_created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("shopify_created_at <= ?", *filter.EndDate)
	}
	if filter.Keyword != "" {
		kw := "%" + filter.Keyword + "%"
		query = query.Where("name ILIKE ? OR note ILIKE ? OR tags ILIKE ?", kw, kw, kw)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var orders []model.Order
	err := query.Preload("Items").Order("shopify_created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepo) ListByPeriod(ctx context.Context, shopID int64, start, end time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND shopify_created_at >= ? AND shopify_created_at < ?", shopID, start, end).
		Preload("Items").
		Order("shopify_created_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) Update(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *orderRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Updates(fields).Error
}

func (r *orderRepo) DeleteOlderThan(ctx context.Context, shopID int64, cutoff time.Time) (int64, error) {
	// 先删订单行再删订单，两步都是硬删除
	var ids []int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("shop_id = ? AND shopify_created_at < ?", shopID, cutoff).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if err := r.db.WithContext(ctx).Unscoped().
		Where("order_id IN ?", ids).
		Delete(&model.LineItem{}).Error; err != nil {
		return 0, err
	}

	result := r.db.WithContext(ctx).Unscoped().Delete(&model.Order{}, ids)
	return result.RowsAffected, result.Error
}

// ==================== LineItemRepository 订单行仓库 ====================

// LineItemRepository 订单行仓库接口
type LineItemRepository interface {
	Create(ctx context.Context, item *model.LineItem) error
	Update(ctx context.Context, item *model.LineItem) error
	GetByShopifyLineItemID(ctx context.Context, shopifyLineItemID int64) (*model.LineItem, error)
	ListByOrder(ctx context.Context, orderID int64) ([]model.LineItem, error)
}

type lineItemRepo struct {
	db *gorm.DB
}

// NewLineItemRepository 创建订单行仓库
func NewLineItemRepository(db *gorm.DB) LineItemRepository {
	return &lineItemRepo{db: db}
}

func (r *lineItemRepo) Create(ctx context.Context, item *model.LineItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *lineItemRepo) Update(ctx context.Context, item *model.LineItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *lineItemRepo) GetByShopifyLineItemID(ctx context.Context, shopifyLineItemID int64) (*model.LineItem, error) {
	var item model.LineItem
	err := r.db.WithContext(ctx).
		Where("shopify_line_item_id = ?", shopifyLineItemID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *lineItemRepo) ListByOrder(ctx context.Context, orderID int64) ([]model.LineItem, error) {
	var items []model.LineItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&items).Error
	return items, err
}
