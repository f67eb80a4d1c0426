package repository

import (
	"context"

	"orderpro_v1_202608/internal/model"

	"gorm.io/gorm"
)

// ==================== 过滤条件 ====================

// SupplierOrderFilter 补货单过滤条件
type SupplierOrderFilter struct {
	ShopID   int64
	Status   string
	Page     int
	PageSize int
}

// ==================== SupplierOrderRepository 补货单仓库 ====================

// SupplierOrderRepository 补货单仓库接口
type SupplierOrderRepository interface {
	Create(ctx context.Context, order *model.SupplierOrder) error
	GetByID(ctx context.Context, id int64) (*model.SupplierOrder, error)
	GetByIDWithItems(ctx context.Context, id int64) (*model.SupplierOrder, error)
	List(ctx context.Context, filter SupplierOrderFilter) ([]model.SupplierOrder, int64, error)
	Update(ctx context.Context, order *model.SupplierOrder) error
	Delete(ctx context.Context, id int64) error

	// 条目
	AddItem(ctx context.Context, item *model.SupplierOrderItem) error
	GetItem(ctx context.Context, itemID int64) (*model.SupplierOrderItem, error)
	UpdateItem(ctx context.Context, item *model.SupplierOrderItem) error
	DeleteItem(ctx context.Context, itemID int64) error
}

type supplierOrderRepo struct {
	db *gorm.DB
}

// NewSupplierOrderRepository 创建补货单仓库
func NewSupplierOrderRepository(db *gorm.DB) SupplierOrderRepository {
	return &supplierOrderRepo{db: db}
}

func (r *supplierOrderRepo) Create(ctx context.Context, order *model.SupplierOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *supplierOrderRepo) GetByID(ctx context.Context, id int64) (*model.SupplierOrder, error) {
	var order model.SupplierOrder
	if err := r.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *supplierOrderRepo) GetByIDWithItems(ctx context.Context, id int64) (*model.SupplierOrder, error) {
	var order model.SupplierOrder
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("supplier_order_items.id ASC")
		}).
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *supplierOrderRepo) List(ctx context.Context, filter SupplierOrderFilter) ([]model.SupplierOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.SupplierOrder{}).Where("shop_id = ?", filter.ShopID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var orders []model.SupplierOrder
	err := query.Preload("Items").Order("id DESC").Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *supplierOrderRepo) Update(ctx context.Context, order *model.SupplierOrder) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *supplierOrderRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.SupplierOrder{}, id).Error
}

func (r *supplierOrderRepo) AddItem(ctx context.Context, item *model.SupplierOrderItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *supplierOrderRepo) GetItem(ctx context.Context, itemID int64) (*model.SupplierOrderItem, error) {
	var item model.SupplierOrderItem
	if err := r.db.WithContext(ctx).First(&item, itemID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *supplierOrderRepo) UpdateItem(ctx context.Context, item *model.SupplierOrderItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *supplierOrderRepo) DeleteItem(ctx context.Context, itemID int64) error {
	return r.db.WithContext(ctx).Delete(&model.SupplierOrderItem{}, itemID).Error
}

// ==================== BalanceAdjustmentRepository 差额调整仓库 ====================

// BalanceAdjustmentRepository 计费差额调整仓库接口
type BalanceAdjustmentRepository interface {
	// Upsert 一个店铺一个周期只有一条，重复录入覆盖
	Upsert(ctx context.Context, adj *model.BalanceAdjustment) error
	Get(ctx context.Context, shopID int64, period string) (*model.BalanceAdjustment, error)
}

type balanceAdjustmentRepo struct {
	db *gorm.DB
}

// NewBalanceAdjustmentRepository 创建差额调整仓库
func NewBalanceAdjustmentRepository(db *gorm.DB) BalanceAdjustmentRepository {
	return &balanceAdjustmentRepo{db: db}
}

func (r *balanceAdjustmentRepo) Upsert(ctx context.Context, adj *model.BalanceAdjustment) error {
	var existing model.BalanceAdjustment
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND period = ?", adj.ShopID, adj.Period).
		First(&existing).Error
	if err == nil {
		adj.ID = existing.ID
		adj.CreatedAt = existing.CreatedAt
		return r.db.WithContext(ctx).Save(adj).Error
	}
	return r.db.WithContext(ctx).Create(adj).Error
}

func (r *balanceAdjustmentRepo) Get(ctx context.Context, shopID int64, period string) (*model.BalanceAdjustment, error) {
	var adj model.BalanceAdjustment
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND period = ?", shopID, period).
		First(&adj).Error
	if err != nil {
		return nil, err
	}
	return &adj, nil
}
