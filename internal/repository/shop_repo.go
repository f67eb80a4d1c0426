package repository

import (
	"context"
	"time"

	"orderpro_v1_202608/internal/model"

	"gorm.io/gorm"
)

// ==================== 过滤条件 ====================

// ShopFilter 店铺过滤条件
type ShopFilter struct {
	Status   *int
	Keyword  string
	Page     int
	PageSize int
}

// ==================== ShopRepository 店铺仓库 ====================

// ShopRepository 店铺仓库接口
type ShopRepository interface {
	Create(ctx context.Context, shop *model.Shop) error
	GetByID(ctx context.Context, id int64) (*model.Shop, error)
	GetByDomain(ctx context.Context, domain string) (*model.Shop, error)
	List(ctx context.Context, filter ShopFilter) ([]model.Shop, int64, error)
	ListActive(ctx context.Context) ([]model.Shop, error)
	Update(ctx context.Context, shop *model.Shop) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error

	// 同步时间戳
	TouchOrderSync(ctx context.Context, id int64, at time.Time) error
	TouchProductSync(ctx context.Context, id int64, at time.Time) error
}

type shopRepo struct {
	db *gorm.DB
}

// NewShopRepository 创建店铺仓库
func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepo{db: db}
}

func (r *shopRepo) Create(ctx context.Context, shop *model.Shop) error {
	return r.db.WithContext(ctx).Create(shop).Error
}

func (r *shopRepo) GetByID(ctx context.Context, id int64) (*model.Shop, error) {
	var shop model.Shop
	if err := r.db.WithContext(ctx).First(&shop, id).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepo) GetByDomain(ctx context.Context, domain string) (*model.Shop, error) {
	var shop model.Shop
	if err := r.db.WithContext(ctx).Where("domain = ?", domain).First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepo) List(ctx context.Context, filter ShopFilter) ([]model.Shop, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Shop{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Keyword != "" {
		kw := "%" + filter.Keyword + "%"
		query = query.Where("name ILIKE ? OR domain ILIKE ?", kw, kw)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var shops []model.Shop
	if err := query.Order("id ASC").Find(&shops).Error; err != nil {
		return nil, 0, err
	}
	return shops, total, nil
}

func (r *shopRepo) ListActive(ctx context.Context) ([]model.Shop, error) {
	var shops []model.Shop
	err := r.db.WithContext(ctx).
		Where("status = ? AND access_token <> ''", model.ShopStatusActive).
		Order("id ASC").
		Find(&shops).Error
	return shops, err
}

func (r *shopRepo) Update(ctx context.Context, shop *model.Shop) error {
	return r.db.WithContext(ctx).Save(shop).Error
}

func (r *shopRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Shop{}).Where("id = ?", id).Updates(fields).Error
}

func (r *shopRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Shop{}, id).Error
}

func (r *shopRepo) TouchOrderSync(ctx context.Context, id int64, at time.Time) error {
	return r.UpdateFields(ctx, id, map[string]interface{}{"last_order_sync_at": at})
}

func (r *shopRepo) TouchProductSync(ctx context.Context, id int64, at time.Time) error {
	return r.UpdateFields(ctx, id, map[string]interface{}{"last_product_sync_at": at})
}

// ==================== LocationRepository 地点仓库 ====================

// LocationRepository 发货地点仓库接口
type LocationRepository interface {
	UpsertByShopifyID(ctx context.Context, loc *model.Location) error
	GetByID(ctx context.Context, id int64) (*model.Location, error)
	ListByShop(ctx context.Context, shopID int64) ([]model.Location, error)
}

type locationRepo struct {
	db *gorm.DB
}

// NewLocationRepository 创建地点仓库
func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepo{db: db}
}

func (r *locationRepo) UpsertByShopifyID(ctx context.Context, loc *model.Location) error {
	var existing model.Location
	err := r.db.WithContext(ctx).
		Where("shopify_location_id = ?", loc.ShopifyLocationID).
		First(&existing).Error
	if err == nil {
		loc.ID = existing.ID
		loc.CreatedAt = existing.CreatedAt
		return r.db.WithContext(ctx).Save(loc).Error
	}
	return r.db.WithContext(ctx).Create(loc).Error
}

func (r *locationRepo) GetByID(ctx context.Context, id int64) (*model.Location, error) {
	var loc model.Location
	if err := r.db.WithContext(ctx).First(&loc, id).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *locationRepo) ListByShop(ctx context.Context, shopID int64) ([]model.Location, error) {
	var locs []model.Location
	err := r.db.WithContext(ctx).Where("shop_id = ?", shopID).Order("id ASC").Find(&locs).Error
	return locs, err
}

// ==================== 通用分页 ====================

// applyPagination 统一分页，PageSize 上限 500
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 500 {
		pageSize = 500
	}
	if page <= 0 {
		page = 1
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}
