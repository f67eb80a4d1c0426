package repository

import (
	"context"

	"orderpro_v1_202608/internal/model"

	"gorm.io/gorm"
)

// ==================== 过滤条件 ====================

// ProductFilter 商品过滤条件
type ProductFilter struct {
	ShopID   int64
	Status   string
	Keyword  string
	Page     int
	PageSize int
}

// ==================== ProductRepository 商品仓库 ====================

// ProductRepository 商品仓库接口
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	GetByShopifyProductID(ctx context.Context, shopifyProductID int64) (*model.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)
	Upsert(ctx context.Context, product *model.Product) error
}

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).Preload("Variants").First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) GetByShopifyProductID(ctx context.Context, shopifyProductID int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("shopify_product_id = ?", shopifyProductID).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Product{}).Where("shop_id = ?", filter.ShopID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Keyword != "" {
		kw := "%" + filter.Keyword + "%"
		query = query.Where("title ILIKE ? OR vendor ILIKE ?", kw, kw)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var products []model.Product
	err := query.Preload("Variants").Order("id ASC").Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Upsert 按 shopify_product_id 幂等写入
func (r *productRepo) Upsert(ctx context.Context, product *model.Product) error {
	existing, err := r.GetByShopifyProductID(ctx, product.ShopifyProductID)
	if err == nil {
		product.ID = existing.ID
		product.CreatedAt = existing.CreatedAt
		return r.db.WithContext(ctx).Save(product).Error
	}
	return r.db.WithContext(ctx).Create(product).Error
}

// ==================== VariantRepository 变体仓库 ====================

// VariantRepository 变体仓库接口
type VariantRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Variant, error)
	GetByShopifyVariantID(ctx context.Context, shopifyVariantID int64) (*model.Variant, error)
	GetBySKU(ctx context.Context, shopID int64, sku string) (*model.Variant, error)
	Upsert(ctx context.Context, variant *model.Variant) error
	Update(ctx context.Context, variant *model.Variant) error

	// IncrementInventory 本地库存增量（补货完成入库）
	IncrementInventory(ctx context.Context, id int64, delta int) error
}

type variantRepo struct {
	db *gorm.DB
}

// NewVariantRepository 创建变体仓库
func NewVariantRepository(db *gorm.DB) VariantRepository {
	return &variantRepo{db: db}
}

func (r *variantRepo) GetByID(ctx context.Context, id int64) (*model.Variant, error) {
	var variant model.Variant
	if err := r.db.WithContext(ctx).First(&variant, id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *variantRepo) GetByShopifyVariantID(ctx context.Context, shopifyVariantID int64) (*model.Variant, error) {
	var variant model.Variant
	err := r.db.WithContext(ctx).
		Where("shopify_variant_id = ?", shopifyVariantID).
		First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *variantRepo) GetBySKU(ctx context.Context, shopID int64, sku string) (*model.Variant, error) {
	var variant model.Variant
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND sku = ?", shopID, sku).
		First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

// Upsert 按 shopify_variant_id 幂等写入
func (r *variantRepo) Upsert(ctx context.Context, variant *model.Variant) error {
	existing, err := r.GetByShopifyVariantID(ctx, variant.ShopifyVariantID)
	if err == nil {
		variant.ID = existing.ID
		variant.CreatedAt = existing.CreatedAt
		return r.db.WithContext(ctx).Save(variant).Error
	}
	return r.db.WithContext(ctx).Create(variant).Error
}

func (r *variantRepo) Update(ctx context.Context, variant *model.Variant) error {
	return r.db.WithContext(ctx).Save(variant).Error
}

func (r *variantRepo) IncrementInventory(ctx context.Context, id int64, delta int) error {
	return r.db.WithContext(ctx).Model(&model.Variant{}).
		Where("id = ?", id).
		UpdateColumn("inventory_quantity", gorm.Expr("inventory_quantity + ?", delta)).Error
}
