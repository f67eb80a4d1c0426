package repository

import (
	"context"

	"orderpro_v1_202608/internal/model"

	"gorm.io/gorm"
)

// ==================== PriceRuleRepository 价格规则仓库 ====================

// PriceRuleRepository 价格规则仓库接口
type PriceRuleRepository interface {
	Create(ctx context.Context, rule *model.PriceRule) error
	GetByID(ctx context.Context, id int64) (*model.PriceRule, error)
	ListByShop(ctx context.Context, shopID int64) ([]model.PriceRule, error)
	// ListActive 返回启用规则，按 priority 升序、同优先级按插入顺序
	ListActive(ctx context.Context, shopID int64) ([]model.PriceRule, error)
	Update(ctx context.Context, rule *model.PriceRule) error
	Delete(ctx context.Context, id int64) error
}

type priceRuleRepo struct {
	db *gorm.DB
}

// NewPriceRuleRepository 创建价格规则仓库
func NewPriceRuleRepository(db *gorm.DB) PriceRuleRepository {
	return &priceRuleRepo{db: db}
}

func (r *priceRuleRepo) Create(ctx context.Context, rule *model.PriceRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *priceRuleRepo) GetByID(ctx context.Context, id int64) (*model.PriceRule, error) {
	var rule model.PriceRule
	if err := r.db.WithContext(ctx).First(&rule, id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *priceRuleRepo) ListByShop(ctx context.Context, shopID int64) ([]model.PriceRule, error) {
	var rules []model.PriceRule
	err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("priority ASC, id ASC").
		Find(&rules).Error
	return rules, err
}

func (r *priceRuleRepo) ListActive(ctx context.Context, shopID int64) ([]model.PriceRule, error) {
	var rules []model.PriceRule
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND active = ?", shopID, true).
		Order("priority ASC, id ASC").
		Find(&rules).Error
	return rules, err
}

func (r *priceRuleRepo) Update(ctx context.Context, rule *model.PriceRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

func (r *priceRuleRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.PriceRule{}, id).Error
}
