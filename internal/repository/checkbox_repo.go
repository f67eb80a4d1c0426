package repository

import (
	"context"
	"errors"

	"orderpro_v1_202608/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgUndefinedTable Postgres "relation does not exist" 错误码
// 勾选表按需滚动上线，表还没建出来时读操作按空结果处理而不是报错
const pgUndefinedTable = "42P01"

// isUndefinedTable 判断是否为表不存在错误
func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable
}

// ==================== CheckboxRepository 勾选状态仓库 ====================

// CheckboxRepository 生产勾选状态仓库接口
type CheckboxRepository interface {
	// Upsert 按 variant_key 幂等写入（并发勾选时 last-write-wins）
	Upsert(ctx context.Context, state *model.CheckboxState) error
	GetByKey(ctx context.Context, variantKey string) (*model.CheckboxState, error)
	ListByOrder(ctx context.Context, orderID int64) ([]model.CheckboxState, error)
	CountByOrder(ctx context.Context, orderID int64) (checked int64, total int64, err error)
	BatchCreate(ctx context.Context, states []model.CheckboxState) error

	// DeleteByOrder 清理重建操作专用，硬删除
	DeleteByOrder(ctx context.Context, orderID int64) error
}

type checkboxRepo struct {
	db *gorm.DB
}

// NewCheckboxRepository 创建勾选状态仓库
func NewCheckboxRepository(db *gorm.DB) CheckboxRepository {
	return &checkboxRepo{db: db}
}

func (r *checkboxRepo) Upsert(ctx context.Context, state *model.CheckboxState) error {
	var existing model.CheckboxState
	err := r.db.WithContext(ctx).
		Where("variant_key = ?", state.VariantKey).
		First(&existing).Error
	if err == nil {
		state.ID = existing.ID
		state.CreatedAt = existing.CreatedAt
		return r.db.WithContext(ctx).Save(state).Error
	}
	return r.db.WithContext(ctx).Create(state).Error
}

func (r *checkboxRepo) GetByKey(ctx context.Context, variantKey string) (*model.CheckboxState, error) {
	var state model.CheckboxState
	err := r.db.WithContext(ctx).
		Where("variant_key = ?", variantKey).
		First(&state).Error
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *checkboxRepo) ListByOrder(ctx context.Context, orderID int64) ([]model.CheckboxState, error) {
	var states []model.CheckboxState
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&states).Error
	if err != nil {
		if isUndefinedTable(err) {
			return nil, nil
		}
		return nil, err
	}
	return states, nil
}

func (r *checkboxRepo) CountByOrder(ctx context.Context, orderID int64) (int64, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.CheckboxState{}).
		Where("order_id = ?", orderID).
		Count(&total).Error
	if err != nil {
		if isUndefinedTable(err) {
			return 0, 0, nil
		}
		return 0, 0, err
	}

	var checked int64
	err = r.db.WithContext(ctx).Model(&model.CheckboxState{}).
		Where("order_id = ? AND checked = ?", orderID, true).
		Count(&checked).Error
	if err != nil {
		return 0, 0, err
	}
	return checked, total, nil
}

func (r *checkboxRepo) BatchCreate(ctx context.Context, states []model.CheckboxState) error {
	if len(states) == 0 {
		return nil
	}
	// 分块写入，控制单条 SQL 大小
	return r.db.WithContext(ctx).CreateInBatches(states, 500).Error
}

func (r *checkboxRepo) DeleteByOrder(ctx context.Context, orderID int64) error {
	return r.db.WithContext(ctx).Unscoped().
		Where("order_id = ?", orderID).
		Delete(&model.CheckboxState{}).Error
}
