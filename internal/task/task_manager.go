package task

import (
	"context"

	"orderpro_v1_202608/internal/repository"
	"orderpro_v1_202608/internal/service"
	"orderpro_v1_202608/pkg/shopify"

	"go.uber.org/zap"
)

// ==================== TaskManager 后台同步任务管理器 ====================

// TaskManager 统一管理后台同步任务
// 管理范围：Order、Product 定时同步和订单保留期清理
type TaskManager struct {
	orderTask   *OrderSyncTask
	productTask *ProductSyncTask
	cleanupTask *CleanupTask
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	ShopRepo       repository.ShopRepository
	OrderService   *service.OrderService
	ProductService *service.ProductService
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	// Order 同步
	OrderEnabled     bool
	OrderConcurrency int

	// Product 同步
	ProductEnabled     bool
	ProductConcurrency int

	// 保留期清理
	CleanupEnabled bool
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		OrderEnabled:     true,
		OrderConcurrency: 5,

		ProductEnabled:     true,
		ProductConcurrency: 3,

		CleanupEnabled: true,
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tm := &TaskManager{}

	if cfg.OrderEnabled && deps.OrderService != nil {
		tm.orderTask = NewOrderSyncTask(deps.ShopRepo, deps.OrderService)
		tm.orderTask.SetConcurrency(cfg.OrderConcurrency)
	}

	if cfg.ProductEnabled && deps.ProductService != nil {
		tm.productTask = NewProductSyncTask(deps.ShopRepo, deps.ProductService)
		tm.productTask.SetConcurrency(cfg.ProductConcurrency)
	}

	if cfg.CleanupEnabled && deps.OrderService != nil {
		tm.cleanupTask = NewCleanupTask(deps.ShopRepo, deps.OrderService)
	}

	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务
func (tm *TaskManager) Start() {
	zap.S().Info("[TaskManager] 正在启动后台同步任务...")

	if tm.orderTask != nil {
		tm.orderTask.Start()
	}
	if tm.productTask != nil {
		tm.productTask.Start()
	}
	if tm.cleanupTask != nil {
		tm.cleanupTask.Start()
	}

	zap.S().Info("[TaskManager] 后台同步任务已全部启动")
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	zap.S().Info("[TaskManager] 正在停止后台同步任务...")

	if tm.orderTask != nil {
		tm.orderTask.Stop()
	}
	if tm.productTask != nil {
		tm.productTask.Stop()
	}
	if tm.cleanupTask != nil {
		tm.cleanupTask.Stop()
	}

	zap.S().Info("[TaskManager] 后台同步任务已全部停止")
}

// ==================== 手动触发接口 ====================

// TriggerOrderSync 触发单店铺订单同步
func (tm *TaskManager) TriggerOrderSync(ctx context.Context, shopID int64, sink service.EventSink) (*shopify.BatchResult, error) {
	if tm.orderTask == nil {
		return nil, ErrTaskDisabled
	}
	return tm.orderTask.SyncShopNow(ctx, shopID, sink)
}

// TriggerProductSync 触发单店铺商品同步
func (tm *TaskManager) TriggerProductSync(ctx context.Context, shopID int64, sink service.EventSink) (*shopify.BatchResult, error) {
	if tm.productTask == nil {
		return nil, ErrTaskDisabled
	}
	return tm.productTask.SyncShopNow(ctx, shopID, sink)
}

// TriggerAllOrdersSync 触发所有店铺订单同步
func (tm *TaskManager) TriggerAllOrdersSync() {
	if tm.orderTask != nil {
		tm.orderTask.SyncAllNow()
	}
}

// TriggerCleanup 触发保留期清理
func (tm *TaskManager) TriggerCleanup() {
	if tm.cleanupTask != nil {
		tm.cleanupTask.RunNow()
	}
}

// ==================== 状态查询 ====================

// Status 获取任务启用状态
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"order":   tm.orderTask != nil,
		"product": tm.productTask != nil,
		"cleanup": tm.cleanupTask != nil,
	}
}

// ==================== 错误定义 ====================

type TaskError string

func (e TaskError) Error() string { return string(e) }

const (
	ErrTaskDisabled TaskError = "task is disabled"
)
