package task

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"orderpro_v1_202608/internal/repository"
	"orderpro_v1_202608/internal/service"
)

// ==================== CleanupTask 保留期清理任务 ====================

// CleanupTask 订单保留期清理定时任务
// 每天凌晨执行，逐店铺硬删除超过保留期的订单与勾选状态
type CleanupTask struct {
	shopRepo     repository.ShopRepository
	orderService *service.OrderService
	cron         *cron.Cron
}

// NewCleanupTask 创建清理任务
func NewCleanupTask(
	shopRepo repository.ShopRepository,
	orderService *service.OrderService,
) *CleanupTask {
	return &CleanupTask{
		shopRepo:     shopRepo,
		orderService: orderService,
		cron:         cron.New(cron.WithSeconds()),
	}
}

// Start 启动定时任务
func (t *CleanupTask) Start() {
	// 每天 04:00 执行
	_, err := t.cron.AddFunc("0 0 4 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		t.cleanupAllShops(ctx)
	})
	if err != nil {
		zap.S().Errorf("[CleanupTask] 定时任务启动失败: %v", err)
		return
	}

	t.cron.Start()
	zap.S().Info("[CleanupTask] 已启动 (每天04:00)")
}

// Stop 停止任务
func (t *CleanupTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	zap.S().Info("[CleanupTask] 已停止")
}

// cleanupAllShops 清理所有店铺的过期订单
// 串行执行即可，删除量不大且不赶时间
func (t *CleanupTask) cleanupAllShops(ctx context.Context) {
	shops, _, err := t.shopRepo.List(ctx, repository.ShopFilter{PageSize: 500})
	if err != nil {
		zap.S().Errorf("[CleanupTask] 获取店铺列表失败: %v", err)
		return
	}

	var total int64
	for i := range shops {
		deleted, err := t.orderService.CleanupExpired(ctx, shops[i].ID)
		if err != nil {
			zap.S().Errorf("[CleanupTask] 店铺 %s 清理失败: %v", shops[i].Name, err)
			continue
		}
		total += deleted
	}
	zap.S().Infof("[CleanupTask] 清理完成，共删除 %d 笔过期订单", total)
}

// ==================== 手动触发 ====================

// RunNow 立即执行一次清理
func (t *CleanupTask) RunNow() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		t.cleanupAllShops(ctx)
	}()
}
