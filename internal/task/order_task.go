package task

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"orderpro_v1_202608/internal/repository"
	"orderpro_v1_202608/internal/service"
	"orderpro_v1_202608/pkg/shopify"
)

// ==================== OrderSyncTask 订单同步任务 ====================

// OrderSyncTask 订单同步定时任务
type OrderSyncTask struct {
	shopRepo     repository.ShopRepository
	orderService *service.OrderService
	cron         *cron.Cron

	concurrencyLimit int
}

// NewOrderSyncTask 创建订单同步任务
func NewOrderSyncTask(
	shopRepo repository.ShopRepository,
	orderService *service.OrderService,
) *OrderSyncTask {
	return &OrderSyncTask{
		shopRepo:         shopRepo,
		orderService:     orderService,
		cron:             cron.New(cron.WithSeconds()),
		concurrencyLimit: 5,
	}
}

// SetConcurrency 设置并发店铺数
func (t *OrderSyncTask) SetConcurrency(limit int) {
	if limit > 0 {
		t.concurrencyLimit = limit
	}
}

// Start 启动定时任务
func (t *OrderSyncTask) Start() {
	// 首次执行
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		zap.S().Info("[OrderSyncTask] 执行首次订单同步...")
		t.syncAllShops(ctx)
	}()

	// 每 10 分钟执行
	_, err := t.cron.AddFunc("0 */10 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		t.syncAllShops(ctx)
	})
	if err != nil {
		zap.S().Errorf("[OrderSyncTask] 定时任务启动失败: %v", err)
		return
	}

	t.cron.Start()
	zap.S().Info("[OrderSyncTask] 已启动 (每10分钟)")
}

// Stop 停止任务
func (t *OrderSyncTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	zap.S().Info("[OrderSyncTask] 已停止")
}

// syncAllShops 同步所有活跃店铺的订单
func (t *OrderSyncTask) syncAllShops(ctx context.Context) {
	shops, err := t.shopRepo.ListActive(ctx)
	if err != nil {
		zap.S().Errorf("[OrderSyncTask] 获取店铺列表失败: %v", err)
		return
	}
	if len(shops) == 0 {
		zap.S().Info("[OrderSyncTask] 无活跃店铺需要同步")
		return
	}

	zap.S().Infof("[OrderSyncTask] 开始处理 %d 个店铺", len(shops))

	sem := make(chan struct{}, t.concurrencyLimit)
	var wg sync.WaitGroup

	var (
		totalOK     int
		totalFailed int
		totalErrors int
		mu          sync.Mutex
	)

	for i := range shops {
		shop := shops[i]
		select {
		case <-ctx.Done():
			zap.S().Warn("[OrderSyncTask] 任务超时停止")
			wg.Wait()
			return
		default:
		}

		sem <- struct{}{}
		wg.Add(1)

		go func(shopID int64, shopName string) {
			defer wg.Done()
			defer func() { <-sem }()

			result, err := t.orderService.SyncOrders(ctx, shopID, nil)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				zap.S().Errorf("[OrderSyncTask] 店铺 %s(%d) 同步失败: %v", shopName, shopID, err)
				totalErrors++
				return
			}

			totalOK += len(result.Succeeded)
			totalFailed += len(result.Failed)
			if result.HasFailures() {
				zap.S().Warnf("[OrderSyncTask] 店铺 %s 部分失败: %s", shopName, result.Summary())
			}
		}(shop.ID, shop.Name)
	}

	wg.Wait()
	zap.S().Infof("[OrderSyncTask] 同步完成: 店铺 %d, 成功 %d 条, 失败 %d 条, 错误 %d",
		len(shops), totalOK, totalFailed, totalErrors)
}

// ==================== 手动触发 ====================

// SyncShopNow 立即同步单个店铺订单
func (t *OrderSyncTask) SyncShopNow(ctx context.Context, shopID int64, sink service.EventSink) (*shopify.BatchResult, error) {
	return t.orderService.SyncOrders(ctx, shopID, sink)
}

// SyncAllNow 立即同步所有店铺订单
func (t *OrderSyncTask) SyncAllNow() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		t.syncAllShops(ctx)
	}()
}
