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

// ==================== ProductSyncTask 商品同步任务 ====================

// ProductSyncTask 商品同步定时任务
// 商品变化频率低于订单，每小时同步一次
type ProductSyncTask struct {
	shopRepo       repository.ShopRepository
	productService *service.ProductService
	cron           *cron.Cron

	concurrencyLimit int
}

// NewProductSyncTask 创建商品同步任务
func NewProductSyncTask(
	shopRepo repository.ShopRepository,
	productService *service.ProductService,
) *ProductSyncTask {
	return &ProductSyncTask{
		shopRepo:         shopRepo,
		productService:   productService,
		cron:             cron.New(cron.WithSeconds()),
		concurrencyLimit: 3,
	}
}

// SetConcurrency 设置并发店铺数
func (t *ProductSyncTask) SetConcurrency(limit int) {
	if limit > 0 {
		t.concurrencyLimit = limit
	}
}

// Start 启动定时任务
func (t *ProductSyncTask) Start() {
	// 每小时执行
	_, err := t.cron.AddFunc("0 0 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		t.syncAllShops(ctx)
	})
	if err != nil {
		zap.S().Errorf("[ProductSyncTask] 定时任务启动失败: %v", err)
		return
	}

	t.cron.Start()
	zap.S().Info("[ProductSyncTask] 已启动 (每小时)")
}

// Stop 停止任务
func (t *ProductSyncTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	zap.S().Info("[ProductSyncTask] 已停止")
}

// syncAllShops 同步所有活跃店铺的商品
func (t *ProductSyncTask) syncAllShops(ctx context.Context) {
	shops, err := t.shopRepo.ListActive(ctx)
	if err != nil {
		zap.S().Errorf("[ProductSyncTask] 获取店铺列表失败: %v", err)
		return
	}
	if len(shops) == 0 {
		return
	}

	zap.S().Infof("[ProductSyncTask] 开始处理 %d 个店铺", len(shops))

	sem := make(chan struct{}, t.concurrencyLimit)
	var wg sync.WaitGroup

	for i := range shops {
		shop := shops[i]
		select {
		case <-ctx.Done():
			zap.S().Warn("[ProductSyncTask] 任务超时停止")
			wg.Wait()
			return
		default:
		}

		sem <- struct{}{}
		wg.Add(1)

		go func(shopID int64, shopName string) {
			defer wg.Done()
			defer func() { <-sem }()

			result, err := t.productService.SyncProducts(ctx, shopID, nil)
			if err != nil {
				zap.S().Errorf("[ProductSyncTask] 店铺 %s(%d) 同步失败: %v", shopName, shopID, err)
				return
			}
			if result.HasFailures() {
				zap.S().Warnf("[ProductSyncTask] 店铺 %s 部分失败: %s", shopName, result.Summary())
			}
		}(shop.ID, shop.Name)
	}

	wg.Wait()
	zap.S().Info("[ProductSyncTask] 同步完成")
}

// ==================== 手动触发 ====================

// SyncShopNow 立即同步单个店铺商品
func (t *ProductSyncTask) SyncShopNow(ctx context.Context, shopID int64, sink service.EventSink) (*shopify.BatchResult, error) {
	return t.productService.SyncProducts(ctx, shopID, sink)
}
