package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"orderpro_v1_202608/internal/controller"
	"orderpro_v1_202608/internal/model"
	"orderpro_v1_202608/internal/repository"
	"orderpro_v1_202608/internal/router"
	"orderpro_v1_202608/internal/service"
	"orderpro_v1_202608/internal/task"
	"orderpro_v1_202608/pkg/config"
	"orderpro_v1_202608/pkg/database"
	"orderpro_v1_202608/pkg/net"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	// 2. 初始化日志
	initLogger(cfg)
	defer zap.S().Sync()

	// 3. 初始化数据库
	db := initDatabase(cfg)

	// 4. 初始化依赖
	deps := initDependencies(cfg, db)

	// 5. 启动定时任务
	deps.TaskManager.Start()
	defer deps.TaskManager.Stop()

	// 6. 初始化路由
	r := setupEngine(cfg)
	router.InitRoutes(r,
		deps.Controllers.Shop,
		deps.Controllers.Order,
		deps.Controllers.Checklist,
		deps.Controllers.Product,
		deps.Controllers.Pricing,
		deps.Controllers.Billing,
		deps.Controllers.Supplier,
		deps.Controllers.Sync,
	)

	// 7. 启动服务
	startServer(r, cfg.Port)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *Controllers
	TaskManager *task.TaskManager
}

// Repositories 仓库集合
type Repositories struct {
	Shop     repository.ShopRepository
	Location repository.LocationRepository
	Order    repository.OrderRepository
	LineItem repository.LineItemRepository
	Product  repository.ProductRepository
	Variant  repository.VariantRepository
	Rule     repository.PriceRuleRepository
	Checkbox repository.CheckboxRepository
	Supplier repository.SupplierOrderRepository
	Balance  repository.BalanceAdjustmentRepository
	Cache    *repository.CheckboxCache
}

// Services 服务集合
type Services struct {
	Shop      *service.ShopService
	Order     *service.OrderService
	Checklist *service.ChecklistService
	Product   *service.ProductService
	Pricing   *service.PricingService
	Billing   *service.BillingService
	Supplier  *service.SupplierService
}

// Controllers 控制器集合
type Controllers struct {
	Shop      *controller.ShopController
	Order     *controller.OrderController
	Checklist *controller.ChecklistController
	Product   *controller.ProductController
	Pricing   *controller.PricingController
	Billing   *controller.BillingController
	Supplier  *controller.SupplierController
	Sync      *controller.SyncController
}

// ==================== 初始化函数 ====================

// initLogger 初始化全局日志
func initLogger(cfg *config.Config) {
	var logger *zap.Logger
	var err error
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	zap.ReplaceGlobals(logger)
}

// initDatabase 初始化数据库
func initDatabase(cfg *config.Config) *gorm.DB {
	db, err := database.InitDB(cfg.Database.DSN(), !cfg.IsProduction(),
		// Shop
		&model.Shop{}, &model.Location{},
		// Order
		&model.Order{}, &model.LineItem{}, &model.CheckboxState{},
		// Product
		&model.Product{}, &model.Variant{},
		// Billing
		&model.PriceRule{}, &model.BalanceAdjustment{},
		// Supplier
		&model.SupplierOrder{}, &model.SupplierOrderItem{},
	)
	if err != nil {
		zap.S().Fatalf("数据库初始化失败: %v", err)
	}
	return db
}

// initRedis 初始化 Redis 客户端
// 连不上只告警：勾选缓存是可降级层，Postgres 永远是事实来源
func initRedis(cfg *config.Config) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		zap.S().Warnf("[Init] Redis 连接失败，勾选缓存降级为直读数据库: %v", err)
		return nil
	}
	return rdb
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Shop:     repository.NewShopRepository(db),
		Location: repository.NewLocationRepository(db),
		Order:    repository.NewOrderRepository(db),
		LineItem: repository.NewLineItemRepository(db),
		Product:  repository.NewProductRepository(db),
		Variant:  repository.NewVariantRepository(db),
		Rule:     repository.NewPriceRuleRepository(db),
		Checkbox: repository.NewCheckboxRepository(db),
		Supplier: repository.NewSupplierOrderRepository(db),
		Balance:  repository.NewBalanceAdjustmentRepository(db),
		Cache:    repository.NewCheckboxCache(initRedis(cfg)),
	}

	// -------- 基础设施 --------
	// Shopify REST 限速 2 req/s，全局队列按 500ms 间隔派发
	dispatcher := net.NewDispatcher(500 * time.Millisecond)
	clients := service.NewClientFactory(dispatcher)

	// -------- 业务服务 --------
	services := &Services{}
	services.Checklist = service.NewChecklistService(repos.Order, repos.Checkbox, repos.Cache)
	services.Shop = service.NewShopService(repos.Shop, repos.Location, clients)
	services.Order = service.NewOrderService(repos.Shop, repos.Order, repos.LineItem, repos.Checkbox, services.Checklist, clients)
	services.Product = service.NewProductService(repos.Shop, repos.Product, repos.Variant, clients)
	services.Pricing = service.NewPricingService(repos.Rule)
	services.Billing = service.NewBillingService(repos.Order, repos.Checkbox, repos.Rule, repos.Balance, repos.Shop)
	services.Supplier = service.NewSupplierService(repos.Shop, repos.Location, repos.Supplier, repos.Variant, clients)

	// -------- 定时任务 --------
	taskManager := task.NewTaskManager(&task.TaskManagerDeps{
		ShopRepo:       repos.Shop,
		OrderService:   services.Order,
		ProductService: services.Product,
	}, task.DefaultConfig())

	// -------- Controller 层 --------
	controllers := &Controllers{
		Shop:      controller.NewShopController(services.Shop),
		Order:     controller.NewOrderController(services.Order),
		Checklist: controller.NewChecklistController(services.Checklist),
		Product:   controller.NewProductController(services.Product),
		Pricing:   controller.NewPricingController(services.Pricing),
		Billing:   controller.NewBillingController(services.Billing),
		Supplier:  controller.NewSupplierController(services.Supplier),
		Sync:      controller.NewSyncController(taskManager),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
		TaskManager: taskManager,
	}
}

// setupEngine 初始化 gin 引擎
func setupEngine(cfg *config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine, port string) {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		zap.S().Infof("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Fatalf("服务启动失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.S().Info("正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zap.S().Fatalf("服务强制关闭: %v", err)
	}

	zap.S().Info("服务已退出")
}
