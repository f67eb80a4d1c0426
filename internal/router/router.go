package router

import (
	"github.com/gin-gonic/gin"

	"orderpro_v1_202608/internal/controller"
	"orderpro_v1_202608/internal/middleware"
)

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	shopCtl *controller.ShopController,
	orderCtl *controller.OrderController,
	checklistCtl *controller.ChecklistController,
	productCtl *controller.ProductController,
	pricingCtl *controller.PricingController,
	billingCtl *controller.BillingController,
	supplierCtl *controller.SupplierController,
	syncCtl *controller.SyncController) {
	api := r.Group("/api/v1")
	{
		// shops 店铺管理
		shops := api.Group("/shops")
		{
			shops.GET("", shopCtl.List)
			shops.POST("", shopCtl.Create)
			shops.GET("/:id", shopCtl.GetByID)
			shops.PUT("/:id", shopCtl.UpdateSettings)
			shops.DELETE("/:id", shopCtl.Delete)
			shops.POST("/:id/test", shopCtl.TestConnection)
			shops.GET("/:id/locations", shopCtl.ListLocations)
			shops.POST("/:id/locations/sync",
				middleware.SyncRateLimit(middleware.SyncTypeLocation, 0),
				shopCtl.SyncLocations)
		}

		// orders 订单与生产清单
		orders := api.Group("/orders")
		{
			orders.GET("", orderCtl.List)
			orders.GET("/:id", orderCtl.GetByID)
			orders.POST("/:id/fulfill", orderCtl.MarkFulfilled)

			orders.GET("/:id/checklist", checklistCtl.GetChecklist)
			orders.POST("/:id/checklist/init", checklistCtl.Initialize)
			orders.POST("/:id/checklist/toggle", checklistCtl.Toggle)
			orders.POST("/:id/checklist/recalculate", checklistCtl.PurgeRecalculate)
			orders.GET("/:id/progress", checklistCtl.GetProgress)
		}

		// products 商品与成本
		products := api.Group("/products")
		{
			products.GET("", productCtl.List)
			products.GET("/:id", productCtl.GetByID)
			products.POST("/costs/push", productCtl.PushCosts)
			products.POST("/metafields/push", productCtl.PushMetafields)
		}

		// price-rules 价格规则
		rules := api.Group("/price-rules")
		{
			rules.GET("", pricingCtl.List)
			rules.POST("", pricingCtl.Create)
			rules.PUT("/:id", pricingCtl.Update)
			rules.DELETE("/:id", pricingCtl.Delete)
			rules.GET("/preview", pricingCtl.Preview)
		}

		// billing 结算
		billing := api.Group("/billing")
		{
			billing.GET("/orders/:id", billingCtl.GetOrderBilling)
			billing.GET("/weekly", billingCtl.GetWeekSummary)
			billing.GET("/monthly", billingCtl.GetMonthSummary)
			billing.PUT("/balance", billingCtl.SetBalanceAdjustment)
		}

		// supplier-orders 供应商补货单
		suppliers := api.Group("/supplier-orders")
		{
			suppliers.GET("", supplierCtl.List)
			suppliers.POST("", supplierCtl.Create)
			suppliers.GET("/:id", supplierCtl.GetByID)
			suppliers.DELETE("/:id", supplierCtl.Delete)
			suppliers.POST("/:id/items", supplierCtl.AddItem)
			suppliers.PUT("/:id/items/:item_id", supplierCtl.UpdateItem)
			suppliers.DELETE("/:id/items/:item_id", supplierCtl.RemoveItem)
			suppliers.POST("/:id/items/:item_id/validate", supplierCtl.ValidateItem)
			suppliers.PUT("/:id/balance", supplierCtl.SetBalance)
			suppliers.POST("/:id/transition", supplierCtl.Transition)
		}

		// sync 同步任务
		sync := api.Group("/sync")
		{
			sync.POST("/orders/:shop_id",
				middleware.SyncRateLimit(middleware.SyncTypeOrder, 0),
				syncCtl.StreamOrderSync)
			sync.POST("/products/:shop_id",
				middleware.SyncRateLimit(middleware.SyncTypeProduct, 0),
				syncCtl.StreamProductSync)
			sync.POST("/orders", syncCtl.SyncAllOrders)
			sync.POST("/cleanup", syncCtl.TriggerCleanup)
			sync.GET("/status", syncCtl.Status)
		}
	}
}
