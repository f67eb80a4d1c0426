package controller

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"orderpro_v1_202608/internal/service"
	"orderpro_v1_202608/internal/task"
	"orderpro_v1_202608/pkg/utils"
)

// SyncController 同步控制器
type SyncController struct {
	taskManager *task.TaskManager
}

// NewSyncController 创建同步控制器
func NewSyncController(taskManager *task.TaskManager) *SyncController {
	return &SyncController{taskManager: taskManager}
}

// ==================== 流式同步 ====================

// StreamOrderSync 同步单个店铺订单，进度以 JSON 事件流逐行推送
// POST /api/v1/sync/orders/:shop_id
// 每行一个 {message, type, timestamp}，结束时推 DONE 哨兵；
// 同步中的错误以 type=error 事件下发，流本身永远正常收尾
func (c *SyncController) StreamOrderSync(ctx *gin.Context) {
	shopID := parseID(ctx, "shop_id")
	if shopID == 0 {
		return
	}

	events := make(chan service.StreamEvent, 64)
	go func() {
		defer close(events)
		result, err := c.taskManager.TriggerOrderSync(ctx.Request.Context(), shopID, func(ev service.StreamEvent) {
			events <- ev
		})
		if errors.Is(err, task.ErrTaskDisabled) {
			// 服务层不会为停用任务发事件，这里补一条
			events <- disabledEvent()
		}
		if err == nil && result != nil {
			utils.SetSyncResult("orders", shopID, result.Summary())
		}
	}()

	streamEvents(ctx, events)
}

// StreamProductSync 同步单个店铺商品，进度以 JSON 事件流逐行推送
// POST /api/v1/sync/products/:shop_id
func (c *SyncController) StreamProductSync(ctx *gin.Context) {
	shopID := parseID(ctx, "shop_id")
	if shopID == 0 {
		return
	}

	events := make(chan service.StreamEvent, 64)
	go func() {
		defer close(events)
		result, err := c.taskManager.TriggerProductSync(ctx.Request.Context(), shopID, func(ev service.StreamEvent) {
			events <- ev
		})
		if errors.Is(err, task.ErrTaskDisabled) {
			events <- disabledEvent()
		}
		if err == nil && result != nil {
			utils.SetSyncResult("products", shopID, result.Summary())
		}
	}()

	streamEvents(ctx, events)
}

// disabledEvent 任务停用时下发的错误事件
func disabledEvent() service.StreamEvent {
	return service.StreamEvent{
		Message:   "同步任务未启用",
		Type:      service.EventError,
		Timestamp: time.Now().Format("15:04:05"),
	}
}

// streamEvents 把事件通道写成单向 JSON 行流，最后一行固定为 DONE
func streamEvents(ctx *gin.Context, events <-chan service.StreamEvent) {
	ctx.Header("Content-Type", "application/x-ndjson")
	ctx.Header("Cache-Control", "no-cache")

	ctx.Stream(func(w io.Writer) bool {
		ev, ok := <-events
		if !ok {
			w.Write([]byte("DONE\n"))
			return false
		}
		line, err := json.Marshal(ev)
		if err != nil {
			return true
		}
		w.Write(line)
		w.Write([]byte("\n"))
		return true
	})
}

// ==================== 批量触发 ====================

// SyncAllOrders 同步所有店铺订单（后台执行）
// POST /api/v1/sync/orders
func (c *SyncController) SyncAllOrders(ctx *gin.Context) {
	c.taskManager.TriggerAllOrdersSync()

	ctx.JSON(200, gin.H{
		"code":    200,
		"message": "所有订单同步任务已启动",
	})
}

// TriggerCleanup 触发保留期清理（后台执行）
// POST /api/v1/sync/cleanup
func (c *SyncController) TriggerCleanup(ctx *gin.Context) {
	c.taskManager.TriggerCleanup()

	ctx.JSON(200, gin.H{
		"code":    200,
		"message": "保留期清理任务已启动",
	})
}

// ==================== 状态查询 ====================

// Status 任务启用状态与店铺最近同步结果
// GET /api/v1/sync/status?shop_id=1
func (c *SyncController) Status(ctx *gin.Context) {
	data := gin.H{"tasks": c.taskManager.Status()}

	if shopID, ok := optionalShopID(ctx); ok {
		last := gin.H{}
		if summary, found := utils.GetSyncResult("orders", shopID); found {
			last["orders"] = summary
		}
		if summary, found := utils.GetSyncResult("products", shopID); found {
			last["products"] = summary
		}
		data["last_results"] = last
	}

	ctx.JSON(200, gin.H{
		"code": 200,
		"data": data,
	})
}

// optionalShopID 读取可选的 shop_id 查询参数
func optionalShopID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Query("shop_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
