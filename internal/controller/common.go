package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ==================== 工具函数 ====================

// parseID 解析路径参数中的数字 ID，非法时直接写 400 并返回 0
func parseID(ctx *gin.Context, key string) int64 {
	id, err := strconv.ParseInt(ctx.Param(key), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(400, gin.H{"code": 400, "message": "无效的 ID"})
		return 0
	}
	return id
}

// shopIDQuery 解析查询参数中的 shop_id，非法时直接写 400 并返回 0
func shopIDQuery(ctx *gin.Context) int64 {
	id, err := strconv.ParseInt(ctx.Query("shop_id"), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(400, gin.H{"code": 400, "message": "缺少店铺 ID"})
		return 0
	}
	return id
}
