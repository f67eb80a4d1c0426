package dto

// ==================== 生产清单 ====================

// ToggleCheckboxRequest 勾选/取消勾选请求
type ToggleCheckboxRequest struct {
	VariantKey string `json:"variant_key" binding:"required"`
	Checked    bool   `json:"checked"`
}

// ChecklistResponse 订单生产清单响应
type ChecklistResponse struct {
	OrderID int64             `json:"order_id"`
	Checked int               `json:"checked"`
	Total   int               `json:"total"`
	Units   []ChecklistUnitVO `json:"units"`
}

// ChecklistUnitVO 单件勾选视图对象
type ChecklistUnitVO struct {
	VariantKey   string `json:"variant_key"`
	SKU          string `json:"sku"`
	Color        string `json:"color"`
	Size         string `json:"size"`
	ProductIndex int    `json:"product_index"`
	UnitIndex    int    `json:"unit_index"`
	Checked      bool   `json:"checked"`
}

// ProgressResponse 进度响应
type ProgressResponse struct {
	OrderID int64           `json:"order_id"`
	Checked int             `json:"checked"`
	Total   int             `json:"total"`
	BySKU   []SKUProgressVO `json:"by_sku,omitempty"`
}

// SKUProgressVO 按 SKU 分组进度
type SKUProgressVO struct {
	SKU     string `json:"sku"`
	Checked int    `json:"checked"`
	Total   int    `json:"total"`
}
