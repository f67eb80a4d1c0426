package shopify

import "fmt"

// ==================== BatchResult 批处理结果 ====================

// BatchFailure 单条失败记录
type BatchFailure struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

// BatchResult 批处理显式部分成功结果
// 批量循环里的单条失败不再只吞进日志，由调用方决定部分成功是否可接受
type BatchResult struct {
	Succeeded []int64        `json:"succeeded"`
	Failed    []BatchFailure `json:"failed"`
}

// AddSuccess 记录成功条目
func (r *BatchResult) AddSuccess(id int64) {
	r.Succeeded = append(r.Succeeded, id)
}

// AddFailure 记录失败条目
func (r *BatchResult) AddFailure(id int64, err error) {
	reason := ""
	if err != nil {
		reason = err.Error()
	}
	r.Failed = append(r.Failed, BatchFailure{ID: id, Reason: reason})
}

// HasFailures 是否存在失败条目
func (r *BatchResult) HasFailures() bool {
	return len(r.Failed) > 0
}

// Summary 摘要，日志用
func (r *BatchResult) Summary() string {
	return fmt.Sprintf("成功 %d 条, 失败 %d 条", len(r.Succeeded), len(r.Failed))
}
