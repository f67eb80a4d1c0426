package service

import "time"

// ==================== 同步事件流 ====================

// 事件类型
const (
	EventInfo    = "info"
	EventSuccess = "success"
	EventWarning = "warning"
	EventError   = "error"
)

// StreamEvent 同步进度事件，逐条推给前端展示
type StreamEvent struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

// EventSink 事件接收器，nil 表示调用方不关心进度
type EventSink func(StreamEvent)

// emit 发送一条事件，sink 为 nil 时静默丢弃
func (sink EventSink) emit(typ, message string) {
	if sink == nil {
		return
	}
	sink(StreamEvent{
		Message:   message,
		Type:      typ,
		Timestamp: time.Now().Format("15:04:05"),
	})
}
