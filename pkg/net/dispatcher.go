package net

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// ==================== Dispatcher 网络调度器 ====================

// Dispatcher 网络调度器 (通用组件)
// 职责：按业务键（shopID）对出站请求做节流，避免触发商城 API 限流；
// 传输层错误自动重试，429 响应按 Retry-After 等待一次后重发
type Dispatcher interface {
	// Send 发送 HTTP 请求
	// shopID: 业务实体的唯一标识
	// req: 标准的 http.Request 对象
	Send(ctx context.Context, shopID int64, req *http.Request) (*http.Response, error)
}

// httpDispatcher 是 Dispatcher 接口的具体实现
// 注意：它是私有的，外部只能通过 NewDispatcher 获取接口
type httpDispatcher struct {
	client     *http.Client
	paceStates sync.Map // shopID -> *paceState
	minGap     time.Duration
	maxRetries int
}

// paceState 单店节流状态
type paceState struct {
	mu       sync.Mutex
	lastSent time.Time
}

var _ Dispatcher = (*httpDispatcher)(nil)

// NewDispatcher 创建调度器
// minGap: 同一店铺两次请求的最小间隔（商城 API 限速要求，默认 50ms）
func NewDispatcher(minGap time.Duration) Dispatcher {
	if minGap <= 0 {
		minGap = 50 * time.Millisecond
	}
	return &httpDispatcher{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:    100,
				IdleConnTimeout: 90 * time.Second,
			},
			Timeout: 30 * time.Second,
		},
		minGap:     minGap,
		maxRetries: 2,
	}
}

// Send 发送 HTTP 请求 (自动节流与重试)
func (d *httpDispatcher) Send(ctx context.Context, shopID int64, req *http.Request) (*http.Response, error) {
	var lastErr error

	for i := 0; i <= d.maxRetries; i++ {
		// 1. 节流：距本店上次请求不足 minGap 时等待
		if err := d.pace(ctx, shopID); err != nil {
			return nil, err
		}

		// 2. 发送请求
		resp, err := d.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		// 3. 429 限流：按 Retry-After 等待后重试
		if resp.StatusCode == http.StatusTooManyRequests && i < d.maxRetries {
			wait := retryAfter(resp)
			resp.Body.Close()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
			lastErr = fmt.Errorf("rate limited (429), retried after %s", wait)
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("request failed after retries: %v", lastErr)
}

// pace 同店请求间隔控制
func (d *httpDispatcher) pace(ctx context.Context, shopID int64) error {
	actual, _ := d.paceStates.LoadOrStore(shopID, &paceState{})
	state := actual.(*paceState)

	state.mu.Lock()
	elapsed := time.Since(state.lastSent)
	var wait time.Duration
	if elapsed < d.minGap {
		wait = d.minGap - elapsed
	}
	state.lastSent = time.Now().Add(wait)
	state.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

// retryAfter 解析 Retry-After 头，缺失时退避 2 秒
func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return 2 * time.Second
}
