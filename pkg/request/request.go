package request

import (
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/logging"
)

// Response 请求的响应或错误信息
type Response struct {
	Err      error
	Response *http.Response
}

// Client 请求客户端
type Client interface {
	// Request 发送HTTP请求
	Request(method, target string, body io.Reader, opts ...Option) *Response
}

// HTTPClient 实现 Client 接口
type HTTPClient struct {
	mu         sync.Mutex
	options    *options
	tpsLimiter TPSLimiter
}

// NewClient creates a client whose default options are applied to every request.
func NewClient(opts ...Option) Client {
	client := &HTTPClient{
		options:    newDefaultOption(),
		tpsLimiter: globalTPSLimiter,
	}

	for _, o := range opts {
		o.apply(client.options)
	}

	return client
}

// Request 发送HTTP请求
func (c *HTTPClient) Request(method, target string, body io.Reader, opts ...Option) *Response {
	// 应用额外设置
	c.mu.Lock()
	options := c.options.clone()
	c.mu.Unlock()
	for _, o := range opts {
		o.apply(&options)
	}

	// 创建请求客户端
	client := &http.Client{Timeout: options.timeout}
	if options.transport != nil {
		client.Transport = options.transport
	}
	if options.noRedirect {
		client.CheckRedirect = keepRedirect
	}

	// size为0时将body设为nil
	if options.contentLength == 0 {
		body = nil
	}

	// 创建请求
	req, err := http.NewRequestWithContext(options.ctx, method, target, body)
	if err != nil {
		return &Response{Err: err}
	}

	// 添加请求相关设置
	req.Header = options.header
	if options.contentLength != -1 {
		req.ContentLength = options.contentLength
	}

	if options.tps > 0 {
		c.tpsLimiter.Limit(options.ctx, options.tpsLimiterToken, options.tps, options.tpsBurst)
	}

	// 发送请求
	start := time.Now()
	resp, err := client.Do(req)
	if options.logger != nil {
		var (
			errStr string
			code   int
		)
		if err != nil {
			errStr = err.Error()
		} else {
			code = resp.StatusCode
		}
		logging.Request(options.logger, code, method, target, errStr, start)
	}

	if err != nil {
		return &Response{Err: err}
	}

	return &Response{Err: nil, Response: resp}
}

// keepRedirect stops at the first 3xx. Following 301/302/303 would turn PUT, PROPFIND
// and MKCOL into GET and report the GET's status instead.
func keepRedirect(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}

// GetResponse 检查响应并获取响应正文
func (resp *Response) GetResponse() (string, error) {
	if resp.Err != nil {
		return "", resp.Err
	}
	respBody, err := io.ReadAll(resp.Response.Body)
	_ = resp.Response.Body.Close()

	return string(respBody), err
}

// CheckHTTPResponse 检查请求响应HTTP状态码
func (resp *Response) CheckHTTPResponse(status int) *Response {
	if resp.Err != nil {
		return resp
	}

	// 检查HTTP状态码
	if resp.Response.StatusCode != status {
		resp.Err = fmt.Errorf("server returned unexpected HTTP status %d", resp.Response.StatusCode)
	}
	return resp
}

// Discard 读取并丢弃响应正文，然后关闭连接
func (resp *Response) Discard() {
	if resp.Response == nil || resp.Response.Body == nil {
		return
	}

	BlackHole(resp.Response.Body)
	_ = resp.Response.Body.Close()
}

// BlackHole 将数据放入黑洞
func BlackHole(r io.Reader) {
	io.Copy(io.Discard, r)
}

// IsSuccess reports whether the status code is 2xx.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}

// IsSuccessOrRedirect reports whether the status code is 2xx or 3xx.
func IsSuccessOrRedirect(status int) bool {
	return status >= 200 && status < 400
}
