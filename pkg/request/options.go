package request

import (
	"context"
	"net/http"
	"time"

	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/logging"
)

// Option 发送请求的额外设置
type Option interface {
	apply(*options)
}

type options struct {
	timeout         time.Duration
	header          http.Header
	ctx             context.Context
	contentLength   int64
	tpsLimiterToken string
	tps             float64
	tpsBurst        int
	logger          logging.Logger
	transport       http.RoundTripper
	noRedirect      bool
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) {
	f(o)
}

func newDefaultOption() *options {
	return &options{
		header:        http.Header{},
		timeout:       0,
		contentLength: -1,
		ctx:           context.Background(),
	}
}

func (o *options) clone() options {
	newOptions := *o
	newOptions.header = o.header.Clone()
	return newOptions
}

// WithTransport 设置请求Transport
func WithTransport(transport http.RoundTripper) Option {
	return optionFunc(func(o *options) {
		o.transport = transport
	})
}

// WithoutRedirect 不跟随重定向，3xx 响应直接返回给调用方
func WithoutRedirect() Option {
	return optionFunc(func(o *options) {
		o.noRedirect = true
	})
}

// WithTimeout 设置请求超时
func WithTimeout(t time.Duration) Option {
	return optionFunc(func(o *options) {
		o.timeout = t
	})
}

// WithContext 设置请求上下文
func WithContext(c context.Context) Option {
	return optionFunc(func(o *options) {
		o.ctx = c
	})
}

// WithHeader 设置请求Header
func WithHeader(header http.Header) Option {
	return optionFunc(func(o *options) {
		for k, v := range header {
			o.header[k] = v
		}
	})
}

// WithoutHeader 设置清除请求Header
func WithoutHeader(header []string) Option {
	return optionFunc(func(o *options) {
		for _, v := range header {
			o.header.Del(v)
		}
	})
}

// WithContentLength 设置请求大小
func WithContentLength(s int64) Option {
	return optionFunc(func(o *options) {
		o.contentLength = s
	})
}

// WithTPSLimit 请求时使用全局流量限制
func WithTPSLimit(token string, tps float64, burst int) Option {
	return optionFunc(func(o *options) {
		o.tpsLimiterToken = token
		o.tps = tps
		if burst < 1 {
			burst = 1
		}
		o.tpsBurst = burst
	})
}

// WithLogger set logger for logging requests
func WithLogger(logger logging.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = logger
	})
}
