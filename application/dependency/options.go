package dependency

import (
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/cache"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/conf"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/logging"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/request"
)

// Option 依赖项的额外设置
type Option interface {
	apply(*dependency)
}

type optionFunc func(*dependency)

func (f optionFunc) apply(o *dependency) {
	f(o)
}

// WithConfigPath Set the path of the config file.
func WithConfigPath(p string) Option {
	return optionFunc(func(o *dependency) {
		o.configPath = p
	})
}

// WithLogger Set the default logging.
func WithLogger(l logging.Logger) Option {
	return optionFunc(func(o *dependency) {
		o.logger = l
	})
}

// WithConfigProvider Set the default config provider.
func WithConfigProvider(c conf.ConfigProvider) Option {
	return optionFunc(func(o *dependency) {
		o.configProvider = c
	})
}

// WithKV Set the default local KV store.
func WithKV(c cache.Driver) Option {
	return optionFunc(func(o *dependency) {
		o.kv = c
	})
}

// WithSyncKV Set the default sync KV store.
func WithSyncKV(c cache.Driver) Option {
	return optionFunc(func(o *dependency) {
		o.syncKv = c
	})
}

// WithRequestClient Set the default request client.
func WithRequestClient(c request.Client) Option {
	return optionFunc(func(o *dependency) {
		o.requestClient = c
	})
}
