package dependency

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"time"

	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/cache"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/conf"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/logging"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/request"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/setting"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/util"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/webdav"
)

var (
	ErrorConfigPathNotSet = errors.New("config path not set")
)

const (
	webdavTPSToken = "webdav"
)

type (
	// DepCtx defines keys for dependency manager
	DepCtx struct{}
)

// Dep manages all dependencies of the application. The default implementation is not
// concurrent safe, so all inner deps should be initialized before any goroutine starts.
type Dep interface {
	// ConfigProvider Get a singleton conf.ConfigProvider instance.
	ConfigProvider() conf.ConfigProvider
	// Logger Get a singleton logging.Logger instance.
	Logger() logging.Logger
	// KV Get a singleton cache.Driver instance for the local setting cache, persisted on shutdown.
	KV() cache.Driver
	// SyncKV Get a singleton cache.Driver instance mirroring settings and holding secrets. Redis
	// is used when configured, otherwise a second persisted in-memory store.
	SyncKV() cache.Driver
	// RequestClient Creates a new request.Client instance for HTTP requests.
	RequestClient(opts ...request.Option) request.Client
	// SettingStore Get a singleton setting.Store instance.
	SettingStore() setting.Store
	// SettingsManager Get a singleton setting.Manager instance for snapshot export/import.
	SettingsManager() *setting.Manager
	// WebDAVClient Get a singleton webdav.Client instance for backups.
	WebDAVClient() *webdav.Client
	// ForkWithLogger create a shallow copy of dependency with a new correlated logger.
	ForkWithLogger(ctx context.Context, l logging.Logger) context.Context
	// Shutdown the dependencies gracefully.
	Shutdown(ctx context.Context) error
}

type dependency struct {
	configProvider  conf.ConfigProvider
	logger          logging.Logger
	kv              cache.Driver
	syncKv          cache.Driver
	requestClient   request.Client
	settingStore    setting.Store
	settingsManager *setting.Manager
	webdavClient    *webdav.Client

	configPath string
}

// NewDependency creates a new Dep instance for construct dependencies.
func NewDependency(opts ...Option) Dep {
	d := &dependency{}
	for _, o := range opts {
		o.apply(d)
	}

	return d
}

// FromContext retrieves a Dep instance from context.
func FromContext(ctx context.Context) Dep {
	return ctx.Value(DepCtx{}).(Dep)
}

func (d *dependency) ConfigProvider() conf.ConfigProvider {
	if d.configProvider != nil {
		return d.configProvider
	}

	if d.configPath == "" {
		d.panicError(ErrorConfigPathNotSet)
	}

	var err error
	d.configProvider, err = conf.NewIniConfigProvider(d.configPath, logging.NewConsoleLogger(logging.LevelInformational))
	if err != nil {
		d.panicError(err)
	}

	return d.configProvider
}

func (d *dependency) Logger() logging.Logger {
	if d.logger != nil {
		return d.logger
	}

	config := d.ConfigProvider()
	logLevel := logging.LogLevel(config.System().LogLevel)
	if config.System().Debug {
		logLevel = logging.LevelDebug
	}

	d.logger = logging.NewConsoleLogger(logLevel)
	d.logger.Debug("Logger initialized with LogLevel=%q.", logLevel)
	return d.logger
}

func (d *dependency) KV() cache.Driver {
	if d.kv != nil {
		return d.kv
	}

	d.kv = cache.NewMemoStore(d.cacheFile(), d.Logger())
	return d.kv
}

func (d *dependency) SyncKV() cache.Driver {
	if d.syncKv != nil {
		return d.syncKv
	}

	config := d.ConfigProvider().Redis()
	if config.Server != "" {
		d.syncKv = cache.NewRedisStore(d.Logger(), 10, config)
	} else {
		d.syncKv = cache.NewMemoStore(d.syncFile(), d.Logger())
	}

	return d.syncKv
}

func (d *dependency) RequestClient(opts ...request.Option) request.Client {
	if d.requestClient != nil {
		return d.requestClient
	}

	config := d.ConfigProvider().WebDAV()
	defaults := []request.Option{
		request.WithTimeout(time.Duration(config.Timeout) * time.Second),
		request.WithLogger(d.Logger()),
	}

	if config.TPSLimit > 0 {
		defaults = append(defaults, request.WithTPSLimit(webdavTPSToken, config.TPSLimit, config.TPSBurst))
	}

	if config.InsecureSkipVerify {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		defaults = append(defaults, request.WithTransport(transport))
		d.Logger().Warning("TLS certificate verification of WebDAV targets is disabled.")
	}

	return request.NewClient(append(defaults, opts...)...)
}

func (d *dependency) SettingStore() setting.Store {
	if d.settingStore != nil {
		return d.settingStore
	}

	d.settingStore = setting.NewStore(d.KV(), d.SyncKV(), d.Logger())
	return d.settingStore
}

func (d *dependency) SettingsManager() *setting.Manager {
	if d.settingsManager != nil {
		return d.settingsManager
	}

	d.settingsManager = setting.NewManager(d.SettingStore(), d.Logger())
	return d.settingsManager
}

func (d *dependency) WebDAVClient() *webdav.Client {
	if d.webdavClient != nil {
		return d.webdavClient
	}

	d.webdavClient = d.newWebDAVClient(d.RequestClient(), d.Logger())
	return d.webdavClient
}

func (d *dependency) newWebDAVClient(client request.Client, l logging.Logger) *webdav.Client {
	return webdav.NewClient(client, l, d.SettingsManager(), d.ConfigProvider().WebDAV().AppDir)
}

func (d *dependency) ForkWithLogger(ctx context.Context, l logging.Logger) context.Context {
	dep := &dependencyCorrelated{
		l:          l,
		dependency: d,
	}
	return context.WithValue(ctx, DepCtx{}, dep)
}

// Shutdown persists the local caches. Only stores that were used are touched.
func (d *dependency) Shutdown(ctx context.Context) error {
	var errs []error
	if d.kv != nil {
		if err := d.kv.Persist(d.cacheFile()); err != nil {
			errs = append(errs, err)
		}
	}

	if d.syncKv != nil {
		if err := d.syncKv.Persist(d.syncFile()); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (d *dependency) cacheFile() string {
	return util.DataPath(d.ConfigProvider().Storage().CacheFile)
}

func (d *dependency) syncFile() string {
	return util.DataPath(d.ConfigProvider().Storage().SyncFile)
}

func (d *dependency) panicError(err error) {
	if d.logger != nil {
		d.logger.Panic("Fatal error in dependency initialization: %s", err)
	}

	panic(err)
}

type dependencyCorrelated struct {
	l            logging.Logger
	webdavClient *webdav.Client
	*dependency
}

func (d *dependencyCorrelated) Logger() logging.Logger {
	return d.l
}

func (d *dependencyCorrelated) RequestClient(opts ...request.Option) request.Client {
	return d.dependency.RequestClient(append([]request.Option{request.WithLogger(d.l)}, opts...)...)
}

// WebDAVClient 使用带 Correlation ID 的日志
func (d *dependencyCorrelated) WebDAVClient() *webdav.Client {
	if d.webdavClient != nil {
		return d.webdavClient
	}

	d.webdavClient = d.newWebDAVClient(d.RequestClient(), d.l)
	return d.webdavClient
}
