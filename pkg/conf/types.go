package conf

// System 系统通用配置
type System struct {
	Debug    bool
	LogLevel string `validate:"oneof=debug info warning error"`
}

// WebDAV 备份目标相关配置
type WebDAV struct {
	// AppDir is appended to directory-style targets, e.g. https://dav/ -> https://dav/AppDir/
	AppDir             string `validate:"required,excludesall=/\\"`
	Timeout            int    `validate:"gte=0"`
	InsecureSkipVerify bool
	TPSLimit           float64 `validate:"gte=0"`
	TPSBurst           int     `validate:"gte=0"`
}

// Redis 远端同步存储
type Redis struct {
	Network       string
	Server        string
	User          string
	Password      string
	DB            string
	UseSSL        bool
	TLSSkipVerify bool
}

// Storage 本地缓存
type Storage struct {
	CacheFile string `validate:"required"`
	// SyncFile persists the sync mirror when no Redis server is configured
	SyncFile string `validate:"required"`
}
