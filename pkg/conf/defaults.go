package conf

import "github.com/QuickTabNavigator/QuickTabNavigator/application/constants"

// SystemConfig 系统公用配置
var SystemConfig = &System{
	Debug:    false,
	LogLevel: "info",
}

// WebDAVConfig WebDAV 配置
var WebDAVConfig = &WebDAV{
	AppDir:   constants.AppDirName,
	Timeout:  30,
	TPSLimit: 0,
	TPSBurst: 1,
}

// RedisConfig Redis服务器配置
var RedisConfig = &Redis{
	Network:  "tcp",
	Server:   "",
	Password: "",
	DB:       "0",
}

// StorageConfig 本地缓存配置
var StorageConfig = &Storage{
	CacheFile: "settings.bin",
	SyncFile:  "sync.bin",
}
