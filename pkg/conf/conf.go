package conf

import (
	"fmt"
	"os"
	"strings"

	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/logging"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/util"
	"github.com/go-ini/ini"
	"github.com/go-playground/validator/v10"
)

const (
	envConfOverrideKey = "QTN_CONF_"
)

type ConfigProvider interface {
	System() *System
	WebDAV() *WebDAV
	Redis() *Redis
	Storage() *Storage
}

// NewIniConfigProvider initializes a new Ini config file provider. A default config file
// will be created if the given path does not exist.
func NewIniConfigProvider(configPath string, l logging.Logger) (ConfigProvider, error) {
	if configPath == "" || !util.Exists(configPath) {
		l.Info("Config file %q not found, creating a new one.", configPath)
		f, err := util.CreatNestedFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create config file: %w", err)
		}

		// 写入配置文件
		_, err = f.WriteString(defaultConf)
		if err != nil {
			return nil, fmt.Errorf("failed to write config file: %w", err)
		}

		f.Close()
	}

	cfg, err := ini.Load(configPath, []byte(getOverrideConfFromEnv(l)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", configPath, err)
	}

	provider := &iniConfigProvider{
		system:  *SystemConfig,
		webdav:  *WebDAVConfig,
		redis:   *RedisConfig,
		storage: *StorageConfig,
	}

	sections := map[string]interface{}{
		"System":  &provider.system,
		"WebDAV":  &provider.webdav,
		"Redis":   &provider.redis,
		"Storage": &provider.storage,
	}
	for sectionName, sectionStruct := range sections {
		err = mapSection(cfg, sectionName, sectionStruct)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config section %q: %w", sectionName, err)
		}
	}

	return provider, nil
}

type iniConfigProvider struct {
	system  System
	webdav  WebDAV
	redis   Redis
	storage Storage
}

func (i *iniConfigProvider) System() *System {
	return &i.system
}

func (i *iniConfigProvider) WebDAV() *WebDAV {
	return &i.webdav
}

func (i *iniConfigProvider) Redis() *Redis {
	return &i.redis
}

func (i *iniConfigProvider) Storage() *Storage {
	return &i.storage
}

const defaultConf = `[System]
Debug = false
LogLevel = info

[WebDAV]
AppDir = QuickTabNavigator
Timeout = 30
InsecureSkipVerify = false
`

// mapSection 将配置文件的 Section 映射到结构体上
func mapSection(cfg *ini.File, section string, confStruct interface{}) error {
	err := cfg.Section(section).MapTo(confStruct)
	if err != nil {
		return err
	}

	// 验证合法性
	validate := validator.New()
	err = validate.Struct(confStruct)
	if err != nil {
		return err
	}

	return nil
}

func getOverrideConfFromEnv(l logging.Logger) string {
	confMaps := make(map[string]map[string]string)
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, envConfOverrideKey) {
			continue
		}

		// split by key=value and get key
		kv := strings.SplitN(env, "=", 2)
		configKey := strings.TrimPrefix(kv[0], envConfOverrideKey)
		configValue := kv[1]
		sectionKey := strings.SplitN(configKey, ".", 2)
		if len(sectionKey) != 2 {
			l.Warning("Ignore malformed config override %q", kv[0])
			continue
		}

		if confMaps[sectionKey[0]] == nil {
			confMaps[sectionKey[0]] = make(map[string]string)
		}

		confMaps[sectionKey[0]][sectionKey[1]] = configValue
		if strings.Contains(strings.ToLower(sectionKey[1]), "password") {
			configValue = "******"
		}
		l.Info("Override config %q = %q", configKey, configValue)
	}

	// generate ini content
	var sb strings.Builder
	for section, kvs := range confMaps {
		sb.WriteString(fmt.Sprintf("[%s]\n", section))
		for k, v := range kvs {
			sb.WriteString(fmt.Sprintf("%s = %s\n", k, v))
		}
	}

	return sb.String()
}
