package setting

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/cache"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/logging"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/serializer"
)

const (
	KvSettingPrefix = "setting_"
	KvSecretPrefix  = "secret_"
)

// Store keeps settings in a fast local cache mirrored to a sync store. Values are kept as
// JSON text so that both sides can be inspected and migrated without knowing their types.
type Store interface {
	// Set writes value to the local cache first, then to the sync store. Failing to write
	// the sync store is not an error as long as the local cache holds the value.
	Set(ctx context.Context, key string, value any) error
	// Get returns the raw JSON of a setting. The local cache is trusted when it has the key,
	// so a stale sync copy never overrides a freshly imported value.
	Get(ctx context.Context, key string) (json.RawMessage, bool)
	// Remove deletes keys from both stores.
	Remove(ctx context.Context, keys ...string) error
	// SetSecret writes a secret to the sync store only.
	SetSecret(ctx context.Context, key, value string) error
	// GetSecret reads a secret from the sync store.
	GetSecret(ctx context.Context, key string) (string, bool)
	// Migrate copies keys that only exist locally into the sync store, returning how many were copied.
	Migrate(ctx context.Context, keys []string) int
}

// NewStore creates a Store. sync may be nil, in which case only the local cache is used.
func NewStore(local, sync cache.Driver, l logging.Logger) Store {
	return &kvStore{
		local: local,
		sync:  sync,
		l:     l,
	}
}

type kvStore struct {
	local cache.Driver
	sync  cache.Driver
	l     logging.Logger
}

func (s *kvStore) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return serializer.NewError(serializer.CodeParamErr, fmt.Sprintf("Setting %q cannot be encoded", key), err)
	}

	if err := s.local.Set(KvSettingPrefix+key, string(raw), 0); err != nil {
		return serializer.NewError(serializer.CodeCacheOperation, "Failed to write local setting cache", err)
	}

	if s.sync != nil {
		if err := s.sync.Set(KvSettingPrefix+key, string(raw), 0); err != nil {
			// 同步失败时本地已有缓存
			s.logger(ctx).Warning("Failed to sync setting %q: %s", key, err)
		}
	}

	return nil
}

func (s *kvStore) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	if raw, ok := asRaw(s.local.Get(KvSettingPrefix + key)); ok {
		return raw, true
	}

	if s.sync == nil {
		return nil, false
	}

	raw, ok := asRaw(s.sync.Get(KvSettingPrefix + key))
	if !ok {
		return nil, false
	}

	// 保持本地缓存最新
	if err := s.local.Set(KvSettingPrefix+key, string(raw), 0); err != nil {
		s.logger(ctx).Warning("Failed to refresh local cache of setting %q: %s", key, err)
	}

	return raw, true
}

func (s *kvStore) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if err := s.local.Delete(KvSettingPrefix, keys...); err != nil {
		return serializer.NewError(serializer.CodeCacheOperation, "Failed to remove local settings", err)
	}

	if s.sync != nil {
		if err := s.sync.Delete(KvSettingPrefix, keys...); err != nil {
			s.logger(ctx).Warning("Failed to remove synced settings %v: %s", keys, err)
		}
	}

	return nil
}

func (s *kvStore) SetSecret(ctx context.Context, key, value string) error {
	if s.sync == nil {
		return serializer.NewError(serializer.CodeCacheOperation, "No sync store for secrets", nil)
	}

	if err := s.sync.Set(KvSecretPrefix+key, value, 0); err != nil {
		return serializer.NewError(serializer.CodeCacheOperation, "Failed to write secret", err)
	}

	return nil
}

func (s *kvStore) GetSecret(ctx context.Context, key string) (string, bool) {
	if s.sync == nil {
		return "", false
	}

	v, ok := s.sync.Get(KvSecretPrefix + key)
	if !ok {
		return "", false
	}

	str, ok := v.(string)
	return str, ok
}

func (s *kvStore) Migrate(ctx context.Context, keys []string) int {
	if s.sync == nil {
		return 0
	}

	_, missing := s.sync.Gets(keys, KvSettingPrefix)
	migrated := 0
	for _, key := range missing {
		raw, ok := asRaw(s.local.Get(KvSettingPrefix + key))
		if !ok {
			continue
		}

		if err := s.sync.Set(KvSettingPrefix+key, string(raw), 0); err != nil {
			s.logger(ctx).Warning("Failed to migrate setting %q: %s", key, err)
			continue
		}
		migrated++
	}

	return migrated
}

func (s *kvStore) logger(ctx context.Context) logging.Logger {
	if l, ok := ctx.Value(logging.LoggerCtx{}).(logging.Logger); ok {
		return l
	}
	return s.l
}

// asRaw accepts values written by Set. Plain strings that are not valid JSON are kept as
// JSON strings.
func asRaw(v any, ok bool) (json.RawMessage, bool) {
	if !ok {
		return nil, false
	}

	switch value := v.(type) {
	case string:
		if json.Valid([]byte(value)) {
			return json.RawMessage(value), true
		}
		quoted, _ := json.Marshal(value)
		return quoted, true
	case []byte:
		if json.Valid(value) {
			return value, true
		}
	}

	return nil, false
}

// GetStoredValue decodes a setting into T, returning fallback when it is absent or cannot
// be decoded.
func GetStoredValue[T any](ctx context.Context, s Store, key string, fallback T) T {
	raw, ok := s.Get(ctx, key)
	if !ok {
		return fallback
	}

	var res T
	if err := json.Unmarshal(raw, &res); err != nil {
		return fallback
	}

	return res
}
