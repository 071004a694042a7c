package cache

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/logging"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/util"
)

// DefaultCacheFile 本地缓存持久化文件名
const DefaultCacheFile = "settings.bin"

// MemoStore 内存存储驱动
type MemoStore struct {
	Store *sync.Map
	l     logging.Logger
}

type itemWithTTL struct {
	Expires int64
	Value   any
}

func newItem(value any, expires int) itemWithTTL {
	expires64 := int64(expires)
	if expires > 0 {
		expires64 = time.Now().Unix() + expires64
	}
	return itemWithTTL{
		Value:   value,
		Expires: expires64,
	}
}

// getValue 从itemWithTTL中取值
func getValue(item any, ok bool) (any, bool) {
	if !ok {
		return nil, ok
	}

	var itemObj itemWithTTL
	if itemObj, ok = item.(itemWithTTL); !ok {
		return item, true
	}

	if itemObj.Expires > 0 && itemObj.Expires < time.Now().Unix() {
		return nil, false
	}

	return itemObj.Value, ok
}

// NewMemoStore 新建内存存储. When persistFile is not empty, previously persisted
// entries are restored from it.
func NewMemoStore(persistFile string, l logging.Logger) *MemoStore {
	store := &MemoStore{
		Store: &sync.Map{},
		l:     l,
	}

	if persistFile != "" {
		if err := store.Restore(persistFile); err != nil {
			l.Warning("Failed to restore local cache from %q: %s", persistFile, err)
		}
	}

	return store
}

// Set 存储值
func (store *MemoStore) Set(key string, value any, ttl int) error {
	store.Store.Store(key, newItem(value, ttl))
	return nil
}

// Get 取值
func (store *MemoStore) Get(key string) (any, bool) {
	return getValue(store.Store.Load(key))
}

// Gets 批量取值
func (store *MemoStore) Gets(keys []string, prefix string) (map[string]any, []string) {
	var res = make(map[string]any)
	var notFound = make([]string, 0, len(keys))

	for _, key := range keys {
		if value, ok := getValue(store.Store.Load(prefix + key)); ok {
			res[key] = value
		} else {
			notFound = append(notFound, key)
		}
	}

	return res, notFound
}

// Delete 批量删除值
func (store *MemoStore) Delete(prefix string, keys ...string) error {
	if len(keys) == 0 {
		store.Store.Range(func(key, value any) bool {
			if strings.HasPrefix(key.(string), prefix) {
				store.Store.Delete(key)
			}
			return true
		})
		return nil
	}

	for _, key := range keys {
		store.Store.Delete(prefix + key)
	}
	return nil
}

// Persist write memory store into disk. Expired entries are skipped.
func (store *MemoStore) Persist(path string) error {
	persisted := make(map[string]itemWithTTL)
	store.Store.Range(func(key, value any) bool {
		v, ok := store.Store.Load(key)
		if _, ok := getValue(v, ok); ok {
			persisted[key.(string)] = v.(itemWithTTL)
		}
		return true
	})

	f, err := util.CreatNestedFile(path)
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(persisted); err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	store.l.Debug("Local cache persisted to %q, %d entries.", path, len(persisted))
	return nil
}

// Restore memory cache from disk file. A missing file is not an error.
func (store *MemoStore) Restore(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer f.Close()

	persisted := make(map[string]itemWithTTL)
	if err := gob.NewDecoder(f).Decode(&persisted); err != nil {
		return fmt.Errorf("failed to decode cache file: %w", err)
	}

	loaded := 0
	for k, v := range persisted {
		if _, ok := getValue(v, true); ok {
			loaded++
			store.Store.Store(k, v)
		}
	}

	store.l.Debug("Restored %d items from %q into local cache.", loaded, path)
	return nil
}
