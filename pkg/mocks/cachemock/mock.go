package cachemock

import "github.com/stretchr/testify/mock"

type CacheClientMock struct {
	mock.Mock
}

func (c *CacheClientMock) Set(key string, value any, ttl int) error {
	return c.Called(key, value, ttl).Error(0)
}

func (c *CacheClientMock) Get(key string) (any, bool) {
	args := c.Called(key)
	return args.Get(0), args.Bool(1)
}

func (c *CacheClientMock) Gets(keys []string, prefix string) (map[string]any, []string) {
	args := c.Called(keys, prefix)
	return args.Get(0).(map[string]any), args.Get(1).([]string)
}

func (c *CacheClientMock) Delete(prefix string, keys ...string) error {
	return c.Called(prefix, keys).Error(0)
}

func (c *CacheClientMock) Persist(path string) error {
	return c.Called(path).Error(0)
}

func (c *CacheClientMock) Restore(path string) error {
	return c.Called(path).Error(0)
}
