package cache

import (
	"context"
	"encoding/json"
	"time"
)

// GetOrLoadJSON 以 JSON 形式缓存 load 的结果。
// c 为 nil 时每次直接回源；缓存内容解析失败时删除该 key 并回源。
func GetOrLoadJSON[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return load(ctx)
	}
	var fresh *T
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, e := load(ctx)
		if e != nil {
			return nil, e
		}
		fresh = &v
		return json.Marshal(v)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	if fresh != nil {
		return *fresh, nil
	}
	var out T
	if e := json.Unmarshal(b, &out); e != nil {
		_ = c.Delete(context.WithoutCancel(ctx), key)
		return load(ctx)
	}
	return out, nil
}
