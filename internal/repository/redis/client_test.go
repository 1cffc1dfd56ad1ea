package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCmdable answers Get/Set/Del from a map; any other command panics on
// the nil embedded interface.
type stubCmdable struct {
	redis.Cmdable
	data map[string]string
	ttls map[string]time.Duration
	fail error
}

func newStub() *stubCmdable {
	return &stubCmdable{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *stubCmdable) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if s.fail != nil {
		cmd.SetErr(s.fail)
		return cmd
	}
	switch v := value.(type) {
	case []byte:
		s.data[key] = string(v)
	case string:
		s.data[key] = v
	}
	s.ttls[key] = expiration
	cmd.SetVal("OK")
	return cmd
}

func (s *stubCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	v, ok := s.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (s *stubCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	var n int64
	for _, k := range keys {
		if _, ok := s.data[k]; ok {
			delete(s.data, k)
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func TestRedisCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	stub := newStub()
	cache := NewRedisCache(stub)

	require.NoError(t, cache.Set(ctx, "joindots:snapshot:abc", []byte(`{"moveCount":1}`), time.Minute))
	assert.Equal(t, time.Minute, stub.ttls["joindots:snapshot:abc"])

	v, err := cache.Get(ctx, "joindots:snapshot:abc")
	require.NoError(t, err)
	assert.Equal(t, `{"moveCount":1}`, v)

	require.NoError(t, cache.Del(ctx, "joindots:snapshot:abc"))
	v, err = cache.Get(ctx, "joindots:snapshot:abc")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestRedisCacheSetError(t *testing.T) {
	stub := newStub()
	stub.fail = errors.New("connection reset")

	err := NewRedisCache(stub).Set(context.Background(), "k", "v", 0)
	assert.EqualError(t, err, "connection reset")
}

func TestInitRedisUnreachable(t *testing.T) {
	client := InitRedis(context.Background(), Options{Addr: "127.0.0.1:1"})
	assert.Nil(t, client)
}
