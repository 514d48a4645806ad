package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestTokenCache_Get(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock redismock.ClientMock)
		want    string
		wantOK  bool
		wantErr bool
	}{
		{
			name: "hit",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet("test:dingtalk").SetVal("access-token")
			},
			want:   "access-token",
			wantOK: true,
		},
		{
			name: "miss",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet("test:dingtalk").RedisNil()
			},
		},
		{
			name: "redis error",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet("test:dingtalk").SetErr(errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mock, cleanup := setupTest(t)
			defer cleanup()
			tt.setup(mock)

			cache := NewTokenCache(client, WithTokenCachePrefix("test:"))
			got, ok, err := cache.Get(context.Background(), "dingtalk")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenCache_Set(t *testing.T) {
	tests := []struct {
		name    string
		ttl     time.Duration
		setup   func(mock redismock.ClientMock)
		wantErr bool
	}{
		{
			name: "ttl reduced by skew",
			ttl:  7200 * time.Second,
			setup: func(mock redismock.ClientMock) {
				mock.ExpectSet("test:wecom", "access-token", 7200*time.Second-time.Minute).SetVal("OK")
			},
		},
		{
			name:  "too short to cache",
			ttl:   30 * time.Second,
			setup: func(mock redismock.ClientMock) {},
		},
		{
			name: "redis error",
			ttl:  time.Hour,
			setup: func(mock redismock.ClientMock) {
				mock.ExpectSet("test:wecom", "access-token", time.Hour-time.Minute).SetErr(errors.New("readonly"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mock, cleanup := setupTest(t)
			defer cleanup()
			tt.setup(mock)

			cache := NewTokenCache(client, WithTokenCachePrefix("test:"), WithTokenCacheSkew(time.Minute))
			err := cache.Set(context.Background(), "wecom", "access-token", tt.ttl)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTokenCache_Delete(t *testing.T) {
	client, mock, cleanup := setupTest(t)
	defer cleanup()

	mock.ExpectDel("idbridge:token:dingtalk").SetVal(1)

	cache := NewTokenCache(client)
	assert.NoError(t, cache.Delete(context.Background(), "dingtalk"))
}
