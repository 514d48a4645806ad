// 第三方平台設定的讀取，結果在記憶體中短暫快取
package authconfig

import (
	"context"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"idbridge/models"
	"idbridge/provider"
)

const (
	DefaultTTL = 30 * time.Second

	enabledKey = "\x00enabled"
)

var (
	ErrNotFound = errors.New("provider config not found or disabled")
)

type Store struct {
	db    *gorm.DB
	cache *gocache.Cache
}

// NewStore ttl 為 0 時使用 DefaultTTL
func NewStore(db *gorm.DB, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		db:    db,
		cache: gocache.New(ttl, time.Minute),
	}
}

// Get 回傳已啟用的設定
func (s *Store) Get(ctx context.Context, name string) (*models.ThirdPartyAuthConfig, error) {
	const op = "authconfig.Store.Get"

	if v, ok := s.cache.Get(name); ok {
		record := v.(models.ThirdPartyAuthConfig)
		return &record, nil
	}

	var record models.ThirdPartyAuthConfig
	err := s.db.WithContext(ctx).
		Where("name = ? AND is_enabled = ?", name, true).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("[%s] %w: %s", op, ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to query config %s, err=%w", op, name, err)
	}

	s.cache.SetDefault(name, record)
	return &record, nil
}

// Load 回傳解析後的憑證，供回調分派器使用
func (s *Store) Load(ctx context.Context, name string) (*provider.Config, error) {
	record, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	cfg, err := provider.ParseConfig(record.Config)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Enabled 依名稱排序回傳所有已啟用的設定
func (s *Store) Enabled(ctx context.Context) ([]models.ThirdPartyAuthConfig, error) {
	const op = "authconfig.Store.Enabled"

	if v, ok := s.cache.Get(enabledKey); ok {
		return v.([]models.ThirdPartyAuthConfig), nil
	}

	var records []models.ThirdPartyAuthConfig
	if err := s.db.WithContext(ctx).
		Where("is_enabled = ?", true).
		Order("name").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("[%s] Fail to list configs, err=%w", op, err)
	}

	s.cache.SetDefault(enabledKey, records)
	return records, nil
}

// Invalidate 清除快取，設定異動後呼叫
func (s *Store) Invalidate() {
	s.cache.Flush()
}
