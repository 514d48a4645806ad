package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base 取代 gorm.Model，主鍵改為 uuid v7
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// BeforeCreate 在應用端產生 uuid v7，不依賴資料庫的 uuid_generate_v7 擴充
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID != uuid.Nil {
		return nil
	}
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

// All 回傳需要遷移的 model，給 AutoMigrate 與 atlas 使用
func All() []any {
	return []any{
		&ThirdPartyAuthConfig{},
		&Department{},
		&User{},
	}
}
