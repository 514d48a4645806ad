package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ThirdPartyAuthConfig 保存第三方平台的啟用狀態與憑證設定
// Config 的內容依平台而異，由 provider.Config 解析
type ThirdPartyAuthConfig struct {
	Base

	Name        string  `gorm:"type:varchar(50);not null;uniqueIndex:idx_third_party_auth_config_name,where:deleted_at IS NULL"`
	DisplayName string  `gorm:"type:varchar(100);not null"`
	IsEnabled   bool    `gorm:"not null;default:false"`
	Config      RawJSON `gorm:"type:jsonb;not null"`
}

// RawJSON 以字串寫入資料庫，讓 postgres 的 jsonb 與 sqlite 的 text 都能使用
type RawJSON json.RawMessage

func (j RawJSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return "{}", nil
	}
	if !json.Valid(j) {
		return nil, fmt.Errorf("invalid json value")
	}
	return string(j), nil
}

func (j *RawJSON) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*j = RawJSON("{}")
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = RawJSON(v)
	default:
		return fmt.Errorf("unsupported type %T for RawJSON", src)
	}
	return nil
}
