//go:generate mockgen -package=provider -destination=mock.go -source=interfaces.go

package provider

import (
	"context"
)

type IProvider interface {
	Name() string
	DisplayName() string
	AuthURL(ctx context.Context) (string, error)
	// UserInfo 以授權碼換取使用者資訊，缺少外部 ID 時回傳 ErrIncompleteIdentity
	UserInfo(ctx context.Context, code string) (*Identity, error)
	// SyncUsers 全量同步通訊錄，不支援時回傳 ErrSyncUnsupported
	SyncUsers(ctx context.Context) (int, error)
	ValidateConfig() bool
}

// IQRCodeProvider 是支援掃碼登入的平台
type IQRCodeProvider interface {
	QRCodeURL(ctx context.Context) (string, error)
}
