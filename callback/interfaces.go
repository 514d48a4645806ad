//go:generate mockgen -package=callback -destination=mock.go -source=interfaces.go

package callback

import (
	"context"

	"idbridge/provider"
)

// IConfigLoader 讀取已啟用的平台設定，不存在或停用時回傳 ErrConfigNotFound
type IConfigLoader interface {
	Load(ctx context.Context, name string) (*provider.Config, error)
}

// IHandler 處理一種分類的事件，回傳錯誤只會被記錄，仍會回覆確認
type IHandler interface {
	Handle(ctx context.Context, event Event) error
}

type IMetrics interface {
	ObserveCallback(state State, category string)
}
