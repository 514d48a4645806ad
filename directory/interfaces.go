//go:generate mockgen -package=directory -destination=mock.go -source=interfaces.go

package directory

import (
	"context"
	"time"
)

// ISource 是可以列舉通訊錄的第三方平台
type ISource interface {
	Name() string
	// Root 回傳虛擬根部門，它本身不會寫入本地
	Root() Department
	CorpToken(ctx context.Context) (string, error)
	ListSubDepartments(ctx context.Context, token, parentID string) ([]Department, error)
	// ListDepartmentUsers 會自行處理分頁，回傳部門的全部成員
	ListDepartmentUsers(ctx context.Context, token, deptID string) ([]UserRecord, error)
	GetUser(ctx context.Context, token, userID string) (*UserRecord, error)
}

// IStore 是本地儲存的寫入介面
type IStore interface {
	UpsertDepartments(ctx context.Context, source string, depts []Department) (int, error)
	// UpsertUsers 在單一交易中寫入一批成員，單筆失敗只會跳過該成員
	UpsertUsers(ctx context.Context, source string, users []UserRecord) (int, error)
	DepartmentNames(ctx context.Context, source string, externalIDs []string) ([]string, error)
	DeactivateUsers(ctx context.Context, source string, userIDs []string) (int, error)
}

// ISyncer 是同步引擎對外的介面，供 provider 呼叫
type ISyncer interface {
	Sync(ctx context.Context, src ISource) (int, error)
}

// IMetrics 記錄每次全量同步的結果
type IMetrics interface {
	ObserveSync(source string, synced int, duration time.Duration, err error)
}
