// 第三方通訊錄 (部門樹與成員) 同步到本地
package directory

import (
	"errors"
)

var (
	ErrSyncInProgress = errors.New("sync already in progress")
	ErrCorpToken      = errors.New("failed to obtain corp access token")
)

// Department 是遠端平台回傳的部門
type Department struct {
	ExternalID string
	Name       string
	// ParentID 為 nil 代表上層是虛擬根部門
	ParentID *string
	Order    int
	Source   string
}

// UserRecord 是遠端平台回傳的成員資料
type UserRecord struct {
	UserID  string
	Name    string
	Mobile  string
	Email   string
	UnionID string
	Title   string
	Avatar  string
	// DeptIDs 與 DeptNames 依序對應，第一個是主要部門
	DeptIDs   []string
	DeptNames []string
}

// Key 是本地的比對鍵，優先使用 unionid
func (u UserRecord) Key() string {
	if u.UnionID != "" {
		return u.UnionID
	}
	return u.UserID
}

// PrimaryDepartment 回傳主要部門名稱
func (u UserRecord) PrimaryDepartment() string {
	if len(u.DeptNames) == 0 {
		return ""
	}
	return u.DeptNames[0]
}

// UserChange 是成員異動事件，由回調寫入佇列後再增量同步
type UserChange struct {
	Source    string   `msgpack:"source"`
	EventType string   `msgpack:"event_type"`
	UserIDs   []string `msgpack:"user_ids"`
	CorpID    string   `msgpack:"corp_id"`
}

const (
	EventUserAdd    = "user_add_org"
	EventUserModify = "user_modify_org"
	EventUserLeave  = "user_leave_org"
)
