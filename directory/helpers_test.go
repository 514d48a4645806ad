package directory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"idbridge/models"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

var errFakeRemote = errors.New("remote failure")

// fakeSource 以記憶體中的部門樹模擬遠端平台
type fakeSource struct {
	name     string
	root     Department
	children map[string][]Department
	members  map[string][]UserRecord
	users    map[string]UserRecord
	token    string
	tokenErr error
	failSubs map[string]bool
	failList map[string]bool

	mu         sync.Mutex
	listedSubs []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		name:     "dingtalk",
		root:     Department{ExternalID: "1", Name: "公司"},
		children: map[string][]Department{},
		members:  map[string][]UserRecord{},
		users:    map[string]UserRecord{},
		token:    "corp-token",
		failSubs: map[string]bool{},
		failList: map[string]bool{},
	}
}

func (f *fakeSource) Name() string     { return f.name }
func (f *fakeSource) Root() Department { return f.root }

func (f *fakeSource) CorpToken(ctx context.Context) (string, error) {
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return f.token, nil
}

func (f *fakeSource) ListSubDepartments(ctx context.Context, token, parentID string) ([]Department, error) {
	f.mu.Lock()
	f.listedSubs = append(f.listedSubs, parentID)
	f.mu.Unlock()
	if f.failSubs[parentID] {
		return nil, errFakeRemote
	}
	return f.children[parentID], nil
}

func (f *fakeSource) ListDepartmentUsers(ctx context.Context, token, deptID string) ([]UserRecord, error) {
	if f.failList[deptID] {
		return nil, errFakeRemote
	}
	return f.members[deptID], nil
}

func (f *fakeSource) GetUser(ctx context.Context, token, userID string) (*UserRecord, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, errFakeRemote
	}
	return &user, nil
}

// treeSource 建立 root→{A,B}、A→{C} 的部門樹
func treeSource() *fakeSource {
	src := newFakeSource()
	src.children["1"] = []Department{
		{ExternalID: "2", Name: "A", Order: 1},
		{ExternalID: "3", Name: "B", Order: 2},
	}
	src.children["2"] = []Department{
		{ExternalID: "4", Name: "C", Order: 1},
	}
	return src
}
