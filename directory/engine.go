package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	redisAdapter "idbridge/adapters/redis"
)

const (
	DefaultBatchSize = 50
	DefaultWorkers   = 4
)

type engineOptions struct {
	batchSize int
	maxDepth  int
	workers   int
	locker    func(source string) redisAdapter.IAutoRenewMutex
	metrics   IMetrics
	logger    *slog.Logger
}

type EngineOption func(*engineOptions)

func WithBatchSize(n int) EngineOption {
	return func(o *engineOptions) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

func WithMaxDepth(n int) EngineOption {
	return func(o *engineOptions) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}

func WithWorkers(n int) EngineOption {
	return func(o *engineOptions) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithLocker 讓同一個來源的同步互斥
func WithLocker(locker func(source string) redisAdapter.IAutoRenewMutex) EngineOption {
	return func(o *engineOptions) {
		o.locker = locker
	}
}

func WithMetrics(m IMetrics) EngineOption {
	return func(o *engineOptions) {
		o.metrics = m
	}
}

func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// Engine 執行全量通訊錄同步
type Engine struct {
	store   IStore
	walker  *Walker
	options engineOptions
	logger  *slog.Logger
}

var _ ISyncer = (*Engine)(nil)

func NewEngine(store IStore, opts ...EngineOption) *Engine {
	options := engineOptions{
		batchSize: DefaultBatchSize,
		maxDepth:  DefaultMaxDepth,
		workers:   DefaultWorkers,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &Engine{
		store:   store,
		walker:  NewWalker(options.maxDepth, options.logger),
		options: options,
		logger:  options.logger.With(slog.String("caller", "directory.Engine")),
	}
}

// Sync 回傳成功寫入的成員數。
// 只有取得企業 token 失敗或同步已在進行中會回傳錯誤，其餘部分失敗只記錄並反映在數量上。
func (e *Engine) Sync(ctx context.Context, src ISource) (count int, err error) {
	const op = "directory.Engine.Sync"

	source := src.Name()
	start := time.Now()
	if e.options.metrics != nil {
		defer func() {
			e.options.metrics.ObserveSync(source, count, time.Since(start), err)
		}()
	}

	if e.options.locker != nil {
		mutex := e.options.locker(source)
		lockCtx, lockErr := mutex.TryLock(ctx)
		if lockErr != nil {
			if errors.Is(lockErr, redisAdapter.ErrLockTaken) {
				return 0, fmt.Errorf("[%s] %w, source=%s", op, ErrSyncInProgress, source)
			}
			return 0, fmt.Errorf("[%s] Fail to acquire sync lock, source=%s, err=%w", op, source, lockErr)
		}
		defer func() {
			if _, unlockErr := mutex.Unlock(); unlockErr != nil {
				e.logger.Warn("Fail to release sync lock", slog.String("source", source), slog.Any("error", unlockErr))
			}
		}()
		ctx = lockCtx
	}

	token, err := src.CorpToken(ctx)
	if err != nil {
		return 0, fmt.Errorf("[%s] %w, source=%s, err=%w", op, ErrCorpToken, source, err)
	}

	depts, err := e.walker.Walk(ctx, src, token)
	if err != nil {
		return 0, fmt.Errorf("[%s] Fail to walk departments, source=%s, err=%w", op, source, err)
	}
	e.logger.Info("Departments discovered", slog.String("source", source), slog.Int("count", len(depts)))

	if _, err := e.store.UpsertDepartments(ctx, source, depts); err != nil {
		e.logger.Error("Fail to upsert departments", slog.String("source", source), slog.Any("error", err))
	}

	root := src.Root()
	users, err := e.collectUsers(ctx, src, token, append([]Department{root}, depts...))
	if err != nil {
		return 0, fmt.Errorf("[%s] Fail to collect users, source=%s, err=%w", op, source, err)
	}

	for i, batch := range lo.Chunk(users, e.options.batchSize) {
		n, err := e.store.UpsertUsers(ctx, source, batch)
		if err != nil {
			e.logger.Error("Fail to upsert user batch",
				slog.String("source", source),
				slog.Int("batch", i),
				slog.Int("size", len(batch)),
				slog.Any("error", err),
			)
			continue
		}
		count += n
	}

	e.logger.Info("Directory synchronized",
		slog.String("source", source),
		slog.Int("users", len(users)),
		slog.Int("synced", count),
		slog.Duration("elapsed", time.Since(start)),
	)
	return count, nil
}

// collectUsers 併發列出各部門成員，再依走訪順序合併，同一成員的第一個部門為主要部門
func (e *Engine) collectUsers(ctx context.Context, src ISource, token string, depts []Department) ([]UserRecord, error) {
	source := src.Name()
	members := make([][]UserRecord, len(depts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.options.workers)
	for i, dept := range depts {
		g.Go(func() error {
			records, err := src.ListDepartmentUsers(gctx, token, dept.ExternalID)
			if err != nil {
				e.logger.Error("Fail to list department users",
					slog.String("source", source),
					slog.String("departmentID", dept.ExternalID),
					slog.Any("error", err),
				)
				return nil
			}
			members[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return mergeUsers(depts, members), nil
}

func mergeUsers(depts []Department, members [][]UserRecord) []UserRecord {
	merged := make([]UserRecord, 0)
	index := make(map[string]int)

	for i, dept := range depts {
		for _, record := range members[i] {
			// 沒有 userid 的成員無法合併，交給儲存層記錄為單筆失敗
			if record.UserID == "" {
				merged = append(merged, record)
				continue
			}

			pos, ok := index[record.UserID]
			if !ok {
				record.DeptIDs = nil
				record.DeptNames = nil
				merged = append(merged, record)
				pos = len(merged) - 1
				index[record.UserID] = pos
			}

			user := &merged[pos]
			if lo.Contains(user.DeptIDs, dept.ExternalID) {
				continue
			}
			user.DeptIDs = append(user.DeptIDs, dept.ExternalID)
			user.DeptNames = append(user.DeptNames, dept.Name)
		}
	}

	return merged
}
