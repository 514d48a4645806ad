package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	redisAdapter "idbridge/adapters/redis"
)

// SourceResolver 依來源名稱取得可列舉通訊錄的平台
type SourceResolver func(ctx context.Context, source string) (ISource, error)

// Incremental 消費回調寫入的成員異動，逐筆套用到本地
type Incremental struct {
	store    IStore
	resolve  SourceResolver
	consumer redisAdapter.IGroupConsumer[UserChange]
	logger   *slog.Logger

	wg         sync.WaitGroup
	cancelFunc context.CancelFunc
}

func NewIncremental(
	store IStore,
	resolve SourceResolver,
	consumer redisAdapter.IGroupConsumer[UserChange],
	logger *slog.Logger,
) *Incremental {
	if logger == nil {
		logger = slog.Default()
	}
	return &Incremental{
		store:    store,
		resolve:  resolve,
		consumer: consumer,
		logger:   logger.With(slog.String("caller", "directory.Incremental")),
	}
}

func (inc *Incremental) Start(ctx context.Context) error {
	const op = "directory.Incremental.Start"

	if err := inc.consumer.Start(ctx); err != nil {
		return fmt.Errorf("[%s] Fail to start consumer, err=%w", op, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	inc.cancelFunc = cancel

	inc.logger.Info("Start incremental directory worker")
	inc.wg.Add(1)
	go func() {
		defer inc.wg.Done()
		defer inc.logger.Info("Incremental directory worker stopped")
		defer inc.consumer.Close()

		ch := inc.consumer.Subscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				inc.handle(ctx, msg)
			}
		}
	}()
	return nil
}

func (inc *Incremental) handle(ctx context.Context, msg *redisAdapter.Message[UserChange]) {
	if err := inc.Apply(ctx, msg.Data); err != nil {
		inc.logger.Error("Fail to apply user change",
			slog.String("source", msg.Data.Source),
			slog.String("eventType", msg.Data.EventType),
			slog.Any("error", err),
		)
		if err := msg.Fail(ctx, err); err != nil {
			inc.logger.Error("Fail to fail message", slog.Any("error", err))
		}
		return
	}
	if err := msg.Done(ctx); err != nil {
		inc.logger.Error("Apply success but fail to done message", slog.Any("error", err))
	}
}

func (inc *Incremental) Close() {
	if inc.cancelFunc != nil {
		inc.cancelFunc()
	}
	inc.wg.Wait()
}

// Apply 套用一筆異動。新增與修改會重新抓取成員並寫入，離職只停用本地帳號。
// 部分成員抓取失敗時，其餘成員仍會寫入，並回傳失敗原因。
func (inc *Incremental) Apply(ctx context.Context, change UserChange) error {
	const op = "directory.Incremental.Apply"

	if len(change.UserIDs) == 0 {
		return nil
	}

	switch change.EventType {
	case EventUserLeave:
		n, err := inc.store.DeactivateUsers(ctx, change.Source, change.UserIDs)
		if err != nil {
			return fmt.Errorf("[%s] Fail to deactivate users, err=%w", op, err)
		}
		inc.logger.Info("Users deactivated", slog.String("source", change.Source), slog.Int("count", n))
		return nil
	case EventUserAdd, EventUserModify:
	default:
		inc.logger.Debug("Ignore unsupported change", slog.String("eventType", change.EventType))
		return nil
	}

	src, err := inc.resolve(ctx, change.Source)
	if err != nil {
		return fmt.Errorf("[%s] Fail to resolve source %s, err=%w", op, change.Source, err)
	}
	token, err := src.CorpToken(ctx)
	if err != nil {
		return fmt.Errorf("[%s] %w, source=%s, err=%w", op, ErrCorpToken, change.Source, err)
	}

	var fetchErrs []error
	records := make([]UserRecord, 0, len(change.UserIDs))
	for _, userID := range change.UserIDs {
		record, err := src.GetUser(ctx, token, userID)
		if err != nil {
			fetchErrs = append(fetchErrs, fmt.Errorf("userID=%s: %w", userID, err))
			continue
		}
		names, err := inc.store.DepartmentNames(ctx, change.Source, record.DeptIDs)
		if err != nil {
			return fmt.Errorf("[%s] Fail to resolve departments, err=%w", op, err)
		}
		record.DeptNames = names
		records = append(records, *record)
	}

	if len(records) > 0 {
		n, err := inc.store.UpsertUsers(ctx, change.Source, records)
		if err != nil {
			return fmt.Errorf("[%s] Fail to upsert users, err=%w", op, err)
		}
		inc.logger.Info("Users synchronized", slog.String("source", change.Source), slog.Int("count", n))
	}

	if len(fetchErrs) > 0 {
		return fmt.Errorf("[%s] Fail to fetch users, err=%w", op, errors.Join(fetchErrs...))
	}
	return nil
}
