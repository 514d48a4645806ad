package callback

import (
	"context"
	"fmt"
	"log/slog"

	redisAdapter "idbridge/adapters/redis"
	"idbridge/directory"
)

// SystemHandler 處理平台的系統事件，目前只需要回覆確認
type SystemHandler struct {
	logger *slog.Logger
}

func NewSystemHandler(logger *slog.Logger) *SystemHandler {
	return &SystemHandler{logger: logger.With(slog.String("caller", "callback.SystemHandler"))}
}

func (h *SystemHandler) Handle(ctx context.Context, event Event) error {
	if event.Type() == EventCheckURL {
		h.logger.Info("Callback url verified")
		return nil
	}
	h.logger.Warn("Unknown system event", slog.String("event_type", event.Type()))
	return nil
}

// UserHandler 把成員異動寫入佇列，由 directory.Incremental 非同步套用
type UserHandler struct {
	source   string
	producer redisAdapter.IProducer[directory.UserChange]
	logger   *slog.Logger
}

func NewUserHandler(source string, producer redisAdapter.IProducer[directory.UserChange], logger *slog.Logger) *UserHandler {
	return &UserHandler{
		source:   source,
		producer: producer,
		logger:   logger.With(slog.String("caller", "callback.UserHandler")),
	}
}

// Handle 寫入佇列失敗時回傳錯誤，分派器仍會回覆確認，遺漏的異動由定期全量同步補上
func (h *UserHandler) Handle(ctx context.Context, event Event) error {
	const op = "callback.UserHandler.Handle"

	change := directory.UserChange{
		Source:    h.source,
		EventType: event.Type(),
		UserIDs:   event.UserIDs(),
		CorpID:    event.CorpID(),
	}
	h.logger.Info("Received user change",
		slog.String("event_type", change.EventType),
		slog.Int("users", len(change.UserIDs)),
	)
	if len(change.UserIDs) == 0 {
		return nil
	}

	if err := h.producer.Publish(ctx, change); err != nil {
		return fmt.Errorf("[%s] Fail to publish user change, event=%s, err=%w", op, change.EventType, err)
	}
	return nil
}
