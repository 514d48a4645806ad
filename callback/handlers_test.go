package callback

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	redisAdapter "idbridge/adapters/redis"
	"idbridge/directory"
)

func TestUserHandler_Handle(t *testing.T) {
	tests := []struct {
		name       string
		event      Event
		want       *directory.UserChange
		publishErr error
		wantErr    bool
	}{
		{
			name:  "publish change",
			event: Event{"EventType": "user_add_org", "UserId": []any{"u1", "u2"}, "CorpId": "ding1"},
			want: &directory.UserChange{
				Source: "dingtalk", EventType: "user_add_org", UserIDs: []string{"u1", "u2"}, CorpID: "ding1",
			},
		},
		{
			name:  "leave",
			event: Event{"EventType": "user_leave_org", "UserId": []any{"u3"}},
			want:  &directory.UserChange{Source: "dingtalk", EventType: "user_leave_org", UserIDs: []string{"u3"}},
		},
		{
			name:  "no users",
			event: Event{"EventType": "user_modify_org"},
		},
		{
			name:       "publish failure",
			event:      Event{"EventType": "user_modify_org", "UserId": []any{"u1"}},
			want:       &directory.UserChange{Source: "dingtalk", EventType: "user_modify_org", UserIDs: []string{"u1"}},
			publishErr: errors.New("buffer closed"),
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			producer := redisAdapter.NewMockIProducer[directory.UserChange](ctrl)
			if tt.want != nil {
				producer.EXPECT().Publish(gomock.Any(), *tt.want).Return(tt.publishErr)
			}

			h := NewUserHandler("dingtalk", producer, slog.Default())
			err := h.Handle(context.Background(), tt.event)
			if tt.wantErr {
				assert.ErrorIs(t, err, tt.publishErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSystemHandler_Handle(t *testing.T) {
	h := NewSystemHandler(slog.Default())
	assert.NoError(t, h.Handle(context.Background(), Event{"EventType": "check_url"}))
	assert.NoError(t, h.Handle(context.Background(), Event{"EventType": "org_suite_auth"}))
}
