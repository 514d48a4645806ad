package callback

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"idbridge/adapters/dingcrypto"
	"idbridge/provider"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

const (
	testToken     = "callback-token"
	testClientID  = "ding-client-id"
	testTimestamp = "1700000000000"
	testNonce     = "abcdefgh"
)

var (
	testAESKey = strings.TrimRight(base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef")), "=")
	testConfig = &provider.Config{ClientID: testClientID, Token: testToken, AESKey: testAESKey}
	fixedNow   = time.Unix(1700000123, 0)
)

// sealed 產生與平台相同格式的回調請求
func sealed(t *testing.T, payload string) Inbound {
	t.Helper()

	msg, err := dingcrypto.Encrypt(testAESKey, testClientID, testTimestamp, testToken, []byte(payload))
	require.NoError(t, err)
	return signedInbound(t, msg.Encrypt)
}

func signedInbound(t *testing.T, encrypt string) Inbound {
	t.Helper()

	body, err := json.Marshal(map[string]string{"encrypt": encrypt})
	require.NoError(t, err)
	return Inbound{
		Signature: dingcrypto.Signature(testToken, testTimestamp, testNonce, encrypt),
		Timestamp: testTimestamp,
		Nonce:     testNonce,
		Body:      body,
	}
}

func foundConfig(ctrl *gomock.Controller) *MockIConfigLoader {
	loader := NewMockIConfigLoader(ctrl)
	loader.EXPECT().Load(gomock.Any(), DefaultProviderName).Return(testConfig, nil).AnyTimes()
	return loader
}

func TestDispatcher_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		inbound    func(t *testing.T) Inbound
		loaderErr  error
		wantStatus int
		wantReason string
		loads      bool
	}{
		{
			name:       "body not json",
			inbound:    func(t *testing.T) Inbound { return Inbound{Signature: "s", Timestamp: "t", Nonce: "n", Body: []byte("nope")} },
			wantStatus: http.StatusBadRequest,
			wantReason: ReasonMissingParameters,
		},
		{
			name: "missing nonce",
			inbound: func(t *testing.T) Inbound {
				in := sealed(t, `{"EventType":"check_url"}`)
				in.Nonce = ""
				return in
			},
			wantStatus: http.StatusBadRequest,
			wantReason: ReasonMissingParameters,
		},
		{
			name:       "missing encrypt",
			inbound:    func(t *testing.T) Inbound { return Inbound{Signature: "s", Timestamp: "t", Nonce: "n", Body: []byte(`{}`)} },
			wantStatus: http.StatusBadRequest,
			wantReason: ReasonMissingParameters,
		},
		{
			name:       "config missing",
			inbound:    func(t *testing.T) Inbound { return sealed(t, `{"EventType":"check_url"}`) },
			loaderErr:  ErrConfigNotFound,
			loads:      true,
			wantStatus: http.StatusInternalServerError,
			wantReason: ReasonConfigMissing,
		},
		{
			name:       "config storage failure",
			inbound:    func(t *testing.T) Inbound { return sealed(t, `{"EventType":"check_url"}`) },
			loaderErr:  errors.New("connection refused"),
			loads:      true,
			wantStatus: http.StatusInternalServerError,
			wantReason: ReasonConfigMissing,
		},
		{
			name: "signature mismatch",
			inbound: func(t *testing.T) Inbound {
				in := sealed(t, `{"EventType":"user_add_org","UserId":["u1"]}`)
				in.Signature = "deadbeef"
				return in
			},
			loads:      true,
			wantStatus: http.StatusForbidden,
			wantReason: ReasonSignatureMismatch,
		},
		{
			name:       "decrypt failure",
			inbound:    func(t *testing.T) Inbound { return signedInbound(t, "!!not-base64!!") },
			loads:      true,
			wantStatus: http.StatusBadRequest,
			wantReason: ReasonDecryptFailed,
		},
		{
			name:       "payload not json",
			inbound:    func(t *testing.T) Inbound { return sealed(t, `not json`) },
			loads:      true,
			wantStatus: http.StatusBadRequest,
			wantReason: ReasonMalformedPayload,
		},
		{
			name:       "payload json array",
			inbound:    func(t *testing.T) Inbound { return sealed(t, `["user_add_org"]`) },
			loads:      true,
			wantStatus: http.StatusBadRequest,
			wantReason: ReasonMalformedPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			loader := NewMockIConfigLoader(ctrl)
			if tt.loads {
				if tt.loaderErr != nil {
					loader.EXPECT().Load(gomock.Any(), DefaultProviderName).Return(nil, tt.loaderErr)
				} else {
					loader.EXPECT().Load(gomock.Any(), DefaultProviderName).Return(testConfig, nil)
				}
			}
			// 沒有設定 EXPECT，任何呼叫都會讓測試失敗
			user := NewMockIHandler(ctrl)
			system := NewMockIHandler(ctrl)
			metrics := NewMockIMetrics(ctrl)
			metrics.EXPECT().ObserveCallback(StateRejected, CategoryUnknown)

			d := NewDispatcher(loader,
				WithHandler(CategoryUser, user),
				WithHandler(CategorySystem, system),
				WithMetrics(metrics),
			)
			result := d.Dispatch(context.Background(), tt.inbound(t))

			assert.Equal(t, StateRejected, result.State)
			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Equal(t, tt.wantReason, result.Reason)
			assert.Nil(t, result.Body)
		})
	}
}

func TestDispatcher_Handled(t *testing.T) {
	tests := []struct {
		name         string
		payload      string
		wantCategory string
		handlerErr   error
	}{
		{name: "user event", payload: `{"EventType":"user_add_org","UserId":["u1","u2"],"CorpId":"ding1"}`, wantCategory: CategoryUser},
		{name: "check url", payload: `{"EventType":"check_url"}`, wantCategory: CategorySystem},
		{name: "unknown event", payload: `{"EventType":"something_new"}`, wantCategory: CategoryUnknown},
		{name: "handler failure still acked", payload: `{"EventType":"user_leave_org","UserId":["u1"]}`, wantCategory: CategoryUser, handlerErr: errors.New("queue down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			user := NewMockIHandler(ctrl)
			system := NewMockIHandler(ctrl)

			var want Event
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &want))
			switch tt.wantCategory {
			case CategoryUser:
				user.EXPECT().Handle(gomock.Any(), want).Return(tt.handlerErr)
			case CategorySystem:
				system.EXPECT().Handle(gomock.Any(), want).Return(tt.handlerErr)
			}

			metrics := NewMockIMetrics(ctrl)
			metrics.EXPECT().ObserveCallback(StateHandled, tt.wantCategory)

			d := NewDispatcher(foundConfig(ctrl),
				WithHandler(CategoryUser, user),
				WithHandler(CategorySystem, system),
				WithMetrics(metrics),
				WithClock(func() time.Time { return fixedNow }),
			)
			result := d.Dispatch(context.Background(), sealed(t, tt.payload))

			require.Equal(t, StateHandled, result.State)
			assert.Equal(t, http.StatusOK, result.Status)

			ack, ok := result.Body.(*dingcrypto.EncryptedMessage)
			require.True(t, ok)
			assert.Equal(t, "1700000123", ack.TimeStamp)
			assert.Len(t, ack.Nonce, 16)
			assert.True(t, dingcrypto.Verify(testToken, ack.TimeStamp, ack.Nonce, ack.Encrypt, ack.Signature))

			plain, err := dingcrypto.Decrypt(testAESKey, ack.Encrypt)
			require.NoError(t, err)
			assert.Equal(t, "success", string(plain))
		})
	}
}

func TestDispatcher_CustomProviderName(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := NewMockIConfigLoader(ctrl)
	loader.EXPECT().Load(gomock.Any(), "dingtalk-corp2").Return(testConfig, nil)

	d := NewDispatcher(loader, WithProviderName("dingtalk-corp2"))
	result := d.Dispatch(context.Background(), sealed(t, `{"EventType":"check_url"}`))
	assert.Equal(t, StateHandled, result.State)
}

func TestDispatcher_Acknowledge(t *testing.T) {
	d := NewDispatcher(ConfigLoaderFunc(func(ctx context.Context, name string) (*provider.Config, error) {
		return nil, ErrConfigNotFound
	}))

	tests := []struct {
		name  string
		codec dingcrypto.Codec
		plain bool
	}{
		{name: "no token", codec: dingcrypto.Codec{AESKey: testAESKey}, plain: true},
		{name: "no aes key", codec: dingcrypto.Codec{Token: testToken}, plain: true},
		{name: "encrypted", codec: dingcrypto.Codec{Token: testToken, AESKey: testAESKey, ReceiverKey: testClientID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack, err := d.acknowledge(tt.codec)
			require.NoError(t, err)
			if tt.plain {
				assert.Equal(t, map[string]any{"errcode": 0, "errmsg": "ok"}, ack)
				return
			}
			assert.IsType(t, &dingcrypto.EncryptedMessage{}, ack)
		})
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "verifying_signature", StateVerifyingSignature.String())
	assert.Equal(t, "rejected", StateRejected.String())
	assert.Equal(t, "state(42)", State(42).String())
}

func TestEvent(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantIDs []string
	}{
		{name: "list", raw: `{"EventType":"user_add_org","UserId":["u1","","u2"]}`, wantIDs: []string{"u1", "u2"}},
		{name: "single", raw: `{"EventType":"user_add_org","UserId":"u1"}`, wantIDs: []string{"u1"}},
		{name: "missing", raw: `{"EventType":"user_add_org"}`, wantIDs: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Event
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &e))
			assert.Equal(t, "user_add_org", e.Type())
			assert.Equal(t, tt.wantIDs, e.UserIDs())
		})
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, CategoryUser, Classify("user_modify_org"))
	assert.Equal(t, CategorySystem, Classify("check_url"))
	assert.Equal(t, CategoryUnknown, Classify("bpms_task_change"))
	assert.Equal(t, CategoryUnknown, Classify(""))
}
