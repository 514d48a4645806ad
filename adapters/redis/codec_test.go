package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeMessage(t *testing.T) {
	tests := []struct {
		name    string
		data    any
		wantErr error
	}{
		{name: "struct", data: TestMessage{ID: "1", Data: "hello"}},
		{name: "slice", data: []string{"u1", "u2"}},
		{name: "pointer", data: &TestMessage{ID: "1"}, wantErr: ErrPointerType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := EncodeMessage(tt.data)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, values, payloadField)
			assert.Contains(t, values, publishedAtField)
		})
	}
}

func TestDecodeMessage(t *testing.T) {
	encoded, err := EncodeMessage(TestMessage{ID: "42", Data: "研發部"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		values  map[string]any
		want    TestMessage
		wantErr bool
	}{
		{name: "valid", values: encoded, want: TestMessage{ID: "42", Data: "研發部"}},
		{name: "missing payload", values: map[string]any{"other": "x"}, wantErr: true},
		{name: "payload wrong type", values: map[string]any{payloadField: 12}, wantErr: true},
		{name: "invalid base64", values: map[string]any{payloadField: "!!"}, wantErr: true},
		{name: "invalid msgpack", values: map[string]any{payloadField: "wQ=="}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeMessage[TestMessage](tt.values)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeMessage_PointerType(t *testing.T) {
	_, err := DecodeMessage[*TestMessage](map[string]any{})
	assert.ErrorIs(t, err, ErrPointerType)
}
