package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Do(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		req     func(base string) Request
		want    map[string]any
		wantErr bool
	}{
		{
			name: "get with params",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/gettoken", r.URL.Path)
				assert.Equal(t, "key", r.URL.Query().Get("appkey"))
				assert.Equal(t, "a b", r.URL.Query().Get("appsecret"))
				_, _ = io.WriteString(w, `{"errcode":0,"access_token":"tok","expires_in":7200}`)
			},
			req: func(base string) Request {
				return Request{URL: base + "/gettoken", Params: map[string]string{"appkey": "key", "appsecret": "a b"}}
			},
			want: map[string]any{"errcode": float64(0), "access_token": "tok", "expires_in": float64(7200)},
		},
		{
			name: "post json with headers",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.Equal(t, "v", r.Header.Get("x-acs-dingtalk-access-token"))
				var body map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, float64(1), body["dept_id"])
				_, _ = io.WriteString(w, `{"result":[]}`)
			},
			req: func(base string) Request {
				return Request{
					Method:  http.MethodPost,
					URL:     base + "/listsub",
					JSON:    map[string]any{"dept_id": 1},
					Headers: map[string]string{"x-acs-dingtalk-access-token": "v"},
				}
			},
			want: map[string]any{"result": []any{}},
		},
		{
			name: "non 2xx",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = io.WriteString(w, `{}`)
			},
			req:     func(base string) Request { return Request{URL: base} },
			wantErr: true,
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `<html>`)
			},
			req:     func(base string) Request { return Request{URL: base} },
			wantErr: true,
		},
		{
			name: "json array is not an object",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `[1,2]`)
			},
			req:     func(base string) Request { return Request{URL: base} },
			wantErr: true,
		},
		{
			name: "platform errcode",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"errcode":40014,"errmsg":"invalid access_token"}`)
			},
			req:     func(base string) Request { return Request{URL: base} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			got, err := NewClient().Do(context.Background(), tt.req(srv.URL))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrTransport)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"errcode":60011,"errmsg":"no privilege"}`)
	}))
	defer srv.Close()

	err := NewClient().DoJSON(context.Background(), Request{URL: srv.URL}, nil)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.EqualValues(t, 60011, apiErr.Code)
	assert.Equal(t, "no privilege", apiErr.Message)
}

func TestClient_DoJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"errcode":0,"userid":"u1","name":"張三"}`)
	}))
	defer srv.Close()

	var out struct {
		UserID string `json:"userid"`
		Name   string `json:"name"`
	}
	require.NoError(t, NewClient().DoJSON(context.Background(), Request{URL: srv.URL}, &out))
	assert.Equal(t, "u1", out.UserID)
	assert.Equal(t, "張三", out.Name)
}

func TestClient_Timeout(t *testing.T) {
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()
	defer close(done)

	_, err := NewClient(WithTimeout(50*time.Millisecond)).Do(context.Background(), Request{URL: srv.URL})
	assert.ErrorIs(t, err, ErrTransport)
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient().Do(ctx, Request{URL: srv.URL})
	assert.ErrorIs(t, err, ErrTransport)
}
