package main

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idbridge/api"
)

func writeKey(t *testing.T, key any) string {
	t.Helper()

	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "key.pem")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), 0o600))
	return path
}

func TestLoadPrivateKey(t *testing.T) {
	_, edKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	notPEM := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(notPEM, []byte("hello"), 0o600))

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "ed25519", path: writeKey(t, edKey)},
		{name: "ecdsa rejected", path: writeKey(t, ecKey), wantErr: true},
		{name: "not pem", path: notPEM, wantErr: true},
		{name: "missing file", path: filepath.Join(t.TempDir(), "nope.pem"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := loadPrivateKey(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, edKey.Public(), key.Public())
		})
	}
}

func TestArgs_Validate(t *testing.T) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	valid := Args{
		ServerURL: "0.0.0.0:8080",
		ServerConfig: api.ServerConfig{
			Auth:  api.AuthConfig{PrivateKey: key, Issuer: "idbridge", Audience: "idbridge", ExpireDuration: time.Hour},
			DB:    api.DBConfig{Host: "localhost", Database: "idbridge", Schema: "idbridge"},
			Redis: api.RedisConfig{Addr: "localhost:6379", ConsumerGroup: "idbridge", StreamKeys: api.RedisStreamKeys{UserChange: "changes"}},
		},
	}
	assert.True(t, valid.Validate())

	noKey := valid
	noKey.ServerConfig.Auth.PrivateKey = nil
	assert.False(t, noKey.Validate())

	for _, schema := range []string{"", "public;drop", "1abc", "a.b", "has space"} {
		bad := valid
		bad.ServerConfig.DB.Schema = schema
		assert.False(t, bad.Validate(), "schema %q", schema)
	}
	for _, schema := range []string{"public", "_idbridge", "tenant_01"} {
		good := valid
		good.ServerConfig.DB.Schema = schema
		assert.True(t, good.Validate(), "schema %q", schema)
	}

	noRedis := valid
	noRedis.ServerConfig.Redis.Addr = ""
	assert.False(t, noRedis.Validate())
}

func TestArgs_SlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, Args{LogLevel: "debug"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, Args{LogLevel: "WARN"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, Args{LogLevel: "loud"}.SlogLevel())
}
