package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/alama/core"
)

func TestMigrationsFS(t *testing.T) {
	files, err := fs.Glob(MigrationsFS, MigrationsDir+"/*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"migrations/00001_create_users.sql",
		"migrations/00002_create_student.sql",
		"migrations/00003_create_prediction_history.sql",
	}, files)

	for _, f := range files {
		data, err := fs.ReadFile(MigrationsFS, f)
		require.NoError(t, err)
		assert.Contains(t, string(data), "-- +goose Up", f)
		assert.Contains(t, string(data), "-- +goose Down", f)
	}
}

func Test_open(t *testing.T) {
	conf := core.NewTestConfig()
	conf.Database = core.DatabaseConfig{
		Engine:        "postgres",
		Host:          "db.local",
		Port:          "5433",
		Name:          "alama",
		User:          "alama",
		Password:      "p@ss",
		AdminUser:     "postgres",
		AdminPassword: "root",
	}

	tests := []struct {
		name       string
		admin      bool
		disableTLS bool
		wantUser   string
		wantSSL    string
	}{
		{name: "app user", wantUser: "alama:p%40ss@", wantSSL: "sslmode=require"},
		{name: "admin user", admin: true, wantUser: "postgres:root@", wantSSL: "sslmode=require"},
		{name: "TLS disabled", disableTLS: true, wantUser: "alama:p%40ss@", wantSSL: "sslmode=disable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf.Database.DisableTLS = tt.disableTLS

			dsn, err := dataSourceName("alama", tt.admin, conf)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(dsn, "postgres://"+tt.wantUser+"db.local:5433/alama?"), dsn)
			assert.Contains(t, dsn, tt.wantSSL)
			assert.Contains(t, dsn, "timezone=utc")
		})
	}
}
