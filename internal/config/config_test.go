package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/gst-autofill/internal/converter"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(NewViper())
	require.NoError(t, err)

	assert.Equal(t, "./output", cfg.OutputDir)
	assert.Equal(t, "", cfg.RunDirFormat)
	assert.True(t, cfg.WriteSummary)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, converter.PolicyZero, cfg.Policy())
	assert.Equal(t, 1, cfg.Books.HeaderRow)
	assert.Equal(t, 4, cfg.GST.HeaderRow)
	assert.Equal(t, ",", cfg.CSV.Delimiter)
	assert.Equal(t, "utf-8", cfg.CSV.Encoding)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, int64(32<<20), cfg.MaxUploadBytes())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autofill.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
output_dir: /tmp/templates
numeric_policy: missing
gst:
  header_row: 2
csv:
  delimiter: ";"
  encoding: windows-1252
`), 0o644))

	t.Setenv("AUTOFILL_BOOKS_HEADER_ROW", "3")
	t.Setenv("AUTOFILL_LOG_FORMAT", "json")

	v := NewViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/templates", cfg.OutputDir)
	assert.Equal(t, converter.PolicyMissing, cfg.Policy())
	assert.Equal(t, 2, cfg.GST.HeaderRow)
	assert.Equal(t, 3, cfg.Books.HeaderRow)
	assert.Equal(t, "json", cfg.LogFormat)

	opts := cfg.WorkbookOptions()
	assert.Equal(t, ";", opts.Delimiter)
	assert.Equal(t, "windows-1252", opts.Encoding)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"policy", "numeric_policy", "nan"},
		{"log level", "log_level", "loud"},
		{"log format", "log_format", "xml"},
		{"books header row", "books.header_row", -1},
		{"gst header row", "gst.header_row", -4},
		{"upload limit", "server.max_upload_mb", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewViper()
			v.Set(tt.key, tt.val)
			_, err := Load(v)
			assert.Error(t, err)
		})
	}
}
