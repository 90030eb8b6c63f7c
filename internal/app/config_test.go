package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		input   Config
		wantErr string
	}{
		{name: "missing assets path", input: Config{}, wantErr: "AssetsPath is a required"},
		{name: "bad log format", input: Config{AssetsPath: "a", LogFormat: "xml"}, wantErr: "unknown log format 'xml'"},
		{name: "bad log level", input: Config{AssetsPath: "a", LogLevel: "loud"}, wantErr: "unknown log level 'loud'"},
		{name: "negative depth", input: Config{AssetsPath: "a", MaxDepth: -1}, wantErr: "MaxDepth must not be negative"},
		{name: "negative cache", input: Config{AssetsPath: "a", CacheSize: -5}, wantErr: "CacheSize must not be negative"},
		{name: "port out of range", input: Config{AssetsPath: "a", StatusPort: 70000}, wantErr: "StatusPort 70000 is out of range"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.input)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}

	t.Run("defaults", func(t *testing.T) {
		cfg, err := NewConfig(Config{AssetsPath: "assets"})
		require.NoError(t, err)
		assert.Equal(t, DefaultRootKind, cfg.RootKind)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Equal(t, "info", cfg.LogLevel)
	})
}
