package adapter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig(nil)
	require.NoError(t, err)
	require.Equal(t, 0, cfg.BatchSize)
	require.Equal(t, "DB", cfg.DBName)
}

func TestParseConfig_Values(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig(map[string]string{
		PropertyBatchSize: " 16 ",
		PropertyDBName:    "bench",
		// Connection properties are someone else's business; ignored here.
		"clusterfile": "/etc/cluster",
	})
	require.NoError(t, err)
	require.Equal(t, 16, cfg.BatchSize)
	require.Equal(t, "bench", cfg.DBName)
}

func TestParseConfig_MalformedBatchSize(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"abc", "1.5", "-3", ""} {
		_, err := ParseConfig(map[string]string{PropertyBatchSize: v})
		require.ErrorIs(t, err, ErrInvalidConfig, "batchsize %q", v)
	}
}

func TestNewFactory_ConfigFaultAbortsInit(t *testing.T) {
	t.Parallel()

	_, err := NewFactory(nil, map[string]string{PropertyBatchSize: "not-a-number"})
	require.ErrorIs(t, err, ErrInvalidConfig)
}
