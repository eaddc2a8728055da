package appconfig_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JailtonJunior94/devkit-go/pkg/appconfig"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFallsBackToDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := appconfig.Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, appconfig.DefaultConfig().ServiceName, cfg.ServiceName)
}

func TestLoadReadsJSONFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"service_name":"custom","group_id":"g1","bootstrap_servers":["broker:9092"],"shutdown_timeout":5000000000}`), 0o600))

	cfg, err := appconfig.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "custom", cfg.ServiceName)
	assert.Equal(t, []string{"broker:9092"}, cfg.BootstrapServers)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
}

func TestLoadAppliesOptionsAfterFile(t *testing.T) {
	cfg, err := appconfig.Load("", appconfig.WithServiceName("overridden"), appconfig.WithTopics("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, "overridden", cfg.ServiceName)
	assert.Equal(t, []string{"a", "b"}, cfg.Topics)
}

func TestLoadRejectsInvalidTimezone(t *testing.T) {
	_, err := appconfig.Load("", appconfig.WithTimezone("Not/A_Zone"))
	assert.Error(t, err)
}

func TestValidateRejectsEmptyBootstrapServers(t *testing.T) {
	cfg := appconfig.DefaultConfig()
	cfg.BootstrapServers = nil
	assert.Error(t, cfg.Validate())
}
