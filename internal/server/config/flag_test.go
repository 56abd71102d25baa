package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_parseFlags_OverridesDefaults(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin",
		"-a", ":9090",
		"-d", "postgres://example/filekeeper",
		"-s", "flag-secret",
		"-t", "30",
		"-r", "120",
		"-k", "fs",
		"-o", "10",
		"-f", "/var/blobs",
	}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, ":9090", cfg.EndpointAddrHTTP)
	assert.Equal(t, "postgres://example/filekeeper", cfg.DatabaseDSN)
	assert.Equal(t, "flag-secret", cfg.SecretKey)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 120*time.Minute, cfg.RefreshTokenValidityDuration)
	assert.Equal(t, "fs", cfg.BlobBackend)
	assert.Equal(t, 10*time.Second, cfg.BlobOpTimeout)
	assert.Equal(t, "/var/blobs", cfg.FSBasePath)
}

func Test_parseFlags_NoFlagsKeepsDefaults(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
	assert.Equal(t, BlobBackendS3, cfg.BlobBackend)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenValidityDuration)
}
