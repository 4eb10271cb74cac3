package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-o", ":6000", "-d", "db", "-s", "secret",
			"-t", "60", "-r", "redis:6379", "-u", "user", "-p", "password", "-b", "bucket",
			"-g", "us-west-1", "-e", "http://endpoint", "-w", "http://cdn", "-x", "3",
			"-m", "1024", "-l", "debug",
		},
			expected: &Config{
				EndpointAddrHTTP:        "127.0.0.1:9090",
				EndpointAddrGRPC:        ":6000",
				DatabaseDSN:             "db",
				SecretKey:               "secret",
				SessionValidityDuration: time.Hour,
				RedisAddr:               "redis:6379",
				S3RootUser:              "user",
				S3RootPassword:          "password",
				S3Bucket:                "bucket",
				S3Region:                "us-west-1",
				S3BaseEndpoint:          "http://endpoint",
				S3PublicURL:             "http://cdn",
				StorageTimeout:          3 * time.Second,
				MaxImageSize:            1024,
				LogLevel:                "debug",
			}},
		{name: "foreign flags ignored", args: []string{"cmd", "-c", "cfg.json", "-a", ":1"},
			expected: &Config{EndpointAddrHTTP: ":1"}},
		{name: "bad number panics", args: []string{"cmd", "-t", "week"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
