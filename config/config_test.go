package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadS3DefaultsToZeroValues(t *testing.T) {
	c := LoadS3()
	if c.SocketTimeout != 0 || c.ConnectTimeout != 0 || c.MaxErrorRetry != 0 || c.MaxHTTPConnections != 0 {
		t.Errorf("expected all-zero defaults, got %+v", c)
	}
}

func TestLoadS3ReadsEnv(t *testing.T) {
	t.Setenv(envSocketTimeout, "5s")
	t.Setenv(envMaxErrorRetry, "7")

	c := LoadS3()
	if c.SocketTimeout != 5*time.Second {
		t.Errorf("SocketTimeout = %v, want 5s", c.SocketTimeout)
	}
	if c.MaxErrorRetry != 7 {
		t.Errorf("MaxErrorRetry = %d, want 7", c.MaxErrorRetry)
	}
}

func TestOptionsOverrideEnv(t *testing.T) {
	t.Setenv(envMaxErrorRetry, "7")

	c := LoadS3(WithMaxErrorRetry(3), WithConnectTimeout(2*time.Second))
	if c.MaxErrorRetry != 3 {
		t.Errorf("MaxErrorRetry = %d, want 3 (option should win over env)", c.MaxErrorRetry)
	}
	if c.ConnectTimeout != 2*time.Second {
		t.Errorf("ConnectTimeout = %v, want 2s", c.ConnectTimeout)
	}
}

func TestLoadS3IgnoresMalformedEnv(t *testing.T) {
	t.Setenv(envMaxErrorRetry, "not-a-number")
	os.Unsetenv(envSocketTimeout)

	c := LoadS3()
	if c.MaxErrorRetry != 0 {
		t.Errorf("MaxErrorRetry = %d, want 0 for malformed env", c.MaxErrorRetry)
	}
}
