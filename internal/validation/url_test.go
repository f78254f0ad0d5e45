package validation

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withAllowPrivate sets the private-URL switch for one test.
func withAllowPrivate(t *testing.T, enabled bool) {
	t.Helper()
	original := AllowPrivateEnabled()
	SetAllowPrivate(enabled)
	t.Cleanup(func() { SetAllowPrivate(original) })
}

func TestValidateBaseURL(t *testing.T) {
	withAllowPrivate(t, false)

	tests := []struct {
		url     string
		wantErr string
	}{
		{"https://api.fieldclimate.com/v1", ""},
		{"https://api.fieldclimate.com:8443/v2", ""},
		{"http://203.0.114.10/v1", ""},
		{"https://[2606:4700::1111]/v1", ""},
		{"", "cannot be empty"},
		{"ftp://api.fieldclimate.com", "only http and https are allowed"},
		{"file:///etc/passwd", "only http and https are allowed"},
		{"api.fieldclimate.com/v1", "only http and https are allowed"},
		{"https://", "must contain a hostname"},
		{"https://%zz", "invalid URL format"},
		{"http://localhost:8080", "localhost URLs are not allowed"},
		{"http://mock.localhost", "localhost URLs are not allowed"},
		{"http://127.0.0.1", "localhost URLs are not allowed"},
		{"http://[::1]", "localhost URLs are not allowed"},
		{"http://127.0.0.2", "loopback IP addresses are not allowed"},
		{"http://169.254.169.254/latest", "cloud metadata endpoints are not allowed"},
		{"http://metadata.google.internal", "cloud metadata endpoints are not allowed"},
		{"http://x.metadata.google.internal", "cloud metadata endpoints are not allowed"},
		{"http://169.254.10.1", "link-local IP addresses are not allowed"},
		{"http://10.1.2.3", "private IP addresses are not allowed"},
		{"http://172.20.0.1", "private IP addresses are not allowed"},
		{"http://192.168.1.10", "private IP addresses are not allowed"},
		{"http://100.64.0.1", "private IP addresses are not allowed"},
		{"http://[fd12::1]", "private IP addresses are not allowed"},
		{"http://[::ffff:10.0.0.1]", "private IP addresses are not allowed"},
		{"http://[ff02::1]", "link-local IP addresses are not allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := ValidateBaseURL(tt.url)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateBaseURLAllowPrivate(t *testing.T) {
	withAllowPrivate(t, true)

	for _, ok := range []string{"http://localhost:8080", "http://127.0.0.1:9000/v1", "http://10.0.0.5", "http://[fd12::1]"} {
		assert.NoError(t, ValidateBaseURL(ok), ok)
	}
	for _, blocked := range []string{"http://169.254.169.254", "http://metadata", "http://169.254.1.1", "http://0.0.0.0"} {
		assert.Error(t, ValidateBaseURL(blocked), blocked)
	}
}

func TestAllowPrivateSwitch(t *testing.T) {
	withAllowPrivate(t, false)
	assert.False(t, AllowPrivateEnabled())
	SetAllowPrivate(true)
	assert.True(t, AllowPrivateEnabled())
}

func TestCheckAddr(t *testing.T) {
	withAllowPrivate(t, false)

	assert.NoError(t, checkAddr(netip.MustParseAddr("1.1.1.1")))
	assert.NoError(t, checkAddr(netip.MustParseAddr("2606:4700::1111")))
	assert.ErrorContains(t, checkAddr(netip.MustParseAddr("::")), "unspecified")
	assert.ErrorContains(t, checkAddr(netip.MustParseAddr("fd00:ec2::254")), "cloud metadata")
	assert.ErrorContains(t, checkAddr(netip.MustParseAddr("240.0.0.1")), "private")
	assert.ErrorContains(t, checkAddr(netip.MustParseAddr("2001:db8::1")), "private")
}

func TestHostClassifiers(t *testing.T) {
	assert.True(t, isLocalhost("LOCALHOST"))
	assert.True(t, isLocalhost("api.localhost"))
	assert.False(t, isLocalhost("localhost.fieldclimate.com"))
	assert.True(t, isCloudMetadata("Instance-Data"))
	assert.False(t, isCloudMetadata("metadata.fieldclimate.com"))
}
