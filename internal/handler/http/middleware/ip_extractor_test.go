package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteAddrExtractor(t *testing.T) {
	tests := []struct {
		addr    string
		want    string
		wantErr bool
	}{
		{"192.168.1.1:54321", "192.168.1.1", false},
		{"[2001:db8::1]:8080", "2001:db8::1", false},
		{"127.0.0.1", "127.0.0.1", false},
		{"not-an-ip", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.addr
			got, err := RemoteAddrExtractor{}.ExtractIP(req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	got, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 192.168.1.1 ", "", "2001:db8::1"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "10.0.0.0/8", got[0].String())
	assert.Equal(t, "192.168.1.1/32", got[1].String())
	assert.Equal(t, "2001:db8::1/128", got[2].String())

	_, err = ParseTrustedProxies([]string{"nope"})
	assert.Error(t, err)
}

func TestTrustedProxyExtractor(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)
	e := TrustedProxyExtractor{Trusted: trusted}

	tests := []struct {
		name    string
		remote  string
		xff     string
		realIP  string
		want    string
	}{
		{"trusted proxy uses first forwarded entry", "10.0.0.5:1234", "203.0.113.7, 10.0.0.5", "", "203.0.113.7"},
		{"trusted proxy falls back to X-Real-IP", "10.0.0.5:1234", "", "203.0.113.9", "203.0.113.9"},
		{"trusted proxy without headers", "10.0.0.5:1234", "", "", "10.0.0.5"},
		{"untrusted peer ignores headers", "198.51.100.2:1234", "203.0.113.7", "", "198.51.100.2"},
		{"garbage forwarded entry", "10.0.0.5:1234", "garbage", "", "10.0.0.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			got, err := e.ExtractIP(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
