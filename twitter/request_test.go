package twitter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsProxyError(t *testing.T) {
	assert.False(t, isProxyError(nil))
	assert.True(t, isProxyError(errors.New("proxyconnect tcp: dial failed")))
	assert.True(t, isProxyError(errors.New("SOCKS5 handshake failed")))
	assert.True(t, isProxyError(errors.New("dial tcp: connection refused")))
	assert.False(t, isProxyError(errors.New("unexpected EOF")))
}

func TestHasResponseData(t *testing.T) {
	tests := []struct {
		body string
		want bool
	}{
		{`[]`, true},
		{`{"errors":[{"code":131}],"id_str":"1"}`, true},
		{`{"errors":[{"code":131}]}`, false},
		{`not json`, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, hasResponseData([]byte(tt.body)), tt.body)
	}
}

func TestTruncateBytes(t *testing.T) {
	assert.Equal(t, "abc", truncateBytes([]byte("abc"), 5))
	assert.Equal(t, "ab...", truncateBytes([]byte("abcdef"), 2))
}
