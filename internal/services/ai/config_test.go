package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestOpenRejectsBadHosts(t *testing.T) {
	hosts := []string{"", "127.0.0.1:11434", "ftp://host", "http://", "://bad"}
	for _, host := range hosts {
		cfg := DefaultConfig()
		cfg.BaseURL = host
		_, err := Open(cfg)
		require.Error(t, err, host)
		assert.True(t, IsConnectionFailure(err), host)
	}
}

func TestOpenRejectsUnknownProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "bedrock"
	_, err := Open(cfg)
	assert.True(t, IsConnectionFailure(err))

	_, err = Open(nil)
	assert.Error(t, err)
}

func TestOpenSelectsProvider(t *testing.T) {
	p, err := Open(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, ProviderOllama, p.Name())
}
