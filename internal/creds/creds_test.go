package creds

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("SHODAN_API_KEY", "test-key")

	lookup := FromEnv()

	value, ok := lookup("shodan")
	assert.True(t, ok)
	assert.Equal(t, "test-key", value)

	_, ok = lookup("virustotal")
	assert.False(t, ok)

	_, ok = lookup("not-a-service")
	assert.False(t, ok)
}

func TestFromMap(t *testing.T) {
	lookup := FromMap(map[string]string{
		"github": "ghp_token",
		"hibp":   "",
	})

	value, ok := lookup("github")
	assert.True(t, ok)
	assert.Equal(t, "ghp_token", value)

	_, ok = lookup("hibp")
	assert.False(t, ok, "empty values are treated as absent")

	_, ok = lookup("shodan")
	assert.False(t, ok)
}

func TestChain(t *testing.T) {
	primary := FromMap(map[string]string{"shodan": "from-config"})
	fallback := FromMap(map[string]string{"shodan": "from-env", "github": "token"})

	lookup := Chain(nil, primary, fallback)

	value, ok := lookup("shodan")
	assert.True(t, ok)
	assert.Equal(t, "from-config", value, "first configured lookup wins")

	value, ok = lookup("github")
	assert.True(t, ok)
	assert.Equal(t, "token", value)

	_, ok = lookup("twitter")
	assert.False(t, ok)
}

func TestRequire(t *testing.T) {
	lookup := FromMap(map[string]string{"shodan": "key"})

	value, err := Require(lookup, "shodan")
	require.NoError(t, err)
	assert.Equal(t, "key", value)

	_, err = Require(lookup, "virustotal")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingCredential))
	assert.Contains(t, err.Error(), "VIRUSTOTAL_API_KEY")

	_, err = Require(nil, "shodan")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingCredential))
}
