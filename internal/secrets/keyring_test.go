package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestRoundTrip(t *testing.T) {
	keyring.MockInit()
	acct := PasswordAccount("Ada@Example.com", "https://app.greenhouse.io")
	assert.Equal(t, "jobposts:password:ada@example.com@app.greenhouse.io", acct)

	_, err := Get(acct)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, Set(acct, "s3cret"))
	v, err := Get(acct)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", v)

	require.NoError(t, Delete(acct))
	require.NoError(t, Delete(acct))
	_, err = Get(acct)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRejectsEmpty(t *testing.T) {
	keyring.MockInit()
	assert.Error(t, Set("", "x"))
	assert.Error(t, Set(SessionAccount("https://app.greenhouse.io"), "  "))
	_, err := Get(" ")
	assert.Error(t, err)
}
