package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/phrazzld/scry-concepts/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRunHashesFlagToken(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run("secret-token", bcrypt.MinCost, strings.NewReader(""), &out))

	hash := strings.TrimSpace(out.String())
	assert.NoError(t, auth.NewBcryptVerifier().Compare(hash, "secret-token"))
}

func TestRunReadsTokenFromStdin(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run("", bcrypt.MinCost, strings.NewReader("  piped-token \n"), &out))

	hash := strings.TrimSpace(out.String())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("piped-token")))
}

func TestRunRejectsBadInput(t *testing.T) {
	var out bytes.Buffer
	assert.ErrorIs(t, run("", bcrypt.MinCost, strings.NewReader(""), &out), auth.ErrMissingToken)
	assert.Error(t, run("token", bcrypt.MaxCost+1, strings.NewReader(""), &out))
	assert.Empty(t, out.String())
}
