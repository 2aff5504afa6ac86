package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("42", "42/letter-3.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	recordID, path, parsedExpiry, err := signer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "42", recordID)
	require.Equal(t, "42/letter-3.pdf", path)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("42", "42/letter-3.pdf")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token + "x")
	require.Error(t, err)

	other := NewSignedURLSigner("different", time.Hour)
	_, _, _, err = other.Parse(token)
	require.Error(t, err)
}
