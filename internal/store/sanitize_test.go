package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qfs-dev/qfs/internal/qerrors"
)

func TestSanitizeFTSQuery_PlainWords(t *testing.T) {
	got, err := sanitizeFTSQuery("hello world")
	require.NoError(t, err)
	assert.Equal(t, `"hello" AND "world"`, got)
}

func TestSanitizeFTSQuery_PreservesQuotedPhrase(t *testing.T) {
	got, err := sanitizeFTSQuery(`"exact phrase" other`)
	require.NoError(t, err)
	assert.Equal(t, `"exact phrase" AND "other"`, got)
}

func TestSanitizeFTSQuery_DiscardsTokensWithOperatorPunctuation(t *testing.T) {
	got, err := sanitizeFTSQuery("foo* -bar safe")
	require.NoError(t, err)
	assert.Equal(t, `"safe"`, got)
}

func TestSanitizeFTSQuery_EmptyAfterSanitizationIsInvalid(t *testing.T) {
	_, err := sanitizeFTSQuery("*** --- ()")
	require.Error(t, err)
	assert.True(t, qerrors.Is(err, qerrors.InvalidQuery))
}

func TestSanitizeFTSQuery_BlankInputIsInvalid(t *testing.T) {
	_, err := sanitizeFTSQuery("   ")
	require.Error(t, err)
	assert.True(t, qerrors.Is(err, qerrors.InvalidQuery))
}
