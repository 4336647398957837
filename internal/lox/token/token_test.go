package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	for k := Kind(0); k < maxKind; k++ {
		require.NotEmpty(t, k.String(), "kind %d", k)
	}
}

func TestLookup(t *testing.T) {
	for word, want := range keywords {
		require.Equal(t, want, Lookup(word))
	}
	require.Equal(t, IDENT, Lookup("notAKeyword"))
	require.Equal(t, IDENT, Lookup("classify")) // prefix of a keyword, not the keyword
}
