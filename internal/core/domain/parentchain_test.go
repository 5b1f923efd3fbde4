package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseParentChainType_RoundTripsWithString(t *testing.T) {
	for _, chain := range AllParentChainTypes() {
		parsed, err := ParseParentChainType(chain.String())
		require.NoError(t, err)
		require.Equal(t, chain, parsed)
	}
}

func TestParseParentChainType_RejectsUnknown(t *testing.T) {
	_, err := ParseParentChainType("DOGE")
	require.Error(t, err)
}

func TestParentChainType_Valid(t *testing.T) {
	require.True(t, BTC.Valid())
	require.False(t, ParentChainType(99).Valid())
}

func TestParentChainType_DefaultConfirmations(t *testing.T) {
	require.EqualValues(t, 6, BTC.DefaultConfirmations())
	require.EqualValues(t, 0, ParentChainType(99).DefaultConfirmations())
}
