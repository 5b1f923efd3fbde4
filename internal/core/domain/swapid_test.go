package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSwapIdOf_Deterministic(t *testing.T) {
	sender := Address{1, 2, 3}
	recipient := Address{4, 5, 6}

	a := SwapIdOf("bc1qexampleaddress", Amount(100_000), sender, &recipient)
	b := SwapIdOf("bc1qexampleaddress", Amount(100_000), sender, &recipient)
	require.Equal(t, a, b)
}

func TestSwapIdOf_OpenOfferDiffersFromBound(t *testing.T) {
	sender := Address{1, 2, 3}
	recipient := Address{4, 5, 6}

	open := SwapIdOf("bc1qexampleaddress", Amount(100_000), sender, nil)
	bound := SwapIdOf("bc1qexampleaddress", Amount(100_000), sender, &recipient)
	require.NotEqual(t, open, bound)
}

func TestSwapIdOf_SensitiveToEveryField(t *testing.T) {
	sender := Address{1, 2, 3}
	recipient := Address{4, 5, 6}
	base := SwapIdOf("bc1qexampleaddress", Amount(100_000), sender, &recipient)

	require.NotEqual(t, base, SwapIdOf("bc1qotheraddress", Amount(100_000), sender, &recipient))
	require.NotEqual(t, base, SwapIdOf("bc1qexampleaddress", Amount(100_001), sender, &recipient))
	require.NotEqual(t, base, SwapIdOf("bc1qexampleaddress", Amount(100_000), Address{9}, &recipient))
	other := Address{7, 7, 7}
	require.NotEqual(t, base, SwapIdOf("bc1qexampleaddress", Amount(100_000), sender, &other))
}

func TestSwapIdFromHex_RoundTrip(t *testing.T) {
	sender := Address{1, 2, 3}
	id := SwapIdOf("bc1qexampleaddress", Amount(100_000), sender, nil)

	parsed, ok := SwapIdFromHex(id.String())
	require.True(t, ok)
	require.Equal(t, id, parsed)
}

func TestSwapIdFromHex_Invalid(t *testing.T) {
	_, ok := SwapIdFromHex("not-hex")
	require.False(t, ok)

	_, ok = SwapIdFromHex("aabb")
	require.False(t, ok, "must reject a hex string that is not exactly 32 bytes")
}
