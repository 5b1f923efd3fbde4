package domain

import "github.com/btcsuite/btcd/btcutil"

// Amount is a nonnegative satoshi quantity. It is represented with
// btcutil.Amount (an int64 of satoshis), the wider btcsuite ecosystem's
// convention; all values handled by this core
// are bounded by the 21M BTC ceiling, so int64 never overflows in practice.
type Amount = btcutil.Amount

// MaxAmount is the 21M BTC ceiling in satoshis.
const MaxAmount = Amount(21_000_000 * 100_000_000)

// SaturatingAdd adds b to a, saturating at MaxAmount instead of overflowing.
func SaturatingAdd(a, b Amount) Amount {
	if a > MaxAmount-b {
		return MaxAmount
	}
	return a + b
}
