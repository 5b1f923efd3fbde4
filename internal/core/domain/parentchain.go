package domain

import "fmt"

// ParentChainType is the closed enum of L1 chains a swap can target. Adding
// a chain means adding a variant and its metadata below, not registering a
// plugin,.
type ParentChainType byte

const (
	BTC     ParentChainType = 0
	BCH     ParentChainType = 1
	LTC     ParentChainType = 2
	Signet  ParentChainType = 3
	Regtest ParentChainType = 4
)

type parentChainMeta struct {
	ticker               string
	coinName              string
	defaultConfirmations uint32
	defaultRPCPort       uint16
}

var parentChainMetadata = map[ParentChainType]parentChainMeta{
	BTC:     {"BTC", "Bitcoin", 6, 8332},
	BCH:     {"BCH", "Bitcoin Cash", 3, 8332},
	LTC:     {"LTC", "Litecoin", 3, 9332},
	Signet:  {"sBTC", "Bitcoin Signet", 3, 38332},
	Regtest: {"rBTC", "Bitcoin Regtest", 3, 18443},
}

// SatsPerCoin is fixed across every supported parent chain,.1.
const SatsPerCoin = 100_000_000

func (p ParentChainType) meta() (parentChainMeta, error) {
	m, ok := parentChainMetadata[p]
	if !ok {
		return parentChainMeta{}, fmt.Errorf("unknown parent chain type: %d", byte(p))
	}
	return m, nil
}

func (p ParentChainType) Valid() bool {
	_, ok := parentChainMetadata[p]
	return ok
}

func (p ParentChainType) DefaultConfirmations() uint32 {
	m, err := p.meta()
	if err != nil {
		return 0
	}
	return m.defaultConfirmations
}

func (p ParentChainType) Ticker() string {
	m, err := p.meta()
	if err != nil {
		return "UNKNOWN"
	}
	return m.ticker
}

func (p ParentChainType) CoinName() string {
	m, err := p.meta()
	if err != nil {
		return "unknown"
	}
	return m.coinName
}

func (p ParentChainType) DefaultRPCPort() uint16 {
	m, err := p.meta()
	if err != nil {
		return 0
	}
	return m.defaultRPCPort
}

// String returns the variant name that ParseParentChainType accepts; for
// Signet and Regtest this differs from the ticker.
func (p ParentChainType) String() string {
	switch p {
	case Signet:
		return "Signet"
	case Regtest:
		return "Regtest"
	}
	return p.Ticker()
}

// AllParentChainTypes returns every supported variant, in discriminant order.
func AllParentChainTypes() []ParentChainType {
	return []ParentChainType{BTC, BCH, LTC, Signet, Regtest}
}

// ParseParentChainType parses the variant name used on the RPC/CLI surface
// (BTC, BCH, LTC, Signet, Regtest; case-sensitive). The tickers sBTC and
// rBTC are not accepted.
func ParseParentChainType(s string) (ParentChainType, error) {
	switch s {
	case "BTC":
		return BTC, nil
	case "BCH":
		return BCH, nil
	case "LTC":
		return LTC, nil
	case "Signet":
		return Signet, nil
	case "Regtest":
		return Regtest, nil
	default:
		return 0, fmt.Errorf("unknown parent chain: %s", s)
	}
}
