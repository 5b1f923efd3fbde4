// Package broadcaster provides the default application.TxBroadcaster: the
// actual sidechain transaction construction, signing and mempool submission
// is out of core scope - it belongs to the sidechain node/
// wallet this core is embedded in, not to this module. This implementation
// only logs what it would have broadcast, so the core is runnable
// standalone; a real deployment wires in that node's own submission path
// in its place.
package broadcaster

import (
	"context"
	"fmt"

	"github.com/coinshift-network/coinshiftd/internal/core/application"
	"github.com/coinshift-network/coinshiftd/internal/core/domain"
	log "github.com/sirupsen/logrus"
	"lukechampine.com/blake3"
)

type logOnly struct{}

// NewLogOnly returns the placeholder application.TxBroadcaster.
func NewLogOnly() application.TxBroadcaster {
	return &logOnly{}
}

func (b *logOnly) BroadcastSwapCreate(
	ctx context.Context, data *domain.SwapCreateData,
) (string, error) {
	encoded, err := data.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("encode SwapCreate payload: %w", err)
	}
	hash := blake3.Sum256(encoded)
	log.WithField("swap_id", data.SwapId.String()).
		WithField("payload_bytes", len(encoded)).
		Warn("no sidechain mempool wired, SwapCreate not actually broadcast")
	return fmt.Sprintf("%x", hash), nil
}

func (b *logOnly) BroadcastSwapClaim(
	ctx context.Context, data *domain.SwapClaimData,
) (string, error) {
	encoded, err := data.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("encode SwapClaim payload: %w", err)
	}
	hash := blake3.Sum256(encoded)
	log.WithField("swap_id", data.SwapId.String()).
		WithField("payload_bytes", len(encoded)).
		Warn("no sidechain mempool wired, SwapClaim not actually broadcast")
	return fmt.Sprintf("%x", hash), nil
}
