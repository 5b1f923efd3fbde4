package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSwap_MarshalBinary_RoundTrip_OpenOffer(t *testing.T) {
	sender := Address{1, 2, 3}
	id := SwapIdOf("bc1qexampleaddress", Amount(50_000), sender, nil)
	l1Amount := Amount(50_000)
	l1Addr := "bc1qexampleaddress"

	swap := NewSwap(id, BTC, ZeroSwapTxId, nil, nil, Amount(10_000), &l1Addr, &l1Amount, 100, nil)

	encoded, err := swap.MarshalBinary()
	require.NoError(t, err)

	decoded := &Swap{}
	require.NoError(t, decoded.UnmarshalBinary(encoded))

	require.Equal(t, swap.Id, decoded.Id)
	require.Equal(t, swap.ParentChain, decoded.ParentChain)
	require.True(t, decoded.L1Txid.IsZero())
	require.Equal(t, swap.L2Amount, decoded.L2Amount)
	require.Equal(t, *swap.L1RecipientAddress, *decoded.L1RecipientAddress)
	require.Equal(t, *swap.L1Amount, *decoded.L1Amount)
	require.Nil(t, decoded.L2Recipient)
	require.True(t, swap.State.Equal(decoded.State))
}

func TestSwap_MarshalBinary_RoundTrip_BoundRecipientWithAllOptionals(t *testing.T) {
	sender := Address{1, 2, 3}
	recipient := Address{4, 5, 6}
	id := SwapIdOf("bc1qexampleaddress", Amount(50_000), sender, &recipient)
	l1Amount := Amount(50_000)
	l1Addr := "bc1qexampleaddress"
	expiresAt := uint32(500)
	req := uint32(3)

	swap := NewSwap(id, Signet, ZeroSwapTxId, &req, &recipient, Amount(10_000), &l1Addr, &l1Amount, 100, &expiresAt)
	claimer := Address{9, 9, 9}
	l1Claimer := "sbtc1claimer"
	swap.L1ClaimerAddress = &l1Claimer
	swap.L2ClaimerAddress = &claimer
	blockHash := BlockHash{0xAA}
	swap.SetL1TxidValidationBlock(blockHash, 777)

	encoded, err := swap.MarshalBinary()
	require.NoError(t, err)

	decoded := &Swap{}
	require.NoError(t, decoded.UnmarshalBinary(encoded))

	require.Equal(t, swap.Id, decoded.Id)
	require.Equal(t, *swap.L2Recipient, *decoded.L2Recipient)
	require.Equal(t, *swap.ExpiresAtHeight, *decoded.ExpiresAtHeight)
	require.Equal(t, *swap.L1ClaimerAddress, *decoded.L1ClaimerAddress)
	require.Equal(t, *swap.L2ClaimerAddress, *decoded.L2ClaimerAddress)
	require.Equal(t, *swap.L1TxidValidatedAtBlockHash, *decoded.L1TxidValidatedAtBlockHash)
	require.Equal(t, *swap.L1TxidValidatedAtHeight, *decoded.L1TxidValidatedAtHeight)
}

func TestSwap_UnmarshalBinary_RejectsTruncatedBuffer(t *testing.T) {
	sender := Address{1, 2, 3}
	id := SwapIdOf("bc1qexampleaddress", Amount(50_000), sender, nil)
	l1Amount := Amount(50_000)
	l1Addr := "bc1qexampleaddress"
	swap := NewSwap(id, BTC, ZeroSwapTxId, nil, nil, Amount(10_000), &l1Addr, &l1Amount, 100, nil)

	encoded, err := swap.MarshalBinary()
	require.NoError(t, err)

	decoded := &Swap{}
	require.Error(t, decoded.UnmarshalBinary(encoded[:len(encoded)-1]))
}

func TestSwapCreateData_MarshalBinary_RoundTrip(t *testing.T) {
	recipient := Address{4, 5, 6}
	l1Amount := uint64(50_000)
	l1Addr := "bc1qexampleaddress"
	expiresAt := uint32(900)
	data := &SwapCreateData{
		SwapId:                SwapId{1, 2, 3},
		ParentChain:           LTC,
		L1TxidBytes:           nil,
		RequiredConfirmations: 3,
		L2Recipient:           &recipient,
		L2Amount:              20_000,
		L1RecipientAddress:    &l1Addr,
		L1Amount:              &l1Amount,
		ExpiresAtHeight:       &expiresAt,
	}

	encoded, err := data.MarshalBinary()
	require.NoError(t, err)

	decoded := &SwapCreateData{}
	require.NoError(t, decoded.UnmarshalBinary(encoded))
	require.Equal(t, data.SwapId, decoded.SwapId)
	require.Equal(t, data.ParentChain, decoded.ParentChain)
	require.Equal(t, *data.L2Recipient, *decoded.L2Recipient)
	require.Equal(t, data.L2Amount, decoded.L2Amount)
	require.Equal(t, *data.L1RecipientAddress, *decoded.L1RecipientAddress)
	require.Equal(t, *data.L1Amount, *decoded.L1Amount)
	require.NotNil(t, decoded.ExpiresAtHeight)
	require.Equal(t, *data.ExpiresAtHeight, *decoded.ExpiresAtHeight)
}

func TestSwapCreateData_MarshalBinary_RoundTrip_NoExpiry(t *testing.T) {
	l1Amount := uint64(50_000)
	l1Addr := "bc1qexampleaddress"
	data := &SwapCreateData{
		SwapId:                SwapId{1, 2, 3},
		ParentChain:           BTC,
		RequiredConfirmations: 3,
		L2Amount:              20_000,
		L1RecipientAddress:    &l1Addr,
		L1Amount:              &l1Amount,
	}

	encoded, err := data.MarshalBinary()
	require.NoError(t, err)

	decoded := &SwapCreateData{}
	require.NoError(t, decoded.UnmarshalBinary(encoded))
	require.Nil(t, decoded.ExpiresAtHeight)
}

func TestSwapClaimData_MarshalBinary_RoundTrip(t *testing.T) {
	claimer := Address{9, 9, 9}
	data := &SwapClaimData{
		SwapId:           SwapId{7, 7, 7},
		L2ClaimerAddress: &claimer,
		ProofData:        []byte{0xDE, 0xAD},
	}

	encoded, err := data.MarshalBinary()
	require.NoError(t, err)

	decoded := &SwapClaimData{}
	require.NoError(t, decoded.UnmarshalBinary(encoded))
	require.Equal(t, data.SwapId, decoded.SwapId)
	require.Equal(t, *data.L2ClaimerAddress, *decoded.L2ClaimerAddress)
	require.Equal(t, data.ProofData, decoded.ProofData)
}

func TestSwapCreateData_UnmarshalBinary_WrongDiscriminant(t *testing.T) {
	claimer := Address{1}
	claimData := &SwapClaimData{SwapId: SwapId{1}, L2ClaimerAddress: &claimer}
	encoded, err := claimData.MarshalBinary()
	require.NoError(t, err)

	createData := &SwapCreateData{}
	require.Error(t, createData.UnmarshalBinary(encoded))
}
