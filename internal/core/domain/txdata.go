package domain

import "fmt"

// TxDataKind is the explicit discriminant for the two new sidechain
// tx-data variants
type TxDataKind byte

const (
	TxDataSwapCreate TxDataKind = 1
	TxDataSwapClaim  TxDataKind = 2
)

// SwapCreateData is the on-chain payload of a SwapCreate transaction.
type SwapCreateData struct {
	SwapId                SwapId
	ParentChain           ParentChainType
	L1TxidBytes           []byte // empty, or exactly 32 bytes
	RequiredConfirmations uint32
	L2Recipient           *Address
	L2Amount              uint64
	L1RecipientAddress    *string
	L1Amount              *uint64
	ExpiresAtHeight       *uint32
}

// SwapClaimData is the on-chain payload of a SwapClaim transaction.
// ProofData is reserved and must be ignored by the validator.
type SwapClaimData struct {
	SwapId           SwapId
	L2ClaimerAddress *Address
	ProofData        []byte
}

func (d *SwapCreateData) MarshalBinary() ([]byte, error) {
	e := &encoder{}
	e.byte(byte(TxDataSwapCreate))
	e.fixed(d.SwapId[:])
	e.byte(byte(d.ParentChain))
	e.varBytes(d.L1TxidBytes)
	e.u32(d.RequiredConfirmations)
	e.optFixed(addrBytesOrNil(d.L2Recipient), d.L2Recipient != nil)
	e.u64(d.L2Amount)
	e.optStr(d.L1RecipientAddress)
	e.optU64(d.L1Amount)
	e.optU32(d.ExpiresAtHeight)
	return e.bytes(), nil
}

func (d *SwapCreateData) UnmarshalBinary(data []byte) error {
	dec := newDecoder(data)
	kind, err := dec.byteVal()
	if err != nil {
		return err
	}
	if TxDataKind(kind) != TxDataSwapCreate {
		return fmt.Errorf("codec: expected SwapCreate discriminant, got %d", kind)
	}
	idBytes, err := dec.fixed(32)
	if err != nil {
		return err
	}
	id, ok := SwapIdFromBytes(idBytes)
	if !ok {
		return fmt.Errorf("codec: bad swap id")
	}
	chainB, err := dec.byteVal()
	if err != nil {
		return err
	}
	l1TxidBytes, err := dec.varBytes()
	if err != nil {
		return err
	}
	reqConf, err := dec.u32()
	if err != nil {
		return err
	}
	recipBytes, hasRecip, err := dec.optFixed(AddressSize)
	if err != nil {
		return err
	}
	l2Amount, err := dec.u64()
	if err != nil {
		return err
	}
	l1RecipAddr, err := dec.optStr()
	if err != nil {
		return err
	}
	l1Amount, err := dec.optU64()
	if err != nil {
		return err
	}
	expiresAtHeight, err := dec.optU32()
	if err != nil {
		return err
	}
	if err := dec.done(); err != nil {
		return err
	}

	d.SwapId = id
	d.ParentChain = ParentChainType(chainB)
	d.L1TxidBytes = l1TxidBytes
	d.RequiredConfirmations = reqConf
	if hasRecip {
		a, err := AddressFromBytes(recipBytes)
		if err != nil {
			return err
		}
		d.L2Recipient = &a
	} else {
		d.L2Recipient = nil
	}
	d.L2Amount = l2Amount
	d.L1RecipientAddress = l1RecipAddr
	d.L1Amount = l1Amount
	d.ExpiresAtHeight = expiresAtHeight
	return nil
}

func (d *SwapClaimData) MarshalBinary() ([]byte, error) {
	e := &encoder{}
	e.byte(byte(TxDataSwapClaim))
	e.fixed(d.SwapId[:])
	e.optFixed(addrBytesOrNil(d.L2ClaimerAddress), d.L2ClaimerAddress != nil)
	if d.ProofData == nil {
		e.byte(tagAbsent)
	} else {
		e.byte(tagPresent)
		e.varBytes(d.ProofData)
	}
	return e.bytes(), nil
}

func (d *SwapClaimData) UnmarshalBinary(data []byte) error {
	dec := newDecoder(data)
	kind, err := dec.byteVal()
	if err != nil {
		return err
	}
	if TxDataKind(kind) != TxDataSwapClaim {
		return fmt.Errorf("codec: expected SwapClaim discriminant, got %d", kind)
	}
	idBytes, err := dec.fixed(32)
	if err != nil {
		return err
	}
	id, ok := SwapIdFromBytes(idBytes)
	if !ok {
		return fmt.Errorf("codec: bad swap id")
	}
	claimerBytes, hasClaimer, err := dec.optFixed(AddressSize)
	if err != nil {
		return err
	}
	// proof data is variable-length with no fixed size; decode it as a
	// presence-tagged var-length blob directly rather than via optFixed.
	tag, err := dec.byteVal()
	if err != nil {
		return err
	}
	var proof []byte
	if tag == tagPresent {
		proof, err = dec.varBytes()
		if err != nil {
			return err
		}
	}
	if err := dec.done(); err != nil {
		return err
	}

	d.SwapId = id
	if hasClaimer {
		a, err := AddressFromBytes(claimerBytes)
		if err != nil {
			return err
		}
		d.L2ClaimerAddress = &a
	} else {
		d.L2ClaimerAddress = nil
	}
	d.ProofData = proof
	return nil
}
