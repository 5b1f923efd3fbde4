package domain

import "fmt"

// MarshalBinary implements the deterministic wire codec: fixed
// discriminants, explicit presence tags, no field reordering. Used both
// for the on-chain SwapCreate-derived record and for the swap store's
// primary value.
func (s *Swap) MarshalBinary() ([]byte, error) {
	e := &encoder{}
	e.fixed(s.Id[:])
	e.byte(byte(s.Direction))
	e.byte(byte(s.ParentChain))
	e.varBytes(s.L1Txid.Bytes())
	e.u32(s.RequiredConfirmations)
	e.byte(byte(s.State.Tag))
	e.u32(s.State.Current)
	e.u32(s.State.Required)
	e.optFixed(addrBytesOrNil(s.L2Recipient), s.L2Recipient != nil)
	e.u64(uint64(s.L2Amount))
	e.optStr(s.L1RecipientAddress)
	if s.L1Amount != nil {
		v := uint64(*s.L1Amount)
		e.optU64(&v)
	} else {
		e.optU64(nil)
	}
	e.optStr(s.L1ClaimerAddress)
	e.optFixed(addrBytesOrNil(s.L2ClaimerAddress), s.L2ClaimerAddress != nil)
	e.u32(s.CreatedAtHeight)
	e.optU32(s.ExpiresAtHeight)
	if s.L1TxidValidatedAtBlockHash != nil {
		b := s.L1TxidValidatedAtBlockHash[:]
		e.optFixed(b, true)
	} else {
		e.optFixed(nil, false)
	}
	e.optU32(s.L1TxidValidatedAtHeight)
	return e.bytes(), nil
}

func addrBytesOrNil(a *Address) []byte {
	if a == nil {
		return nil
	}
	return a.Bytes()
}

// UnmarshalBinary is the exact inverse of MarshalBinary. A failure here is
// the SerializationCorruption condition, handled by C9.
func (s *Swap) UnmarshalBinary(data []byte) error {
	d := newDecoder(data)

	idBytes, err := d.fixed(32)
	if err != nil {
		return err
	}
	id, ok := SwapIdFromBytes(idBytes)
	if !ok {
		return fmt.Errorf("codec: bad swap id length")
	}

	dirB, err := d.byteVal()
	if err != nil {
		return err
	}
	chainB, err := d.byteVal()
	if err != nil {
		return err
	}
	l1TxidBytes, err := d.varBytes()
	if err != nil {
		return err
	}
	l1Txid, err := SwapTxIdFromBytes(l1TxidBytes)
	if err != nil {
		return err
	}
	reqConf, err := d.u32()
	if err != nil {
		return err
	}
	stateTag, err := d.byteVal()
	if err != nil {
		return err
	}
	current, err := d.u32()
	if err != nil {
		return err
	}
	required, err := d.u32()
	if err != nil {
		return err
	}
	l2RecipBytes, hasL2Recip, err := d.optFixed(AddressSize)
	if err != nil {
		return err
	}
	l2Amount, err := d.u64()
	if err != nil {
		return err
	}
	l1RecipAddr, err := d.optStr()
	if err != nil {
		return err
	}
	l1AmountOpt, err := d.optU64()
	if err != nil {
		return err
	}
	l1ClaimerAddr, err := d.optStr()
	if err != nil {
		return err
	}
	l2ClaimerBytes, hasL2Claimer, err := d.optFixed(AddressSize)
	if err != nil {
		return err
	}
	createdAt, err := d.u32()
	if err != nil {
		return err
	}
	expiresAt, err := d.optU32()
	if err != nil {
		return err
	}
	blockHashBytes, hasBlockHash, err := d.optFixed(32)
	if err != nil {
		return err
	}
	validatedHeight, err := d.optU32()
	if err != nil {
		return err
	}
	if err := d.done(); err != nil {
		return err
	}

	s.Id = id
	s.Direction = Direction(dirB)
	s.ParentChain = ParentChainType(chainB)
	s.L1Txid = l1Txid
	s.RequiredConfirmations = reqConf
	s.State = SwapState{Tag: SwapStateTag(stateTag), Current: current, Required: required}
	if hasL2Recip {
		a, err := AddressFromBytes(l2RecipBytes)
		if err != nil {
			return err
		}
		s.L2Recipient = &a
	} else {
		s.L2Recipient = nil
	}
	s.L2Amount = Amount(l2Amount)
	s.L1RecipientAddress = l1RecipAddr
	if l1AmountOpt != nil {
		v := Amount(*l1AmountOpt)
		s.L1Amount = &v
	} else {
		s.L1Amount = nil
	}
	s.L1ClaimerAddress = l1ClaimerAddr
	if hasL2Claimer {
		a, err := AddressFromBytes(l2ClaimerBytes)
		if err != nil {
			return err
		}
		s.L2ClaimerAddress = &a
	} else {
		s.L2ClaimerAddress = nil
	}
	s.CreatedAtHeight = createdAt
	s.ExpiresAtHeight = expiresAt
	if hasBlockHash {
		h, err := hashFromBytes(blockHashBytes)
		if err != nil {
			return err
		}
		s.L1TxidValidatedAtBlockHash = &h
	} else {
		s.L1TxidValidatedAtBlockHash = nil
	}
	s.L1TxidValidatedAtHeight = validatedHeight
	return nil
}

func hashFromBytes(b []byte) (BlockHash, error) {
	var h BlockHash
	if len(b) != 32 {
		return h, fmt.Errorf("codec: bad hash length %d", len(b))
	}
	copy(h[:], b)
	return h, nil
}
