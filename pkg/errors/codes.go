package errors

// Codes below are the fixed taxonomy, numbered in table order,
// plus supplemented ErrOrphanedLock.

var SwapIdMismatch = Code[SwapIdMismatchMetadata]{
	1, "SWAP_ID_MISMATCH", DispositionRejectTx,
}

var SwapAlreadyExists = Code[SwapIdMetadata]{
	2, "SWAP_ALREADY_EXISTS", DispositionRejectTx,
}

var SwapNotFound = Code[SwapIdMetadata]{
	3, "SWAP_NOT_FOUND", DispositionRejectRPC,
}

var InvalidStateTransition = Code[SwapIdMetadata]{
	4, "INVALID_STATE_TRANSITION", DispositionRejectTx,
}

var LockedInputViolation = Code[LockedInputMetadata]{
	5, "LOCKED_INPUT_VIOLATION", DispositionRejectTx,
}

var L1TxAlreadyUsed = Code[L1TxMetadata]{
	6, "L1_TX_ALREADY_USED", DispositionLogOnly,
}

var InsufficientL2Amount = Code[InsufficientAmountMetadata]{
	7, "INSUFFICIENT_L2_AMOUNT", DispositionRejectTx,
}

var TransactionDisappeared = Code[L1TxMetadata]{
	8, "TRANSACTION_DISAPPEARED", DispositionLogOnly,
}

var ChainNotConfigured = Code[ChainMetadata]{
	9, "CHAIN_NOT_CONFIGURED", DispositionLogOnly,
}

var SerializationCorruption = Code[SwapIdMetadata]{
	10, "SERIALIZATION_CORRUPTION", DispositionRecover,
}

var ClientError = Code[ClientErrorMetadata]{
	11, "CLIENT_ERROR", DispositionLogOnly,
}

// OrphanedLock: an input is locked to a
// SwapId that no longer resolves to a readable Swap record.
var OrphanedLock = Code[LockedInputMetadata]{
	12, "ORPHANED_LOCK", DispositionRejectTx,
}

var InvalidTransaction = Code[SwapIdMetadata]{
	13, "INVALID_TRANSACTION", DispositionRejectTx,
}

var Internal = Code[map[string]any]{
	0, "INTERNAL_ERROR", DispositionRejectRPC,
}
