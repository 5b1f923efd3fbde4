package main

import "github.com/urfave/cli/v2"

const (
	rpcURLFlagName                = "rpc-url"
	swapIdFlagName                = "swap-id"
	parentChainFlagName           = "parent-chain"
	l1RecipientAddressFlagName    = "l1-recipient-address"
	l1AmountSatsFlagName          = "l1-amount-sats"
	l2RecipientFlagName           = "l2-recipient"
	l2AmountSatsFlagName          = "l2-amount-sats"
	requiredConfirmationsFlagName = "required-confirmations"
	feeSatsFlagName               = "fee-sats"
	l2SenderFlagName              = "l2-sender"
	createdAtHeightFlagName       = "created-at-height"
	expiresAtHeightFlagName       = "expires-at-height"
	l2ClaimerAddressFlagName      = "l2-claimer-address"
	l1TxidFlagName                = "l1-txid"
	confirmationsFlagName         = "confirmations"
	recipientFlagName             = "recipient"
)

var (
	rpcURLFlag = &cli.StringFlag{
		Name:    rpcURLFlagName,
		Usage:   "URL of the coinshiftd JSON-RPC endpoint",
		Value:   "http://127.0.0.1:7080/rpc",
		EnvVars: []string{"COINSHIFTD_RPC_URL"},
	}
	swapIdFlag = &cli.StringFlag{
		Name:     swapIdFlagName,
		Usage:    "hex-encoded swap id",
		Required: true,
	}
	parentChainFlag = &cli.StringFlag{
		Name:     parentChainFlagName,
		Usage:    "parent chain (BTC, BCH, LTC, Signet, Regtest)",
		Required: true,
	}
	l1RecipientAddressFlag = &cli.StringFlag{
		Name:     l1RecipientAddressFlagName,
		Usage:    "L1 address the maker expects to receive funds at",
		Required: true,
	}
	l1AmountSatsFlag = &cli.Uint64Flag{
		Name:     l1AmountSatsFlagName,
		Usage:    "L1 amount in satoshis",
		Required: true,
	}
	l2RecipientFlag = &cli.StringFlag{
		Name:  l2RecipientFlagName,
		Usage: "hex-encoded L2 recipient address; omit for an open offer",
	}
	l2AmountSatsFlag = &cli.Uint64Flag{
		Name:     l2AmountSatsFlagName,
		Usage:    "L2 amount in satoshis, must be greater than zero",
		Required: true,
	}
	requiredConfirmationsFlag = &cli.UintFlag{
		Name:  requiredConfirmationsFlagName,
		Usage: "override the parent chain's default required confirmations",
	}
	feeSatsFlag = &cli.Uint64Flag{
		Name:  feeSatsFlagName,
		Usage: "fee in satoshis",
	}
	l2SenderFlag = &cli.StringFlag{
		Name:     l2SenderFlagName,
		Usage:    "hex-encoded L2 address of the swap's maker",
		Required: true,
	}
	createdAtHeightFlag = &cli.UintFlag{
		Name:     createdAtHeightFlagName,
		Usage:    "L2 height at which the SwapCreate transaction is included",
		Required: true,
	}
	expiresAtHeightFlag = &cli.UintFlag{
		Name:  expiresAtHeightFlagName,
		Usage: "L2 height after which the offer expires; omit for no expiry",
	}
	l2ClaimerAddressFlag = &cli.StringFlag{
		Name:  l2ClaimerAddressFlagName,
		Usage: "hex-encoded L2 address to pay the claim to, for open offers with no bound claimer",
	}
	l1TxidFlag = &cli.StringFlag{
		Name:     l1TxidFlagName,
		Usage:    "observed L1 transaction id",
		Required: true,
	}
	confirmationsFlag = &cli.UintFlag{
		Name:     confirmationsFlagName,
		Usage:    "current confirmation count of the L1 transaction",
		Required: true,
	}
	recipientFlag = &cli.StringFlag{
		Name:     recipientFlagName,
		Usage:    "hex-encoded L2 recipient address",
		Required: true,
	}
)
