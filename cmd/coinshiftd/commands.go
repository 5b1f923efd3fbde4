package main

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"
)

func client(c *cli.Context) *rpcClient {
	return newRPCClient(c.String(rpcURLFlagName))
}

func printResult(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

var createSwapCommand = &cli.Command{
	Name:  "create-swap",
	Usage: "Create a swap offer",
	Flags: []cli.Flag{
		parentChainFlag, l1RecipientAddressFlag, l1AmountSatsFlag, l2RecipientFlag,
		l2AmountSatsFlag, requiredConfirmationsFlag, feeSatsFlag, l2SenderFlag,
		createdAtHeightFlag, expiresAtHeightFlag, rpcURLFlag,
	},
	Action: func(c *cli.Context) error {
		params := map[string]any{
			"parent_chain":          c.String(parentChainFlagName),
			"l1_recipient_address":  c.String(l1RecipientAddressFlagName),
			"l1_amount_sats":        c.Uint64(l1AmountSatsFlagName),
			"l2_amount_sats":        c.Uint64(l2AmountSatsFlagName),
			"fee_sats":              c.Uint64(feeSatsFlagName),
			"l2_sender":             c.String(l2SenderFlagName),
			"created_at_height":     c.Uint(createdAtHeightFlagName),
		}
		if c.IsSet(l2RecipientFlagName) {
			params["l2_recipient"] = c.String(l2RecipientFlagName)
		}
		if c.IsSet(requiredConfirmationsFlagName) {
			params["required_confirmations"] = c.Uint(requiredConfirmationsFlagName)
		}
		if c.IsSet(expiresAtHeightFlagName) {
			params["expires_at_height"] = c.Uint(expiresAtHeightFlagName)
		}

		var out map[string]string
		if err := client(c).call(c.Context, "create_swap", params, &out); err != nil {
			return err
		}
		return printResult(out)
	},
}

var claimSwapCommand = &cli.Command{
	Name:  "claim-swap",
	Usage: "Claim a ready-to-claim swap",
	Flags: []cli.Flag{swapIdFlag, l2ClaimerAddressFlag, rpcURLFlag},
	Action: func(c *cli.Context) error {
		params := map[string]any{"swap_id": c.String(swapIdFlagName)}
		if c.IsSet(l2ClaimerAddressFlagName) {
			params["l2_claimer_address"] = c.String(l2ClaimerAddressFlagName)
		}
		var out map[string]string
		if err := client(c).call(c.Context, "claim_swap", params, &out); err != nil {
			return err
		}
		return printResult(out)
	},
}

var updateSwapL1TxidCommand = &cli.Command{
	Name:  "update-swap-l1-txid",
	Usage: "Record an observed L1 transaction against a swap",
	Flags: []cli.Flag{swapIdFlag, l1TxidFlag, confirmationsFlag, l2ClaimerAddressFlag, rpcURLFlag},
	Action: func(c *cli.Context) error {
		params := map[string]any{
			"swap_id":       c.String(swapIdFlagName),
			"l1_txid":       c.String(l1TxidFlagName),
			"confirmations": c.Uint(confirmationsFlagName),
		}
		if c.IsSet(l2ClaimerAddressFlagName) {
			params["l2_claimer_address"] = c.String(l2ClaimerAddressFlagName)
		}
		var out map[string]bool
		if err := client(c).call(c.Context, "update_swap_l1_txid", params, &out); err != nil {
			return err
		}
		return printResult(out)
	},
}

var getSwapStatusCommand = &cli.Command{
	Name:  "get-swap-status",
	Usage: "Show a swap's full record",
	Flags: []cli.Flag{swapIdFlag, rpcURLFlag},
	Action: func(c *cli.Context) error {
		params := map[string]any{"swap_id": c.String(swapIdFlagName)}
		var out map[string]any
		if err := client(c).call(c.Context, "get_swap_status", params, &out); err != nil {
			return err
		}
		return printResult(out)
	},
}

var listSwapsCommand = &cli.Command{
	Name:  "list-swaps",
	Usage: "List every swap",
	Flags: []cli.Flag{rpcURLFlag},
	Action: func(c *cli.Context) error {
		var out []map[string]any
		if err := client(c).call(c.Context, "list_swaps", nil, &out); err != nil {
			return err
		}
		return printResult(out)
	},
}

var listSwapsByRecipientCommand = &cli.Command{
	Name:  "list-swaps-by-recipient",
	Usage: "List swaps addressed to a given L2 recipient",
	Flags: []cli.Flag{recipientFlag, rpcURLFlag},
	Action: func(c *cli.Context) error {
		params := map[string]any{"recipient": c.String(recipientFlagName)}
		var out []map[string]any
		if err := client(c).call(c.Context, "list_swaps_by_recipient", params, &out); err != nil {
			return err
		}
		return printResult(out)
	},
}

var reconstructSwapsCommand = &cli.Command{
	Name:  "reconstruct-swaps",
	Usage: "Wipe and rebuild swap/lock state by replaying every block from genesis",
	Flags: []cli.Flag{rpcURLFlag},
	Action: func(c *cli.Context) error {
		var out map[string]bool
		if err := client(c).call(c.Context, "reconstruct_swaps", nil, &out); err != nil {
			return err
		}
		return printResult(out)
	},
}

var cleanupOrphanedLocksCommand = &cli.Command{
	Name:  "cleanup-orphaned-locks",
	Usage: "Unlock every outpoint locked to a swap id with no backing record",
	Flags: []cli.Flag{rpcURLFlag},
	Action: func(c *cli.Context) error {
		var out map[string]int
		if err := client(c).call(c.Context, "cleanup_orphaned_locks", nil, &out); err != nil {
			return err
		}
		return printResult(out)
	},
}

var getL1HealthCommand = &cli.Command{
	Name:  "get-l1-health",
	Usage: "Show per-parent-chain L1 RPC reachability",
	Flags: []cli.Flag{rpcURLFlag},
	Action: func(c *cli.Context) error {
		var out map[string]bool
		if err := client(c).call(c.Context, "get_l1_health", nil, &out); err != nil {
			return err
		}
		return printResult(out)
	},
}
