package errors

import "encoding/json"

func structToStringMap(v any) map[string]string {
	out := make(map[string]string)
	buf, err := json.Marshal(v)
	if err != nil {
		return out
	}
	var generic map[string]any
	if err := json.Unmarshal(buf, &generic); err != nil {
		return out
	}
	for k, val := range generic {
		if val == nil {
			out[k] = ""
			continue
		}
		out[k] = jsonScalarString(val)
	}
	return out
}

func jsonScalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	default:
		buf, _ := json.Marshal(t)
		return string(buf)
	}
}

type SwapIdMetadata struct {
	SwapId string `json:"swap_id"`
}

type SwapIdMismatchMetadata struct {
	Expected string `json:"expected"`
	Computed string `json:"computed"`
}

type OutpointMetadata struct {
	Outpoint string `json:"outpoint"`
}

type LockedInputMetadata struct {
	Outpoint     string `json:"outpoint"`
	LockedToSwap string `json:"locked_to_swap"`
}

type L1TxMetadata struct {
	ParentChain string `json:"parent_chain"`
	L1Txid      string `json:"l1_txid"`
}

type InsufficientAmountMetadata struct {
	Required string `json:"required"`
	Got      string `json:"got"`
}

type ChainMetadata struct {
	ParentChain string `json:"parent_chain"`
}

type ClientErrorMetadata struct {
	ParentChain string `json:"parent_chain"`
	Cause       string `json:"cause"`
}
