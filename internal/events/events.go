// Package events models chain events as a type tag plus a flat attribute bag
// and decodes the voting-verifier "poll started" variant.
package events

import (
	abci "github.com/cometbft/cometbft/abci/types"
)

// AttrContractAddress is the attribute CosmWasm sets on every wasm event to
// identify the emitting contract.
const AttrContractAddress = "_contract_address"

// Event is one observed chain event. Attributes keep the last value for a
// repeated key; none of the events consumed here repeat keys.
type Event struct {
	Type       string
	Contract   string
	Attributes map[string]string
	Height     int64
}

// FromABCI flattens an ABCI event emitted at the given height. The emitting
// contract address is lifted out of the attribute bag.
func FromABCI(height int64, ev abci.Event) Event {
	attrs := make(map[string]string, len(ev.Attributes))
	for _, attr := range ev.Attributes {
		attrs[attr.Key] = attr.Value
	}
	return Event{
		Type:       ev.Type,
		Contract:   attrs[AttrContractAddress],
		Attributes: attrs,
		Height:     height,
	}
}
