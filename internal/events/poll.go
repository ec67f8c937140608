package events

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"crosschain-verification/internal/voting"
)

// PollStartedType tags the voting-verifier event announcing a new messages poll.
const PollStartedType = "wasm-messages_poll_started"

// ErrEventTypeMismatch marks an event that is simply not a poll-started event.
// Callers must treat it as a skip, never as a failure; any other decode error
// means the event matched the tag but carried an undecodable payload.
var ErrEventTypeMismatch = errors.New("event type mismatch")

// ChainName identifies a chain in the router namespace. Names are lowercase
// and free of separator characters.
type ChainName string

// ParseChainName validates and normalizes a chain name.
func ParseChainName(s string) (ChainName, error) {
	if s == "" {
		return "", fmt.Errorf("chain name is empty")
	}
	if strings.ContainsAny(s, ": \t\n") {
		return "", fmt.Errorf("chain name %q contains separator characters", s)
	}
	return ChainName(strings.ToLower(s)), nil
}

// Message is one claimed cross-chain event instance, immutable once decoded.
type Message struct {
	TxID               common.Hash
	EventIndex         uint32
	DestinationAddress string
	DestinationChain   ChainName
	SourceAddress      common.Address
	PayloadHash        common.Hash
}

// PollStarted is one voting round announcement.
type PollStarted struct {
	PollID               voting.PollID
	SourceGatewayAddress common.Address
	Messages             []Message
	Participants         []string
	ExpiresAt            uint64
}

type wireMessage struct {
	TxID               string `json:"tx_id"`
	EventIndex         uint32 `json:"event_index"`
	DestinationAddress string `json:"destination_address"`
	DestinationChain   string `json:"destination_chain"`
	SourceAddress      string `json:"source_address"`
	PayloadHash        string `json:"payload_hash"`
}

// ParsePollStarted decodes a poll-started event. Events with a different type
// tag fail with ErrEventTypeMismatch; a matching tag with missing or
// unparseable attributes is a hard decode error naming the offending field.
func ParsePollStarted(ev Event) (PollStarted, error) {
	if ev.Type != PollStartedType {
		return PollStarted{}, fmt.Errorf("%w: got %q", ErrEventTypeMismatch, ev.Type)
	}

	pollIDAttr, err := attr(ev, "poll_id")
	if err != nil {
		return PollStarted{}, err
	}
	pollID, err := voting.ParsePollID(pollIDAttr)
	if err != nil {
		return PollStarted{}, fmt.Errorf("attribute poll_id: %w", err)
	}

	gatewayAttr, err := attr(ev, "source_gateway_address")
	if err != nil {
		return PollStarted{}, err
	}
	gateway, err := parseAddress(gatewayAttr)
	if err != nil {
		return PollStarted{}, fmt.Errorf("attribute source_gateway_address: %w", err)
	}

	expiresAttr, err := attr(ev, "expires_at")
	if err != nil {
		return PollStarted{}, err
	}
	var expiresAt uint64
	if err := json.Unmarshal([]byte(unquote(expiresAttr)), &expiresAt); err != nil {
		return PollStarted{}, fmt.Errorf("attribute expires_at: %w", err)
	}

	participantsAttr, err := attr(ev, "participants")
	if err != nil {
		return PollStarted{}, err
	}
	var participants []string
	if err := json.Unmarshal([]byte(participantsAttr), &participants); err != nil {
		return PollStarted{}, fmt.Errorf("attribute participants: %w", err)
	}

	messagesAttr, err := attr(ev, "messages")
	if err != nil {
		return PollStarted{}, err
	}
	var wire []wireMessage
	if err := json.Unmarshal([]byte(messagesAttr), &wire); err != nil {
		return PollStarted{}, fmt.Errorf("attribute messages: %w", err)
	}
	messages := make([]Message, len(wire))
	for i, wm := range wire {
		msg, err := wm.decode()
		if err != nil {
			return PollStarted{}, fmt.Errorf("attribute messages[%d]: %w", i, err)
		}
		messages[i] = msg
	}

	return PollStarted{
		PollID:               pollID,
		SourceGatewayAddress: gateway,
		Messages:             messages,
		Participants:         participants,
		ExpiresAt:            expiresAt,
	}, nil
}

func (wm wireMessage) decode() (Message, error) {
	txID, err := parseHash(wm.TxID)
	if err != nil {
		return Message{}, fmt.Errorf("tx_id: %w", err)
	}
	payloadHash, err := parseHash(wm.PayloadHash)
	if err != nil {
		return Message{}, fmt.Errorf("payload_hash: %w", err)
	}
	source, err := parseAddress(wm.SourceAddress)
	if err != nil {
		return Message{}, fmt.Errorf("source_address: %w", err)
	}
	chain, err := ParseChainName(wm.DestinationChain)
	if err != nil {
		return Message{}, fmt.Errorf("destination_chain: %w", err)
	}
	if wm.DestinationAddress == "" {
		return Message{}, fmt.Errorf("destination_address is empty")
	}
	return Message{
		TxID:               txID,
		EventIndex:         wm.EventIndex,
		DestinationAddress: wm.DestinationAddress,
		DestinationChain:   chain,
		SourceAddress:      source,
		PayloadHash:        payloadHash,
	}, nil
}

func attr(ev Event, key string) (string, error) {
	v, ok := ev.Attributes[key]
	if !ok {
		return "", fmt.Errorf("attribute %s missing", key)
	}
	return v, nil
}

// unquote strips the JSON string quoting CosmWasm applies to numeric
// attribute values serialized as strings.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func parseHash(s string) (common.Hash, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	if len(raw) != common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid hash %q: got %d bytes, want %d", s, len(raw), common.HashLength)
	}
	return common.BytesToHash(raw), nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}
