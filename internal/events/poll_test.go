package events

import (
	"testing"

	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testGateway     = "0x4f4495243837681061c4743b74b3eedf548d56a5"
	testSource      = "0x09635f643e140090a9a8dcd712ed6285858cebef"
	testTxID        = "dfaf64de66510723f2efbacd7ead3c4f8c856aed1afc2cb30254552aeda47312"
	testPayloadHash = "0x9991faa1f435675f49a19098d7146d4fa07607a932914bc339a9abb8f3a32eac"
)

func pollStartedEvent() Event {
	return Event{
		Type:     PollStartedType,
		Contract: "axelar1contract",
		Attributes: map[string]string{
			AttrContractAddress:      "axelar1contract",
			"poll_id":                `"100"`,
			"source_gateway_address": testGateway,
			"expires_at":             "100",
			"participants":           `["axelar1alice","axelar1bob"]`,
			"messages": `[{"tx_id":"` + testTxID + `","event_index":1,` +
				`"destination_address":"0x3e56f0d4497ac44993d9ea272d4707f8be6b42a6",` +
				`"destination_chain":"Polygon",` +
				`"source_address":"` + testSource + `",` +
				`"payload_hash":"` + testPayloadHash + `"}]`,
		},
		Height: 42,
	}
}

func TestFromABCI(t *testing.T) {
	ev := FromABCI(7, abci.Event{
		Type: "wasm-something",
		Attributes: []abci.EventAttribute{
			{Key: AttrContractAddress, Value: "axelar1contract"},
			{Key: "poll_id", Value: `"3"`},
		},
	})

	assert.Equal(t, "wasm-something", ev.Type)
	assert.Equal(t, "axelar1contract", ev.Contract)
	assert.Equal(t, int64(7), ev.Height)
	assert.Equal(t, `"3"`, ev.Attributes["poll_id"])
}

func TestParsePollStarted(t *testing.T) {
	poll, err := ParsePollStarted(pollStartedEvent())
	require.NoError(t, err)

	assert.Equal(t, "100", poll.PollID.String())
	assert.Equal(t, common.HexToAddress(testGateway), poll.SourceGatewayAddress)
	assert.Equal(t, uint64(100), poll.ExpiresAt)
	assert.Equal(t, []string{"axelar1alice", "axelar1bob"}, poll.Participants)

	require.Len(t, poll.Messages, 1)
	msg := poll.Messages[0]
	assert.Equal(t, common.HexToHash(testTxID), msg.TxID)
	assert.Equal(t, uint32(1), msg.EventIndex)
	assert.Equal(t, ChainName("polygon"), msg.DestinationChain)
	assert.Equal(t, "0x3e56f0d4497ac44993d9ea272d4707f8be6b42a6", msg.DestinationAddress)
	assert.Equal(t, common.HexToAddress(testSource), msg.SourceAddress)
	assert.Equal(t, common.HexToHash(testPayloadHash), msg.PayloadHash)
}

func TestParsePollStartedTypeMismatch(t *testing.T) {
	ev := pollStartedEvent()
	ev.Type = "transfer"

	_, err := ParsePollStarted(ev)
	require.ErrorIs(t, err, ErrEventTypeMismatch)
}

func TestParsePollStartedMalformed(t *testing.T) {
	corrupt := func(key, value string) Event {
		ev := pollStartedEvent()
		if value == "" {
			delete(ev.Attributes, key)
		} else {
			ev.Attributes[key] = value
		}
		return ev
	}

	tests := []struct {
		name  string
		event Event
	}{
		{"missing poll_id", corrupt("poll_id", "")},
		{"garbage poll_id", corrupt("poll_id", `"abc"`)},
		{"missing gateway", corrupt("source_gateway_address", "")},
		{"invalid gateway", corrupt("source_gateway_address", "not-an-address")},
		{"missing expires_at", corrupt("expires_at", "")},
		{"garbage expires_at", corrupt("expires_at", "soon")},
		{"missing participants", corrupt("participants", "")},
		{"garbage participants", corrupt("participants", "{")},
		{"missing messages", corrupt("messages", "")},
		{"garbage messages", corrupt("messages", "[{]")},
		{"short tx hash", corrupt("messages", `[{"tx_id":"dead","event_index":0,"destination_address":"0x1","destination_chain":"polygon","source_address":"`+testSource+`","payload_hash":"`+testPayloadHash+`"}]`)},
		{"bad chain name", corrupt("messages", `[{"tx_id":"`+testTxID+`","event_index":0,"destination_address":"0x1","destination_chain":"has space","source_address":"`+testSource+`","payload_hash":"`+testPayloadHash+`"}]`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePollStarted(tt.event)
			require.Error(t, err)
			assert.NotErrorIs(t, err, ErrEventTypeMismatch)
		})
	}
}

func TestParsePollStartedEmptyMessages(t *testing.T) {
	ev := pollStartedEvent()
	ev.Attributes["messages"] = `[]`

	poll, err := ParsePollStarted(ev)
	require.NoError(t, err)
	assert.Empty(t, poll.Messages)
}

func TestParseChainName(t *testing.T) {
	name, err := ParseChainName("Ethereum")
	require.NoError(t, err)
	assert.Equal(t, ChainName("ethereum"), name)

	_, err = ParseChainName("")
	assert.Error(t, err)

	_, err = ParseChainName("chain:one")
	assert.Error(t, err)
}
