package evm

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"crosschain-verification/internal/events"
	"crosschain-verification/internal/voting"
)

// contractCallSig is the topic of the gateway's ContractCall event:
// ContractCall(address indexed sender, string destinationChain,
// string destinationContractAddress, bytes32 indexed payloadHash, bytes payload).
var contractCallSig = gethcrypto.Keccak256Hash([]byte("ContractCall(address,string,string,bytes32,bytes)"))

var contractCallData = abi.Arguments{
	{Name: "destinationChain", Type: mustABIType("string")},
	{Name: "destinationContractAddress", Type: mustABIType("string")},
	{Name: "payload", Type: mustABIType("bytes")},
}

func mustABIType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// VerifyMessage decides the vote for one claimed message given the evidence
// for its transaction. The log at the message's event index must have been
// emitted by the expected gateway and match the message field for field.
// Evidence is remote input: irregularities of any kind count as non-matching
// and yield a failed vote, never an error.
func VerifyMessage(gateway common.Address, evidence TxEvidence, msg events.Message) voting.Vote {
	if !evidence.Success {
		return voting.VoteFailedOnChain
	}
	if evidence.TxID != msg.TxID {
		return voting.VoteFailedOnChain
	}
	if uint64(msg.EventIndex) >= uint64(len(evidence.Logs)) {
		return voting.VoteFailedOnChain
	}
	log := evidence.Logs[msg.EventIndex]
	if log.Address != gateway {
		return voting.VoteFailedOnChain
	}
	if len(log.Topics) != 3 || log.Topics[0] != contractCallSig {
		return voting.VoteFailedOnChain
	}
	if common.BytesToAddress(log.Topics[1].Bytes()) != msg.SourceAddress {
		return voting.VoteFailedOnChain
	}
	if log.Topics[2] != msg.PayloadHash {
		return voting.VoteFailedOnChain
	}

	values, err := contractCallData.Unpack(log.Data)
	if err != nil || len(values) < 2 {
		return voting.VoteFailedOnChain
	}
	destChainRaw, ok := values[0].(string)
	if !ok {
		return voting.VoteFailedOnChain
	}
	destChain, err := events.ParseChainName(destChainRaw)
	if err != nil || destChain != msg.DestinationChain {
		return voting.VoteFailedOnChain
	}
	destAddress, ok := values[1].(string)
	if !ok || destAddress != msg.DestinationAddress {
		return voting.VoteFailedOnChain
	}

	return voting.VoteSucceededOnChain
}
