// Package quorum provides the ChainParams/QuorumManager collaborators
// the consensus core consumes for asset-unlock signature verification
// (§6.2), plus persistence for the quorum set itself.
package quorum

import (
	"fmt"

	"github.com/dashpay/creditbridge/consensus"
)

// StaticParams is a fixed, in-memory consensus.ChainParams: the asset-locks
// quorum type and the LLMQ size/threshold table are both known up front,
// the way a network profile (mainnet/testnet/devnet) is fixed at startup.
type StaticParams struct {
	assetLocksQuorumType uint32
	llmq                 map[uint32]consensus.LLMQParams
}

// NewStaticParams builds a StaticParams for the given asset-locks quorum
// type, with llmq describing every quorum type the chain recognizes
// (including assetLocksQuorumType itself).
func NewStaticParams(assetLocksQuorumType uint32, llmq map[uint32]consensus.LLMQParams) *StaticParams {
	cp := make(map[uint32]consensus.LLMQParams, len(llmq))
	for k, v := range llmq {
		cp[k] = v
	}
	return &StaticParams{assetLocksQuorumType: assetLocksQuorumType, llmq: cp}
}

func (p *StaticParams) AssetLocksQuorumType() uint32 { return p.assetLocksQuorumType }

func (p *StaticParams) LLMQParams(quorumType uint32) (consensus.LLMQParams, error) {
	v, ok := p.llmq[quorumType]
	if !ok {
		return consensus.LLMQParams{}, fmt.Errorf("quorum: unknown quorum type %d", quorumType)
	}
	return v, nil
}

// DevnetLLMQ100_67 is a 67-of-100 LLMQ, the devnet-sized committee used by
// the default profile (DevnetParams).
var DevnetLLMQ100_67 = consensus.LLMQParams{Size: 100, Threshold: 67}

// DevnetParams is the default single-quorum-type profile used by
// node.DefaultConfig's devnet network.
func DevnetParams() *StaticParams {
	const assetLocksQuorumType = 1
	return NewStaticParams(assetLocksQuorumType, map[uint32]consensus.LLMQParams{
		assetLocksQuorumType: DevnetLLMQ100_67,
	})
}
