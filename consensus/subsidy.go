package consensus

const (
	emissionSpeedFactor   = 2
	tailEmissionPerBlock  = 10 * COIN
)

// BlockSubsidy computes the coinbase reward due at height h, given the sum
// of subsidy-only (excluding fees) payouts for heights 1..h-1. This is
// ambient chain plumbing the credit-pool core needs a concrete coinbase to
// validate against, not part of the bridge's own invariants.
func BlockSubsidy(height uint64, alreadyGenerated uint64) uint64 {
	if height == 0 {
		return 0
	}
	if alreadyGenerated >= SubsidyTotalMined {
		return tailEmissionPerBlock
	}
	remaining := SubsidyTotalMined - alreadyGenerated
	baseReward := remaining >> emissionSpeedFactor
	if baseReward < tailEmissionPerBlock {
		return tailEmissionPerBlock
	}
	return baseReward
}
