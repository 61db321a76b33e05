package ledger

// Reward is a redeemable item priced in points.
type Reward struct {
	ID     string
	Name   string
	Points int64
}

// Rewards is the reward marketplace, cheapest first.
var Rewards = []Reward{
	{ID: "amazon-10", Name: "₹10 Amazon Voucher", Points: 100},
	{ID: "play-50", Name: "₹50 Google Play Voucher", Points: 500},
	{ID: "premium-1m", Name: "1-Month Premium Subscription", Points: 1000},
}

// RewardStatus is a reward with eligibility for a given total.
type RewardStatus struct {
	Reward
	Eligible bool
	Needed   int64 // points still missing; 0 when eligible
}

// RewardsFor computes eligibility for every reward. Redemption is not
// supported: totals never decrease.
func RewardsFor(total int64) []RewardStatus {
	out := make([]RewardStatus, len(Rewards))
	for i, r := range Rewards {
		st := RewardStatus{Reward: r, Eligible: total >= r.Points}
		if !st.Eligible {
			st.Needed = r.Points - total
		}
		out[i] = st
	}
	return out
}

// NextReward returns the cheapest reward not yet reachable, or false when
// every reward is within reach.
func NextReward(total int64) (RewardStatus, bool) {
	for _, st := range RewardsFor(total) {
		if !st.Eligible {
			return st, true
		}
	}
	return RewardStatus{}, false
}
