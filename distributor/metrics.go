package distributor

import "github.com/guildxyz/club-contracts/metrics"

type distributorMetrics struct {
	cohorts        *metrics.Gauge
	claims         *metrics.Counter
	claimsZero     *metrics.Counter
	claimsRejected *metrics.Counter
	proofsInvalid  *metrics.Counter
	proofDepth     *metrics.Histogram
	withdrawals    *metrics.Counter
}

func newDistributorMetrics(r *metrics.Registry) distributorMetrics {
	return distributorMetrics{
		cohorts:        r.Gauge(metrics.CohortsRegistered),
		claims:         r.Counter(metrics.ClaimsCommitted),
		claimsZero:     r.Counter(metrics.ClaimsZero),
		claimsRejected: r.Counter(metrics.ClaimsRejected),
		proofsInvalid:  r.Counter(metrics.ProofsInvalid),
		proofDepth:     r.Histogram(metrics.ProofDepth),
		withdrawals:    r.Counter(metrics.Withdrawals),
	}
}
