package metrics

// Metric names shared by the distributor and the proof tooling. Components
// resolve them against the Registry they were configured with.
const (
	// CohortsRegistered tracks the number of cohorts in the registry.
	CohortsRegistered = "distributor.cohorts"
	// ClaimsCommitted counts claims that committed, including zero releases.
	ClaimsCommitted = "distributor.claims"
	// ClaimsZero counts committed claims that released nothing.
	ClaimsZero = "distributor.claims_zero"
	// ClaimsRejected counts claims that failed any gate.
	ClaimsRejected = "distributor.claims_rejected"
	// ProofsInvalid counts claims rejected by proof verification.
	ProofsInvalid = "distributor.proofs_invalid"
	// ProofDepth records the number of steps in submitted proofs.
	ProofDepth = "distributor.proof_depth"
	// Withdrawals counts successful balance sweeps.
	Withdrawals = "distributor.withdrawals"

	// TreeLeaves tracks the leaf count of the last tree built by the tooling.
	TreeLeaves = "merkletool.leaves"
	// TreeBuildTime records tree build and proof extraction time in ms.
	TreeBuildTime = "merkletool.build_ms"
)
