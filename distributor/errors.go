package distributor

import "errors"

// Errors returned by Distributor operations. Detail is attached with %w, so
// match with errors.Is.
var (
	ErrUnauthorized        = errors.New("distributor: caller is not the administrator")
	ErrInvalidParameters   = errors.New("distributor: invalid cohort parameters")
	ErrCohortDoesNotExist  = errors.New("distributor: cohort does not exist")
	ErrDistributionEnded   = errors.New("distributor: distribution ended")
	ErrDistributionOngoing = errors.New("distributor: distribution ongoing")
	ErrCliffNotReached     = errors.New("distributor: cliff not reached")
	ErrInvalidProof        = errors.New("distributor: invalid proof")
	ErrAlreadyWithdrawn    = errors.New("distributor: nothing to withdraw")

	// errPanicked closes the scope of an operation that is unwinding from a
	// panic, so that its changes are reverted before the panic propagates.
	errPanicked = errors.New("distributor: operation panicked")
)
