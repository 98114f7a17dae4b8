package domain

import "errors"

var (
	// ErrValidation is returned when a request is missing or has malformed input
	ErrValidation = errors.New("validation failed")

	// ErrAlreadyPending is returned when the address already has a submission under review
	ErrAlreadyPending = errors.New("submission already pending review")

	// ErrAlreadyApproved is returned when the address has already been approved
	ErrAlreadyApproved = errors.New("submission already approved")

	// ErrSubmissionNotFound is returned when a submission does not exist
	ErrSubmissionNotFound = errors.New("submission not found")

	// ErrInvalidTransition is returned when a status change is not an allowed edge,
	// or the row changed underneath a concurrent reviewer
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidCredentials is returned for any failed login attempt
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenExpired is returned when a credential is past its expiry
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenInvalid is returned when a credential fails verification
	ErrTokenInvalid = errors.New("invalid token")

	// ErrRateLimited is returned when a client exceeded its request budget
	ErrRateLimited = errors.New("rate limited")

	// ErrPersistence is returned when a unit of work could not be committed
	ErrPersistence = errors.New("persistence failure")

	// ErrSignerUnavailable is returned when no external signer is reachable
	ErrSignerUnavailable = errors.New("signer unavailable")

	// ErrChainMismatch is returned when the signer cannot be moved to the required chain
	ErrChainMismatch = errors.New("signer is connected to the wrong network")

	// ErrInvalidAmount is returned when an amount is not a positive decimal
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientFunds is returned when the signer balance is below the requested amount
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrPendingUnconfirmed is returned when a dispatched transfer was not confirmed
	// before the wait deadline. The transfer may still land.
	ErrPendingUnconfirmed = errors.New("transfer dispatched but not yet confirmed")

	// ErrTransferReverted is returned when the ledger included the transfer with a failed status
	ErrTransferReverted = errors.New("transfer reverted")

	// ErrStaleSession is returned when the signer's account or network changed since
	// the session was established
	ErrStaleSession = errors.New("signer session is stale, re-authenticate network")
)
