package domain

const (
	// LoginChallengePrefix prefixes the lowercase address in the admin login message
	LoginChallengePrefix = "Login to Admin Dashboard: "

	// NativeDecimals is the precision of the ledger's base asset
	NativeDecimals = 18

	// Gas ceilings used when dispatching transfers
	NativeTransferGasLimit uint64 = 21_000
	TokenTransferGasLimit  uint64 = 100_000

	// Event subjects
	SubjectSubmissionApproved = "onboarding.submission.approved"
	SubjectTransferRecorded   = "ledger.transfer.recorded"
)

// LoginChallenge returns the canonical message an admin signs to log in
func LoginChallenge(address string) string {
	return LoginChallengePrefix + NormalizeAddress(address)
}
