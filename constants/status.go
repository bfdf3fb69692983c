package constants

// RunStatus is the canonical status for rows in contract_extractions.
type RunStatus string

// Stable values (store these exact strings in DB).
const (
	RunStatusOK     RunStatus = "OK"     // record extracted (fields may still be null)
	RunStatusFailed RunStatus = "FAILED" // document-level failure, no record
)
