package constants

// SaveStatus is the outcome a sink reports for one record.
type SaveStatus string

// Stable values (logged and counted as-is).
const (
	SaveStatusSaved     SaveStatus = "SAVED"     // row written
	SaveStatusDuplicate SaveStatus = "DUPLICATE" // message id already stored
)
