package constants

// RunStatus is the canonical status for rows in extraction_runs.
type RunStatus string

// Stable values (store these exact strings in DB).
const (
	RunStatusRunning RunStatus = "RUNNING"
	RunStatusOK      RunStatus = "OK"
	RunStatusSkipped RunStatus = "SKIPPED" // already extracted, same content hash
	RunStatusFailed  RunStatus = "FAILED"
)

// Tier names which item parser produced the rows of a run.
type Tier string

const (
	TierStrict Tier = "strict"
	TierLoose  Tier = "loose"
	TierEmpty  Tier = "empty"
)
