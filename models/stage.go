package models

// Stage names one step of a single extraction run:
//
//	Launching → Navigating → WaitingForReady → ReadingHeader →
//	EnumeratingRows → ReadingRow* → Done
//
// Any stage may end the run early with the fallback playlist.
type Stage string

const (
	StageLaunching       Stage = "launching"
	StageNavigating      Stage = "navigating"
	StageWaitingForReady Stage = "waiting_for_ready"
	StageReadingHeader   Stage = "reading_header"
	StageEnumeratingRows Stage = "enumerating_rows"
	StageReadingRow      Stage = "reading_row"
	StageDone            Stage = "done"
)
