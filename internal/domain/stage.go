package domain

import "fmt"

// Stage identifies where a certification pipeline currently is, or where it
// failed. Terminal stages are StageSubmitted and StageFailed.
type Stage string

const (
	StageCollectingMetadata Stage = "COLLECTING_METADATA"
	StagePublishing         Stage = "PUBLISHING"
	StageIndexing           Stage = "INDEXING"
	StageMetadataAssembled  Stage = "METADATA_ASSEMBLED"
	StageTxBuilt            Stage = "TX_BUILT"
	StageTxSigned           Stage = "TX_SIGNED"
	StageSubmitted          Stage = "TX_SUBMITTED"
	StageFailed             Stage = "FAILED"
)

func (s Stage) Terminal() bool {
	return s == StageSubmitted || s == StageFailed
}

// StageError tags a pipeline failure with the stage it occurred in, so the
// caller can tell "pinned but not yet on chain" from total failure.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedAt wraps err with the stage it interrupted.
func FailedAt(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}
