// internal/app/workflow/errors.go
package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrNoChange means a proposal's field values all matched the
	// current record after normalization. Empty proposals are never
	// created.
	ErrNoChange = errors.New("no field differs from the current record")

	// ErrNotFound means the proposal or its subject person does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflictScan marks a failed conflict computation or
	// back-reference write. Propose never returns it; the proposal is
	// created with the references it could record, and the failure is
	// logged wrapping this sentinel and counted.
	ErrConflictScan = errors.New("conflict computation failed")
)

// Approval step names carried by PartialApplyError.
const (
	StepApplyPerson   = "apply_person"
	StepAppendHistory = "append_history"
	StepMarkApproved  = "mark_approved"
	StepCascadeReject = "cascade_reject"
)

// PartialApplyError reports a failure between the side-effect steps of
// an approval. Earlier steps have already landed; there is no rollback.
// Step names which steps failed, so a caller can decide whether a
// re-invocation is safe.
type PartialApplyError struct {
	Step string
	Err  error
}

func (e *PartialApplyError) Error() string {
	return fmt.Sprintf("approval left partial state at step %s: %v", e.Step, e.Err)
}

func (e *PartialApplyError) Unwrap() error { return e.Err }
