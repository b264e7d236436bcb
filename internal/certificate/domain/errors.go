package domain

import (
	"errors"
	"fmt"
)

var (
	ErrBundleNotFound      = errors.New("bundle_not_found")
	ErrNoBundlesMatched    = errors.New("no_bundles_matched")
	ErrTargetRequired      = errors.New("target_account_required")
	ErrBeneficiaryRequired = errors.New("beneficiary_required")
	ErrQuantityConflict    = errors.New("quantity_and_percentage_both_set")
	ErrUnknownActionType   = errors.New("unknown_action_type")
)

// ValidationError reports one bundle field failing an issuance criteria
// check.
type ValidationError struct {
	Field    string
	Criteria string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s does not match criteria for %s", e.Field, e.Criteria)
}

// PreconditionError reports a bundle in a state that does not admit the
// requested action.
type PreconditionError struct {
	BundleID int64
	Action   ActionType
	Reason   string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("bundle %d cannot %s: %s", e.BundleID, e.Action, e.Reason)
}
