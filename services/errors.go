package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/linesmerrill/dinebuddies-api/databases"
)

// Error kinds the services return. Callers match them with errors.Is.
var (
	ErrGuestNotAllowed              = errors.New("guests cannot do this, please create an account")
	ErrTargetNotFound               = errors.New("not found")
	ErrBusinessAccountNotFollowable = errors.New("business accounts are joined as communities, not followed")
	ErrAlreadyEdited                = errors.New("you may only edit the time once")
	ErrRestrictedAccount            = errors.New("invitation creation is restricted")
	ErrDuplicateDailyInvitation     = errors.New("you already have an active invitation")
	ErrStorageFailure               = errors.New("storage failure")

	ErrNotHost                 = errors.New("only the host can do this")
	ErrNotParticipant          = errors.New("only the host or a participant can do this")
	ErrForbidden               = errors.New("not allowed")
	ErrNotEligible             = errors.New("not eligible to join this invitation")
	ErrInvitationFull          = errors.New("invitation is full")
	ErrInvitationCancelled     = errors.New("invitation was cancelled")
	ErrInvalidStatusTransition = errors.New("meeting status can only move one step forward")
	ErrNotCompleted            = errors.New("invitation is not completed yet")
	ErrAlreadyRated            = errors.New("invitation was already rated")
	ErrAlreadyRequested        = errors.New("already requested or joined")
	ErrNotPending              = errors.New("no pending request")
	ErrNotMember               = errors.New("not a member of this community")
	ErrInvalidInput            = errors.New("invalid input")
)

// RestrictedError carries the active restriction blocking invitation creation
type RestrictedError struct {
	Reason   string
	Until    time.Time
	DaysLeft int
}

func (e *RestrictedError) Error() string {
	return fmt.Sprintf("restricted until %s, %d days left (%s)", e.Until.Format("2006-01-02"), e.DaysLeft, e.Reason)
}

// Is lets errors.Is match ErrRestrictedAccount
func (e *RestrictedError) Is(target error) bool {
	return target == ErrRestrictedAccount
}

// DuplicateInvitationError points at the invitation the user already has
type DuplicateInvitationError struct {
	ExistingID string
	Date       string
}

func (e *DuplicateInvitationError) Error() string {
	return fmt.Sprintf("you already have an active invitation on %s (%s)", e.Date, e.ExistingID)
}

// Is lets errors.Is match ErrDuplicateDailyInvitation
func (e *DuplicateInvitationError) Is(target error) bool {
	return target == ErrDuplicateDailyInvitation
}

// EligibilityError explains why a user may not join
type EligibilityError struct {
	Reason string
}

func (e *EligibilityError) Error() string {
	return e.Reason
}

// Is lets errors.Is match ErrNotEligible
func (e *EligibilityError) Is(target error) bool {
	return target == ErrNotEligible
}

// StorageError wraps a failed store call
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrStorageFailure
func (e *StorageError) Is(target error) bool {
	return target == ErrStorageFailure
}

func storageFailure(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// lookupFailure turns a failed point read into TargetNotFound or StorageFailure
func lookupFailure(op string, err error) error {
	if errors.Is(err, databases.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrTargetNotFound)
	}
	return storageFailure(op, err)
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
