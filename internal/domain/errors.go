package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a visitor has no open flow session.
	ErrSessionNotFound = errors.New("assessment session not found")
	// ErrInvalidTransition is returned when an action is not allowed in the current step.
	ErrInvalidTransition = errors.New("action not allowed in current step")
	// ErrQuestionNotFound indicates the current question index is outside the catalog.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates a selected option index is invalid.
	ErrOptionNotFound = errors.New("option not found")
	// ErrSubmissionInProgress is returned when a lead is submitted twice concurrently.
	ErrSubmissionInProgress = errors.New("submission already in progress")
	// ErrSubmissionFailed wraps any failure of the lead submission.
	ErrSubmissionFailed = errors.New("lead submission failed")
	// ErrCatalogInvalid indicates the question catalog cannot drive a quiz.
	ErrCatalogInvalid = errors.New("invalid question catalog")
	// ErrCatalogNotFound indicates the catalog could not be loaded.
	ErrCatalogNotFound = errors.New("catalog not found")
	// ErrKeyNotFound is returned by key-value stores for missing keys.
	ErrKeyNotFound = errors.New("key not found")
)

// SubmitErrorMessage is the single message shown when a submission fails.
const SubmitErrorMessage = "There was an issue submitting your information. Please try again."
