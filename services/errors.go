package services

import "errors"

var (
	ErrExamNotFound      = errors.New("exam not found")
	ErrQuestionNotFound  = errors.New("question not found")
	ErrAnswerNotFound    = errors.New("answer not found")
	ErrExecutionNotFound = errors.New("execution not found")
	ErrAttemptNotFound   = errors.New("attempt not found")

	// InvalidState kinds.
	ErrAttemptClosed  = errors.New("attempt is already closed")
	ErrAnswerMismatch = errors.New("answer does not belong to the attempt's question")
	ErrInvalidWindow  = errors.New("exam window closes before it opens")
	ErrInvalidStatus  = errors.New("unknown exam status")

	// Score requested for an exam whose questions sum to zero points. The
	// denominator is author-controlled, so this is a data error for the
	// caller to fix, not something to retry.
	ErrNoPoints = errors.New("exam has no points to grade against")
)

// IsNotFound reports whether err is any of the missing-record kinds.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrExamNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrAnswerNotFound) ||
		errors.Is(err, ErrExecutionNotFound) ||
		errors.Is(err, ErrAttemptNotFound)
}

// IsInvalidState reports whether err is a state-conflict kind.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrAttemptClosed) ||
		errors.Is(err, ErrAnswerMismatch) ||
		errors.Is(err, ErrInvalidWindow) ||
		errors.Is(err, ErrInvalidStatus)
}
