package report

import "errors"

var (
	// ErrMissingOpponent indicates a match without an opponent name.
	ErrMissingOpponent = errors.New("opponent name required")
	// ErrMissingScore indicates a match without both score fields.
	ErrMissingScore = errors.New("home and away score required")
	// ErrMissingCategory indicates a training without a category.
	ErrMissingCategory = errors.New("training category required")
	// ErrNothingToReport indicates no locked segment is available for the request.
	ErrNothingToReport = errors.New("no locked segments to report")
	// ErrReportTimeout indicates the job did not finish within the poll limit.
	ErrReportTimeout = errors.New("report generation timed out")
	// ErrReportFailed indicates repeated network failures ended the attempt.
	ErrReportFailed = errors.New("report generation failed")
	// ErrUnexpectedResponse indicates a response that is neither pending nor complete.
	ErrUnexpectedResponse = errors.New("unexpected report response")
	// ErrCancelled indicates the attempt was cancelled.
	ErrCancelled = errors.New("report generation cancelled")
	// ErrReportInProgress indicates an attempt is already running for the workspace.
	ErrReportInProgress = errors.New("report generation already in progress")
	// ErrNoActiveReport indicates there is no running attempt to cancel.
	ErrNoActiveReport = errors.New("no active report generation")
)
