package database

import "errors"

// ErrSubmissionNotFound is returned when a submission is not found.
var ErrSubmissionNotFound = errors.New("submission not found")
