package reports

import "errors"

// ErrNoReport indicates no report has been generated yet.
var ErrNoReport = errors.New("report not generated")
