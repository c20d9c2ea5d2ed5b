package analyses

import "errors"

// ErrNotAnalyzed indicates no assessment has been generated yet.
var ErrNotAnalyzed = errors.New("analysis not generated")
