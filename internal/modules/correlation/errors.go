package correlation

import "errors"

// ErrInvalidRequest marks a request rejected before any computation:
// ticker count out of range, duplicates, or a malformed threshold.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNoData marks a valid request against a session with no stored records
var ErrNoData = errors.New("no analysis results")
