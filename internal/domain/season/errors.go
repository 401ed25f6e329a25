package season

import "errors"

// Sentinel kinds for records that violate the caller contract.
var (
	ErrMissingName    = errors.New("record has no player name")
	ErrMissingMatchID = errors.New("record has no match id")
)
