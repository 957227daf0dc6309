package tracker

import "errors"

var (
	// ErrStaleDay marks a write aimed at a date other than today. It is
	// reported through PromotionResult and never returned as a failure.
	ErrStaleDay = errors.New("tracker: stale day")
	// ErrDuplicateDate is an insert race on an existing date. Inserts skip on
	// conflict, so it only surfaces in logs.
	ErrDuplicateDate = errors.New("tracker: duplicate date")
	// ErrFutureDate rejects a mirrored record dated after today. Storing it
	// would make the latest record run ahead of the local day and stop
	// Reconcile from filling the days in between.
	ErrFutureDate  = errors.New("tracker: record date is after today")
	ErrPersistence = errors.New("tracker: persistence failure")
	ErrInvalidItem = errors.New("tracker: invalid routine item")
)
