package optimize

import "errors"

var (
	ErrOptionExists      = errors.New("decision makers option already exists")
	ErrCombinationLimit  = errors.New("combination limit too small")
	ErrNonPositiveBudget = errors.New("budget must be positive")
	ErrNoLevers          = errors.New("case has no internal variable inputs")
	ErrNotAppreciated    = errors.New("scenario has not been appreciated")
)
