package world

import "errors"

var (
	ErrUnknownGood     = errors.New("unknown good")
	ErrUnknownUnit     = errors.New("unknown unit type")
	ErrUnknownLocation = errors.New("unknown location")
	ErrInvalidScenario = errors.New("invalid scenario")
)
