package engine

import (
	"errors"

	"github.com/wricardo/caravan-wars/game/world"
)

var (
	ErrUnknownPlayer     = errors.New("unknown player")
	ErrUnknownLocation   = world.ErrUnknownLocation
	ErrInTransit         = errors.New("player is in transit")
	ErrSameLocation      = errors.New("destination equals current location")
	ErrNoRoute           = errors.New("no route to destination")
	ErrInsufficientStock = errors.New("not enough goods in stock")
	ErrInsufficientGold  = errors.New("not enough gold")
	ErrInsufficientCargo = errors.New("not enough cargo")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInvalidMultiplier = errors.New("time multiplier must be zero or positive")
	ErrUnknownCommand    = errors.New("unknown command")
	ErrUsage             = errors.New("bad command usage")
)
