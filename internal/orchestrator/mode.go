package orchestrator

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects how a screening request is served.
type Mode string

const (
	// ModeOnline only uses the API. Failures are returned to the caller.
	ModeOnline Mode = "online"
	// ModeFallback tries the API and simulates when it is unreachable.
	ModeFallback Mode = "fallback"
	// ModeSimulate never calls the API.
	ModeSimulate Mode = "simulate"
)

var ErrUnknownMode = errors.New("unknown screening mode")

// ParseMode is case insensitive. An empty name means ModeFallback.
func ParseMode(name string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(name))) {
	case "", ModeFallback:
		return ModeFallback, nil
	case ModeOnline:
		return ModeOnline, nil
	case ModeSimulate:
		return ModeSimulate, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
}

func (m Mode) String() string { return string(m) }

// Source tells where a result came from.
type Source string

const (
	SourceAPI        Source = "api"
	SourceSimulation Source = "simulation"
)

// State is carried between runs by the caller. Offline is set after the API
// failed in fallback mode, so later runs skip it until a probe succeeds.
type State struct {
	Offline bool
}
