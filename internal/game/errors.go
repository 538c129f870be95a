package game

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBet is matched by every *InvalidBetError.
	ErrInvalidBet = errors.New("invalid bet")
	// ErrActionNotAllowed is returned when an action's eligibility guard fails.
	// Nothing changes when it is returned.
	ErrActionNotAllowed = errors.New("action not allowed")
	// ErrWrongState is returned when a command is issued in a phase that does not accept it.
	ErrWrongState = errors.New("wrong round state")
	// ErrBusy is returned while another command or a dealer step is in progress.
	// The attempt is ignored, not queued.
	ErrBusy = errors.New("engine busy")
	// ErrShoeTooSmall is returned by New when the reshuffle reserve cannot cover a round.
	ErrShoeTooSmall = errors.New("shoe reserve too small")
)

// InvalidBetError describes a rejected bet.
type InvalidBetError struct {
	Input   string
	Amount  int
	Balance int
	Reason  string
}

func (e *InvalidBetError) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("invalid bet %q: %s", e.Input, e.Reason)
	}
	return fmt.Sprintf("invalid bet %d: %s (balance %d)", e.Amount, e.Reason, e.Balance)
}

// Is lets errors.Is(err, ErrInvalidBet) match.
func (e *InvalidBetError) Is(target error) bool {
	return target == ErrInvalidBet
}

func notAllowed(action, reason string) error {
	return fmt.Errorf("%s: %w: %s", action, ErrActionNotAllowed, reason)
}
