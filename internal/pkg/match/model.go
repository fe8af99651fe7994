package match

import "github.com/suidrift/suidrift/internal/pkg/backend"

type EventKind int

const (
	// EventState carries a fresh backend snapshot. Backend status always
	// wins over any local timer state.
	EventState EventKind = iota

	// EventCountdown reports the advisory local countdown. The contract,
	// not this timer, decides real refund eligibility.
	EventCountdown

	// EventVanished means the backend no longer knows the match (404 while
	// polling). The session is over; the caller returns to the lobby.
	EventVanished

	// EventClosed means the backend reported cancelled or refunded. The
	// session is over; the caller returns to the lobby.
	EventClosed
)

type Event struct {
	Kind EventKind

	Game        *backend.GameState
	SecondsLeft int
}
