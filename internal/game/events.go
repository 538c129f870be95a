package game

import (
	"time"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/strategy"
)

// EventType represents a game event type with type safety
type EventType string

// EventType constants for engine events
const (
	EventTypeRoundStart   EventType = "round_start"
	EventTypeShuffle      EventType = "shuffle"
	EventTypeCardDealt    EventType = "card_dealt"
	EventTypeDealComplete EventType = "deal_complete"
	EventTypePlayerAction EventType = "player_action"
	EventTypeHoleRevealed EventType = "hole_revealed"
	EventTypeDealerAction EventType = "dealer_action"
	EventTypeHandSettled  EventType = "hand_settled"
	EventTypeRoundEnd     EventType = "round_end"
	EventTypeStateChange  EventType = "state_change"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event is anything the engine publishes to its subscribers.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

// stamp is embedded by every event to carry its timestamp.
type stamp struct {
	at time.Time
}

func (s stamp) Timestamp() time.Time { return s.at }

// RoundStartEvent is published when a bet is accepted, before any card is dealt.
type RoundStartEvent struct {
	stamp
	RoundID string
	Round   int
	Bet     int
	Balance int // after the bet was deducted
}

func (e RoundStartEvent) EventType() EventType { return EventTypeRoundStart }

// ShuffleEvent is published whenever the shoe is rebuilt and the count reset.
type ShuffleEvent struct {
	stamp
	Cards int
}

func (e ShuffleEvent) EventType() EventType { return EventTypeShuffle }

// CardDealtEvent is published for every card leaving the shoe.
type CardDealtEvent struct {
	stamp
	RoundID   string
	To        Recipient
	HandIndex int
	Card      deck.Card
	FaceDown  bool
}

func (e CardDealtEvent) EventType() EventType { return EventTypeCardDealt }

// DealCompleteEvent is published once the initial four cards are out.
type DealCompleteEvent struct {
	stamp
	RoundID     string
	PlayerCards []deck.Card
	DealerUp    deck.Card
	Score       int
	Natural     bool
}

func (e DealCompleteEvent) EventType() EventType { return EventTypeDealComplete }

// PlayerActionEvent is published after a player action has been applied.
type PlayerActionEvent struct {
	stamp
	RoundID   string
	Action    strategy.Action
	HandIndex int
	HandCount int
	Card      deck.Card // card drawn by a hit or double
	Score     int
	Bust      bool
	Bet       int

	// Set for splits only.
	NewHandIndex int
	NewHandScore int
}

func (e PlayerActionEvent) EventType() EventType { return EventTypePlayerAction }

// HoleCardRevealedEvent is published when the dealer turns over the hole card.
type HoleCardRevealedEvent struct {
	stamp
	RoundID string
	Card    deck.Card
	Score   int
}

func (e HoleCardRevealedEvent) EventType() EventType { return EventTypeHoleRevealed }

// DealerMove is a step of the dealer's fixed drawing rule.
type DealerMove int

const (
	DealerHits DealerMove = iota
	DealerStands
	DealerBusts
)

// String returns the string representation of a dealer move
func (m DealerMove) String() string {
	switch m {
	case DealerHits:
		return "hits"
	case DealerStands:
		return "stands"
	default:
		return "busts"
	}
}

// DealerActionEvent is published for each dealer draw and for the final stand or bust.
type DealerActionEvent struct {
	stamp
	RoundID string
	Move    DealerMove
	Card    deck.Card // set for DealerHits
	Score   int
}

func (e DealerActionEvent) EventType() EventType { return EventTypeDealerAction }

// HandSettledEvent is published for each player hand during settlement.
type HandSettledEvent struct {
	stamp
	RoundID     string
	Result      HandResult
	HandCount   int
	DealerScore int
	DealerBust  bool
}

func (e HandSettledEvent) EventType() EventType { return EventTypeHandSettled }

// RoundEndEvent is published after every hand has settled.
type RoundEndEvent struct {
	stamp
	Result RoundResult
}

func (e RoundEndEvent) EventType() EventType { return EventTypeRoundEnd }

// StateChangeEvent is published on every round state transition.
type StateChangeEvent struct {
	stamp
	RoundID string
	From    RoundState
	To      RoundState
}

func (e StateChangeEvent) EventType() EventType { return EventTypeStateChange }

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event Event)
}

// SubscriberFunc adapts a function to EventSubscriber.
type SubscriberFunc func(event Event)

// OnEvent calls f(event).
func (f SubscriberFunc) OnEvent(event Event) { f(event) }

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event Event)
}

// SimpleEventBus is a synchronous in-memory event bus. Subscribers run on the
// publishing goroutine in subscription order.
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() *SimpleEventBus {
	return &SimpleEventBus{
		subscribers: make([]EventSubscriber, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events. SubscriberFunc values
// are not comparable and cannot be unsubscribed.
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event Event) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}
