package regbus

import "sync"

// EventType distinguishes the kinds of register event a client can
// subscribe to.
type EventType string

const (
	// EventAssign fires when a register's shadow value is scheduled.
	EventAssign EventType = "assign"
	// EventFlip fires when a register's shadow value commits.
	EventFlip EventType = "flip"
)

// BroadcastEvent is sent to every WebSocket client whose subscription
// matches it.
type BroadcastEvent struct {
	Type     EventType `json:"type"`
	Register string    `json:"register"`
	Hex      string    `json:"hex"`
}

// Subscription represents one client's filtered view of the event stream.
type Subscription struct {
	Register   string // empty = all registers
	EventTypes map[EventType]bool
	Channel    chan BroadcastEvent
}

// Broadcaster fans register-change events out to subscribed clients,
// grounded on the same register/unregister/broadcast goroutine loop the
// teacher uses for its VM-state event stream, adapted here to register
// names instead of session IDs.
type Broadcaster struct {
	mu            sync.RWMutex
	subscriptions map[*Subscription]bool
	broadcast     chan BroadcastEvent
	register      chan *Subscription
	unregister    chan *Subscription
	done          chan struct{}
}

// NewBroadcaster creates and starts a running broadcaster.
func NewBroadcaster() *Broadcaster {
	b := &Broadcaster{
		subscriptions: make(map[*Subscription]bool),
		broadcast:     make(chan BroadcastEvent, 256),
		register:      make(chan *Subscription),
		unregister:    make(chan *Subscription),
		done:          make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broadcaster) run() {
	for {
		select {
		case sub := <-b.register:
			b.mu.Lock()
			b.subscriptions[sub] = true
			b.mu.Unlock()

		case sub := <-b.unregister:
			b.mu.Lock()
			if b.subscriptions[sub] {
				delete(b.subscriptions, sub)
				close(sub.Channel)
			}
			b.mu.Unlock()

		case event := <-b.broadcast:
			b.mu.RLock()
			for sub := range b.subscriptions {
				if sub.Register != "" && sub.Register != event.Register {
					continue
				}
				if len(sub.EventTypes) > 0 && !sub.EventTypes[event.Type] {
					continue
				}
				select {
				case sub.Channel <- event:
				default:
					// slow client, drop this event rather than block
				}
			}
			b.mu.RUnlock()

		case <-b.done:
			b.mu.Lock()
			for sub := range b.subscriptions {
				close(sub.Channel)
			}
			b.subscriptions = make(map[*Subscription]bool)
			b.mu.Unlock()
			return
		}
	}
}

// Subscribe registers a new subscription; regName == "" matches every
// register, and an empty eventTypes matches every event type.
func (b *Broadcaster) Subscribe(regName string, eventTypes []EventType) *Subscription {
	m := make(map[EventType]bool, len(eventTypes))
	for _, et := range eventTypes {
		m[et] = true
	}
	sub := &Subscription{
		Register:   regName,
		EventTypes: m,
		Channel:    make(chan BroadcastEvent, 64),
	}
	b.register <- sub
	return sub
}

// Unsubscribe removes sub and closes its channel.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	b.unregister <- sub
}

// Broadcast enqueues event for delivery, dropping it if the internal
// buffer is full rather than blocking the caller.
func (b *Broadcaster) Broadcast(event BroadcastEvent) {
	select {
	case b.broadcast <- event:
	default:
	}
}

// Close shuts the broadcaster down, closing every live subscription.
func (b *Broadcaster) Close() {
	close(b.done)
}

// SubscriptionCount reports the number of live subscriptions.
func (b *Broadcaster) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions)
}
