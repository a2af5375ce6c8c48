package eventbus

import (
	"context"
	"strings"
)

// EventConsumer handles the events whose routing key matches one of its
// patterns.
type EventConsumer interface {
	// EventTypes returns routing key patterns, e.g. "leave.*" or "#".
	EventTypes() []string

	// Handle processes the event.
	Handle(ctx context.Context, event *Event) error
}

// ConsumerFunc adapts a function to EventConsumer.
type ConsumerFunc struct {
	Types []string
	Fn    func(ctx context.Context, event *Event) error
}

// EventTypes returns the patterns the function is registered for.
func (c ConsumerFunc) EventTypes() []string { return c.Types }

// Handle calls Fn.
func (c ConsumerFunc) Handle(ctx context.Context, event *Event) error { return c.Fn(ctx, event) }

// MatchRoutingKey reports whether key matches a topic pattern. Words are
// separated by dots; "*" matches exactly one word and "#" zero or more.
func MatchRoutingKey(pattern, key string) bool {
	return matchWords(strings.Split(pattern, "."), strings.Split(key, "."))
}

func matchWords(pattern, key []string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case "#":
			if len(pattern) == 1 {
				return true
			}
			for i := 0; i <= len(key); i++ {
				if matchWords(pattern[1:], key[i:]) {
					return true
				}
			}
			return false
		case "*":
			if len(key) == 0 {
				return false
			}
		default:
			if len(key) == 0 || pattern[0] != key[0] {
				return false
			}
		}
		pattern, key = pattern[1:], key[1:]
	}
	return len(key) == 0
}
