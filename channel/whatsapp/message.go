package whatsapp

import (
	"fmt"
	"strings"
	"time"
)

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case DirectionInbound:
		return DirectionInbound, nil
	case DirectionOutbound:
		return DirectionOutbound, nil
	default:
		return "", fmt.Errorf("invalid direction %q", s)
	}
}

type Message struct {
	ID         string    `json:"id"`
	From       string    `json:"from"`
	Body       string    `json:"body"`
	MessageSID string    `json:"message_sid,omitempty"`
	Direction  Direction `json:"direction"`
	Timestamp  time.Time `json:"timestamp"`
}

// numberKey normalizes a phone number for set membership: the relay's
// "whatsapp:" prefix is stripped and surrounding space removed.
func numberKey(number string) string {
	number = strings.TrimSpace(number)
	number = strings.TrimPrefix(number, "whatsapp:")
	return number
}
