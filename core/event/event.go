package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is what subscribers receive. Payload type depends on the name; see
// Names for the payload carried by each built-in event.
type Event struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Payload   any       `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

func newEvent(name string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Name:      name,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
}
