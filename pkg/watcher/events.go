package watcher

// EventType defines the type of event being broadcast.
type EventType string

const (
	EventHeadUpdated EventType = "head_updated"
	EventViewChanged EventType = "view_changed"
	EventStatus      EventType = "status"
	EventError       EventType = "error"
)

// Event represents a hub event. Data is a models.ChainHead for head
// updates, a viewstate.Key for view changes and a string otherwise.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

// Subscriber is a channel that receives events.
type Subscriber chan Event
