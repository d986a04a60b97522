package voxel

// EventKind identifies the mutation an Event describes.
type EventKind uint8

const (
	EventPlaced EventKind = iota + 1
	EventRemoved
	EventRecolored
	EventCleared
)

func (k EventKind) String() string {
	switch k {
	case EventPlaced:
		return "placed"
	case EventRemoved:
		return "removed"
	case EventRecolored:
		return "recolored"
	case EventCleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// Event is emitted after a successful mutation. Cube is the cube that was
// added, removed or recolored (the new seed for EventCleared); Previous is
// only set for EventRecolored. Count is the cube count after the mutation.
type Event struct {
	Kind     EventKind
	Cube     Cube
	Previous Cube
	Count    int
}

// Listener receives grid events synchronously.
type Listener func(Event)
