package domain

// Direction is the intent a voter holds towards a votable. DirectionDefault
// covers both "never voted" and "retracted": a retracted vote keeps its
// record with this direction instead of being deleted.
type Direction int8

const (
	DirectionDefault Direction = 0
	DirectionUp      Direction = 1
	DirectionDown    Direction = -1
)

// ParseDirection maps the wire integer onto a Direction. The mapping is
// total: anything other than 1 or -1 collapses to DirectionDefault.
func ParseDirection(raw int) Direction {
	switch raw {
	case 1:
		return DirectionUp
	case -1:
		return DirectionDown
	default:
		return DirectionDefault
	}
}

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	default:
		return "default"
	}
}

// Delta returns the net-vote adjustment a shard counter takes when a voter
// transitions from prev to next. Callers with no prior vote record pass
// DirectionDefault as prev; the two cases carry the same weight.
//
// Switching between up and down moves the counter by two because the shards
// hold net votes, not raw tallies.
func Delta(prev, next Direction) int64 {
	if prev == next {
		return 0
	}
	return int64(next) - int64(prev)
}
