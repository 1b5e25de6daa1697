package reveal

import (
	"fmt"
	"time"

	"github.com/matzehuels/alchemytree/pkg/layout"
)

// State is the playback state of a [Scheduler].
type State int

const (
	Idle State = iota
	Playing
	Paused
	Complete
)

var stateNames = [...]string{"idle", "playing", "paused", "complete"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown reveal state %q", text)
}

// Status is the progress report handed to renderers.
type Status struct {
	Cursor   int           `json:"cursor"` // Number of exposed levels
	Total    int           `json:"total"`
	State    State         `json:"state"`
	Delay    time.Duration `json:"delay"`
	Complete bool          `json:"complete"`
}

// Text returns "Step c/n", or "Complete" once every level is exposed.
func (s Status) Text() string {
	if s.Complete {
		return "Complete"
	}
	return fmt.Sprintf("Step %d/%d", s.Cursor, s.Total)
}

// SpeedText returns the current delay as "Speed: 500ms".
func (s Status) SpeedText() string {
	return "Speed: " + s.Delay.String()
}

// Snapshot is the state published to listeners after a change.
//
// Nodes and Edges are copies owned by the receiver.
type Snapshot struct {
	// Seq increases with every snapshot a scheduler publishes. Listeners
	// may receive snapshots out of order and should keep the highest.
	Seq     uint64
	BuildID string
	Status  Status
	Nodes   []layout.Node
	Edges   []layout.Edge

	// Exposed is the level revealed by the change that produced this
	// snapshot, or nil when the change was not a tick.
	Exposed *layout.Level
}
