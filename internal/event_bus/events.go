package event_bus

import "github.com/pennybook/pennybook/pkg/period"

// PeriodChanged is published after every write-through save of the active
// period, so UI collaborators know to re-read the snapshot and redraw.
const PeriodChangedEvent EventType = "tracker.changed"

type PeriodChanged struct {
	Key period.Key
}
