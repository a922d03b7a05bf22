package presenter

import (
	"github.com/fbonnet/fiscal-forecast/internal/domain"
)

// TimelineMonth groups the schedule events of one calendar month for display.
type TimelineMonth struct {
	Month  string                 `json:"month"`
	Events []domain.ScheduleEvent `json:"events"`
}

// TimelinePresenter flattens a snapshot's schedule into chronological,
// month-grouped events.
type TimelinePresenter struct {
	snap *domain.FiscalSnapshot
}

// NewTimelinePresenter creates a presenter over one snapshot.
func NewTimelinePresenter(snap *domain.FiscalSnapshot) *TimelinePresenter {
	return &TimelinePresenter{snap: snap}
}

// GetEvents returns the schedule grouped by month. The schedule is already
// sorted by date with the organization tie-break, so grouping preserves the
// chronological order and the LOCKED/PENDING status of every event.
func (p *TimelinePresenter) GetEvents() []TimelineMonth {
	var months []TimelineMonth
	for _, ev := range p.snap.Schedule {
		key := monthKey(ev.Date)
		if len(months) == 0 || months[len(months)-1].Month != key {
			months = append(months, TimelineMonth{Month: key})
		}
		last := &months[len(months)-1]
		last.Events = append(last.Events, ev)
	}
	return months
}

func monthKey(date string) string {
	if len(date) >= 7 {
		return date[:7]
	}
	return date
}
