package notify

import (
	"time"

	"github.com/polyinsider/whalewatch/internal/feed"
	"github.com/polyinsider/whalewatch/internal/store"
)

// Sink is the consuming surface: it renders alert lists and notices.
type Sink interface {
	ShowAlerts(alerts []store.Alert, updatedAt time.Time)
	ShowNotice(n Notice)
}

// Presenter turns cycle outcomes into sink calls.
type Presenter struct {
	sink Sink
	now  func() time.Time
}

// NewPresenter creates a Presenter writing to sink.
func NewPresenter(sink Sink) *Presenter {
	return &Presenter{sink: sink, now: time.Now}
}

// HandleRefresh renders a refresh outcome. err is the cycle's fetch error, if any.
func (p *Presenter) HandleRefresh(res feed.RefreshResult, err error) {
	if err != nil {
		p.sink.ShowNotice(ForError(res.Trigger, err, p.now()))
		return
	}

	p.sink.ShowAlerts(res.Alerts, res.CompletedAt)
	if n, ok := ForRefresh(res); ok {
		p.sink.ShowNotice(n)
	}
}

// HandleLoadMore renders a load-more outcome. The alert list itself is
// updated through the feed's change subscription.
func (p *Presenter) HandleLoadMore(res feed.LoadMoreResult) {
	if n, ok := ForLoadMore(res, p.now()); ok {
		p.sink.ShowNotice(n)
	}
}
