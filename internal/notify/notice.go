// Package notify decides which cycle outcomes the user is told about.
package notify

import (
	"fmt"
	"time"

	"github.com/polyinsider/whalewatch/internal/feed"
)

// Level is the severity of a notice.
type Level int

const (
	// LevelInfo is a neutral notice ("nothing new").
	LevelInfo Level = iota
	// LevelSuccess confirms new whale trades after a user action.
	LevelSuccess
	// LevelPassive reports new whale trades found by an automatic refresh.
	LevelPassive
	// LevelWarning reports a failed refresh. It is never fatal.
	LevelWarning
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelPassive:
		return "passive"
	case LevelWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Notice is a short user-facing message.
type Notice struct {
	Level   Level
	Title   string
	Message string
	At      time.Time
}

// ForRefresh returns the notice for a refresh result, if any.
// Automatic refreshes that found nothing new produce no notice.
func ForRefresh(res feed.RefreshResult) (Notice, bool) {
	if res.Trigger.UserInitiated() {
		if res.NewCount > 0 {
			return Notice{
				Level:   LevelSuccess,
				Title:   "Refreshed",
				Message: fmt.Sprintf("Found %s", pluralTrades(res.NewCount)),
				At:      res.CompletedAt,
			}, true
		}
		return Notice{
			Level:   LevelInfo,
			Title:   "Refreshed",
			Message: "No new whale trades",
			At:      res.CompletedAt,
		}, true
	}

	if res.NewCount == 0 {
		return Notice{}, false
	}
	return Notice{
		Level:   LevelPassive,
		Title:   "New whales",
		Message: fmt.Sprintf("%s spotted", pluralTrades(res.NewCount)),
		At:      res.CompletedAt,
	}, true
}

// ForLoadMore returns the notice for a load-more result, if any.
// A call rejected because another load-more was running produces no notice.
func ForLoadMore(res feed.LoadMoreResult, at time.Time) (Notice, bool) {
	if res.Busy {
		return Notice{}, false
	}
	if res.Found > 0 {
		return Notice{
			Level:   LevelSuccess,
			Title:   "Loaded older trades",
			Message: fmt.Sprintf("Found %s", pluralTrades(res.Found)),
			At:      at,
		}, true
	}
	return Notice{
		Level:   LevelInfo,
		Title:   "No older trades",
		Message: "Reached the end of the feed's history (about 3 minutes of trading)",
		At:      at,
	}, true
}

// ForError returns the warning shown when a refresh fails.
func ForError(trigger feed.Trigger, err error, at time.Time) Notice {
	return Notice{
		Level:   LevelWarning,
		Title:   "Refresh failed",
		Message: fmt.Sprintf("%s refresh could not reach the trade feed: %v", trigger, err),
		At:      at,
	}
}

func pluralTrades(n int) string {
	if n == 1 {
		return "1 new whale trade"
	}
	return fmt.Sprintf("%d new whale trades", n)
}
