// Package ui provides terminal user interface components.
package ui

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/polyinsider/whalewatch/internal/feed"
	"github.com/polyinsider/whalewatch/internal/metrics"
	"github.com/polyinsider/whalewatch/internal/notify"
	"github.com/polyinsider/whalewatch/internal/store"
	"github.com/rivo/tview"
)

const helpText = `Whale Watch

r   refresh now
m   load older trades
?   this help
q   quit

Closing this dialog refreshes the feed.`

// Actions are the cycle requests the keyboard can issue.
type Actions struct {
	Refresh  func(trigger feed.Trigger)
	LoadMore func()
}

// App is the main TUI application. It implements notify.Sink.
type App struct {
	app    *tview.Application
	pages  *tview.Pages
	layout *tview.Flex
	help   *tview.Modal

	// Views
	whales  *WhaleTableView
	notices *NoticesView
	status  *StatusView

	actions Actions
	tracker *metrics.Tracker

	helpOpen atomic.Bool
	stopped  atomic.Bool
	done     chan struct{}
}

var _ notify.Sink = (*App)(nil)

// NewApp creates a new TUI application.
func NewApp(actions Actions, tracker *metrics.Tracker, minValue float64) *App {
	a := &App{
		app:     tview.NewApplication(),
		whales:  NewWhaleTableView(),
		notices: NewNoticesView(),
		status:  NewStatusView(minValue),
		actions: actions,
		tracker: tracker,
		done:    make(chan struct{}),
	}

	a.setupLayout()
	a.setupKeyboard()

	return a
}

// setupLayout creates the table | (status / notices) layout with a help page on top.
func (a *App) setupLayout() {
	side := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.status.Widget(), 0, 1, false).
		AddItem(a.notices.Widget(), 0, 1, false)

	a.layout = tview.NewFlex().
		AddItem(a.whales.Widget(), 0, 3, true).
		AddItem(side, 0, 1, false)

	a.help = tview.NewModal().
		SetText(helpText).
		AddButtons([]string{"Close"}).
		SetDoneFunc(func(int, string) {
			a.closeHelp()
		})

	a.pages = tview.NewPages().
		AddPage("main", a.layout, true, true).
		AddPage("help", a.help, true, false)

	a.app.SetRoot(a.pages, true).SetFocus(a.whales.Widget())
}

// setupKeyboard configures keyboard shortcuts.
func (a *App) setupKeyboard() {
	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlC {
			a.Stop()
			return nil
		}

		if a.helpOpen.Load() {
			if event.Key() == tcell.KeyEscape || event.Rune() == '?' {
				a.closeHelp()
				return nil
			}
			// the modal handles its own button
			return event
		}

		if event.Key() != tcell.KeyRune {
			return event
		}
		switch event.Rune() {
		case 'q', 'Q':
			a.Stop()
			return nil
		case 'r', 'R':
			a.actions.Refresh(feed.TriggerManual)
			return nil
		case 'm', 'M':
			a.actions.LoadMore()
			return nil
		case '?':
			a.openHelp()
			return nil
		}
		return event
	})
}

func (a *App) openHelp() {
	a.helpOpen.Store(true)
	a.pages.ShowPage("help")
	a.app.SetFocus(a.help)
}

// closeHelp hides the help page. The feed becoming visible again counts as a
// focus trigger.
func (a *App) closeHelp() {
	if !a.helpOpen.Swap(false) {
		return
	}
	a.pages.HidePage("help")
	a.app.SetFocus(a.whales.Widget())
	a.actions.Refresh(feed.TriggerFocus)
}

// Run starts the TUI application (blocking).
func (a *App) Run() error {
	go a.updateLoop()

	if err := a.app.Run(); err != nil {
		return fmt.Errorf("app run failed: %w", err)
	}
	return nil
}

// Stop gracefully stops the application.
func (a *App) Stop() {
	if a.stopped.Swap(true) {
		return
	}
	close(a.done)
	a.app.Stop()
}

// ShowAlerts replaces the whale table contents.
func (a *App) ShowAlerts(alerts []store.Alert, _ time.Time) {
	if a.stopped.Load() {
		return
	}
	a.app.QueueUpdateDraw(func() {
		a.whales.SetAlerts(alerts)
	})
}

// ShowNotice adds a notice to the notices panel.
func (a *App) ShowNotice(n notify.Notice) {
	if a.stopped.Load() {
		return
	}
	a.app.QueueUpdateDraw(func() {
		a.notices.AddNotice(n)
	})
}

// updateLoop periodically refreshes the status panel with metrics data.
func (a *App) updateLoop() {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-a.done:
			return
		case <-ticker.C:
			snapshot := a.tracker.Snapshot()
			a.app.QueueUpdateDraw(func() {
				a.status.Update(snapshot)
			})
		}
	}
}
