package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/polyinsider/whalewatch/internal/notify"
	"github.com/rivo/tview"
)

// NoticesView displays user notices, newest first.
type NoticesView struct {
	list     *tview.List
	notices  []notify.Notice
	maxItems int
}

// NewNoticesView creates a new notices view.
func NewNoticesView() *NoticesView {
	list := tview.NewList().
		ShowSecondaryText(true)

	list.SetTitle(" Notices ").SetBorder(true)
	list.SetMainTextColor(tcell.ColorWhite)

	v := &NoticesView{
		list:     list,
		notices:  make([]notify.Notice, 0, 50),
		maxItems: 50,
	}
	v.rebuildList()
	return v
}

// Widget returns the tview primitive.
func (v *NoticesView) Widget() tview.Primitive {
	return v.list
}

// AddNotice adds a notice to the top of the list.
func (v *NoticesView) AddNotice(n notify.Notice) {
	v.notices = append([]notify.Notice{n}, v.notices...)
	if len(v.notices) > v.maxItems {
		v.notices = v.notices[:v.maxItems]
	}
	v.rebuildList()
}

func (v *NoticesView) rebuildList() {
	v.list.Clear()

	if len(v.notices) == 0 {
		v.list.AddItem("Nothing yet", "r refresh · m load older · ? help · q quit", 0, nil)
		return
	}

	for _, n := range v.notices {
		mainText, secondaryText := formatNotice(n)
		v.list.AddItem(mainText, secondaryText, 0, nil)
	}

	v.list.SetTitle(fmt.Sprintf(" Notices (%d) ", len(v.notices)))
}

// formatNotice formats a notice for display.
func formatNotice(n notify.Notice) (string, string) {
	var icon, color string
	switch n.Level {
	case notify.LevelSuccess:
		icon, color = "✅", "green"
	case notify.LevelPassive:
		icon, color = "🐋", "blue"
	case notify.LevelWarning:
		icon, color = "⚠️", "yellow"
	default:
		icon, color = "ℹ️", "white"
	}

	mainText := fmt.Sprintf("%s %s [%s]%s[-]", n.At.Local().Format("15:04:05"), icon, color, n.Title)
	return mainText, n.Message
}
