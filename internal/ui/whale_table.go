package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/polyinsider/whalewatch/internal/store"
	"github.com/rivo/tview"
)

var whaleHeaders = []string{"Time", "Side", "Value", "Price", "Outcome", "Trader", "Market"}

// WhaleTableView displays accumulated whale alerts, newest first.
type WhaleTableView struct {
	table   *tview.Table
	maxRows int
}

// NewWhaleTableView creates a new whale table view.
func NewWhaleTableView() *WhaleTableView {
	table := tview.NewTable().
		SetBorders(false).
		SetFixed(1, 0).
		SetSelectable(true, false)

	table.SetTitle(" Whale Trades ").SetBorder(true)

	v := &WhaleTableView{
		table:   table,
		maxRows: 1000,
	}
	v.setHeader()
	return v
}

// Widget returns the tview primitive.
func (v *WhaleTableView) Widget() tview.Primitive {
	return v.table
}

// SetAlerts replaces the table contents with alerts (already sorted newest first).
func (v *WhaleTableView) SetAlerts(alerts []store.Alert) {
	v.table.Clear()
	v.setHeader()

	rows := alerts
	if len(rows) > v.maxRows {
		rows = rows[:v.maxRows]
	}

	for i, alert := range rows {
		sideColor := tcell.ColorGreen
		if alert.Side == store.SideSell {
			sideColor = tcell.ColorRed
		}

		cells := []*tview.TableCell{
			tview.NewTableCell(alert.Timestamp.Local().Format("15:04:05")),
			tview.NewTableCell(alert.Side).SetTextColor(sideColor),
			tview.NewTableCell(formatUSD(alert.Value)).SetAlign(tview.AlignRight),
			tview.NewTableCell(fmt.Sprintf("%.0f¢", alert.Price*100)).SetAlign(tview.AlignRight),
			tview.NewTableCell(alert.Outcome),
			tview.NewTableCell(traderLabel(alert)),
			tview.NewTableCell(truncateText(alert.MarketTitle, 48)).SetExpansion(1),
		}
		for col, cell := range cells {
			v.table.SetCell(i+1, col, cell)
		}
	}

	if len(alerts) == 0 {
		v.table.SetCell(1, 0, tview.NewTableCell("Waiting for whales...").
			SetSelectable(false).
			SetExpansion(1))
	}

	v.table.SetTitle(fmt.Sprintf(" Whale Trades (%d) ", len(alerts)))
}

func (v *WhaleTableView) setHeader() {
	for col, header := range whaleHeaders {
		cell := tview.NewTableCell(header).
			SetTextColor(tview.Styles.SecondaryTextColor).
			SetAlign(tview.AlignLeft).
			SetSelectable(false)
		v.table.SetCell(0, col, cell)
	}
}

// traderLabel prefers the display name and falls back to a shortened address.
func traderLabel(alert store.Alert) string {
	if alert.DisplayName != "" {
		return truncateText(alert.DisplayName, 20)
	}
	return truncateAddress(alert.Address)
}

// formatUSD renders a dollar value with thousands separators.
func formatUSD(v float64) string {
	n := int64(v + 0.5)
	s := fmt.Sprintf("%d", n)
	out := make([]byte, 0, len(s)+len(s)/3)
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	return "$" + string(out)
}

// truncateAddress truncates a wallet address for display.
func truncateAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

func truncateText(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
