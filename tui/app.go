package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/ChristianF88/recsort/output"
)

// barWidth is the length of a full occupancy bar in the bucket table.
const barWidth = 30

// App is an interactive viewer for the passes of one sort.
type App struct {
	app       *tview.Application
	passList  *tview.List
	buckets   *tview.Table
	summary   *tview.TextView
	statusBar *tview.TextView

	report      *output.Report
	currentPass int
	byCount     bool // order the bucket table by record count instead of digit

	focusableItems []tview.Primitive
	currentFocus   int
}

// Run shows report until the user quits.
func Run(report *output.Report) error {
	return NewApp(report).Run()
}

// NewApp creates the viewer without starting it.
func NewApp(report *output.Report) *App {
	a := &App{
		app:    tview.NewApplication(),
		report: report,
	}
	a.setupUI()
	if len(report.Passes) > 0 {
		a.selectPass(0)
	}
	a.updateStatusBar()
	return a
}

func (a *App) setupUI() {
	a.summary = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false).
		SetText(summaryText(a.report))
	a.summary.SetBorder(true).SetTitle(" Summary ").SetTitleAlign(tview.AlignLeft)

	a.passList = tview.NewList().ShowSecondaryText(true)
	for _, p := range a.report.Passes {
		a.passList.AddItem(passLabel(p), passDetail(p), 0, nil)
	}
	a.passList.SetChangedFunc(func(index int, _, _ string, _ rune) {
		a.selectPass(index)
	})
	a.passList.SetBorder(true).SetTitle(" Passes ").SetTitleAlign(tview.AlignLeft)

	a.buckets = tview.NewTable().
		SetFixed(1, 0).
		SetSelectable(true, false)
	a.buckets.SetBorder(true).SetTitle(" Buckets ").SetTitleAlign(tview.AlignLeft)

	a.statusBar = tview.NewTextView().SetDynamicColors(true)
	a.statusBar.SetBorder(false)

	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.summary, 12, 0, false).
		AddItem(a.passList, 0, 1, true)

	body := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(left, 0, 1, true).
		AddItem(a.buckets, 0, 2, false)

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(body, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.focusableItems = []tview.Primitive{a.passList, a.buckets, a.summary}

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEscape:
			a.app.Stop()
			return nil
		case tcell.KeyTab:
			a.nextFocus()
			return nil
		case tcell.KeyBacktab:
			a.prevFocus()
			return nil
		}
		switch event.Rune() {
		case 'q', 'Q':
			a.app.Stop()
			return nil
		case 'c', 'C':
			a.byCount = !a.byCount
			a.selectPass(a.currentPass)
			a.updateStatusBar()
			return nil
		}
		return event
	})

	a.app.SetRoot(root, true).SetFocus(a.passList)
}

func (a *App) Run() error {
	return a.app.Run()
}

// selectPass fills the bucket table with the histogram of pass index.
func (a *App) selectPass(index int) {
	if index < 0 || index >= len(a.report.Passes) {
		return
	}
	a.currentPass = index
	pass := a.report.Passes[index]

	a.buckets.Clear()
	for r, row := range bucketRows(pass, a.byCount) {
		for c, text := range row {
			cell := tview.NewTableCell(text)
			if r == 0 {
				cell.SetTextColor(tcell.ColorYellow).SetSelectable(false)
			}
			if c == 1 {
				cell.SetAlign(tview.AlignRight)
			}
			a.buckets.SetCell(r, c, cell)
		}
	}
	a.buckets.ScrollToBeginning()
	a.buckets.SetTitle(fmt.Sprintf(" Buckets of %s ", passLabel(pass)))
}

// bucketRows renders a pass histogram as table rows, header first.
func bucketRows(pass output.PassSummary, byCount bool) [][]string {
	buckets := slices.Clone(pass.Buckets)
	if byCount {
		slices.SortStableFunc(buckets, func(x, y output.BucketCount) int {
			return y.Count - x.Count
		})
	}

	total := 0
	for _, b := range buckets {
		total += b.Count
	}

	rows := [][]string{{"Digit", "Records", "Share", ""}}
	digits := 2 * pass.Span.Width
	for _, b := range buckets {
		share := 0.0
		bar := 0
		if total > 0 {
			share = 100 * float64(b.Count) / float64(total)
		}
		if pass.Largest > 0 {
			bar = b.Count * barWidth / pass.Largest
		}
		rows = append(rows, []string{
			fmt.Sprintf("0x%0*x", digits, b.Digit),
			humanize.Comma(int64(b.Count)),
			fmt.Sprintf("%5.1f%%", share),
			strings.Repeat("█", bar),
		})
	}
	return rows
}

func passLabel(p output.PassSummary) string {
	return fmt.Sprintf("Pass %d: bytes %d-%d", p.Pass, p.Span.Offset, p.Span.Offset+p.Span.Width-1)
}

func passDetail(p output.PassSummary) string {
	return fmt.Sprintf("  %d buckets, largest %s", p.Occupied, humanize.Comma(int64(p.Largest)))
}

func summaryText(r *output.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[yellow]Input:[white] %s\n", r.Input.Path)
	fmt.Fprintf(&b, "[yellow]Records:[white] %s x %d bytes (%s)\n", humanize.Comma(int64(r.Input.Records)), r.Input.Width, r.Input.Size)
	fmt.Fprintf(&b, "[yellow]Digit:[white] %d byte(s), %s\n", r.Sort.DigitWidth, r.Sort.ByteOrder)
	fmt.Fprintf(&b, "[yellow]Significant bytes:[white] %d\n", r.Sort.SignificantBytes)
	fmt.Fprintf(&b, "[yellow]Passes:[white] %d\n", r.Sort.Passes)
	fmt.Fprintf(&b, "[yellow]Buckets:[white] %d used, %d grows\n", r.Sort.BucketsUsed, r.Sort.Grows)
	fmt.Fprintf(&b, "[yellow]Peak storage:[white] %s\n", r.Sort.PeakBucketSize)
	fmt.Fprintf(&b, "[yellow]Sort time:[white] %d µs\n", r.Sort.DurationUS)
	if v := r.Verification; v != nil {
		if v.OK() {
			b.WriteString("[green]Verified:[white] sorted permutation\n")
		} else {
			b.WriteString("[red]Verification failed[white]\n")
		}
	}
	return b.String()
}

func (a *App) nextFocus() {
	a.currentFocus = (a.currentFocus + 1) % len(a.focusableItems)
	a.app.SetFocus(a.focusableItems[a.currentFocus])
	a.updateStatusBar()
}

func (a *App) prevFocus() {
	a.currentFocus = (a.currentFocus - 1 + len(a.focusableItems)) % len(a.focusableItems)
	a.app.SetFocus(a.focusableItems[a.currentFocus])
	a.updateStatusBar()
}

func (a *App) updateStatusBar() {
	if len(a.report.Passes) == 0 {
		a.statusBar.SetText("[yellow]No passes were needed[white] | 'q' to quit")
		return
	}
	order := "digit"
	if a.byCount {
		order = "count"
	}
	panelNames := []string{"Passes", "Buckets", "Summary"}
	a.statusBar.SetText(fmt.Sprintf("[green]Pass %d/%d[white] | [yellow]%s[white] focused | buckets by %s | Tab/Shift+Tab: panels, ↑↓: select, 'c': toggle order, 'q': quit",
		a.currentPass+1, len(a.report.Passes), panelNames[a.currentFocus], order))
}
