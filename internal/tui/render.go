package tui

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/civiscope/civiscope/internal/model"
)

// mapTop is the first map row: everything above it is the header.
const mapTop = 1

func (a *App) View() string {
	if a.width == 0 {
		return "loading..."
	}

	var body string
	switch a.state {
	case viewBudget:
		body = a.renderBudget()
	case viewPlans:
		body = a.renderPlans()
	default:
		body = a.renderMap()
	}

	if a.modal != modalNone {
		body += "\n" + a.renderModal()
	}
	return body
}

func (a *App) renderHeader(title string) string {
	return titleStyle.Render("civiscope") + helpStyle.Render("  "+title)
}

func (a *App) renderStatusLine() string {
	style := statusStyle
	if a.statusIs == statusError {
		style = errorStyle
	}
	pool := fmt.Sprintf("pool %d/%d idle  active %d",
		a.pool.Idle(), a.pool.Total(), a.rec.ActiveCount())
	if a.pool.Synthesized() > 0 {
		pool += fmt.Sprintf("  synthesized %d", a.pool.Synthesized())
	}
	left := style.Render(a.status)
	right := helpStyle.Render(pool)
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderMap draws the pannable world grid with one marker per active
// handle. Render order comes from the reconciler, selected last, so
// the selected marker wins overlapping cells.
func (a *App) renderMap() string {
	type cell struct {
		ch    string
		style *lipgloss.Style
	}
	grid := make([][]cell, a.mapH)
	for y := range grid {
		grid[y] = make([]cell, a.mapW)
		for x := range grid[y] {
			wx, wy := a.cam.X+float64(x), a.cam.Y+float64(y)
			if math.Mod(wx, 10) == 0 && math.Mod(wy, 5) == 0 {
				grid[y][x] = cell{ch: "·", style: &gridStyle}
			} else {
				grid[y][x] = cell{ch: " "}
			}
		}
	}

	place := func(x, y int, ch string, style *lipgloss.Style) {
		if x >= 0 && x < a.mapW && y >= 0 && y < a.mapH {
			grid[y][x] = cell{ch: ch, style: style}
		}
	}

	for _, h := range a.rec.Handles() {
		x := int(math.Round(h.Pos.X - a.cam.X))
		y := int(math.Round(h.Pos.Y - a.cam.Y))
		style := lipgloss.NewStyle().Foreground(h.Color)
		if h.Selected {
			style = style.Bold(true).Underline(true)
		}
		place(x, y, string(h.Glyph), &style)
		if h.Selected {
			for i, r := range " " + h.Label {
				place(x+1+i, y, string(r), &selectedStyle)
			}
		}
	}

	var b strings.Builder
	b.WriteString(a.renderHeader("map — drag markers, double-click for impact"))
	b.WriteByte('\n')
	for y := 0; y < a.mapH; y++ {
		// group runs that share a style so labels stay contiguous
		x := 0
		for x < a.mapW {
			c := grid[y][x]
			run := strings.Builder{}
			run.WriteString(c.ch)
			x++
			for x < a.mapW && grid[y][x].style == c.style {
				run.WriteString(grid[y][x].ch)
				x++
			}
			if c.style == nil {
				b.WriteString(run.String())
			} else {
				b.WriteString(c.style.Render(run.String()))
			}
		}
		b.WriteByte('\n')
	}
	b.WriteString(a.renderStatusLine())
	b.WriteByte('\n')
	b.WriteString(helpStyle.Render("[←↓↑→] pan  [/] find  [enter] impact  [c] clear  [g] center  [s] write csv  [tab] view  [b] budget  [p] plans  [q] quit"))
	return b.String()
}

func (a *App) renderBudget() string {
	var b strings.Builder
	b.WriteString(a.renderHeader("budget"))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("  %-24s %12s %12s %12s", "Line item", "Allocated", "Spent", "Remaining")))
	b.WriteByte('\n')

	for i, item := range a.stores.Budget.Items() {
		marker := "  "
		row := fmt.Sprintf("%-24s %12.2f %12.2f %12.2f", item.Name, item.Allocated, item.Spent, item.Remaining())
		style := labelStyle
		if item.OverBudget() {
			style = overStyle
		}
		if i == a.budgetCursor {
			marker = "▶ "
			style = style.Bold(true)
		}
		b.WriteString(marker + style.Render(row))
		b.WriteByte('\n')
	}

	b.WriteString("\n" + helpStyle.Render("  By category") + "\n")
	totals := a.stores.Budget.CategoryTotals()
	for _, c := range model.Categories() {
		t, ok := totals[c]
		if !ok {
			continue
		}
		style := okStyle
		if t.OverBudget() {
			style = overStyle
		}
		glyph := lipgloss.NewStyle().Foreground(c.Color()).Render(string(c.Glyph()))
		b.WriteString(fmt.Sprintf("  %s %-22s %s\n", glyph, c.String(),
			style.Render(fmt.Sprintf("%12.2f / %-12.2f", t.Spent, t.Allocated))))
	}

	b.WriteByte('\n')
	b.WriteString(a.renderStatusLine())
	b.WriteByte('\n')
	b.WriteString(helpStyle.Render("[↑↓] move  [m] map  [p] plans  [q] quit"))
	return b.String()
}

func (a *App) renderPlans() string {
	var b strings.Builder
	b.WriteString(a.renderHeader("plans"))
	b.WriteString("\n\n")

	if len(a.planList) == 0 {
		b.WriteString(helpStyle.Render("  no saved plans — press [s] to snapshot the current city") + "\n")
	}
	for i, p := range a.planList {
		marker := "  "
		style := labelStyle
		if i == a.planCursor {
			marker = "▶ "
			style = cursorRowStyle
		}
		b.WriteString(marker + style.Render(fmt.Sprintf("%-20s %d zones, %d items  %s",
			p.Name, p.Zones, p.Items, p.CreatedAt.Format("2006-01-02 15:04"))))
		b.WriteByte('\n')
	}

	if len(a.history) > 0 {
		b.WriteString("\n" + helpStyle.Render("  Recent adjustments") + "\n")
		for _, h := range a.history {
			b.WriteString(fmt.Sprintf("  %-18s %-14s $%-10.0f %2dy  total %+.2f\n",
				h.ZoneName, h.Impact, h.Proposed, h.Years, h.Total))
		}
	}

	b.WriteByte('\n')
	b.WriteString(a.renderStatusLine())
	b.WriteByte('\n')
	b.WriteString(helpStyle.Render("[s] save  [enter] restore  [x] delete  [r] refresh  [m] map  [q] quit"))
	return b.String()
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalImpact:
		return a.renderImpactModal()
	case modalSearch:
		return a.renderSearchModal()
	case modalSavePlan:
		return modalStyle.Render(titleStyle.Render("Save plan") + "\n" +
			a.planNameInput.View() + "\n" +
			helpStyle.Render("[enter] save  [esc] cancel"))
	case modalConfirmDelete:
		name := ""
		if a.planCursor < len(a.planList) {
			name = a.planList[a.planCursor].Name
		}
		return modalStyle.Render(titleStyle.Render("Delete plan?") + "\n" +
			fmt.Sprintf("%q will be removed.\n", name) +
			helpStyle.Render("[y] yes  [n] no"))
	}
	return ""
}

func (a *App) renderImpactModal() string {
	z, ok := a.stores.Zones.Get(a.impactZone)
	if !ok {
		return ""
	}

	var tabs []string
	for i, n := range a.impactNames {
		if i == a.impactCursor {
			tabs = append(tabs, selectedStyle.Render("["+n+"]"))
		} else {
			tabs = append(tabs, helpStyle.Render(" "+n+" "))
		}
	}

	body := titleStyle.Render(fmt.Sprintf("Impact — %s", z.Name)) + "\n"
	body += fmt.Sprintf("cost %.0f, base %+.1f\n", z.Cost, z.Impacts[a.impactNames[a.impactCursor]])
	body += strings.Join(tabs, " ") + "\n\n"
	body += a.amountInput.View() + "\n"
	body += a.yearsInput.View() + "\n\n"

	if a.impactErr != "" {
		body += errorStyle.Render(a.impactErr) + "\n"
	} else if a.preview != nil {
		style := okStyle
		if a.preview.Total < 0 {
			style = overStyle
		}
		body += style.Render(fmt.Sprintf("%+.2f per year → %+.2f over %d years",
			a.preview.Yearly, a.preview.Total, a.preview.Years)) + "\n"
	}
	body += helpStyle.Render("[←→] impact  [tab] field  [enter] apply  [esc] cancel")
	return modalStyle.Render(body)
}

func (a *App) renderSearchModal() string {
	body := titleStyle.Render("Find zone") + "\n"
	body += a.searchInput.View() + "\n\n"
	if len(a.matches) == 0 {
		body += helpStyle.Render("no matches") + "\n"
	}
	for i, m := range a.matches {
		marker := "  "
		style := labelStyle
		if i == a.searchCursor {
			marker = "▶ "
			style = cursorRowStyle
		}
		glyph := lipgloss.NewStyle().Foreground(m.Zone.Category.Color()).Render(string(m.Zone.Category.Glyph()))
		body += fmt.Sprintf("%s%s %s\n", marker, glyph, style.Render(m.Zone.Name))
	}
	body += helpStyle.Render("[↑↓] move  [enter] go  [esc] cancel")
	return modalStyle.Render(body)
}

func sortedImpactNames(z *model.Zone) []string {
	names := make([]string, 0, len(z.Impacts))
	for n := range z.Impacts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
