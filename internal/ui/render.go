package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Ashfaaq98/clients-console/internal/client"
	"github.com/Ashfaaq98/clients-console/internal/table"
)

const (
	dateLayout     = "Jan 2, 2006"
	dateTimeLayout = "Jan 2, 2006, 03:04 PM"
)

var titleCase = cases.Title(language.English)

type column struct {
	title string
	field table.SortField // empty when the column is not sortable
	value func(client.Client) string
}

var columns = []column{
	{"Client ID", table.FieldID, func(c client.Client) string { return c.ID }},
	{"Client Name", table.FieldName, func(c client.Client) string { return c.Name }},
	{"Client Type", table.FieldCategory, func(c client.Client) string { return titleCase.String(string(c.Category)) }},
	{"Email", table.FieldEmail, func(c client.Client) string { return c.Email }},
	{"Status", "", func(c client.Client) string { return titleCase.String(string(c.Status)) }},
	{"Created At", table.FieldCreatedAt, func(c client.Client) string { return c.CreatedAt.Format(dateLayout) }},
	{"Updated At", table.FieldUpdatedAt, func(c client.Client) string { return c.UpdatedAt.Format(dateTimeLayout) }},
	{"Updated By", "", func(c client.Client) string { return c.UpdatedBy }},
}

func selectionMark(s table.SelectionState) string {
	switch s {
	case table.SelectionAll:
		return "[x]"
	case table.SelectionPartial:
		return "[-]"
	}
	return "[ ]"
}

// render recomputes the visible rows and redraws header, badges and table.
func (ui *UI) render() {
	ui.rows = ui.state.View(ui.records)
	ui.renderHeader()
	ui.renderBadges()
	ui.renderTable()
}

func (ui *UI) renderHeader() {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(" [%s::b]Clients[-::-]  ", ui.theme.TagAccent))
	for i, tab := range table.Tabs {
		label := fmt.Sprintf("%d %s", i+1, tab.Label())
		if tab == ui.state.Tab {
			sb.WriteString(fmt.Sprintf("[%s::r] %s [-::-] ", ui.theme.TagAccent, label))
		} else {
			sb.WriteString(fmt.Sprintf("[%s] %s [-] ", ui.theme.TagMuted, label))
		}
	}
	ui.header.SetText(sb.String())
}

func (ui *UI) renderBadges() {
	filters := ui.state.ActiveFilters()
	if n := ui.state.SelectedCount(); n > 0 {
		filters = append(filters, fmt.Sprintf("%d selected", n))
	}
	if len(filters) == 0 {
		ui.badges.SetText(fmt.Sprintf(" [%s]No filters applied[-]", ui.theme.TagMuted))
		return
	}
	parts := make([]string, len(filters))
	for i, f := range filters {
		parts[i] = fmt.Sprintf("[%s][ %s ][-]", ui.theme.TagWarning, tview.Escape(f))
	}
	ui.badges.SetText(" " + strings.Join(parts, " "))
}

// sortIndicator returns the arrow and priority for a sorted column.
func (ui *UI) sortIndicator(f table.SortField) string {
	if f == "" {
		return ""
	}
	i := ui.state.Criteria.Index(f)
	if i < 0 {
		return ""
	}
	arrow := "↑"
	if ui.state.Criteria[i].Direction == table.Desc {
		arrow = "↓"
	}
	if len(ui.state.Criteria) == 1 {
		return " " + arrow
	}
	return fmt.Sprintf(" %s%d", arrow, i+1)
}

func (ui *UI) renderTable() {
	row, _ := ui.clientTable.GetSelection()
	ui.clientTable.Clear()

	headerCell := func(text string) *tview.TableCell {
		return tview.NewTableCell(text).
			SetTextColor(ui.theme.TableHeader).
			SetBackgroundColor(ui.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetSelectable(false)
	}
	ui.clientTable.SetCell(0, 0, headerCell(tview.Escape(selectionMark(ui.state.Selection(ui.rows)))))
	for col, c := range columns {
		ui.clientTable.SetCell(0, col+1, headerCell(c.title+ui.sortIndicator(c.field)))
	}

	if len(ui.rows) == 0 {
		ui.clientTable.SetCell(1, 0, tview.NewTableCell("").SetSelectable(false))
		ui.clientTable.SetCell(1, 1, tview.NewTableCell("No clients found.").
			SetTextColor(ui.theme.TableRowMuted).
			SetSelectable(false))
		ui.clientTable.SetTitle(" Clients (0) ")
		return
	}

	for i, c := range ui.rows {
		r := i + 1
		bg := ui.theme.TableZebra1
		if i%2 == 1 {
			bg = ui.theme.TableZebra2
		}
		mark := "[ ]"
		if ui.state.IsSelected(c.ID) {
			mark = "[x]"
		}
		ui.clientTable.SetCell(r, 0, tview.NewTableCell(tview.Escape(mark)).
			SetTextColor(ui.theme.TableRow).
			SetBackgroundColor(bg))
		for col, def := range columns {
			color := ui.theme.TableRow
			if def.title == "Status" {
				color = ui.theme.StatusInactive
				if c.Status == client.Active {
					color = ui.theme.StatusActive
				}
			}
			ui.clientTable.SetCell(r, col+1, tview.NewTableCell(tview.Escape(def.value(c))).
				SetTextColor(color).
				SetBackgroundColor(bg).
				SetExpansion(1))
		}
	}
	ui.clientTable.SetTitle(fmt.Sprintf(" Clients (%d of %d) ", len(ui.rows), len(ui.records)))

	if row < 1 {
		row = 1
	}
	if row > len(ui.rows) {
		row = len(ui.rows)
	}
	ui.clientTable.Select(row, 0)
}

// currentRow returns the record under the cursor.
func (ui *UI) currentRow() (client.Client, bool) {
	row, _ := ui.clientTable.GetSelection()
	if row < 1 || row > len(ui.rows) {
		return client.Client{}, false
	}
	return ui.rows[row-1], true
}
