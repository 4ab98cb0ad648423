package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/crowncreative/portal/pkg/client"
	"github.com/crowncreative/portal/pkg/domain"
)

// -- overview --

type statsLoadedMsg struct {
	scope scope
	stats *domain.AdminStats
	err   error
}

// statsModel is the admin overview.
type statsModel struct {
	deps    Deps
	scope   scope
	loading bool
	err     string
	stats   *domain.AdminStats
	width   int
	height  int
}

func newStatsModel(d Deps) statsModel {
	return statsModel{deps: d, scope: newScope(), loading: true}
}

func (m statsModel) Init() tea.Cmd {
	return m.load()
}

func (m statsModel) load() tea.Cmd {
	c, sc := m.deps.Client, m.scope
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		s, err := c.Stats(ctx)
		return statsLoadedMsg{scope: sc, stats: s, err: err}
	}
}

func (m statsModel) Update(msg tea.Msg) (statsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case statsLoadedMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			if m.stats == nil {
				m.err = "Failed to load statistics"
			}
			return m, failed(msg.err)
		}
		m.stats, m.err = msg.stats, ""

	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			return m, m.load()
		}
	}
	return m, nil
}

func (m statsModel) View() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("Overview") + "\n")
	b.WriteString(" " + separator(m.width) + "\n")

	if m.loading && m.stats == nil {
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
		return b.String()
	}
	if m.err != "" {
		b.WriteString(" " + dimStyle.Render("error: "+m.err) + "\n")
		return b.String()
	}

	s := m.stats
	stat := func(label, value string) string {
		return goldStyle.Render(value) + " " + dimStyle.Render(label)
	}
	b.WriteString(" " + strings.Join([]string{
		stat("revenue", money(s.Revenue, "")),
		stat("users", strconv.Itoa(s.Users)),
		stat("projects", strconv.Itoa(s.Projects)),
	}, metaStyle.Render("  ·  ")) + "\n")
	b.WriteString(" " + strings.Join([]string{
		stat("orders", strconv.Itoa(s.Orders.Total)),
		stat("paid", strconv.Itoa(s.Orders.Paid)),
		stat("pending", strconv.Itoa(s.Orders.Pending)),
		stat("completed", strconv.Itoa(s.Orders.Completed)),
	}, metaStyle.Render("  ·  ")) + "\n\n")

	b.WriteString(" " + sectionHeaderStyle.Render("RECENT ORDERS") + "\n")
	if len(s.RecentOrders) == 0 {
		b.WriteString("   " + dimStyle.Render("none") + "\n")
	}
	for _, o := range s.RecentOrders {
		fmt.Fprintf(&b, "   %s  %s  %s  %s\n",
			normalStyle.Render("#"+shortID(o.ID)),
			StatusBadge(string(o.Status)),
			goldStyle.Render(money(o.Total, "")),
			metaStyle.Render(formatDate(o.CreatedAt)))
	}

	b.WriteString("\n " + sectionHeaderStyle.Render("RECENT INTAKES") + "\n")
	if len(s.RecentIntakes) == 0 {
		b.WriteString("   " + dimStyle.Render("none") + "\n")
	}
	for _, in := range s.RecentIntakes {
		fmt.Fprintf(&b, "   %s  %s  %s\n",
			normalStyle.Render("#"+shortID(in.ID)),
			accentStyle.Render(in.Type.Label()),
			metaStyle.Render(formatDate(in.CreatedAt)))
	}
	return b.String()
}

func (m statsModel) helpKeys() string {
	return helpBar(helpEntry("1-8", "tabs"), helpEntry("r", "refresh"))
}

func (m statsModel) editing() bool { return false }

func (m statsModel) update(msg tea.Msg) (page, tea.Cmd) { return m.Update(msg) }

// -- services --

type adminServicesLoadedMsg struct {
	scope    scope
	services []domain.Service
	err      error
}

// service form field order.
const (
	svcName = iota
	svcDescription
	svcPrice
	svcCategory
)

// servicesModel manages the service catalog, inactive entries included.
type servicesModel struct {
	deps       Deps
	scope      scope
	loading    bool
	loaded     bool
	err        string
	services   []domain.Service
	cursor     int
	creating   bool
	form       form
	formErr    string
	confirmDel bool
	cursorOn   bool
	width      int
	height     int
}

func newServicesModel(d Deps) servicesModel {
	return servicesModel{deps: d, scope: newScope(), loading: true, cursorOn: true}
}

func (m servicesModel) Init() tea.Cmd {
	return tea.Batch(m.load(), cursorBlinkCmd())
}

func (m servicesModel) load() tea.Cmd {
	c, sc := m.deps.Client, m.scope
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		services, err := c.ListAllServices(ctx)
		return adminServicesLoadedMsg{scope: sc, services: services, err: err}
	}
}

func newServiceForm() form {
	return newForm(
		field{label: "Name"},
		field{label: "Description"},
		field{label: "Base price", placeholder: "499"},
		field{label: "Category", placeholder: "branding"},
	)
}

func (m servicesModel) save() (servicesModel, tea.Cmd) {
	name, desc, category := m.form.value(svcName), m.form.value(svcDescription), m.form.value(svcCategory)
	rawPrice := strings.TrimPrefix(m.form.value(svcPrice), "$")
	if name == "" || desc == "" || rawPrice == "" {
		m.formErr = "Please fill in all required fields"
		return m, nil
	}
	price, err := strconv.ParseFloat(rawPrice, 64)
	if err != nil || price < 0 {
		m.formErr = "Base price must be a number"
		return m, nil
	}
	active := true
	in := client.ServiceInput{Name: &name, Description: &desc, BasePrice: &price, Active: &active}
	if category != "" {
		in.Category = &category
	}
	m.creating, m.formErr = false, ""
	c := m.deps.Client
	return m, doAction(m.scope, "Service created", func(ctx context.Context) error {
		_, err := c.CreateService(ctx, in)
		return err
	})
}

func (m servicesModel) Update(msg tea.Msg) (servicesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case cursorBlinkMsg:
		m.cursorOn = !m.cursorOn
		return m, cursorBlinkCmd()

	case adminServicesLoadedMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			if !m.loaded {
				m.err = "Failed to load services"
			}
			return m, failed(msg.err)
		}
		m.loaded, m.err = true, ""
		m.services = msg.services
		m.cursor = clampCursor(m.cursor, len(m.services))

	case actionMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		return m, tea.Batch(actionResult(msg), m.load())

	case tea.KeyMsg:
		m.cursorOn = true
		key := msg.String()
		if m.creating {
			switch key {
			case "esc":
				m.creating, m.formErr = false, ""
			case "ctrl+s":
				return m.save()
			case "enter":
				if m.form.last() {
					return m.save()
				}
				m.form, _ = m.form.update("tab")
			default:
				var ok bool
				if m.form, ok = m.form.update(key); ok {
					m.formErr = ""
				}
			}
			return m, nil
		}

		if m.confirmDel {
			m.confirmDel = false
			if key == "y" && m.cursor < len(m.services) {
				id, c := m.services[m.cursor].ID, m.deps.Client
				return m, doAction(m.scope, "Service deleted", func(ctx context.Context) error {
					return c.DeleteService(ctx, id)
				})
			}
			return m, nil
		}

		switch key {
		case "n":
			m.creating = true
			m.form = newServiceForm()
		case "t":
			if m.cursor < len(m.services) {
				s, c := m.services[m.cursor], m.deps.Client
				active := !s.Active
				verb := "Service deactivated"
				if active {
					verb = "Service activated"
				}
				return m, doAction(m.scope, verb, func(ctx context.Context) error {
					_, err := c.UpdateService(ctx, s.ID, client.ServiceInput{Active: &active})
					return err
				})
			}
		case "d", "x":
			if m.cursor < len(m.services) {
				m.confirmDel = true
			}
		case "r":
			m.loading = true
			return m, m.load()
		default:
			m.cursor = moveCursor(m.cursor, len(m.services), key)
		}
	}
	return m, nil
}

func (m servicesModel) View() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("Services") + "\n")
	b.WriteString(" " + separator(m.width) + "\n")

	if m.creating {
		b.WriteString(" " + sectionHeaderStyle.Render("NEW SERVICE") + "\n")
		b.WriteString(m.form.view(m.cursorOn))
		if m.formErr != "" {
			b.WriteString("\n " + rejectStyle.Render(m.formErr) + "\n")
		}
		return b.String()
	}
	if m.loading && !m.loaded {
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
		return b.String()
	}
	if m.err != "" {
		b.WriteString(" " + dimStyle.Render("error: "+m.err) + "\n")
		return b.String()
	}
	if m.confirmDel && m.cursor < len(m.services) {
		b.WriteString(" " + rejectStyle.Render("Delete "+m.services[m.cursor].Name+"? y to confirm") + "\n\n")
	}
	if len(m.services) == 0 {
		b.WriteString("\n " + dimStyle.Render("no services · press n to add one") + "\n")
		return b.String()
	}

	for i, s := range m.services {
		name := truncStr(s.Name, 30)
		if i == m.cursor {
			name = selectedStyle.Render(name)
		} else {
			name = normalStyle.Render(name)
		}
		state := successStyle.Render("active")
		if !s.Active {
			state = dimStyle.Render("inactive")
		}
		fmt.Fprintf(&b, " %s%s  %s  %s  %s\n",
			cursorPrefix(i == m.cursor),
			name,
			goldStyle.Render(money(s.BasePrice, "")),
			metaStyle.Render(s.Category),
			state)
	}
	if m.cursor < len(m.services) && m.services[m.cursor].Description != "" {
		b.WriteString("\n " + dimStyle.Render(truncStr(oneLine(m.services[m.cursor].Description), max(m.width-4, 20))) + "\n")
	}
	return b.String()
}

func (m servicesModel) helpKeys() string {
	if m.creating {
		return helpBar(helpEntry("tab", "next"), helpEntry("ctrl+s", "save"), helpEntry("esc", "cancel"))
	}
	return helpBar(helpEntry("1-8", "tabs"), helpEntry("j/k", "nav"), helpEntry("n", "new"), helpEntry("t", "toggle active"), helpEntry("d", "delete"), helpEntry("r", "refresh"))
}

func (m servicesModel) editing() bool { return m.creating }

func (m servicesModel) update(msg tea.Msg) (page, tea.Cmd) { return m.Update(msg) }
