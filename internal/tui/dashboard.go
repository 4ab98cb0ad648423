package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/crowncreative/portal/pkg/domain"
)

type dashboardLoadedMsg struct {
	scope    scope
	orders   []domain.Order
	projects []domain.Project
	threads  []domain.Thread
	err      error
}

// dashboardModel summarizes a client's orders, projects and conversations.
type dashboardModel struct {
	deps     Deps
	scope    scope
	loading  bool
	loaded   bool
	err      string
	orders   []domain.Order
	projects []domain.Project
	threads  []domain.Thread
	cursor   int
	width    int
	height   int
}

func newDashboardModel(d Deps) dashboardModel {
	return dashboardModel{deps: d, scope: newScope(), loading: true}
}

func (m dashboardModel) Init() tea.Cmd {
	return m.load()
}

// load hydrates the three panels in parallel; any failure fails the whole
// load so the view never shows a half-populated dashboard.
func (m dashboardModel) load() tea.Cmd {
	c, sc := m.deps.Client, m.scope
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		msg := dashboardLoadedMsg{scope: sc}
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			msg.orders, err = c.ListOrders(ctx, "")
			return err
		})
		g.Go(func() error {
			var err error
			msg.projects, err = c.ListProjects(ctx, "")
			return err
		})
		g.Go(func() error {
			var err error
			msg.threads, err = c.ListThreads(ctx)
			return err
		})
		msg.err = g.Wait()
		return msg
	}
}

func (m dashboardModel) activeOrders() int {
	n := 0
	for _, o := range m.orders {
		switch o.Status {
		case domain.OrderDraft, domain.OrderPending, domain.OrderPaid, domain.OrderInProgress:
			n++
		}
	}
	return n
}

func (m dashboardModel) activeProjects() int {
	n := 0
	for _, p := range m.projects {
		if p.Status == domain.ProjectActive {
			n++
		}
	}
	return n
}

func (m dashboardModel) Update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case dashboardLoadedMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			if !m.loaded {
				m.err = "Failed to load dashboard"
			}
			return m, failed(msg.err)
		}
		m.loaded, m.err = true, ""
		m.orders, m.projects, m.threads = msg.orders, msg.projects, msg.threads
		m.cursor = clampCursor(m.cursor, min(len(m.orders), 5))

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "enter":
			if m.cursor < len(m.orders) {
				return m, navigate(pageOrder, m.orders[m.cursor].ID)
			}
		case "r":
			m.loading = true
			return m, m.load()
		case "n":
			return m, navigate(pageOrders, "")
		default:
			m.cursor = moveCursor(m.cursor, min(len(m.orders), 5), key)
		}
	}
	return m, nil
}

func (m dashboardModel) View() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("Dashboard") + "\n")
	b.WriteString(" " + separator(m.width) + "\n")

	if m.loading && !m.loaded {
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
		return b.String()
	}
	if m.err != "" {
		b.WriteString(" " + dimStyle.Render("error: "+m.err) + "\n")
		return b.String()
	}

	stat := func(label string, n int) string {
		return goldStyle.Render(fmt.Sprintf("%d", n)) + " " + dimStyle.Render(label)
	}
	b.WriteString(" " + strings.Join([]string{
		stat("active orders", m.activeOrders()),
		stat("active projects", m.activeProjects()),
		stat("conversations", len(m.threads)),
		stat("total orders", len(m.orders)),
	}, metaStyle.Render("  ·  ")) + "\n\n")

	b.WriteString(" " + sectionHeaderStyle.Render("RECENT ORDERS") + "\n")
	if len(m.orders) == 0 {
		b.WriteString("   " + dimStyle.Render("no orders yet · press n to start one") + "\n")
	}
	for i, o := range m.orders {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&b, " %s%s  %s  %s  %s\n",
			cursorPrefix(i == m.cursor),
			normalStyle.Render("#"+shortID(o.ID)),
			StatusBadge(string(o.Status)),
			goldStyle.Render(money(o.Total, o.Currency)),
			metaStyle.Render(fmt.Sprintf("%d items", len(o.Items))),
		)
	}

	if len(m.projects) > 0 {
		b.WriteString("\n " + sectionHeaderStyle.Render("PROJECTS") + "\n")
		for _, p := range m.projects {
			done, total := p.Progress()
			pct := 0
			if total > 0 {
				pct = done * 100 / total
			}
			fmt.Fprintf(&b, "   %s  %s  %s\n",
				normalStyle.Render(truncStr(p.Title, 32)),
				StatusBadge(string(p.Status)),
				progressBar(pct, 16),
			)
		}
	}
	return b.String()
}

func (m dashboardModel) helpKeys() string {
	return helpBar(helpEntry("1-7", "tabs"), helpEntry("j/k", "nav"), helpEntry("enter", "open"), helpEntry("n", "new order"), helpEntry("r", "refresh"))
}

func (m dashboardModel) editing() bool { return false }

func (m dashboardModel) update(msg tea.Msg) (page, tea.Cmd) { return m.Update(msg) }
