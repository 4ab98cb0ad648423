package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/crowncreative/portal/pkg/domain"
)

type projectsLoadedMsg struct {
	scope    scope
	projects []domain.Project
	err      error
}

// projectsModel lists the client's projects. The selected project's
// timeline is shown beneath the list.
type projectsModel struct {
	deps     Deps
	scope    scope
	loading  bool
	loaded   bool
	err      string
	projects []domain.Project
	cursor   int
	width    int
	height   int
}

func newProjectsModel(d Deps) projectsModel {
	return projectsModel{deps: d, scope: newScope(), loading: true}
}

func (m projectsModel) Init() tea.Cmd {
	return m.load()
}

func (m projectsModel) load() tea.Cmd {
	c, sc := m.deps.Client, m.scope
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		projects, err := c.ListProjects(ctx, "")
		return projectsLoadedMsg{scope: sc, projects: projects, err: err}
	}
}

func (m projectsModel) Update(msg tea.Msg) (projectsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case projectsLoadedMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			if !m.loaded {
				m.err = "Failed to load projects"
			}
			return m, failed(msg.err)
		}
		m.loaded, m.err = true, ""
		m.projects = msg.projects
		m.cursor = clampCursor(m.cursor, len(m.projects))

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "r":
			m.loading = true
			return m, m.load()
		case "o":
			if m.cursor < len(m.projects) && m.projects[m.cursor].OrderID != "" {
				return m, navigate(pageOrder, m.projects[m.cursor].OrderID)
			}
		default:
			m.cursor = moveCursor(m.cursor, len(m.projects), key)
		}
	}
	return m, nil
}

func milestoneMark(status string) string {
	switch status {
	case "completed":
		return successStyle.Render("●")
	case "in_progress":
		return goldStyle.Render("◐")
	default:
		return dimStyle.Render("○")
	}
}

func (m projectsModel) View() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("Projects") + "\n")
	b.WriteString(" " + separator(m.width) + "\n")

	if m.loading && !m.loaded {
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
		return b.String()
	}
	if m.err != "" {
		b.WriteString(" " + dimStyle.Render("error: "+m.err) + "\n")
		return b.String()
	}
	if len(m.projects) == 0 {
		b.WriteString("\n " + dimStyle.Render("No projects yet. Projects start once an order is paid.") + "\n")
		return b.String()
	}

	for i, p := range m.projects {
		done, total := p.Progress()
		pct := 0
		if total > 0 {
			pct = done * 100 / total
		}
		fmt.Fprintf(&b, " %s%s  %s  %s  %s\n",
			cursorPrefix(i == m.cursor),
			normalStyle.Render(truncStr(p.Title, 36)),
			StatusBadge(string(p.Status)),
			progressBar(pct, 16),
			metaStyle.Render(formatDate(p.CreatedAt)),
		)
	}

	if m.cursor < len(m.projects) {
		p := m.projects[m.cursor]
		b.WriteString("\n " + sectionHeaderStyle.Render("TIMELINE") + "\n")
		if len(p.Timeline) == 0 {
			b.WriteString("   " + dimStyle.Render("no milestones yet") + "\n")
		}
		for _, ms := range p.Timeline {
			line := fmt.Sprintf("   %s %s", milestoneMark(ms.Status), normalStyle.Render(ms.Milestone))
			switch {
			case ms.CompletedDate != "":
				line += "  " + metaStyle.Render("done "+ms.CompletedDate)
			case ms.DueDate != "":
				line += "  " + metaStyle.Render("due "+ms.DueDate)
			}
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

func (m projectsModel) helpKeys() string {
	return helpBar(helpEntry("1-7", "tabs"), helpEntry("j/k", "nav"), helpEntry("o", "order"), helpEntry("r", "refresh"))
}

func (m projectsModel) editing() bool { return false }

func (m projectsModel) update(msg tea.Msg) (page, tea.Cmd) { return m.Update(msg) }
