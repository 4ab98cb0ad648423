package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/crowncreative/portal/pkg/client"
	"github.com/crowncreative/portal/pkg/domain"
)

type myProjectLoadedMsg struct {
	scope   scope
	project *domain.ClientProject
	err     error
}

type stepToggledMsg struct {
	scope     scope
	stepID    string
	completed bool
	err       error
}

// myProjectModel shows the board the studio keeps for this client. Steps
// toggle optimistically and revert when the backend refuses.
type myProjectModel struct {
	deps    Deps
	scope   scope
	loading bool
	none    bool
	err     string
	project *domain.ClientProject
	cursor  int
	width   int
	height  int
}

func newMyProjectModel(d Deps) myProjectModel {
	return myProjectModel{deps: d, scope: newScope(), loading: true}
}

func (m myProjectModel) Init() tea.Cmd {
	return m.load()
}

func (m myProjectModel) load() tea.Cmd {
	c, sc := m.deps.Client, m.scope
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		p, err := c.GetMyProject(ctx)
		return myProjectLoadedMsg{scope: sc, project: p, err: err}
	}
}

func (m myProjectModel) toggle(stepID string, completed bool) tea.Cmd {
	c, sc := m.deps.Client, m.scope
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		return stepToggledMsg{scope: sc, stepID: stepID, completed: completed, err: c.ToggleNextStep(ctx, stepID, completed)}
	}
}

func (m myProjectModel) Update(msg tea.Msg) (myProjectModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case myProjectLoadedMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		m.loading = false
		switch {
		case client.IsNotFound(msg.err):
			m.none, m.project = true, nil
		case msg.err != nil:
			if m.project == nil {
				m.err = "Failed to load project"
			}
			return m, failed(msg.err)
		default:
			m.none, m.err = false, ""
			m.project = msg.project
			m.cursor = clampCursor(m.cursor, len(m.project.NextSteps))
		}

	case stepToggledMsg:
		if msg.scope != m.scope || m.project == nil {
			return m, nil
		}
		if msg.err != nil {
			if reverted, ok := m.project.WithStepToggled(msg.stepID, !msg.completed); ok {
				m.project = &reverted
			}
			return m, failedWith(msg.err, "Failed to update step")
		}

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "space", " ", "enter", "x":
			if m.project == nil || m.cursor >= len(m.project.NextSteps) {
				return m, nil
			}
			step := m.project.NextSteps[m.cursor]
			next, ok := m.project.WithStepToggled(step.ID, !step.Completed)
			if !ok {
				return m, nil
			}
			m.project = &next
			return m, m.toggle(step.ID, !step.Completed)
		case "r":
			m.loading = true
			return m, m.load()
		default:
			if m.project != nil {
				m.cursor = moveCursor(m.cursor, len(m.project.NextSteps), key)
			}
		}
	}
	return m, nil
}

func (m myProjectModel) View() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("My Project") + "\n")
	b.WriteString(" " + separator(m.width) + "\n")

	switch {
	case m.loading && m.project == nil:
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
		return b.String()
	case m.err != "":
		b.WriteString(" " + dimStyle.Render("error: "+m.err) + "\n")
		return b.String()
	case m.none || m.project == nil:
		b.WriteString("\n " + dimStyle.Render("Your project board will appear here once the studio sets it up.") + "\n")
		return b.String()
	}

	p := m.project
	status := p.StatusText
	if status == "" {
		status = "Getting started"
	}
	b.WriteString(" " + goldStyle.Bold(true).Render(status) + "\n")
	fmt.Fprintf(&b, " %s %s\n\n", progressBar(p.ProgressPercentage, 24), dimStyle.Render(fmt.Sprintf("%d%%", p.ProgressPercentage)))

	b.WriteString(" " + sectionHeaderStyle.Render("NEXT STEPS") + "\n")
	if len(p.NextSteps) == 0 {
		b.WriteString("   " + dimStyle.Render("nothing scheduled yet") + "\n")
	}
	for i, s := range p.NextSteps {
		box, text := "[ ]", normalStyle.Render(s.Text)
		if s.Completed {
			box, text = successStyle.Render("[✓]"), dimStyle.Strikethrough(true).Render(s.Text)
		}
		fmt.Fprintf(&b, " %s%s %s\n", cursorPrefix(i == m.cursor), box, text)
	}

	if p.Notes != "" {
		b.WriteString("\n " + sectionHeaderStyle.Render("NOTES") + "\n")
		for _, line := range strings.Split(p.Notes, "\n") {
			b.WriteString("   " + dimStyle.Render(line) + "\n")
		}
	}
	if !p.UpdatedAt.IsZero() {
		b.WriteString("\n " + metaStyle.Render("updated "+formatTime(p.UpdatedAt.Time)) + "\n")
	}
	return b.String()
}

func (m myProjectModel) helpKeys() string {
	return helpBar(helpEntry("1-7", "tabs"), helpEntry("j/k", "nav"), helpEntry("space", "toggle"), helpEntry("r", "refresh"))
}

func (m myProjectModel) editing() bool { return false }

func (m myProjectModel) update(msg tea.Msg) (page, tea.Cmd) { return m.Update(msg) }
