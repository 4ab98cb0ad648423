package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/crowncreative/portal/pkg/client"
	"github.com/crowncreative/portal/pkg/domain"
)

type intakeSubmittedMsg struct {
	scope scope
	err   error
}

// intakeModel walks a client through one questionnaire: pick a type, then
// answer every question for it.
type intakeModel struct {
	deps     Deps
	scope    scope
	cursor   int
	kind     domain.IntakeType
	form     form
	busy     bool
	err      string
	cursorOn bool
	width    int
	height   int
}

func newIntakeModel(d Deps) intakeModel {
	return intakeModel{deps: d, scope: newScope(), cursorOn: true}
}

func (m intakeModel) Init() tea.Cmd {
	return cursorBlinkCmd()
}

func (m intakeModel) choose(t domain.IntakeType) intakeModel {
	qs := domain.IntakeQuestions[t]
	fields := make([]field, len(qs))
	for i, q := range qs {
		fields[i] = field{label: q.Prompt}
	}
	m.kind = t
	m.form = newForm(fields...)
	m.err = ""
	return m
}

func (m intakeModel) submit() (intakeModel, tea.Cmd) {
	if m.kind == "" {
		m.err = "Please select a form type"
		return m, nil
	}
	qs := domain.IntakeQuestions[m.kind]
	answers := make(map[string]any, len(qs))
	for i, q := range qs {
		v := m.form.value(i)
		if v == "" {
			m.err = "Please fill in all fields"
			return m, nil
		}
		answers[q.Key] = v
	}
	m.busy, m.err = true, ""
	c, sc, kind := m.deps.Client, m.scope, m.kind
	return m, func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		_, err := c.CreateIntake(ctx, kind, "", answers)
		return intakeSubmittedMsg{scope: sc, err: err}
	}
}

func (m intakeModel) Update(msg tea.Msg) (intakeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case cursorBlinkMsg:
		m.cursorOn = !m.cursorOn
		return m, cursorBlinkCmd()

	case intakeSubmittedMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		m.busy = false
		if msg.err != nil {
			if client.IsAuth(msg.err) {
				return m, failed(msg.err)
			}
			m.err = client.Message(msg.err)
			return m, nil
		}
		return m, tea.Batch(notify("Intake form submitted successfully!"), navigate(pageDashboard, ""))

	case tea.KeyMsg:
		m.cursorOn = true
		if m.busy {
			return m, nil
		}
		if m.kind == "" {
			switch key := msg.String(); key {
			case "enter":
				return m.choose(domain.IntakeTypes[m.cursor]), nil
			default:
				m.cursor = moveCursor(m.cursor, len(domain.IntakeTypes), key)
			}
			return m, nil
		}
		switch msg.String() {
		case "esc":
			m.kind = ""
			m.err = ""
			return m, nil
		case "ctrl+s":
			return m.submit()
		case "enter":
			if m.form.last() {
				return m.submit()
			}
			m.form, _ = m.form.update("tab")
			return m, nil
		}
		var ok bool
		if m.form, ok = m.form.update(msg.String()); ok {
			m.err = ""
		}
	}
	return m, nil
}

func (m intakeModel) View() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("Intake Form") + "\n")
	b.WriteString(" " + dimStyle.Render("Help us understand your project") + "\n")
	b.WriteString(" " + separator(m.width) + "\n\n")

	if m.kind == "" {
		for i, t := range domain.IntakeTypes {
			label := normalStyle.Render(t.Label())
			if i == m.cursor {
				label = selectedStyle.Render(t.Label())
			}
			b.WriteString(" " + cursorPrefix(i == m.cursor) + label + "\n")
		}
	} else {
		b.WriteString(" " + sectionHeaderStyle.Render(strings.ToUpper(m.kind.Label())) + "\n")
		b.WriteString(m.form.view(m.cursorOn))
	}

	b.WriteString("\n")
	switch {
	case m.busy:
		b.WriteString(" " + dimStyle.Render("submitting...") + "\n")
	case m.err != "":
		b.WriteString(" " + rejectStyle.Render(m.err) + "\n")
	}
	return b.String()
}

func (m intakeModel) helpKeys() string {
	if m.kind == "" {
		return helpBar(helpEntry("1-7", "tabs"), helpEntry("j/k", "nav"), helpEntry("enter", "choose"))
	}
	return helpBar(helpEntry("tab", "next"), helpEntry("ctrl+s", "submit"), helpEntry("esc", "back"))
}

func (m intakeModel) editing() bool { return m.kind != "" }

func (m intakeModel) update(msg tea.Msg) (page, tea.Cmd) { return m.Update(msg) }
