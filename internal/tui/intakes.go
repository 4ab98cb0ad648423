package tui

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/crowncreative/portal/pkg/domain"
)

type intakesLoadedMsg struct {
	scope   scope
	filter  domain.IntakeType
	intakes []domain.Intake
	err     error
}

// intakesModel lists submitted questionnaires for admins.
type intakesModel struct {
	deps    Deps
	scope   scope
	loading bool
	loaded  bool
	err     string
	filter  domain.IntakeType
	intakes []domain.Intake
	cursor  int
	width   int
	height  int
}

func newIntakesModel(d Deps) intakesModel {
	return intakesModel{deps: d, scope: newScope(), loading: true}
}

func (m intakesModel) Init() tea.Cmd {
	return m.load()
}

func (m intakesModel) load() tea.Cmd {
	c, sc, filter := m.deps.Client, m.scope, m.filter
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		intakes, err := c.ListIntakes(ctx, filter)
		return intakesLoadedMsg{scope: sc, filter: filter, intakes: intakes, err: err}
	}
}

// nextIntakeFilter cycles all → each type → all.
func nextIntakeFilter(cur domain.IntakeType) domain.IntakeType {
	if cur == "" {
		return domain.IntakeTypes[0]
	}
	for i, t := range domain.IntakeTypes {
		if t == cur && i+1 < len(domain.IntakeTypes) {
			return domain.IntakeTypes[i+1]
		}
	}
	return ""
}

func (m intakesModel) Update(msg tea.Msg) (intakesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case intakesLoadedMsg:
		// A response for a filter the admin has already moved past is stale.
		if msg.scope != m.scope || msg.filter != m.filter {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			if !m.loaded {
				m.err = "Failed to load intakes"
			}
			return m, failed(msg.err)
		}
		m.loaded, m.err = true, ""
		m.intakes = msg.intakes
		m.cursor = clampCursor(m.cursor, len(m.intakes))

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "f":
			m.filter = nextIntakeFilter(m.filter)
			m.loading = true
			m.cursor = 0
			return m, m.load()
		case "r":
			m.loading = true
			return m, m.load()
		default:
			m.cursor = moveCursor(m.cursor, len(m.intakes), key)
		}
	}
	return m, nil
}

// answerLines renders an intake's answers in question order, then any
// answers the question set does not know about.
func answerLines(in domain.Intake) []string {
	var lines []string
	seen := map[string]bool{}
	for _, q := range domain.IntakeQuestions[in.Type] {
		seen[q.Key] = true
		if v, ok := in.Answers[q.Key]; ok {
			lines = append(lines, dimStyle.Render(q.Prompt), "  "+normalStyle.Render(fmt.Sprint(v)))
		}
	}
	var extra []string
	for k := range in.Answers {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		lines = append(lines, dimStyle.Render(k), "  "+normalStyle.Render(fmt.Sprint(in.Answers[k])))
	}
	return lines
}

func (m intakesModel) View() string {
	var b strings.Builder
	filter := "all"
	if m.filter != "" {
		filter = m.filter.Label()
	}
	b.WriteString(" " + titleStyle.Render("Intakes") + "  " + metaStyle.Render("filter: "+filter) + "\n")
	b.WriteString(" " + separator(m.width) + "\n")

	if m.loading && !m.loaded {
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
		return b.String()
	}
	if m.err != "" {
		b.WriteString(" " + dimStyle.Render("error: "+m.err) + "\n")
		return b.String()
	}
	if len(m.intakes) == 0 {
		b.WriteString("\n " + dimStyle.Render("no intakes") + "\n")
		return b.String()
	}

	for i, in := range m.intakes {
		who := in.UserName
		if who == "" {
			who = in.UserEmail
		}
		fmt.Fprintf(&b, " %s%s  %s  %s\n",
			cursorPrefix(i == m.cursor),
			accentStyle.Render(fmt.Sprintf("%-14s", in.Type.Label())),
			normalStyle.Render(truncStr(who, 28)),
			metaStyle.Render(formatDate(in.CreatedAt)))
	}

	if m.cursor < len(m.intakes) {
		b.WriteString("\n " + sectionHeaderStyle.Render("ANSWERS") + "\n")
		for _, line := range answerLines(m.intakes[m.cursor]) {
			b.WriteString("   " + line + "\n")
		}
	}
	return b.String()
}

func (m intakesModel) helpKeys() string {
	return helpBar(helpEntry("1-8", "tabs"), helpEntry("j/k", "nav"), helpEntry("f", "filter"), helpEntry("r", "refresh"))
}

func (m intakesModel) editing() bool { return false }

func (m intakesModel) update(msg tea.Msg) (page, tea.Cmd) { return m.Update(msg) }
