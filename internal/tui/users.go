package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/crowncreative/portal/pkg/client"
	"github.com/crowncreative/portal/pkg/domain"
)

type usersLoadedMsg struct {
	scope  scope
	search string
	role   domain.Role
	users  []domain.User
	err    error
}

// usersModel is the admin user directory.
type usersModel struct {
	deps       Deps
	scope      scope
	loading    bool
	loaded     bool
	err        string
	users      []domain.User
	cursor     int
	search     string
	searching  bool
	role       domain.Role
	creating   bool
	form       form
	formErr    string
	confirmDel bool
	cursorOn   bool
	width      int
	height     int
}

func newUsersModel(d Deps) usersModel {
	return usersModel{deps: d, scope: newScope(), loading: true, cursorOn: true}
}

func (m usersModel) Init() tea.Cmd {
	return tea.Batch(m.load(), cursorBlinkCmd())
}

func (m usersModel) load() tea.Cmd {
	c, sc, search, role := m.deps.Client, m.scope, strings.TrimSpace(m.search), m.role
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		users, err := c.ListUsers(ctx, search, role)
		return usersLoadedMsg{scope: sc, search: search, role: role, users: users, err: err}
	}
}

func nextRoleFilter(r domain.Role) domain.Role {
	switch r {
	case "":
		return domain.RoleClient
	case domain.RoleClient:
		return domain.RoleAdmin
	}
	return ""
}

func (m usersModel) selected() (domain.User, bool) {
	if m.cursor < len(m.users) {
		return m.users[m.cursor], true
	}
	return domain.User{}, false
}

func (m usersModel) createClient() (usersModel, tea.Cmd) {
	req := client.CreateClientRequest{
		Name:     m.form.value(0),
		Email:    m.form.value(1),
		Password: m.form.fields[2].value,
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		m.formErr = "Please fill in all fields"
		return m, nil
	}
	if len([]rune(req.Password)) < minPasswordLen {
		m.formErr = "Password must be at least 6 characters"
		return m, nil
	}
	m.creating, m.formErr = false, ""
	c := m.deps.Client
	return m, doAction(m.scope, "Client account created", func(ctx context.Context) error {
		_, err := c.CreateClient(ctx, req)
		return err
	})
}

func (m usersModel) Update(msg tea.Msg) (usersModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case cursorBlinkMsg:
		m.cursorOn = !m.cursorOn
		return m, cursorBlinkCmd()

	case usersLoadedMsg:
		if msg.scope != m.scope || msg.search != strings.TrimSpace(m.search) || msg.role != m.role {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			if !m.loaded {
				m.err = "Failed to load users"
			}
			return m, failed(msg.err)
		}
		m.loaded, m.err = true, ""
		m.users = msg.users
		m.cursor = clampCursor(m.cursor, len(m.users))

	case actionMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		return m, tea.Batch(actionResult(msg), m.load())

	case tea.KeyMsg:
		m.cursorOn = true
		key := msg.String()

		switch {
		case m.creating:
			switch key {
			case "esc":
				m.creating, m.formErr = false, ""
			case "ctrl+s":
				return m.createClient()
			case "enter":
				if m.form.last() {
					return m.createClient()
				}
				m.form, _ = m.form.update("tab")
			default:
				var ok bool
				if m.form, ok = m.form.update(key); ok {
					m.formErr = ""
				}
			}
			return m, nil

		case m.searching:
			switch key {
			case "esc", "enter":
				m.searching = false
			default:
				m.search = editRune(m.search, key)
				m.loading = true
				return m, m.load()
			}
			return m, nil

		case m.confirmDel:
			m.confirmDel = false
			if u, ok := m.selected(); ok && key == "y" {
				c := m.deps.Client
				return m, doAction(m.scope, "User deleted", func(ctx context.Context) error {
					return c.DeleteUser(ctx, u.ID)
				})
			}
			return m, nil
		}

		switch key {
		case "/":
			m.searching = true
		case "f":
			m.role = nextRoleFilter(m.role)
			m.loading, m.cursor = true, 0
			return m, m.load()
		case "R":
			if u, ok := m.selected(); ok {
				role := domain.RoleAdmin
				if u.Role == domain.RoleAdmin {
					role = domain.RoleClient
				}
				c := m.deps.Client
				return m, doAction(m.scope, "User role updated", func(ctx context.Context) error {
					return c.UpdateUserRole(ctx, u.ID, role)
				})
			}
		case "n":
			m.creating = true
			m.form = newForm(
				field{label: "Name"},
				field{label: "Email"},
				field{label: "Password", secret: true},
			)
		case "d", "x":
			if _, ok := m.selected(); ok {
				m.confirmDel = true
			}
		case "r":
			m.loading = true
			return m, m.load()
		default:
			m.cursor = moveCursor(m.cursor, len(m.users), key)
		}
	}
	return m, nil
}

func (m usersModel) View() string {
	var b strings.Builder
	role := "all"
	if m.role != "" {
		role = string(m.role)
	}
	b.WriteString(" " + titleStyle.Render("Users") + "  " + metaStyle.Render("role: "+role) + "\n")
	b.WriteString(" " + separator(m.width) + "\n")

	if m.creating {
		b.WriteString(" " + sectionHeaderStyle.Render("NEW CLIENT") + "\n")
		b.WriteString(m.form.view(m.cursorOn))
		if m.formErr != "" {
			b.WriteString("\n " + rejectStyle.Render(m.formErr) + "\n")
		}
		return b.String()
	}

	if m.searching || m.search != "" {
		cursor := ""
		if m.searching && m.cursorOn {
			cursor = accentStyle.Render("█")
		}
		b.WriteString(" " + inputPromptStyle.Render("/ ") + normalStyle.Render(m.search) + cursor + "\n")
	}
	if m.loading && !m.loaded {
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
		return b.String()
	}
	if m.err != "" {
		b.WriteString(" " + dimStyle.Render("error: "+m.err) + "\n")
		return b.String()
	}
	if u, ok := m.selected(); ok && m.confirmDel {
		b.WriteString(" " + rejectStyle.Render("Delete "+u.Email+"? y to confirm") + "\n")
	}
	if len(m.users) == 0 {
		b.WriteString("\n " + dimStyle.Render("no users match") + "\n")
		return b.String()
	}

	for i, u := range m.users {
		name := truncStr(u.Name, 22)
		if i == m.cursor {
			name = selectedStyle.Render(fmt.Sprintf("%-22s", name))
		} else {
			name = normalStyle.Render(fmt.Sprintf("%-22s", name))
		}
		roleTag := dimStyle.Render(string(u.Role))
		if u.Role == domain.RoleAdmin {
			roleTag = goldStyle.Render(string(u.Role))
		}
		fmt.Fprintf(&b, " %s%s  %s  %s  %s\n",
			cursorPrefix(i == m.cursor),
			name,
			dimStyle.Render(truncStr(u.Email, 30)),
			roleTag,
			metaStyle.Render(formatDate(u.CreatedAt)))
	}
	return b.String()
}

func (m usersModel) helpKeys() string {
	switch {
	case m.creating:
		return helpBar(helpEntry("tab", "next"), helpEntry("ctrl+s", "create"), helpEntry("esc", "cancel"))
	case m.searching:
		return helpBar(helpEntry("type", "search"), helpEntry("enter", "done"))
	}
	return helpBar(helpEntry("1-8", "tabs"), helpEntry("/", "search"), helpEntry("f", "role"), helpEntry("R", "toggle admin"), helpEntry("n", "new client"), helpEntry("d", "delete"))
}

func (m usersModel) editing() bool { return m.creating || m.searching }

func (m usersModel) update(msg tea.Msg) (page, tea.Cmd) { return m.Update(msg) }
