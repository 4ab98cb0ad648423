package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/crowncreative/portal/pkg/domain"
)

// minNewPasswordLen is the admin password rule, stricter than registration.
const minNewPasswordLen = 8

// password form field order.
const (
	pwCurrent = iota
	pwNew
	pwConfirm
)

type passwordChangedMsg struct {
	scope scope
	err   error
}

// settingsModel shows the signed-in account and changes its password.
type settingsModel struct {
	deps     Deps
	scope    scope
	form     form
	focused  bool
	saving   bool
	err      string
	cursorOn bool
	width    int
}

func newSettingsModel(d Deps) settingsModel {
	return settingsModel{deps: d, scope: newScope(), form: newPasswordForm()}
}

func newPasswordForm() form {
	return newForm(
		field{label: "Current password", secret: true},
		field{label: "New password", placeholder: "at least 8 characters", secret: true},
		field{label: "Confirm password", secret: true},
	)
}

func (m settingsModel) Init() tea.Cmd { return nil }

func (m settingsModel) self() *domain.User {
	if m.deps.Session == nil {
		return nil
	}
	return m.deps.Session.User()
}

// submit checks the form locally and only then calls the backend.
func (m settingsModel) submit() (settingsModel, tea.Cmd) {
	current := m.form.fields[pwCurrent].value
	next := m.form.fields[pwNew].value
	confirm := m.form.fields[pwConfirm].value
	switch {
	case current == "" || next == "" || confirm == "":
		m.err = "Please fill in all fields"
		return m, nil
	case next != confirm:
		m.err = "New passwords do not match"
		return m, nil
	case len([]rune(next)) < minNewPasswordLen:
		m.err = "New password must be at least 8 characters"
		return m, nil
	}
	m.saving, m.err = true, ""
	c, sc := m.deps.Client, m.scope
	return m, func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		return passwordChangedMsg{scope: sc, err: c.ChangePassword(ctx, current, next)}
	}
}

func (m settingsModel) Update(msg tea.Msg) (settingsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case cursorBlinkMsg:
		if !m.focused {
			return m, nil
		}
		m.cursorOn = !m.cursorOn
		return m, cursorBlinkCmd()

	case passwordChangedMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		m.saving = false
		if msg.err != nil {
			return m, failed(msg.err)
		}
		m.form = newPasswordForm()
		m.focused = false
		return m, notify("Password changed successfully!")

	case tea.KeyMsg:
		if m.saving {
			return m, nil
		}
		key := msg.String()
		if !m.focused {
			if key == "e" || key == "enter" {
				m.focused, m.cursorOn = true, true
				return m, cursorBlinkCmd()
			}
			return m, nil
		}
		m.cursorOn = true
		switch key {
		case "esc":
			m.focused, m.err = false, ""
			return m, nil
		case "enter":
			if m.form.last() {
				return m.submit()
			}
			m.form, _ = m.form.update("tab")
			return m, nil
		case "ctrl+s":
			return m.submit()
		}
		var ok bool
		if m.form, ok = m.form.update(key); ok {
			m.err = ""
		}
	}
	return m, nil
}

func (m settingsModel) View() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("Settings") + "\n")
	b.WriteString(" " + dimStyle.Render("Manage your account") + "\n")
	b.WriteString(" " + separator(m.width) + "\n\n")

	if u := m.self(); u != nil {
		b.WriteString(" " + sectionHeaderStyle.Render("Account") + "\n")
		b.WriteString("   " + dimStyle.Render("Name   ") + "  " + normalStyle.Render(u.Name) + "\n")
		b.WriteString("   " + dimStyle.Render("Email  ") + "  " + normalStyle.Render(u.Email) + "\n")
		b.WriteString("   " + dimStyle.Render("Role   ") + "  " + normalStyle.Render(string(u.Role)) + "\n\n")
	}

	b.WriteString(" " + sectionHeaderStyle.Render("Change password") + "\n")
	b.WriteString(m.form.view(m.focused && m.cursorOn))
	b.WriteString("\n")
	switch {
	case m.saving:
		b.WriteString(" " + dimStyle.Render("saving...") + "\n")
	case m.err != "":
		b.WriteString(" " + rejectStyle.Render(m.err) + "\n")
	case !m.focused:
		b.WriteString(" " + dimStyle.Render("press e to change your password") + "\n")
	}
	return b.String()
}

func (m settingsModel) helpKeys() string {
	if m.focused {
		return helpBar(helpEntry("tab", "next"), helpEntry("enter", "submit"), helpEntry("esc", "cancel"))
	}
	return helpBar(helpEntry("1-8", "tabs"), helpEntry("e", "change password"))
}

func (m settingsModel) editing() bool { return m.focused }

func (m settingsModel) update(msg tea.Msg) (page, tea.Cmd) { return m.Update(msg) }
