package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/crowncreative/portal/pkg/client"
)

// minPasswordLen matches the backend's registration rule.
const minPasswordLen = 6

// register form field order.
const (
	regName = iota
	regEmail
	regPassword
	regPhone
)

type forgotSentMsg struct {
	scope scope
	err   error
}

// loginModel is the sign-in form, or the registration form when register
// is set. It never sends a login while one is in flight.
type loginModel struct {
	deps     Deps
	scope    scope
	register bool
	form     form
	err      string
	busy     bool
	cursorOn bool
	width    int
	height   int
}

func newLoginModel(d Deps, register bool) loginModel {
	m := loginModel{deps: d, scope: newScope(), register: register, cursorOn: true}
	if register {
		m.form = newForm(
			field{label: "Name", placeholder: "Jane Doe"},
			field{label: "Email", placeholder: "you@example.com"},
			field{label: "Password", placeholder: "at least 6 characters", secret: true},
			field{label: "Phone", placeholder: "optional"},
		)
	} else {
		m.form = newForm(
			field{label: "Email", placeholder: "you@example.com"},
			field{label: "Password", secret: true},
		)
	}
	return m
}

func (m loginModel) Init() tea.Cmd {
	return cursorBlinkCmd()
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	if m.register {
		name, email, password := m.form.value(regName), m.form.value(regEmail), m.form.fields[regPassword].value
		if name == "" || email == "" || password == "" {
			m.err = "Please fill in all required fields"
			return m, nil
		}
		if len([]rune(password)) < minPasswordLen {
			m.err = "Password must be at least 6 characters"
			return m, nil
		}
		phone := m.form.value(regPhone)
		m.busy, m.err = true, ""
		store, sc := m.deps.Session, m.scope
		return m, func() tea.Msg {
			ctx, cancel := reqCtx()
			defer cancel()
			u, err := store.Register(ctx, name, email, password, phone)
			return authDoneMsg{scope: sc, user: u, greeting: "Account created successfully!", err: err}
		}
	}

	email, password := m.form.value(0), m.form.fields[1].value
	if email == "" || password == "" {
		m.err = "Please fill in all fields"
		return m, nil
	}
	m.busy, m.err = true, ""
	store, sc := m.deps.Session, m.scope
	return m, func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		u, err := store.Login(ctx, email, password)
		return authDoneMsg{scope: sc, user: u, greeting: "Welcome back!", err: err}
	}
}

func (m loginModel) forgot() (loginModel, tea.Cmd) {
	email := m.form.value(0)
	if m.register {
		email = m.form.value(regEmail)
	}
	if email == "" || !strings.Contains(email, "@") {
		m.err = "Enter your email first"
		return m, nil
	}
	c, sc := m.deps.Client, m.scope
	return m, func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		return forgotSentMsg{scope: sc, err: c.ForgotPassword(ctx, email)}
	}
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case cursorBlinkMsg:
		m.cursorOn = !m.cursorOn
		return m, cursorBlinkCmd()

	case authDoneMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		m.busy = false
		if msg.err != nil {
			m.err = client.Message(msg.err)
			if m.register {
				m.form = m.form.set(regPassword, "")
			} else {
				m.form = m.form.set(1, "")
			}
		}

	case forgotSentMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		if msg.err != nil {
			m.err = client.Message(msg.err)
			return m, nil
		}
		return m, notify("If the email exists, a reset link has been sent")

	case tea.KeyMsg:
		m.cursorOn = true
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "enter":
			if m.form.last() {
				return m.submit()
			}
			m.form, _ = m.form.update("tab")
			return m, nil
		case "ctrl+s":
			return m.submit()
		case "ctrl+r":
			if m.register {
				return m, navigate(pageLogin, "")
			}
			return m, navigate(pageRegister, "")
		case "ctrl+f":
			return m.forgot()
		}
		var ok bool
		if m.form, ok = m.form.update(msg.String()); ok {
			m.err = ""
		}
	}
	return m, nil
}

func (m loginModel) View() string {
	var b strings.Builder
	title := "Sign in"
	sub := "Welcome back to your Crown Collective portal"
	if m.register {
		title = "Create account"
		sub = "Start your project with Crown Collective Creative"
	}
	b.WriteString("\n " + titleStyle.Render(title) + "\n")
	b.WriteString(" " + dimStyle.Render(sub) + "\n")
	b.WriteString(" " + separator(m.width) + "\n\n")
	b.WriteString(m.form.view(m.cursorOn))
	b.WriteString("\n")
	switch {
	case m.busy:
		b.WriteString(" " + dimStyle.Render("signing in...") + "\n")
	case m.err != "":
		b.WriteString(" " + rejectStyle.Render(m.err) + "\n")
	}
	return b.String()
}

func (m loginModel) helpKeys() string {
	other := "register"
	if m.register {
		other = "sign in"
	}
	return helpBar(helpEntry("tab", "next"), helpEntry("enter", "submit"), helpEntry("ctrl+r", other), helpEntry("ctrl+f", "forgot password"), helpEntry("ctrl+c", "quit"))
}

func (m loginModel) editing() bool { return true }

func (m loginModel) update(msg tea.Msg) (page, tea.Cmd) { return m.Update(msg) }
