package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/crowncreative/portal/pkg/domain"
)

// threadsState distinguishes between list and conversation views.
type threadsState int

const (
	threadsListState  threadsState = iota
	threadsConvoState              // viewing a single thread
)

// threadsPollInterval is how often the open conversation polls for new messages.
const threadsPollInterval = 5 * time.Second

// -- messages --

type threadsListLoadedMsg struct {
	scope   scope
	threads []domain.Thread
	err     error
}

type threadsMessagesLoadedMsg struct {
	scope    scope
	gen      int
	threadID string
	messages []domain.Message
	err      error
}

type threadsSendMsg struct {
	scope    scope
	gen      int
	threadID string
	message  *domain.Message
	err      error
}

type threadsStartedMsg struct {
	scope  scope
	thread *domain.Thread
	err    error
}

type threadsPollTickMsg struct {
	scope    scope
	gen      int
	threadID string
}

// -- model --

// threadsModel is the message center. Clients see their own conversations
// with the studio; admins see every client's.
type threadsModel struct {
	deps    Deps
	scope   scope
	admin   bool
	state   threadsState
	threads []domain.Thread
	cursor  int
	err     string
	loading bool
	loaded  bool
	width   int
	height  int

	// convo state; gen counts opens so a reopened thread runs one poll loop
	gen          int
	open         domain.Thread
	messages     []domain.Message
	input        string
	inputFocused bool
	cursorOn     bool
	sending      bool

	// new conversation
	composing bool
	subject   string
}

func newThreadsModel(d Deps, admin bool) threadsModel {
	return threadsModel{deps: d, scope: newScope(), admin: admin, loading: true, cursorOn: true}
}

func (m threadsModel) Init() tea.Cmd {
	return tea.Batch(m.loadThreads(), cursorBlinkCmd())
}

func (m threadsModel) selfID() string {
	if m.deps.Session == nil {
		return ""
	}
	if u := m.deps.Session.User(); u != nil {
		return u.ID
	}
	return ""
}

func (m threadsModel) loadThreads() tea.Cmd {
	c, sc := m.deps.Client, m.scope
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		threads, err := c.ListThreads(ctx)
		return threadsListLoadedMsg{scope: sc, threads: threads, err: err}
	}
}

func (m threadsModel) loadMessages() tea.Cmd {
	c, sc, gen, threadID := m.deps.Client, m.scope, m.gen, m.open.ID
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		msgs, err := c.GetMessages(ctx, threadID)
		return threadsMessagesLoadedMsg{scope: sc, gen: gen, threadID: threadID, messages: msgs, err: err}
	}
}

func (m threadsModel) pollCmd() tea.Cmd {
	sc, gen, threadID := m.scope, m.gen, m.open.ID
	return tea.Tick(threadsPollInterval, func(time.Time) tea.Msg {
		return threadsPollTickMsg{scope: sc, gen: gen, threadID: threadID}
	})
}

func (m threadsModel) sendMessage(body string) tea.Cmd {
	c, sc, gen, threadID := m.deps.Client, m.scope, m.gen, m.open.ID
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		msg, err := c.SendMessage(ctx, threadID, body, nil)
		return threadsSendMsg{scope: sc, gen: gen, threadID: threadID, message: msg, err: err}
	}
}

func (m threadsModel) startThread(subject string) tea.Cmd {
	c, sc := m.deps.Client, m.scope
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		thread, err := c.CreateThread(ctx, subject)
		return threadsStartedMsg{scope: sc, thread: thread, err: err}
	}
}

func (m threadsModel) openThread(t domain.Thread) (threadsModel, tea.Cmd) {
	m.state = threadsConvoState
	m.gen++
	m.open = t
	m.messages = nil
	m.sending = false
	m.inputFocused = true
	m.cursorOn = true
	m.input = ""
	return m, m.loadMessages()
}

// inConvo reports whether results for threadID still belong on screen.
func (m threadsModel) inConvo(sc scope, gen int, threadID string) bool {
	return sc == m.scope && gen == m.gen && m.state == threadsConvoState && threadID == m.open.ID
}

func (m threadsModel) Update(msg tea.Msg) (threadsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case threadsListLoadedMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			if !m.loaded {
				m.err = "Failed to load messages"
			}
			return m, failed(msg.err)
		}
		m.loaded, m.err = true, ""
		m.threads = msg.threads
		m.cursor = clampCursor(m.cursor, len(m.threads))

	case threadsMessagesLoadedMsg:
		if !m.inConvo(msg.scope, msg.gen, msg.threadID) {
			return m, nil
		}
		if msg.err != nil {
			return m, tea.Batch(failed(msg.err), m.pollCmd())
		}
		m.messages = msg.messages
		return m, m.pollCmd()

	case threadsPollTickMsg:
		if m.inConvo(msg.scope, msg.gen, msg.threadID) {
			return m, m.loadMessages()
		}

	case threadsSendMsg:
		if !m.inConvo(msg.scope, msg.gen, msg.threadID) {
			return m, nil
		}
		m.sending = false
		if msg.err != nil {
			return m, failed(msg.err)
		}
		if msg.message != nil {
			m.messages = append(m.messages[:len(m.messages):len(m.messages)], *msg.message)
		}

	case threadsStartedMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		if msg.err != nil {
			return m, failed(msg.err)
		}
		if msg.thread != nil {
			m.composing, m.subject = false, ""
			m.threads = append([]domain.Thread{*msg.thread}, m.threads...)
			next, cmd := m.openThread(*msg.thread)
			return next, tea.Batch(cmd, notify("Conversation started"))
		}

	case cursorBlinkMsg:
		m.cursorOn = !m.cursorOn
		return m, cursorBlinkCmd()

	case tea.KeyMsg:
		m.cursorOn = true
		switch m.state {
		case threadsListState:
			return m.updateList(msg)
		case threadsConvoState:
			return m.updateConvo(msg)
		}
	}
	return m, nil
}

func (m threadsModel) updateList(msg tea.KeyMsg) (threadsModel, tea.Cmd) {
	key := msg.String()
	if m.composing {
		switch key {
		case "esc":
			m.composing, m.subject = false, ""
		case "enter":
			subject := strings.TrimSpace(m.subject)
			if subject == "" {
				return m, func() tea.Msg { return notifyMsg{text: "Please enter a subject", isErr: true} }
			}
			return m, m.startThread(subject)
		default:
			m.subject = editRune(m.subject, key)
		}
		return m, nil
	}

	switch key {
	case "enter":
		if m.cursor < len(m.threads) {
			return m.openThread(m.threads[m.cursor])
		}
	case "s", "n":
		if !m.admin {
			m.composing = true
		}
	case "r":
		return m, m.loadThreads()
	default:
		m.cursor = moveCursor(m.cursor, len(m.threads), key)
	}
	return m, nil
}

func (m threadsModel) updateConvo(msg tea.KeyMsg) (threadsModel, tea.Cmd) {
	key := msg.String()

	if m.inputFocused {
		switch key {
		case "esc":
			m.inputFocused = false
			return m, nil
		case "enter":
			body := strings.TrimSpace(m.input)
			if body == "" || m.sending {
				return m, nil
			}
			m.input = ""
			m.sending = true
			return m, m.sendMessage(body)
		default:
			m.input = editRune(m.input, key)
			return m, nil
		}
	}

	// Nav mode
	switch key {
	case "esc":
		m.state = threadsListState
		m.open = domain.Thread{}
		m.messages = nil
		m.input = ""
		return m, m.loadThreads()
	case "enter", "i":
		m.inputFocused = true
		return m, nil
	}
	return m, nil
}

func (m threadsModel) View() string {
	if m.state == threadsConvoState {
		return m.viewConvo()
	}
	return m.viewList()
}

func (m threadsModel) viewList() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("Messages") + "\n")
	b.WriteString(" " + separator(m.width) + "\n")

	if m.composing {
		cursor := " "
		if m.cursorOn {
			cursor = accentStyle.Render("█")
		}
		b.WriteString(" " + inputPromptStyle.Render("subject> ") + normalStyle.Render(m.subject) + cursor + "\n\n")
	}
	if m.loading && !m.loaded {
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
		return b.String()
	}
	if m.err != "" {
		b.WriteString(" " + dimStyle.Render("error: "+m.err) + "\n")
		return b.String()
	}
	if len(m.threads) == 0 {
		hint := "no conversations yet"
		if !m.admin {
			hint += " · press s to start one"
		}
		b.WriteString("\n " + dimStyle.Render(hint) + "\n")
		return b.String()
	}

	for i, t := range m.threads {
		subject := truncStr(t.Subject, 32)
		if i == m.cursor {
			subject = selectedStyle.Render(subject)
		} else {
			subject = normalStyle.Render(subject)
		}
		who := ""
		if m.admin && t.UserName != "" {
			who = goldStyle.Render(truncStr(t.UserName, 16)) + "  "
		}
		preview := truncStr(oneLine(t.LastMessage), 40)
		if preview == "" {
			preview = "no messages"
		}
		fmt.Fprintf(&b, " %s%s%s  %s  %s\n",
			cursorPrefix(i == m.cursor),
			who,
			subject,
			dimStyle.Render(preview),
			metaStyle.Render(formatTime(t.UpdatedAt.Time)),
		)
	}
	return b.String()
}

func (m threadsModel) viewConvo() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render(m.open.Subject))
	if m.admin && m.open.UserName != "" {
		b.WriteString("  " + metaStyle.Render(m.open.UserName))
	}
	b.WriteString("\n " + separator(m.width) + "\n")

	chrome := 3 // header + sep + input
	viewportHeight := max(m.height-chrome, 2)

	if len(m.messages) == 0 {
		padLines(viewportHeight-1, &b)
		b.WriteString(" " + dimStyle.Render("no messages yet") + "\n")
	} else {
		var allLines []string
		for _, msg := range m.messages {
			allLines = append(allLines, strings.Split(m.renderThreadMessage(msg), "\n")...)
		}
		visible := allLines[max(len(allLines)-viewportHeight, 0):]
		padLines(viewportHeight-len(visible), &b)
		for _, line := range visible {
			b.WriteString(line + "\n")
		}
	}

	b.WriteString(renderChatInput(m.input, "type a message...", m.inputFocused, m.cursorOn))
	b.WriteByte('\n')
	return b.String()
}

func (m threadsModel) renderThreadMessage(msg domain.Message) string {
	timePart := metaStyle.Render(fmt.Sprintf("%8s", formatChatTime(msg.CreatedAt.Time)))
	sep := chatSepStyle.Render(" · ")

	isSelf := msg.SenderID != "" && msg.SenderID == m.selfID()
	var namePart string
	switch {
	case isSelf:
		namePart = chatSelfNameStyle.Render("you")
	case msg.SenderRole == domain.RoleAdmin:
		namePart = chatStudioNameStyle.Render("Crown Collective")
	default:
		namePart = normalStyle.Render(msg.SenderName)
	}

	bodyWidth := max(m.width-26, 20)
	lines := strings.Split(lipgloss.NewStyle().Width(bodyWidth).Render(msg.Body), "\n")

	bodyStyle := chatTextStyle
	if isSelf {
		bodyStyle = chatSelfTextStyle
	}

	result := " " + timePart + "  " + namePart + sep + bodyStyle.Render(lines[0])
	indent := strings.Repeat(" ", 15)
	for _, line := range lines[1:] {
		result += "\n" + indent + bodyStyle.Render(line)
	}
	for _, a := range msg.Attachments {
		result += "\n" + indent + metaStyle.Render("📎 "+a)
	}
	return result
}

func (m threadsModel) helpKeys() string {
	switch {
	case m.state == threadsConvoState && m.inputFocused:
		return helpBar(helpEntry("enter", "send"), helpEntry("esc", "nav"))
	case m.state == threadsConvoState:
		return helpBar(helpEntry("enter", "type"), helpEntry("esc", "back"))
	case m.composing:
		return helpBar(helpEntry("enter", "start"), helpEntry("esc", "cancel"))
	case m.admin:
		return helpBar(helpEntry("1-8", "tabs"), helpEntry("j/k", "nav"), helpEntry("enter", "open"), helpEntry("r", "refresh"))
	}
	return helpBar(helpEntry("1-7", "tabs"), helpEntry("j/k", "nav"), helpEntry("enter", "open"), helpEntry("s", "new"), helpEntry("r", "refresh"))
}

func (m threadsModel) editing() bool {
	return m.composing || (m.state == threadsConvoState && m.inputFocused)
}

func (m threadsModel) update(msg tea.Msg) (page, tea.Cmd) { return m.Update(msg) }
