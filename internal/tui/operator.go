package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/crowncreative/portal/internal/upload"
	"github.com/crowncreative/portal/pkg/client"
	"github.com/crowncreative/portal/pkg/domain"
	"github.com/crowncreative/portal/pkg/media"
)

// -- client list --

type clientsLoadedMsg struct {
	scope   scope
	clients []domain.ClientOverview
	err     error
}

// clientsModel lists every client with the state of their project board.
type clientsModel struct {
	deps    Deps
	scope   scope
	loading bool
	loaded  bool
	err     string
	clients []domain.ClientOverview
	cursor  int
	width   int
	height  int
}

func newClientsModel(d Deps) clientsModel {
	return clientsModel{deps: d, scope: newScope(), loading: true}
}

func (m clientsModel) Init() tea.Cmd {
	return m.load()
}

func (m clientsModel) load() tea.Cmd {
	c, sc := m.deps.Client, m.scope
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		clients, err := c.ListClients(ctx)
		return clientsLoadedMsg{scope: sc, clients: clients, err: err}
	}
}

func (m clientsModel) Update(msg tea.Msg) (clientsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case clientsLoadedMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			if !m.loaded {
				m.err = "Failed to load clients"
			}
			return m, failed(msg.err)
		}
		m.loaded, m.err = true, ""
		m.clients = msg.clients
		m.cursor = clampCursor(m.cursor, len(m.clients))

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "enter":
			if m.cursor < len(m.clients) {
				return m, navigate(pageClient, m.clients[m.cursor].ID)
			}
		case "r":
			m.loading = true
			return m, m.load()
		default:
			m.cursor = moveCursor(m.cursor, len(m.clients), key)
		}
	}
	return m, nil
}

func (m clientsModel) View() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("Clients") + "\n")
	b.WriteString(" " + separator(m.width) + "\n")

	if m.loading && !m.loaded {
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
		return b.String()
	}
	if m.err != "" {
		b.WriteString(" " + dimStyle.Render("error: "+m.err) + "\n")
		return b.String()
	}
	if len(m.clients) == 0 {
		b.WriteString("\n " + dimStyle.Render("no clients yet") + "\n")
		return b.String()
	}

	for i, cl := range m.clients {
		name := fmt.Sprintf("%-22s", truncStr(cl.Name, 22))
		if i == m.cursor {
			name = selectedStyle.Render(name)
		} else {
			name = normalStyle.Render(name)
		}
		board := dimStyle.Render("no board")
		if cl.HasProject {
			board = progressBar(cl.ProgressPercentage, 12) + " " + dimStyle.Render(truncStr(cl.StatusText, 24))
		}
		fmt.Fprintf(&b, " %s%s  %s  %s\n",
			cursorPrefix(i == m.cursor),
			name,
			metaStyle.Render(fmt.Sprintf("%-28s", truncStr(cl.Email, 28))),
			board)
	}
	return b.String()
}

func (m clientsModel) helpKeys() string {
	return helpBar(helpEntry("j/k", "nav"), helpEntry("enter", "open"), helpEntry("r", "refresh"), helpEntry("P", "portal"), helpEntry("A", "admin"))
}

func (m clientsModel) editing() bool { return false }

func (m clientsModel) update(msg tea.Msg) (page, tea.Cmd) { return m.Update(msg) }

// -- client board --

type clientBoardLoadedMsg struct {
	scope   scope
	project *domain.ClientProject
	files   []domain.ProjectFile
	err     error
}

type clientBoardSavedMsg struct {
	scope   scope
	project *domain.ClientProject
	err     error
}

type stepAddedMsg struct {
	scope scope
	step  *domain.NextStep
	err   error
}

type stepRemovedMsg struct {
	scope  scope
	stepID string
	err    error
}

// clientPane is the list the cursor moves through.
type clientPane int

const (
	paneSteps clientPane = iota
	paneFiles
)

// clientInput is the text entry currently open, if any.
type clientInput int

const (
	inputNone clientInput = iota
	inputBoard
	inputStep
	inputPath
)

// board form field order.
const (
	boardStatus = iota
	boardProgress
	boardNotes
)

// clientModel edits one client's project board: status, progress, notes,
// next steps and shared files. Status, progress, notes and step completion
// are edited locally and saved together with s.
type clientModel struct {
	deps      Deps
	scope     scope
	userID    string
	loading   bool
	err       string
	project   *domain.ClientProject
	files     []domain.ProjectFile
	dirty     bool
	saving    bool
	uploading bool
	pane      clientPane
	cursor    int
	input     clientInput
	form      form
	text      string
	formErr   string
	cursorOn  bool
	width     int
	height    int
}

func newClientModel(d Deps, userID string) clientModel {
	return clientModel{deps: d, scope: newScope(), userID: userID, loading: true, cursorOn: true}
}

func (m clientModel) Init() tea.Cmd {
	return tea.Batch(m.load(), cursorBlinkCmd())
}

// load fetches the board and its files together. A files failure leaves
// the list empty rather than failing the board.
func (m clientModel) load() tea.Cmd {
	c, sc, userID := m.deps.Client, m.scope, m.userID
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		msg := clientBoardLoadedMsg{scope: sc}
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			msg.project, err = c.GetClientProject(ctx, userID)
			return err
		})
		g.Go(func() error {
			files, err := c.ListProjectFiles(ctx, userID)
			if err == nil {
				msg.files = files
			}
			return nil
		})
		msg.err = g.Wait()
		return msg
	}
}

func (m clientModel) save() tea.Cmd {
	p := *m.project
	c, sc, userID := m.deps.Client, m.scope, m.userID
	upd := client.ClientProjectUpdate{
		StatusText:         &p.StatusText,
		ProgressPercentage: &p.ProgressPercentage,
		NextSteps:          p.NextSteps,
		Notes:              &p.Notes,
	}
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		saved, err := c.UpdateClientProject(ctx, userID, upd)
		return clientBoardSavedMsg{scope: sc, project: saved, err: err}
	}
}

func (m clientModel) paneLen() int {
	if m.pane == paneFiles {
		return len(m.files)
	}
	if m.project == nil {
		return 0
	}
	return len(m.project.NextSteps)
}

// applyBoardForm copies the edit form into the local project.
func (m clientModel) applyBoardForm() (clientModel, bool) {
	progress, err := strconv.Atoi(strings.TrimSuffix(m.form.value(boardProgress), "%"))
	if err != nil || progress < 0 || progress > 100 {
		m.formErr = "Progress must be a number from 0 to 100"
		return m, false
	}
	p := *m.project
	p.StatusText = m.form.value(boardStatus)
	p.ProgressPercentage = progress
	p.Notes = m.form.value(boardNotes)
	m.project = &p
	m.dirty = true
	m.formErr = ""
	return m, true
}

func (m clientModel) Update(msg tea.Msg) (clientModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case cursorBlinkMsg:
		m.cursorOn = !m.cursorOn
		return m, cursorBlinkCmd()

	case clientBoardLoadedMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			if m.project == nil {
				m.err = "Failed to load client project"
			}
			return m, failed(msg.err)
		}
		m.err = ""
		m.project, m.files, m.dirty = msg.project, msg.files, false
		m.cursor = clampCursor(m.cursor, m.paneLen())

	case clientBoardSavedMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		m.saving = false
		if msg.err != nil {
			return m, failedWith(msg.err, "Failed to save project")
		}
		if msg.project != nil {
			m.project = msg.project
		}
		m.dirty = false
		return m, notify("Project saved successfully")

	case stepAddedMsg:
		if msg.scope != m.scope || m.project == nil {
			return m, nil
		}
		if msg.err != nil {
			return m, failedWith(msg.err, "Failed to add step")
		}
		if msg.step != nil {
			p := *m.project
			p.NextSteps = append(p.NextSteps[:len(p.NextSteps):len(p.NextSteps)], *msg.step)
			m.project = &p
		}
		return m, notify("Step added")

	case stepRemovedMsg:
		if msg.scope != m.scope || m.project == nil {
			return m, nil
		}
		if msg.err != nil {
			return m, failedWith(msg.err, "Failed to remove step")
		}
		p := *m.project
		steps := make([]domain.NextStep, 0, len(p.NextSteps))
		for _, s := range p.NextSteps {
			if s.ID != msg.stepID {
				steps = append(steps, s)
			}
		}
		p.NextSteps = steps
		m.project = &p
		m.cursor = clampCursor(m.cursor, m.paneLen())
		return m, notify("Step removed")

	case uploadDoneMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		m.uploading = false
		if msg.err != nil && !upload.IsOrphaned(msg.err) {
			return m, failedWith(msg.err, "File upload failed")
		}
		return m, tea.Batch(uploadResult(msg), m.load())

	case actionMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		if msg.err != nil {
			return m, failedWith(msg.err, "Failed to delete file")
		}
		return m, tea.Batch(actionResult(msg), m.load())

	case tea.KeyMsg:
		m.cursorOn = true
		if m.input != inputNone {
			return m.updateInput(msg.String())
		}
		return m.updateNav(msg.String())
	}
	return m, nil
}

func (m clientModel) updateInput(key string) (clientModel, tea.Cmd) {
	if key == "esc" {
		m.input, m.text, m.formErr = inputNone, "", ""
		return m, nil
	}

	switch m.input {
	case inputBoard:
		switch key {
		case "ctrl+s":
			var ok bool
			if m, ok = m.applyBoardForm(); ok {
				m.input = inputNone
			}
		case "enter":
			if !m.form.last() {
				m.form, _ = m.form.update("tab")
				return m, nil
			}
			var ok bool
			if m, ok = m.applyBoardForm(); ok {
				m.input = inputNone
			}
		default:
			var ok bool
			if m.form, ok = m.form.update(key); ok {
				m.formErr = ""
			}
		}
		return m, nil

	case inputStep:
		if key != "enter" {
			m.text = editRune(m.text, key)
			return m, nil
		}
		text := strings.TrimSpace(m.text)
		if text == "" {
			return m, nil
		}
		m.input, m.text = inputNone, ""
		c, sc, userID := m.deps.Client, m.scope, m.userID
		return m, func() tea.Msg {
			ctx, cancel := reqCtx()
			defer cancel()
			step, err := c.AddNextStep(ctx, userID, text)
			return stepAddedMsg{scope: sc, step: step, err: err}
		}

	case inputPath:
		if key != "enter" {
			m.text = editRune(m.text, key)
			return m, nil
		}
		path := strings.TrimSpace(m.text)
		if path == "" {
			return m, nil
		}
		m.input, m.text, m.uploading = inputNone, "", true
		userID := m.userID
		return m, runUpload(m.scope, m.deps.Uploads, path, func(ctx context.Context, s *upload.Saga, f media.File) error {
			_, err := s.ProjectFile(ctx, f, userID, "admin", "")
			return err
		})
	}
	return m, nil
}

func (m clientModel) updateNav(key string) (clientModel, tea.Cmd) {
	switch key {
	case "esc":
		return m, navigate(pageClients, "")
	case "r":
		m.loading = true
		return m, m.load()
	}
	if m.project == nil {
		return m, nil
	}

	switch key {
	case "tab":
		if m.pane == paneSteps {
			m.pane = paneFiles
		} else {
			m.pane = paneSteps
		}
		m.cursor = 0
	case "e":
		m.input = inputBoard
		m.form = newForm(
			field{label: "Status", value: m.project.StatusText, placeholder: "Design in progress"},
			field{label: "Progress %", value: strconv.Itoa(m.project.ProgressPercentage)},
			field{label: "Notes", value: m.project.Notes},
		)
	case "s":
		if !m.saving {
			m.saving = true
			return m, m.save()
		}
	case "a":
		m.input, m.text = inputStep, ""
	case "u":
		if !m.uploading {
			m.input, m.text = inputPath, ""
		}
	case "space", " ":
		if m.pane == paneSteps && m.cursor < len(m.project.NextSteps) {
			step := m.project.NextSteps[m.cursor]
			if next, ok := m.project.WithStepToggled(step.ID, !step.Completed); ok {
				m.project = &next
				m.dirty = true
			}
		}
	case "x", "d":
		switch {
		case m.pane == paneSteps && m.cursor < len(m.project.NextSteps):
			stepID := m.project.NextSteps[m.cursor].ID
			c, sc, userID := m.deps.Client, m.scope, m.userID
			return m, func() tea.Msg {
				ctx, cancel := reqCtx()
				defer cancel()
				return stepRemovedMsg{scope: sc, stepID: stepID, err: c.RemoveNextStep(ctx, userID, stepID)}
			}
		case m.pane == paneFiles && m.cursor < len(m.files):
			id, c := m.files[m.cursor].ID, m.deps.Client
			return m, doAction(m.scope, "File deleted", func(ctx context.Context) error {
				return c.DeleteProjectFile(ctx, id)
			})
		}
	default:
		m.cursor = moveCursor(m.cursor, m.paneLen(), key)
	}
	return m, nil
}

func (m clientModel) View() string {
	var b strings.Builder
	title := "Client"
	if m.project != nil && m.project.UserName != "" {
		title = m.project.UserName
	}
	b.WriteString(" " + titleStyle.Render(title))
	if m.project != nil && m.project.UserEmail != "" {
		b.WriteString("  " + metaStyle.Render(m.project.UserEmail))
	}
	if m.dirty {
		b.WriteString("  " + goldStyle.Render("unsaved · s to save"))
	}
	b.WriteString("\n " + separator(m.width) + "\n")

	if m.loading && m.project == nil {
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
		return b.String()
	}
	if m.err != "" {
		b.WriteString(" " + dimStyle.Render("error: "+m.err) + "\n")
		return b.String()
	}
	if m.project == nil {
		return b.String()
	}

	if m.input == inputBoard {
		b.WriteString(" " + sectionHeaderStyle.Render("EDIT BOARD") + "\n")
		b.WriteString(m.form.view(m.cursorOn))
		if m.formErr != "" {
			b.WriteString("\n " + rejectStyle.Render(m.formErr) + "\n")
		}
		return b.String()
	}

	p := m.project
	status := p.StatusText
	if status == "" {
		status = "no status"
	}
	b.WriteString(" " + goldStyle.Render(status) + "\n")
	fmt.Fprintf(&b, " %s %s\n", progressBar(p.ProgressPercentage, 24), dimStyle.Render(fmt.Sprintf("%d%%", p.ProgressPercentage)))
	if p.Notes != "" {
		b.WriteString(" " + dimStyle.Render(truncStr(oneLine(p.Notes), max(m.width-4, 20))) + "\n")
	}

	cursor := " "
	if m.cursorOn {
		cursor = accentStyle.Render("█")
	}
	switch {
	case m.input == inputStep:
		b.WriteString("\n " + inputPromptStyle.Render("step> ") + normalStyle.Render(m.text) + cursor + "\n")
	case m.input == inputPath:
		b.WriteString("\n " + inputPromptStyle.Render("file> ") + normalStyle.Render(m.text) + cursor + "\n")
	case m.uploading:
		b.WriteString("\n " + goldStyle.Render("uploading...") + "\n")
	case m.saving:
		b.WriteString("\n " + dimStyle.Render("saving...") + "\n")
	}

	header := func(label string, active bool) string {
		if active {
			return selectedStyle.Render(label)
		}
		return sectionHeaderStyle.Render(label)
	}

	b.WriteString("\n " + header("NEXT STEPS", m.pane == paneSteps) + "\n")
	if len(p.NextSteps) == 0 {
		b.WriteString("   " + dimStyle.Render("none · press a to add") + "\n")
	}
	for i, s := range p.NextSteps {
		box := "[ ]"
		if s.Completed {
			box = successStyle.Render("[✓]")
		}
		fmt.Fprintf(&b, " %s%s %s\n", cursorPrefix(m.pane == paneSteps && i == m.cursor), box, normalStyle.Render(s.Text))
	}

	b.WriteString("\n " + header("FILES", m.pane == paneFiles) + "\n")
	if len(m.files) == 0 {
		b.WriteString("   " + dimStyle.Render("none · press u to upload") + "\n")
	}
	for i, f := range m.files {
		fmt.Fprintf(&b, " %s%s  %s  %s\n",
			cursorPrefix(m.pane == paneFiles && i == m.cursor),
			normalStyle.Render(truncStr(f.Filename, 32)),
			dimStyle.Render(domain.HumanSize(f.Size)),
			metaStyle.Render(f.UploadedBy))
	}
	return b.String()
}

func (m clientModel) helpKeys() string {
	switch m.input {
	case inputBoard:
		return helpBar(helpEntry("tab", "next"), helpEntry("ctrl+s", "apply"), helpEntry("esc", "cancel"))
	case inputStep, inputPath:
		return helpBar(helpEntry("enter", "ok"), helpEntry("esc", "cancel"))
	}
	return helpBar(helpEntry("e", "edit"), helpEntry("s", "save"), helpEntry("a", "add step"), helpEntry("space", "toggle"), helpEntry("x", "remove"), helpEntry("u", "upload"), helpEntry("tab", "pane"), helpEntry("esc", "back"))
}

func (m clientModel) editing() bool { return m.input != inputNone }

func (m clientModel) update(msg tea.Msg) (page, tea.Cmd) { return m.Update(msg) }
