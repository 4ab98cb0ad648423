package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/crowncreative/portal/internal/upload"
	"github.com/crowncreative/portal/pkg/domain"
	"github.com/crowncreative/portal/pkg/media"
)

type filesLoadedMsg struct {
	scope scope
	files []domain.FileUpload
	err   error
}

// filesModel lists a client's uploads and sends new ones through the
// upload saga.
type filesModel struct {
	deps       Deps
	scope      scope
	loading    bool
	loaded     bool
	err        string
	files      []domain.FileUpload
	cursor     int
	pathInput  string
	entering   bool
	uploading  bool
	confirmDel bool
	cursorOn   bool
	width      int
	height     int
}

func newFilesModel(d Deps) filesModel {
	return filesModel{deps: d, scope: newScope(), loading: true, cursorOn: true}
}

func (m filesModel) Init() tea.Cmd {
	return tea.Batch(m.load(), cursorBlinkCmd())
}

func (m filesModel) load() tea.Cmd {
	c, sc := m.deps.Client, m.scope
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		files, err := c.ListFiles(ctx, "", "")
		return filesLoadedMsg{scope: sc, files: files, err: err}
	}
}

func (m filesModel) selected() (domain.FileUpload, bool) {
	if m.cursor < len(m.files) {
		return m.files[m.cursor], true
	}
	return domain.FileUpload{}, false
}

func (m filesModel) Update(msg tea.Msg) (filesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case cursorBlinkMsg:
		m.cursorOn = !m.cursorOn
		return m, cursorBlinkCmd()

	case filesLoadedMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			if !m.loaded {
				m.err = "Failed to load files"
			}
			return m, failed(msg.err)
		}
		m.loaded, m.err = true, ""
		m.files = msg.files
		m.cursor = clampCursor(m.cursor, len(m.files))

	case uploadDoneMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		m.uploading = false
		// An orphaned asset still leaves the list unchanged; refresh either way.
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
		key := msg.String()
		if m.entering {
			switch key {
			case "esc":
				m.entering, m.pathInput = false, ""
			case "enter":
				path := strings.TrimSpace(m.pathInput)
				if path == "" {
					return m, nil
				}
				m.entering, m.pathInput, m.uploading = false, "", true
				return m, runUpload(m.scope, m.deps.Uploads, path, func(ctx context.Context, s *upload.Saga, f media.File) error {
					_, err := s.File(ctx, f, "", "")
					return err
				})
			default:
				m.pathInput = editRune(m.pathInput, key)
			}
			return m, nil
		}

		if m.confirmDel {
			m.confirmDel = false
			if f, ok := m.selected(); ok && (key == "y" || key == "d") {
				c := m.deps.Client
				return m, doAction(m.scope, "File deleted", func(ctx context.Context) error {
					return c.DeleteFile(ctx, f.ID)
				})
			}
			return m, nil
		}

		switch key {
		case "u":
			if !m.uploading {
				m.entering = true
			}
		case "d", "x":
			if _, ok := m.selected(); ok {
				m.confirmDel = true
			}
		case "c":
			if f, ok := m.selected(); ok {
				if err := clipboard.WriteAll(f.URL); err != nil {
					return m, func() tea.Msg { return notifyMsg{text: "Clipboard unavailable", isErr: true} }
				}
				return m, notify("Link copied")
			}
		case "r":
			m.loading = true
			return m, m.load()
		default:
			m.cursor = moveCursor(m.cursor, len(m.files), key)
		}
	}
	return m, nil
}

func (m filesModel) View() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("Files") + "\n")
	b.WriteString(" " + separator(m.width) + "\n")

	switch {
	case m.entering:
		cursor := " "
		if m.cursorOn {
			cursor = accentStyle.Render("█")
		}
		b.WriteString(" " + inputPromptStyle.Render("file> ") + normalStyle.Render(m.pathInput) + cursor + "\n\n")
	case m.uploading:
		b.WriteString(" " + goldStyle.Render("uploading...") + "\n\n")
	case m.confirmDel:
		if f, ok := m.selected(); ok {
			b.WriteString(" " + rejectStyle.Render("Delete "+f.Filename+"? y to confirm") + "\n\n")
		}
	}

	if m.loading && !m.loaded {
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
		return b.String()
	}
	if m.err != "" {
		b.WriteString(" " + dimStyle.Render("error: "+m.err) + "\n")
		return b.String()
	}
	if len(m.files) == 0 {
		b.WriteString("\n " + dimStyle.Render("no files yet · press u to upload one") + "\n")
		return b.String()
	}

	for i, f := range m.files {
		name := truncStr(f.Filename, 36)
		if i == m.cursor {
			name = selectedStyle.Render(name)
		} else {
			name = normalStyle.Render(name)
		}
		fmt.Fprintf(&b, " %s%s  %s  %s\n",
			cursorPrefix(i == m.cursor),
			name,
			dimStyle.Render(domain.HumanSize(f.Size)),
			metaStyle.Render(formatDate(f.CreatedAt)),
		)
	}
	return b.String()
}

func (m filesModel) helpKeys() string {
	if m.entering {
		return helpBar(helpEntry("enter", "upload"), helpEntry("esc", "cancel"))
	}
	return helpBar(helpEntry("1-7", "tabs"), helpEntry("j/k", "nav"), helpEntry("u", "upload"), helpEntry("c", "copy link"), helpEntry("d", "delete"), helpEntry("r", "refresh"))
}

func (m filesModel) editing() bool { return m.entering }

func (m filesModel) update(msg tea.Msg) (page, tea.Cmd) { return m.Update(msg) }
