package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/crowncreative/portal/internal/upload"
	"github.com/crowncreative/portal/pkg/domain"
	"github.com/crowncreative/portal/pkg/media"
)

type portfolioLoadedMsg struct {
	scope scope
	items []domain.PortfolioItem
	err   error
}

type portfolioReorderedMsg struct {
	scope scope
	err   error
}

// portfolioModel manages the public showcase. Items are shown in
// order_index order; J and K move the selected item.
type portfolioModel struct {
	deps       Deps
	scope      scope
	loading    bool
	loaded     bool
	err        string
	items      []domain.PortfolioItem
	cursor     int
	entering   bool
	pathInput  string
	uploading  bool
	confirmDel bool
	cursorOn   bool
	width      int
	height     int
}

func newPortfolioModel(d Deps) portfolioModel {
	return portfolioModel{deps: d, scope: newScope(), loading: true, cursorOn: true}
}

func (m portfolioModel) Init() tea.Cmd {
	return tea.Batch(m.load(), cursorBlinkCmd())
}

func (m portfolioModel) load() tea.Cmd {
	c, sc := m.deps.Client, m.scope
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		items, err := c.ListPortfolio(ctx)
		return portfolioLoadedMsg{scope: sc, items: items, err: err}
	}
}

// move swaps the selected item with its neighbour and persists the new
// order. The list is updated before the backend confirms.
func (m portfolioModel) move(delta int) (portfolioModel, tea.Cmd) {
	j := m.cursor + delta
	if m.cursor >= len(m.items) || j < 0 || j >= len(m.items) {
		return m, nil
	}
	items := make([]domain.PortfolioItem, len(m.items))
	copy(items, m.items)
	items[m.cursor], items[j] = items[j], items[m.cursor]
	positions := make([]domain.PortfolioPosition, len(items))
	for i := range items {
		items[i].OrderIndex = i
		positions[i] = domain.PortfolioPosition{ID: items[i].ID, OrderIndex: i}
	}
	m.items, m.cursor = items, j

	c, sc := m.deps.Client, m.scope
	return m, func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		return portfolioReorderedMsg{scope: sc, err: c.ReorderPortfolio(ctx, positions)}
	}
}

func (m portfolioModel) Update(msg tea.Msg) (portfolioModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case cursorBlinkMsg:
		m.cursorOn = !m.cursorOn
		return m, cursorBlinkCmd()

	case portfolioLoadedMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			if !m.loaded {
				m.err = "Failed to load portfolio"
			}
			return m, failed(msg.err)
		}
		m.loaded, m.err = true, ""
		m.items = msg.items
		m.cursor = clampCursor(m.cursor, len(m.items))

	case portfolioReorderedMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		if msg.err != nil {
			// Restore the server's order.
			return m, tea.Batch(failedWith(msg.err, "Failed to reorder portfolio"), m.load())
		}

	case uploadDoneMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		m.uploading = false
		return m, tea.Batch(uploadResult(msg), m.load())

	case actionMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		if msg.err != nil {
			return m, failedWith(msg.err, "Failed to delete item")
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
				title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				index := len(m.items)
				m.entering, m.pathInput, m.uploading = false, "", true
				return m, runUpload(m.scope, m.deps.Uploads, path, func(ctx context.Context, s *upload.Saga, f media.File) error {
					_, err := s.Portfolio(ctx, f, title, index)
					return err
				})
			default:
				m.pathInput = editRune(m.pathInput, key)
			}
			return m, nil
		}

		if m.confirmDel {
			m.confirmDel = false
			if key == "y" && m.cursor < len(m.items) {
				id, c := m.items[m.cursor].ID, m.deps.Client
				return m, doAction(m.scope, "Item deleted", func(ctx context.Context) error {
					return c.DeletePortfolioItem(ctx, id)
				})
			}
			return m, nil
		}

		switch key {
		case "u":
			if !m.uploading {
				m.entering = true
			}
		case "J":
			return m.move(1)
		case "K":
			return m.move(-1)
		case "d", "x":
			if m.cursor < len(m.items) {
				m.confirmDel = true
			}
		case "r":
			m.loading = true
			return m, m.load()
		default:
			m.cursor = moveCursor(m.cursor, len(m.items), key)
		}
	}
	return m, nil
}

func (m portfolioModel) View() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("Portfolio") + "\n")
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
	case m.confirmDel && m.cursor < len(m.items):
		b.WriteString(" " + rejectStyle.Render("Delete this item? y to confirm") + "\n\n")
	}

	if m.loading && !m.loaded {
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
		return b.String()
	}
	if m.err != "" {
		b.WriteString(" " + dimStyle.Render("error: "+m.err) + "\n")
		return b.String()
	}
	if len(m.items) == 0 {
		b.WriteString("\n " + dimStyle.Render("no portfolio items · press u to upload") + "\n")
		return b.String()
	}

	for i, it := range m.items {
		title := it.Title
		if title == "" {
			title = filepath.Base(it.URL)
		}
		title = truncStr(title, 32)
		if i == m.cursor {
			title = selectedStyle.Render(title)
		} else {
			title = normalStyle.Render(title)
		}
		kind := "image"
		if domain.ResourceTypeFor(it.MimeType) == domain.ResourceVideo {
			kind = "video"
		}
		fmt.Fprintf(&b, " %s%s  %s  %s  %s\n",
			cursorPrefix(i == m.cursor),
			metaStyle.Render(fmt.Sprintf("%2d", i+1)),
			title,
			dimStyle.Render(kind),
			dimStyle.Render(domain.HumanSize(it.Size)))
	}
	return b.String()
}

func (m portfolioModel) helpKeys() string {
	if m.entering {
		return helpBar(helpEntry("enter", "upload"), helpEntry("esc", "cancel"))
	}
	return helpBar(helpEntry("1-8", "tabs"), helpEntry("j/k", "nav"), helpEntry("J/K", "move"), helpEntry("u", "upload"), helpEntry("d", "delete"))
}

func (m portfolioModel) editing() bool { return m.entering }

func (m portfolioModel) update(msg tea.Msg) (page, tea.Cmd) { return m.Update(msg) }
