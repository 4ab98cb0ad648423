package tui

import (
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

// maxInputLen is the maximum number of runes allowed in chat and form inputs.
const maxInputLen = 2000

// cursorBlinkMsg toggles the input cursor on/off.
type cursorBlinkMsg struct{}

func cursorBlinkCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(time.Time) tea.Msg {
		return cursorBlinkMsg{}
	})
}

// editRune processes a keystroke for inline text editing.
// Handles backspace (rune-aware), single printable characters and
// bracketed pastes ("[...]", as bubbletea reports them).
// Returns the text unchanged for non-printable keys (enter, esc, etc.).
// Input is clamped to maxInputLen runes.
func editRune(text string, key string) string {
	switch key {
	case "backspace":
		if len(text) > 0 {
			runes := []rune(text)
			return string(runes[:len(runes)-1])
		}
		return text
	case "space":
		key = " "
	}
	if n := utf8.RuneCountInString(key); n > 2 && strings.HasPrefix(key, "[") && strings.HasSuffix(key, "]") {
		pasted := []rune(strings.ReplaceAll(key[1:len(key)-1], "\n", " "))
		room := maxInputLen - utf8.RuneCountInString(text)
		if room <= 0 {
			return text
		}
		if len(pasted) > room {
			pasted = pasted[:room]
		}
		return text + string(pasted)
	}
	if utf8.RuneCountInString(key) == 1 {
		if utf8.RuneCountInString(text) >= maxInputLen {
			return text
		}
		return text + key
	}
	return text
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}

// field is one labelled line of a form.
type field struct {
	label       string
	value       string
	placeholder string
	secret      bool
}

// form is a vertical stack of text fields with one focused at a time.
type form struct {
	fields []field
	focus  int
}

func newForm(fields ...field) form {
	return form{fields: fields}
}

// update applies a key to the form. It reports true when the key was
// consumed (navigation or editing).
func (f form) update(key string) (form, bool) {
	switch key {
	case "tab", "down":
		f.focus = (f.focus + 1) % len(f.fields)
		return f, true
	case "shift+tab", "up":
		f.focus = (f.focus - 1 + len(f.fields)) % len(f.fields)
		return f, true
	}
	before := f.fields[f.focus].value
	after := editRune(before, key)
	if after == before && key != "backspace" {
		return f, false
	}
	fields := make([]field, len(f.fields))
	copy(fields, f.fields)
	fields[f.focus].value = after
	f.fields = fields
	return f, true
}

// value returns the trimmed value of field i.
func (f form) value(i int) string {
	return strings.TrimSpace(f.fields[i].value)
}

// set replaces the value of field i.
func (f form) set(i int, v string) form {
	fields := make([]field, len(f.fields))
	copy(fields, f.fields)
	fields[i].value = v
	f.fields = fields
	return f
}

// last reports whether the focused field is the final one.
func (f form) last() bool {
	return f.focus == len(f.fields)-1
}

func (f form) view(cursorOn bool) string {
	width := 0
	for _, fl := range f.fields {
		width = max(width, utf8.RuneCountInString(fl.label))
	}
	var b strings.Builder
	for i, fl := range f.fields {
		label := fl.label + strings.Repeat(" ", width-utf8.RuneCountInString(fl.label))
		value := fl.value
		if fl.secret {
			value = strings.Repeat("•", utf8.RuneCountInString(value))
		}
		var rendered string
		switch {
		case i == f.focus:
			cursor := " "
			if cursorOn {
				cursor = accentStyle.Render("█")
			}
			rendered = inputPromptStyle.Render("> ") + selectedStyle.Render(label) + "  " + normalStyle.Render(value) + cursor
		case value == "":
			rendered = "  " + dimStyle.Render(label) + "  " + inputPlaceholderStyle.Render(fl.placeholder)
		default:
			rendered = "  " + dimStyle.Render(label) + "  " + normalStyle.Render(value)
		}
		b.WriteString(" " + rendered + "\n")
	}
	return b.String()
}

// renderChatInput renders the inline message composer used by Messages.
func renderChatInput(input, placeholder string, focused, cursorOn bool) string {
	const timeIndent = "           " // 11 spaces: " " + 8-char timestamp + "  "

	sep := chatSepStyle.Render(" · ")
	namePart := chatSelfNameStyle.Render("you")
	if !focused {
		if input == "" {
			return timeIndent + namePart + sep + inputPlaceholderStyle.Render(placeholder)
		}
		return timeIndent + namePart + sep + dimStyle.Render(input)
	}
	cursor := " "
	if cursorOn {
		cursor = accentStyle.Render("█")
	}
	if input == "" {
		return timeIndent + namePart + sep + cursor
	}
	return timeIndent + namePart + sep + chatSelfTextStyle.Render(input) + cursor
}
