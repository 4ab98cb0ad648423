package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/crowncreative/portal/internal/upload"
	"github.com/crowncreative/portal/pkg/media"
)

// uploadTimeout covers all three upload steps, which move file bytes.
const uploadTimeout = 5 * time.Minute

var errNoUploads = errors.New("uploads are not configured")

// uploadDoneMsg reports one finished upload saga.
type uploadDoneMsg struct {
	scope scope
	name  string
	err   error
}

// runUpload opens path and hands it to send inside a tea.Cmd.
func runUpload(sc scope, saga *upload.Saga, path string, send func(ctx context.Context, s *upload.Saga, f media.File) error) tea.Cmd {
	path = expandPath(path)
	return func() tea.Msg {
		name := filepath.Base(path)
		if saga == nil {
			return uploadDoneMsg{scope: sc, name: name, err: errNoUploads}
		}
		f, fh, err := upload.Open(path)
		if err != nil {
			return uploadDoneMsg{scope: sc, name: name, err: err}
		}
		defer fh.Close() //nolint:errcheck
		ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
		defer cancel()
		return uploadDoneMsg{scope: sc, name: f.Name, err: send(ctx, saga, f)}
	}
}

// uploadResult turns an upload outcome into a notification. An orphaned
// asset is reported as a failure; the saga has already logged it.
func uploadResult(msg uploadDoneMsg) tea.Cmd {
	switch {
	case msg.err == nil:
		return notify(msg.name + " uploaded")
	case upload.IsOrphaned(msg.err):
		return func() tea.Msg {
			return notifyMsg{text: msg.name + " uploaded but could not be saved. Please try again.", isErr: true}
		}
	}
	return failed(msg.err)
}

// expandPath resolves a leading ~ and surrounding quotes from a typed path.
func expandPath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), `"'`)
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[2:])
		}
	}
	return p
}
