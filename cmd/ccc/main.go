package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/crowncreative/portal/internal/config"
	"github.com/crowncreative/portal/internal/logging"
	"github.com/crowncreative/portal/internal/payment"
	"github.com/crowncreative/portal/internal/session"
	"github.com/crowncreative/portal/internal/tui"
	"github.com/crowncreative/portal/internal/upload"
	"github.com/crowncreative/portal/pkg/client"
	"github.com/crowncreative/portal/pkg/media"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// portal is everything one invocation needs, wired from config.
type portal struct {
	cfg     *config.Config
	log     *zap.Logger
	tokens  session.TokenStore
	client  *client.Client
	session *session.Store
	poller  *payment.Poller
	uploads *upload.Saga
	closers []func() error
}

// open wires the portal. The TUI owns the terminal, so it logs to the log
// file; plain commands log to stderr.
func open(ctx context.Context, cfg *config.Config, interactive bool) (*portal, error) {
	logPath := ""
	if interactive {
		logPath = cfg.Log.File
	}
	log, err := logging.New(cfg.Log.Level, logPath)
	if err != nil {
		return nil, err
	}
	p := &portal{cfg: cfg, log: log}

	p.tokens, err = p.openTokens(ctx)
	if err != nil {
		return nil, err
	}
	p.client = client.New(cfg.APIURL, p.tokens,
		client.WithTimeout(cfg.HTTPTimeout),
		client.WithHeader("X-Client", "ccc/"+version))
	p.session = session.New(p.client, p.tokens, log)
	p.poller = payment.NewPoller(p.client,
		payment.WithInterval(cfg.Poll.Interval),
		payment.WithMaxAttempts(cfg.Poll.Attempts),
		payment.WithLogger(log))
	p.uploads = upload.New(p.client, media.NewClient(cfg.MediaURL), log)
	return p, nil
}

// openTokens picks the token store: an explicit CCC_TOKEN, then Redis when
// configured, then the token file.
func (p *portal) openTokens(ctx context.Context) (session.TokenStore, error) {
	switch {
	case p.cfg.Token != "":
		return session.NewMemoryTokenStore(p.cfg.Token), nil
	case p.cfg.Redis.URL != "":
		rdb, err := session.DialRedis(ctx, p.cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		p.closers = append(p.closers, rdb.Close)
		return session.NewRedisTokenStore(rdb, p.cfg.Redis.Key), nil
	default:
		return session.NewFileTokenStore(p.cfg.TokenPath()), nil
	}
}

func (p *portal) Close() {
	for _, c := range p.closers {
		if err := c(); err != nil {
			p.log.Warn("close", zap.Error(err))
		}
	}
	_ = p.log.Sync()
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
	}
	switch cmd {
	case "--version", "version", "-v":
		fmt.Fprintln(stdout, "ccc "+version)
		return nil
	case "help", "--help", "-h":
		printHelp(stdout)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx := context.Background()

	interactive := cmd == "" || cmd == "--session"
	p, err := open(ctx, cfg, interactive)
	if err != nil {
		return err
	}
	defer p.Close()

	switch cmd {
	case "", "--session":
		return p.runTUI(args)
	case "login":
		return p.runLogin(ctx, args[1:], stdin, stdout)
	case "register":
		return p.runRegister(ctx, args[1:], stdin, stdout)
	case "logout":
		return p.runLogout(ctx, stdout)
	case "whoami":
		return p.runWhoami(ctx, stdout)
	case "pay-status":
		return p.runPayStatus(ctx, args[1:], stdout)
	case "upload":
		return p.runUpload(ctx, args[1:], stdout)
	case "forgot-password":
		return p.runForgotPassword(ctx, args[1:], stdout)
	}
	return fmt.Errorf("unknown command %q (see ccc help)", cmd)
}

func (p *portal) runTUI(args []string) error {
	var opts []tui.Option
	if len(args) > 0 && args[0] == "--session" {
		if len(args) < 2 {
			return errors.New("--session needs a checkout session id")
		}
		opts = append(opts, tui.WithPaymentSession(args[1]))
	}

	app := tui.NewApp(tui.Deps{
		Client:    p.client,
		Session:   p.session,
		Poller:    p.poller,
		Uploads:   p.uploads,
		Logger:    p.log,
		ReturnURL: p.cfg.PortalURL,
	}, opts...)

	prog := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
