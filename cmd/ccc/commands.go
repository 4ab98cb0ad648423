package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/crowncreative/portal/internal/payment"
	"github.com/crowncreative/portal/internal/session"
	"github.com/crowncreative/portal/internal/upload"
	"github.com/crowncreative/portal/pkg/client"
	"github.com/crowncreative/portal/pkg/domain"
)

// passwordEnv lets scripts log in without a prompt.
const passwordEnv = "CCC_PASSWORD"

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// readPassword takes CCC_PASSWORD when set, else the first line of stdin.
func readPassword(stdin io.Reader, stdout io.Writer) (string, error) {
	if pw := os.Getenv(passwordEnv); pw != "" {
		return pw, nil
	}
	fmt.Fprint(stdout, "Password: ")
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *portal) runLogin(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := newFlags("login")
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" && fs.NArg() > 0 {
		*email = fs.Arg(0)
	}
	if *email == "" {
		return errors.New("usage: ccc login --email <email>")
	}
	pw, err := readPassword(stdin, stdout)
	if err != nil {
		return err
	}

	u, err := p.session.Login(ctx, *email, pw)
	if err != nil {
		return errors.New(authFailure(err, "Login failed"))
	}
	fmt.Fprintf(stdout, "Welcome back, %s!\n", u.Name)
	return nil
}

func (p *portal) runRegister(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := newFlags("register")
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "account email")
	phone := fs.String("phone", "", "phone number (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*name) == "" || *email == "" {
		return errors.New("usage: ccc register --name <name> --email <email> [--phone <phone>]")
	}
	pw, err := readPassword(stdin, stdout)
	if err != nil {
		return err
	}
	if len(pw) < 6 {
		return errors.New("password must be at least 6 characters")
	}

	u, err := p.session.Register(ctx, *name, *email, pw, *phone)
	if err != nil {
		return errors.New(authFailure(err, "Registration failed"))
	}
	fmt.Fprintf(stdout, "Welcome, %s! Your account is ready.\n", u.Name)
	return nil
}

// authFailure prefers the backend's own message over a generic fallback.
func authFailure(err error, fallback string) string {
	if errors.Is(err, session.ErrMissingCredentials) {
		return "Please fill in all required fields"
	}
	if msg := client.Message(err); msg != "" {
		return msg
	}
	return fallback
}

func (p *portal) runLogout(ctx context.Context, stdout io.Writer) error {
	if err := p.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "Signed out.")
	return nil
}

func (p *portal) runWhoami(ctx context.Context, stdout io.Writer) error {
	if p.session.Boot(ctx) != session.Authenticated {
		printSignedOut(stdout)
		return nil
	}
	u := p.session.User()
	fmt.Fprintf(stdout, "%s <%s>\n", u.Name, u.Email)
	fmt.Fprintf(stdout, "role: %s\n", u.Role)
	if p.session.IsOperator() {
		fmt.Fprintln(stdout, "operator: yes")
	}
	return nil
}

func (p *portal) runPayStatus(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return errors.New("usage: ccc pay-status <checkout_session_id>")
	}
	poll, err := p.poller.Run(ctx, strings.TrimSpace(args[0]))
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, poll.Headline())
	if d := poll.Detail(); d != "" {
		fmt.Fprintln(stdout, d)
	}
	if poll.Status != payment.StatusSuccess {
		return fmt.Errorf("payment %s", poll.Status)
	}
	return nil
}

func (p *portal) runUpload(ctx context.Context, args []string, stdout io.Writer) error {
	fs := newFlags("upload")
	folder := fs.String("folder", "uploads", "uploads, portfolio or projects")
	orderID := fs.String("order", "", "attach to an order (uploads only)")
	title := fs.String("title", "", "portfolio title")
	desc := fs.String("desc", "", "project file description")
	if err := fs.Parse(reorderFlags(args)); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: ccc upload <path> [--folder uploads|portfolio|projects] [--order <id>]")
	}

	if p.session.Boot(ctx) != session.Authenticated {
		printSignedOut(stdout)
		return errors.New("not signed in")
	}
	self := p.session.User()

	f, fh, err := upload.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer fh.Close() //nolint:errcheck

	var url string
	switch folders[strings.Trim(*folder, "/")] {
	case domain.FolderUploads:
		var rec *domain.FileUpload
		if rec, err = p.uploads.File(ctx, f, *orderID, ""); err == nil {
			url = rec.URL
		}
	case domain.FolderPortfolio:
		if !self.IsAdmin() {
			return errors.New("portfolio uploads need an admin account")
		}
		var items []domain.PortfolioItem
		if items, err = p.client.ListPortfolio(ctx); err != nil {
			return err
		}
		var rec *domain.PortfolioItem
		if rec, err = p.uploads.Portfolio(ctx, f, *title, len(items)); err == nil {
			url = rec.URL
		}
	case domain.FolderProjects:
		var rec *domain.ProjectFile
		if rec, err = p.uploads.ProjectFile(ctx, f, self.ID, "client", *desc); err == nil {
			url = rec.URL
		}
	default:
		return fmt.Errorf("unknown folder %q", *folder)
	}

	if err != nil {
		if upload.IsOrphaned(err) {
			p.log.Warn("upload left an unregistered asset", zap.Error(err))
			return fmt.Errorf("%s was uploaded but could not be saved: %w", f.Name, err)
		}
		return fmt.Errorf("upload %s: %w", f.Name, err)
	}
	fmt.Fprintf(stdout, "%s uploaded\n%s\n", f.Name, url)
	return nil
}

var folders = map[string]string{
	"uploads":   domain.FolderUploads,
	"portfolio": domain.FolderPortfolio,
	"projects":  domain.FolderProjects,
}

// reorderFlags moves flags ahead of positional args so "upload file --folder x"
// parses like "upload --folder x file".
func reorderFlags(args []string) []string {
	var flags, rest []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "-") && len(a) > 1 {
			flags = append(flags, a)
			if !strings.Contains(a, "=") && i+1 < len(args) {
				flags = append(flags, args[i+1])
				i++
			}
			continue
		}
		rest = append(rest, a)
	}
	return append(flags, rest...)
}

func (p *portal) runForgotPassword(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return errors.New("usage: ccc forgot-password <email>")
	}
	if err := p.client.ForgotPassword(ctx, strings.TrimSpace(args[0])); err != nil {
		return errors.New(authFailure(err, "Could not send reset email"))
	}
	fmt.Fprintln(stdout, "If that email is registered, a reset link is on its way.")
	return nil
}
