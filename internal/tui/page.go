package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crowncreative/portal/internal/guard"
	"github.com/crowncreative/portal/internal/payment"
	"github.com/crowncreative/portal/internal/session"
	"github.com/crowncreative/portal/internal/upload"
	"github.com/crowncreative/portal/pkg/client"
	"github.com/crowncreative/portal/pkg/domain"
)

// requestTimeout bounds every backend call made from a view.
const requestTimeout = 30 * time.Second

// noticeTTL is how long a notification stays in the status line.
const noticeTTL = 4 * time.Second

// Deps are the services views call into. Any of them may be nil in tests
// that only feed messages to a model.
type Deps struct {
	Client    *client.Client
	Session   *session.Store
	Poller    *payment.Poller
	Uploads   *upload.Saga
	Logger    *zap.Logger
	ReturnURL string
}

func (d Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// pageID names a mountable view.
type pageID int

const (
	pageLanding pageID = iota // resolved to login or the user's home
	pageLogin
	pageRegister
	pageDashboard
	pageOrders
	pageOrder
	pagePayment
	pageProjects
	pageIntake
	pageThreads
	pageFiles
	pageMyProject
	pageAdminStats
	pageAdminServices
	pageAdminOrders
	pageAdminIntakes
	pageAdminUsers
	pageAdminPortfolio
	pageAdminThreads
	pageAdminSettings
	pageClients
	pageClient
)

// pageSpec describes where a page lives and what it demands of the session.
type pageSpec struct {
	title   string
	req     guard.Requirement
	section guard.Route
}

var pageSpecs = map[pageID]pageSpec{
	pageLanding:        {"", guard.None, ""},
	pageLogin:          {"Sign in", guard.None, guard.RouteLogin},
	pageRegister:       {"Create account", guard.None, guard.RouteLogin},
	pageDashboard:      {"Dashboard", guard.Auth, guard.RoutePortal},
	pageOrders:         {"Orders", guard.Auth, guard.RoutePortal},
	pageOrder:          {"Order", guard.Auth, guard.RoutePortal},
	pagePayment:        {"Payment", guard.Auth, guard.RoutePortal},
	pageProjects:       {"Projects", guard.Auth, guard.RoutePortal},
	pageIntake:         {"Intake", guard.Auth, guard.RoutePortal},
	pageThreads:        {"Messages", guard.Auth, guard.RoutePortal},
	pageFiles:          {"Files", guard.Auth, guard.RoutePortal},
	pageMyProject:      {"My Project", guard.Auth, guard.RoutePortal},
	pageAdminStats:     {"Overview", guard.Admin, guard.RouteAdmin},
	pageAdminServices:  {"Services", guard.Admin, guard.RouteAdmin},
	pageAdminOrders:    {"Orders", guard.Admin, guard.RouteAdmin},
	pageAdminIntakes:   {"Intakes", guard.Admin, guard.RouteAdmin},
	pageAdminUsers:     {"Users", guard.Admin, guard.RouteAdmin},
	pageAdminPortfolio: {"Portfolio", guard.Admin, guard.RouteAdmin},
	pageAdminThreads:   {"Messages", guard.Admin, guard.RouteAdmin},
	pageAdminSettings:  {"Settings", guard.Admin, guard.RouteAdmin},
	pageClients:        {"Clients", guard.Operator, guard.RouteOperator},
	pageClient:         {"Client", guard.Operator, guard.RouteOperator},
}

// sectionTabs lists the tab bar of each workspace, in key order.
var sectionTabs = map[guard.Route][]pageID{
	guard.RoutePortal:   {pageDashboard, pageOrders, pageProjects, pageIntake, pageThreads, pageFiles, pageMyProject},
	guard.RouteAdmin:    {pageAdminStats, pageAdminServices, pageAdminOrders, pageAdminIntakes, pageAdminUsers, pageAdminPortfolio, pageAdminThreads, pageAdminSettings},
	guard.RouteOperator: {pageClients},
}

// routePages maps guard routes to the page that represents them.
var routePages = map[guard.Route]pageID{
	guard.RouteLogin:    pageLogin,
	guard.RoutePortal:   pageDashboard,
	guard.RouteAdmin:    pageAdminStats,
	guard.RouteOperator: pageClients,
}

// page is a mounted view. Every model implements it through a one-line
// update adapter over its typed Update.
type page interface {
	Init() tea.Cmd
	View() string
	helpKeys() string
	editing() bool
	update(tea.Msg) (page, tea.Cmd)
}

// scope identifies one mount of a page. Results carry the scope of the
// mount that issued them; a model drops results from any other mount.
type scope string

func newScope() scope {
	return scope(uuid.NewString())
}

// -- app-level messages --

// bootedMsg reports the end of the session boot.
type bootedMsg struct {
	state session.State
}

// navigateMsg asks the app to mount a page.
type navigateMsg struct {
	to  pageID
	arg string
}

// authDoneMsg reports a login or registration attempt.
type authDoneMsg struct {
	scope    scope
	user     *domain.User
	greeting string
	err      error
}

// authExpiredMsg means the backend rejected the token.
type authExpiredMsg struct{}

// notifyMsg shows a transient notification.
type notifyMsg struct {
	text  string
	isErr bool
}

type noticeExpiredMsg struct {
	id int
}

func navigate(to pageID, arg string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{to: to, arg: arg} }
}

func notify(text string) tea.Cmd {
	return func() tea.Msg { return notifyMsg{text: text} }
}

// failed turns an action error into a notification, or into a session
// expiry when the backend no longer accepts the token.
func failed(err error) tea.Cmd {
	if client.IsAuth(err) {
		return func() tea.Msg { return authExpiredMsg{} }
	}
	text := client.Message(err)
	return func() tea.Msg { return notifyMsg{text: text, isErr: true} }
}

// failedWith is failed with a fixed message in place of the server's.
func failedWith(err error, text string) tea.Cmd {
	if client.IsAuth(err) {
		return failed(err)
	}
	return func() tea.Msg { return notifyMsg{text: text, isErr: true} }
}

// reqCtx returns the context for one backend call.
func reqCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// actionMsg reports a mutation. Views refetch on success.
type actionMsg struct {
	scope scope
	verb  string
	err   error
}

// doAction runs fn and reports it as an actionMsg for sc.
func doAction(sc scope, verb string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		return actionMsg{scope: sc, verb: verb, err: fn(ctx)}
	}
}

// actionResult converts an actionMsg into the notification to show.
func actionResult(msg actionMsg) tea.Cmd {
	if msg.err != nil {
		return failed(msg.err)
	}
	return notify(msg.verb)
}
