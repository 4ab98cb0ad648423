package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/crowncreative/portal/internal/browser"
	"github.com/crowncreative/portal/internal/guard"
	"github.com/crowncreative/portal/internal/session"
)

// loggedOutMsg reports a finished logout.
type loggedOutMsg struct {
	err error
}

// App is the root Bubbletea model. It owns navigation: every page mount
// goes through the route guard first.
type App struct {
	deps       Deps
	booting    bool
	pending    navigateMsg
	current    pageID
	section    guard.Route
	page       page
	helpOpen   bool
	helpCursor int
	notice     string
	noticeErr  bool
	noticeID   int
	width      int
	height     int
	frame      int // logo shimmer animation frame
}

// Option configures the App.
type Option func(*App)

// WithPaymentSession opens the payment confirmation view for a checkout
// session once the session has booted.
func WithPaymentSession(sessionID string) Option {
	return func(a *App) {
		a.pending = navigateMsg{to: pagePayment, arg: sessionID}
	}
}

// NewApp creates the portal application.
func NewApp(d Deps, opts ...Option) App {
	a := App{
		deps:    d,
		booting: true,
		pending: navigateMsg{to: pageLanding},
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(shimmerTickCmd(), a.boot())
}

func (a App) boot() tea.Cmd {
	store := a.deps.Session
	return func() tea.Msg {
		if store == nil {
			return bootedMsg{state: session.Anonymous}
		}
		ctx, cancel := reqCtx()
		defer cancel()
		return bootedMsg{state: store.Boot(ctx)}
	}
}

func (a App) logout() tea.Cmd {
	store := a.deps.Session
	return func() tea.Msg {
		if store == nil {
			return loggedOutMsg{}
		}
		ctx, cancel := reqCtx()
		defer cancel()
		return loggedOutMsg{err: store.Logout(ctx)}
	}
}

func (a App) snapshot() session.Snapshot {
	if a.deps.Session == nil {
		return session.Snapshot{State: session.Anonymous}
	}
	return a.deps.Session.Snapshot()
}

func (a App) bodySize() tea.WindowSizeMsg {
	// Chrome: header(2) + tabs(1) + status(1) + help(1) = 5 lines
	return tea.WindowSizeMsg{Width: a.width, Height: a.height - 5}
}

// navigate asks the guard about to and mounts whatever it allows.
func (a App) navigate(to pageID, arg string) (App, tea.Cmd) {
	snap := a.snapshot()
	if to == pageLanding {
		to = routePages[guard.LandingFor(snap.User)]
	}
	decision := guard.Decide(snap, pageSpecs[to].req)
	switch decision {
	case guard.Defer:
		a.booting = true
		a.pending = navigateMsg{to: to, arg: arg}
		a.page = nil
		return a, nil
	case guard.RedirectLogin, guard.RedirectHome:
		a.deps.logger().Debug("navigation redirected",
			zap.Stringer("decision", decision),
			zap.String("wanted", pageSpecs[to].title))
		target := guard.Target(decision, snap, "")
		a, cmd := a.mount(routePages[target], "")
		if decision == guard.RedirectHome {
			return a, tea.Batch(cmd, func() tea.Msg {
				return notifyMsg{text: "You don't have access to that area", isErr: true}
			})
		}
		return a, cmd
	}
	return a.mount(to, arg)
}

func (a App) mount(to pageID, arg string) (App, tea.Cmd) {
	p := newPage(a.deps, to, arg)
	p, _ = p.update(a.bodySize())
	a.page = p
	a.current = to
	a.section = pageSpecs[to].section
	return a, p.Init()
}

func newPage(d Deps, to pageID, arg string) page {
	switch to {
	case pageRegister:
		return newLoginModel(d, true)
	case pageDashboard:
		return newDashboardModel(d)
	case pageOrders:
		return newOrdersModel(d, false)
	case pageOrder:
		return newOrderModel(d, arg)
	case pagePayment:
		return newPaymentModel(d, arg)
	case pageProjects:
		return newProjectsModel(d)
	case pageIntake:
		return newIntakeModel(d)
	case pageThreads:
		return newThreadsModel(d, false)
	case pageFiles:
		return newFilesModel(d)
	case pageMyProject:
		return newMyProjectModel(d)
	case pageAdminStats:
		return newStatsModel(d)
	case pageAdminServices:
		return newServicesModel(d)
	case pageAdminOrders:
		return newOrdersModel(d, true)
	case pageAdminIntakes:
		return newIntakesModel(d)
	case pageAdminUsers:
		return newUsersModel(d)
	case pageAdminPortfolio:
		return newPortfolioModel(d)
	case pageAdminThreads:
		return newThreadsModel(d, true)
	case pageAdminSettings:
		return newSettingsModel(d)
	case pageClients:
		return newClientsModel(d)
	case pageClient:
		return newClientModel(d, arg)
	default:
		return newLoginModel(d, false)
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.page != nil {
			a.page, _ = a.page.update(a.bodySize())
		}
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case bootedMsg:
		a.booting = false
		return a.navigate(a.pending.to, a.pending.arg)

	case navigateMsg:
		if a.booting {
			a.pending = msg
			return a, nil
		}
		return a.navigate(msg.to, msg.arg)

	case authDoneMsg:
		if msg.err == nil && msg.user != nil {
			a, cmd := a.navigate(pageLanding, "")
			return a, tea.Batch(cmd, notify(msg.greeting))
		}

	case authExpiredMsg:
		if a.deps.Session != nil {
			ctx, cancel := reqCtx()
			a.deps.Session.Expire(ctx)
			cancel()
		}
		a, cmd := a.mount(pageLogin, "")
		return a, tea.Batch(cmd, func() tea.Msg {
			return notifyMsg{text: "Your session has expired. Please sign in again.", isErr: true}
		})

	case loggedOutMsg:
		a, cmd := a.mount(pageLogin, "")
		if msg.err != nil {
			a.deps.logger().Warn("logout failed to clear token", zap.Error(msg.err))
		}
		return a, tea.Batch(cmd, notify("Signed out"))

	case notifyMsg:
		a.notice = msg.text
		a.noticeErr = msg.isErr
		a.noticeID++
		id := a.noticeID
		return a, tea.Tick(noticeTTL, func(time.Time) tea.Msg {
			return noticeExpiredMsg{id: id}
		})

	case noticeExpiredMsg:
		if msg.id == a.noticeID {
			a.notice = ""
		}
		return a, nil

	case tea.KeyMsg:
		if a.helpOpen {
			switch msg.String() {
			case "h", "esc":
				a.helpOpen = false
			case "q", "ctrl+c":
				return a, tea.Quit
			case "j", "down":
				if a.helpCursor < len(helpItems)-1 {
					a.helpCursor++
				}
			case "k", "up":
				if a.helpCursor > 0 {
					a.helpCursor--
				}
			case "enter":
				item := helpItems[a.helpCursor]
				if item.url != "" {
					browser.Open(item.url) //nolint:errcheck // best-effort browser open
				}
			}
			return a, nil
		}

		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.page == nil {
			if msg.String() == "q" {
				return a, tea.Quit
			}
			return a, nil
		}
		if !a.page.editing() {
			if next, cmd, ok := a.globalKey(msg.String()); ok {
				return next, cmd
			}
		}
	}

	if a.page == nil {
		return a, nil
	}
	var cmd tea.Cmd
	a.page, cmd = a.page.update(msg)
	return a, cmd
}

// globalKey handles the keys that work on every page outside text entry.
func (a App) globalKey(key string) (App, tea.Cmd, bool) {
	switch key {
	case "h", "?":
		a.helpOpen = true
		a.helpCursor = 0
		return a, nil, true
	case "q":
		return a, tea.Quit, true
	case "P":
		next, cmd := a.navigate(pageDashboard, "")
		return next, cmd, true
	case "A":
		next, cmd := a.navigate(pageAdminStats, "")
		return next, cmd, true
	case "O":
		next, cmd := a.navigate(pageClients, "")
		return next, cmd, true
	case "L":
		if a.snapshot().State == session.Authenticated {
			return a, a.logout(), true
		}
	}
	tabs := sectionTabs[a.section]
	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(tabs) {
		to := tabs[n-1]
		if to == a.current {
			return a, nil, true
		}
		next, cmd := a.navigate(to, "")
		return next, cmd, true
	}
	return a, nil, false
}

// activeTab maps detail pages onto the tab they were opened from.
func (a App) activeTab() pageID {
	switch a.current {
	case pageOrder, pagePayment:
		return pageOrders
	case pageClient:
		return pageClients
	}
	return a.current
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)
	logoPad := max((a.width-lipgloss.Width(logo))/2, 0)
	header := strings.Repeat(" ", logoPad) + logo

	identity := ""
	snap := a.snapshot()
	if snap.State == session.Authenticated && snap.User != nil {
		parts := []string{snap.User.Name, string(snap.User.Role)}
		if snap.Operator {
			parts = append(parts, "operator")
		}
		identity = metaStyle.Render(strings.Join(parts, " · "))
	}
	if identity != "" {
		pad := max((a.width-lipgloss.Width(identity))/2, 0)
		header += "\n" + strings.Repeat(" ", pad) + identity
	} else {
		header += "\n"
	}

	tabBar := a.renderTabs()

	var body, help string
	switch {
	case a.helpOpen:
		body = helpView(a.helpCursor)
		help = " " + helpBar(helpEntry("j/k", "nav"), helpEntry("enter", "open"), helpEntry("esc", "close"))
	case a.page == nil:
		body = "\n " + dimStyle.Render("loading...") + "\n"
		help = " " + helpEntry("q", "quit")
	default:
		body = a.page.View()
		help = " " + a.page.helpKeys()
		if !a.page.editing() && a.section != guard.RouteLogin {
			help += "  " + helpBar(helpEntry("h", "help"), helpEntry("q", "quit"))
		}
	}

	status := ""
	if a.notice != "" {
		if a.noticeErr {
			status = " " + rejectStyle.Render("✗ "+a.notice)
		} else {
			status = " " + successStyle.Render("✓ "+a.notice)
		}
	}

	chrome := 5
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, tabBar, body, status, help)
}

func (a App) renderTabs() string {
	tabs := sectionTabs[a.section]
	if len(tabs) == 0 || a.page == nil {
		return ""
	}
	active := a.activeTab()
	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for i, t := range tabs {
		key := strconv.Itoa(i + 1)
		name := pageSpecs[t].title
		var label string
		if t == active {
			label = accentStyle.Render(key) + " " + selectedStyle.Underline(true).Render(name)
		} else {
			label = metaStyle.Render(key) + " " + dimStyle.Render(name)
		}
		labelWidth := lipgloss.Width(label)
		leftPad := max((colWidth-labelWidth)/2, 0)
		rightPad := max(colWidth-labelWidth-leftPad, 0)
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}
	return tabBar.String()
}
