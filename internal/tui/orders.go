package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/crowncreative/portal/pkg/client"
	"github.com/crowncreative/portal/pkg/domain"
)

type ordersState int

const (
	ordersListState ordersState = iota
	ordersPickState             // choosing services for a new order
)

type ordersLoadedMsg struct {
	scope  scope
	orders []domain.Order
	err    error
}

type catalogLoadedMsg struct {
	scope    scope
	services []domain.Service
	packages []domain.Package
	err      error
}

type orderCreatedMsg struct {
	scope scope
	order *domain.Order
	err   error
}

type orderStatusMsg struct {
	scope scope
	order *domain.Order
	err   error
}

// catalogEntry is one selectable service or package in the new-order picker.
type catalogEntry struct {
	serviceID string
	packageID string
	name      string
	price     float64
	selected  bool
}

// ordersModel lists orders. For clients it also builds new orders; for
// admins it lists every order and changes statuses.
type ordersModel struct {
	deps    Deps
	scope   scope
	admin   bool
	state   ordersState
	orders  []domain.Order
	filter  domain.OrderStatus
	cursor  int
	loading bool
	loaded  bool
	err     string
	width   int
	height  int

	catalog     []catalogEntry
	pickCursor  int
	creating    bool
	catalogBusy bool
}

func newOrdersModel(d Deps, admin bool) ordersModel {
	return ordersModel{deps: d, scope: newScope(), admin: admin, loading: true}
}

func (m ordersModel) Init() tea.Cmd {
	return m.load()
}

func (m ordersModel) load() tea.Cmd {
	c, sc, status := m.deps.Client, m.scope, m.filter
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		orders, err := c.ListOrders(ctx, status)
		return ordersLoadedMsg{scope: sc, orders: orders, err: err}
	}
}

func (m ordersModel) loadCatalog() tea.Cmd {
	c, sc := m.deps.Client, m.scope
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		msg := catalogLoadedMsg{scope: sc}
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			msg.services, err = c.ListServices(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			msg.packages, err = c.ListPackages(ctx)
			return err
		})
		msg.err = g.Wait()
		return msg
	}
}

// createOrder opens a draft and adds each picked line. A failure part way
// leaves the draft on the server; the user lands on it either way.
func (m ordersModel) createOrder(picked []catalogEntry) tea.Cmd {
	c, sc := m.deps.Client, m.scope
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		order, err := c.CreateOrder(ctx, "")
		if err != nil {
			return orderCreatedMsg{scope: sc, err: err}
		}
		for _, e := range picked {
			in := client.OrderItemInput{ServiceID: e.serviceID, PackageID: e.packageID, Quantity: 1}
			updated, err := c.AddOrderItem(ctx, order.ID, in)
			if err != nil {
				return orderCreatedMsg{scope: sc, order: order, err: err}
			}
			order = updated
		}
		return orderCreatedMsg{scope: sc, order: order}
	}
}

func (m ordersModel) setStatus(id string, status domain.OrderStatus) tea.Cmd {
	c, sc := m.deps.Client, m.scope
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		if _, err := c.UpdateOrder(ctx, id, client.OrderUpdate{Status: &status}); err != nil {
			return orderStatusMsg{scope: sc, err: err}
		}
		order, err := c.GetOrder(ctx, id)
		return orderStatusMsg{scope: sc, order: order, err: err}
	}
}

func (m ordersModel) picked() []catalogEntry {
	var out []catalogEntry
	for _, e := range m.catalog {
		if e.selected {
			out = append(out, e)
		}
	}
	return out
}

func nextStatus(s domain.OrderStatus) domain.OrderStatus {
	for i, st := range domain.OrderStatuses {
		if st == s {
			return domain.OrderStatuses[(i+1)%len(domain.OrderStatuses)]
		}
	}
	return domain.OrderStatuses[0]
}

// nextFilter cycles "" -> draft -> ... -> refunded -> "".
func nextFilter(s domain.OrderStatus) domain.OrderStatus {
	if s == domain.OrderStatuses[len(domain.OrderStatuses)-1] {
		return ""
	}
	if s == "" {
		return domain.OrderStatuses[0]
	}
	return nextStatus(s)
}

func (m ordersModel) Update(msg tea.Msg) (ordersModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case ordersLoadedMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			if !m.loaded {
				m.err = "Failed to load orders"
			}
			return m, failed(msg.err)
		}
		m.loaded, m.err = true, ""
		m.orders = msg.orders
		m.cursor = clampCursor(m.cursor, len(m.orders))

	case catalogLoadedMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		m.catalogBusy = false
		if msg.err != nil {
			m.state = ordersListState
			return m, failed(msg.err)
		}
		catalog := make([]catalogEntry, 0, len(msg.services)+len(msg.packages))
		for _, s := range msg.services {
			catalog = append(catalog, catalogEntry{serviceID: s.ID, name: s.Name, price: s.BasePrice})
		}
		for _, p := range msg.packages {
			catalog = append(catalog, catalogEntry{packageID: p.ID, name: p.Name + " package", price: p.Price})
		}
		m.catalog = catalog

	case orderCreatedMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		m.creating = false
		if msg.err != nil {
			if msg.order != nil {
				return m, tea.Batch(failed(msg.err), navigate(pageOrder, msg.order.ID))
			}
			return m, failed(msg.err)
		}
		return m, tea.Batch(notify("Order created!"), navigate(pageOrder, msg.order.ID))

	case orderStatusMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		if msg.err != nil {
			return m, failed(msg.err)
		}
		for i := range m.orders {
			if m.orders[i].ID == msg.order.ID {
				m.orders[i] = *msg.order
			}
		}
		return m, notify("Order status updated")

	case tea.KeyMsg:
		if m.state == ordersPickState {
			return m.updatePick(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m ordersModel) updateList(msg tea.KeyMsg) (ordersModel, tea.Cmd) {
	switch key := msg.String(); key {
	case "enter":
		if !m.admin && m.cursor < len(m.orders) {
			return m, navigate(pageOrder, m.orders[m.cursor].ID)
		}
	case "n":
		if !m.admin {
			m.state = ordersPickState
			m.pickCursor = 0
			m.catalogBusy = true
			return m, m.loadCatalog()
		}
	case "s":
		if m.admin && m.cursor < len(m.orders) {
			o := m.orders[m.cursor]
			return m, m.setStatus(o.ID, nextStatus(o.Status))
		}
	case "f":
		if m.admin {
			m.filter = nextFilter(m.filter)
			m.loading = true
			return m, m.load()
		}
	case "r":
		m.loading = true
		return m, m.load()
	default:
		m.cursor = moveCursor(m.cursor, len(m.orders), key)
	}
	return m, nil
}

func (m ordersModel) updatePick(msg tea.KeyMsg) (ordersModel, tea.Cmd) {
	if m.creating {
		return m, nil
	}
	switch key := msg.String(); key {
	case "esc":
		m.state = ordersListState
		return m, nil
	case " ", "space", "x":
		if m.pickCursor < len(m.catalog) {
			catalog := make([]catalogEntry, len(m.catalog))
			copy(catalog, m.catalog)
			catalog[m.pickCursor].selected = !catalog[m.pickCursor].selected
			m.catalog = catalog
		}
	case "enter":
		picked := m.picked()
		if len(picked) == 0 {
			return m, func() tea.Msg {
				return notifyMsg{text: "Please select at least one service or package", isErr: true}
			}
		}
		m.creating = true
		return m, m.createOrder(picked)
	default:
		m.pickCursor = moveCursor(m.pickCursor, len(m.catalog), key)
	}
	return m, nil
}

func (m ordersModel) View() string {
	if m.state == ordersPickState {
		return m.viewPick()
	}
	var b strings.Builder
	title := "Orders"
	if m.admin {
		title = "All orders"
		if m.filter != "" {
			title += metaStyle.Render(" · " + string(m.filter))
		}
	}
	b.WriteString(" " + titleStyle.Render(title) + "\n")
	b.WriteString(" " + separator(m.width) + "\n")

	if m.loading && !m.loaded {
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
		return b.String()
	}
	if m.err != "" {
		b.WriteString(" " + dimStyle.Render("error: "+m.err) + "\n")
		return b.String()
	}
	if len(m.orders) == 0 {
		if m.admin {
			b.WriteString("\n " + dimStyle.Render("no orders") + "\n")
		} else {
			b.WriteString("\n " + dimStyle.Render("no orders yet · press n to create one") + "\n")
		}
		return b.String()
	}

	for i, o := range m.orders {
		who := ""
		if m.admin {
			who = "  " + normalStyle.Render(truncStr(o.UserName, 18)) + " " + metaStyle.Render(truncStr(o.UserEmail, 24))
		}
		fmt.Fprintf(&b, " %s%s  %-12s  %s  %s%s\n",
			cursorPrefix(i == m.cursor),
			normalStyle.Render("#"+shortID(o.ID)),
			StatusBadge(string(o.Status)),
			goldStyle.Render(money(o.Total, o.Currency)),
			metaStyle.Render(fmt.Sprintf("%d item(s) · %s", len(o.Items), formatDate(o.CreatedAt))),
			who,
		)
	}
	return b.String()
}

func (m ordersModel) viewPick() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("New order") + "\n")
	b.WriteString(" " + separator(m.width) + "\n")
	if m.catalogBusy {
		b.WriteString(" " + dimStyle.Render("loading services...") + "\n")
		return b.String()
	}
	if len(m.catalog) == 0 {
		b.WriteString(" " + dimStyle.Render("no services available") + "\n")
		return b.String()
	}
	var total float64
	for i, e := range m.catalog {
		box := metaStyle.Render("[ ]")
		if e.selected {
			box = accentStyle.Render("[x]")
			total += e.price
		}
		name := normalStyle.Render(e.name)
		if i == m.pickCursor {
			name = selectedStyle.Render(e.name)
		}
		fmt.Fprintf(&b, " %s%s %s  %s\n", cursorPrefix(i == m.pickCursor), box, name, goldStyle.Render(money(e.price, "")))
	}
	fmt.Fprintf(&b, "\n %s\n", dimStyle.Render(fmt.Sprintf("Selected: %d item(s) · %s", len(m.picked()), money(total, ""))))
	if m.creating {
		b.WriteString(" " + dimStyle.Render("creating order...") + "\n")
	}
	return b.String()
}

func (m ordersModel) helpKeys() string {
	switch {
	case m.state == ordersPickState:
		return helpBar(helpEntry("j/k", "nav"), helpEntry("space", "select"), helpEntry("enter", "create"), helpEntry("esc", "cancel"))
	case m.admin:
		return helpBar(helpEntry("1-8", "tabs"), helpEntry("j/k", "nav"), helpEntry("s", "next status"), helpEntry("f", "filter"), helpEntry("r", "refresh"))
	default:
		return helpBar(helpEntry("1-7", "tabs"), helpEntry("j/k", "nav"), helpEntry("enter", "open"), helpEntry("n", "new"), helpEntry("r", "refresh"))
	}
}

func (m ordersModel) editing() bool { return m.state == ordersPickState }

func (m ordersModel) update(msg tea.Msg) (page, tea.Cmd) { return m.Update(msg) }
