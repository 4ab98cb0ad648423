package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/crowncreative/portal/internal/fakeapi"
	"github.com/crowncreative/portal/pkg/domain"
)

func testThreads() []domain.Thread {
	now := domain.NewTime(time.Now())
	return []domain.Thread{
		{ID: "t1", Subject: "Logo feedback", UserName: "Ana Client", LastMessage: "Looks great", UpdatedAt: now},
		{ID: "t2", Subject: "Invoice question", UserName: "Ben Buyer", UpdatedAt: now},
	}
}

func loadedThreads(admin bool) threadsModel {
	m := newThreadsModel(Deps{}, admin)
	m, _ = m.Update(threadsListLoadedMsg{scope: m.scope, threads: testThreads()})
	return m
}

func TestThreadsListView(t *testing.T) {
	m := loadedThreads(false)
	view := m.View()
	for _, want := range []string{"Logo feedback", "Invoice question", "Looks great", "no messages"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "Ben Buyer") {
		t.Error("client view shows thread owner names")
	}
}

func TestThreadsAdminListShowsClient(t *testing.T) {
	m := loadedThreads(true)
	if !strings.Contains(m.View(), "Ben Buyer") {
		t.Errorf("admin view missing client name:\n%s", m.View())
	}
}

func TestThreadsEmptyListHint(t *testing.T) {
	m := newThreadsModel(Deps{}, false)
	m, _ = m.Update(threadsListLoadedMsg{scope: m.scope})
	if !strings.Contains(m.View(), "press s to start one") {
		t.Errorf("expected start hint, got:\n%s", m.View())
	}

	admin := newThreadsModel(Deps{}, true)
	admin, _ = admin.Update(threadsListLoadedMsg{scope: admin.scope})
	if strings.Contains(admin.View(), "press s") {
		t.Error("admin offered to start a conversation")
	}
}

func TestThreadsLoadFailureKeepsPriorList(t *testing.T) {
	m := loadedThreads(false)
	m, cmd := m.Update(threadsListLoadedMsg{scope: m.scope, err: errors.New("boom")})
	if cmd == nil {
		t.Error("expected an error notice")
	}
	if !strings.Contains(m.View(), "Logo feedback") {
		t.Error("refresh failure hid the loaded list")
	}

	fresh := newThreadsModel(Deps{}, false)
	fresh, _ = fresh.Update(threadsListLoadedMsg{scope: fresh.scope, err: errors.New("boom")})
	if !strings.Contains(fresh.View(), "Failed to load messages") {
		t.Errorf("expected failure text, got:\n%s", fresh.View())
	}
}

func TestThreadsIgnoresOtherScope(t *testing.T) {
	m := newThreadsModel(Deps{}, false)
	m, _ = m.Update(threadsListLoadedMsg{scope: newScope(), threads: testThreads()})
	if len(m.threads) != 0 {
		t.Error("list from another mount was applied")
	}
}

func TestThreadsOpenAndBack(t *testing.T) {
	m := loadedThreads(false)
	m, _ = m.Update(key("j"))
	m, cmd := m.Update(key("enter"))
	if m.state != threadsConvoState || m.open.ID != "t2" {
		t.Fatalf("state = %d open = %q, want convo on t2", m.state, m.open.ID)
	}
	if cmd == nil {
		t.Error("opening a thread did not load its messages")
	}
	if !m.editing() {
		t.Error("input should be focused after opening")
	}

	m, _ = m.Update(key("esc"))
	if m.editing() {
		t.Error("esc should leave the input")
	}
	m, _ = m.Update(key("esc"))
	if m.state != threadsListState {
		t.Error("second esc should return to the list")
	}
}

func TestThreadsDropsMessagesFromEarlierOpen(t *testing.T) {
	m := loadedThreads(false)
	m, _ = m.Update(key("enter"))
	firstGen := m.gen

	// Leave and reopen the same thread; the first load is now stale.
	m, _ = m.Update(key("esc"))
	m, _ = m.Update(key("esc"))
	m, _ = m.Update(key("enter"))

	stale := threadsMessagesLoadedMsg{
		scope: m.scope, gen: firstGen, threadID: "t1",
		messages: []domain.Message{{ID: "m1", Body: "stale"}},
	}
	m, cmd := m.Update(stale)
	if len(m.messages) != 0 || cmd != nil {
		t.Error("stale messages applied or started a second poll loop")
	}

	current := threadsMessagesLoadedMsg{
		scope: m.scope, gen: m.gen, threadID: "t1",
		messages: []domain.Message{{ID: "m2", Body: "fresh", SenderName: "Ana"}},
	}
	m, cmd = m.Update(current)
	if len(m.messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(m.messages))
	}
	if cmd == nil {
		t.Error("messages load did not schedule the next poll")
	}
}

func TestThreadsPollTickOnlyForOpenThread(t *testing.T) {
	m := loadedThreads(false)
	m, _ = m.Update(key("enter"))

	if _, cmd := m.Update(threadsPollTickMsg{scope: m.scope, gen: m.gen, threadID: "t2"}); cmd != nil {
		t.Error("poll tick for another thread issued a load")
	}
	if _, cmd := m.Update(threadsPollTickMsg{scope: m.scope, gen: m.gen - 1, threadID: "t1"}); cmd != nil {
		t.Error("poll tick from an earlier open issued a load")
	}
	if _, cmd := m.Update(threadsPollTickMsg{scope: m.scope, gen: m.gen, threadID: "t1"}); cmd == nil {
		t.Error("current poll tick did not reload messages")
	}
}

func TestThreadsSendAppendsReply(t *testing.T) {
	m := loadedThreads(false)
	m, _ = m.Update(key("enter"))
	for _, r := range "hello" {
		m, _ = m.Update(key(string(r)))
	}
	m, cmd := m.Update(key("enter"))
	if cmd == nil || !m.sending || m.input != "" {
		t.Fatalf("send not issued: sending=%v input=%q", m.sending, m.input)
	}

	// A second enter while sending is ignored.
	m.input = "again"
	if _, cmd := m.Update(key("enter")); cmd != nil {
		t.Error("second send issued while the first is in flight")
	}

	reply := &domain.Message{ID: "m9", Body: "hello", SenderName: "Ana"}
	m, _ = m.Update(threadsSendMsg{scope: m.scope, gen: m.gen, threadID: "t1", message: reply})
	if m.sending {
		t.Error("still sending after reply")
	}
	if len(m.messages) != 1 || m.messages[0].ID != "m9" {
		t.Errorf("messages = %+v", m.messages)
	}
}

func TestThreadsEmptyMessageNotSent(t *testing.T) {
	m := loadedThreads(false)
	m, _ = m.Update(key("enter"))
	m.input = "   "
	if _, cmd := m.Update(key("enter")); cmd != nil {
		t.Error("blank message was sent")
	}
}

func TestThreadsComposeRequiresSubject(t *testing.T) {
	m := loadedThreads(false)
	m, _ = m.Update(key("s"))
	if !m.composing || !m.editing() {
		t.Fatal("s did not open the subject prompt")
	}
	_, cmd := m.Update(key("enter"))
	if cmd == nil {
		t.Fatal("expected a notice")
	}
	n, ok := cmd().(notifyMsg)
	if !ok || !n.isErr || n.text != "Please enter a subject" {
		t.Errorf("got %#v", n)
	}
}

func TestThreadsAdminCannotCompose(t *testing.T) {
	m := loadedThreads(true)
	m, _ = m.Update(key("s"))
	if m.composing {
		t.Error("admin opened the compose prompt")
	}
}

func TestThreadsStartConversation(t *testing.T) {
	env := newTestEnv(t, fakeapi.ClientEmail)
	env.deps.Session.Boot(context.Background())

	m := newThreadsModel(env.deps, false)
	m, _ = m.Update(m.loadThreads()())
	m, _ = m.Update(key("s"))
	for _, r := range "Website launch" {
		m, _ = m.Update(key(string(r)))
	}
	m, cmd := m.Update(key("enter"))
	if cmd == nil {
		t.Fatal("enter did not start the conversation")
	}
	m, cmd = m.Update(cmd())
	if m.state != threadsConvoState || m.open.Subject != "Website launch" {
		t.Fatalf("state = %d subject = %q", m.state, m.open.Subject)
	}
	if n, ok := findNotice(msgsOf(cmd)); !ok || n.text != "Conversation started" {
		t.Errorf("notice = %+v", n)
	}
}

func TestThreadsRenderSenders(t *testing.T) {
	env := newTestEnv(t, fakeapi.ClientEmail)
	env.deps.Session.Boot(context.Background())
	self := env.deps.Session.User()
	if self == nil {
		t.Fatal("session did not boot")
	}

	m := newThreadsModel(env.deps, false)
	m.width = 100
	now := domain.NewTime(time.Now())

	mine := m.renderThreadMessage(domain.Message{SenderID: self.ID, SenderName: self.Name, Body: "hi", CreatedAt: now})
	if !strings.Contains(mine, "you") {
		t.Errorf("own message not labelled you: %q", mine)
	}
	studio := m.renderThreadMessage(domain.Message{SenderID: "u-admin", SenderRole: domain.RoleAdmin, Body: "hello", CreatedAt: now})
	if !strings.Contains(studio, "Crown Collective") {
		t.Errorf("studio message not labelled: %q", studio)
	}
	other := m.renderThreadMessage(domain.Message{SenderID: "u-x", SenderName: "Ben", Body: "yo", Attachments: []string{"brief.pdf"}, CreatedAt: now})
	if !strings.Contains(other, "Ben") || !strings.Contains(other, "📎 brief.pdf") {
		t.Errorf("other message = %q", other)
	}
}
