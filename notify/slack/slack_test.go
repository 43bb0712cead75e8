package slack

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/slack-go/slack"

	"rampup/store"
)

type postedMessage struct {
	channel string
	blocks  string
	text    string
}

func newTestNotifier(t *testing.T) (*Notifier, *[]postedMessage) {
	t.Helper()
	var posts []postedMessage
	mux := http.NewServeMux()
	mux.HandleFunc("/chat.postMessage", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parsing form: %v", err)
		}
		posts = append(posts, postedMessage{
			channel: r.FormValue("channel"),
			blocks:  r.FormValue("blocks"),
			text:    r.FormValue("text"),
		})
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok": true, "channel": "C123", "ts": "1234.5678"}`))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	n := New("xoxb-test", "C123", slack.OptionAPIURL(ts.URL+"/"))
	return n, &posts
}

func TestPlanApproved(t *testing.T) {
	n, posts := newTestNotifier(t)

	result := &store.ApproveResult{StepsCreated: 8, TasksCreated: 16}
	if err := n.PlanApproved(context.Background(), "Atlas", "Backend Developer", "alice", result); err != nil {
		t.Fatalf("PlanApproved: %v", err)
	}
	if len(*posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(*posts))
	}
	p := (*posts)[0]
	if p.channel != "C123" {
		t.Errorf("channel = %q, want C123", p.channel)
	}
	for _, want := range []string{"Atlas", "Backend Developer", "8 steps", "16 task templates", "approved by alice"} {
		if !strings.Contains(p.blocks, want) {
			t.Errorf("blocks missing %q:\n%s", want, p.blocks)
		}
	}
	if strings.Contains(p.blocks, "skipped") {
		t.Errorf("no skipped tasks, but blocks mention them:\n%s", p.blocks)
	}
}

func TestPlanApprovedMentionsSkippedTasks(t *testing.T) {
	n, posts := newTestNotifier(t)

	result := &store.ApproveResult{
		StepsCreated: 5,
		TasksCreated: 9,
		SkippedTasks: []string{"Orphaned task", "Another orphan"},
	}
	if err := n.PlanApproved(context.Background(), "Atlas", "Backend", "bob", result); err != nil {
		t.Fatalf("PlanApproved: %v", err)
	}
	p := (*posts)[0]
	if !strings.Contains(p.blocks, "2 tasks skipped") {
		t.Errorf("blocks missing skipped count:\n%s", p.blocks)
	}
}

func TestPlanRejected(t *testing.T) {
	n, posts := newTestNotifier(t)

	if err := n.PlanRejected(context.Background(), "Atlas", "Backend", "carol"); err != nil {
		t.Fatalf("PlanRejected: %v", err)
	}
	p := (*posts)[0]
	if p.channel != "C123" {
		t.Errorf("channel = %q, want C123", p.channel)
	}
	for _, want := range []string{"Atlas", "Backend", "rejected by carol"} {
		if !strings.Contains(p.text, want) {
			t.Errorf("text missing %q: %s", want, p.text)
		}
	}
}
