package commands

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	http "github.com/bogdanfinn/fhttp"

	"github.com/diogo/askchat/internal/api"
	"github.com/diogo/askchat/internal/chat"
	"github.com/diogo/askchat/internal/models"
	"github.com/diogo/askchat/internal/tui"
)

// scriptedTransport replays a fixed list of events for every question
type scriptedTransport struct {
	mu        sync.Mutex
	events    []api.Event
	questions []string
}

func (s *scriptedTransport) Open(ctx context.Context, question string) <-chan api.Event {
	s.mu.Lock()
	s.questions = append(s.questions, question)
	s.mu.Unlock()

	ch := make(chan api.Event, len(s.events))
	for _, ev := range s.events {
		ch <- ev
	}
	close(ch)
	return ch
}

// fakeTUI records the session it was asked to run
type fakeTUI struct {
	session *chat.Session
	opts    tui.Options
	err     error
}

func (f *fakeTUI) RunChat(ctx context.Context, session *chat.Session, opts tui.Options) error {
	f.session = session
	f.opts = opts
	return f.err
}

// fakeDoer answers every HTTP request with a canned reply
type fakeDoer struct {
	status int
	body   string
	urls   []string
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.urls = append(f.urls, req.URL.String())
	return &http.Response{
		StatusCode: f.status,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(strings.NewReader(f.body)),
	}, nil
}

type testEnv struct {
	deps      *Dependencies
	transport *scriptedTransport
	tui       *fakeTUI
	modes     []models.Mode
	copied    []string
	env       map[string]string
	home      string
}

func newTestEnv(t *testing.T, events ...api.Event) *testEnv {
	t.Helper()

	te := &testEnv{
		transport: &scriptedTransport{events: events},
		tui:       &fakeTUI{},
		env:       map[string]string{},
		home:      t.TempDir(),
	}
	t.Setenv("HOME", te.home)

	te.deps = &Dependencies{
		TUI: te.tui,
		NewTransport: func(mode models.Mode, opts ...api.ClientOption) (api.Transport, error) {
			te.modes = append(te.modes, mode)
			return te.transport, nil
		},
		Copy: func(s string) error {
			te.copied = append(te.copied, s)
			return nil
		},
		Getenv: func(key string) string { return te.env[key] },
	}
	return te
}

// run executes the command tree with args and returns what it printed
func (te *testEnv) run(stdin io.Reader, args ...string) (string, string, error) {
	cmd := NewRootCmd(te.deps)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(stdin)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func fragmentsOf(texts ...string) []api.Event {
	events := []api.Event{{Kind: api.EventOpen}}
	for _, text := range texts {
		events = append(events, api.Event{Kind: api.EventFragment, Text: text})
	}
	return append(events, api.Event{Kind: api.EventClosed})
}
