package commands

import (
	"strings"
	"testing"

	apierrors "github.com/diogo/askchat/internal/errors"
)

const banner = `{
  "message": "Welcome to the store assistant",
  "endpoints": {
    "POST /ask": "Ask a question",
    "WS /stream": "Stream the answer"
  }
}`

func TestPingPrintsBanner(t *testing.T) {
	te := newTestEnv(t)
	doer := &fakeDoer{status: 200, body: banner}
	te.deps.HTTPClient = doer

	out, _, err := te.run(nil, "ping", "--url", "http://shop.test:9000")
	if err != nil {
		t.Fatalf("ping failed: %v", err)
	}

	for _, want := range []string{"http://shop.test:9000", "Welcome to the store assistant", "POST /ask", "Stream the answer"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if len(doer.urls) != 1 || doer.urls[0] != "http://shop.test:9000/" {
		t.Errorf("requested %v", doer.urls)
	}
}

func TestPingReportsStatus(t *testing.T) {
	te := newTestEnv(t)
	te.deps.HTTPClient = &fakeDoer{status: 503, body: "down for maintenance"}

	_, _, err := te.run(nil, "ping")
	if err == nil {
		t.Fatal("Expected ping to fail")
	}
	if apierrors.GetHTTPStatus(err) != 503 {
		t.Errorf("GetHTTPStatus() = %d, want 503", apierrors.GetHTTPStatus(err))
	}
}
