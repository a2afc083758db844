package errors

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
)

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkError("ask", "http://localhost/ask", cause)

	expected := "network error during ask at http://localhost/ask: connection refused"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if !errors.Is(err, cause) {
		t.Error("Expected NetworkError to unwrap to its cause")
	}

	noEndpoint := NewNetworkError("dial", "", cause)
	if noEndpoint.Error() != "network error during dial: connection refused" {
		t.Errorf("Unexpected message without endpoint: %s", noEndpoint.Error())
	}
}

func TestAPIError(t *testing.T) {
	err := NewAPIError(500, "/ask", "unexpected status")

	expected := "API error [500] at /ask: unexpected status"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	noStatus := NewAPIError(0, "/ask", "no status")
	if noStatus.Error() != "API error at /ask: no status" {
		t.Errorf("Unexpected message without status: %s", noStatus.Error())
	}
}

func TestAPIErrorWithBody(t *testing.T) {
	long := strings.Repeat("x", 600)
	err := NewAPIError(502, "/ask", "bad gateway").WithBody(long)

	if len(err.Body) != 515 {
		t.Errorf("Expected body truncated to 515 bytes, got %d", len(err.Body))
	}
	if !strings.HasSuffix(err.Body, "...") {
		t.Error("Expected truncated body to end with ellipsis")
	}
}

func TestTimeoutError(t *testing.T) {
	if NewTimeoutError("").Error() != "request timed out" {
		t.Error("Unexpected default timeout message")
	}
	if NewTimeoutError("after 5s").Error() != "request timed out: after 5s" {
		t.Error("Unexpected timeout message")
	}
}

func TestParseErrorIs(t *testing.T) {
	err := NewParseError("reply has no answer", "answer")

	if err.Error() != "parse error at answer: reply has no answer" {
		t.Errorf("Unexpected message: %s", err.Error())
	}

	if !errors.Is(err, ErrInvalidResponse) {
		t.Error("Expected ParseError to match ErrInvalidResponse")
	}

	wrapped := fmt.Errorf("ask failed: %w", err)
	if !IsParseError(wrapped) {
		t.Error("Expected wrapped ParseError to be detected")
	}

	if IsParseError(errors.New("other")) {
		t.Error("Expected plain error not to be a parse error")
	}
}

type fakeNetErr struct{ timeout bool }

func (e fakeNetErr) Error() string   { return "fake" }
func (e fakeNetErr) Timeout() bool   { return e.timeout }
func (e fakeNetErr) Temporary() bool { return false }

var _ net.Error = fakeNetErr{}

func TestClassifiers(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		isNetwork bool
		isTimeout bool
		isServer  bool
	}{
		{
			name:      "network error",
			err:       NewNetworkError("dial", "ws://x", errors.New("refused")),
			isNetwork: true,
		},
		{
			name:      "network error wrapping timeout",
			err:       NewNetworkError("read", "ws://x", fakeNetErr{timeout: true}),
			isNetwork: true,
			isTimeout: true,
		},
		{
			name:      "timeout error",
			err:       fmt.Errorf("wrapped: %w", NewTimeoutError("slow")),
			isTimeout: true,
		},
		{
			name:     "server error",
			err:      NewServerError("pipeline crashed"),
			isServer: true,
		},
		{
			name: "plain error",
			err:  errors.New("plain"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNetworkError(tt.err); got != tt.isNetwork {
				t.Errorf("IsNetworkError() = %v, want %v", got, tt.isNetwork)
			}
			if got := IsTimeoutError(tt.err); got != tt.isTimeout {
				t.Errorf("IsTimeoutError() = %v, want %v", got, tt.isTimeout)
			}
			if got := IsServerError(tt.err); got != tt.isServer {
				t.Errorf("IsServerError() = %v, want %v", got, tt.isServer)
			}
		})
	}
}

func TestGetters(t *testing.T) {
	apiErr := fmt.Errorf("wrapped: %w", NewAPIError(404, "/ask", "not found").WithBody("missing"))
	if GetHTTPStatus(apiErr) != 404 {
		t.Errorf("GetHTTPStatus() = %d, want 404", GetHTTPStatus(apiErr))
	}
	if GetEndpoint(apiErr) != "/ask" {
		t.Errorf("GetEndpoint() = %s, want /ask", GetEndpoint(apiErr))
	}
	if GetResponseBody(apiErr) != "missing" {
		t.Errorf("GetResponseBody() = %s, want missing", GetResponseBody(apiErr))
	}

	netErr := NewNetworkError("dial", "ws://host/stream", errors.New("refused"))
	if GetEndpoint(netErr) != "ws://host/stream" {
		t.Errorf("GetEndpoint() = %s, want ws://host/stream", GetEndpoint(netErr))
	}
	if GetHTTPStatus(netErr) != 0 {
		t.Error("Expected no HTTP status on a network error")
	}
	if GetResponseBody(netErr) != "" {
		t.Error("Expected no body on a network error")
	}
}
