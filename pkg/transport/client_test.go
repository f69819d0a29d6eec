package transport

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/partfetch/partfetch/internal/testutil"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.Timeout <= 0 {
		t.Error("default Timeout should be positive")
	}
	if opts.UserAgent == "" {
		t.Error("default UserAgent should be set")
	}
	if opts.MaxIdleConnsPerHost <= 0 {
		t.Error("default MaxIdleConnsPerHost should be positive")
	}
}

func TestProbe_ReturnsDeclaredLength(t *testing.T) {
	origin := testutil.NewOrigin()
	defer origin.Close()
	origin.SetResource("/part0", testutil.Resource{Body: make([]byte, 1234)})

	client := NewClient(DefaultOptions())
	size, err := client.Probe(context.Background(), origin.URL("/part0"))
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if size != 1234 {
		t.Errorf("Probe = %d, want 1234", size)
	}
}

func TestProbe_NoContentLength(t *testing.T) {
	origin := testutil.NewOrigin()
	defer origin.Close()
	origin.SetResource("/chunked", testutil.Resource{Body: []byte("data"), OmitLength: true})

	client := NewClient(DefaultOptions())
	_, err := client.Probe(context.Background(), origin.URL("/chunked"))
	if !errors.Is(err, ErrSizeUnavailable) {
		t.Fatalf("Probe error = %v, want ErrSizeUnavailable", err)
	}

	var probeErr *ProbeError
	if !errors.As(err, &probeErr) {
		t.Fatalf("Probe error = %T, want *ProbeError", err)
	}
	if probeErr.Identifier != origin.URL("/chunked") {
		t.Errorf("ProbeError identifier = %q, want %q", probeErr.Identifier, origin.URL("/chunked"))
	}
}

func TestProbe_NonOKStatus(t *testing.T) {
	origin := testutil.NewOrigin()
	defer origin.Close()

	client := NewClient(DefaultOptions())
	_, err := client.Probe(context.Background(), origin.URL("/missing"))
	if !errors.Is(err, ErrSizeUnavailable) {
		t.Fatalf("Probe error = %v, want ErrSizeUnavailable", err)
	}

	var probeErr *ProbeError
	if !errors.As(err, &probeErr) {
		t.Fatalf("Probe error = %T, want *ProbeError", err)
	}
	if probeErr.StatusCode != http.StatusNotFound {
		t.Errorf("ProbeError status = %d, want 404", probeErr.StatusCode)
	}
}

func TestProbe_NetworkError(t *testing.T) {
	client := NewClient(Options{Timeout: time.Second})
	_, err := client.Probe(context.Background(), "http://127.0.0.1:1/unreachable")
	if !errors.Is(err, ErrSizeUnavailable) {
		t.Fatalf("Probe error = %v, want ErrSizeUnavailable", err)
	}
}

func TestGet_ReturnsBody(t *testing.T) {
	origin := testutil.NewOrigin()
	defer origin.Close()
	body := bytes.Repeat([]byte("abcdefgh"), 10_000) // 80 KB, several read chunks
	origin.SetResource("/part0", testutil.Resource{Body: body})

	client := NewClient(DefaultOptions())
	data, err := client.Get(context.Background(), origin.URL("/part0"), nil)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(data, body) {
		t.Errorf("Get returned %d bytes, want %d matching bytes", len(data), len(body))
	}
}

func TestGet_ProgressEvents(t *testing.T) {
	origin := testutil.NewOrigin()
	defer origin.Close()
	body := bytes.Repeat([]byte("x"), 100_000)
	origin.SetResource("/part0", testutil.Resource{Body: body})

	client := NewClient(DefaultOptions())

	var loadedSeen []int64
	var totalSeen []int64
	data, err := client.Get(context.Background(), origin.URL("/part0"), func(loaded, total int64) {
		loadedSeen = append(loadedSeen, loaded)
		totalSeen = append(totalSeen, total)
	})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if len(loadedSeen) == 0 {
		t.Fatal("expected progress events during transfer")
	}
	for i := 1; i < len(loadedSeen); i++ {
		if loadedSeen[i] < loadedSeen[i-1] {
			t.Errorf("loaded decreased: %d then %d", loadedSeen[i-1], loadedSeen[i])
		}
	}
	if final := loadedSeen[len(loadedSeen)-1]; final != int64(len(data)) {
		t.Errorf("final loaded = %d, want %d", final, len(data))
	}
	for _, total := range totalSeen {
		if total != int64(len(body)) {
			t.Errorf("progress total = %d, want declared %d", total, len(body))
		}
	}
}

func TestGet_UnknownTotalPassedThrough(t *testing.T) {
	origin := testutil.NewOrigin()
	defer origin.Close()
	origin.SetResource("/chunked", testutil.Resource{Body: []byte("stream without length"), OmitLength: true})

	client := NewClient(DefaultOptions())

	sawUnknown := false
	data, err := client.Get(context.Background(), origin.URL("/chunked"), func(loaded, total int64) {
		if total == TotalUnknown {
			sawUnknown = true
		}
	})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(data) != "stream without length" {
		t.Errorf("Get = %q, want the full body", data)
	}
	if !sawUnknown {
		t.Error("expected progress total TotalUnknown for a chunked response")
	}
}

func TestGet_MidStreamFailure(t *testing.T) {
	origin := testutil.NewOrigin()
	defer origin.Close()
	body := bytes.Repeat([]byte("y"), 200_000)
	origin.SetResource("/flaky", testutil.Resource{Body: body, FailAfter: 65_536})

	client := NewClient(DefaultOptions())
	_, err := client.Get(context.Background(), origin.URL("/flaky"), nil)
	if !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("Get error = %v, want ErrTransferFailed", err)
	}

	var transferErr *TransferError
	if !errors.As(err, &transferErr) {
		t.Fatalf("Get error = %T, want *TransferError", err)
	}
	if transferErr.Identifier != origin.URL("/flaky") {
		t.Errorf("TransferError identifier = %q, want %q", transferErr.Identifier, origin.URL("/flaky"))
	}
}

func TestGet_NonOKStatus(t *testing.T) {
	origin := testutil.NewOrigin()
	defer origin.Close()
	origin.SetResource("/denied", testutil.Resource{Body: []byte("no"), Status: http.StatusForbidden})

	client := NewClient(DefaultOptions())
	_, err := client.Get(context.Background(), origin.URL("/denied"), nil)
	if !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("Get error = %v, want ErrTransferFailed", err)
	}
}

func TestGet_NetworkError(t *testing.T) {
	client := NewClient(Options{Timeout: time.Second})
	_, err := client.Get(context.Background(), "http://127.0.0.1:1/unreachable", nil)
	if !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("Get error = %v, want ErrTransferFailed", err)
	}
}

func TestClient_SetsUserAgent(t *testing.T) {
	origin := testutil.NewOrigin()
	defer origin.Close()
	origin.SetResource("/ua", testutil.Resource{Body: []byte("ok")})

	client := NewClient(Options{UserAgent: "partfetch-test/1.0"})
	if _, err := client.Get(context.Background(), origin.URL("/ua"), nil); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got := origin.LastHeader().Get("User-Agent"); got != "partfetch-test/1.0" {
		t.Errorf("User-Agent = %q, want %q", got, "partfetch-test/1.0")
	}
	if origin.Requests("/ua") != 1 {
		t.Errorf("origin requests = %d, want 1", origin.Requests("/ua"))
	}
}
