// Package testutil provides testing utilities for partfetch.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"
)

// Resource defines the behavior of one path on the mock origin.
type Resource struct {
	// Body is the payload served for the path.
	Body []byte

	// Status overrides the response status (default 200).
	Status int

	// Delay is slept before the body is written.
	Delay time.Duration

	// FailAfter, when > 0, aborts the connection after that many body
	// bytes have been written, simulating a mid-stream network failure.
	FailAfter int

	// OmitLength serves the body chunked so no Content-Length is declared.
	OmitLength bool
}

// Origin is a configurable mock origin server. It counts requests per
// path, records the order requests arrive in, and tracks the high-water
// mark of concurrently served requests.
type Origin struct {
	server    *httptest.Server
	mu        sync.Mutex
	resources map[string]Resource

	requestCount map[string]int
	requestOrder []string
	lastHeader   http.Header
	inFlight     int
	maxInFlight  int
}

// NewOrigin creates a mock origin with no resources configured.
// Unconfigured paths return 404.
func NewOrigin() *Origin {
	o := &Origin{
		resources:    make(map[string]Resource),
		requestCount: make(map[string]int),
	}

	o.server = httptest.NewServer(http.HandlerFunc(o.handle))
	return o
}

// SetResource configures the response for a path.
func (o *Origin) SetResource(path string, res Resource) {
	if res.Status == 0 {
		res.Status = http.StatusOK
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resources[path] = res
}

// URL returns the absolute URL for a path on the origin.
func (o *Origin) URL(path string) string {
	return o.server.URL + path
}

// Close shuts down the origin.
func (o *Origin) Close() {
	o.server.Close()
}

// Requests returns the number of requests made for a path.
func (o *Origin) Requests(path string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.requestCount[path]
}

// TotalRequests returns the number of requests made across all paths.
func (o *Origin) TotalRequests() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	total := 0
	for _, n := range o.requestCount {
		total += n
	}
	return total
}

// RequestOrder returns the paths in the order requests arrived.
func (o *Origin) RequestOrder() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	order := make([]string, len(o.requestOrder))
	copy(order, o.requestOrder)
	return order
}

// LastHeader returns the headers of the most recent request.
func (o *Origin) LastHeader() http.Header {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastHeader
}

// MaxInFlight returns the highest number of requests served concurrently.
func (o *Origin) MaxInFlight() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.maxInFlight
}

// Reset clears all tracking counters.
func (o *Origin) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.requestCount = make(map[string]int)
	o.requestOrder = nil
	o.maxInFlight = 0
}

func (o *Origin) handle(w http.ResponseWriter, r *http.Request) {
	o.mu.Lock()
	o.requestCount[r.URL.Path]++
	o.requestOrder = append(o.requestOrder, r.URL.Path)
	o.lastHeader = r.Header.Clone()
	o.inFlight++
	if o.inFlight > o.maxInFlight {
		o.maxInFlight = o.inFlight
	}
	res, exists := o.resources[r.URL.Path]
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.inFlight--
		o.mu.Unlock()
	}()

	if !exists {
		http.NotFound(w, r)
		return
	}

	if res.Delay > 0 {
		time.Sleep(res.Delay)
	}

	if res.OmitLength {
		w.WriteHeader(res.Status)
		// Flushing before the body forces chunked encoding, so the
		// client sees ContentLength == -1.
		w.(http.Flusher).Flush()
		w.Write(res.Body)
		return
	}

	if res.FailAfter > 0 && res.FailAfter < len(res.Body) {
		w.Header().Set("Content-Length", strconv.Itoa(len(res.Body)))
		w.WriteHeader(res.Status)
		w.Write(res.Body[:res.FailAfter])
		w.(http.Flusher).Flush()
		// Abort the connection so the client observes a mid-stream
		// transfer failure rather than a short read.
		panic(http.ErrAbortHandler)
	}

	w.Header().Set("Content-Length", strconv.Itoa(len(res.Body)))
	w.WriteHeader(res.Status)
	w.Write(res.Body)
}
