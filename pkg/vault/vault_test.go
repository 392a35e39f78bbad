package vault

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakePlatform records calls and serves items from memory. Statuses can
// be scripted per key to exercise the outcome mapping.
type fakePlatform struct {
	mu    sync.Mutex
	items map[string]map[string][]byte // service -> key -> payload

	calls       []string
	lastQuery   Query
	getStatus   map[string]Status // overrides for Get
	checkStatus map[string]Status // overrides for Contains
	failSet     bool

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	delay       time.Duration
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		items:       make(map[string]map[string][]byte),
		getStatus:   make(map[string]Status),
		checkStatus: make(map[string]Status),
	}
}

func (p *fakePlatform) enter(op, key string, q Query) {
	if n := p.inFlight.Add(1); n > p.maxInFlight.Load() {
		p.maxInFlight.Store(n)
	}
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	p.mu.Lock()
	p.calls = append(p.calls, op+":"+key)
	p.lastQuery = q
	p.mu.Unlock()
}

func (p *fakePlatform) leave() {
	p.inFlight.Add(-1)
}

func (p *fakePlatform) Set(q Query, key string, data []byte) Status {
	p.enter("set", key, q)
	defer p.leave()
	if p.failSet {
		return StatusAccessDenied
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.items[q.Service] == nil {
		p.items[q.Service] = make(map[string][]byte)
	}
	p.items[q.Service][key] = append([]byte(nil), data...)
	return StatusSuccess
}

func (p *fakePlatform) Get(q Query, key string) ([]byte, Status) {
	p.enter("get", key, q)
	defer p.leave()
	p.mu.Lock()
	defer p.mu.Unlock()
	if st, ok := p.getStatus[key]; ok {
		return nil, st
	}
	data, ok := p.items[q.Service][key]
	if !ok {
		return nil, StatusNotFound
	}
	return append([]byte(nil), data...), StatusSuccess
}

func (p *fakePlatform) Remove(q Query, key string) Status {
	p.enter("remove", key, q)
	defer p.leave()
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.items[q.Service][key]; !ok {
		return StatusNotFound
	}
	delete(p.items[q.Service], key)
	return StatusSuccess
}

func (p *fakePlatform) Contains(q Query, key string) Status {
	p.enter("contains", key, q)
	defer p.leave()
	p.mu.Lock()
	defer p.mu.Unlock()
	if st, ok := p.checkStatus[key]; ok {
		return st
	}
	if _, ok := p.items[q.Service][key]; !ok {
		return StatusNotFound
	}
	return StatusSuccess
}

func (p *fakePlatform) callLog() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *fakePlatform) last() Query {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastQuery
}

var testCounter atomic.Int64

// testVault obtains a vault bound to a fresh fake platform under a
// unique identifier, so tests never collide through the process-wide
// registry.
func testVault(t *testing.T, flavor Flavor) (*Vault, *fakePlatform) {
	t.Helper()
	p := newFakePlatform()
	SetDefaultPlatform(p)
	t.Cleanup(func() { SetDefaultPlatform(nil) })

	identifier := fmt.Sprintf("test-%s-%d", t.Name(), testCounter.Add(1))
	v, err := Obtain(identifier, flavor)
	if err != nil {
		t.Fatalf("Obtain failed: %v", err)
	}
	return v, p
}

func TestSetGetRoundTrip(t *testing.T) {
	v, _ := testVault(t, SinglePrompt(AccessControlUserPresence))

	payload := []byte("secret payload")
	if err := v.Set(payload, "k"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := v.Get("k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Payload mismatch: got %q, want %q", got, payload)
	}
}

func TestStringRoundTrip(t *testing.T) {
	v, _ := testVault(t, SinglePrompt(AccessControlUserPresence))

	if err := v.SetString("hello", "k"); err != nil {
		t.Fatalf("SetString failed: %v", err)
	}
	got, err := v.GetString("k")
	if err != nil {
		t.Fatalf("GetString failed: %v", err)
	}
	if got != "hello" {
		t.Errorf("Value mismatch: got %q, want hello", got)
	}
}

func TestGetNeverWrittenKey(t *testing.T) {
	v, _ := testVault(t, SinglePrompt(AccessControlUserPresence))

	if _, err := v.Get("missing"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("Expected ErrItemNotFound, got %v", err)
	}
}

func TestGetMapsCancellation(t *testing.T) {
	v, p := testVault(t, SinglePrompt(AccessControlUserPresence))
	p.getStatus["k"] = StatusAuthFailed

	if _, err := v.Get("k"); !errors.Is(err, ErrUserCancelled) {
		t.Errorf("Expected ErrUserCancelled, got %v", err)
	}
}

func TestGetConflatesOtherFailures(t *testing.T) {
	v, p := testVault(t, SinglePrompt(AccessControlUserPresence))

	for _, st := range []Status{StatusNotFound, StatusAccessDenied, StatusInteractionNotAllowed} {
		p.getStatus["k"] = st
		if _, err := v.Get("k"); !errors.Is(err, ErrItemNotFound) {
			t.Errorf("Status %v: expected ErrItemNotFound, got %v", st, err)
		}
	}
}

func TestSetRemovesBeforeInsert(t *testing.T) {
	v, p := testVault(t, SinglePrompt(AccessControlUserPresence))

	if err := v.Set([]byte("one"), "k"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := v.Set([]byte("two"), "k"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	want := []string{"remove:k", "set:k", "remove:k", "set:k"}
	got := p.callLog()
	if len(got) != len(want) {
		t.Fatalf("Call log mismatch: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Call %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestSetFailureIsOperationFailed(t *testing.T) {
	v, p := testVault(t, SinglePrompt(AccessControlUserPresence))
	p.failSet = true

	if err := v.Set([]byte("data"), "k"); !errors.Is(err, ErrOperationFailed) {
		t.Errorf("Expected ErrOperationFailed, got %v", err)
	}
}

func TestContains(t *testing.T) {
	v, p := testVault(t, SinglePrompt(AccessControlUserPresence))

	if v.Contains("k") {
		t.Error("Contains should be false for a never-written key")
	}

	if err := v.Set([]byte("data"), "k"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !v.Contains("k") {
		t.Error("Contains should be true after Set")
	}

	// An item behind a lock the query cannot open still counts as
	// present.
	p.checkStatus["k"] = StatusInteractionNotAllowed
	if !v.Contains("k") {
		t.Error("Contains should be true for interaction-not-allowed")
	}

	p.checkStatus["k"] = StatusAccessDenied
	if v.Contains("k") {
		t.Error("Contains should be false for access-denied")
	}
}

func TestSinglePromptReusesContext(t *testing.T) {
	v, p := testVault(t, SinglePrompt(AccessControlUserPresence))
	v.Set([]byte("data"), "k")

	v.Get("k")
	first := p.last().Context
	if first == nil {
		t.Fatal("Single-prompt query should carry a context")
	}

	v.Get("k")
	if p.last().Context != first {
		t.Error("Second read should reuse the same context")
	}
}

func TestRequirePromptOnNextAccess(t *testing.T) {
	v, p := testVault(t, SinglePrompt(AccessControlUserPresence))
	v.Set([]byte("data"), "k")

	v.Get("k")
	before := p.last().Context.Handle()

	v.RequirePromptOnNextAccess()

	v.Get("k")
	after := p.last().Context.Handle()
	if before == after {
		t.Error("Context handle should change after RequirePromptOnNextAccess")
	}
}

func TestAlwaysPromptNeverCarriesContext(t *testing.T) {
	v, p := testVault(t, AlwaysPrompt(AccessControlUserPresence))
	v.Set([]byte("data"), "k")

	v.Get("k")
	if p.last().Context != nil {
		t.Error("Always-prompt query should not carry a context")
	}

	v.RequirePromptOnNextAccess()

	v.Get("k")
	if p.last().Context != nil {
		t.Error("Always-prompt query should not carry a context after invalidation")
	}
}

func TestPromptMerging(t *testing.T) {
	v, p := testVault(t, SinglePrompt(AccessControlUserPresence))
	v.Set([]byte("data"), "k")

	v.Get("k")
	if got := p.last().Prompt; got != "" {
		t.Errorf("Empty prompt should be omitted, got %q", got)
	}

	v.GetWithPrompt("k", "why")
	if got := p.last().Prompt; got != "why" {
		t.Errorf("Prompt mismatch: got %q, want why", got)
	}
}

func TestCanAccessKeychain(t *testing.T) {
	v, p := testVault(t, SinglePrompt(AccessControlUserPresence))
	v.Set([]byte("data"), "k")

	v.Get("k")
	ctxBefore := p.last().Context

	if !v.CanAccessKeychain() {
		t.Fatal("Probe should succeed against a healthy platform")
	}

	probe := p.last()
	if probe.HardwareBacked {
		t.Error("Probe query must address the non-hardware sibling")
	}
	if probe.Context != nil {
		t.Error("Probe query must not carry an authentication context")
	}

	// The probe must not disturb the cached session.
	v.Get("k")
	if p.last().Context != ctxBefore {
		t.Error("Probe disturbed the cached authentication context")
	}

	p.failSet = true
	if v.CanAccessKeychain() {
		t.Error("Probe should fail when writes fail")
	}
}

func TestConcurrentOperationsAreSerialized(t *testing.T) {
	v, p := testVault(t, SinglePrompt(AccessControlUserPresence))
	p.delay = time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 3 {
			case 0:
				v.Set([]byte("data"), "k")
			case 1:
				v.Get("k")
			default:
				v.Contains("k")
			}
		}(i)
	}
	wg.Wait()

	if max := p.maxInFlight.Load(); max > 1 {
		t.Errorf("Observed %d concurrent platform calls, want at most 1", max)
	}
}

func TestZeroValueVaultPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic from zero-value Vault")
		}
	}()
	var v Vault
	v.Contains("k")
}
