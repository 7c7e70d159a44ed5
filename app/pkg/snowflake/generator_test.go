package snowflake

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
)

var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// manualClock 手动推进的时钟
type manualClock struct {
	ms atomic.Int64
}

func newManualClock(ms int64) *manualClock {
	c := &manualClock{}
	c.ms.Store(ms)
	return c
}

func (c *manualClock) Now() time.Time {
	return testEpoch.Add(time.Duration(c.ms.Load()) * time.Millisecond)
}

func (c *manualClock) Set(ms int64) {
	c.ms.Store(ms)
}

func mustNew(t testing.TB, dc, machine int64, opts ...Option) *Generator {
	t.Helper()
	g, err := New(dc, machine, testEpoch, opts...)
	if err != nil {
		t.Fatalf("New(%d, %d) failed: %v", dc, machine, err)
	}
	return g
}

func mustNext(t testing.TB, g *Generator) int64 {
	t.Helper()
	id, err := g.NextID()
	if err != nil {
		t.Fatalf("NextID failed: %v", err)
	}
	return id
}

func TestNew_ValidRange(t *testing.T) {
	for dc := int64(0); dc <= MaxDatacenter; dc++ {
		for machine := int64(0); machine <= MaxMachine; machine++ {
			if _, err := New(dc, machine, testEpoch); err != nil {
				t.Fatalf("New(%d, %d) should succeed, got %v", dc, machine, err)
			}
		}
	}
}

func TestNew_InvalidRange(t *testing.T) {
	tests := []struct {
		name    string
		dc      int64
		machine int64
		field   string
	}{
		{"Negative datacenter", -1, 0, "datacenterId"},
		{"Datacenter too large", 32, 0, "datacenterId"},
		{"Negative machine", 0, -1, "machineId"},
		{"Machine too large", 0, 32, "machineId"},
		{"Both invalid", 99, 99, "datacenterId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.dc, tt.machine, testEpoch)
			if g != nil {
				t.Error("Generator should be nil on invalid config")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Expected ErrInvalidConfig, got %v", err)
			}

			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Expected *ConfigError, got %T", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, cfgErr.Field)
			}
			if cfgErr.Max != 31 {
				t.Errorf("Expected max 31, got %d", cfgErr.Max)
			}
		})
	}
}

func TestNextID_SequentialUniqueAndIncreasing(t *testing.T) {
	g := mustNew(t, 3, 7)

	const n = 10000
	ids := make([]int64, 0, n)
	seen := make(map[int64]struct{}, n)
	for i := 0; i < n; i++ {
		id := mustNext(t, g)
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicated id: %d", id)
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			t.Fatalf("id at index %d (%d) is not greater than previous (%d)", i, ids[i], ids[i-1])
		}
	}

	if got := g.Stats().Issued; got != n {
		t.Errorf("Expected %d issued, got %d", n, got)
	}
}

func TestNextID_Concurrent(t *testing.T) {
	g := mustNew(t, 1, 2)

	numGoroutines := 8
	idsPerGoroutine := 5000

	results := make([][]int64, numGoroutines)
	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			ids := make([]int64, 0, idsPerGoroutine)
			for j := 0; j < idsPerGoroutine; j++ {
				id, err := g.NextID()
				if err != nil {
					t.Errorf("NextID failed: %v", err)
					return
				}
				ids = append(ids, id)
			}
			results[idx] = ids
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]struct{}, numGoroutines*idsPerGoroutine)
	total := 0
	for _, ids := range results {
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				t.Fatalf("duplicated id: %d", id)
			}
			seen[id] = struct{}{}
			total++
		}
	}

	if total != numGoroutines*idsPerGoroutine {
		t.Errorf("Expected %d ids, got %d", numGoroutines*idsPerGoroutine, total)
	}
	if got := g.Stats().Issued; got != uint64(total) {
		t.Errorf("Expected %d issued, got %d", total, got)
	}
}

func TestNextID_ContainsOrigin(t *testing.T) {
	g := mustNew(t, 12, 27)

	for i := 0; i < 100; i++ {
		parts := Decompose(mustNext(t, g))
		if parts.DatacenterID != 12 {
			t.Fatalf("Expected datacenter 12, got %d", parts.DatacenterID)
		}
		if parts.MachineID != 27 {
			t.Fatalf("Expected machine 27, got %d", parts.MachineID)
		}
	}
}

func TestNextID_SequenceResetsOnNewMillisecond(t *testing.T) {
	g := mustNew(t, 0, 0)

	first := Decompose(mustNext(t, g))

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		next := Decompose(mustNext(t, g))
		if next.Timestamp > first.Timestamp {
			if next.Sequence != 0 {
				t.Errorf("Expected sequence 0 on new millisecond, got %d", next.Sequence)
			}
			return
		}
	}
	t.Fatal("timestamp did not move forward")
}

func TestNextID_ManualClock(t *testing.T) {
	clock := newManualClock(1000)
	g := mustNew(t, 5, 9, WithClock(clock.Now))

	a := Decompose(mustNext(t, g))
	b := Decompose(mustNext(t, g))
	if a.Timestamp != 1000 || a.Sequence != 0 {
		t.Errorf("Unexpected first id parts: %+v", a)
	}
	if b.Timestamp != 1000 || b.Sequence != 1 {
		t.Errorf("Unexpected second id parts: %+v", b)
	}

	clock.Set(1005)
	c := Decompose(mustNext(t, g))
	if c.Timestamp != 1005 || c.Sequence != 0 {
		t.Errorf("Unexpected third id parts: %+v", c)
	}
}

func TestNextID_SequenceExhaustionWaitsNextMillisecond(t *testing.T) {
	logx.Disable()

	clock := newManualClock(2000)
	g := mustNew(t, 0, 0, WithClock(clock.Now))

	var last int64
	for i := int64(0); i <= MaxSequence; i++ {
		last = mustNext(t, g)
	}
	if parts := Decompose(last); parts.Sequence != MaxSequence {
		t.Fatalf("Expected sequence %d, got %d", MaxSequence, parts.Sequence)
	}

	done := make(chan int64)
	go func() {
		id, err := g.NextID()
		if err != nil {
			t.Errorf("NextID failed: %v", err)
		}
		done <- id
	}()

	// 让 goroutine 进入等待循环后再推进时钟
	time.AfterFunc(10*time.Millisecond, func() { clock.Set(2001) })

	select {
	case id := <-done:
		parts := Decompose(id)
		if parts.Timestamp != 2001 || parts.Sequence != 0 {
			t.Errorf("Expected timestamp 2001 seq 0, got %+v", parts)
		}
		if id <= last {
			t.Errorf("Expected id after exhaustion to be greater")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for sequence exhaustion handling")
	}

	if got := g.Stats().SequenceWaits; got != 1 {
		t.Errorf("Expected 1 sequence wait, got %d", got)
	}
}

func TestNextID_ClockBeforeEpoch(t *testing.T) {
	logx.Disable()

	g, err := New(0, 0, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}

	id, err := g.NextID()
	if !errors.Is(err, ErrClockBeforeEpoch) {
		t.Fatalf("Expected ErrClockBeforeEpoch, got id=%d err=%v", id, err)
	}
	if !IsClockError(err) {
		t.Error("ErrClockBeforeEpoch should be a clock error")
	}
	if got := g.Stats().ClockErrors; got != 1 {
		t.Errorf("Expected 1 clock error, got %d", got)
	}
}

func TestNextID_SubMillisecondBeforeEpoch(t *testing.T) {
	logx.Disable()

	g := mustNew(t, 0, 0, WithClock(func() time.Time {
		return testEpoch.Add(-time.Microsecond)
	}))

	if _, err := g.NextID(); !errors.Is(err, ErrClockBeforeEpoch) {
		t.Fatalf("Expected ErrClockBeforeEpoch, got %v", err)
	}
}

func TestNextID_TimestampOverflow(t *testing.T) {
	logx.Disable()

	clock := newManualClock(MaxTimestamp)
	g := mustNew(t, 0, 0, WithClock(clock.Now))

	parts := Decompose(mustNext(t, g))
	if parts.Timestamp != MaxTimestamp {
		t.Errorf("Expected timestamp %d, got %d", MaxTimestamp, parts.Timestamp)
	}

	clock.Set(MaxTimestamp + 1)
	if _, err := g.NextID(); !errors.Is(err, ErrTimestampOverflow) {
		t.Fatalf("Expected ErrTimestampOverflow, got %v", err)
	}
}

func TestNextID_OverflowDuringSequenceWait(t *testing.T) {
	logx.Disable()

	clock := newManualClock(MaxTimestamp)
	g := mustNew(t, 0, 0, WithClock(clock.Now))

	for i := int64(0); i <= MaxSequence; i++ {
		mustNext(t, g)
	}

	done := make(chan error)
	go func() {
		_, err := g.NextID()
		done <- err
	}()

	time.AfterFunc(10*time.Millisecond, func() { clock.Set(MaxTimestamp + 1) })

	select {
	case err := <-done:
		if !errors.Is(err, ErrTimestampOverflow) {
			t.Fatalf("Expected ErrTimestampOverflow, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for overflow during sequence wait")
	}

	stats := g.Stats()
	if stats.ClockErrors != 1 {
		t.Errorf("Expected 1 clock error, got %d", stats.ClockErrors)
	}
	if stats.SequenceWaits != 1 {
		t.Errorf("Expected 1 sequence wait, got %d", stats.SequenceWaits)
	}
	if stats.Issued != uint64(MaxSequence+1) {
		t.Errorf("Expected %d issued, got %d", MaxSequence+1, stats.Issued)
	}
}

func TestNextID_ClockMovedBackwards(t *testing.T) {
	logx.Disable()

	clock := newManualClock(1000)
	g := mustNew(t, 0, 0, WithClock(clock.Now))

	a := mustNext(t, g)
	clock.Set(990)
	if _, err := g.NextID(); !errors.Is(err, ErrClockMovedBackwards) {
		t.Fatalf("Expected ErrClockMovedBackwards, got %v", err)
	}

	// 时钟恢复后继续正常发号
	clock.Set(1001)
	b := mustNext(t, g)
	if b <= a {
		t.Errorf("Expected id after recovery to be greater")
	}
}

func TestNextID_BackwardWithinTolerance(t *testing.T) {
	logx.Disable()

	clock := newManualClock(1000)
	g := mustNew(t, 0, 0, WithClock(clock.Now), WithMaxBackward(20*time.Millisecond))

	a := mustNext(t, g)

	clock.Set(950)
	if _, err := g.NextID(); !errors.Is(err, ErrClockMovedBackwards) {
		t.Fatalf("Regression beyond tolerance should fail, got %v", err)
	}

	clock.Set(990)
	done := make(chan int64)
	go func() {
		id, err := g.NextID()
		if err != nil {
			t.Errorf("NextID failed: %v", err)
		}
		done <- id
	}()

	time.AfterFunc(10*time.Millisecond, func() { clock.Set(1000) })

	select {
	case b := <-done:
		if b <= a {
			t.Errorf("Expected id after tolerated regression to be greater")
		}
		parts := Decompose(b)
		if parts.Timestamp != 1000 || parts.Sequence != 1 {
			t.Errorf("Expected timestamp 1000 seq 1, got %+v", parts)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for clock to catch up")
	}
}

func TestGenerator_Accessors(t *testing.T) {
	g := mustNew(t, 4, 8)

	if g.DatacenterID() != 4 || g.MachineID() != 8 {
		t.Errorf("Unexpected origin %d-%d", g.DatacenterID(), g.MachineID())
	}
	if !g.Epoch().Equal(testEpoch) {
		t.Errorf("Expected epoch %v, got %v", testEpoch, g.Epoch())
	}

	id := mustNext(t, g)
	issuedAt := Decompose(id).Time(g.Epoch())
	if d := time.Since(issuedAt); d < -time.Second || d > time.Minute {
		t.Errorf("Decoded time %v too far from now", issuedAt)
	}
}

func TestGenerator_Independent(t *testing.T) {
	a := mustNew(t, 1, 1)
	b := mustNew(t, 2, 2)

	seen := make(map[int64]struct{})
	for i := 0; i < 1000; i++ {
		for _, g := range []*Generator{a, b} {
			id := mustNext(t, g)
			if _, ok := seen[id]; ok {
				t.Fatalf("duplicated id across generators: %d", id)
			}
			seen[id] = struct{}{}
		}
	}
}

func BenchmarkNextID(b *testing.B) {
	g := mustNew(b, 0, 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = g.NextID()
	}
}

func BenchmarkNextID_Parallel(b *testing.B) {
	g := mustNew(b, 0, 0)

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = g.NextID()
		}
	})
}
