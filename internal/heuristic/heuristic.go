// Package heuristic implements the channel-based heuristic adapter driver's DDD loop polls each
// iteration: a worker runs concurrently with the SAT search, periodically offered the current
// incumbent and periodically asked (non-blockingly) whether it has produced a candidate schedule
// worth injecting as seed timepoints. This mirrors the original solver's background heuristic
// thread, generalized from a single hardcoded greedy pass into a [Worker] interface with two
// concrete implementations.
package heuristic

import (
	"context"
	"encoding/json"
	"log/slog"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/sync/errgroup"

	"github.com/NguyenTanUET/maxsattrainscheduling/internal/command"
	"github.com/NguyenTanUET/maxsattrainscheduling/internal/problem"
)

// Schedule is the wire shape for a candidate or incumbent schedule passed across a [Worker]'s
// boundary: [trainIdx][visitIdx], with one trailing arrival entry per train.
type Schedule [][]int32

// Worker runs a scheduling heuristic concurrently with the DDD driver. Offer and Poll must both be
// safe to call from the driver's goroutine without blocking on the worker's progress.
type Worker interface {
	// Offer hands the current incumbent to the worker for seeding. Non-blocking: if the worker
	// is busy, the incumbent may be dropped.
	Offer(sched Schedule)

	// Poll returns a candidate schedule the worker has produced since the last successful Poll,
	// or ok=false if none is available. Non-blocking.
	Poll() (sched Schedule, ok bool)

	// Close releases the worker's resources. After Close, Offer and Poll are no-ops.
	Close()
}

// Greedy is a single-pass list-scheduler: on every Offer it walks each train's visits in order,
// departing each visit at the earliest time consistent with its travel time, its own earliest
// bound, and every previously scheduled train holding a conflicting resource. It runs on its own
// goroutine so a slow pass never blocks the driver's Offer/Poll calls.
type Greedy struct {
	p      *problem.Problem
	in     chan Schedule
	out    chan Schedule
	cancel context.CancelFunc
	g      *errgroup.Group
}

// NewGreedy starts a [Greedy] worker for p. The worker goroutine runs until Close.
func NewGreedy(ctx context.Context, p *problem.Problem) *Greedy {
	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)
	w := &Greedy{
		p:      p,
		in:     make(chan Schedule, 1),
		out:    make(chan Schedule, 1),
		cancel: cancel,
		g:      g,
	}
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case sched, ok := <-w.in:
				if !ok {
					return nil
				}
				candidate := greedySchedule(p, sched)
				select {
				case w.out <- candidate:
				default:
					// Driver hasn't consumed the previous candidate yet; drop this one rather
					// than block the worker goroutine.
				}
			}
		}
	})
	return w
}

// Offer implements [Worker].
func (w *Greedy) Offer(sched Schedule) {
	select {
	case w.in <- sched:
	default:
		// Worker is still busy with a previous offer; the driver will offer again next
		// iteration, so dropping this one is harmless.
	}
}

// Poll implements [Worker].
func (w *Greedy) Poll() (Schedule, bool) {
	select {
	case sched := <-w.out:
		return sched, true
	default:
		return nil, false
	}
}

// Close implements [Worker].
func (w *Greedy) Close() {
	w.cancel()
	// The worker goroutine already watches ctx.Done(); closing w.in too would let a racing Offer
	// call (which, per this method's own contract, must remain a safe no-op after Close) panic by
	// sending on a closed channel.
	_ = w.g.Wait()
}

// greedySchedule computes a single deterministic greedy pass seeded by the current incumbent (if
// any): each train's visits are scheduled in order at the earliest time that respects its own
// travel time and every resource conflict against trains already placed earlier in train index
// order.
func greedySchedule(p *problem.Problem, incumbent Schedule) Schedule {
	conflictsOf := conflictSets(p)
	out := make(Schedule, len(p.Trains))
	// occupied[r] holds the [start,end) intervals already claimed on resource r by trains placed
	// so far, in train-index order.
	occupied := map[problem.ResourceID][][2]int32{}

	for t, train := range p.Trains {
		times := make([]int32, len(train.Visits)+1)
		var cursor int32
		if len(incumbent) > t && len(incumbent[t]) > 0 {
			cursor = incumbent[t][0]
		}
		for i, v := range train.Visits {
			start := max(cursor, v.Earliest)
			start = pushPastConflicts(start, v.TravelTime, occupied[v.ResourceID])
			for _, other := range conflictsOf[v.ResourceID] {
				start = pushPastConflicts(start, v.TravelTime, occupied[other])
			}
			end := start + v.TravelTime
			times[i] = start
			occupied[v.ResourceID] = append(occupied[v.ResourceID], [2]int32{start, end})
			cursor = end
		}
		times[len(train.Visits)] = cursor
		out[t] = times
	}
	return out
}

// pushPastConflicts returns the earliest time >= start at which a [start, start+dur) interval
// does not overlap any interval in occupied.
func pushPastConflicts(start, dur int32, occupied [][2]int32) int32 {
	again := true
	for again {
		again = false
		for _, iv := range occupied {
			if start < iv[1] && start+dur > iv[0] {
				start = iv[1]
				again = true
			}
		}
	}
	return start
}

// conflictSets maps each resource to the other resources it conflicts with, per [problem.Problem].
func conflictSets(p *problem.Problem) map[problem.ResourceID][]problem.ResourceID {
	out := map[problem.ResourceID][]problem.ResourceID{}
	seen := map[problem.ResourceID]mapset.Set[problem.ResourceID]{}
	add := func(a, b problem.ResourceID) {
		if a == b {
			return
		}
		if seen[a] == nil {
			seen[a] = mapset.NewThreadUnsafeSet[problem.ResourceID]()
		}
		if seen[a].Add(b) {
			out[a] = append(out[a], b)
		}
	}
	for _, c := range p.Conflicts {
		add(c.A, c.B)
		add(c.B, c.A)
	}
	return out
}

var _ Worker = (*Greedy)(nil)

// External runs a heuristic as a subprocess, speaking newline-delimited JSON: the driver's
// incumbent is written to the subprocess's stdin as it is offered, and candidate schedules are
// read from its stdout as they arrive. The subprocess command is taken from the DDD_HEURISTIC_CMD
// environment variable by [NewExternalFromEnv]; nil is returned when that variable is unset, so
// callers fall back to [Greedy].
type External struct {
	cancel context.CancelFunc
	g      *errgroup.Group
	stdin  chan Schedule
	out    chan Schedule
}

// NewExternal starts args as a subprocess implementing the external heuristic protocol.
func NewExternal(ctx context.Context, wd string, args ...string) (*External, error) {
	ctx, cancel := context.WithCancel(ctx)
	cmd, stdin, stdout, err := command.PipeBoth(ctx, wd, args...)
	if err != nil {
		cancel()
		return nil, err
	}
	g, ctx := errgroup.WithContext(ctx)
	w := &External{cancel: cancel, g: g, stdin: make(chan Schedule, 1), out: make(chan Schedule, 8)}

	g.Go(func() error {
		enc := json.NewEncoder(stdin)
		defer func() { _ = stdin.Close() }()
		for {
			select {
			case <-ctx.Done():
				return nil
			case sched, ok := <-w.stdin:
				if !ok {
					return nil
				}
				if err := enc.Encode(sched); err != nil {
					slog.ErrorContext(ctx, "heuristic: failed writing incumbent to subprocess", "err", err)
					return err
				}
			}
		}
	})
	g.Go(func() error {
		dec := json.NewDecoder(stdout)
		for dec.More() {
			var sched Schedule
			if err := dec.Decode(&sched); err != nil {
				slog.ErrorContext(ctx, "heuristic: failed decoding candidate from subprocess", "err", err)
				return err
			}
			select {
			case w.out <- sched:
			case <-ctx.Done():
				return nil
			}
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return cmd.Wait()
	})
	return w, nil
}

// NewExternalFromEnv starts an [External] worker from the DDD_HEURISTIC_CMD environment variable,
// a shell-style command line naming the subprocess and its arguments. It returns nil, nil if the
// variable is unset.
func NewExternalFromEnv(ctx context.Context, wd string, lookup func(string) (string, bool)) (*External, error) {
	raw, ok := lookup("DDD_HEURISTIC_CMD")
	if !ok || raw == "" {
		return nil, nil
	}
	args, err := splitCommandLine(raw)
	if err != nil {
		return nil, err
	}
	return NewExternal(ctx, wd, args...)
}

// Offer implements [Worker].
func (w *External) Offer(sched Schedule) {
	select {
	case w.stdin <- sched:
	default:
	}
}

// Poll implements [Worker].
func (w *External) Poll() (Schedule, bool) {
	select {
	case sched := <-w.out:
		return sched, true
	default:
		return nil, false
	}
}

// Close implements [Worker].
func (w *External) Close() {
	w.cancel()
	// See Greedy.Close: ctx.Done() alone stops every goroutine, so the channel is left open and a
	// racing Offer after Close stays the safe no-op its doc comment promises instead of panicking.
	_ = w.g.Wait()
}

var _ Worker = (*External)(nil)
