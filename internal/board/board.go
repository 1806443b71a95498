// Package board owns the live task list of an interactive session.
//
// A Board is a single-owner controller: one goroutine (Run) holds the state
// and applies commands in the order they were queued. Network calls run in
// their own goroutines and post their results back onto the same queue, so
// state is never touched concurrently. Observers receive immutable Snapshots
// through Subscribe.
package board

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"caretaker/internal/bucket"
	"caretaker/internal/groups"
	"caretaker/internal/reorder"
	"caretaker/internal/service"
	"caretaker/internal/suggest"
)

var (
	// ErrClosed is returned by operations once Run has stopped.
	ErrClosed = errors.New("board: not running")

	// ErrEmptyTitle is returned when a task title is blank.
	ErrEmptyTitle = errors.New("title required")
)

// queueSize bounds commands waiting for the owner goroutine.
const queueSize = 32

// Options configures a Board. Zero fields take defaults.
type Options struct {
	Log zerolog.Logger

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time

	// Label buckets tasks by date. Defaults to bucket.Label.
	Label bucket.Func

	// NewID generates IDs for created tasks. Defaults to uuid.NewString.
	NewID func() string
}

// Snapshot is an immutable view of the board.
type Snapshot struct {
	// Rev increases with every state change.
	Rev uint64

	// Tasks is the flat task list as last fetched and edited.
	Tasks []service.Task

	// Groups is Tasks bucketed by date, in display order.
	Groups groups.Collection

	// Suggestions is the latest accepted suggestion result.
	Suggestions suggest.Result

	// InFlight counts network calls that have not landed yet.
	InFlight int

	// Err is the error of the most recent failed call, cleared by the next
	// call that succeeds.
	Err error
}

// Board is the session controller. Create with New and start with Run.
type Board struct {
	svc      service.Service
	pipeline *suggest.Pipeline
	log      zerolog.Logger
	clock    func() time.Time
	label    bucket.Func
	newID    func() string

	cmds    chan command
	done    chan struct{}
	running atomic.Bool
	wg      sync.WaitGroup

	mu      sync.Mutex
	last    Snapshot
	subs    map[int]chan Snapshot
	nextSub int
	closed  bool
}

type command struct {
	fn  func(*state) error
	ack chan error
}

// state is owned by the Run goroutine.
type state struct {
	ctx context.Context

	rev         uint64
	tasks       []service.Task
	groups      groups.Collection
	suggestions suggest.Result
	inFlight    int
	err         error

	seq            uint64
	pendingRefresh uint64
	pendingSuggest uint64

	// journal holds local changes made while a refresh is in flight; they
	// are replayed onto the fetched list when it lands.
	journal []step
}

// step is a replayable local change.
type step func(*state) error

// New creates a Board backed by svc.
func New(svc service.Service, opts Options) *Board {
	b := &Board{
		svc:      svc,
		pipeline: suggest.NewPipeline(svc, opts.Log),
		log:      opts.Log,
		clock:    opts.Clock,
		label:    opts.Label,
		newID:    opts.NewID,
		cmds:     make(chan command, queueSize),
		done:     make(chan struct{}),
		subs:     make(map[int]chan Snapshot),
	}
	if b.clock == nil {
		b.clock = time.Now
	}
	if b.label == nil {
		b.label = bucket.Label
	}
	if b.newID == nil {
		b.newID = uuid.NewString
	}
	return b
}

// Run applies queued commands until ctx is done. It must be called once.
// In-flight calls are cancelled with ctx and awaited before Run returns.
func (b *Board) Run(ctx context.Context) error {
	if !b.running.CompareAndSwap(false, true) {
		return errors.New("board: already running")
	}
	defer b.shutdown()

	s := &state{ctx: ctx}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c := <-b.cmds:
			rev := s.rev
			err := c.fn(s)
			if s.rev != rev {
				b.publish(s.snapshot())
			}
			if c.ack != nil {
				c.ack <- err
			}
		}
	}
}

func (b *Board) shutdown() {
	close(b.done)
	b.wg.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}

// Snapshot returns the latest published snapshot.
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

// Subscribe returns a channel of snapshots, starting with the current one.
// Delivery is latest-wins: a slow reader skips intermediate snapshots. The
// channel is closed by cancel or when Run stops.
func (b *Board) Subscribe() (<-chan Snapshot, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	ch <- b.last
	id := b.nextSub
	b.nextSub++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				close(c)
				delete(b.subs, id)
			}
		})
	}
}

// Idle waits until no network call is in flight and returns that snapshot.
func (b *Board) Idle(ctx context.Context) (Snapshot, error) {
	ch, cancel := b.Subscribe()
	defer cancel()
	for {
		select {
		case snap, ok := <-ch:
			if !ok {
				return b.Snapshot(), ErrClosed
			}
			if snap.InFlight == 0 {
				return snap, nil
			}
		case <-ctx.Done():
			return b.Snapshot(), ctx.Err()
		}
	}
}

func (b *Board) publish(snap Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = snap
	for _, ch := range b.subs {
		// Only publish sends, under mu, so after draining the send cannot block.
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

// do queues fn and waits for the owner goroutine to apply it.
func (b *Board) do(ctx context.Context, fn func(*state) error) error {
	c := command{fn: fn, ack: make(chan error, 1)}
	select {
	case b.cmds <- c:
	case <-b.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-c.ack:
		return err
	case <-b.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// launch runs call in its own goroutine and posts the returned landing
// function back onto the queue.
func (b *Board) launch(s *state, call func(ctx context.Context) func(*state)) {
	s.inFlight++
	s.touch()

	ctx := s.ctx
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		land := call(ctx)
		c := command{fn: func(s *state) error {
			s.inFlight--
			s.touch()
			land(s)
			return nil
		}}
		select {
		case b.cmds <- c:
		case <-b.done:
		}
	}()
}

func (b *Board) today() time.Time {
	return bucket.Date(b.clock())
}

// Refresh fetches the task list. Only the most recently issued refresh is
// applied; earlier ones are discarded when they land.
func (b *Board) Refresh(ctx context.Context) error {
	return b.do(ctx, func(s *state) error {
		s.seq++
		seq := s.seq
		s.pendingRefresh = seq

		b.launch(s, func(ctx context.Context) func(*state) {
			tasks, err := b.svc.ListTasks(ctx)
			return func(s *state) { b.landRefresh(s, seq, tasks, err) }
		})
		return nil
	})
}

func (b *Board) landRefresh(s *state, seq uint64, tasks []service.Task, err error) {
	if seq != s.pendingRefresh {
		b.log.Debug().Uint64("seq", seq).Uint64("latest", s.pendingRefresh).Msg("dropping stale refresh")
		return
	}
	s.pendingRefresh = 0
	journal := s.journal
	s.journal = nil

	if err != nil {
		b.log.Warn().Err(err).Msg("refresh failed")
		s.err = err
		return
	}

	s.tasks = tasks
	s.groups = groups.GroupBy(tasks, b.label, b.today())
	s.err = nil
	for _, st := range journal {
		if err := st(s); err != nil {
			b.log.Debug().Err(err).Msg("local change no longer applies after refresh")
		}
	}
	b.log.Debug().
		Int("tasks", len(tasks)).
		Int("groups", s.groups.Len()).
		Int("replayed", len(journal)).
		Msg("refresh applied")
}

// Add creates a pending task titled title, dated now.
func (b *Board) Add(ctx context.Context, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	task := service.Task{
		ID:        b.newID(),
		Title:     title,
		Status:    service.StatusPending,
		CreatedAt: b.clock().UTC(),
	}
	return b.do(ctx, func(s *state) error {
		b.launch(s, func(ctx context.Context) func(*state) {
			created, err := b.svc.CreateTask(ctx, task)
			return func(s *state) {
				if err != nil {
					b.log.Warn().Err(err).Str("title", task.Title).Msg("create failed")
					s.err = err
					return
				}
				s.err = nil
				s.record(func(s *state) error {
					b.foldCreated(s, created)
					return nil
				})
			}
		})
		return nil
	})
}

// SetStatus marks the task with id as done or pending.
func (b *Board) SetStatus(ctx context.Context, id string, status service.Status) error {
	return b.update(ctx, id, func(t service.Task) service.Task { return t.WithStatus(status) })
}

// Rename changes the title of the task with id.
func (b *Board) Rename(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	return b.update(ctx, id, func(t service.Task) service.Task { return t.WithTitle(title) })
}

func (b *Board) update(ctx context.Context, id string, edit func(service.Task) service.Task) error {
	return b.do(ctx, func(s *state) error {
		current, ok := s.find(id)
		if !ok {
			return service.ErrNotFound
		}
		next := edit(current)
		b.launch(s, func(ctx context.Context) func(*state) {
			updated, err := b.svc.UpdateTask(ctx, next)
			return func(s *state) {
				if err != nil {
					b.log.Warn().Err(err).Str("id", id).Msg("update failed")
					s.err = err
					return
				}
				s.err = nil
				s.record(func(s *state) error {
					b.foldUpdated(s, updated)
					return nil
				})
			}
		})
		return nil
	})
}

// Delete removes the task with id.
func (b *Board) Delete(ctx context.Context, id string) error {
	return b.do(ctx, func(s *state) error {
		if _, ok := s.find(id); !ok {
			return service.ErrNotFound
		}
		b.launch(s, func(ctx context.Context) func(*state) {
			err := b.svc.DeleteTask(ctx, id)
			return func(s *state) {
				if err != nil {
					b.log.Warn().Err(err).Str("id", id).Msg("delete failed")
					s.err = err
					return
				}
				s.err = nil
				s.record(func(s *state) error {
					s.remove(id)
					return nil
				})
			}
		})
		return nil
	})
}

// Suggest asks the provider about the current tasks. Only the most recently
// issued request is applied; a failed request clears the suggestions.
func (b *Board) Suggest(ctx context.Context, prompt string, shape suggest.Shape) error {
	if strings.TrimSpace(prompt) == "" {
		return suggest.ErrEmptyPrompt
	}
	return b.do(ctx, func(s *state) error {
		s.seq++
		seq := s.seq
		s.pendingSuggest = seq
		tasks := append([]service.Task(nil), s.tasks...)
		today := b.today()

		b.launch(s, func(ctx context.Context) func(*state) {
			result, err := b.pipeline.Run(ctx, tasks, prompt, shape, today)
			return func(s *state) {
				if seq != s.pendingSuggest {
					b.log.Debug().Uint64("seq", seq).Uint64("latest", s.pendingSuggest).Msg("dropping stale suggestions")
					return
				}
				s.pendingSuggest = 0
				s.suggestions = result
				s.err = err
			}
		})
		return nil
	})
}

// Reorder applies a move intent to the current groups. A rejected intent
// returns reorder.ErrStaleIntent and leaves the board unchanged. Reorders are
// local to the session.
func (b *Board) Reorder(ctx context.Context, intent reorder.Intent) error {
	return b.do(ctx, func(s *state) error {
		err := s.record(func(s *state) error {
			next, err := reorder.Apply(s.groups, intent)
			if err != nil {
				return err
			}
			s.groups = next
			s.touch()
			return nil
		})
		if err != nil {
			b.log.Debug().Err(err).Msg("reorder rejected")
		}
		return err
	})
}

func (b *Board) foldCreated(s *state, t service.Task) {
	if _, ok := s.find(t.ID); ok {
		b.foldUpdated(s, t)
		return
	}
	s.tasks = append(append([]service.Task(nil), s.tasks...), t)
	s.groups = s.groups.WithTask(b.label(t.CreatedAt, b.today()), t, -1)
	s.touch()
}

// foldUpdated swaps in t and moves it to the group its date now belongs to.
func (b *Board) foldUpdated(s *state, t service.Task) {
	s.replace(t)
	label := b.label(t.CreatedAt, b.today())
	if current, ok := s.groups.FindGroupOf(t.ID); ok && current != label {
		s.groups = s.groups.WithoutTask(t.ID).WithTask(label, t, -1)
	}
}

// record applies st now and, while a refresh is in flight, keeps it for
// replay. A step that fails now is not kept.
func (s *state) record(st step) error {
	if err := st(s); err != nil {
		return err
	}
	if s.pendingRefresh != 0 {
		s.journal = append(s.journal, st)
	}
	return nil
}

func (s *state) touch() {
	s.rev++
}

func (s *state) find(id string) (service.Task, bool) {
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

func (s *state) replace(t service.Task) {
	tasks := make([]service.Task, len(s.tasks))
	copy(tasks, s.tasks)
	for i := range tasks {
		if tasks[i].ID == t.ID {
			tasks[i] = t
		}
	}
	s.tasks = tasks
	s.groups = s.groups.Replace(t)
	s.touch()
}

func (s *state) remove(id string) {
	tasks := make([]service.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if t.ID != id {
			tasks = append(tasks, t)
		}
	}
	s.tasks = tasks
	s.groups = s.groups.WithoutTask(id)
	s.touch()
}

func (s *state) snapshot() Snapshot {
	return Snapshot{
		Rev:         s.rev,
		Tasks:       append([]service.Task(nil), s.tasks...),
		Groups:      s.groups,
		Suggestions: s.suggestions,
		InFlight:    s.inFlight,
		Err:         s.err,
	}
}
