// Package reconciler keeps a client side view of one Day and applies habit
// mutations optimistically against a remote gateway.
//
// Every mutation is applied locally first (except creation, which waits for
// the server-assigned id), then sent to the gateway. Each habit runs a small
// state machine:
//
//	Clean -> Pending -> Clean                  (remote success)
//	Clean -> Pending -> Reverting -> Clean     (failure, RollbackOnFailure)
//	Clean -> Pending -> Diverged               (failure, KeepOnFailure)
//
// Mutations carry a sequence number. A response that settles after a newer
// mutation of the same habit was issued is reported as Superseded and does
// not touch local state.
package reconciler

import (
	"context"
	"log"
	"sync"

	"github.com/comitanigiacomo/kanso-weeks/internal/core/domain"
)

// Gateway is the slice of the entity store the view needs. Stores and the
// remote HTTP client both satisfy it.
type Gateway interface {
	ListHabitsByDay(ctx context.Context, dayID string) ([]*domain.Habit, error)
	CreateHabit(ctx context.Context, habit *domain.Habit) error
	SetHabitDone(ctx context.Context, id string, done bool) error
	RenameHabit(ctx context.Context, id string, name string) error
	DeleteHabit(ctx context.Context, id string) error
}

type Policy int

const (
	// RollbackOnFailure restores the previous local value when the remote
	// call fails, then re-reads the authoritative value.
	RollbackOnFailure Policy = iota
	// KeepOnFailure leaves the optimistic value in place and only logs.
	KeepOnFailure
)

type State int

const (
	StateClean State = iota
	StatePending
	StateReverting
	StateDiverged
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StatePending:
		return "pending"
	case StateReverting:
		return "reverting"
	case StateDiverged:
		return "diverged"
	}
	return "unknown"
}

type Op string

const (
	OpCreate Op = "create"
	OpToggle Op = "toggle"
	OpRename Op = "rename"
	OpDelete Op = "delete"
)

type Outcome int

const (
	Applied Outcome = iota
	RolledBack
	Diverged
	Rejected
	// Failed is a remote failure of an operation that had not touched local
	// state yet (creation).
	Failed
	Superseded
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case RolledBack:
		return "rolled back"
	case Diverged:
		return "diverged"
	case Rejected:
		return "rejected"
	case Failed:
		return "failed"
	case Superseded:
		return "superseded"
	}
	return "unknown"
}

type Result struct {
	Op      Op
	HabitID string
	Outcome Outcome
	Err     error
}

func (r Result) OK() bool {
	return r.Outcome == Applied
}

type entry struct {
	habit    domain.Habit
	state    State
	seq      uint64
	inflight int
	hidden   bool
}

type DayView struct {
	gw     Gateway
	dayID  string
	policy Policy

	mu      sync.Mutex
	entries map[string]*entry
	clock   uint64
	// deleted maps habits removed since the last Load to the clock value
	// at removal. A fetch that started earlier may still list them.
	deleted map[string]uint64
}

func NewDayView(gw Gateway, dayID string, policy Policy) *DayView {
	return &DayView{
		gw:      gw,
		dayID:   dayID,
		policy:  policy,
		entries: make(map[string]*entry),
		deleted: make(map[string]uint64),
	}
}

func (v *DayView) DayID() string {
	return v.dayID
}

// Load refetches the day. Habits touched by a mutation issued after the
// fetch started, or still in flight, keep their local value.
func (v *DayView) Load(ctx context.Context) error {
	v.mu.Lock()
	since := v.clock
	v.mu.Unlock()

	habits, err := v.gw.ListHabitsByDay(ctx, v.dayID)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	next := make(map[string]*entry, len(habits))
	for _, h := range habits {
		if at, ok := v.deleted[h.ID]; ok && at > since {
			continue
		}
		if e, ok := v.entries[h.ID]; ok && e.busy(since) {
			next[h.ID] = e
			continue
		}
		next[h.ID] = &entry{habit: *h, state: StateClean}
	}
	for id, e := range v.entries {
		if _, ok := next[id]; !ok && e.busy(since) {
			next[id] = e
		}
	}
	for id, at := range v.deleted {
		if at <= since {
			delete(v.deleted, id)
		}
	}
	v.entries = next
	return nil
}

// forget drops a habit known to be gone remotely. Callers hold v.mu.
func (v *DayView) forget(id string) {
	v.clock++
	delete(v.entries, id)
	v.deleted[id] = v.clock
}

func (e *entry) busy(since uint64) bool {
	return e.inflight > 0 || e.seq > since
}

// Habits returns copies of the visible habits in creation order.
func (v *DayView) Habits() []*domain.Habit {
	v.mu.Lock()
	defer v.mu.Unlock()

	habits := make([]*domain.Habit, 0, len(v.entries))
	for _, e := range v.entries {
		if e.hidden {
			continue
		}
		clone := e.habit
		habits = append(habits, &clone)
	}
	domain.SortHabits(habits)
	return habits
}

func (v *DayView) Progress() int {
	return domain.DayProgress(domain.HabitStatuses(v.Habits()))
}

// State reports the machine state of a habit. Hidden habits (pending
// delete) are still reported.
func (v *DayView) State(id string) (State, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	e, ok := v.entries[id]
	if !ok {
		return StateClean, false
	}
	return e.state, true
}

// begin marks e as having a new in-flight mutation. Callers hold v.mu.
func (v *DayView) begin(e *entry) uint64 {
	v.clock++
	e.seq = v.clock
	e.inflight++
	e.state = StatePending
	return e.seq
}

func (v *DayView) lookup(id string) (*entry, bool) {
	e, ok := v.entries[id]
	if !ok || e.hidden {
		return nil, false
	}
	return e, true
}

func (v *DayView) Toggle(ctx context.Context, id string) Result {
	v.mu.Lock()
	e, ok := v.lookup(id)
	if !ok {
		v.mu.Unlock()
		return Result{Op: OpToggle, HabitID: id, Outcome: Rejected, Err: domain.ErrHabitNotFound}
	}
	prev := e.habit.IsDone
	e.habit.IsDone = !prev
	next := e.habit.IsDone
	seq := v.begin(e)
	v.mu.Unlock()

	err := v.gw.SetHabitDone(ctx, id, next)
	return v.settle(ctx, OpToggle, id, seq, err, func(e *entry) { e.habit.IsDone = prev })
}

func (v *DayView) Rename(ctx context.Context, id, name string) Result {
	clean, err := domain.NormalizeHabitName(name)
	if err != nil {
		return Result{Op: OpRename, HabitID: id, Outcome: Rejected, Err: err}
	}

	v.mu.Lock()
	e, ok := v.lookup(id)
	if !ok {
		v.mu.Unlock()
		return Result{Op: OpRename, HabitID: id, Outcome: Rejected, Err: domain.ErrHabitNotFound}
	}
	prev := e.habit.Name
	e.habit.Name = clean
	seq := v.begin(e)
	v.mu.Unlock()

	err = v.gw.RenameHabit(ctx, id, clean)
	return v.settle(ctx, OpRename, id, seq, err, func(e *entry) { e.habit.Name = prev })
}

// Delete hides the habit at once; a rollback shows it again in its
// original position.
func (v *DayView) Delete(ctx context.Context, id string) Result {
	v.mu.Lock()
	e, ok := v.lookup(id)
	if !ok {
		v.mu.Unlock()
		return Result{Op: OpDelete, HabitID: id, Outcome: Rejected, Err: domain.ErrHabitNotFound}
	}
	e.hidden = true
	seq := v.begin(e)
	v.mu.Unlock()

	err := v.gw.DeleteHabit(ctx, id)
	return v.settle(ctx, OpDelete, id, seq, err, func(e *entry) { e.hidden = false })
}

// Create is not optimistic: the habit shows up only once the gateway has
// assigned its id.
func (v *DayView) Create(ctx context.Context, name string) (*domain.Habit, Result) {
	habit, err := domain.NewHabit(v.dayID, name)
	if err != nil {
		return nil, Result{Op: OpCreate, Outcome: Rejected, Err: err}
	}

	if err := v.gw.CreateHabit(ctx, habit); err != nil {
		log.Printf("[RECONCILER] create habit on day %s failed: %v", v.dayID, err)
		return nil, Result{Op: OpCreate, Outcome: Failed, Err: err}
	}

	v.mu.Lock()
	if _, ok := v.entries[habit.ID]; !ok {
		v.clock++
		v.entries[habit.ID] = &entry{habit: *habit, state: StateClean, seq: v.clock}
	}
	v.mu.Unlock()

	clone := *habit
	return &clone, Result{Op: OpCreate, HabitID: habit.ID, Outcome: Applied}
}

func (v *DayView) settle(ctx context.Context, op Op, id string, seq uint64, err error, revert func(*entry)) Result {
	v.mu.Lock()

	e, ok := v.entries[id]
	if !ok {
		v.mu.Unlock()
		return Result{Op: op, HabitID: id, Outcome: Superseded, Err: err}
	}
	e.inflight--

	if seq != e.seq {
		v.mu.Unlock()
		return Result{Op: op, HabitID: id, Outcome: Superseded, Err: err}
	}

	if err == nil {
		e.state = StateClean
		if op == OpDelete {
			v.forget(id)
		}
		v.mu.Unlock()
		return Result{Op: op, HabitID: id, Outcome: Applied}
	}

	if v.policy == KeepOnFailure {
		e.state = StateDiverged
		v.mu.Unlock()
		log.Printf("[RECONCILER] %s habit %s failed, keeping local value: %v", op, id, err)
		return Result{Op: op, HabitID: id, Outcome: Diverged, Err: err}
	}

	revert(e)
	e.state = StateReverting
	v.mu.Unlock()

	log.Printf("[RECONCILER] %s habit %s failed, rolling back: %v", op, id, err)
	v.refresh(ctx, id, seq)
	return Result{Op: op, HabitID: id, Outcome: RolledBack, Err: err}
}

// refresh re-reads the authoritative value of a reverted habit. A newer
// mutation issued meanwhile takes precedence.
func (v *DayView) refresh(ctx context.Context, id string, seq uint64) {
	habits, err := v.gw.ListHabitsByDay(ctx, v.dayID)

	v.mu.Lock()
	defer v.mu.Unlock()

	e, ok := v.entries[id]
	if !ok || e.seq != seq {
		return
	}

	if err != nil {
		log.Printf("[RECONCILER] refresh of day %s failed, keeping restored value: %v", v.dayID, err)
		e.state = StateClean
		return
	}

	for _, h := range habits {
		if h.ID == id {
			e.habit = *h
			e.hidden = false
			e.state = StateClean
			return
		}
	}
	v.forget(id)
}
