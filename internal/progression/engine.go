// Package progression keeps the gamification state: XP, level, streak and
// achievements. Every state change is a deterministic rule applied when an
// entry is recorded.
package progression

import (
	"sort"
	"sync"
)

const (
	// EntryXP is awarded for every recorded entry.
	EntryXP = 25
	// xpPerLevel scales the XP a level needs: level n needs n*xpPerLevel.
	xpPerLevel = 100
)

// State is the numeric part of the progression.
type State struct {
	CurrentXP       int `json:"current_xp"`
	Level           int `json:"level"`
	Streak          int `json:"streak"`
	TotalDaysLogged int `json:"total_days_logged"`
}

// SampleState is the state the gamified app starts with.
func SampleState() State {
	return State{CurrentXP: 340, Level: 5, Streak: 7, TotalDaysLogged: 23}
}

// XPForCurrentLevel is the XP needed to clear the current level.
func (s State) XPForCurrentLevel() int {
	return s.Level * xpPerLevel
}

// XPProgress is the fraction of the current level already earned.
func (s State) XPProgress() float64 {
	need := s.XPForCurrentLevel()
	if need <= 0 {
		return 0
	}
	return float64(s.CurrentXP%need) / float64(need)
}

// XPToNextLevel is the XP still missing for the next level.
func (s State) XPToNextLevel() int {
	need := s.XPForCurrentLevel()
	if need <= 0 {
		return 0
	}
	return need - s.CurrentXP%need
}

// Snapshot is a read-only copy for presenters.
type Snapshot struct {
	State
	Achievements []Achievement `json:"achievements"`
}

// UnlockedCount is the number of unlocked achievements.
func (s Snapshot) UnlockedCount() int {
	n := 0
	for _, a := range s.Achievements {
		if a.Unlocked {
			n++
		}
	}
	return n
}

// Outcome describes what a single RecordEntry changed.
type Outcome struct {
	LevelsGained int
	Unlocked     []string
	Snapshot     Snapshot
}

// Engine applies progression rules. It is safe for concurrent use;
// subscribers run after the lock is released.
type Engine struct {
	mu           sync.Mutex
	state        State
	achievements []Achievement

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(Snapshot)
}

// NewEngine starts from state with the given achievements. A level below 1
// is raised to 1 and pending XP is folded into levels.
func NewEngine(state State, achievements []Achievement) *Engine {
	if state.Level < 1 {
		state.Level = 1
	}
	if state.CurrentXP < 0 {
		state.CurrentXP = 0
	}
	e := &Engine{
		state:        state,
		achievements: append([]Achievement(nil), achievements...),
		subs:         make(map[int]func(Snapshot)),
	}
	e.levelUp()
	return e
}

// NewSampleEngine starts from the gamified app's shipped state.
func NewSampleEngine() *Engine {
	return NewEngine(SampleState(), SampleAchievements())
}

// Subscribe registers fn for every state change.
func (e *Engine) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	id := e.nextID
	e.nextID++
	e.subs[id] = fn
	return func() {
		e.subMu.Lock()
		defer e.subMu.Unlock()
		delete(e.subs, id)
	}
}

func (e *Engine) notify(s Snapshot) {
	e.subMu.Lock()
	ids := make([]int, 0, len(e.subs))
	for id := range e.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Snapshot), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, e.subs[id])
	}
	e.subMu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		State:        e.state,
		Achievements: append([]Achievement(nil), e.achievements...),
	}
}

// AddXP adds amount and carries overflow into as many levels as it clears.
// It returns the number of levels gained.
func (e *Engine) AddXP(amount int) int {
	e.mu.Lock()
	gained := e.addXPLocked(amount)
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.notify(snap)
	return gained
}

func (e *Engine) addXPLocked(amount int) int {
	e.state.CurrentXP += amount
	return e.levelUp()
}

// levelUp keeps 0 <= CurrentXP < Level*100.
func (e *Engine) levelUp() int {
	gained := 0
	for e.state.CurrentXP >= e.state.Level*xpPerLevel {
		e.state.CurrentXP -= e.state.Level * xpPerLevel
		e.state.Level++
		gained++
	}
	return gained
}

// RecordEntry advances the streak and day count, awards EntryXP and unlocks
// every achievement whose rule now holds.
func (e *Engine) RecordEntry() Outcome {
	e.mu.Lock()
	e.state.Streak++
	e.state.TotalDaysLogged++
	gained := e.addXPLocked(EntryXP)

	var unlocked []string
	for _, r := range rules {
		if r.when(e.state) && e.unlockLocked(r.id) {
			unlocked = append(unlocked, r.id)
		}
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.notify(snap)
	return Outcome{LevelsGained: gained, Unlocked: unlocked, Snapshot: snap}
}

// Unlock sets the achievement's flag. Unknown ids are ignored.
func (e *Engine) Unlock(id string) {
	e.mu.Lock()
	changed := e.unlockLocked(id)
	snap := e.snapshotLocked()
	e.mu.Unlock()

	if changed {
		e.notify(snap)
	}
}

// unlockLocked reports whether the flag went from locked to unlocked.
func (e *Engine) unlockLocked(id string) bool {
	for i := range e.achievements {
		if e.achievements[i].ID != id {
			continue
		}
		if e.achievements[i].Unlocked {
			return false
		}
		e.achievements[i].Unlocked = true
		return true
	}
	return false
}
