package session

import (
	"time"

	"moneylog/internal/core"
	"moneylog/internal/ledger"
	"moneylog/internal/progression"
)

// EventKind names a session event.
type EventKind string

const (
	EntrySaved          EventKind = "entry.saved"
	EntryDeleted        EventKind = "entry.deleted"
	BudgetChanged       EventKind = "budget.changed"
	LevelUp             EventKind = "progression.level_up"
	AchievementUnlocked EventKind = "progression.achievement_unlocked"
)

// Event is broadcast to session subscribers. Only the fields relevant to
// Kind are set.
type Event struct {
	Kind        EventKind
	At          time.Time
	Variant     ledger.Variant
	Transaction *core.Transaction
	Budget      core.Yen
	Achievement string
	Progress    *progression.Snapshot
}
