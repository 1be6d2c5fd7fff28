package progression

// Achievement is a named milestone with a one-way unlock flag.
type Achievement struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Emoji         string `json:"emoji"`
	RequiredValue int    `json:"required_value"`
	Unlocked      bool   `json:"unlocked"`
}

const (
	FirstLog      = "first_log"
	Streak3       = "streak_3"
	Streak7       = "streak_7"
	Streak30      = "streak_30"
	Level5        = "level_5"
	Level10       = "level_10"
	BudgetKeep    = "budget_keep"
	Log50         = "log_50"
	AllCategories = "all_categories"
	SavingGoal    = "saving_goal"
)

// rule unlocks an achievement when its condition holds after an entry.
type rule struct {
	id   string
	when func(State) bool
}

// rules is evaluated on every RecordEntry. Achievements without a rule are
// only ever unlocked through Unlock or the seeded flags; RequiredValue is
// descriptive and not consulted here.
var rules = []rule{
	{Streak3, func(s State) bool { return s.Streak >= 3 }},
	{Streak7, func(s State) bool { return s.Streak >= 7 }},
	{Streak30, func(s State) bool { return s.Streak >= 30 }},
}

// Catalog returns the ten achievements, all locked.
func Catalog() []Achievement {
	return []Achievement{
		{ID: FirstLog, Title: "はじめの一歩", Description: "初めての記録をつけた", Emoji: "👣", RequiredValue: 1},
		{ID: Streak3, Title: "3日坊主卒業", Description: "3日連続で記録をつけた", Emoji: "🔥", RequiredValue: 3},
		{ID: Streak7, Title: "一週間マスター", Description: "7日連続で記録をつけた", Emoji: "⭐", RequiredValue: 7},
		{ID: Streak30, Title: "継続の達人", Description: "30日連続で記録をつけた", Emoji: "👑", RequiredValue: 30},
		{ID: Level5, Title: "レベル5到達", Description: "レベル5に到達した", Emoji: "🎯", RequiredValue: 5},
		{ID: Level10, Title: "レベル10到達", Description: "レベル10に到達した", Emoji: "🏆", RequiredValue: 10},
		{ID: BudgetKeep, Title: "やりくり上手", Description: "1ヶ月予算内に収めた", Emoji: "💪", RequiredValue: 1},
		{ID: Log50, Title: "記録の鬼", Description: "50件の記録を達成", Emoji: "📝", RequiredValue: 50},
		{ID: AllCategories, Title: "カテゴリマスター", Description: "全カテゴリを使った", Emoji: "🌈", RequiredValue: 9},
		{ID: SavingGoal, Title: "貯金の星", Description: "月の収支がプラスだった", Emoji: "🌟", RequiredValue: 1},
	}
}

// SampleAchievements is the catalog with the flags the app ships with.
func SampleAchievements() []Achievement {
	seeded := map[string]bool{
		FirstLog:   true,
		Streak3:    true,
		Streak7:    true,
		Level5:     true,
		SavingGoal: true,
	}
	out := Catalog()
	for i := range out {
		out[i].Unlocked = seeded[out[i].ID]
	}
	return out
}
