package ledger

import (
	"time"

	"moneylog/internal/core"
)

// Variant selects which fixed sample set is seeded at startup.
type Variant string

const (
	Standard Variant = "standard"
	Gamified Variant = "gamified"
)

func (v Variant) IsValid() bool {
	return v == Standard || v == Gamified
}

type sampleEntry struct {
	amount   core.Yen
	category core.Category
	memo     string
	daysAgo  int
}

var standardSamples = []sampleEntry{
	{850, core.Food, "ランチ", 0},
	{350, core.Cafe, "スタバ", 0},
	{160, core.Transport, "電車", 0},
	{2980, core.Shopping, "Tシャツ", 0},
	{500, core.Food, "夕食コンビニ", 0},
	{1200, core.Entertainment, "映画", 1},
	{680, core.Food, "お弁当", 1},
	{250, core.Daily, "洗剤", 2},
	{3500, core.Health, "薬局", 3},
	{1980, core.Subscription, "Netflix", 5},
}

var gamifiedSamples = []sampleEntry{
	{580, core.Food, "ランチ", 0},
	{160, core.Transport, "電車", 0},
	{490, core.Cafe, "スタバ", 0},
	{1200, core.Food, "夕食", 1},
	{320, core.Transport, "バス", 1},
	{3500, core.Entertainment, "映画", 1},
	{850, core.Food, "お弁当", 2},
	{2980, core.Shopping, "Tシャツ", 2},
	{450, core.Cafe, "タリーズ", 3},
	{1500, core.Education, "参考書", 3},
	{680, core.Food, "夕食", 3},
	{980, core.Subscription, "Netflix", 5},
	{750, core.Food, "ラーメン", 5},
	{2400, core.Health, "薬局", 7},
	{560, core.Food, "コンビニ", 7},
	{4500, core.Entertainment, "カラオケ", 10},
	{890, core.Food, "焼肉", 10},
	{85000, core.PartTime, "バイト代", 15},
	{10000, core.Gift, "お小遣い", 20},
}

// SampleTransactions returns the startup data set of a variant, dated
// relative to now.
func SampleTransactions(now time.Time, variant Variant) []core.Transaction {
	entries := standardSamples
	if variant == Gamified {
		entries = gamifiedSamples
	}
	out := make([]core.Transaction, 0, len(entries))
	for _, e := range entries {
		out = append(out, core.NewTransaction(e.amount, e.category, e.memo, now.AddDate(0, 0, -e.daysAgo)))
	}
	return out
}
