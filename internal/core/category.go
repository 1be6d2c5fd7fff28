package core

// Category is a closed set of expense and income categories.
type Category string

const (
	Food          Category = "food"
	Transport     Category = "transport"
	Shopping      Category = "shopping"
	Cafe          Category = "cafe"
	Entertainment Category = "entertainment"
	Daily         Category = "daily"
	Health        Category = "health"
	Education     Category = "education"
	Subscription  Category = "subscription"
	Other         Category = "other"

	Salary      Category = "salary"
	PartTime    Category = "part_time"
	Bonus       Category = "bonus"
	SideJob     Category = "side_job"
	Gift        Category = "gift"
	OtherIncome Category = "other_income"
)

// CategoryInfo is display metadata for a category. It is presentation data
// and is never stored on a Transaction.
type CategoryInfo struct {
	Label string `json:"label"`
	Emoji string `json:"emoji"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

var expenseCategories = []Category{
	Food, Transport, Shopping, Cafe, Entertainment,
	Daily, Health, Education, Subscription, Other,
}

var incomeCategories = []Category{
	Salary, PartTime, Bonus, SideJob, Gift, OtherIncome,
}

var categoryInfo = map[Category]CategoryInfo{
	Food:          {Label: "食費", Emoji: "🍙", Icon: "fork.knife", Color: "orange"},
	Transport:     {Label: "交通費", Emoji: "🚃", Icon: "tram.fill", Color: "blue"},
	Shopping:      {Label: "買い物", Emoji: "🛍️", Icon: "bag.fill", Color: "pink"},
	Cafe:          {Label: "カフェ", Emoji: "☕", Icon: "cup.and.saucer.fill", Color: "brown"},
	Entertainment: {Label: "娯楽", Emoji: "🎮", Icon: "gamecontroller.fill", Color: "purple"},
	Daily:         {Label: "日用品", Emoji: "🧴", Icon: "house.fill", Color: "green"},
	Health:        {Label: "医療", Emoji: "💊", Icon: "cross.case.fill", Color: "red"},
	Education:     {Label: "学習", Emoji: "📚", Icon: "book.fill", Color: "cyan"},
	Subscription:  {Label: "サブスク", Emoji: "📱", Icon: "creditcard.fill", Color: "indigo"},
	Other:         {Label: "その他", Emoji: "💰", Icon: "ellipsis.circle.fill", Color: "gray"},

	Salary:      {Label: "給料", Emoji: "💼", Icon: "yensign.circle.fill", Color: "green"},
	PartTime:    {Label: "バイト", Emoji: "🏪", Icon: "briefcase.fill", Color: "mint"},
	Bonus:       {Label: "ボーナス", Emoji: "🎉", Icon: "star.circle.fill", Color: "yellow"},
	SideJob:     {Label: "副業", Emoji: "💻", Icon: "briefcase.fill", Color: "teal"},
	Gift:        {Label: "お小遣い", Emoji: "🎁", Icon: "gift.fill", Color: "pink"},
	OtherIncome: {Label: "その他", Emoji: "💵", Icon: "ellipsis.circle.fill", Color: "gray"},
}

// ExpenseCategories returns the expense set in display order.
func ExpenseCategories() []Category {
	return append([]Category(nil), expenseCategories...)
}

// IncomeCategories returns the income set in display order.
func IncomeCategories() []Category {
	return append([]Category(nil), incomeCategories...)
}

func (c Category) Valid() bool {
	_, ok := categoryInfo[c]
	return ok
}

func (c Category) IsIncome() bool {
	for _, ic := range incomeCategories {
		if ic == c {
			return true
		}
	}
	return false
}

// Info returns the display metadata; ok is false for unknown categories.
func (c Category) Info() (CategoryInfo, bool) {
	info, ok := categoryInfo[c]
	return info, ok
}

// Order is the position of c in its set, used to break ties when sorting.
// Unknown categories sort last.
func (c Category) Order() int {
	set := expenseCategories
	if c.IsIncome() {
		set = incomeCategories
	}
	for i, v := range set {
		if v == c {
			return i
		}
	}
	return len(set)
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory accepts the identifier form ("food") or the Japanese label.
// Labels shared by both sets resolve within the requested kind.
func ParseCategory(s string, income bool) (Category, error) {
	set := expenseCategories
	if income {
		set = incomeCategories
	}
	for _, c := range set {
		if string(c) == s || categoryInfo[c].Label == s {
			return c, nil
		}
	}
	return "", ErrUnknownCategory
}
