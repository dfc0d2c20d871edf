package drill

import "sort"

// ShopItem is something a student can buy with BeeCoins
type ShopItem struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int    `json:"price"`
}

var catalog = map[string]ShopItem{
	"hint": {
		Key:         "hint",
		Name:        "Hint",
		Description: "Reveal the first letter of a drill word",
		Price:       5,
	},
	"streak_freeze": {
		Key:         "streak_freeze",
		Name:        "Streak Freeze",
		Description: "Keep your streak through one missed day",
		Price:       20,
	},
	"bee_badge": {
		Key:         "bee_badge",
		Name:        "Bee Badge",
		Description: "Show off on the leaderboard",
		Price:       50,
	},
}

// LookupItem finds a catalog item by key
func LookupItem(key string) (ShopItem, bool) {
	item, ok := catalog[key]
	return item, ok
}

// Catalog lists all items, cheapest first
func Catalog() []ShopItem {
	items := make([]ShopItem, 0, len(catalog))
	for _, item := range catalog {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Price < items[j].Price })
	return items
}
