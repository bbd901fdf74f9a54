package models

// DefaultLimit is the page size applied when a collection request does
// not specify one.
const DefaultLimit = 15

// ListOptions carries the generic collection query parameters shared by
// every list endpoint. Limit <= 0 means the full unpaginated set.
type ListOptions struct {
	Search string `form:"search"`
	Sort   string `form:"sort"`
	Limit  int    `form:"limit"`
	Page   int    `form:"page"`
}

// Pagination is the page metadata returned alongside paginated
// collections. Total is the number of matching rows before paging.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Food list preset orderings, selected with the "filter" query param.
const (
	FoodPresetNew     = "new"
	FoodPresetRandom  = "random"
	FoodPresetPopular = "popular"
	FoodPresetName    = "name"
	FoodPresetPrice   = "price"
)

// FoodListOptions extends ListOptions with the food-specific extras.
type FoodListOptions struct {
	ListOptions
	CategoryIDs []int64
	Preset      string
}

// TableListOptions extends ListOptions with equality filters on the
// table number and availability flag.
type TableListOptions struct {
	ListOptions
	Number    *int64
	Available *string
}
