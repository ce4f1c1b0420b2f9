package api

// DirectoryRequest is the query string of the restaurant directory.
// Numeric fields stay strings so that range errors are reported by the
// analytics layer with the offending field name.
type DirectoryRequest struct {
	Search   string `form:"search" binding:"max=100"`
	Cuisine  string `form:"cuisine" binding:"max=64"`
	Location string `form:"location" binding:"max=64"`
	SortBy   string `form:"sortBy" binding:"max=32"`
	Order    string `form:"order" binding:"omitempty,oneof=asc desc"`
	Page     string `form:"page" binding:"omitempty,number"`
	Limit    string `form:"limit" binding:"omitempty,number"`
}

// RestaurantURI binds the :id path segment.
type RestaurantURI struct {
	ID string `uri:"id" binding:"required"`
}

// TrendRequest is the query string of the trend endpoints.
type TrendRequest struct {
	StartDate string `form:"start_date" binding:"max=40"`
	EndDate   string `form:"end_date" binding:"max=40"`
}

// LeaderboardRequest is the query string of the leaderboard.
type LeaderboardRequest struct {
	StartDate string `form:"start_date" binding:"max=40"`
	EndDate   string `form:"end_date" binding:"max=40"`
	Limit     string `form:"limit" binding:"omitempty,number"`
}
