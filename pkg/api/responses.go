package api

type Restaurant struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Cuisine  string `json:"cuisine"`
}

type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

type DirectoryResponse struct {
	Data       []Restaurant `json:"data"`
	Pagination Pagination   `json:"pagination"`
}

type TrendPoint struct {
	Date          string  `json:"date"`
	Orders        int     `json:"orders"`
	Revenue       float64 `json:"revenue"`
	AvgOrderValue int64   `json:"avg_order_value"`
	PeakHour      *int    `json:"peak_hour"`
}

type TrendSummary struct {
	RestaurantID  int64   `json:"restaurant_id"`
	Days          int     `json:"days"`
	Orders        int     `json:"orders"`
	Revenue       float64 `json:"revenue"`
	AvgOrderValue int64   `json:"avg_order_value"`
	PeakHour      *int    `json:"peak_hour"`
}

type LeaderboardEntry struct {
	RestaurantID int64   `json:"restaurant_id"`
	Name         string  `json:"name"`
	Revenue      float64 `json:"revenue"`
	Orphan       bool    `json:"orphan,omitempty"`
}

type FacetsResponse struct {
	Cuisines  []string `json:"cuisines"`
	Locations []string `json:"locations"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime,omitempty"`
	Time    string `json:"time,omitempty"`
	Version string `json:"version,omitempty"`
	Error   string `json:"error,omitempty"`
}
