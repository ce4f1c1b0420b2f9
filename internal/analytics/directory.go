package analytics

import (
	"cmp"
	"slices"

	"github.com/nulzo/resto-analytics/internal/store/model"
)

// DirectoryQuery is a validated directory request.
type DirectoryQuery struct {
	Filter model.RestaurantFilter
	SortBy string
	Order  string
	Page   int
	Limit  int
}

type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

type DirectoryPage struct {
	Data       []model.Restaurant `json:"data"`
	Pagination Pagination         `json:"pagination"`
}

var sortKeys = map[string]func(a, b model.Restaurant) int{
	"id":       func(a, b model.Restaurant) int { return cmp.Compare(a.ID, b.ID) },
	"_id":      func(a, b model.Restaurant) int { return cmp.Compare(a.ID, b.ID) },
	"name":     func(a, b model.Restaurant) int { return cmp.Compare(a.Name, b.Name) },
	"location": func(a, b model.Restaurant) int { return cmp.Compare(a.Location, b.Location) },
	"cuisine":  func(a, b model.Restaurant) int { return cmp.Compare(a.Cuisine, b.Cuisine) },
}

// Paginate sorts the matched restaurants and returns the requested page.
// Equal sort keys are ordered by id ascending in both directions. A page
// past the end yields an empty slice.
func Paginate(rows []model.Restaurant, q DirectoryQuery) DirectoryPage {
	compare := sortKeys[q.SortBy]
	if compare == nil {
		compare = sortKeys["id"]
	}
	desc := q.Order == "desc"

	sorted := slices.Clone(rows)
	slices.SortFunc(sorted, func(a, b model.Restaurant) int {
		c := compare(a, b)
		if desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	total := len(sorted)
	page := DirectoryPage{
		Data: []model.Restaurant{},
		Pagination: Pagination{
			Total: total,
			Page:  q.Page,
			Pages: (total + q.Limit - 1) / q.Limit,
		},
	}

	start := (q.Page - 1) * q.Limit
	if start < total {
		end := min(start+q.Limit, total)
		page.Data = sorted[start:end]
	}
	return page
}
