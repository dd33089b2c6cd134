package store

import "github.com/civiscope/civiscope/internal/model"

// Built-in dataset used when no CSV files exist yet. Positions are
// world units on a roughly 120x60 map.

func defaultZones() []*model.Zone {
	return []*model.Zone{
		{
			Name:     "Central Park",
			Pos:      model.Point{X: 30, Y: 14},
			Category: model.CategoryPark,
			Cost:     50,
			Impacts:  map[string]float64{"Environment": 5, "Recreation": 4, "Traffic": -1},
		},
		{
			Name:     "Riverside Housing",
			Pos:      model.Point{X: 12, Y: 22},
			Category: model.CategoryHousing,
			Cost:     120,
			Impacts:  map[string]float64{"Housing": 6, "Traffic": -2, "Environment": -1},
		},
		{
			Name:     "Metro Hub",
			Pos:      model.Point{X: 45, Y: 18},
			Category: model.CategoryTransport,
			Cost:     200,
			Impacts:  map[string]float64{"Traffic": 7, "Environment": 2, "Commerce": 3},
		},
		{
			Name:     "Northside School",
			Pos:      model.Point{X: 24, Y: 6},
			Category: model.CategoryEducation,
			Cost:     90,
			Impacts:  map[string]float64{"Education": 6, "Housing": 1},
		},
		{
			Name:     "City Hospital",
			Pos:      model.Point{X: 58, Y: 10},
			Category: model.CategoryHealth,
			Cost:     250,
			Impacts:  map[string]float64{"Health": 8, "Traffic": -2},
		},
		{
			Name:     "Market Square",
			Pos:      model.Point{X: 38, Y: 28},
			Category: model.CategoryCommercial,
			Cost:     75,
			Impacts:  map[string]float64{"Commerce": 5, "Recreation": 2, "Traffic": -3},
		},
		{
			Name:     "Harbor Docks",
			Pos:      model.Point{X: 70, Y: 34},
			Category: model.CategoryCommercial,
			Cost:     180,
			Impacts:  map[string]float64{"Commerce": 6, "Environment": -3},
		},
		{
			Name:     "Greenbelt Trail",
			Pos:      model.Point{X: 8, Y: 8},
			Category: model.CategoryPark,
			Cost:     25,
			Impacts:  map[string]float64{"Environment": 3, "Recreation": 3},
		},
	}
}

func defaultBudget() []model.BudgetItem {
	return []model.BudgetItem{
		{Name: "Parks & Recreation", Allocated: 400, Spent: 180, Category: model.CategoryPark},
		{Name: "Public Housing", Allocated: 900, Spent: 640, Category: model.CategoryHousing},
		{Name: "Transit Authority", Allocated: 1200, Spent: 1150, Category: model.CategoryTransport},
		{Name: "Schools", Allocated: 800, Spent: 520, Category: model.CategoryEducation},
		{Name: "Public Health", Allocated: 1100, Spent: 980, Category: model.CategoryHealth},
		{Name: "Small Business Fund", Allocated: 300, Spent: 310, Category: model.CategoryCommercial},
		{Name: "Contingency", Allocated: 150, Spent: 20, Category: model.CategoryOther},
	}
}
