package models

import "github.com/shopspring/decimal"

// DailyIndicators summarizes a single daily record.
type DailyIndicators struct {
	Date         string          `json:"date"`
	EggsProduced int64           `json:"eggsProduced"`
	EggsSold     int64           `json:"eggsSold"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	NetProfit    decimal.Decimal `json:"netProfit"`
}

// WeeklyIndicators rolls up the daily indicators of a date window.
// DayCount is the number of days that actually have a record.
type WeeklyIndicators struct {
	From              string            `json:"from"`
	To                string            `json:"to"`
	DayCount          int               `json:"dayCount"`
	AverageProduction int64             `json:"averageProduction"`
	AverageProfit     decimal.Decimal   `json:"averageProfit"`
	TotalRevenue      decimal.Decimal   `json:"totalRevenue"`
	TotalExpense      decimal.Decimal   `json:"totalExpense"`
	Days              []DailyIndicators `json:"records"`
}
