package models

import "time"

type Vehicle struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Title     string    `json:"title"`
	Make      string    `json:"make"`
	Model     string    `json:"model"`
	Year      int       `json:"year"`
	DailyRate float64   `json:"daily_rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type VehicleSummary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  int    `json:"year"`
}
