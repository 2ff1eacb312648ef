package models

import "time"

type Team struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

type TeamSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type DriverProfile struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Discipline  string    `json:"discipline"`
	CreatedAt   time.Time `json:"created_at"`
}

type DriverSummary struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	Discipline  string `json:"discipline"`
}
