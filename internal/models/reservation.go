package models

import "time"

type Reservation struct {
	ID        int64     `json:"id"`
	VehicleID int64     `json:"vehicle_id"`
	RenterID  int64     `json:"renter_id"`
	OwnerID   int64     `json:"owner_id"`
	Status    string    `json:"status"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ReservationSummary struct {
	ID       int64     `json:"id"`
	Status   string    `json:"status"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}
