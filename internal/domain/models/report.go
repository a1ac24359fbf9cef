package models

import "time"

// WeeklyDigest is the scheduled summary produced for one user.
type WeeklyDigest struct {
	UserID      string
	FarmName    string
	Indicators  WeeklyIndicators
	GeneratedAt time.Time
}
