package planning

import "time"

// DayRecord is one planning session per user per calendar day.
type DayRecord struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	SessionDate      time.Time `json:"sessionDate"`
	MorningCompleted bool      `json:"morningCompleted"`
	CreatedAt        time.Time `json:"createdAt"`
}
