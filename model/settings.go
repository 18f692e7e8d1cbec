package model

// Setting holds a member's notification preferences: the times of day at which dose
// reminders should fire, and whether dispatched notifications should also be forwarded
// by email. Times are stored as "HH:MM" strings in the member's local schedule.
type Setting struct {
	ID           string
	MemberID     int64
	Morning      string
	Lunch        string
	Dinner       string
	Sleep        string
	Email        bool
	EmailAddress string
}
