package usage

import "time"

// Window is the length of one quota period.
const Window = 24 * time.Hour

// Usage is a client's analysis consumption for the current window.
type Usage struct {
	ClientID string    `json:"clientId"`
	Limit    int       `json:"limit"`
	Used     int       `json:"used"`
	ResetsAt time.Time `json:"resetsAt"`
}

// Remaining returns how many analyses are left in the window.
func (u Usage) Remaining() int {
	if u.Used >= u.Limit {
		return 0
	}
	return u.Limit - u.Used
}

func freshUsage(clientID string, limit int, now time.Time) Usage {
	return Usage{ClientID: clientID, Limit: limit, ResetsAt: now.Add(Window)}
}

func expired(u Usage, now time.Time) bool {
	return !now.Before(u.ResetsAt)
}
