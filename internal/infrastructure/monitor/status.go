package monitor

import "time"

type Status struct {
	Remote    bool      `json:"remote"`
	LastCheck time.Time `json:"last_check"`
}
