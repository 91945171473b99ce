package models

// Member maps a chat user to their team, one row of the Members worksheet.
type Member struct {
	UserID int64
	Name   string
	Team   string
}

// QueueRef locates the current queue summary message, stored as the single
// data row of the Queue worksheet.
type QueueRef struct {
	ChatID    int64
	MessageID int
}

// IsZero reports whether no summary message has been recorded.
func (q QueueRef) IsZero() bool { return q.ChatID == 0 && q.MessageID == 0 }
