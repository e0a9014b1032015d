package webhook

type (
	Payload struct {
		Destination string  `json:"destination"`
		Events      []Event `json:"events"`
	}

	Event struct {
		Type       string   `json:"type"`
		Timestamp  int64    `json:"timestamp"`
		ReplyToken string   `json:"replyToken,omitempty"`
		Source     Source   `json:"source"`
		Message    *Message `json:"message,omitempty"`
	}

	Source struct {
		Type    string `json:"type"`
		UserID  string `json:"userId,omitempty"`
		GroupID string `json:"groupId,omitempty"`
		RoomID  string `json:"roomId,omitempty"`
	}

	Message struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Text string `json:"text,omitempty"`
	}
)

// ReplyTo is where replies for events from this source go: the group or room
// the message was posted in, else the user.
func (s Source) ReplyTo() string {
	switch {
	case s.GroupID != "":
		return s.GroupID
	case s.RoomID != "":
		return s.RoomID
	default:
		return s.UserID
	}
}

func (e Event) IsText() bool {
	return e.Type == "message" && e.Message != nil && e.Message.Type == "text"
}
