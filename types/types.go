package types

import "strconv"

type UserID int64

func (id UserID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

type EventKind string

const (
	EventMessage  EventKind = "message"
	EventCallback EventKind = "callback"
)

// Event is the transport-neutral shape of one inbound update. Exactly one of
// Message and Callback is set.
type Event struct {
	Message  *MessageEvent
	Callback *CallbackEvent
}

func (e Event) Kind() EventKind {
	if e.Callback != nil {
		return EventCallback
	}
	return EventMessage
}

func (e Event) UserID() UserID {
	switch {
	case e.Message != nil:
		return e.Message.UserID
	case e.Callback != nil:
		return e.Callback.UserID
	}
	return 0
}

type MessageEvent struct {
	ChatID    int64
	UserID    UserID
	Text      string
	Username  string
	FirstName string
	LastName  string
}

type CallbackEvent struct {
	CallbackID string
	ChatID     int64
	UserID     UserID
	MessageID  int
	Data       string
}

type Button struct {
	Text         string
	CallbackData string
	URL          string
	WebAppURL    string
}

type Keyboard [][]Button

// Outgoing is a text payload for send or edit.
type Outgoing struct {
	Text      string
	ParseMode string
	Keyboard  Keyboard
}

type Media struct {
	SourceURL string
	Title     string
	Caption   string
	Keyboard  Keyboard
}

type SearchResult struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type AudioInfo struct {
	Title         string
	ThumbnailURL  string
	DurationLabel string
	DownloadURL   string
}
