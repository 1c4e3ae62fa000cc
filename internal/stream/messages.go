package stream

import "marketgateway/internal/model"

// Client → server frame. Action is "subscribe" or "unsubscribe".
type clientMessage struct {
	Action  string   `json:"action"`
	Symbols []string `json:"symbols"`
}

// Server → client frame. Exactly one payload field is set per type:
// Symbols for subscription acks, Data for quote pushes, Message for
// errors.
type serverMessage struct {
	Type    string       `json:"type"`
	Symbols []string     `json:"symbols,omitempty"`
	Data    *model.Quote `json:"data,omitempty"`
	Message string       `json:"message,omitempty"`
}

const (
	actionSubscribe   = "subscribe"
	actionUnsubscribe = "unsubscribe"

	typeSubscribed   = "subscribed"
	typeUnsubscribed = "unsubscribed"
	typeQuote        = "quote"
	typeError        = "error"
)
