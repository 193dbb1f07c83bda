package hub

import "time"

// MessageType identifies a websocket frame.
type MessageType string

const (
	MessageTypeBetPlaced   MessageType = "bet_placed"
	MessageTypeBetSettled  MessageType = "bet_settled"
	MessageTypeSubscribe   MessageType = "subscribe"
	MessageTypeUnsubscribe MessageType = "unsubscribe"
	MessageTypeHeartbeat   MessageType = "heartbeat"
	MessageTypeError       MessageType = "error"
)

// ServerMessage is sent from the hub to clients.
type ServerMessage struct {
	Type      MessageType `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ClientMessage is sent by clients to change their subscription.
type ClientMessage struct {
	Type   MessageType `json:"type"`
	Sports []string    `json:"sports,omitempty"`
}

// ErrorMessage is the payload of an error frame.
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
