package domain

const WsEventSessionEnded = "session.ended"

type WsServerEvent struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}
