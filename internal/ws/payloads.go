package ws

// client → server
type InboundMessage struct {
	Type string `json:"type"`
}

// server → client
type ReadyPayload struct {
	Type      string `json:"type"`
	ProjectID string `json:"project_id"`
}

type ErrorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
