package room

// Frame type discriminators. Inbound types the room does not recognize are
// logged and ignored so older servers tolerate newer clients.
const (
	TypeConnected   = "connected"
	TypeViewerCount = "viewer_count"
	TypeChat        = "chat"
	TypePing        = "ping"
	TypePong        = "pong"
)

type connectedFrame struct {
	Type        string `json:"type"`
	SessionID   string `json:"sessionId"`
	ViewerCount int    `json:"viewerCount"`
}

type viewerCountFrame struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type chatFrame struct {
	Type      string `json:"type"`
	From      string `json:"from"`
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

type pongFrame struct {
	Type string `json:"type"`
}

// inboundEnvelope is the tagged union read off the socket. Only the fields
// of known variants are declared; anything else rides in Type and is
// dispatched to the unknown branch.
type inboundEnvelope struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// PresenceEvent mirrors heartbeat registry changes into the room.
type PresenceEvent string

const (
	ViewerJoin  PresenceEvent = "viewer_join"
	ViewerLeave PresenceEvent = "viewer_leave"
)
