package ws

// UpdateEnvelope is the wire shape of an inbound update posted to the
// ingress endpoint. Exactly one of the payload fields should be set; Kind
// disambiguates which.
type UpdateEnvelope struct {
	Kind          string         `json:"kind"`
	Message       *WireMessage   `json:"message,omitempty"`
	CallbackQuery *WireCallback  `json:"callback_query,omitempty"`
	InlineQuery   *WireInline    `json:"inline_query,omitempty"`
}

// WireMessage mirrors update.Message with JSON tags; kept distinct from
// update.Message so the wire format can evolve independently of the
// scheduler's internal event types.
type WireMessage struct {
	ID     int64     `json:"id"`
	From   WireUser  `json:"from"`
	Chat   WireChat  `json:"chat"`
	Text   string    `json:"text"`
}

type WireUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type WireChat struct {
	ID int64 `json:"id"`
}

type WireCallback struct {
	ID      string       `json:"id"`
	From    WireUser     `json:"from"`
	Message *WireMessage `json:"message,omitempty"`
	Data    string       `json:"data"`
}

type WireInline struct {
	ID    string   `json:"id"`
	From  WireUser `json:"from"`
	Query string   `json:"query"`
}

// DiagnosticsMessageType names a message pushed to diagnostics subscribers.
type DiagnosticsMessageType string

const (
	MsgSnapshot DiagnosticsMessageType = "snapshot"
)

// DiagnosticsMessage envelopes every message sent to a diagnostics client.
type DiagnosticsMessage struct {
	Type    DiagnosticsMessageType `json:"type"`
	Payload interface{}            `json:"payload"`
}

// SnapshotPayload reports the scheduler's aggregate counters. Unlike the
// source's per-session delta feed, a coroutine session carries no
// client-visible state worth diffing, so diagnostics only ever exposes
// these counts.
type SnapshotPayload struct {
	Sessions int            `json:"sessions"`
	Ready    int            `json:"ready"`
	Routers  map[string]int `json:"routers"`
}
