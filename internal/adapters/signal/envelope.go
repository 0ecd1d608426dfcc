package signal

import (
	"encoding/json"
	"errors"

	"github.com/freeflow/signaling/internal/core"
)

var errMissingType = errors.New("missing type field")

// Envelope is one inbound message. Two client generations speak two
// shapes for the same logical message: flat fields at the top level, or a
// nested data object. Accessors resolve each field through an ordered
// fallback list, top-level first, then data.
type Envelope struct {
	Type       string          `json:"type"`
	ToUserID   string          `json:"toUserId"`
	FromUserID string          `json:"fromUserId"`
	UserID     string          `json:"userId"`
	UserName   string          `json:"userName"`
	RoomID     string          `json:"roomId"`
	RoomName   string          `json:"roomName"`
	Data       json.RawMessage `json:"data"`

	raw    core.Frame
	nested *dataFields
}

// dataFields covers every key any client generation puts under data.
type dataFields struct {
	TargetID   string `json:"targetId"`
	FromID     string `json:"fromId"`
	ToUserID   string `json:"toUserId"`
	FromUserID string `json:"fromUserId"`
	UserID     string `json:"userId"`
	UserName   string `json:"userName"`
	RoomID     string `json:"roomId"`
	RoomName   string `json:"roomName"`
	OwnerID    string `json:"ownerId"`
	OwnerName  string `json:"ownerName"`
}

func ParseEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.Type == "" {
		return nil, errMissingType
	}
	env.raw = core.Frame(data)
	return &env, nil
}

// Raw returns the original frame bytes, for verbatim forwarding.
func (e *Envelope) Raw() core.Frame { return e.raw }

func (e *Envelope) fields() *dataFields {
	if e.nested == nil {
		e.nested = &dataFields{}
		if len(e.Data) > 0 {
			// Best effort: a malformed data object just leaves every
			// fallback empty.
			_ = json.Unmarshal(e.Data, e.nested)
		}
	}
	return e.nested
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Target resolves the point-to-point destination:
// toUserId, then data.targetId, then data.toUserId.
func (e *Envelope) Target() string {
	d := e.fields()
	return firstNonEmpty(e.ToUserID, d.TargetID, d.ToUserID)
}

// Sender resolves the claimed sender:
// fromUserId, then data.fromId, then data.fromUserId.
func (e *Envelope) Sender() string {
	d := e.fields()
	return firstNonEmpty(e.FromUserID, d.FromID, d.FromUserID)
}

func (e *Envelope) Room() string {
	return firstNonEmpty(e.RoomID, e.fields().RoomID)
}

func (e *Envelope) RoomDisplayName() string {
	return firstNonEmpty(e.RoomName, e.fields().RoomName)
}

func (e *Envelope) User() string {
	return firstNonEmpty(e.UserID, e.fields().UserID)
}

func (e *Envelope) DisplayName() string {
	return firstNonEmpty(e.UserName, e.fields().UserName)
}

func (e *Envelope) Owner() string {
	return e.fields().OwnerID
}

func (e *Envelope) OwnerDisplayName() string {
	return e.fields().OwnerName
}
