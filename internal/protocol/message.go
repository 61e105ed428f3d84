// Package protocol defines the JSON envelopes exchanged over the
// session websocket and the closed sets of message kinds per direction.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"venue/internal/domain"
)

var ErrMalformedMessage = errors.New("malformed message")

// ActionKind enumerates every inbound message kind the hub recognizes.
type ActionKind string

const (
	ActionCreateRoom      ActionKind = "CreateRoom"
	ActionUpdateName      ActionKind = "UpdateName"
	ActionEnterRoom       ActionKind = "EnterRoom"
	ActionSkin            ActionKind = "Skin"
	ActionRequestSkin     ActionKind = "RequestSkin"
	ActionRequestRoom     ActionKind = "RequestRoom"
	ActionRequestArmchair ActionKind = "RequestArmchair"
	ActionPositionUpdate  ActionKind = "PositionUpdate"
	ActionUpdateUser      ActionKind = "UpdateUser"
	ActionOffer           ActionKind = "webrtc-offer"
	ActionAnswer          ActionKind = "webrtc-answer"
	ActionCandidate       ActionKind = "ice-candidate"
)

// IsSignaling reports whether the kind is a peer-negotiation passthrough.
func (k ActionKind) IsSignaling() bool {
	return k == ActionOffer || k == ActionAnswer || k == ActionCandidate
}

// Action is the inbound envelope. Actor is client-supplied and not
// trusted; the dispatcher uses the connection's own id instead.
type Action struct {
	Type       string            `json:"type"`
	Actor      string            `json:"actor"`
	SDP        string            `json:"sdp"`
	Parameters map[string]string `json:"parameters"`
}

// Kind returns the typed kind of the action. Unrecognized types map to
// a kind no dispatcher case matches, so they fall through to ignore.
func (a *Action) Kind() ActionKind { return ActionKind(a.Type) }

// Param is a nil-safe parameter lookup.
func (a *Action) Param(key string) string {
	if a.Parameters == nil {
		return ""
	}
	return a.Parameters[key]
}

// ParseAction decodes an inbound envelope.
func ParseAction(data []byte) (*Action, error) {
	var a Action
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return &a, nil
}

// ResponseType enumerates every outbound message type.
type ResponseType string

const (
	TypeWelcome     ResponseType = "Welcome"
	TypeExpState    ResponseType = "ExpState"
	TypeNewRoom     ResponseType = "NewRoom"
	TypeRoom        ResponseType = "Room"
	TypeArmchairID  ResponseType = "ArmchairID"
	TypeSkin        ResponseType = "Skin"
	TypeChangeScene ResponseType = "ChangeScene"
	TypeDeleteUser  ResponseType = "DeleteUser"
	TypeUpdateUser  ResponseType = "UpdateUser"
)

// Response is the outbound envelope. Every response carries the current
// session snapshot alongside its type-specific parameters.
type Response struct {
	Type       ResponseType      `json:"type"`
	ExpState   *domain.Snapshot  `json:"expState"`
	Parameters map[string]string `json:"parameters"`
}

// Encode marshals the response for the wire.
func (r *Response) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// SignalEnvelope wraps a relayed negotiation payload. Data is carried
// verbatim; the hub never inspects it.
type SignalEnvelope struct {
	Kind ActionKind `json:"kind"`
	From string     `json:"from"`
	Data string     `json:"data"`
}

func (e *SignalEnvelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}
