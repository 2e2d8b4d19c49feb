package event

import (
	"encoding/json"
	"errors"
	"strconv"
)

// Default websocket endpoint of the event streaming service.
const DefaultEndpoint = "wss://push.planetside2.com/streaming"

// ErrUnknownFrame is returned by ParseFrame for messages that match
// none of the known frame shapes.
var ErrUnknownFrame = errors.New("unknown event stream frame")

// Subscription describes the events to receive from the stream.
//
// Characters and Worlds accept IDs or the literal "all". By default a
// subscription matches events concerning any listed character or any
// listed world; set LogicalAnd to only receive events matching both.
type Subscription struct {
	Characters []string
	Worlds     []string
	EventNames []string
	LogicalAnd bool
}

// commandMessage is the wire shape of outgoing stream commands.
type commandMessage struct {
	Service    string   `json:"service"`
	Action     string   `json:"action"`
	Characters []string `json:"characters,omitempty"`
	Worlds     []string `json:"worlds,omitempty"`
	EventNames []string `json:"eventNames,omitempty"`
	LogicalAnd *bool    `json:"logicalAndCharactersWithWorlds,omitempty"`
	All        string   `json:"all,omitempty"`
}

func subscribeMessage(sub Subscription) commandMessage {
	msg := commandMessage{
		Service:    "event",
		Action:     "subscribe",
		Characters: sub.Characters,
		Worlds:     sub.Worlds,
		EventNames: sub.EventNames,
	}
	if sub.LogicalAnd {
		logicalAnd := true
		msg.LogicalAnd = &logicalAnd
	}
	return msg
}

func clearAllMessage() commandMessage {
	return commandMessage{Service: "event", Action: "clearSubscribe", All: "true"}
}

// Frame is a sealed interface over the message types the stream
// sends. Only the types in this package implement it.
type Frame interface {
	essFrame()
}

// ServiceMessage carries a single game event. The payload keys depend
// on the event named by its "event_name" entry.
type ServiceMessage struct {
	Payload map[string]any
}

func (ServiceMessage) essFrame() {}

// EventName returns the payload's event name, or an empty string.
func (m ServiceMessage) EventName() string {
	name, _ := m.Payload["event_name"].(string)
	return name
}

// Heartbeat reports the per-endpoint online status the stream sends
// roughly every 30 seconds.
type Heartbeat struct {
	Online map[string]bool
}

func (Heartbeat) essFrame() {}

// ServiceStateChanged signals an endpoint going up or down.
type ServiceStateChanged struct {
	Detail string
	Online bool
}

func (ServiceStateChanged) essFrame() {}

// ConnectionStateChanged signals the state of this client's own
// connection.
type ConnectionStateChanged struct {
	Connected bool
}

func (ConnectionStateChanged) essFrame() {}

// SubscriptionEcho mirrors the subscription state after a subscribe
// or clear command.
type SubscriptionEcho struct {
	Subscription map[string]any
}

func (SubscriptionEcho) essFrame() {}

// ParseFrame decodes a raw websocket message into a typed frame.
// Help text and other unrecognised messages fail with
// ErrUnknownFrame.
func ParseFrame(data []byte) (Frame, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if sub, ok := raw["subscription"].(map[string]any); ok {
		return SubscriptionEcho{Subscription: sub}, nil
	}
	switch raw["type"] {
	case "serviceMessage":
		payload, ok := raw["payload"].(map[string]any)
		if !ok {
			return nil, ErrUnknownFrame
		}
		return ServiceMessage{Payload: payload}, nil
	case "heartbeat":
		online := make(map[string]bool)
		if detail, ok := raw["online"].(map[string]any); ok {
			for key, value := range detail {
				online[key] = parseWireBool(value)
			}
		}
		return Heartbeat{Online: online}, nil
	case "serviceStateChanged":
		detail, _ := raw["detail"].(string)
		return ServiceStateChanged{
			Detail: detail,
			Online: parseWireBool(raw["online"]),
		}, nil
	case "connectionStateChanged":
		return ConnectionStateChanged{
			Connected: parseWireBool(raw["connected"]),
		}, nil
	}
	return nil, ErrUnknownFrame
}

// parseWireBool handles the stream's habit of sending booleans as
// strings.
func parseWireBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	default:
		return false
	}
}
