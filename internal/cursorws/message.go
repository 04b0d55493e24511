package cursorws

import (
	"encoding/json"

	"github.com/pranavnadakkal/portfolio/internal/pointer"
	"github.com/pranavnadakkal/portfolio/internal/xerrors"
)

// inbound is a client message. Coordinates stay untyped until the tracker
// normalizes them.
type inbound struct {
	Type string `json:"type"`
	X    any    `json:"x"`
	Y    any    `json:"y"`
}

// outbound is the frame sent to the client.
type outbound struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Active bool    `json:"active"`
}

var signalByType = map[string]pointer.Signal{
	"move":  pointer.SignalPointerMove,
	"touch": pointer.SignalTouchMove,
	"enter": pointer.SignalPointerEnter,
	"leave": pointer.SignalPointerLeave,
}

var errUnknownType = xerrors.New("unknown message type")

// decode parses one client message into a pointer event.
func decode(data []byte) (pointer.Event, error) {
	var m inbound
	if err := json.Unmarshal(data, &m); err != nil {
		return pointer.Event{}, xerrors.Wrap(err, "decode cursor message")
	}
	sig, ok := signalByType[m.Type]
	if !ok {
		return pointer.Event{}, errUnknownType
	}
	return pointer.Event{Signal: sig, X: m.X, Y: m.Y}, nil
}

func encodeFrame(f pointer.Frame) outbound {
	return outbound{X: f.Follower.X, Y: f.Follower.Y, Active: f.Active}
}
