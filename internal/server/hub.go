package server

import (
	"encoding/json"
	"errors"

	"github.com/fcelec/cablesize/internal/circuit"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// Error kinds reported to clients.
const (
	KindInvalid     = "invalid"
	KindOutOfRange  = "out-of-range"
	KindBadRequest  = "bad-request"
	KindOvercurrent = "overcurrent"
	KindOversection = "oversection"
)

// Reply is the message sent back for every request.
type Reply struct {
	Result *circuit.SizingResult `json:"result,omitempty"`
	Error  string                `json:"error,omitempty"`
	Kind   string                `json:"kind,omitempty"`
	Range  string                `json:"range,omitempty"`
}

// Hub sizes the requests of one connection and writes the replies in order.
// The reader owns requests and closes it when the peer stops sending.
type Hub struct {
	engine *circuit.Engine
	conn   *websocket.Conn
	// request
	requests chan []byte
	// response
	replies chan Reply
}

func NewHub(conn *websocket.Conn, engine *circuit.Engine) *Hub {
	return &Hub{
		engine:   engine,
		conn:     conn,
		requests: make(chan []byte, 10),
		replies:  make(chan Reply, 10),
	}
}

// handleRequest sizes requests in arrival order until requests is closed,
// then closes replies.
func (h *Hub) handleRequest() {
	defer close(h.replies)
	for data := range h.requests {
		h.replies <- h.size(data)
	}
}

// handleResponse writes replies in order until replies is closed. After the
// first write error the connection is closed and the remaining replies are
// discarded.
func (h *Hub) handleResponse(finished chan<- struct{}) {
	defer close(finished)
	for reply := range h.replies {
		if err := h.conn.WriteJSON(&reply); err != nil {
			log.WithError(err).Warn("write failed")
			h.conn.Close()
			break
		}
	}
	for range h.replies {
	}
}

func (h *Hub) size(data []byte) Reply {
	var spec circuit.CircuitSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return Reply{Error: err.Error(), Kind: KindBadRequest}
	}
	return NewReply(h.engine.Size(spec))
}

// NewReply builds the reply for a sizing outcome.
func NewReply(res *circuit.SizingResult, err error) Reply {
	if err == nil {
		return Reply{Result: res}
	}
	reply := Reply{Error: err.Error(), Kind: KindInvalid}
	var rerr *circuit.RangeError
	if errors.As(err, &rerr) {
		reply.Kind = KindOutOfRange
		switch rerr.Kind {
		case circuit.Overcurrent:
			reply.Range = KindOvercurrent
		case circuit.Oversection:
			reply.Range = KindOversection
		}
	}
	return reply
}
