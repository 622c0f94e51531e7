package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/interaction"
	"github.com/matzehuels/forcegraph/pkg/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Stream message types sent by the server.
const (
	MessageView   = "view"
	MessageError  = "error"
	MessageClosed = "closed"
)

// StreamMessage is one server-to-client message on a stream. Clients send
// bare interaction events.
type StreamMessage struct {
	Type    string        `json:"type"`
	Changed bool          `json:"changed,omitempty"`
	View    *session.View `json:"view,omitempty"`
	Error   *apiError     `json:"error,omitempty"`
}

// handleStream runs the frame loop of one session over a WebSocket. The
// loop ticks once per frame while the simulation is active, stops
// scheduling frames when it stops and resumes when an event reheats it.
// All writes happen on this goroutine; a reader goroutine forwards events.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "id", sess.ID, "err", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	events := make(chan inbound)
	readErrs := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go s.readEvents(conn, events, readErrs, done)

	wake, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	frame := time.NewTicker(s.cfg.FrameInterval)
	defer frame.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	send := func(m StreamMessage) bool {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(m); err != nil {
			s.logger.Debug("stream write failed", "id", sess.ID, "err", err)
			return false
		}
		return true
	}
	view := func(changed bool) StreamMessage {
		v := sess.View()
		return StreamMessage{Type: MessageView, Changed: changed, View: &v}
	}

	s.logger.Debug("stream opened", "id", sess.ID)
	defer s.logger.Debug("stream closed", "id", sess.ID)

	first := view(false)
	if !send(first) {
		return
	}
	var frames <-chan time.Time
	if first.View.Active {
		frames = frame.C
	}

	for {
		select {
		case <-ctx.Done():
			return

		case err := <-readErrs:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("stream read failed", "id", sess.ID, "err", err)
			}
			return

		case <-frames:
			v := sess.Tick(ctx, 1)
			if !send(StreamMessage{Type: MessageView, View: &v}) {
				return
			}
			if !v.Active {
				frames = nil
			}

		case <-sess.Done():
			send(StreamMessage{Type: MessageClosed})
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"),
				time.Now().Add(writeWait))
			return

		case <-wake:
			frames = frame.C

		case in := <-events:
			if in.err != nil {
				apiErr := toAPIError(in.err)
				if !send(StreamMessage{Type: MessageError, Error: &apiErr}) {
					return
				}
				continue
			}
			changed, err := sess.Handle(ctx, in.event)
			if err != nil {
				apiErr := toAPIError(err)
				if !send(StreamMessage{Type: MessageError, Error: &apiErr}) {
					return
				}
				continue
			}
			m := view(changed)
			if m.View.Active {
				frames = frame.C
			}
			if !send(m) {
				return
			}

		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// inbound is one decoded client message.
type inbound struct {
	event interaction.Event
	err   error
}

// readEvents decodes client messages until the connection fails or done is
// closed.
func (s *Server) readEvents(conn *websocket.Conn, events chan<- inbound, errs chan<- error, done <-chan struct{}) {
	conn.SetReadLimit(s.cfg.MaxBodyBytes)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			errs <- err
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		var in inbound
		if err := json.Unmarshal(data, &in.event); err != nil {
			in.err = errors.Wrap(errors.ErrCodeInvalidFormat, err, "malformed event")
		}
		select {
		case events <- in:
		case <-done:
			return
		}
	}
}
