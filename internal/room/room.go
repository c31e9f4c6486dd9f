// Package room coordinates live socket sessions and out-of-band heartbeat
// members per channel, producing one consistent viewer count.
package room

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/livegate/livegate/internal/domain"
)

// Conn is the transport endpoint a room fans out to.
// Owned by the adapter; the room never closes it.
type Conn interface {
	TrySend(data []byte) error
}

type session struct {
	conn Conn
	role domain.SessionRole
	name string
}

// Room holds the state of one channel. Every operation holds the mutex for
// its full duration, so operations on one room never interleave; different
// rooms are fully independent.
type Room struct {
	name domain.ChannelName

	mu        sync.Mutex
	sessions  map[domain.SessionID]*session
	outOfBand map[domain.ViewerID]struct{}

	now func() time.Time
}

func New(name domain.ChannelName) *Room {
	return &Room{
		name:      name,
		sessions:  make(map[domain.SessionID]*session),
		outOfBand: make(map[domain.ViewerID]struct{}),
		now:       time.Now,
	}
}

func (r *Room) Name() domain.ChannelName { return r.name }

// Upgrade registers a new socket session, sends it the initial snapshot and
// rebroadcasts the viewer count to everyone, the new session included.
func (r *Room) Upgrade(conn Conn, role domain.SessionRole, displayName string) domain.SessionID {
	sid := domain.SessionID(uuid.NewString())

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = &session{conn: conn, role: role, name: displayName}
	log.Info().Str("module", "room").Str("channel", string(r.name)).Str("sid", string(sid)).Str("role", string(role)).Msg("session upgraded")

	r.sendTo(conn, connectedFrame{Type: TypeConnected, SessionID: string(sid), ViewerCount: r.countLocked()})
	r.broadcastCountLocked()
	return sid
}

// HandleMessage dispatches one inbound frame. Malformed input is dropped
// without disconnecting the session.
func (r *Room) HandleMessage(sid domain.SessionID, raw []byte) {
	var env inboundEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Debug().Err(err).Str("module", "room").Str("sid", string(sid)).Msg("dropping malformed frame")
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sid]
	if !ok {
		return
	}

	switch env.Type {
	case TypeChat:
		from := s.name
		if from == "" {
			from = domain.DefaultDisplayName
		}
		r.broadcastLocked(chatFrame{
			Type:      TypeChat,
			From:      from,
			Role:      string(s.role),
			Text:      env.Text,
			Timestamp: r.now().Unix(),
		})
	case TypePing:
		r.sendTo(s.conn, pongFrame{Type: TypePong})
	default:
		log.Debug().Str("module", "room").Str("type", env.Type).Msg("ignoring unknown frame type")
	}
}

// HandleClose removes the session and rebroadcasts the count.
// A second close for the same id is a no-op.
func (r *Room) HandleClose(sid domain.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sid]; !ok {
		return
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "room").Str("channel", string(r.name)).Str("sid", string(sid)).Msg("session closed")
	r.broadcastCountLocked()
}

// HandleError removes the session without a rebroadcast; the next close or
// notify settles the count.
func (r *Room) HandleError(sid domain.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sid)
}

// Notify mirrors a heartbeat join or leave into the out-of-band set. The
// set update is idempotent but the count is rebroadcast either way; clients
// only observe the count, not edge transitions.
func (r *Room) Notify(event PresenceEvent, viewerID domain.ViewerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch event {
	case ViewerJoin:
		r.outOfBand[viewerID] = struct{}{}
	case ViewerLeave:
		delete(r.outOfBand, viewerID)
	}
	r.broadcastCountLocked()
}

// Count is viewer-role sessions plus out-of-band members. Host sessions do
// not count.
func (r *Room) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countLocked()
}

func (r *Room) countLocked() int {
	n := len(r.outOfBand)
	for _, s := range r.sessions {
		if s.role == domain.RoleViewer {
			n++
		}
	}
	return n
}

func (r *Room) broadcastCountLocked() {
	r.broadcastLocked(viewerCountFrame{Type: TypeViewerCount, Count: r.countLocked()})
}

// broadcastLocked serializes once and best-effort delivers to every
// session. A failed send is never surfaced; the session's own close or
// error callback corrects the table later.
func (r *Room) broadcastLocked(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "room").Msg("marshal broadcast")
		return
	}
	for sid, s := range r.sessions {
		if err := s.conn.TrySend(data); err != nil {
			log.Debug().Err(err).Str("module", "room").Str("sid", string(sid)).Msg("dropped frame")
		}
	}
}

func (r *Room) sendTo(conn Conn, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "room").Msg("marshal frame")
		return
	}
	_ = conn.TrySend(data)
}
