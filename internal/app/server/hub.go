package server

import (
	"encoding/json"
	"sync"
)

// wsPeer serializes frame writes to a single websocket connection.
type wsPeer struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

func newWSPeer(encoder *json.Encoder) *wsPeer {
	return &wsPeer{encoder: encoder}
}

func (p *wsPeer) writeFrame(frame wsFrame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encoder.Encode(frame)
}

// wsClient tracks the room a connection is currently subscribed to.
type wsClient struct {
	peer *wsPeer

	mu   sync.Mutex
	room *simRoom
}

func newWSClient(peer *wsPeer) *wsClient {
	return &wsClient{peer: peer}
}

// setRoom records the new subscription and returns the previous room, if any.
func (c *wsClient) setRoom(room *simRoom) *simRoom {
	c.mu.Lock()
	defer c.mu.Unlock()
	previous := c.room
	c.room = room
	return previous
}

func (c *wsClient) currentRoom() *simRoom {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

// sessionHub indexes broadcast rooms by session id.
type sessionHub struct {
	mu    sync.Mutex
	rooms map[string]*simRoom
}

func newSessionHub() *sessionHub {
	return &sessionHub{rooms: make(map[string]*simRoom)}
}

func (h *sessionHub) room(sessionID string) *simRoom {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[sessionID]
	if !ok {
		room = &simRoom{
			sessionID: sessionID,
			members:   make(map[*wsPeer]struct{}),
		}
		h.rooms[sessionID] = room
	}
	return room
}

// simRoom is the set of live subscribers for one session.
type simRoom struct {
	sessionID string

	mu      sync.Mutex
	members map[*wsPeer]struct{}
}

func (r *simRoom) join(peer *wsPeer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[peer] = struct{}{}
}

func (r *simRoom) leave(peer *wsPeer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, peer)
}

// peers returns a snapshot so broadcasts run without holding the room lock.
func (r *simRoom) peers() []*wsPeer {
	r.mu.Lock()
	defer r.mu.Unlock()
	peers := make([]*wsPeer, 0, len(r.members))
	for peer := range r.members {
		peers = append(peers, peer)
	}
	return peers
}
