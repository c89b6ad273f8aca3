/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"crypto/rand"
	"sync"
	"time"
)

const roomCodeLength = 6

type roomStatus string

const (
	statusWaiting    roomStatus = "waiting"
	statusInProgress roomStatus = "in-progress"
)

// Participant is one seat in a room. ID is the websocket connection
// currently bound to the seat and is rewritten on every re-entry;
// Username is the stable key a reconnecting client re-binds with.
type Participant struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Room groups the participants of one session. Players keeps join
// order, which also fixes deal order and host succession.
type Room struct {
	Code        string
	HostID      string
	Players     []*Participant
	Status      roomStatus
	CurrentGame string

	lastActive time.Time
}

func newRoom(code string) *Room {
	return &Room{
		Code:       code,
		Status:     statusWaiting,
		lastActive: time.Now(),
	}
}

// participant returns the seat with the given username, or nil.
func (r *Room) participant(username string) *Participant {
	for _, p := range r.Players {
		if p.Username == username {
			return p
		}
	}
	return nil
}

// addPlayer appends a new seat. Callers enforce name uniqueness first.
func (r *Room) addPlayer(connID, username string) *Participant {
	p := &Participant{
		ID:       connID,
		Username: username,
	}
	r.Players = append(r.Players, p)
	return p
}

// firstRemaining returns the first seat in join order not bound to
// connID, used for host succession.
func (r *Room) firstRemaining(connID string) *Participant {
	for _, p := range r.Players {
		if p.ID != connID {
			return p
		}
	}
	return nil
}

func (r *Room) touch() {
	r.lastActive = time.Now()
}

// join validates name uniqueness against the current roster and
// appends a new seat.
func (r *Room) join(connID, username string) error {
	if r.participant(username) != nil {
		return errNameTaken
	}
	r.addPlayer(connID, username)
	r.touch()
	return nil
}

// reEnter re-binds a known username to a fresh connection, or seats an
// unknown one rather than erroring, so late joiners are never locked
// out. A host claim is honored unconditionally.
func (r *Room) reEnter(connID, username string, claimsHost bool) {
	if p := r.participant(username); p != nil {
		p.ID = connID
	} else {
		r.addPlayer(connID, username)
	}

	if claimsHost {
		r.HostID = connID
	}

	r.touch()
}

// start transitions the room to in-progress under host authority.
func (r *Room) start(connID, gameType string) error {
	if r.HostID != connID {
		return errNotHost
	}

	r.Status = statusInProgress
	r.CurrentGame = gameType
	r.touch()
	return nil
}

// end resets the room to waiting. Host-only, but a refusal is not an
// error: non-host attempts are dropped without a reply.
func (r *Room) end(connID string) bool {
	if r.HostID != connID {
		return false
	}

	r.Status = statusWaiting
	r.CurrentGame = ""
	r.touch()
	return true
}

// RoomStore is the registry of live rooms. The hub owns the only
// writer; HTTP handlers (QR codes, page guards) read concurrently.
type RoomStore interface {
	Get(code string) *Room
	Create(room *Room)
	Each(fn func(room *Room))
	Reap(cutoff time.Time) []string
}

type memoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		rooms: make(map[string]*Room),
	}
}

func (s *memoryStore) Get(code string) *Room {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.rooms[code]
}

func (s *memoryStore) Create(room *Room) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rooms[room.Code] = room
}

func (s *memoryStore) Each(fn func(room *Room)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, room := range s.rooms {
		fn(room)
	}
}

// Reap removes rooms idle since before cutoff and returns their codes.
func (s *memoryStore) Reap(cutoff time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var reaped []string
	for code, room := range s.rooms {
		if room.lastActive.Before(cutoff) {
			delete(s.rooms, code)
			reaped = append(reaped, code)
		}
	}
	return reaped
}

// newRoomCode generates a crypto-random room code and ensures it
// doesn't collide with an existing room.
func newRoomCode(store RoomStore) string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	for {
		buf := make([]byte, roomCodeLength)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, roomCodeLength)
		for i := range out {
			out[i] = letters[int(buf[i])%len(letters)]
		}
		code := string(out)

		if store.Get(code) == nil {
			return code
		}
	}
}
