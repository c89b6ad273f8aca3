/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"time"
)

type inboundEvent struct {
	client *Client
	msg    ClientMessage
}

// Hub owns every live room and connection. All room state is mutated
// from the run loop only, one inbound event at a time; handlers never
// block, so each event completes before the next is picked up.
type Hub struct {
	store   RoomStore
	clients map[string]*Client // connection ID -> client

	register chan *Client
	unreg    chan *Client
	inbound  chan inboundEvent

	deal func() Card
}

func newHub(store RoomStore) *Hub {
	return &Hub{
		store:    store,
		clients:  make(map[string]*Client),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		inbound:  make(chan inboundEvent),
		deal:     randomCard,
	}
}

func (h *Hub) run(cfg *Config) {
	var reap <-chan time.Time
	if cfg.roomTimeout > 0 {
		ticker := time.NewTicker(cfg.roomTimeout / 2)
		defer ticker.Stop()
		reap = ticker.C
	}

	for {
		select {
		case c := <-h.register:
			h.clients[c.id] = c

		case c := <-h.unreg:
			if _, ok := h.clients[c.id]; ok {
				delete(h.clients, c.id)
				close(c.send)
			}
			h.handleDisconnect(cfg, c.id)

		case ev := <-h.inbound:
			h.dispatch(cfg, ev.client, ev.msg)

		case <-reap:
			cutoff := time.Now().Add(-cfg.roomTimeout)
			for _, code := range h.store.Reap(cutoff) {
				logf(cfg, "ROOMS: Reaped idle room %s", code)
			}
		}
	}
}

func (h *Hub) dispatch(cfg *Config, c *Client, msg ClientMessage) {
	switch msg.Type {
	case "createRoom":
		h.handleCreateRoom(cfg, c, msg)
	case "joinRoom":
		h.handleJoinRoom(cfg, c, msg)
	case "reEnterRoom":
		h.handleReEnterRoom(cfg, c, msg)
	case "startGame":
		h.handleStartGame(cfg, c, msg)
	case "hostEndingGame":
		h.handleEndGame(cfg, c, msg)
	case "startCartaAltaRound":
		h.handleStartRound(cfg, c, msg)
	default:
		// ignore unknown types
	}
}

// sendError reports a failure to the requester only. eventType is
// "roomError" for lobby operations and "gameError" for round ones.
func (h *Hub) sendError(c *Client, eventType string, err error) {
	h.send(c, SimpleMessage{
		Type:    eventType,
		Message: errorMessage(err),
	})
}

// send delivers to a single client, dropping the client if its buffer
// is full.
func (h *Hub) send(c *Client, msg any) {
	if _, ok := h.clients[c.id]; !ok {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(h.clients, c.id)
		close(c.send)
	}
}

// broadcast sends to every participant of a room with a live
// connection. Seats whose connection has gone away are skipped; they
// pick up current state on re-entry.
func (h *Hub) broadcast(room *Room, msg any) {
	h.broadcastExcept(room, "", msg)
}

func (h *Hub) broadcastExcept(room *Room, exceptID string, msg any) {
	for _, p := range room.Players {
		if p.ID == exceptID {
			continue
		}
		if c, ok := h.clients[p.ID]; ok {
			h.send(c, msg)
		}
	}
}

func (h *Hub) handleCreateRoom(cfg *Config, c *Client, msg ClientMessage) {
	code := newRoomCode(h.store)

	room := newRoom(code)
	room.addPlayer(c.id, msg.Username)
	room.HostID = c.id

	h.store.Create(room)

	logf(cfg, "ROOMS: %q created room %s", msg.Username, code)

	h.send(c, RoomStateMessage{
		Type:    "roomCreated",
		Code:    room.Code,
		Players: room.Players,
	})
}

func (h *Hub) handleJoinRoom(cfg *Config, c *Client, msg ClientMessage) {
	room := h.store.Get(msg.RoomCode)
	if room == nil {
		h.sendError(c, "roomError", errRoomNotFound)
		return
	}

	if err := room.join(c.id, msg.Username); err != nil {
		h.sendError(c, "roomError", err)
		return
	}

	logf(cfg, "ROOMS: %q joined room %s", msg.Username, room.Code)

	h.send(c, RoomStateMessage{
		Type:    "roomJoined",
		Code:    room.Code,
		Players: room.Players,
	})

	h.broadcast(room, PlayersListMessage{
		Type:    "updatePlayersList",
		Players: room.Players,
	})
}

// handleReEnterRoom re-binds a returning client to its seat after a
// page navigation or reload.
func (h *Hub) handleReEnterRoom(cfg *Config, c *Client, msg ClientMessage) {
	room := h.store.Get(msg.RoomCode)
	if room == nil {
		h.sendError(c, "roomError", errRoomNotFound)
		return
	}

	room.reEnter(c.id, msg.Username, msg.IsHost)

	logf(cfg, "ROOMS: %q re-entered room %s", msg.Username, room.Code)

	h.broadcast(room, PlayersListMessage{
		Type:    "updatePlayersList",
		Players: room.Players,
	})
}

func (h *Hub) handleStartGame(cfg *Config, c *Client, msg ClientMessage) {
	room := h.store.Get(msg.RoomCode)
	if room == nil {
		h.sendError(c, "roomError", errRoomNotFound)
		return
	}

	if err := room.start(c.id, msg.GameType); err != nil {
		h.sendError(c, "roomError", err)
		return
	}

	logf(cfg, "GAMES: Room %s starting game %q", room.Code, msg.GameType)

	h.broadcast(room, RedirectToGameMessage{
		Type:     "redirectToGame",
		GameType: msg.GameType,
	})
}

// handleEndGame is a silent no-op for unknown rooms and non-host
// requesters. The host navigates itself, so only everyone else is
// sent back to the lobby.
func (h *Hub) handleEndGame(cfg *Config, c *Client, msg ClientMessage) {
	room := h.store.Get(msg.RoomCode)
	if room == nil || !room.end(c.id) {
		return
	}

	logf(cfg, "GAMES: Room %s host ended the game", room.Code)

	h.broadcastExcept(room, c.id, RedirectToLobbyMessage{
		Type:     "redirectToLobby",
		RoomCode: room.Code,
	})
}

func (h *Hub) handleStartRound(cfg *Config, c *Client, msg ClientMessage) {
	room := h.store.Get(msg.RoomCode)
	if room == nil || room.HostID != c.id {
		h.sendError(c, "gameError", errNotHost)
		return
	}

	hands, result, err := resolveRound(room.Players, h.deal)
	if err != nil {
		h.sendError(c, "gameError", err)
		return
	}

	room.touch()

	logf(cfg, "GAMES: Room %s round lost by %q, takes %d", room.Code, result.Loser.Username, result.TakeAmount)

	h.broadcast(room, CardTableMessage{
		Type:    "updateCardTable",
		Players: hands,
	})

	h.broadcast(room, RoundResultMessage{
		Type:       "roundResultCartaAlta",
		Loser:      result.Loser,
		TakeAmount: result.TakeAmount,
	})
}

// handleDisconnect promotes a new host in any room the departing
// connection was hosting. Seats are not removed; a departed player's
// seat is reclaimed by re-entry under the same username, or never.
func (h *Hub) handleDisconnect(cfg *Config, connID string) {
	h.store.Each(func(room *Room) {
		if room.HostID != connID {
			return
		}

		next := room.firstRemaining(connID)
		if next == nil {
			return
		}

		room.HostID = next.ID

		logf(cfg, "ROOMS: %q promoted to host of room %s", next.Username, room.Code)

		if c, ok := h.clients[next.ID]; ok {
			h.send(c, SimpleMessage{
				Type:    "newHost",
				Message: "You are the new host.",
			})
		}
	})
}
