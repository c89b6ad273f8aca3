/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Handlers are exercised directly: the run loop only serializes them,
// so calling them from a single test goroutine is equivalent.

func addTestClient(h *Hub, id string) *Client {
	c := &Client{
		send: make(chan any, 32),
		id:   id,
	}
	h.clients[id] = c
	return c
}

// received drains everything queued for a client so far.
func received(c *Client) []any {
	var msgs []any
	for {
		select {
		case m, ok := <-c.send:
			if !ok {
				return msgs
			}
			msgs = append(msgs, m)
		default:
			return msgs
		}
	}
}

func createTestRoom(t *testing.T, h *Hub, cfg *Config, host *Client, username string) string {
	t.Helper()

	h.handleCreateRoom(cfg, host, ClientMessage{Type: "createRoom", Username: username})

	msgs := received(host)
	require.Len(t, msgs, 1)

	created, ok := msgs[0].(RoomStateMessage)
	require.True(t, ok)
	require.Equal(t, "roomCreated", created.Type)

	return created.Code
}

func TestHandleCreateRoom(t *testing.T) {
	cfg := &Config{}
	h := newHub(newMemoryStore())

	host := addTestClient(h, "conn-a")

	h.handleCreateRoom(cfg, host, ClientMessage{Type: "createRoom", Username: "ana"})

	msgs := received(host)
	require.Len(t, msgs, 1)

	created, ok := msgs[0].(RoomStateMessage)
	require.True(t, ok)
	assert.Equal(t, "roomCreated", created.Type)
	require.Len(t, created.Players, 1)
	assert.Equal(t, "ana", created.Players[0].Username)

	room := h.store.Get(created.Code)
	require.NotNil(t, room)
	assert.Equal(t, "conn-a", room.HostID)
	assert.Equal(t, statusWaiting, room.Status)

	// Codes stay pairwise distinct across creations.
	seen := map[string]bool{created.Code: true}
	for i := 0; i < 50; i++ {
		code := createTestRoom(t, h, cfg, host, "ana")
		assert.False(t, seen[code])
		seen[code] = true
	}
}

func TestHandleJoinRoom(t *testing.T) {
	cfg := &Config{}
	h := newHub(newMemoryStore())

	host := addTestClient(h, "conn-a")
	joiner := addTestClient(h, "conn-b")

	code := createTestRoom(t, h, cfg, host, "ana")

	h.handleJoinRoom(cfg, joiner, ClientMessage{Type: "joinRoom", RoomCode: code, Username: "bruno"})

	joinerMsgs := received(joiner)
	require.Len(t, joinerMsgs, 2)

	joined, ok := joinerMsgs[0].(RoomStateMessage)
	require.True(t, ok)
	assert.Equal(t, "roomJoined", joined.Type)
	assert.Equal(t, code, joined.Code)
	require.Len(t, joined.Players, 2)
	assert.Equal(t, "bruno", joined.Players[1].Username)

	list, ok := joinerMsgs[1].(PlayersListMessage)
	require.True(t, ok)
	assert.Equal(t, "updatePlayersList", list.Type)

	// The whole room hears about the new membership, host included.
	hostMsgs := received(host)
	require.Len(t, hostMsgs, 1)
	hostList, ok := hostMsgs[0].(PlayersListMessage)
	require.True(t, ok)
	require.Len(t, hostList.Players, 2)
}

func TestHandleJoinRoomErrors(t *testing.T) {
	cfg := &Config{}
	h := newHub(newMemoryStore())

	host := addTestClient(h, "conn-a")
	joiner := addTestClient(h, "conn-b")

	code := createTestRoom(t, h, cfg, host, "ana")

	t.Run("unknown room", func(t *testing.T) {
		h.handleJoinRoom(cfg, joiner, ClientMessage{Type: "joinRoom", RoomCode: "NOPE99", Username: "bruno"})

		msgs := received(joiner)
		require.Len(t, msgs, 1)
		errMsg, ok := msgs[0].(SimpleMessage)
		require.True(t, ok)
		assert.Equal(t, "roomError", errMsg.Type)
	})

	t.Run("name taken", func(t *testing.T) {
		h.handleJoinRoom(cfg, joiner, ClientMessage{Type: "joinRoom", RoomCode: code, Username: "ana"})

		msgs := received(joiner)
		require.Len(t, msgs, 1)
		errMsg, ok := msgs[0].(SimpleMessage)
		require.True(t, ok)
		assert.Equal(t, "roomError", errMsg.Type)

		// Membership must be untouched.
		room := h.store.Get(code)
		require.Len(t, room.Players, 1)
		assert.Empty(t, received(host))
	})
}

func TestHandleReEnterRoom(t *testing.T) {
	cfg := &Config{}
	h := newHub(newMemoryStore())

	host := addTestClient(h, "conn-a")
	code := createTestRoom(t, h, cfg, host, "ana")
	room := h.store.Get(code)

	t.Run("known name rebinds without growing", func(t *testing.T) {
		reborn := addTestClient(h, "conn-a2")

		h.handleReEnterRoom(cfg, reborn, ClientMessage{Type: "reEnterRoom", RoomCode: code, Username: "ana"})

		require.Len(t, room.Players, 1)
		assert.Equal(t, "conn-a2", room.Players[0].ID)

		msgs := received(reborn)
		require.Len(t, msgs, 1)
		list, ok := msgs[0].(PlayersListMessage)
		require.True(t, ok)
		assert.Equal(t, "updatePlayersList", list.Type)

		// Host authority stays put without a claim.
		assert.Equal(t, "conn-a", room.HostID)
	})

	t.Run("host claim reassigns host", func(t *testing.T) {
		reborn := addTestClient(h, "conn-a3")

		h.handleReEnterRoom(cfg, reborn, ClientMessage{Type: "reEnterRoom", RoomCode: code, Username: "ana", IsHost: true})

		assert.Equal(t, "conn-a3", room.HostID)
		assert.Equal(t, "conn-a3", room.Players[0].ID)
	})

	t.Run("novel name gets a fresh seat", func(t *testing.T) {
		late := addTestClient(h, "conn-l")

		h.handleReEnterRoom(cfg, late, ClientMessage{Type: "reEnterRoom", RoomCode: code, Username: "lucia"})

		require.Len(t, room.Players, 2)
		assert.Equal(t, "lucia", room.Players[1].Username)
	})

	t.Run("unknown room errors", func(t *testing.T) {
		lost := addTestClient(h, "conn-x")

		h.handleReEnterRoom(cfg, lost, ClientMessage{Type: "reEnterRoom", RoomCode: "NOPE99", Username: "ana"})

		msgs := received(lost)
		require.Len(t, msgs, 1)
		errMsg, ok := msgs[0].(SimpleMessage)
		require.True(t, ok)
		assert.Equal(t, "roomError", errMsg.Type)
	})
}

func TestHandleStartGame(t *testing.T) {
	cfg := &Config{}
	h := newHub(newMemoryStore())

	host := addTestClient(h, "conn-a")
	joiner := addTestClient(h, "conn-b")

	code := createTestRoom(t, h, cfg, host, "ana")
	h.handleJoinRoom(cfg, joiner, ClientMessage{Type: "joinRoom", RoomCode: code, Username: "bruno"})
	received(host)
	received(joiner)

	room := h.store.Get(code)

	t.Run("non-host is refused", func(t *testing.T) {
		h.handleStartGame(cfg, joiner, ClientMessage{Type: "startGame", RoomCode: code, GameType: "carta-alta"})

		msgs := received(joiner)
		require.Len(t, msgs, 1)
		errMsg, ok := msgs[0].(SimpleMessage)
		require.True(t, ok)
		assert.Equal(t, "roomError", errMsg.Type)

		assert.Equal(t, statusWaiting, room.Status)
		assert.Empty(t, received(host))
	})

	t.Run("host starts the game", func(t *testing.T) {
		h.handleStartGame(cfg, host, ClientMessage{Type: "startGame", RoomCode: code, GameType: "carta-alta"})

		assert.Equal(t, statusInProgress, room.Status)
		assert.Equal(t, "carta-alta", room.CurrentGame)

		for _, c := range []*Client{host, joiner} {
			msgs := received(c)
			require.Len(t, msgs, 1)
			redirect, ok := msgs[0].(RedirectToGameMessage)
			require.True(t, ok)
			assert.Equal(t, "redirectToGame", redirect.Type)
			assert.Equal(t, "carta-alta", redirect.GameType)
		}
	})
}

func TestHandleEndGame(t *testing.T) {
	cfg := &Config{}
	h := newHub(newMemoryStore())

	host := addTestClient(h, "conn-a")
	joiner := addTestClient(h, "conn-b")

	code := createTestRoom(t, h, cfg, host, "ana")
	h.handleJoinRoom(cfg, joiner, ClientMessage{Type: "joinRoom", RoomCode: code, Username: "bruno"})
	h.handleStartGame(cfg, host, ClientMessage{Type: "startGame", RoomCode: code, GameType: "carta-alta"})
	received(host)
	received(joiner)

	room := h.store.Get(code)

	t.Run("non-host is silently ignored", func(t *testing.T) {
		h.handleEndGame(cfg, joiner, ClientMessage{Type: "hostEndingGame", RoomCode: code})

		assert.Equal(t, statusInProgress, room.Status)
		assert.Empty(t, received(host))
		assert.Empty(t, received(joiner))
	})

	t.Run("unknown room is silently ignored", func(t *testing.T) {
		h.handleEndGame(cfg, host, ClientMessage{Type: "hostEndingGame", RoomCode: "NOPE99"})

		assert.Empty(t, received(host))
	})

	t.Run("host returns everyone else to the lobby", func(t *testing.T) {
		h.handleEndGame(cfg, host, ClientMessage{Type: "hostEndingGame", RoomCode: code})

		assert.Equal(t, statusWaiting, room.Status)
		assert.Empty(t, room.CurrentGame)

		// The host navigates itself and hears nothing.
		assert.Empty(t, received(host))

		msgs := received(joiner)
		require.Len(t, msgs, 1)
		redirect, ok := msgs[0].(RedirectToLobbyMessage)
		require.True(t, ok)
		assert.Equal(t, "redirectToLobby", redirect.Type)
		assert.Equal(t, code, redirect.RoomCode)
	})
}

func TestHandleDisconnect(t *testing.T) {
	cfg := &Config{}
	h := newHub(newMemoryStore())

	host := addTestClient(h, "conn-a")
	second := addTestClient(h, "conn-b")
	third := addTestClient(h, "conn-c")

	code := createTestRoom(t, h, cfg, host, "ana")
	h.handleJoinRoom(cfg, second, ClientMessage{Type: "joinRoom", RoomCode: code, Username: "bruno"})
	h.handleJoinRoom(cfg, third, ClientMessage{Type: "joinRoom", RoomCode: code, Username: "carla"})
	received(host)
	received(second)
	received(third)

	room := h.store.Get(code)

	t.Run("non-host departure changes nothing", func(t *testing.T) {
		h.handleDisconnect(cfg, "conn-c")

		assert.Equal(t, "conn-a", room.HostID)
		require.Len(t, room.Players, 3)
		assert.Empty(t, received(host))
		assert.Empty(t, received(second))
	})

	t.Run("host departure promotes first remaining seat", func(t *testing.T) {
		h.handleDisconnect(cfg, "conn-a")

		assert.Equal(t, "conn-b", room.HostID)
		require.Len(t, room.Players, 3)

		msgs := received(second)
		require.Len(t, msgs, 1)
		notice, ok := msgs[0].(SimpleMessage)
		require.True(t, ok)
		assert.Equal(t, "newHost", notice.Type)

		// Only the promoted participant is told.
		assert.Empty(t, received(third))
	})

	t.Run("last connection leaving keeps the room", func(t *testing.T) {
		solo := addTestClient(h, "conn-s")
		soloCode := createTestRoom(t, h, cfg, solo, "sole")

		h.handleDisconnect(cfg, "conn-s")

		soloRoom := h.store.Get(soloCode)
		require.NotNil(t, soloRoom)
		assert.Equal(t, "conn-s", soloRoom.HostID)
	})
}

func TestHandleStartRound(t *testing.T) {
	cfg := &Config{}
	h := newHub(newMemoryStore())

	host := addTestClient(h, "conn-a")
	code := createTestRoom(t, h, cfg, host, "ana")

	t.Run("not enough players", func(t *testing.T) {
		h.handleStartRound(cfg, host, ClientMessage{Type: "startCartaAltaRound", RoomCode: code})

		msgs := received(host)
		require.Len(t, msgs, 1)
		errMsg, ok := msgs[0].(SimpleMessage)
		require.True(t, ok)
		assert.Equal(t, "gameError", errMsg.Type)
	})

	joiner := addTestClient(h, "conn-b")
	h.handleJoinRoom(cfg, joiner, ClientMessage{Type: "joinRoom", RoomCode: code, Username: "bruno"})
	received(host)
	received(joiner)

	t.Run("non-host is refused", func(t *testing.T) {
		h.handleStartRound(cfg, joiner, ClientMessage{Type: "startCartaAltaRound", RoomCode: code})

		msgs := received(joiner)
		require.Len(t, msgs, 1)
		errMsg, ok := msgs[0].(SimpleMessage)
		require.True(t, ok)
		assert.Equal(t, "gameError", errMsg.Type)
		assert.Empty(t, received(host))
	})

	t.Run("forced deal resolves and broadcasts", func(t *testing.T) {
		h.deal = scriptedDeal(
			card("2", 2, "♣"),
			card("K", 13, "♦"),
		)

		h.handleStartRound(cfg, host, ClientMessage{Type: "startCartaAltaRound", RoomCode: code})

		for _, c := range []*Client{host, joiner} {
			msgs := received(c)
			require.Len(t, msgs, 2)

			table, ok := msgs[0].(CardTableMessage)
			require.True(t, ok)
			assert.Equal(t, "updateCardTable", table.Type)
			require.Len(t, table.Players, 2)
			assert.Equal(t, "ana", table.Players[0].Username)
			assert.Equal(t, "2♣", table.Players[0].Card.Symbol)
			assert.Equal(t, "bruno", table.Players[1].Username)
			assert.Equal(t, "K♦", table.Players[1].Card.Symbol)

			result, ok := msgs[1].(RoundResultMessage)
			require.True(t, ok)
			assert.Equal(t, "roundResultCartaAlta", result.Type)
			assert.Equal(t, "ana", result.Loser.Username)
			assert.Equal(t, 4, result.TakeAmount)
		}
	})
}

// Mirrors a full evening: create, join, start, deal, end.
func TestLobbyToRoundFlow(t *testing.T) {
	cfg := &Config{}
	h := newHub(newMemoryStore())

	host := addTestClient(h, "conn-a")
	joiner := addTestClient(h, "conn-b")

	code := createTestRoom(t, h, cfg, host, "ana")

	h.handleJoinRoom(cfg, joiner, ClientMessage{Type: "joinRoom", RoomCode: code, Username: "bruno"})
	received(host)
	received(joiner)

	// Both pages reload on navigation and re-bind their seats.
	hostGame := addTestClient(h, "conn-a2")
	joinerGame := addTestClient(h, "conn-b2")
	h.handleReEnterRoom(cfg, hostGame, ClientMessage{Type: "reEnterRoom", RoomCode: code, Username: "ana", IsHost: true})
	h.handleReEnterRoom(cfg, joinerGame, ClientMessage{Type: "reEnterRoom", RoomCode: code, Username: "bruno"})
	received(hostGame)
	received(joinerGame)

	room := h.store.Get(code)
	require.Len(t, room.Players, 2)
	assert.Equal(t, "conn-a2", room.HostID)

	h.handleStartGame(cfg, hostGame, ClientMessage{Type: "startGame", RoomCode: code, GameType: "carta-alta"})
	received(hostGame)
	received(joinerGame)
	assert.Equal(t, statusInProgress, room.Status)

	h.deal = scriptedDeal(
		card("7", 7, "♠"),
		card("3", 3, "♥"),
	)
	h.handleStartRound(cfg, hostGame, ClientMessage{Type: "startCartaAltaRound", RoomCode: code})

	msgs := received(joinerGame)
	require.Len(t, msgs, 2)
	result, ok := msgs[1].(RoundResultMessage)
	require.True(t, ok)
	assert.Equal(t, "bruno", result.Loser.Username)
	assert.Equal(t, 3, result.TakeAmount)
	received(hostGame)

	h.handleEndGame(cfg, hostGame, ClientMessage{Type: "hostEndingGame", RoomCode: code})
	assert.Equal(t, statusWaiting, room.Status)

	back := received(joinerGame)
	require.Len(t, back, 1)
	redirect, ok := back[0].(RedirectToLobbyMessage)
	require.True(t, ok)
	assert.Equal(t, code, redirect.RoomCode)
}
