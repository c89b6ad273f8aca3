/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

// Messages coming from clients
type ClientMessage struct {
	Type     string `json:"type"`               // "createRoom", "joinRoom", "reEnterRoom", "startGame", "hostEndingGame", "startCartaAltaRound"
	Username string `json:"username,omitempty"` // createRoom / joinRoom / reEnterRoom
	RoomCode string `json:"roomCode,omitempty"` // all but createRoom
	GameType string `json:"gameType,omitempty"` // startGame
	IsHost   bool   `json:"isHost,omitempty"`   // reEnterRoom host claim
}

// RoomStateMessage is sent to the creator on "roomCreated" and to the
// joiner on "roomJoined".
type RoomStateMessage struct {
	Type    string         `json:"type"`
	Code    string         `json:"code"`
	Players []*Participant `json:"players"`
}

// PlayersListMessage goes to the whole room whenever membership or
// seat bindings change.
type PlayersListMessage struct {
	Type    string         `json:"type"` // "updatePlayersList"
	Players []*Participant `json:"players"`
}

// RedirectToGameMessage tells every client in the room which game
// screen to navigate to.
type RedirectToGameMessage struct {
	Type     string `json:"type"` // "redirectToGame"
	GameType string `json:"gameType"`
}

// RedirectToLobbyMessage returns everyone but the host to the lobby.
type RedirectToLobbyMessage struct {
	Type     string `json:"type"` // "redirectToLobby"
	RoomCode string `json:"roomCode"`
}

// SimpleMessage is for single-client notices: "roomError", "gameError"
// and "newHost".
type SimpleMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// CardTableMessage carries every dealt hand, in deal order.
type CardTableMessage struct {
	Type    string       `json:"type"` // "updateCardTable"
	Players []PlayerCard `json:"players"`
}

// RoundResultMessage announces the high-card loser and drink count.
type RoundResultMessage struct {
	Type       string     `json:"type"` // "roundResultCartaAlta"
	Loser      PlayerCard `json:"loser"`
	TakeAmount int        `json:"takeAmount"`
}
