// Copas Carta Alta Game
//
// The simplest possible drinking game: every player at the table is
// dealt a single card, and whoever holds the lowest card drinks.
//
// How to play:
// - One player creates a room and shares the code (or the QR) with the table
// - Everyone else joins with a display name; names are unique per room
// - The host starts the game from the lobby, then deals rounds on demand
// - Each round, every player gets one random card
// - Lowest card loses; on a tie, whoever was dealt first loses
// - The loser drinks their card's value, doubled when the value is even
//
// Cards are drawn independently, so two players can be dealt the same
// card in one round. There is no round history: every round reads the
// current membership and nothing else.

package main

import (
	"crypto/rand"
)

// Card is round-scoped; nothing keeps it past the result broadcast.
// Symbol is rank+suit (e.g. "A♠") for table rendering.
type Card struct {
	Suit   string `json:"suit"`
	Rank   string `json:"rank"`
	Value  int    `json:"value"`
	Symbol string `json:"symbol"`
}

var suits = []string{"♣", "♦", "♥", "♠"}

var ranks = []struct {
	name  string
	value int
}{
	{"2", 2},
	{"3", 3},
	{"4", 4},
	{"5", 5},
	{"6", 6},
	{"7", 7},
	{"8", 8},
	{"9", 9},
	{"10", 10},
	{"J", 11},
	{"Q", 12},
	{"K", 13},
	{"A", 14},
}

// randomCard draws uniformly from the 52-card space.
func randomCard() Card {
	var buf [2]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}

	suit := suits[int(buf[0])%len(suits)]
	rank := ranks[int(buf[1])%len(ranks)]

	return Card{
		Suit:   suit,
		Rank:   rank.name,
		Value:  rank.value,
		Symbol: rank.name + suit,
	}
}

// PlayerCard pairs a seat with its dealt card for the table broadcast.
type PlayerCard struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Card     Card   `json:"card"`
}

// RoundResult identifies the round's loser and their drink count.
type RoundResult struct {
	Loser      PlayerCard `json:"loser"`
	TakeAmount int        `json:"takeAmount"`
}

// penalty is the loser's card value, doubled when even. House rule:
// an even low card drinks twice as much as an odd one of similar rank.
func penalty(value int) int {
	if value%2 == 0 {
		return value * 2
	}
	return value
}

// resolveRound deals one card per player in membership order and picks
// the loser: the holder of the lowest value, earliest deal winning
// ties. It reads membership only and keeps no state between rounds.
func resolveRound(players []*Participant, deal func() Card) ([]PlayerCard, RoundResult, error) {
	if len(players) < 2 {
		return nil, RoundResult{}, errNotEnoughPlayers
	}

	hands := make([]PlayerCard, 0, len(players))

	var loser PlayerCard
	lowest := 0

	for _, p := range players {
		hand := PlayerCard{
			ID:       p.ID,
			Username: p.Username,
			Card:     deal(),
		}
		hands = append(hands, hand)

		if lowest == 0 || hand.Card.Value < lowest {
			lowest = hand.Card.Value
			loser = hand
		}
	}

	result := RoundResult{
		Loser:      loser,
		TakeAmount: penalty(lowest),
	}

	return hands, result, nil
}
