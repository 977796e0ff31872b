// Package cardface maps cards to the display resource that draws them.
package cardface

import "github.com/speevy/klondike/engine"

const (
	Back  = "card_back"  // face-down card and non-empty stock
	Empty = "card_empty" // empty holder or exhausted stock
)

var faces = [engine.NumSuits][engine.NumRanks]string{
	engine.SuitHearts: {
		"card_ace_heart", "card_2_heart", "card_3_heart", "card_4_heart", "card_5_heart",
		"card_6_heart", "card_7_heart", "card_8_heart", "card_9_heart", "card_10_heart",
		"card_jack_heart", "card_queen_heart", "card_king_heart",
	},
	engine.SuitDiamonds: {
		"card_ace_diamond", "card_2_diamond", "card_3_diamond", "card_4_diamond", "card_5_diamond",
		"card_6_diamond", "card_7_diamond", "card_8_diamond", "card_9_diamond", "card_10_diamond",
		"card_jack_diamond", "card_queen_diamond", "card_king_diamond",
	},
	engine.SuitClubs: {
		"card_ace_club", "card_2_club", "card_3_club", "card_4_club", "card_5_club",
		"card_6_club", "card_7_club", "card_8_club", "card_9_club", "card_10_club",
		"card_jack_club", "card_queen_club", "card_king_club",
	},
	engine.SuitSpades: {
		"card_ace_spade", "card_2_spade", "card_3_spade", "card_4_spade", "card_5_spade",
		"card_6_spade", "card_7_spade", "card_8_spade", "card_9_spade", "card_10_spade",
		"card_jack_spade", "card_queen_spade", "card_king_spade",
	},
}

// ID returns the resource id for c. EmptyCard and invalid cards map to Empty.
func ID(c engine.Card) string {
	if !c.Valid() {
		return Empty
	}
	return faces[c.Suit()][c.Rank()]
}
