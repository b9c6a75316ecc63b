package ui

import (
	"imagepet/internal/pet"
)

// Heart frames from freshest to almost faded
var heartFrames = []string{"💖", "💗", "♥", "♡", "·"}

// HeartGlyph picks the heart frame for an effect's opacity
func HeartGlyph(opacity float64) string {
	switch {
	case opacity <= 0:
		return ""
	case opacity >= 1:
		return heartFrames[0]
	}
	i := int((1 - opacity) * float64(len(heartFrames)))
	return heartFrames[min(i, len(heartFrames)-1)]
}

// border is the set of runes drawn around a pet
type border struct {
	h, v           rune
	tl, tr, bl, br rune
}

var (
	borderCalm    = border{'─', '│', '╭', '╮', '╰', '╯'}
	borderExcited = border{'═', '║', '╔', '╗', '╚', '╝'} // Pulse while excited
	borderHeld    = border{'┄', '┆', '┏', '┓', '┗', '┛'}
)

// borderFor picks a pet's frame for its current state
func borderFor(p *pet.Pet) border {
	switch {
	case p.Grabbed:
		return borderHeld
	case p.Excited:
		return borderExcited
	}
	return borderCalm
}

// moodColor maps happiness to a border colour
func moodColor(happiness float64) string {
	switch {
	case happiness >= pet.EcstaticThreshold:
		return "#FF75B5"
	case happiness >= pet.HappyThreshold:
		return "#F9C74F"
	case happiness >= pet.SadThreshold:
		return "#90BE6D"
	case happiness >= pet.MiserableThreshold:
		return "#577590"
	}
	return "#6C6C6C"
}
