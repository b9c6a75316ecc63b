package pet

// GetStatus returns the status emoji for the pet
func GetStatus(p Pet) string {
	if !p.Sized() {
		return StatusEmojiPending
	}
	if p.Grabbed {
		return StatusEmojiGrabbed
	}
	if p.Excited {
		return StatusEmojiExcited
	}

	switch {
	case p.Happiness >= EcstaticThreshold:
		return StatusEmojiEcstatic
	case p.Happiness >= HappyThreshold:
		return StatusEmojiHappy
	case p.Happiness >= SadThreshold:
		return StatusEmojiNeutral
	case p.Happiness >= MiserableThreshold:
		return StatusEmojiSad
	default:
		return StatusEmojiMiserable
	}
}

// GetStatusWithLabel returns the status emoji with a text label for the UI
func GetStatusWithLabel(p Pet) string {
	status := GetStatus(p)

	switch status {
	case StatusEmojiPending:
		return status + " Arriving"
	case StatusEmojiGrabbed:
		return status + " Being petted"
	case StatusEmojiExcited:
		return status + " Playing!"
	case StatusEmojiEcstatic:
		return status + " Ecstatic"
	case StatusEmojiHappy:
		return status + " Happy"
	case StatusEmojiNeutral:
		return status + " Okay"
	case StatusEmojiSad:
		return status + " Sad"
	default:
		return status + " Lonely"
	}
}
