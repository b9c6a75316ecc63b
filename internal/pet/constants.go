package pet

// Stat bounds and creation defaults
const (
	MaxStat          = 100
	MinStat          = 0
	InitialHappiness = 70  // New pets start moderately happy
	MaxImageSize     = 120 // Longest side of a fitted image, in viewport units

	// Mood thresholds (used for the status emoji)
	EcstaticThreshold  = 90
	HappyThreshold     = 60
	SadThreshold       = 30
	MiserableThreshold = 10

	// Status emojis
	StatusEmojiPending   = "⏳" // Image size not known yet
	StatusEmojiGrabbed   = "🤲" // Being petted
	StatusEmojiExcited   = "😻" // Just played with a friend
	StatusEmojiEcstatic  = "😸"
	StatusEmojiHappy     = "😺"
	StatusEmojiNeutral   = "🙂"
	StatusEmojiSad       = "😿"
	StatusEmojiMiserable = "🙀"
)
