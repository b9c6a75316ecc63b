package pet

import (
	"strings"
	"testing"
)

func TestGetStatus(t *testing.T) {
	sized := Size{Width: 10, Height: 10}
	tests := []struct {
		name string
		pet  Pet
		want string
	}{
		{"pending image", Pet{Happiness: 100}, StatusEmojiPending},
		{"grabbed wins over mood", Pet{Size: sized, Happiness: 5, Grabbed: true}, StatusEmojiGrabbed},
		{"excited", Pet{Size: sized, Happiness: 50, Excited: true}, StatusEmojiExcited},
		{"ecstatic", Pet{Size: sized, Happiness: 95}, StatusEmojiEcstatic},
		{"happy", Pet{Size: sized, Happiness: 70}, StatusEmojiHappy},
		{"neutral", Pet{Size: sized, Happiness: 40}, StatusEmojiNeutral},
		{"sad", Pet{Size: sized, Happiness: 15}, StatusEmojiSad},
		{"miserable", Pet{Size: sized, Happiness: 0}, StatusEmojiMiserable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetStatus(tt.pet); got != tt.want {
				t.Errorf("GetStatus() = %q, want %q", got, tt.want)
			}
			if label := GetStatusWithLabel(tt.pet); !strings.HasPrefix(label, tt.want) {
				t.Errorf("GetStatusWithLabel() = %q, want prefix %q", label, tt.want)
			}
		})
	}
}
