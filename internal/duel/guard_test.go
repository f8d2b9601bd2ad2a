package duel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundResolvable(t *testing.T) {
	tests := []struct {
		name           string
		status         string
		scheduled      int
		current        int
		resolving      int
		wantResolvable bool
	}{
		{"live round, nothing resolving", StatusPlaying, 2, 2, NoRound, true},
		{"session finished", StatusFinished, 2, 2, NoRound, false},
		{"session still counting down", StatusCountdown, 0, 0, NoRound, false},
		{"timer for an earlier round", StatusPlaying, 1, 2, NoRound, false},
		{"timer for a later round", StatusPlaying, 3, 2, NoRound, false},
		{"round already mid-resolution", StatusPlaying, 2, 2, 2, false},
		{"different round resolving", StatusPlaying, 3, 3, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundResolvable(tt.status, tt.scheduled, tt.current, tt.resolving)
			assert.Equal(t, tt.wantResolvable, got)
		})
	}
}

func TestTimeoutAndAnswerCannotBothResolve(t *testing.T) {
	// Both checks observe the same state. The first to run flips
	// resolvingRound to the round index, which makes the second stale.
	status, round := StatusPlaying, 4

	assert.True(t, AnswerTriggersResolution(status, round, round, NoRound))
	assert.False(t, RoundResolvable(status, round, round, round))

	assert.True(t, RoundResolvable(status, round, round, NoRound))
	assert.False(t, AnswerTriggersResolution(status, round, round, round))
}
