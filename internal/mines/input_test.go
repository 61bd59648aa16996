package mines

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRelease(t *testing.T) {
	down := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		held time.Duration
		want Action
	}{
		{0, ActionReveal},
		{199 * time.Millisecond, ActionReveal},
		{200 * time.Millisecond, ActionMark},
		{time.Second, ActionMark},
	}
	for _, test := range tests {
		t.Run(test.held.String(), func(t *testing.T) {
			assert.Equal(t, test.want, ClassifyRelease(down, down.Add(test.held)))
		})
	}
}

func TestPressRelease(t *testing.T) {
	now := time.Now()

	t.Run("short primary click reveals", func(t *testing.T) {
		g := gameFrom("*..", "...")
		assert.Equal(t, NotStarted, g.Phase())

		assert.Nil(t, g.Press(Pos{1, 2}, Primary, now))
		assert.Equal(t, InProgress, g.Phase())

		action, deltas := g.Release(Pos{1, 2}, Primary, now.Add(50*time.Millisecond))
		assert.Equal(t, ActionReveal, action)
		assert.NotEmpty(t, deltas)
		assert.Equal(t, Revealed, g.Cell(Pos{1, 2}))
	})

	t.Run("long primary press flags", func(t *testing.T) {
		g := gameFrom("*..", "...")
		g.Press(Pos{0, 0}, Primary, now)
		action, deltas := g.Release(Pos{0, 0}, Primary, now.Add(HoldThreshold))
		assert.Equal(t, ActionMark, action)
		assert.Equal(t, []Delta{{Pos{0, 0}, Flagged}}, deltas)
		assert.Equal(t, 1, g.State.CorrectlyFlaggedCount)
	})

	t.Run("short click on a flag does nothing", func(t *testing.T) {
		g := gameFrom("*..", "...")
		g.Press(Pos{0, 0}, Secondary, now)
		g.Press(Pos{0, 0}, Primary, now)
		action, deltas := g.Release(Pos{0, 0}, Primary, now)
		assert.Equal(t, ActionNone, action)
		assert.Nil(t, deltas)
		assert.Equal(t, Flagged, g.Cell(Pos{0, 0}))
	})

	t.Run("secondary press marks immediately", func(t *testing.T) {
		g := gameFrom("*..", "...")
		deltas := g.Press(Pos{1, 0}, Secondary, now)
		assert.Equal(t, []Delta{{Pos{1, 0}, Flagged}}, deltas)
		assert.Equal(t, NotStarted, g.Phase())
		assert.False(t, g.Tick())

		action, deltas := g.Release(Pos{1, 0}, Secondary, now)
		assert.Equal(t, ActionNone, action)
		assert.Nil(t, deltas)
	})

	t.Run("release without press is a short click", func(t *testing.T) {
		g := gameFrom("*..", "...")
		action, deltas := g.Release(Pos{1, 2}, Primary, now)
		assert.Equal(t, ActionReveal, action)
		assert.NotEmpty(t, deltas)
		assert.Equal(t, Revealed, g.Cell(Pos{1, 2}))
	})

	t.Run("terminated game ignores input", func(t *testing.T) {
		g := gameFrom("*..", "...")
		g.Press(Pos{0, 0}, Primary, now)
		g.Release(Pos{0, 0}, Primary, now)
		assert.Equal(t, Lost, g.Phase())

		assert.Nil(t, g.Press(Pos{1, 1}, Secondary, now))
		action, _ := g.Release(Pos{1, 1}, Primary, now)
		assert.Equal(t, ActionNone, action)
	})
}

func TestVisualStateText(t *testing.T) {
	for s := Hidden; s <= RevealedMistake; s++ {
		text, err := s.MarshalText()
		assert.NoError(t, err)

		var back VisualState
		assert.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, s, back)
	}
	assert.Error(t, new(VisualState).UnmarshalText([]byte("bogus")))
}
