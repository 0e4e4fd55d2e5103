package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageXP(t *testing.T) {
	tests := []struct {
		name   string
		length int
		want   int64
	}{
		{"empty message", 0, 1},
		{"short message", 5, 1},
		{"exactly 20 chars", 20, 1},
		{"21 chars earns quality bonus", 21, 5},
		{"25 chars", 25, 5},
		{"long message", 500, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MessageXP(tt.length))
		})
	}
}

func TestBondLevelFor(t *testing.T) {
	tests := []struct {
		xp        int64
		wantLevel int
		wantTitle string
	}{
		{0, 1, "Bond Newbie"},
		{499, 1, "Bond Newbie"},
		{500, 2, "Heart Hacker"},
		{1499, 2, "Heart Hacker"},
		{1500, 3, "Soul Syncer"},
		{2999, 3, "Soul Syncer"},
		{3000, 4, "Bond Virtuoso"},
		{4999, 4, "Bond Virtuoso"},
		{5000, 5, "Love Legend"},
		// Level pins at the cap, XP keeps counting.
		{1000000, 5, "Love Legend"},
	}

	for _, tt := range tests {
		level, title := BondLevelFor(tt.xp)
		assert.Equal(t, tt.wantLevel, level, "xp=%d", tt.xp)
		assert.Equal(t, tt.wantTitle, title, "xp=%d", tt.xp)
	}
}
