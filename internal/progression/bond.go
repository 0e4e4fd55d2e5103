// Package progression computes the two leveling curves: conversational
// Bond XP and the collection score.
package progression

// Bond XP award rule for a single chat message.
const (
	MessageBaseXP        = 1
	MessageQualityXP     = 4
	QualityLengthMinimum = 21 // characters; strictly more than 20 earns the bonus
)

// bondLevel is one row of the cumulative Bond XP table.
type bondLevel struct {
	MinXP int64
	Level int
	Title string
}

// Bond level thresholds, ascending. Level pins at the last entry; XP keeps
// accumulating past it.
var bondLevels = []bondLevel{
	{0, 1, "Bond Newbie"},
	{500, 2, "Heart Hacker"},
	{1500, 3, "Soul Syncer"},
	{3000, 4, "Bond Virtuoso"},
	{5000, 5, "Love Legend"},
}

// MessageXP returns the XP awarded for a chat message of the given
// character length: 1 base plus 4 quality bonus for messages longer than
// 20 characters. There is no streak multiplier.
func MessageXP(messageLength int) int64 {
	xp := int64(MessageBaseXP)
	if messageLength >= QualityLengthMinimum {
		xp += MessageQualityXP
	}
	return xp
}

// BondLevelFor returns the level and title for a cumulative XP value.
func BondLevelFor(xp int64) (int, string) {
	cur := bondLevels[0]
	for _, row := range bondLevels {
		if xp >= row.MinXP {
			cur = row
		}
	}
	return cur.Level, cur.Title
}
