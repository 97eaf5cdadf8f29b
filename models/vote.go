package models

import (
	"sort"

	"gorm.io/gorm"
)

// Vote モデルの定義。(session_id, voter_id)ごとに1行のみで、
// 再投票はVotedForIDの更新として扱う（upsert-by-voter）。
type Vote struct {
	gorm.Model
	SessionID  uint `gorm:"not null;index;uniqueIndex:idx_session_voter"`
	VoterID    uint `gorm:"not null;uniqueIndex:idx_session_voter"`
	VotedForID uint `gorm:"not null"`
}

// TallyVotes groups votes by candidate and counts them.
func TallyVotes(votes []Vote) map[uint]int {
	tally := make(map[uint]int, len(votes))
	for _, v := range votes {
		tally[v.VotedForID]++
	}
	return tally
}

// VoteWinners returns the participant IDs holding the maximum vote
// count. Ties are all reported as co-winners; no votes means no winner.
func VoteWinners(votes []Vote) []uint {
	tally := TallyVotes(votes)
	max := 0
	for _, count := range tally {
		if count > max {
			max = count
		}
	}
	if max == 0 {
		return nil
	}
	var winners []uint
	for id, count := range tally {
		if count == max {
			winners = append(winners, id)
		}
	}
	sort.Slice(winners, func(i, j int) bool { return winners[i] < winners[j] })
	return winners
}
