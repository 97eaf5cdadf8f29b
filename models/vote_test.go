package models

import (
	"reflect"
	"testing"
)

func vote(voter, votedFor uint) Vote {
	return Vote{VoterID: voter, VotedForID: votedFor}
}

func TestTallyVotes(t *testing.T) {
	// A→X, B→X, C→Y なら X:2, Y:1
	votes := []Vote{vote(1, 10), vote(2, 10), vote(3, 20)}
	tally := TallyVotes(votes)
	if tally[10] != 2 || tally[20] != 1 {
		t.Errorf("tally = %v, want 10:2 20:1", tally)
	}
}

func TestVoteWinners(t *testing.T) {
	tests := []struct {
		name  string
		votes []Vote
		want  []uint
	}{
		{
			name:  "single winner",
			votes: []Vote{vote(1, 10), vote(2, 10), vote(3, 20)},
			want:  []uint{10},
		},
		{
			name:  "tie reports co-winners",
			votes: []Vote{vote(1, 10), vote(2, 20)},
			want:  []uint{10, 20},
		},
		{
			name:  "no votes means no winner",
			votes: nil,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VoteWinners(tt.votes)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("VoteWinners() = %v, want %v", got, tt.want)
			}
		})
	}
}
