package llm

import (
	"strings"
	"testing"
)

const goodReply = "That's a really interesting way to frame the tradeoff. I'd push back a little: most teams underestimate how much operational load a second datastore adds."

func TestScoreQualityAcceptsNormalResponse(t *testing.T) {
	score := ScoreQuality(goodReply, nil)
	if score < QualityFloor {
		t.Errorf("Normal response scored %.2f, below floor", score)
	}
}

func TestScoreQualityPenalizesShortResponse(t *testing.T) {
	score := ScoreQuality("ok sure", nil)
	if score >= QualityFloor {
		t.Errorf("Short response scored %.2f, expected below floor behavior to drive a retry", score)
	}
}

func TestScoreQualityPenalizesLongResponse(t *testing.T) {
	long := strings.Repeat("a very long rambling response ", 30)
	score := ScoreQuality(long, nil)
	if score >= 1.0 {
		t.Errorf("Overlong response was not penalized: %.2f", score)
	}
}

func TestScoreQualityPenalizesImmediateRepetition(t *testing.T) {
	repeated := "I think this is great I think this is great and we should definitely keep exploring this whole area together."
	score := ScoreQuality(repeated, nil)
	if score > 1.0-repetitionPenalty {
		t.Errorf("Back-to-back repetition not penalized: %.2f", score)
	}
}

func TestScoreQualityPenalizesSimilarity(t *testing.T) {
	previous := []string{goodReply}

	score := ScoreQuality(goodReply, previous)
	fresh := ScoreQuality("Completely different take: pick boring technology and spend your innovation tokens on the product itself, not the stack.", previous)

	if score >= fresh {
		t.Errorf("A near-duplicate (%.2f) should score below a fresh response (%.2f)", score, fresh)
	}

	if score >= QualityFloor {
		t.Errorf("A duplicate of a previous response scored %.2f, expected below floor", score)
	}
}

func TestScoreQualityNeverNegative(t *testing.T) {
	previous := []string{"bad bad"}
	score := ScoreQuality("bad bad bad bad", previous)
	if score < 0 {
		t.Errorf("Score went negative: %.2f", score)
	}
}
