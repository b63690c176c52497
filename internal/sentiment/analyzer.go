package sentiment

import (
	"math"
	"strings"
)

// lexicon maps finance-news vocabulary to polarity weights. Weights are
// coarse on purpose; headlines are short and the score is aggregated
// over dozens of titles.
var lexicon = map[string]float64{
	"surge": 1.2, "surges": 1.2, "rally": 1.1, "rallies": 1.1,
	"gain": 0.9, "gains": 0.9, "jump": 0.9, "jumps": 0.9,
	"soar": 1.3, "soars": 1.3, "record": 0.8, "high": 0.6,
	"boom": 1.1, "bullish": 1.4, "upbeat": 0.9, "optimism": 1.0,
	"optimistic": 1.0, "growth": 0.8, "profit": 0.8, "profits": 0.8,
	"beat": 0.7, "beats": 0.7, "strong": 0.7, "recovery": 0.9,
	"recovers": 0.9, "rebound": 0.9, "rebounds": 0.9, "upgrade": 0.8,
	"upgrades": 0.8, "buy": 0.5, "positive": 0.8, "rises": 0.8,
	"rise": 0.8, "advance": 0.6, "advances": 0.6, "outperform": 0.9,

	"crash": -1.5, "crashes": -1.5, "plunge": -1.3, "plunges": -1.3,
	"slump": -1.1, "slumps": -1.1, "fall": -0.8, "falls": -0.8,
	"drop": -0.8, "drops": -0.8, "sink": -1.0, "sinks": -1.0,
	"tumble": -1.1, "tumbles": -1.1, "bearish": -1.4, "fear": -1.0,
	"fears": -1.0, "panic": -1.3, "loss": -0.9, "losses": -0.9,
	"weak": -0.7, "slowdown": -0.9, "recession": -1.3, "crisis": -1.2,
	"downgrade": -0.9, "downgrades": -0.9, "sell": -0.5, "selloff": -1.2,
	"negative": -0.8, "decline": -0.8, "declines": -0.8, "miss": -0.7,
	"misses": -0.7, "worry": -0.8, "worries": -0.8, "risk": -0.5,
	"risks": -0.5, "inflation": -0.6, "default": -1.1, "fraud": -1.3,
}

var negators = map[string]bool{
	"not": true, "no": true, "never": true, "without": true,
	"hardly": true, "barely": true,
}

// Polarity scores a headline in [-1, 1]. Zero means neutral or no
// recognized vocabulary. A negator directly before a scored word flips
// its sign.
func Polarity(text string) float64 {
	words := strings.Fields(strings.ToLower(text))

	var sum float64
	for i, word := range words {
		word = strings.Trim(word, ".,:;!?'\"()[]")
		weight, ok := lexicon[word]
		if !ok {
			continue
		}
		if i > 0 && negators[strings.Trim(words[i-1], ".,:;!?'\"()[]")] {
			weight = -weight
		}
		sum += weight
	}

	if sum == 0 {
		return 0
	}
	// Squash the raw sum into [-1, 1]; one strong word lands near 0.3
	return sum / math.Sqrt(sum*sum+15)
}
