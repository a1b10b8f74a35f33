package services

import "github.com/Dosada05/scoreboard/models"

// EvaluateWinner returns the index of the winning participant, or -1 while play
// continues. Indices are checked in ascending order and the first one that
// satisfies a rule wins.
//
// For each index i:
//   - sudden death: with a max score configured, scores[i] >= max wins outright;
//   - standard: scores[i] >= target and the lead over the best other score is at
//     least minWinBy. When deuce is enabled and that best other score has also
//     reached the target, the lead must equal minWinBy exactly.
func EvaluateWinner(scores []int, cfg models.MatchConfig) int {
	for i, score := range scores {
		if cfg.MaxScore != nil && score >= *cfg.MaxScore {
			return i
		}

		other, ok := maxOther(scores, i)
		if !ok {
			continue
		}
		margin := score - other
		if score < cfg.TargetScore || margin < cfg.MinWinBy {
			continue
		}
		if cfg.DeuceEnabled && other >= cfg.TargetScore {
			if margin == cfg.MinWinBy {
				return i
			}
			continue
		}
		return i
	}
	return -1
}

func maxOther(scores []int, skip int) (int, bool) {
	best, found := 0, false
	for j, s := range scores {
		if j == skip {
			continue
		}
		if !found || s > best {
			best, found = s, true
		}
	}
	return best, found
}
