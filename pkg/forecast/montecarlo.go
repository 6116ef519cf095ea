package forecast

import (
	"math"
	"math/rand"
	"sort"
)

// Projection holds percentile bands over a simulated horizon. Band i
// of each slice is day i+1 from the start value.
type Projection struct {
	P10 []float64
	P50 []float64
	P90 []float64
}

// Simulate resamples historical daily log returns into paths number of
// random walks over horizon days, starting from start. It returns the
// 10th/50th/90th percentile band per day. This is a plain resampling
// loop over the observed return distribution, nothing fancier.
func Simulate(history []float64, start float64, horizon, paths int, rng *rand.Rand) *Projection {
	returns := logReturns(history)
	if len(returns) == 0 || start <= 0 || horizon <= 0 || paths <= 0 {
		return nil
	}

	// finals[d] collects every path's value at day d.
	finals := make([][]float64, horizon)
	for d := range finals {
		finals[d] = make([]float64, paths)
	}

	for p := 0; p < paths; p++ {
		value := start
		for d := 0; d < horizon; d++ {
			value *= math.Exp(returns[rng.Intn(len(returns))])
			finals[d][p] = value
		}
	}

	proj := &Projection{
		P10: make([]float64, horizon),
		P50: make([]float64, horizon),
		P90: make([]float64, horizon),
	}
	for d := 0; d < horizon; d++ {
		sort.Float64s(finals[d])
		proj.P10[d] = percentile(finals[d], 0.10)
		proj.P50[d] = percentile(finals[d], 0.50)
		proj.P90[d] = percentile(finals[d], 0.90)
	}
	return proj
}

// logReturns drops non-positive observations; a zero snapshot is a
// missing day, not a 100% loss.
func logReturns(history []float64) []float64 {
	var returns []float64
	for i := 1; i < len(history); i++ {
		if history[i-1] <= 0 || history[i] <= 0 {
			continue
		}
		returns = append(returns, math.Log(history[i]/history[i-1]))
	}
	return returns
}

func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(q * float64(len(sorted)-1))
	return sorted[idx]
}
