// Package analysis extracts frequency content from recorded field series.
//
// Relative orbits oscillate at the orbital period, so the dominant period
// of a Hill frame separation or an energy series is a quick check that a
// run behaves:
//
//	period, err := analysis.DominantPeriod(series, 0.1)
package analysis
