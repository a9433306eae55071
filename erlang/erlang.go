// Package erlang implements the Erlang B and Erlang C queueing formulas used
// for contact-center staffing.
//
// Erlang B is evaluated with the recurrence
//
//	B(0) = 1
//	B(i) = A*B(i-1) / (i + A*B(i-1))
//
// which never forms A^n or n! and stays finite for traffic well beyond the
// ~170 Erlangs where a factorial expression overflows float64.
package erlang

import "math"

// B returns the Erlang B blocking probability for traffic Erlangs offered to
// agents servers.
func B(traffic float64, agents int) float64 {
	b := 1.0
	whole := int(math.Floor(traffic))
	// Up to the integral part of the traffic first, then on to agents.
	for i := 1; i <= whole && i <= agents; i++ {
		b = (traffic * b) / (float64(i) + traffic*b)
	}
	for i := whole + 1; i <= agents; i++ {
		b = (traffic * b) / (float64(i) + traffic*b)
	}
	return b
}

// C returns the probability that an arriving contact has to wait.
// With agents <= traffic the queue is unstable and C returns 1.
func C(traffic float64, agents int) float64 {
	n := float64(agents)
	if n <= traffic {
		return 1
	}
	b := B(traffic, agents)
	denominator := n - traffic*(1-b)
	if denominator <= 0 {
		return 1
	}
	return n * b / denominator
}

// ServiceLevel returns the fraction of contacts answered within
// targetAnswerSeconds. aht must be positive; guarding it is the caller's job.
func ServiceLevel(traffic float64, agents int, targetAnswerSeconds, aht float64) float64 {
	pw := C(traffic, agents)
	if pw > 1 {
		pw = 1
	}
	if pw < 0 {
		pw = 0
	}
	return 1 - pw*math.Exp(-(float64(agents)-traffic)*targetAnswerSeconds/aht)
}
