package statistics

import (
	"fmt"
	"math"
	"sort"
)

// RoundResult represents the outcome of a single simulated round
type RoundResult struct {
	Net       int     // Balance change over the round
	Wagered   int     // Total staked, including doubles and splits
	TrueCount float64 // True count when the bet was placed
	Wins      int     // Hands won
	Losses    int     // Hands lost to a higher dealer total
	Pushes    int     // Hands tied with the dealer
	Busts     int     // Hands that went over 21
	Doubled   int     // Hands doubled down
	Splits    int     // Splits performed
	Natural   bool    // Initial hand was a natural 21
	Seed      int64   // Seed of the engine that played the round (for replay)
}

// Hands returns how many player hands the round settled.
func (r RoundResult) Hands() int {
	return r.Wins + r.Losses + r.Pushes + r.Busts
}

// CountBucket tracks results for rounds bet at a given true count
type CountBucket struct {
	Rounds  int
	SumNet  float64
	SumNet2 float64
	Wagered int
}

// Mean returns the mean net result per round in the bucket.
func (b CountBucket) Mean() float64 {
	if b.Rounds == 0 {
		return 0
	}
	return b.SumNet / float64(b.Rounds)
}

// Bucket bounds for true-count analytics. Counts below MinBucket fold into it,
// likewise above MaxBucket.
const (
	MinBucket = -3
	MaxBucket = 5
)

// Statistics tracks blackjack simulation statistics
type Statistics struct {
	Rounds int
	SumNet float64
	// Sum of squares for variance calculation
	SumNet2 float64
	Values  []float64

	Hands    int
	Wins     int
	Losses   int
	Pushes   int
	Busts    int
	Doubles  int
	Splits   int
	Naturals int
	Wagered  int

	// Bankrolls that ran out of money before finishing their rounds.
	BustedOut int

	CountResults [MaxBucket - MinBucket + 1]CountBucket
}

// BucketFor returns the bucket a true count falls into: the count truncated
// toward zero and clamped to [MinBucket, MaxBucket].
func BucketFor(tc float64) int {
	b := int(tc)
	return max(MinBucket, min(MaxBucket, b))
}

// Bucket returns the results for a true-count bucket.
func (s *Statistics) Bucket(tc int) CountBucket {
	if tc < MinBucket || tc > MaxBucket {
		return CountBucket{}
	}
	return s.CountResults[tc-MinBucket]
}

// Mean returns the arithmetic mean net result per round
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumNet / float64(s.Rounds)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumNet2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Edge returns the net result as a fraction of everything wagered.
func (s *Statistics) Edge() float64 {
	if s.Wagered == 0 {
		return 0
	}
	return s.SumNet / float64(s.Wagered)
}

// Add incorporates a round result into the statistics
func (s *Statistics) Add(result RoundResult) {
	net := float64(result.Net)
	s.Rounds++
	s.SumNet += net
	s.SumNet2 += net * net
	s.Values = append(s.Values, net)

	s.Hands += result.Hands()
	s.Wins += result.Wins
	s.Losses += result.Losses
	s.Pushes += result.Pushes
	s.Busts += result.Busts
	s.Doubles += result.Doubled
	s.Splits += result.Splits
	s.Wagered += result.Wagered
	if result.Natural {
		s.Naturals++
	}

	b := &s.CountResults[BucketFor(result.TrueCount)-MinBucket]
	b.Rounds++
	b.SumNet += net
	b.SumNet2 += net * net
	b.Wagered += result.Wagered
}

// Merge folds another set of statistics into s.
func (s *Statistics) Merge(other *Statistics) {
	s.Rounds += other.Rounds
	s.SumNet += other.SumNet
	s.SumNet2 += other.SumNet2
	s.Values = append(s.Values, other.Values...)
	s.Hands += other.Hands
	s.Wins += other.Wins
	s.Losses += other.Losses
	s.Pushes += other.Pushes
	s.Busts += other.Busts
	s.Doubles += other.Doubles
	s.Splits += other.Splits
	s.Naturals += other.Naturals
	s.Wagered += other.Wagered
	s.BustedOut += other.BustedOut
	for i := range s.CountResults {
		s.CountResults[i].Rounds += other.CountResults[i].Rounds
		s.CountResults[i].SumNet += other.CountResults[i].SumNet
		s.CountResults[i].SumNet2 += other.CountResults[i].SumNet2
		s.CountResults[i].Wagered += other.CountResults[i].Wagered
	}
}

// Median returns the median value of all results
func (s *Statistics) Median() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// IsLedgerBalanced checks that the count buckets account for every round and chip
func (s *Statistics) IsLedgerBalanced() bool {
	rounds, net := 0, 0.0
	for _, b := range s.CountResults {
		rounds += b.Rounds
		net += b.SumNet
	}
	return rounds == s.Rounds && math.Abs(net-s.SumNet) <= 1e-6
}

// Validate performs comprehensive validation of statistics data
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: %d rounds, %.2f net not covered by count buckets", s.Rounds, s.SumNet)
	}

	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}

	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values array length (%d) does not match rounds count (%d)",
			len(s.Values), s.Rounds)
	}

	if settled := s.Wins + s.Losses + s.Pushes + s.Busts; settled != s.Hands {
		return fmt.Errorf("settled hands (%d) does not match hands played (%d)", settled, s.Hands)
	}

	if s.Hands != s.Rounds+s.Splits {
		return fmt.Errorf("hands played (%d) should equal rounds (%d) plus splits (%d)",
			s.Hands, s.Rounds, s.Splits)
	}

	return nil
}
