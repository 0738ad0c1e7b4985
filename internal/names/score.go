package names

import "math"

// MaxScore is the score of two names that normalize identically.
const MaxScore = 100

// Score returns how closely a and b match on a 0-100 scale after both are
// normalized. The ratio is 2*LCS/(len(a)+len(b)) over the normalized runes,
// rounded half away from zero. Either side normalizing to "" scores 0.
func Score(a, b string) int {
	return Ratio(Normalize(a), Normalize(b))
}

// Ratio scores two already-normalized strings.
func Ratio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	total := len(ra) + len(rb)
	return int(math.Round(float64(MaxScore) * float64(2*lcs(ra, rb)) / float64(total)))
}

// lcs returns the length of the longest common subsequence of a and b.
func lcs(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
