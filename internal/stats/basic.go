package stats

import (
	"math"

	"github.com/aria-lang/popgen-go/internal/composition"
)

// Harmonic returns a1 = sum of 1/i for i in 1..n-1.
func Harmonic(n int) float64 {
	a := 0.0
	for i := 1; i < n; i++ {
		a += 1 / float64(i)
	}
	return a
}

// Harmonic2 returns a2 = sum of 1/i^2 for i in 1..n-1.
func Harmonic2(n int) float64 {
	a := 0.0
	for i := 1; i < n; i++ {
		a += 1 / float64(i*i)
	}
	return a
}

// tajimaCoefficients returns e1 and e2 of Tajima (1989) for sample size n.
func tajimaCoefficients(n int) (e1, e2 float64) {
	nf := float64(n)
	a1 := Harmonic(n)
	a2 := Harmonic2(n)
	b1 := (nf + 1) / (3 * (nf - 1))
	b2 := 2 * (nf*nf + nf + 3) / (9 * nf * (nf - 1))
	c1 := b1 - 1/a1
	c2 := b2 - (nf+2)/(a1*nf) + a2/(a1*a1)
	return c1 / a1, c2 / (a1*a1 + a2)
}

// TajimaD returns Tajima's D summed over sample-size strata: the sum of
// each block's pi minus its S/a1, over the square root of the summed
// per-block variances. It is NaN when there are no segregating sites or
// the variance is not positive.
func TajimaD(blocks []*SitesBlock) float64 {
	num, variance, segregating := 0.0, 0.0, 0
	for _, b := range blocks {
		if b.N < 2 {
			continue
		}
		s := float64(b.Polymorphisms)
		e1, e2 := tajimaCoefficients(b.N)
		num += b.SumPi - s/Harmonic(b.N)
		variance += e1*s + e2*s*(s-1)
		segregating += b.Polymorphisms
	}
	if segregating == 0 || variance <= 0 {
		return math.NaN()
	}
	return num / math.Sqrt(variance)
}

// TajimaDPrime divides D by its attainable bound, Dmax when D is positive
// and |Dmin| otherwise. The bounds use the total number of segregating
// sites and the N of the block holding the most sites.
func TajimaDPrime(blocks []*SitesBlock) float64 {
	d := TajimaD(blocks)
	if math.IsNaN(d) {
		return d
	}
	var modal *SitesBlock
	segregating := 0
	for _, b := range blocks {
		if modal == nil || b.Sites > modal.Sites {
			modal = b
		}
		segregating += b.Polymorphisms
	}
	n := modal.N
	if n < 2 {
		return math.NaN()
	}

	s := float64(segregating)
	a1 := Harmonic(n)
	e1, e2 := tajimaCoefficients(n)
	sd := math.Sqrt(e1*s + e2*s*(s-1))
	if sd <= 0 {
		return math.NaN()
	}

	var bound float64
	if d > 0 {
		// Largest pairwise difference: every site split as evenly as n allows.
		nf := float64(n)
		kmax := s * nf / (2 * (nf - 1))
		if n%2 == 1 {
			kmax = s * (nf + 1) / (2 * nf)
		}
		bound = (kmax - s/a1) / sd
	} else {
		// Smallest: every site a singleton.
		bound = math.Abs((2*s/float64(n) - s/a1) / sd)
	}
	if bound == 0 {
		return math.NaN()
	}
	return d / bound
}

// K returns the divergence between two columns, 1 - sum(p_i q_i) over the
// base frequencies of each side: 0 for the same single base, 1 for
// disjoint bases, and a fraction when bases are shared. It is NaN when
// either side has no valid base.
func K(pop, out *composition.Site) float64 {
	if pop.Valid() == 0 || out.Valid() == 0 {
		return math.NaN()
	}
	p := pop.Frequencies(0)
	q := out.Frequencies(0)
	shared := 0.0
	for i := range p {
		shared += p[i] * q[i]
	}
	return 1 - shared
}

// JukesCantor corrects a raw difference proportion d for multiple hits:
// -3/4 ln(1 - 4d/3). It returns +Inf for d >= 0.75 and NaN for negative or
// NaN input.
func JukesCantor(d float64) float64 {
	switch {
	case math.IsNaN(d) || d < 0:
		return math.NaN()
	case d >= 0.75:
		return math.Inf(1)
	}
	return -0.75 * math.Log(1-4*d/3)
}
