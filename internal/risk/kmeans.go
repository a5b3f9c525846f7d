package risk

import (
	"math"
	"math/rand/v2"
	"slices"
	"sort"
)

// KMeansOptions controls the clustering fit.
type KMeansOptions struct {
	K int `mapstructure:"clusters" yaml:"clusters"`
	// Seed drives k-means++ initialization. Same seed and input order give the
	// same result.
	Seed uint64 `mapstructure:"seed" yaml:"seed"`
	// MaxIter bounds Lloyd iterations per initialization.
	MaxIter int `mapstructure:"max_iter" yaml:"max_iter"`
	// NInit is the number of initializations; the lowest inertia wins.
	NInit int `mapstructure:"n_init" yaml:"n_init"`
	// Tolerance on the summed squared centroid shift that declares convergence.
	Tolerance float64 `mapstructure:"tolerance" yaml:"tolerance"`
}

// DefaultKMeansOptions mirrors the fit used to derive the legacy label map:
// four clusters, seed 42.
func DefaultKMeansOptions() KMeansOptions {
	return KMeansOptions{K: 4, Seed: 42, MaxIter: 300, NInit: 10, Tolerance: 1e-4}
}

// KMeansResult is a fitted one-dimensional clustering.
type KMeansResult struct {
	Centroids  []float64
	Labels     []int
	Sizes      []int
	Inertia    float64
	Iterations int
}

// Distinct counts distinct values in x.
func Distinct(x []float64) int {
	cp := append([]float64(nil), x...)
	sort.Float64s(cp)
	n := 0
	for i, v := range cp {
		if i == 0 || v != cp[i-1] {
			n++
		}
	}
	return n
}

// KMeans1D clusters x into opt.K groups with k-means++ seeding and Lloyd
// iterations. x must hold at least K distinct values.
func KMeans1D(x []float64, opt KMeansOptions) (*KMeansResult, error) {
	if opt.K <= 0 {
		opt.K = 4
	}
	if opt.MaxIter <= 0 {
		opt.MaxIter = 300
	}
	if opt.NInit <= 0 {
		opt.NInit = 1
	}
	if d := Distinct(x); d < opt.K {
		return nil, &InsufficientDataError{Rows: len(x), Distinct: d, Required: opt.K}
	}
	rng := rand.New(rand.NewPCG(opt.Seed, opt.Seed))
	var best *KMeansResult
	for run := 0; run < opt.NInit; run++ {
		res := lloyd(x, initPlusPlus(x, opt.K, rng), opt)
		if best == nil || res.Inertia < best.Inertia {
			best = res
		}
	}
	return best, nil
}

// initPlusPlus picks the first centroid uniformly and each next one with
// probability proportional to the squared distance to the nearest chosen one.
func initPlusPlus(x []float64, k int, rng *rand.Rand) []float64 {
	centers := make([]float64, 0, k)
	centers = append(centers, x[rng.IntN(len(x))])
	d2 := make([]float64, len(x))
	for len(centers) < k {
		var total float64
		for i, v := range x {
			d := v - centers[0]
			best := d * d
			for _, c := range centers[1:] {
				if dd := (v - c) * (v - c); dd < best {
					best = dd
				}
			}
			d2[i] = best
			total += best
		}
		target := rng.Float64() * total
		pick := -1
		var acc float64
		for i, w := range d2 {
			if w == 0 {
				continue
			}
			acc += w
			pick = i
			if acc >= target {
				break
			}
		}
		centers = append(centers, x[pick])
	}
	return centers
}

func lloyd(x []float64, centers []float64, opt KMeansOptions) *KMeansResult {
	k := len(centers)
	labels := make([]int, len(x))
	sums := make([]float64, k)
	sizes := make([]int, k)
	iter := 0
	for iter < opt.MaxIter {
		iter++
		assign(x, centers, labels)
		clear(sums)
		clear(sizes)
		for i, v := range x {
			sums[labels[i]] += v
			sizes[labels[i]]++
		}
		shift := 0.0
		var reseeded []float64
		for c := 0; c < k; c++ {
			next := centers[c]
			if sizes[c] > 0 {
				next = sums[c] / float64(sizes[c])
			} else {
				next = x[farthestPoint(x, centers, labels, reseeded)]
				reseeded = append(reseeded, next)
			}
			shift += (next - centers[c]) * (next - centers[c])
			centers[c] = next
		}
		if shift <= opt.Tolerance {
			break
		}
	}
	inertia := assign(x, centers, labels)
	clear(sizes)
	for _, l := range labels {
		sizes[l]++
	}
	return &KMeansResult{Centroids: centers, Labels: labels, Sizes: sizes, Inertia: inertia, Iterations: iter}
}

// assign labels every point with its nearest centroid (lowest index on ties)
// and returns the inertia.
func assign(x []float64, centers []float64, labels []int) float64 {
	var inertia float64
	for i, v := range x {
		best, bestD := 0, math.Inf(1)
		for c, cv := range centers {
			if d := (v - cv) * (v - cv); d < bestD {
				best, bestD = c, d
			}
		}
		labels[i] = best
		inertia += bestD
	}
	return inertia
}

// farthestPoint returns the point farthest from its centroid, skipping values
// already used to reseed another empty cluster in the same pass.
func farthestPoint(x []float64, centers []float64, labels []int, skip []float64) int {
	idx, far := 0, -1.0
	for i, v := range x {
		if slices.Contains(skip, v) {
			continue
		}
		d := (v - centers[labels[i]]) * (v - centers[labels[i]])
		if d > far {
			idx, far = i, d
		}
	}
	return idx
}
