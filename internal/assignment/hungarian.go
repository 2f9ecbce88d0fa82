package assignment

import "math"

// hungarian solves the rectangular minimum-weight assignment problem over
// a D (drivers) x C (clusters) cost matrix using the Kuhn-Munkres
// algorithm. Per spec §9's Design Notes, a dense solver is an accepted
// trade-off for this problem's small-batch scale; infeasible pairs are
// already encoded as BIG_M cells by the caller.
//
// The matrix is padded to a square with zero-cost dummy rows/columns (a
// dummy row stands for "no driver"; a dummy column stands for "no
// cluster"), solved, then the padding is stripped back out.
//
// Returns driverOf[i] = the cluster index matched to driver i, or -1 if
// driver i matched a dummy column; callers only care about entries with a
// real cluster index.
func hungarian(cost [][]float64) (driverOf []int, clusterOf []int) {
	d := len(cost)
	c := 0
	if d > 0 {
		c = len(cost[0])
	}
	n := d
	if c > n {
		n = c
	}

	sq := make([][]float64, n)
	for i := range sq {
		sq[i] = make([]float64, n)
		for j := range sq[i] {
			if i < d && j < c {
				sq[i][j] = cost[i][j]
			}
			// padding cells default to 0: matching a real driver to a
			// dummy cluster, or a dummy driver to a real cluster, costs
			// nothing and simply means "unassigned".
		}
	}

	rowMatch := solveSquare(sq)

	driverOf = make([]int, d)
	for i := range driverOf {
		driverOf[i] = -1
		if i < n {
			j := rowMatch[i]
			if j < c {
				driverOf[i] = j
			}
		}
	}

	clusterOf = make([]int, c)
	for j := range clusterOf {
		clusterOf[j] = -1
	}
	for i := 0; i < d; i++ {
		if driverOf[i] >= 0 {
			clusterOf[driverOf[i]] = i
		}
	}

	return driverOf, clusterOf
}

// solveSquare implements the O(n^3) Jonker-Volgenant / Kuhn-Munkres
// shortest-augmenting-path formulation over an n x n cost matrix, using
// the classic 1-indexed potentials formulation for numerical clarity.
// Returns rowMatch[i] = column matched to row i.
func solveSquare(a [][]float64) []int {
	n := len(a)
	if n == 0 {
		return nil
	}

	const inf = math.MaxFloat64 / 2

	u := make([]float64, n+1)
	v := make([]float64, n+1)
	p := make([]int, n+1) // p[j] = row matched to column j (1-indexed columns)
	way := make([]int, n+1)

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		minV := make([]float64, n+1)
		used := make([]bool, n+1)
		for j := 0; j <= n; j++ {
			minV[j] = inf
		}

		for {
			used[j0] = true
			i0 := p[j0]
			delta := inf
			j1 := -1

			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := a[i0-1][j-1] - u[i0] - v[j]
				if cur < minV[j] {
					minV[j] = cur
					way[j] = j0
				}
				if minV[j] < delta {
					delta = minV[j]
					j1 = j
				}
			}

			for j := 0; j <= n; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minV[j] -= delta
				}
			}

			j0 = j1
			if p[j0] == 0 {
				break
			}
		}

		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	rowMatch := make([]int, n)
	for j := 1; j <= n; j++ {
		if p[j] != 0 {
			rowMatch[p[j]-1] = j - 1
		}
	}
	return rowMatch
}
