package analysis

// Partition splits targets into n contiguous, order-preserving slices whose
// sizes differ by at most one, larger slices first. When n exceeds
// len(targets) the trailing slices are empty. n < 1 yields nil.
func Partition(targets []string, n int) [][]string {
	if n < 1 {
		return nil
	}
	out := make([][]string, n)
	base, extra := len(targets)/n, len(targets)%n
	start := 0
	for i := 0; i < n; i++ {
		size := base
		if i < extra {
			size++
		}
		out[i] = targets[start : start+size : start+size]
		start += size
	}
	return out
}

//Personal.AI order the ending
