package optimizer

// Compare 返回适应度最小的结果，适应度相同时取先出现的那个
func Compare(results []*Result) (*Result, error) {
	var best *Result
	for _, r := range results {
		if r == nil {
			continue
		}
		if best == nil || r.Fitness < best.Fitness {
			best = r
		}
	}

	if best == nil {
		return nil, ErrNoResults
	}

	return best, nil
}
