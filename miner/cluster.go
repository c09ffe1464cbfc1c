package miner

// Cluster is a set of concrete URLs sharing one abstract pattern. URLs
// keep their first-seen order; clusters keep the first-seen order of
// their patterns, so analysis output is deterministic for the same input
// sequence.
type Cluster struct {
	Pattern string
	URLs    []string
}

// ClusterURLs groups URLs by their computed pattern. The grouping key set
// is exactly the set of distinct patterns produced.
func ClusterURLs(urls []string) []Cluster {
	index := make(map[string]int, len(urls))
	var clusters []Cluster
	for _, u := range urls {
		pattern := URLToPattern(u)
		i, ok := index[pattern]
		if !ok {
			i = len(clusters)
			index[pattern] = i
			clusters = append(clusters, Cluster{Pattern: pattern})
		}
		clusters[i].URLs = append(clusters[i].URLs, u)
	}
	return clusters
}
