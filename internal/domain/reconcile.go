package domain

// Reconcile merges remote into local using last-writer-wins on LastUpdated.
//
// A remote record whose key matches a local record replaces that record's
// fields only when its LastUpdated is strictly greater; each such
// replacement marks the result as conflicted. Remote records with no local
// counterpart are appended in remote order. Neither input is modified.
func Reconcile(local, remote Quotes) (merged Quotes, conflicted bool) {
	merged = make(Quotes, len(local), len(local)+len(remote))
	copy(merged, local)

	// Only records that came from local are candidates; the first one wins.
	index := make(map[string]int, len(local))
	for i, q := range local {
		if _, ok := index[q.Key()]; !ok {
			index[q.Key()] = i
		}
	}

	for _, r := range remote {
		i, ok := index[r.Key()]
		if !ok {
			merged = append(merged, r)
			continue
		}
		if r.LastUpdated > merged[i].LastUpdated {
			merged[i] = r
			conflicted = true
		}
	}

	return merged, conflicted
}
