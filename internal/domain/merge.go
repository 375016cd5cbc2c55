package domain

// MergeResult summarizes a reconciliation pass.
type MergeResult struct {
	// Added is the number of incoming records appended as new.
	Added int

	// Updated is the number of existing records whose category,
	// source, or timestamp changed.
	Updated int
}

// MergeRemote reconciles incoming server candidates into the local
// collection using the server-authoritative-on-conflict policy.
//
// The policy is deliberately a partial merge, not full server authority:
// on a key match (see QuoteRecord.MergeKey) only Category and Source are
// overwritten and UpdatedAt becomes the max of both sides. Text and ID of
// the existing record are preserved — the match key, not the payload,
// determines identity. Unmatched candidates are appended. Records are never
// removed by a merge.
func MergeRemote(local []QuoteRecord, incoming []QuoteRecord) ([]QuoteRecord, MergeResult) {
	byKey := make(map[string]int, len(local))
	for i, q := range local {
		byKey[q.MergeKey()] = i
	}

	var result MergeResult

	for _, cand := range incoming {
		i, ok := byKey[cand.MergeKey()]
		if !ok {
			local = append(local, cand)
			byKey[cand.MergeKey()] = len(local) - 1
			result.Added++

			continue
		}

		existing := &local[i]
		changed := existing.Category != cand.Category || existing.Source != SourceServer

		existing.Category = cand.Category
		existing.Source = SourceServer

		if cand.UpdatedAt > existing.UpdatedAt {
			existing.UpdatedAt = cand.UpdatedAt
			changed = true
		}

		if changed {
			result.Updated++
		}
	}

	return local, result
}
