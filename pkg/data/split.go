package data

// SplitByQID partitions records into train/vali/test sets by distinct
// query id. Records sharing a qid always land in the same partition.
// QIDs are taken in first-seen order without shuffling, keeping the
// split chronological.
func SplitByQID(records []*Record, trainRatio, valiRatio float64) (train, vali, test []*Record) {
	var qids []int
	seen := make(map[int]bool)
	for _, r := range records {
		if !seen[r.QID] {
			seen[r.QID] = true
			qids = append(qids, r.QID)
		}
	}

	trainSize := int(trainRatio * float64(len(qids)))
	valiSize := int(valiRatio * float64(len(qids)))

	part := make(map[int]int, len(qids)) // qid -> 0 train, 1 vali, 2 test
	for i, qid := range qids {
		switch {
		case i < trainSize:
			part[qid] = 0
		case i < trainSize+valiSize:
			part[qid] = 1
		default:
			part[qid] = 2
		}
	}

	for _, r := range records {
		switch part[r.QID] {
		case 0:
			train = append(train, r)
		case 1:
			vali = append(vali, r)
		default:
			test = append(test, r)
		}
	}

	return train, vali, test
}

// CountQIDs returns the number of distinct query ids in records.
func CountQIDs(records []*Record) int {
	seen := make(map[int]bool)
	for _, r := range records {
		seen[r.QID] = true
	}
	return len(seen)
}
