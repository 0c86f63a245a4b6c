package host

// DJB-style hashing, combined field by field. The exact constants do
// not matter as long as hashes are deterministic within a process.

const djbInit uint64 = 5381

func djbCombine(acc, h uint64) uint64 {
	return acc*33 + h
}

func hashString(s string) uint64 {
	h := djbInit
	for i := 0; i < len(s); i++ {
		h = djbCombine(h, uint64(s[i]))
	}
	return h
}

func hashUint(u uint64) uint64 {
	return djbCombine(djbInit, u)
}

// combineFields folds a tag and field hashes into one hash. If any
// field collapses to the sentinel the whole value does: a composite
// containing an unhashable part is itself unhashable.
func combineFields(tag uint32, fields []Value) uint64 {
	h := djbCombine(djbInit, uint64(tag)+1)
	for _, f := range fields {
		fh := f.Hash()
		if fh == SentinelHash {
			return SentinelHash
		}
		h = djbCombine(h, fh)
	}
	if h == SentinelHash {
		h = 1
	}
	return h
}
