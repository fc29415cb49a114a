package reactive

// Batch groups multiple signal writes into a single flush.
// Subscribers of every signal written inside fn are queued and run once,
// when the outermost batch returns. Batches nest; a panic in fn still
// restores the depth and flushes.
//
// Example:
//
//	Batch(func() {
//	    firstName.Set("John")
//	    lastName.Set("Doe")
//	})
//	// an effect reading both runs once
func Batch(fn func()) {
	rt.enter()
	defer rt.exit()
	rt.batchDepth++
	defer func() {
		rt.batchDepth--
		if rt.batchDepth == 0 {
			rt.flush()
		}
	}()
	fn()
}

// Tx runs fn as a transaction, grouping all signal updates.
// It is an alias for Batch.
func Tx(fn func()) {
	Batch(fn)
}
