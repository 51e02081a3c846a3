package validator

// RunInTransaction runs fn as one render transaction. Debug builds reject
// dirtying a tag that was already consumed inside the transaction; other
// builds just run fn.
func RunInTransaction(label string, fn func() error) error {
	beginTransaction(label)
	defer endTransaction()
	return fn()
}
