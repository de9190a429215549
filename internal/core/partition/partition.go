package partition

import "hash/fnv"

// Count is the fixed number of logical partitions.
const Count = 256

// For returns the partition for a key.
// Stable and deterministic: the same key always maps to the same partition.
func For(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % Count)
}

// ForPair returns the partition of a (user, product) pair. The NUL
// separator keeps ("ab","c") and ("a","bc") apart.
func ForPair(userID, productID string) int {
	return For(userID + "\x00" + productID)
}
