// Package batch splits ordered sequences into bounded-size groups.
package batch

// Chunk splits items into consecutive groups of at most size elements,
// preserving order across and within groups. Each group is a fresh slice, so
// neither the input nor its backing array is touched by later appends.
// Empty input yields no groups. size must be positive.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		panic("batch: chunk size must be positive")
	}
	if len(items) == 0 {
		return nil
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		group := make([]T, end-start)
		copy(group, items[start:end])
		out = append(out, group)
	}
	return out
}
