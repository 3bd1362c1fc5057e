package volume

// DefaultCapacity is the source offset at which the compressed region of an
// 800K backup disc ends. Continuation records stop decoding there.
const DefaultCapacity int64 = 0xB4000

// CapacityFunc returns the capacity boundary of the volume at path.
// A result of zero or less disables the boundary.
type CapacityFunc func(path string) int64

// FixedCapacity returns a CapacityFunc reporting n for every volume.
func FixedCapacity(n int64) CapacityFunc {
	return func(string) int64 { return n }
}

// CapacityFor resolves the boundary for a volume of the given size: the
// configured capacity, clipped to the image size.
func CapacityFor(fn CapacityFunc, path string, size int64) int64 {
	c := DefaultCapacity
	if fn != nil {
		c = fn(path)
	}
	if c <= 0 {
		return 0
	}
	if size > 0 && c > size {
		return size
	}
	return c
}
