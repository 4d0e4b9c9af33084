package lossless

// ColorCache is the VP8L color cache, a hash-addressed table of recently
// seen ARGB pixel values.
type ColorCache struct {
	colors    []uint32
	hashShift uint
}

// hashMul is the multiplicative hash constant used by the VP8L color cache.
const hashMul = 0x1e35a7bd

// NewColorCache allocates a ColorCache with 2^hashBits entries.
// hashBits must be in [1, MaxCacheBits].
func NewColorCache(hashBits int) *ColorCache {
	return &ColorCache{
		colors:    make([]uint32, 1<<hashBits),
		hashShift: uint(32 - hashBits),
	}
}

// HashPix computes the hash-table index for an ARGB value.
func (c *ColorCache) HashPix(argb uint32) int {
	return int((argb * hashMul) >> c.hashShift)
}

// Insert stores an ARGB value at its hashed position.
func (c *ColorCache) Insert(argb uint32) {
	c.colors[c.HashPix(argb)] = argb
}

// Lookup returns the cached color at the given key (hash index).
func (c *ColorCache) Lookup(key int) uint32 {
	return c.colors[key]
}

// Size returns the number of entries.
func (c *ColorCache) Size() int {
	return len(c.colors)
}
