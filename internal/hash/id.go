package hash

import "github.com/cespare/xxhash/v2"

// ContentKey computes the stable identity of a content prototype from its
// owning source (mod) and its name. The NUL separator keeps ("ab", "c") and
// ("a", "bc") apart.
func ContentKey(source, name string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(source)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(name)

	return d.Sum64()
}

// Digest computes the xxHash64 of a raw buffer.
func Digest(data []byte) uint64 {
	return xxhash.Sum64(data)
}
