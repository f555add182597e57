package rthash

// defaultHashFn builds the per-key-type hash function spec.md §4.4
// describes: "FNV-1a 32-bit, specialized per primitive type ... Generic
// fallback hashes the object's bytes." Grounded in the teacher's
// defaultHasher[K, V] in mapof.go, which dispatches on `any(*new(K)).(type)`
// to pick a specialized path per primitive kind rather than paying for a
// generic reflection-based hash on every lookup; the specializations here
// call the FNV1a32* family instead of reading runtime type machinery.
func defaultHashFn[K comparable]() func(K) uint32 {
	var zero K
	switch any(zero).(type) {
	case string:
		return func(k K) uint32 { return FNV1a32String(any(k).(string)) }
	case int8:
		return func(k K) uint32 { return FNV1a32Byte(byte(any(k).(int8))) }
	case uint8:
		return func(k K) uint32 { return FNV1a32Byte(any(k).(uint8)) }
	case int16:
		return func(k K) uint32 { return FNV1a32Half(uint16(any(k).(int16))) }
	case uint16:
		return func(k K) uint32 { return FNV1a32Half(any(k).(uint16)) }
	case int32:
		return func(k K) uint32 { return FNV1a32Word(uint32(any(k).(int32))) }
	case uint32:
		return func(k K) uint32 { return FNV1a32Word(any(k).(uint32)) }
	case int64:
		return func(k K) uint32 { return FNV1a32DWord(uint64(any(k).(int64))) }
	case uint64:
		return func(k K) uint32 { return FNV1a32DWord(any(k).(uint64)) }
	case int:
		return func(k K) uint32 { return FNV1a32DWord(uint64(any(k).(int))) }
	case uint:
		return func(k K) uint32 { return FNV1a32DWord(uint64(any(k).(uint))) }
	case uintptr:
		return func(k K) uint32 { return FNV1a32DWord(uint64(any(k).(uintptr))) }
	case float32:
		return func(k K) uint32 { return FNV1a32Float32(any(k).(float32)) }
	case float64:
		return func(k K) uint32 { return FNV1a32Float64(any(k).(float64)) }
	default:
		return func(k K) uint32 { return HashBytesOf(&k) }
	}
}
