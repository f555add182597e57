//go:build amd64 || arm64 || ppc64 || ppc64le || mips64 || mips64le || riscv64 || s390x || wasm

package arena

// Word-size-derived TLSF geometry for 64-bit targets. MIN_FLI and MAX_FLI
// follow spec.md §4.1 exactly: MIN_FLI = log2(wordSize) + SLI_LOG2,
// MAX_FLI = target_word_bits - 2.
const (
	wordSizeBits = 64
	wordSize     = wordSizeBits / 8
	minFLI       = 8  // log2(8) + 5
	maxFLI       = 62 // wordSizeBits - 2
)
