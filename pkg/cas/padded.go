package cas

import "golang.org/x/sys/cpu"

// PaddedInt is an Int followed by a cache line of padding, for cells that are
// hammered by different cores and would otherwise share a line with their
// neighbours.
type PaddedInt struct {
	Int
	_ cpu.CacheLinePad
}

// PaddedInt32 is the 32-bit counterpart of PaddedInt.
type PaddedInt32 struct {
	Int32
	_ cpu.CacheLinePad
}
