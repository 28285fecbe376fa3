package codegen

import (
	"fmt"

	"github.com/PeterBassett/Compiler-sub001/report"
)

// memRef is a memory operand: a base register or data name plus an offset.
type memRef struct {
	base   string
	offset int
}

func (m memRef) String() string {
	switch {
	case m.offset > 0:
		return fmt.Sprintf("[%s+%d]", m.base, m.offset)
	case m.offset < 0:
		return fmt.Sprintf("[%s-%d]", m.base, -m.offset)
	}

	return "[" + m.base + "]"
}

// plus returns the operand `n` bytes further on.
func (m memRef) plus(n int) memRef {
	return memRef{base: m.base, offset: m.offset + n}
}

// at returns the operand addressing the memory held in a register.
func at(reg string) memRef {
	return memRef{base: reg}
}

// suffix returns the mnemonic suffix for a value of the given size.
func suffix(size int) string {
	switch size {
	case 1:
		return "b"
	case 2:
		return "w"
	case 4:
		return ""
	case 8:
		return "f"
	}

	report.ICE("no instruction width for a %d byte value", size)
	return ""
}

// chunkWidths are the widths block moves are made of, largest first.
var chunkWidths = [...]int{8, 4, 2, 1}

// chunks splits a block of `size` bytes into the fewest chunks by greedily
// choosing the largest width that fits the remaining bytes.
func chunks(size int) []int {
	var widths []int
	for size > 0 {
		for _, w := range chunkWidths {
			if w <= size {
				widths = append(widths, w)
				size -= w
				break
			}
		}
	}

	return widths
}

// copyBlock emits a memory-to-memory copy of `size` bytes from `src` to `dst`.
func (g *Generator) copyBlock(dst, src memRef, size int) {
	offset := 0
	for _, w := range chunks(size) {
		g.emit("MOV%s %s, %s", suffix(w), dst.plus(offset), src.plus(offset))
		offset += w
	}
}

// zeroBlock emits the zeroing of `size` bytes at `dst`.
func (g *Generator) zeroBlock(dst memRef, size int) {
	offset := 0
	for _, w := range chunks(size) {
		g.emit("MOV%s %s, 0", suffix(w), dst.plus(offset))
		offset += w
	}
}
