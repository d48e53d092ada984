package midi

import "fmt"

const packedMask = 0x00FFFFFF

/*
PackedWord holds a short MIDI message the way drivers pass it around: the
status byte in bits 0-7, the first parameter in bits 8-15 and the second
parameter in bits 16-23. Anything above bit 23 is discarded.
*/
type PackedWord uint32

// NewPackedWord masks v to its low 24 bits.
func NewPackedWord(v int32) PackedWord {
	return PackedWord(uint32(v) & packedMask)
}

// PackBytes builds a PackedWord from its three bytes.
func PackBytes(status, param1, param2 byte) PackedWord {
	return PackedWord(uint32(status) | uint32(param1)<<8 | uint32(param2)<<16)
}

func (w PackedWord) Data() int32 {
	return int32(uint32(w) & packedMask)
}

func (w PackedWord) Status() byte {
	return byte(w)
}

func (w PackedWord) Param1() byte {
	return byte(w >> 8)
}

func (w PackedWord) Param2() byte {
	return byte(w >> 16)
}

func (w *PackedWord) SetStatus(b byte) {
	w.set(0, b)
}

func (w *PackedWord) SetParam1(b byte) {
	w.set(8, b)
}

func (w *PackedWord) SetParam2(b byte) {
	w.set(16, b)
}

func (w *PackedWord) set(shift uint, b byte) {
	*w = PackedWord((uint32(*w) &^ (0xFF << shift) | uint32(b)<<shift) & packedMask)
}

func (w PackedWord) String() string {
	return fmt.Sprintf("%02X %02X %02X", w.Status(), w.Param1(), w.Param2())
}
