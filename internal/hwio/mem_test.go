package hwio

import (
	"testing"
)

func TestMemReadonly(t *testing.T) {
	var buf Mem
	buf.Data = make([]byte, 0x200)
	buf.Flags = MemFlag8 | MemFlag8ReadOnly

	io := buf.BankIO8()
	for i := 0; i < 8; i++ {
		io.Write8(uint16(i), 0xFF)
	}

	for i := 0; i < 8; i++ {
		if buf.Data[i] != 0 {
			t.Errorf("data written at offset %d", i)
		}
	}
}
