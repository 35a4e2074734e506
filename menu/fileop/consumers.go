package fileop

import (
	"fmt"
	"hash/crc32"
	"io"

	"sdmenu/menu/render"
)

// Type writes text with non-printable bytes escaped as \xNN. Newlines and
// tabs pass through.
type Type struct {
	w   io.Writer
	out []byte
}

func NewType(w io.Writer) *Type { return &Type{w: w} }

func (t *Type) Consume(_ uint32, chunk []byte) error {
	t.out = t.out[:0]
	for _, b := range chunk {
		if (b < ' ' || b > '~') && b != '\n' && b != '\t' {
			t.out = fmt.Appendf(t.out, "\\x%02x", b)
			continue
		}
		t.out = append(t.out, b)
	}
	_, err := t.w.Write(t.out)
	return err
}

// Dump writes a hex and ASCII listing, sixteen bytes per line.
type Dump struct {
	w    io.Writer
	line [16]byte
	n    int
}

func NewDump(w io.Writer) *Dump { return &Dump{w: w} }

func (d *Dump) Consume(off uint32, chunk []byte) error {
	for _, b := range chunk {
		col := int(off & 0xf)
		if col == 0 {
			fmt.Fprintf(d.w, "%08x: ", off)
		} else if col == 8 {
			io.WriteString(d.w, " ")
		}
		fmt.Fprintf(d.w, "%02x ", b)
		d.line[col] = b
		d.n = col + 1
		if col == 15 {
			fmt.Fprintf(d.w, " |%s|\n", printable(d.line[:]))
			d.n = 0
		}
		off++
	}
	return nil
}

// Finish pads a partial last line. Its ASCII column shows only the bytes read.
func (d *Dump) Finish(uint32) {
	if d.n == 0 {
		return
	}
	for col := d.n; col < 16; col++ {
		if col == 8 {
			io.WriteString(d.w, " ")
		}
		io.WriteString(d.w, "   ")
	}
	fmt.Fprintf(d.w, " |%s\n", printable(d.line[:d.n]))
	d.n = 0
}

func printable(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		if c < ' ' || c > '~' {
			c = '.'
		}
		out[i] = c
	}
	return out
}

// CRC computes the CRC-32 (IEEE) of a file and shows progress every 16 KiB
// when w is set.
type CRC struct {
	w   io.Writer
	sum uint32
}

func NewCRC(w io.Writer) *CRC { return &CRC{w: w} }

func (c *CRC) Consume(off uint32, chunk []byte) error {
	c.sum = crc32.Update(c.sum, crc32.IEEETable, chunk)
	if c.w != nil && off&0x3fff == 0 {
		fmt.Fprintf(c.w, "\r%-4.4s", render.FriendlySize(off))
	}
	return nil
}

// Sum returns the checksum of everything consumed so far.
func (c *CRC) Sum() uint32 { return c.sum }
