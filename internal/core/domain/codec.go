package domain

import (
	"encoding/binary"
	"fmt"
)

// This file implements the deterministic, round-trippable wire codec:
// fixed-width little-endian integers, explicit presence tag bytes (0 = absent, 1 =
// present) and explicit enum discriminants. It is independent of
// badgerhold's own storage encoding — this is the on-chain / index-key
// shape, not the KV engine's internal representation.

const (
	tagAbsent  byte = 0
	tagPresent byte = 1
)

func putUint32LE(dst []byte, v uint32) {
	binary.LittleEndian.PutUint32(dst, v)
}

func putUint64LE(dst []byte, v uint64) {
	binary.LittleEndian.PutUint64(dst, v)
}

// encoder appends a deterministic byte encoding. Zero value is ready to use.
type encoder struct {
	buf []byte
}

func (e *encoder) byte(b byte) {
	e.buf = append(e.buf, b)
}

func (e *encoder) u32(v uint32) {
	var b [4]byte
	putUint32LE(b[:], v)
	e.buf = append(e.buf, b[:]...)
}

func (e *encoder) u64(v uint64) {
	var b [8]byte
	putUint64LE(b[:], v)
	e.buf = append(e.buf, b[:]...)
}

func (e *encoder) fixed(b []byte) {
	e.buf = append(e.buf, b...)
}

// varBytes encodes a length-prefixed byte slice: u32 length + bytes.
func (e *encoder) varBytes(b []byte) {
	e.u32(uint32(len(b)))
	e.buf = append(e.buf, b...)
}

func (e *encoder) str(s string) {
	e.varBytes([]byte(s))
}

func (e *encoder) optU32(v *uint32) {
	if v == nil {
		e.byte(tagAbsent)
		return
	}
	e.byte(tagPresent)
	e.u32(*v)
}

func (e *encoder) optU64(v *uint64) {
	if v == nil {
		e.byte(tagAbsent)
		return
	}
	e.byte(tagPresent)
	e.u64(*v)
}

func (e *encoder) optStr(v *string) {
	if v == nil {
		e.byte(tagAbsent)
		return
	}
	e.byte(tagPresent)
	e.str(*v)
}

func (e *encoder) optFixed(v []byte, present bool) {
	if !present {
		e.byte(tagAbsent)
		return
	}
	e.byte(tagPresent)
	e.fixed(v)
}

func (e *encoder) bytes() []byte {
	return e.buf
}

// decoder reads back values written by encoder, erroring on underrun.
type decoder struct {
	buf []byte
	pos int
}

func newDecoder(b []byte) *decoder {
	return &decoder{buf: b}
}

func (d *decoder) need(n int) error {
	if d.pos+n > len(d.buf) {
		return fmt.Errorf("codec: unexpected end of buffer at offset %d, need %d more bytes", d.pos, n)
	}
	return nil
}

func (d *decoder) byteVal() (byte, error) {
	if err := d.need(1); err != nil {
		return 0, err
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

func (d *decoder) u32() (uint32, error) {
	if err := d.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(d.buf[d.pos : d.pos+4])
	d.pos += 4
	return v, nil
}

func (d *decoder) u64() (uint64, error) {
	if err := d.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(d.buf[d.pos : d.pos+8])
	d.pos += 8
	return v, nil
}

func (d *decoder) fixed(n int) ([]byte, error) {
	if err := d.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, d.buf[d.pos:d.pos+n])
	d.pos += n
	return out, nil
}

func (d *decoder) varBytes() ([]byte, error) {
	n, err := d.u32()
	if err != nil {
		return nil, err
	}
	return d.fixed(int(n))
}

func (d *decoder) str() (string, error) {
	b, err := d.varBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *decoder) optU32() (*uint32, error) {
	tag, err := d.byteVal()
	if err != nil {
		return nil, err
	}
	if tag == tagAbsent {
		return nil, nil
	}
	v, err := d.u32()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (d *decoder) optU64() (*uint64, error) {
	tag, err := d.byteVal()
	if err != nil {
		return nil, err
	}
	if tag == tagAbsent {
		return nil, nil
	}
	v, err := d.u64()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (d *decoder) optStr() (*string, error) {
	tag, err := d.byteVal()
	if err != nil {
		return nil, err
	}
	if tag == tagAbsent {
		return nil, nil
	}
	v, err := d.str()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (d *decoder) optFixed(n int) ([]byte, bool, error) {
	tag, err := d.byteVal()
	if err != nil {
		return nil, false, err
	}
	if tag == tagAbsent {
		return nil, false, nil
	}
	v, err := d.fixed(n)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (d *decoder) done() error {
	if d.pos != len(d.buf) {
		return fmt.Errorf("codec: %d trailing bytes after decode", len(d.buf)-d.pos)
	}
	return nil
}
