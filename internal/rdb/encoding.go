package rdb

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
)

// ErrMalformed is returned for any structurally invalid RDB byte sequence:
// a bad size-encoding prefix, an unsupported (LZF) string encoding, or an
// unsupported key-entry type flag.
var ErrMalformed = errors.New("rdb: malformed snapshot")

const (
	opMetadata   = 0xFA
	opDBSelect   = 0xFE
	opResizeDB   = 0xFB
	opExpireSecs = 0xFD
	opExpireMS   = 0xFC
	opEOF        = 0xFF

	typeString = 0x00
	typeList   = 0x01
	typeSet    = 0x02

	sizeEnc6Bit  = 0x00
	sizeEnc14Bit = 0x40
	sizeEnc32Bit = 0x80
	sizeEncSpec  = 0xC0

	sizeEncMask = 0xC0

	encInt8  = 0xC0
	encInt16 = 0xC1
	encInt32 = 0xC2
)

func writeSize(w *bufio.Writer, n int) error {
	switch {
	case n < 1<<6:
		return w.WriteByte(byte(n))
	case n < 1<<14:
		if err := w.WriteByte(sizeEnc14Bit | byte(n>>8)); err != nil {
			return err
		}
		return w.WriteByte(byte(n))
	default:
		if err := w.WriteByte(sizeEnc32Bit); err != nil {
			return err
		}
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], uint32(n))
		_, err := w.Write(buf[:])
		return err
	}
}

func writeString(w *bufio.Writer, b []byte) error {
	if err := writeSize(w, len(b)); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// readSize reads a size-encoding field. If the field is instead a "special
// string encoding" (top bits 11), encoded is true and encByte carries the
// full first byte for readString to interpret; n is meaningless in that
// case.
func readSize(r *bufio.Reader) (n int, encoded bool, encByte byte, err error) {
	b0, err := r.ReadByte()
	if err != nil {
		return 0, false, 0, err
	}
	switch b0 & sizeEncMask {
	case sizeEnc6Bit:
		return int(b0 & 0x3f), false, 0, nil
	case sizeEnc14Bit:
		b1, err := r.ReadByte()
		if err != nil {
			return 0, false, 0, err
		}
		return int(b0&0x3f)<<8 | int(b1), false, 0, nil
	case sizeEnc32Bit:
		if b0 != sizeEnc32Bit {
			return 0, false, 0, fmt.Errorf("%w: unsupported 32-bit size prefix 0x%02x", ErrMalformed, b0)
		}
		var buf [4]byte
		if _, err := readFull(r, buf[:]); err != nil {
			return 0, false, 0, err
		}
		return int(binary.BigEndian.Uint32(buf[:])), false, 0, nil
	default: // sizeEncSpec, 0xC0
		return 0, true, b0, nil
	}
}

func readFull(r *bufio.Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func readString(r *bufio.Reader) ([]byte, error) {
	n, encoded, encByte, err := readSize(r)
	if err != nil {
		return nil, err
	}
	if !encoded {
		buf := make([]byte, n)
		if _, err := readFull(r, buf); err != nil {
			return nil, err
		}
		return buf, nil
	}

	switch encByte {
	case encInt8:
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		return []byte(strconv.FormatInt(int64(int8(b)), 10)), nil
	case encInt16:
		var buf [2]byte
		if _, err := readFull(r, buf[:]); err != nil {
			return nil, err
		}
		v := int16(binary.LittleEndian.Uint16(buf[:]))
		return []byte(strconv.FormatInt(int64(v), 10)), nil
	case encInt32:
		var buf [4]byte
		if _, err := readFull(r, buf[:]); err != nil {
			return nil, err
		}
		v := int32(binary.LittleEndian.Uint32(buf[:]))
		return []byte(strconv.FormatInt(int64(v), 10)), nil
	default:
		return nil, fmt.Errorf("%w: unsupported string encoding 0x%02x (LZF compression not implemented)", ErrMalformed, encByte)
	}
}
