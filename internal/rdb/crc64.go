package rdb

// The Redis RDB checksum variant: polynomial 0xad93d23594c935a9 given already
// reflected, initial value 0, no output XOR. This isn't any of the
// polynomials hash/crc64's ISO/ECMA tables cover (those also start the
// running CRC at all-ones), so the table and update loop are hand-rolled
// here rather than wrapping hash/crc64.
const crc64Poly = 0xad93d23594c935a9

var crc64Table [256]uint64

func init() {
	for i := 0; i < 256; i++ {
		crc := uint64(i)
		for j := 0; j < 8; j++ {
			if crc&1 == 1 {
				crc = (crc >> 1) ^ crc64Poly
			} else {
				crc >>= 1
			}
		}
		crc64Table[i] = crc
	}
}

// crc64 computes the Redis-variant CRC64 checksum of data.
func crc64(data []byte) uint64 {
	var crc uint64
	for _, b := range data {
		crc = crc64Table[byte(crc)^b] ^ (crc >> 8)
	}
	return crc
}
