// Package rdb implements the binary snapshot format used to persist a
// store.Store to disk: a Redis-RDB-shaped header, metadata entries, one
// database section listing live string/list/set keys, and a CRC64-guarded
// end marker. See DESIGN.md for the exact byte layout this follows.
package rdb

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mediocregopher/tiniredis/internal/store"
	"github.com/mediocregopher/tiniredis/mrand"
)

const (
	header     = "REDIS0011"
	metaVerKey = "tiniredis-ver"
	metaVer    = "1"
)

// Save serializes every live string/list/set key in s to a binary snapshot
// and atomically installs it at path: the snapshot is written to a sibling
// temp file in the same directory, then renamed over path, so a crash
// mid-write never corrupts an existing snapshot.
func Save(s *store.Store, path string) error {
	entries := s.Snapshot()

	var body bytes.Buffer
	w := bufio.NewWriter(&body)

	if _, err := w.WriteString(header); err != nil {
		return err
	}
	if err := writeMetadata(w, metaVerKey, metaVer); err != nil {
		return err
	}
	if err := writeDatabase(w, entries); err != nil {
		return err
	}
	if err := w.WriteByte(opEOF); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}

	sum := crc64(body.Bytes())
	var sumBuf [8]byte
	binary.LittleEndian.PutUint64(sumBuf[:], sum)
	if _, err := body.Write(sumBuf[:]); err != nil {
		return err
	}

	return writeAtomic(path, body.Bytes())
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%s", filepath.Base(path), mrand.Hex(8)))

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func writeMetadata(w *bufio.Writer, name, value string) error {
	if err := w.WriteByte(opMetadata); err != nil {
		return err
	}
	if err := writeString(w, []byte(name)); err != nil {
		return err
	}
	return writeString(w, []byte(value))
}

func writeDatabase(w *bufio.Writer, entries []store.SnapshotEntry) error {
	if err := w.WriteByte(opDBSelect); err != nil {
		return err
	}
	if err := writeSize(w, 0); err != nil { // db index 0, the only database
		return err
	}
	if err := w.WriteByte(opResizeDB); err != nil {
		return err
	}

	expireCount := 0
	for _, e := range entries {
		if !e.ExpiresAt.IsZero() {
			expireCount++
		}
	}
	if err := writeSize(w, len(entries)); err != nil {
		return err
	}
	if err := writeSize(w, expireCount); err != nil {
		return err
	}

	written := 0
	writtenExpires := 0
	for _, e := range entries {
		if !e.ExpiresAt.IsZero() {
			writtenExpires++
		}
		if err := writeKeyEntry(w, e); err != nil {
			return err
		}
		written++
	}
	if written != len(entries) || writtenExpires != expireCount {
		return fmt.Errorf("rdb: integrity check failed: wrote %d/%d keys, %d/%d with expiry",
			written, len(entries), writtenExpires, expireCount)
	}
	return nil
}

func writeKeyEntry(w *bufio.Writer, e store.SnapshotEntry) error {
	if !e.ExpiresAt.IsZero() {
		if err := w.WriteByte(opExpireMS); err != nil {
			return err
		}
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(e.ExpiresAt.UnixMilli()))
		if _, err := w.Write(buf[:]); err != nil {
			return err
		}
	}

	var typeFlag byte
	switch e.Kind {
	case store.KindString:
		typeFlag = typeString
	case store.KindList:
		typeFlag = typeList
	case store.KindSet:
		typeFlag = typeSet
	default:
		return fmt.Errorf("rdb: Variant %s has no RDB type flag", e.Kind)
	}
	if err := w.WriteByte(typeFlag); err != nil {
		return err
	}
	if err := writeString(w, []byte(e.Key)); err != nil {
		return err
	}

	switch e.Kind {
	case store.KindString:
		return writeString(w, e.Str)
	case store.KindList:
		if err := writeSize(w, len(e.List)); err != nil {
			return err
		}
		for _, v := range e.List {
			if err := writeString(w, v); err != nil {
				return err
			}
		}
	case store.KindSet:
		if err := writeSize(w, len(e.Set)); err != nil {
			return err
		}
		for _, m := range e.Set {
			if err := writeString(w, []byte(m)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Load reads the snapshot at path and installs its contents into s,
// converting each key's Unix-epoch expiry (if any) to a remaining TTL and
// skipping keys already expired as of now. s is expected to be empty;
// Load doesn't clear it first.
func Load(path string, s *store.Store) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(data) < len(header)+8 {
		return fmt.Errorf("%w: file too short", ErrMalformed)
	}

	sum := binary.LittleEndian.Uint64(data[len(data)-8:])
	body := data[:len(data)-8]
	if crc64(body) != sum {
		return fmt.Errorf("%w: CRC64 checksum mismatch", ErrMalformed)
	}

	r := bufio.NewReader(bytes.NewReader(body))
	hdr := make([]byte, len(header))
	if _, err := readFull(r, hdr); err != nil {
		return err
	}
	if string(hdr) != header {
		return fmt.Errorf("%w: bad header %q", ErrMalformed, hdr)
	}

	now := time.Now()
	for {
		op, err := r.ReadByte()
		if err == io.EOF {
			return fmt.Errorf("%w: missing end marker", ErrMalformed)
		}
		if err != nil {
			return err
		}

		switch op {
		case opEOF:
			return nil
		case opMetadata:
			if _, err := readString(r); err != nil {
				return err
			}
			if _, err := readString(r); err != nil {
				return err
			}
		case opDBSelect:
			if _, _, _, err := readSize(r); err != nil {
				return err
			}
			if err := loadDatabase(r, s, now); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unexpected top-level byte 0x%02x", ErrMalformed, op)
		}
	}
}

func loadDatabase(r *bufio.Reader, s *store.Store, now time.Time) error {
	resizeOp, err := r.ReadByte()
	if err != nil {
		return err
	}
	if resizeOp != opResizeDB {
		return fmt.Errorf("%w: expected RESIZEDB marker, got 0x%02x", ErrMalformed, resizeOp)
	}
	dbSize, _, _, err := readSize(r)
	if err != nil {
		return err
	}
	if _, _, _, err := readSize(r); err != nil { // expire_size, informational only
		return err
	}

	for i := 0; i < dbSize; i++ {
		if err := loadKeyEntry(r, s, now); err != nil {
			return err
		}
	}
	return nil
}

func loadKeyEntry(r *bufio.Reader, s *store.Store, now time.Time) error {
	op, err := r.ReadByte()
	if err != nil {
		return err
	}

	var expiresAt time.Time
	switch op {
	case opExpireSecs:
		var buf [4]byte
		if _, err := readFull(r, buf[:]); err != nil {
			return err
		}
		expiresAt = time.Unix(int64(binary.LittleEndian.Uint32(buf[:])), 0)
		op, err = r.ReadByte()
		if err != nil {
			return err
		}
	case opExpireMS:
		var buf [8]byte
		if _, err := readFull(r, buf[:]); err != nil {
			return err
		}
		expiresAt = time.UnixMilli(int64(binary.LittleEndian.Uint64(buf[:])))
		op, err = r.ReadByte()
		if err != nil {
			return err
		}
	}

	keyBytes, err := readString(r)
	if err != nil {
		return err
	}
	key := string(keyBytes)

	if !expiresAt.IsZero() && now.After(expiresAt) {
		// Already expired: still must consume the value bytes to stay in
		// sync with the stream, just don't install it.
		return discardValue(r, op)
	}

	switch op {
	case typeString:
		val, err := readString(r)
		if err != nil {
			return err
		}
		s.LoadString(key, val, expiresAt)
	case typeList:
		n, _, _, err := readSize(r)
		if err != nil {
			return err
		}
		vals := make([][]byte, n)
		for i := range vals {
			v, err := readString(r)
			if err != nil {
				return err
			}
			vals[i] = v
		}
		s.LoadList(key, vals, expiresAt)
	case typeSet:
		n, _, _, err := readSize(r)
		if err != nil {
			return err
		}
		members := make([]string, n)
		for i := range members {
			v, err := readString(r)
			if err != nil {
				return err
			}
			members[i] = string(v)
		}
		s.LoadSet(key, members, expiresAt)
	default:
		return fmt.Errorf("%w: unsupported key type flag 0x%02x", ErrMalformed, op)
	}
	return nil
}

func discardValue(r *bufio.Reader, typeFlag byte) error {
	switch typeFlag {
	case typeString:
		_, err := readString(r)
		return err
	case typeList, typeSet:
		n, _, _, err := readSize(r)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if _, err := readString(r); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unsupported key type flag 0x%02x", ErrMalformed, typeFlag)
	}
}
