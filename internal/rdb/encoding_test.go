package rdb

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadSizeRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 63, 64, 1000, 16383, 16384, 1 << 20} {
		var buf bytes.Buffer
		w := bufio.NewWriter(&buf)
		require.NoError(t, writeSize(w, n))
		require.NoError(t, w.Flush())

		got, encoded, _, err := readSize(bufio.NewReader(&buf))
		require.NoError(t, err)
		assert.False(t, encoded)
		assert.Equal(t, n, got)
	}
}

func TestWriteReadStringRoundTrip(t *testing.T) {
	for _, s := range []string{"", "a", "hello world", string(make([]byte, 5000))} {
		var buf bytes.Buffer
		w := bufio.NewWriter(&buf)
		require.NoError(t, writeString(w, []byte(s)))
		require.NoError(t, w.Flush())

		got, err := readString(bufio.NewReader(&buf))
		require.NoError(t, err)
		assert.Equal(t, []byte(s), got)
	}
}

func TestReadStringIntegerEncodings(t *testing.T) {
	cases := []struct {
		bytes []byte
		want  string
	}{
		{[]byte{encInt8, 0x7f}, "127"},
		{[]byte{encInt8, 0x9c}, "-100"}, // -100 as int8
	}
	for _, c := range cases {
		got, err := readString(bufio.NewReader(bytes.NewReader(c.bytes)))
		require.NoError(t, err)
		assert.Equal(t, c.want, string(got))
	}
}

func TestReadStringRejectsLZFEncoding(t *testing.T) {
	_, err := readString(bufio.NewReader(bytes.NewReader([]byte{0xC3, 0x00})))
	assert.ErrorIs(t, err, ErrMalformed)
}
