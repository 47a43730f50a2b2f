package dataprocessing

import (
	"bufio"
	"bytes"
	"io"
	"math"
	"strconv"
)

// WriteTraffic encodes a table in the counter file format: one line per row,
// the id then the values, space separated, no header.
func WriteTraffic(w io.Writer, t *RawTable) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 32)
	for i, id := range t.IDs {
		if _, err := bw.WriteString(id); err != nil {
			return err
		}
		for _, v := range t.Values[i] {
			buf = buf[:0]
			buf = append(buf, ' ')
			if math.IsNaN(v) {
				buf = append(buf, "nan"...)
			} else {
				buf = strconv.AppendFloat(buf, v, 'f', -1, 64)
			}
			if _, err := bw.Write(buf); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// EncodeTraffic returns the encoded table.
func EncodeTraffic(t *RawTable) []byte {
	var b bytes.Buffer
	// a bytes.Buffer never fails to write
	_ = WriteTraffic(&b, t)
	return b.Bytes()
}
