package records

import (
	"fmt"
	"strconv"

	"github.com/zeebo/xxh3"
)

// Fingerprint returns an xxh3 digest of the column set and every row value in
// column order. Two tables with equal columns and equal cell values hash the
// same regardless of map iteration order.
func Fingerprint(t Table) uint64 {
	h := xxh3.New()
	for _, c := range t.Columns {
		_, _ = h.WriteString(c)
		_, _ = h.Write([]byte{0x1f})
	}
	_, _ = h.Write([]byte{0x1e})

	var buf []byte
	for _, r := range t.Rows {
		for _, c := range t.Columns {
			buf = appendValue(buf[:0], r[c])
			_, _ = h.Write(buf)
			_, _ = h.Write([]byte{0x1f})
		}
		_, _ = h.Write([]byte{0x1e})
	}
	return h.Sum64()
}

// appendValue encodes v with a one-byte kind tag so "1" and 1 differ.
func appendValue(b []byte, v any) []byte {
	switch x := v.(type) {
	case nil:
		return append(b, 0)
	case string:
		return append(append(b, 's'), x...)
	case int64:
		return strconv.AppendInt(append(b, 'i'), x, 10)
	case int:
		return strconv.AppendInt(append(b, 'i'), int64(x), 10)
	case float64:
		return strconv.AppendFloat(append(b, 'f'), x, 'g', -1, 64)
	case bool:
		return strconv.AppendBool(append(b, 'b'), x)
	default:
		return fmt.Appendf(append(b, '?'), "%v", x)
	}
}
