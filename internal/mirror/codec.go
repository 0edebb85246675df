package mirror

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// decodeValue coerces a single database cell into a JSON-compatible value.
// It is total: every driver value maps to something encodable.
//
// Blobs become lowercase hex strings, non-finite floats fall back to their
// textual rendering, text is repaired with lossy UTF-8 substitution and
// NULL stays null.
func decodeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return hex.EncodeToString(val)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return strconv.FormatFloat(val, 'g', -1, 64)
		}
		return val
	case int64:
		return val
	case string:
		return strings.ToValidUTF8(val, "�")
	case bool:
		return val
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(val)
	}
}

// Row is one query result row. It marshals as a JSON object whose key
// order follows the column order of the statement.
type Row struct {
	columns []string
	values  []any
}

func newRow(capacity int) Row {
	return Row{
		columns: make([]string, 0, capacity),
		values:  make([]any, 0, capacity),
	}
}

// set appends a column or, when the name repeats, overwrites the value at
// the column's first position. Last value wins.
func (r *Row) set(column string, value any) {
	for i, existing := range r.columns {
		if existing == column {
			r.values[i] = value
			return
		}
	}
	r.columns = append(r.columns, column)
	r.values = append(r.values, value)
}

// Value returns the decoded cell for the named column.
func (r Row) Value(column string) (any, bool) {
	for i, existing := range r.columns {
		if existing == column {
			return r.values[i], true
		}
	}
	return nil, false
}

// Columns returns the column names in statement order.
func (r Row) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
