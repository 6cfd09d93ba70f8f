package interp

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
	"github.com/oarkflow/date"

	"github.com/kolkov/bbawk/internal/types"
)

const defaultTimeFormat = "%a %b %e %H:%M:%S %Z %Y"

// strftime formats a timestamp (default now) with C strftime directives.
// A true third argument formats in UTC instead of local time.
func (in *Interp) strftime(args []types.Value) (types.Value, error) {
	format := defaultTimeFormat
	if len(args) > 0 {
		format = args[0].AsStr(in.convfmt)
	}
	t := time.Now()
	if len(args) > 1 {
		n := args[1].AsNum()
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return types.Str(""), nil
		}
		t = time.Unix(int64(n), 0)
	}
	if len(args) > 2 && args[2].AsBool() {
		t = t.UTC()
	} else {
		t = t.Local()
	}
	return types.Str(formatTime(t, format)), nil
}

// formatTime renders the C strftime directives of format. %s, the
// seconds since the epoch, is expanded here; the rest is left to
// go-strftime.
func formatTime(t time.Time, format string) string {
	var sb strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 >= len(format) {
			sb.WriteByte(c)
			continue
		}
		i++
		if format[i] == 's' {
			sb.WriteString(strconv.FormatInt(t.Unix(), 10))
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(format[i])
	}
	return strftime.Format(sb.String(), t)
}

// mktime converts "YYYY MM DD HH MM SS [DST]" in local time to seconds
// since the epoch. Out-of-range fields are normalized. Other strings are
// tried as free-form dates; -1 means the string could not be read.
func mktime(spec string) int64 {
	fields := strings.Fields(spec)
	if len(fields) == 6 || len(fields) == 7 {
		var n [6]int
		ok := true
		for i := range n {
			v, err := strconv.Atoi(fields[i])
			if err != nil {
				ok = false
				break
			}
			n[i] = v
		}
		if ok {
			return time.Date(n[0], time.Month(n[1]), n[2], n[3], n[4], n[5], 0, time.Local).Unix()
		}
	}
	if strings.TrimSpace(spec) == "" {
		return -1
	}
	t, err := date.Parse(spec)
	if err != nil {
		return -1
	}
	return t.Unix()
}
