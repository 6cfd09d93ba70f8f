package runtime

import (
	"bytes"
	"io"
)

type sepMode uint8

const (
	sepChar sepMode = iota
	sepParagraph
	sepRegex
)

// RecordSep says how input is cut into records.
type RecordSep struct {
	mode sepMode
	ch   byte
	re   *Regex
}

// CharSep separates records at every occurrence of c. The default
// newline separator is CharSep('\n').
func CharSep(c byte) RecordSep {
	return RecordSep{mode: sepChar, ch: c}
}

// ParagraphSep separates records at runs of blank lines; leading and
// trailing newlines of the input are ignored.
func ParagraphSep() RecordSep {
	return RecordSep{mode: sepParagraph}
}

// RegexSep separates records at non-empty matches of re.
func RegexSep(re *Regex) RecordSep {
	return RecordSep{mode: sepRegex, re: re}
}

// IsParagraph reports whether s is paragraph mode.
func (s RecordSep) IsParagraph() bool {
	return s.mode == sepParagraph
}

const minRead = 4096

// RecordReader reads separator-delimited records. It owns its buffer: a
// record may span any number of reads from the underlying stream, and
// regex and paragraph separators may need lookahead past the end of
// what has been read so far.
type RecordReader struct {
	r     io.Reader
	buf   []byte
	start int // first unconsumed byte
	end   int // end of buffered data
	eof   bool
	err   error
}

// NewRecordReader returns a reader over r.
func NewRecordReader(r io.Reader) *RecordReader {
	return &RecordReader{r: r, buf: make([]byte, minRead)}
}

// fill reads more data, compacting and growing the buffer as needed.
func (rr *RecordReader) fill() {
	if rr.start > 0 {
		rr.end = copy(rr.buf, rr.buf[rr.start:rr.end])
		rr.start = 0
	}
	if rr.end == len(rr.buf) {
		grown := make([]byte, 2*len(rr.buf))
		copy(grown, rr.buf[:rr.end])
		rr.buf = grown
	}
	n, err := rr.r.Read(rr.buf[rr.end:])
	rr.end += n
	if err != nil {
		rr.eof = true
		if err != io.EOF {
			rr.err = err
		}
	}
}

// Read returns the next record without its terminator. It returns io.EOF
// when the input is exhausted, or the underlying read error.
func (rr *RecordReader) Read(sep RecordSep) (string, error) {
	if sep.mode == sepParagraph {
		rr.skipNewlines()
	}
	scanned := 0 // bytes after start already known to hold no separator
	for {
		data := rr.buf[rr.start:rr.end]
		switch sep.mode {
		case sepChar:
			if i := bytes.IndexByte(data[scanned:], sep.ch); i >= 0 {
				i += scanned
				rr.start += i + 1
				return string(data[:i]), nil
			}
			scanned = len(data)
		case sepParagraph:
			if i := bytes.Index(data[scanned:], []byte("\n\n")); i >= 0 {
				i += scanned
				j := i
				for j < len(data) && data[j] == '\n' {
					j++
				}
				if j < len(data) || rr.eof {
					rr.start += j
					return string(data[:i]), nil
				}
			} else if len(data) > 0 {
				scanned = len(data) - 1
			}
		case sepRegex:
			if rec, n, ok := rr.matchRegex(sep.re, data); ok {
				rr.start += n
				return rec, nil
			}
		}

		if rr.eof {
			if rr.start == rr.end {
				if rr.err != nil {
					return "", rr.err
				}
				return "", io.EOF
			}
			rec := data
			if sep.mode == sepParagraph {
				rec = bytes.TrimRight(rec, "\n")
			}
			rr.start = rr.end
			return string(rec), nil
		}
		rr.fill()
	}
}

// matchRegex finds the first non-empty separator match in data. A match
// touching the end of the buffer might grow with more input, so it only
// counts once the input is exhausted.
func (rr *RecordReader) matchRegex(re *Regex, data []byte) (string, int, bool) {
	s := string(data)
	for _, loc := range re.FindAllStringIndex(s, -1) {
		if loc[1] == loc[0] {
			continue
		}
		if loc[1] == len(s) && !rr.eof {
			return "", 0, false
		}
		return s[:loc[0]], loc[1], true
	}
	return "", 0, false
}

func (rr *RecordReader) skipNewlines() {
	for {
		for rr.start < rr.end && rr.buf[rr.start] == '\n' {
			rr.start++
		}
		if rr.start < rr.end || rr.eof {
			return
		}
		rr.fill()
	}
}
