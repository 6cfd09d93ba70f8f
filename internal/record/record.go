// Package record keeps the current input record and its fields
// consistent. Assigning the record invalidates the split, which is
// redone lazily on the first field or NF access; assigning a field or
// NF rebuilds the record from the fields.
package record

import "strings"

// Record is the current input record, $0, with its fields.
type Record struct {
	line   string
	fields []string
	split  bool
	sp     Splitter
}

// New returns an empty record.
func New() *Record {
	return &Record{split: true, sp: DefaultSplitter}
}

// Set replaces the record. It will be split with sp, the separator in
// effect when the record was read, even if FS changes before the fields
// are first used.
func (r *Record) Set(line string, sp Splitter) {
	r.line = line
	r.sp = sp
	r.split = false
}

// Line returns $0.
func (r *Record) Line() string {
	return r.line
}

func (r *Record) ensureSplit() {
	if !r.split {
		r.fields = r.sp.Split(r.line, r.fields)
		r.split = true
	}
}

// NF returns the number of fields.
func (r *Record) NF() int {
	r.ensureSplit()
	return len(r.fields)
}

// Field returns $i for i >= 1; fields past NF are empty.
func (r *Record) Field(i int) string {
	if i == 0 {
		return r.line
	}
	r.ensureSplit()
	if i < 0 || i > len(r.fields) {
		return ""
	}
	return r.fields[i-1]
}

// Fields returns the current fields. The slice is only valid until the
// record next changes.
func (r *Record) Fields() []string {
	r.ensureSplit()
	return r.fields
}

// SetField assigns $i for i >= 1 (smaller i is ignored), extending the record with empty fields
// if needed, and rebuilds $0 joined by ofs.
func (r *Record) SetField(i int, v, ofs string) {
	if i < 1 {
		return
	}
	r.ensureSplit()
	for len(r.fields) < i {
		r.fields = append(r.fields, "")
	}
	r.fields[i-1] = v
	r.rebuild(ofs)
}

// SetNF truncates or pads the fields to n and rebuilds $0 joined by ofs.
func (r *Record) SetNF(n int, ofs string) {
	n = max(n, 0)
	r.ensureSplit()
	if n < len(r.fields) {
		r.fields = r.fields[:n]
	}
	for len(r.fields) < n {
		r.fields = append(r.fields, "")
	}
	r.rebuild(ofs)
}

func (r *Record) rebuild(ofs string) {
	r.line = strings.Join(r.fields, ofs)
	r.split = true
}
