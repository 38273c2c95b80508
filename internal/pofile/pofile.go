// Package pofile reads and writes gettext PO catalogs. It keeps entries in
// file order and preserves comments, flags and source references so a catalog
// can be loaded, adjusted and saved without losing translator metadata.
package pofile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Reference is one source-occurrence reference from a "#:" comment line.
// Line is zero when the reference carries no line number.
type Reference struct {
	File string
	Line int
}

func (r Reference) String() string {
	if r.Line > 0 {
		return fmt.Sprintf("%s:%d", r.File, r.Line)
	}
	return r.File
}

// Entry is a single message in a catalog. The header entry is the one whose
// MsgID is empty; its MsgStr holds the metadata fields.
type Entry struct {
	TranslatorComments []string    // "# " lines
	ExtractedComments  []string    // "#." lines
	References         []Reference // "#:" lines
	Flags              []string    // "#," line, comma separated
	PreviousComments   []string    // "#|" lines, kept verbatim
	MsgCtxt            string
	MsgID              string
	MsgIDPlural        string
	MsgStr             string
	MsgStrPlural       []string
	Obsolete           bool
}

// HasFlag reports whether the entry carries the named flag.
func (e *Entry) HasFlag(name string) bool {
	for _, f := range e.Flags {
		if f == name {
			return true
		}
	}
	return false
}

// AddFlag appends the named flag unless already present.
func (e *Entry) AddFlag(name string) {
	if !e.HasFlag(name) {
		e.Flags = append(e.Flags, name)
	}
}

// RemoveFlag drops every occurrence of the named flag.
func (e *Entry) RemoveFlag(name string) {
	kept := e.Flags[:0]
	for _, f := range e.Flags {
		if f != name {
			kept = append(kept, f)
		}
	}
	if len(kept) == 0 {
		e.Flags = nil
		return
	}
	e.Flags = kept
}

// File is an in-memory PO catalog.
type File struct {
	Entries []*Entry
}

// Header returns the metadata entry (empty msgid), or nil when the catalog
// has none.
func (f *File) Header() *Entry {
	for _, e := range f.Entries {
		if e.MsgID == "" && !e.Obsolete {
			return e
		}
	}
	return nil
}

// Messages returns every entry except the header, in file order.
func (f *File) Messages() []*Entry {
	out := make([]*Entry, 0, len(f.Entries))
	header := f.Header()
	for _, e := range f.Entries {
		if e != header {
			out = append(out, e)
		}
	}
	return out
}

const (
	sectionNone = iota
	sectionMsgCtxt
	sectionMsgID
	sectionMsgIDPlural
	sectionMsgStr
	sectionMsgStrPlural
)

type parser struct {
	file        *File
	entry       *Entry
	section     int
	pluralIndex int
	sawMsgID    bool
	lineNo      int
}

// ParseFile loads the catalog at path.
func ParseFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	catalog, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return catalog, nil
}

// Parse reads a PO catalog from r.
func Parse(r io.Reader) (*File, error) {
	p := &parser{file: &File{}}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.lineNo++
		if err := p.parseLine(strings.TrimSuffix(scanner.Text(), "\r")); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	p.flush()
	return p.file, nil
}

func (p *parser) current() *Entry {
	if p.entry == nil {
		p.entry = &Entry{}
		p.section = sectionNone
		p.sawMsgID = false
	}
	return p.entry
}

func (p *parser) flush() {
	if p.entry != nil && p.sawMsgID {
		p.file.Entries = append(p.file.Entries, p.entry)
	}
	p.entry = nil
	p.section = sectionNone
	p.sawMsgID = false
}

func (p *parser) parseLine(line string) error {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		p.flush()
		return nil
	}

	obsolete := false
	if strings.HasPrefix(trimmed, "#~") {
		obsolete = true
		trimmed = strings.TrimSpace(trimmed[2:])
		if trimmed == "" {
			return nil
		}
	}

	if strings.HasPrefix(trimmed, "#") && !obsolete {
		return p.parseComment(trimmed)
	}

	if err := p.parseBody(trimmed); err != nil {
		return err
	}
	if obsolete {
		p.current().Obsolete = true
	}
	return nil
}

func (p *parser) parseComment(line string) error {
	// Comments always belong to the entry that follows them.
	if p.sawMsgID {
		p.flush()
	}
	e := p.current()
	switch {
	case strings.HasPrefix(line, "#:"):
		for _, ref := range strings.Fields(line[2:]) {
			e.References = append(e.References, parseReference(ref))
		}
	case strings.HasPrefix(line, "#,"):
		for _, f := range strings.Split(line[2:], ",") {
			if f = strings.TrimSpace(f); f != "" {
				e.Flags = append(e.Flags, f)
			}
		}
	case strings.HasPrefix(line, "#."):
		e.ExtractedComments = append(e.ExtractedComments, strings.TrimPrefix(line[2:], " "))
	case strings.HasPrefix(line, "#|"):
		e.PreviousComments = append(e.PreviousComments, strings.TrimPrefix(line[2:], " "))
	default:
		e.TranslatorComments = append(e.TranslatorComments, strings.TrimPrefix(line[1:], " "))
	}
	return nil
}

func (p *parser) parseBody(line string) error {
	switch {
	case strings.HasPrefix(line, "msgctxt"):
		if p.sawMsgID {
			p.flush()
		}
		return p.startSection(sectionMsgCtxt, strings.TrimSpace(line[len("msgctxt"):]))
	case strings.HasPrefix(line, "msgid_plural"):
		return p.startSection(sectionMsgIDPlural, strings.TrimSpace(line[len("msgid_plural"):]))
	case strings.HasPrefix(line, "msgid"):
		if p.sawMsgID {
			p.flush()
		}
		p.current()
		p.sawMsgID = true
		return p.startSection(sectionMsgID, strings.TrimSpace(line[len("msgid"):]))
	case strings.HasPrefix(line, "msgstr["):
		end := strings.IndexByte(line, ']')
		if end < 0 {
			return fmt.Errorf("line %d: malformed plural msgstr", p.lineNo)
		}
		idx, err := strconv.Atoi(line[len("msgstr["):end])
		if err != nil || idx < 0 {
			return fmt.Errorf("line %d: malformed plural index", p.lineNo)
		}
		p.pluralIndex = idx
		return p.startSection(sectionMsgStrPlural, strings.TrimSpace(line[end+1:]))
	case strings.HasPrefix(line, "msgstr"):
		return p.startSection(sectionMsgStr, strings.TrimSpace(line[len("msgstr"):]))
	case strings.HasPrefix(line, `"`):
		text, err := unquote(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", p.lineNo, err)
		}
		return p.appendText(text)
	}
	return fmt.Errorf("line %d: unexpected input %q", p.lineNo, line)
}

func (p *parser) startSection(section int, rest string) error {
	text, err := unquote(rest)
	if err != nil {
		return fmt.Errorf("line %d: %w", p.lineNo, err)
	}
	p.current()
	p.section = section
	return p.appendText(text)
}

func (p *parser) appendText(text string) error {
	e := p.current()
	switch p.section {
	case sectionMsgCtxt:
		e.MsgCtxt += text
	case sectionMsgID:
		e.MsgID += text
	case sectionMsgIDPlural:
		e.MsgIDPlural += text
	case sectionMsgStr:
		e.MsgStr += text
	case sectionMsgStrPlural:
		for len(e.MsgStrPlural) <= p.pluralIndex {
			e.MsgStrPlural = append(e.MsgStrPlural, "")
		}
		e.MsgStrPlural[p.pluralIndex] += text
	default:
		return fmt.Errorf("line %d: string continuation outside an entry", p.lineNo)
	}
	return nil
}

func parseReference(ref string) Reference {
	if idx := strings.LastIndexByte(ref, ':'); idx > 0 {
		if line, err := strconv.Atoi(ref[idx+1:]); err == nil && line > 0 {
			return Reference{File: ref[:idx], Line: line}
		}
	}
	return Reference{File: ref}
}

func unquote(s string) (string, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", fmt.Errorf("expected quoted string, got %q", s)
	}
	body := s[1 : len(s)-1]
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] != '\\' || i+1 >= len(body) {
			b.WriteByte(body[i])
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte('\\')
			b.WriteByte(body[i])
		}
	}
	return b.String(), nil
}

// refLineLimit keeps "#:" lines near the width msgcat itself produces.
const refLineLimit = 76

// Write serializes the catalog in gettext text form.
func (f *File) Write(w io.Writer) error {
	for i, e := range f.Entries {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := e.write(w); err != nil {
			return err
		}
	}
	return nil
}

// SaveFile writes the catalog to path, replacing any previous contents.
func (f *File) SaveFile(path string) error {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func (e *Entry) write(w io.Writer) error {
	var b strings.Builder
	for _, c := range e.TranslatorComments {
		writeComment(&b, "#", c)
	}
	for _, c := range e.ExtractedComments {
		writeComment(&b, "#.", c)
	}
	writeReferences(&b, e.References)
	if len(e.Flags) > 0 {
		b.WriteString("#, " + strings.Join(e.Flags, ", ") + "\n")
	}
	for _, c := range e.PreviousComments {
		writeComment(&b, "#|", c)
	}

	prefix := ""
	if e.Obsolete {
		prefix = "#~ "
	}
	if e.MsgCtxt != "" {
		writeKeyword(&b, prefix, "msgctxt", e.MsgCtxt)
	}
	writeKeyword(&b, prefix, "msgid", e.MsgID)
	if e.MsgIDPlural != "" {
		writeKeyword(&b, prefix, "msgid_plural", e.MsgIDPlural)
		forms := e.MsgStrPlural
		if len(forms) == 0 {
			forms = []string{""}
		}
		for i, form := range forms {
			writeKeyword(&b, prefix, fmt.Sprintf("msgstr[%d]", i), form)
		}
	} else {
		writeKeyword(&b, prefix, "msgstr", e.MsgStr)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeComment(b *strings.Builder, marker, text string) {
	if text == "" {
		b.WriteString(marker + "\n")
		return
	}
	b.WriteString(marker + " " + text + "\n")
}

func writeReferences(b *strings.Builder, refs []Reference) {
	line := ""
	for _, ref := range refs {
		s := ref.String()
		if line != "" && len(line)+len(s)+1 > refLineLimit {
			b.WriteString("#:" + line + "\n")
			line = ""
		}
		line += " " + s
	}
	if line != "" {
		b.WriteString("#:" + line + "\n")
	}
}

func writeKeyword(b *strings.Builder, prefix, keyword, text string) {
	lines := quote(text)
	b.WriteString(prefix + keyword + " " + lines[0] + "\n")
	for _, l := range lines[1:] {
		b.WriteString(prefix + l + "\n")
	}
}

// quote renders text as one or more quoted PO string lines. Multi-line text
// uses the conventional empty first string followed by one line per segment.
func quote(text string) []string {
	if !strings.Contains(text, "\n") {
		return []string{quoteSegment(text)}
	}
	lines := []string{`""`}
	for _, segment := range strings.SplitAfter(text, "\n") {
		if segment == "" {
			continue
		}
		lines = append(lines, quoteSegment(segment))
	}
	return lines
}

func quoteSegment(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteByte(s[i])
		}
	}
	b.WriteByte('"')
	return b.String()
}
