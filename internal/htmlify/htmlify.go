// Package htmlify turns plain text into paragraph and heading markup using
// the stagebuf engine as its input and output staging area.
package htmlify

import (
	"github.com/pkg/errors"

	"github.com/momentics/stagebuf/buffer"
)

// Defaults for the tags.
const (
	DefaultParagraphTag = "<p>"
	DefaultHeadingTag   = "<h1>"
)

var escapes = [256]string{
	'"':  "&quot;",
	'\'': "&apos;",
	'&':  "&amp;",
	'<':  "&lt;",
	'=':  "&#61;",
	'>':  "&gt;",
}

// Options configures the tags written around blocks.
type Options struct {
	ParagraphTag string
	HeadingTag   string
}

// Converter holds validated options.
type Converter struct {
	para         string
	paraClose    string
	heading      string
	headingClose string
}

// New validates opts and derives the heading close tag.
func New(opts Options) (*Converter, error) {
	if opts.ParagraphTag == "" {
		opts.ParagraphTag = DefaultParagraphTag
	}
	if opts.HeadingTag == "" {
		opts.HeadingTag = DefaultHeadingTag
	}
	pc, err := ElementClose(opts.ParagraphTag)
	if err != nil {
		return nil, err
	}
	hc, err := HeadingClose(opts.HeadingTag)
	if err != nil {
		return nil, err
	}
	return &Converter{para: opts.ParagraphTag, paraClose: pc, heading: opts.HeadingTag, headingClose: hc}, nil
}

// ElementClose builds the closing tag from the element name of an opening
// tag: "<div class=x>" gives "</div>".
func ElementClose(tag string) (string, error) {
	i := 0
	for i < len(tag) && (tag[i] == '<' || tag[i] == ' ' || tag[i] == '\t') {
		i++
	}
	j := i
	for j < len(tag) && isNameByte(tag[j]) {
		j++
	}
	if j == i {
		return "", errors.Errorf("tag %q has no element name", tag)
	}
	return "</" + tag[i:j] + ">", nil
}

func isNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-'
}

// HeadingClose builds the closing tag from the first digit in tag:
// "<h2 class=x>" gives "</h2>".
func HeadingClose(tag string) (string, error) {
	for i := 0; i < len(tag); i++ {
		if c := tag[i]; c >= '0' && c <= '9' {
			return "</h" + string(c) + ">", nil
		}
	}
	return "", errors.Errorf("heading tag %q has no level digit", tag)
}

// ParagraphTag returns the configured paragraph tag.
func (c *Converter) ParagraphTag() string { return c.para }

// ParagraphCloseTag returns the derived paragraph close tag.
func (c *Converter) ParagraphCloseTag() string { return c.paraClose }

// HeadingTag returns the configured heading tag.
func (c *Converter) HeadingTag() string { return c.heading }

// HeadingCloseTag returns the derived heading close tag.
func (c *Converter) HeadingCloseTag() string { return c.headingClose }

// Convert appends the markup for the live content of in to out.
//
// Blocks are separated by blank lines. A block that spans a single line
// becomes a heading, anything longer a paragraph. Markup-significant
// characters are escaped; line breaks inside a block are kept.
func (c *Converter) Convert(in, out *buffer.Buffer) error {
	data := in.Bytes()
	start := out.Len()
	if err := out.AppendString(c.para); err != nil {
		return err
	}
	breaks := 0
	i := 0
	for i < len(data) {
		ch := data[i]
		switch {
		case ch == '\n' || ch == '\r':
			if !blankLine(data, i) {
				if ch == '\r' && i+1 < len(data) && data[i+1] == '\n' {
					i++
				}
				i++
				breaks++
				if err := out.AppendString("\n"); err != nil {
					return err
				}
				continue
			}
			var err error
			if breaks == 0 {
				err = c.promote(out, start)
			} else {
				err = out.AppendString(c.paraClose + "\n")
			}
			if err != nil {
				return err
			}
			start = out.Len()
			if err := out.AppendString(c.para); err != nil {
				return err
			}
			breaks = 0
			for i < len(data) && (data[i] == '\n' || data[i] == '\r') {
				i++
			}
		case escapes[ch] != "":
			if err := out.AppendString(escapes[ch]); err != nil {
				return err
			}
			i++
		default:
			j := i + 1
			for j < len(data) && escapes[data[j]] == "" && data[j] != '\n' && data[j] != '\r' {
				j++
			}
			if err := out.AppendBounded(data[i:j], j-i); err != nil {
				return err
			}
			i = j
		}
	}
	return out.AppendString(c.paraClose)
}

// promote rewrites the open paragraph starting at offset start into a
// heading block followed by a newline.
func (c *Converter) promote(out *buffer.Buffer, start int) error {
	text := append([]byte(nil), out.Bytes()[start+len(c.para):]...)
	out.Push(out.Len() - start)
	for _, s := range [][]byte{[]byte(c.heading), text, []byte(c.headingClose + "\n")} {
		if err := out.Append(s); err != nil {
			return err
		}
	}
	return nil
}

// blankLine reports whether the line break at i is immediately followed by
// another one.
func blankLine(data []byte, i int) bool {
	if data[i] == '\n' {
		return i+1 < len(data) && (data[i+1] == '\n' || data[i+1] == '\r')
	}
	// \r\n\r\n or \r\r
	if i+1 < len(data) && data[i+1] == '\r' {
		return true
	}
	return i+2 < len(data) && data[i+1] == '\n' && data[i+2] == '\r'
}
