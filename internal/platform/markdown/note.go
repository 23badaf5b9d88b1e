// Package markdown reads and writes notes made of a YAML header block and
// a markdown body.
package markdown

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

const fence = "---\n"

// ErrNoHeader is returned by Decode for content without a header block.
var ErrNoHeader = errors.New("markdown: note has no header")

// Encode writes header as a YAML block, a blank line, then body.
func Encode(header any, body string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(fence)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(header); err != nil {
		return nil, fmt.Errorf("encode note header: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode note header: %w", err)
	}
	buf.WriteString(fence)
	buf.WriteByte('\n')
	buf.WriteString(body)
	return buf.Bytes(), nil
}

// Decode fills header from the note's YAML block and returns the body
// without the blank line Encode puts in front of it.
func Decode(content []byte, header any) (string, error) {
	rest, ok := bytes.CutPrefix(content, []byte(fence))
	if !ok {
		return "", ErrNoHeader
	}
	var head, body []byte
	if after, empty := bytes.CutPrefix(rest, []byte(fence)); empty {
		body = after
	} else {
		head, body, ok = bytes.Cut(rest, []byte("\n"+fence))
		if !ok {
			return "", fmt.Errorf("decode note: header block is not closed")
		}
	}
	if err := yaml.Unmarshal(head, header); err != nil {
		return "", fmt.Errorf("decode note header: %w", err)
	}
	return string(bytes.TrimPrefix(body, []byte("\n"))), nil
}
