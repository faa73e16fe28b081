package css

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html/charset"
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// Decode converts style sheet bytes to UTF-8. Encoding is taken from a
// leading @charset rule, UTF-8 is assumed otherwise.
func Decode(data []byte) ([]byte, error) {
	if bytes.HasPrefix(data, utf8BOM) {
		return data[len(utf8BOM):], nil
	}

	label, ok := charsetLabel(data)
	if !ok {
		return data, nil
	}
	enc, name := charset.Lookup(label)
	if enc == nil {
		return nil, fmt.Errorf("unsupported @charset %q", label)
	}
	if name == "utf-8" {
		return data, nil
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("unable to decode style sheet from %s: %w", name, err)
	}
	return out, nil
}

// charsetLabel extracts label from `@charset "label";` which per CSS syntax
// must be the very first bytes of the sheet.
func charsetLabel(data []byte) (string, bool) {
	const prefix = `@charset "`
	if !bytes.HasPrefix(data, []byte(prefix)) {
		return "", false
	}
	rest := data[len(prefix):]
	end := bytes.Index(rest, []byte(`";`))
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(string(rest[:end])), true
}
