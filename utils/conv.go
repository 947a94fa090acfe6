package utils

import (
	"bytes"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// BytesToString decodes a NUL terminated name buffer with the given single
// byte encoding. A nil encoding keeps bytes as is.
func BytesToString(bs []byte, enc encoding.Encoding) (string, error) {
	n := bytes.IndexByte(bs, 0)
	if n < 0 {
		n = len(bs)
	}
	if enc == nil {
		return string(bs[:n]), nil
	}

	s, _, err := transform.Bytes(enc.NewDecoder(), bs[0:n])
	if err != nil {
		return "", err
	}
	return string(s), nil
}
