package vault

import (
	"io"
	"path"
)

// objectKey names an object for a profile under an optional prefix, using
// the same exports/<profileID>.<ext> layout as the filesystem vault.
func objectKey(prefix, profileID, ext string) string {
	return path.Join(prefix, "exports", profileID+ext)
}

// countingReader counts the bytes read through it so object uploads can be
// checked against the size the caller declared.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
