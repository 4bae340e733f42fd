package invoice

import (
	"encoding/base64"
	"strings"
)

// DataURL embeds a rendered artifact: data:application/pdf;filename=INV-0001.pdf;base64,...
func DataURL(contentType, filename string, data []byte) string {
	var b strings.Builder
	b.Grow(len(contentType) + len(filename) + base64.StdEncoding.EncodedLen(len(data)) + 24)
	b.WriteString("data:")
	b.WriteString(contentType)
	if filename != "" {
		b.WriteString(";filename=")
		b.WriteString(filename)
	}
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}
