package order

import (
	"crypto/rand"
	"fmt"
	"time"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateCode builds a human-facing order code of the form
// <PREFIX>-<YYYYMMDD>-<4 random upper-alphanumerics>. Collisions are not
// checked against existing codes; see DESIGN.md.
func GenerateCode(prefix string, now time.Time) string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process is in serious trouble; fall
		// back to a time-derived suffix rather than aborting an order
		nano := now.UnixNano()
		for i := range buf {
			buf[i] = byte(nano >> (i * 8))
		}
	}
	for i := range buf {
		buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), string(buf))
}
