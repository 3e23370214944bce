package utils

import (
	"crypto/md5"
	"strings"

	"github.com/gofrs/uuid"
)

// GenUuidFromStrings derives a stable uuid from the given parts.
// Order matters: callers namespace ids with a leading purpose tag.
func GenUuidFromStrings(parts ...string) string {
	if len(parts) == 0 {
		parts = append(parts, uuid.Nil.String())
	}

	return uuidHash([]byte(strings.Join(parts, ":")))
}

func uuidHash(b []byte) string {
	h := md5.New()

	h.Write(b)
	sum := h.Sum(nil)
	sum[6] = (sum[6] & 0x0f) | 0x30
	sum[8] = (sum[8] & 0x3f) | 0x80
	return uuid.FromBytesOrNil(sum).String()
}
