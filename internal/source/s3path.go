package source

import (
	"strings"

	"github.com/go-faster/errors"
)

// ErrInvalidS3Path is returned when no bucket can be read from an S3 path.
var ErrInvalidS3Path = errors.New("enter a valid S3 path (e.g. s3://bucket/prefix/ or bucket/prefix/)")

// ParseS3Path splits s3://bucket/prefix or bucket/prefix. A non-empty prefix
// always ends in "/".
func ParseS3Path(raw string) (bucket, prefix string, err error) {
	p := strings.TrimSpace(raw)
	if len(p) >= 5 && strings.EqualFold(p[:5], "s3://") {
		p = p[5:]
	}
	bucket, prefix, _ = strings.Cut(p, "/")
	if bucket == "" {
		return "", "", ErrInvalidS3Path
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return bucket, prefix, nil
}
