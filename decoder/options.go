package decoder

import (
	"os"
	"strconv"
)

// DefaultMaxNesting mirrors the nesting bound upb ships with; it is deep
// enough for any realistic schema while still bounding the frame stack to a
// fixed size per spec §5.
const DefaultMaxNesting = 64

// Options tunes a Decoder's resource limits. The zero value is not usable;
// construct via NewOptions.
type Options struct {
	// MaxNesting bounds the decoder's frame stack: the top-level message,
	// each sub-message and each group (known or skipped as unknown) count
	// against it. Packed regions and strings are tracked inside the current
	// frame and do not count.
	MaxNesting int
}

// NewOptions returns the default Options, overridable via the
// PBFLOW_MAX_NESTING environment variable for local debugging of
// deeply-nested schemas, following the teacher's own env-override
// convention for decode-time knobs.
func NewOptions() Options {
	opts := Options{MaxNesting: DefaultMaxNesting}
	if v := os.Getenv("PBFLOW_MAX_NESTING"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.MaxNesting = n
		}
	}
	return opts
}
