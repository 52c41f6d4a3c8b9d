package boc

import "github.com/datatrails/go-datatrails-common/logger"

// Options controls the serialized form. The zero value writes neither an
// index nor a checksum; NewOptions applies the defaults (both on).
type Options struct {
	Index     bool
	CRC32C    bool
	CacheBits bool
	// Flags is the 2-bit reserved field of the flags byte.
	Flags uint8

	log logger.Logger
}

type Option func(*Options)

func NewOptions(opts ...Option) Options {
	o := Options{Index: true, CRC32C: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func WithIndex(v bool) Option {
	return func(o *Options) { o.Index = v }
}

func WithCRC32C(v bool) Option {
	return func(o *Options) { o.CRC32C = v }
}

// WithCacheBits sets the cache bits flag. It is only valid with the index.
func WithCacheBits(v bool) Option {
	return func(o *Options) { o.CacheBits = v }
}

func WithFlags(flags uint8) Option {
	return func(o *Options) { o.Flags = flags & 3 }
}

// WithLogger enables debug logging of header fields.
func WithLogger(log logger.Logger) Option {
	return func(o *Options) { o.log = log }
}

func (o Options) debugf(format string, args ...any) {
	if o.log == nil {
		return
	}
	o.log.Debugf(format, args...)
}
