package codec

import (
	"fmt"
	"reflect"
)

// EncodeFunc writes the body of a user value. The tag byte has already been
// written; the handler composes its fields through the encoder's Encode.
type EncodeFunc func(e *Encoder, v any) error

// DecodeFunc reads the body of a user value. Handlers needing ambient state
// (crypto parameters, upstream references) reach it via d.Context().
type DecodeFunc func(d *Decoder) (any, error)

// Handler declares one user-extension type: a tag byte >= TagUserMin, the
// runtime type it covers, and the encode/decode callbacks.
type Handler struct {
	Tag    byte
	Type   reflect.Type
	Encode EncodeFunc
	Decode DecodeFunc
}

// Registry is the per-store extension table mapping user tags and types to
// handlers. It is immutable after construction and may be shared freely.
// Stores opened with different registries over the same data are the caller's
// responsibility: overlapping tags decode, unknown ones fail.
type Registry struct {
	byTag  map[byte]*Handler
	byType map[reflect.Type]*Handler
	ctx    any
}

// HandlerFor builds a Handler covering the runtime type of the prototype
// value.
func HandlerFor(tag byte, prototype any, enc EncodeFunc, dec DecodeFunc) Handler {
	return Handler{Tag: tag, Type: reflect.TypeOf(prototype), Encode: enc, Decode: dec}
}

// NewRegistry constructs a registry from a finite handler list plus an opaque
// context payload injected into decoders. Both lookup tables are built
// eagerly; duplicate tags or types and tags below TagUserMin are rejected.
func NewRegistry(ctx any, handlers ...Handler) (*Registry, error) {
	r := &Registry{
		byTag:  make(map[byte]*Handler, len(handlers)),
		byType: make(map[reflect.Type]*Handler, len(handlers)),
		ctx:    ctx,
	}
	for i := range handlers {
		h := handlers[i]
		if h.Tag < TagUserMin {
			return nil, fmt.Errorf("codec: handler tag 0x%02X below user range 0x%02X", h.Tag, TagUserMin)
		}
		if h.Type == nil || h.Encode == nil || h.Decode == nil {
			return nil, fmt.Errorf("codec: handler for tag 0x%02X is incomplete", h.Tag)
		}
		if _, dup := r.byTag[h.Tag]; dup {
			return nil, fmt.Errorf("codec: duplicate handler tag 0x%02X", h.Tag)
		}
		if _, dup := r.byType[h.Type]; dup {
			return nil, fmt.Errorf("codec: duplicate handler type %s", h.Type)
		}
		r.byTag[h.Tag] = &h
		r.byType[h.Type] = &h
	}
	return r, nil
}

// Context returns the registry's opaque context payload.
func (r *Registry) Context() any { return r.ctx }
