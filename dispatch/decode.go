package dispatch

import (
	"bytes"
	"fmt"

	"github.com/kingsalone/sysrepo/internal/arena"
	"github.com/kingsalone/sysrepo/internal/bsatn"
	"github.com/kingsalone/sysrepo/record"
)

// DecodedPayload is a managed object whose single field is the result of a
// BSATN decode: the wire-format payload carried by a Message once Produce
// has run FillFromWire against it.
type DecodedPayload struct {
	record.Object
	Body string
}

// FillFromWire returns a Fill that decodes a BSATN-encoded string payload
// out of wire and stores the result in dst. Every decode buffer the read
// needs is carved out of the object's own context via the allocator shim
// (internal/arena.AsSerializerAllocator) instead of the Go heap, so a
// message's decode cost rides the same piggybacked context as everything
// else Produce builds for it. An unmanaged object (arena disabled, or no
// Owner configured) falls back to decode buffers from make(), matching
// AllocField's own fallback.
func FillFromWire(wire []byte, dst *DecodedPayload) Fill {
	return func(o record.Object) error {
		var alloc bsatn.Allocator
		if c := o.Context(); c != nil {
			alloc = arena.AsSerializerAllocator(c)
		}
		r := bsatn.NewReaderWithAllocator(bytes.NewReader(wire), alloc)
		tag, err := r.ReadTag()
		if err != nil {
			return fmt.Errorf("dispatch: decode payload: %w", err)
		}
		if tag != bsatn.TagString {
			return fmt.Errorf("dispatch: decode payload: expected string tag, got 0x%x", tag)
		}
		body, err := r.ReadString()
		if err != nil {
			return fmt.Errorf("dispatch: decode payload: %w", err)
		}
		dst.Object = o
		dst.Body = body
		return nil
	}
}

// EncodeWirePayload BSATN-encodes body as a standalone string payload,
// the wire format FillFromWire expects back out.
func EncodeWirePayload(body string) ([]byte, error) {
	var buf bytes.Buffer
	w := bsatn.NewWriter(&buf)
	w.WriteString(body)
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("dispatch: encode payload: %w", err)
	}
	return buf.Bytes(), nil
}
