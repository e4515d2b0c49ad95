// Package codec provides the serialization used for payloads persisted by
// the scrycache store. JSON is the default; CBOR and Msgpack trade a little
// CPU for a smaller store file.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
