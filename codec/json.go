package codec

import "encoding/json"

// JSON stores values as plain JSON. It is the default codec: upstream
// documents arrive as JSON, so round-tripping is lossless and the store file
// stays inspectable with the sqlite3 CLI.
type JSON[V any] struct{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }
func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}
