package room_connect_client

import "encoding/json"

// jsonCodec lets the Connect client speak application/json with plain Go
// message structs instead of generated protobuf types.
type jsonCodec struct{}

func (jsonCodec) Name() string {
	return "json"
}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
