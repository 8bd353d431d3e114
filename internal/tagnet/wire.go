package tagnet

import (
	"encoding/json"
	"fmt"

	"github.com/Amir23156/BottleAsec/internal/tag"
)

// Operations.
const (
	OpRead  = "read"
	OpWrite = "write"
)

type request struct {
	Op    string  `json:"op"`
	Tag   tag.ID  `json:"tag"`
	Value float64 `json:"value,omitempty"`
}

type reply struct {
	Value float64 `json:"value"`
	Code  string  `json:"code"`
}

func decodeRequest(data []byte) (request, error) {
	var req request
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("failed to decode request: %w", err)
	}
	if req.Op != OpRead && req.Op != OpWrite {
		return req, fmt.Errorf("unknown op %q", req.Op)
	}
	return req, nil
}

func decodeReply(data []byte) (reply, error) {
	var rep reply
	if err := json.Unmarshal(data, &rep); err != nil {
		return rep, fmt.Errorf("failed to decode reply: %w", err)
	}
	return rep, nil
}
