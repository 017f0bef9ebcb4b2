package content

import (
	"fmt"
	"strconv"
)

type CreateBlockRequest struct {
	Name         string         `json:"name" binding:"required"`
	Handle       string         `json:"handle" binding:"required"`
	Model        string         `json:"model" binding:"required"`
	Required     bool           `json:"required"`
	Translatable bool           `json:"translatable"`
	Title        bool           `json:"title"`
	Instructions string         `json:"instructions"`
	Settings     map[string]any `json:"settings"`
}

type AssignRequest struct {
	BlockID uint `json:"block_id" binding:"required"`
}

type ReorderRequest struct {
	BlockIDs []uint `json:"block_ids" binding:"required"` // ordered list
}

// ValuesRequest carries block values keyed by block id.
type ValuesRequest struct {
	Values map[string]any `json:"values" binding:"required"`
}

func (r ValuesRequest) byBlock() (map[uint]any, error) {
	out := make(map[uint]any, len(r.Values))
	for k, v := range r.Values {
		id, err := strconv.ParseUint(k, 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("invalid block id %q", k)
		}
		out[uint(id)] = v
	}
	return out, nil
}

type ContentDTO struct {
	OwnerID      uint         `json:"owner_id"`
	LanguageCode string       `json:"language_code"`
	Values       map[uint]any `json:"values"`
}
