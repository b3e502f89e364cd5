package payload

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"

	"delupo-stats/pkg/models"
)

// Decode lit un corps JSON. Un corps vide, "null" ou un JSON qui n'est pas un objet
// donne un payload vide ; seul un JSON invalide est une erreur.
func Decode(body []byte) (models.RawPayload, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return models.RawPayload{}, nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	rec, ok := v.(map[string]any)
	if !ok {
		return models.RawPayload{}, nil
	}
	return models.RawPayload(rec), nil
}
