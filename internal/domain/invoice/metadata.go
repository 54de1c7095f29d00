package invoice

import (
	"encoding/json"
	"fmt"
)

var knownMetadataKeys = map[string]bool{
	"payment_type": true, "booking_id": true, "subscription_id": true, "description": true,
}

// UnmarshalJSON decodes the known keys and keeps scalar extras for display.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	type plain Metadata
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		if knownMetadataKeys[k] {
			continue
		}
		switch v.(type) {
		case string, float64, bool:
			if p.Extra == nil {
				p.Extra = make(map[string]string)
			}
			p.Extra[k] = fmt.Sprint(v)
		}
	}
	*m = Metadata(p)
	return nil
}
