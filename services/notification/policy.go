package notification

import (
	"encoding/json"
	"fmt"
	"strings"

	"tenantdesk/models"
)

// DeliveryPolicy is the default delivery configuration an action stores as
// JSON, for example:
//
//	{"method": "SLACK", "deliveries": [{"destination": "#ops"}]}
type DeliveryPolicy struct {
	Method     *models.DeliveryMethod           `json:"method,omitempty"`
	Deliveries []models.NotificationInstruction `json:"deliveries,omitempty"`
}

// ParseDeliveryPolicy decodes and validates a stored policy. An empty or
// "null" string yields a nil policy.
func ParseDeliveryPolicy(raw string) (*DeliveryPolicy, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}

	var p DeliveryPolicy
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("ParseDeliveryPolicy: %w", err)
	}
	if p.Method != nil && !p.Method.Valid() {
		return nil, fmt.Errorf("ParseDeliveryPolicy: unknown method %q", *p.Method)
	}
	for i, d := range p.Deliveries {
		if strings.TrimSpace(d.Destination) == "" {
			return nil, fmt.Errorf("ParseDeliveryPolicy: delivery %d has no destination", i)
		}
		if d.Method != nil && !d.Method.Valid() {
			return nil, fmt.Errorf("ParseDeliveryPolicy: delivery %d has unknown method %q", i, *d.Method)
		}
	}
	return &p, nil
}

// Instructions expands the policy for a transaction owned by ownerEmail.
// Without explicit deliveries the owner is notified with the policy method.
func (p *DeliveryPolicy) Instructions(ownerEmail string) []models.NotificationInstruction {
	if p == nil {
		return []models.NotificationInstruction{{Destination: ownerEmail}}
	}
	if len(p.Deliveries) == 0 {
		return []models.NotificationInstruction{{Destination: ownerEmail, Method: p.Method}}
	}
	out := make([]models.NotificationInstruction, len(p.Deliveries))
	for i, d := range p.Deliveries {
		out[i] = models.NotificationInstruction{Destination: strings.TrimSpace(d.Destination), Method: d.Method}
		if out[i].Method == nil {
			out[i].Method = p.Method
		}
	}
	return out
}
