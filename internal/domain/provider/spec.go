package provider

// APISpec is the declarative description of a provider's order-status contract.
// Field names on the wire are data, never code.
type APISpec struct {
	// Method overrides Provider.HTTPMethod when set (GET or POST)
	Method string `json:"method,omitempty" yaml:"method"`
	// BodyFormat is "form" (default) or "json"; ignored for GET
	BodyFormat string       `json:"body_format,omitempty" yaml:"body_format"`
	Auth       AuthSpec     `json:"auth" yaml:"auth"`
	Request    RequestSpec  `json:"request" yaml:"request"`
	Response   ResponseSpec `json:"response" yaml:"response"`
}

// AuthSpec describes where the API key travels
type AuthSpec struct {
	// Placement is "body" (default), "query" or "header"
	Placement string `json:"placement,omitempty" yaml:"placement"`
	// Field is the body/query parameter name, "key" by default
	Field string `json:"field,omitempty" yaml:"field"`
	// Header is the header name for header placement
	Header string `json:"header,omitempty" yaml:"header"`
	// Prefix is prepended to the key in the header, e.g. "Bearer "
	Prefix string `json:"prefix,omitempty" yaml:"prefix"`
}

// RequestSpec names the outbound parameters
type RequestSpec struct {
	ActionField  string            `json:"action_field,omitempty" yaml:"action_field"`
	StatusAction string            `json:"status_action,omitempty" yaml:"status_action"`
	OrderIDField string            `json:"order_id_field" yaml:"order_id_field"`
	Extra        map[string]string `json:"extra,omitempty" yaml:"extra"`
}

// ResponseSpec holds gjson paths for each field role of a status response
type ResponseSpec struct {
	Status     string `json:"status" yaml:"status"`
	Remains    string `json:"remains,omitempty" yaml:"remains"`
	StartCount string `json:"start_count,omitempty" yaml:"start_count"`
	Error      string `json:"error,omitempty" yaml:"error"`
}

// DefaultAPISpec is the contract most SMM panels share:
// POST key=...&action=status&order=<id>, answering {"status","remains","start_count"}.
func DefaultAPISpec() APISpec {
	return APISpec{
		BodyFormat: "form",
		Auth:       AuthSpec{Placement: "body", Field: "key"},
		Request: RequestSpec{
			ActionField:  "action",
			StatusAction: "status",
			OrderIDField: "order",
		},
		Response: ResponseSpec{
			Status:     "status",
			Remains:    "remains",
			StartCount: "start_count",
			Error:      "error",
		},
	}
}
