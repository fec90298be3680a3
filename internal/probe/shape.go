package probe

import (
	"encoding/json"
	"fmt"

	"github.com/samvad-hq/vision-probe/internal/domain"
)

func malformed(body []byte, err error) error {
	return &domain.Error{
		Kind: domain.KindMalformedResponse,
		Op:   "decode response",
		Body: string(body),
		Err:  err,
	}
}

func unexpectedShape(err error) error {
	return domain.NewError(domain.KindUnexpectedShape, "validate response", err)
}

// text renders a JSON value for display: strings as-is, anything else compact.
func text(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return compact(v)
}

func compact(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
