package store

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// DecimalArg renders a nullable decimal as a numeric parameter; bind it as $n::numeric
func DecimalArg(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

// ParseDecimal turns a numeric column selected as ::text back into a decimal
func ParseDecimal(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// JSONArg marshals v for a jsonb parameter; bind it as $n::jsonb. nil stays NULL
func JSONArg(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return nil, nil
	}
	return string(b), nil
}

// ParseJSON decodes a jsonb column selected as ::text; NULL leaves dst untouched
func ParseJSON(s *string, dst any) error {
	if s == nil || *s == "" {
		return nil
	}
	return json.Unmarshal([]byte(*s), dst)
}
