package jwtcookie

import (
	"fmt"

	"github.com/nyaruka/phonenumbers"
)

// NormalizePhone returns a normalizer that canonicalizes phone attribute
// values to E.164. The region is the default country used for national
// numbers; with an empty region, only numbers carrying a country prefix
// parse. Empty values pass through untouched so an empty claim can still
// clear a scalar attribute.
func NormalizePhone(region string) AttributeNormalizer {
	return func(value any) (any, error) {
		raw, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("phone attribute requires string, got %T", value)
		}

		if raw == "" {
			return raw, nil
		}

		num, err := phonenumbers.Parse(raw, region)
		if err != nil {
			return nil, err
		}

		if !phonenumbers.IsValidNumber(num) {
			return nil, fmt.Errorf("invalid phone number: %s", raw)
		}

		return phonenumbers.Format(num, phonenumbers.E164), nil
	}
}
