package service

import (
	"encoding/json"
	"strings"

	"github.com/smallbiznis/valora-offers/internal/domain"
)

// Keys a mutation payload must never carry: the tenant boundary comes from
// the session, and a caller-supplied value is rejected regardless of whether
// it matches.
var forbiddenPayloadKeys = map[string]struct{}{
	"orgid":          {},
	"organizationid": {},
	"tenantid":       {},
}

// CheckNoOrgOverride rejects raw mutation payloads that carry an org id
// field under any common spelling. It runs before the payload is decoded
// into a typed input, so no forbidden value ever reaches a repository.
func CheckNoOrgOverride(body []byte) error {
	if len(body) == 0 {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		// Non-object payloads (arrays for bulk import) are checked per element.
		var list []map[string]json.RawMessage
		if err := json.Unmarshal(body, &list); err != nil {
			return nil
		}
		for _, element := range list {
			if err := checkKeys(element); err != nil {
				return err
			}
		}
		return nil
	}

	return checkKeys(fields)
}

func checkKeys(fields map[string]json.RawMessage) error {
	for key := range fields {
		normalized := strings.ReplaceAll(strings.ToLower(key), "_", "")
		if _, forbidden := forbiddenPayloadKeys[normalized]; forbidden {
			return domain.NewValidationError(key, "tenant is derived from the session and cannot be supplied")
		}
	}
	return nil
}
