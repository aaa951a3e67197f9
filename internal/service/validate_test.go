package service_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smallbiznis/valora-offers/internal/domain"
	"github.com/smallbiznis/valora-offers/internal/service"
)

func TestCheckNoOrgOverride(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		reject bool
	}{
		{"clean payload", `{"name":"Acme","email":"a@b.test"}`, false},
		{"org_id snake case", `{"name":"Acme","org_id":42}`, true},
		{"orgId camel case", `{"orgId":42}`, true},
		{"organization_id", `{"organization_id":"7"}`, true},
		{"tenant_id", `{"tenant_id":7}`, true},
		{"matching value still rejected", `{"org_id":1}`, true},
		{"nested org untouched", `{"client":{"org_id":1}}`, false},
		{"array element", `[{"name":"A"},{"org_id":2}]`, true},
		{"clean array", `[{"name":"A"},{"name":"B"}]`, false},
		{"empty body", ``, false},
		{"scalar body", `42`, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := service.CheckNoOrgOverride([]byte(tc.body))
			if tc.reject {
				require.True(t, domain.IsValidation(err))
			} else {
				require.NoError(t, err)
			}
		})
	}
}
