package testcase

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBuiltinCases(t *testing.T) {
	cases, err := Load("")
	require.NoError(t, err)
	require.Len(t, cases, 3)

	inv, err := Get(cases, "INV001")
	require.NoError(t, err)
	assert.Equal(t, RequestInventoryUpdate, inv.RequestType)
	assert.Equal(t, ComplexitySimple, inv.Complexity)
	assert.Equal(t, "DNM32-BLU", inv.Context["product_id"])
	require.Len(t, inv.ExpectedDBChanges, 1)
	assert.Equal(t, "inventory", inv.ExpectedDBChanges[0].Table)
	assert.Equal(t, "UPDATE", inv.ExpectedDBChanges[0].Operation)
	assert.Equal(t, 15, inv.ExpectedDBChanges[0].Fields["stock_quantity"])
	assert.Len(t, inv.SuccessCriteria, 4)
}

func TestLoadComplexCases(t *testing.T) {
	cases, err := Load("")
	require.NoError(t, err)

	for _, id := range []string{"SZR001", "RET001"} {
		tc, err := Get(cases, id)
		require.NoError(t, err)
		assert.Equal(t, ComplexityComplex, tc.Complexity, id)
		assert.NotEmpty(t, tc.SuccessCriteria, id)
	}

	ret, _ := Get(cases, "RET001")
	assert.Equal(t, RequestReturnProcess, ret.RequestType)
	assert.Len(t, ret.ExpectedDBChanges, 2)
}

func TestLoadExternalDir(t *testing.T) {
	dir := t.TempDir()
	external := `
cases:
  - id: EXT001
    request_type: customer_inquiry
    request: "Where is my order?"
    context:
      order_id: ORD-999
    success_criteria:
      - Professional tone
    complexity: SIMPLE
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.yaml"), []byte(external), 0o644))

	cases, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, cases, 4)

	ext, err := Get(cases, "EXT001")
	require.NoError(t, err)
	assert.Equal(t, RequestCustomerInquiry, ext.RequestType)
}

func TestLoadExternalOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	override := `
cases:
  - id: INV001
    request_type: inventory_update
    request: "Set stock for red hoodie to 3"
    context:
      product_id: HDY-RED
    success_criteria:
      - Professional tone
    complexity: SIMPLE
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "override.yaml"), []byte(override), 0o644))

	cases, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, cases, 3)

	inv, err := Get(cases, "INV001")
	require.NoError(t, err)
	assert.Contains(t, inv.Request, "red hoodie")
}

func TestLoadRejectsCaseWithoutCriteria(t *testing.T) {
	dir := t.TempDir()
	bad := `
cases:
  - id: BAD001
    request_type: order_status
    request: "Check order"
    success_criteria: []
    complexity: SIMPLE
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(bad), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "success criteria")
}

func TestGetUnknownCase(t *testing.T) {
	cases, err := Load("")
	require.NoError(t, err)

	_, err = Get(cases, "NOPE")
	assert.Error(t, err)
}

func TestCloneIsIndependent(t *testing.T) {
	cases, err := Load("")
	require.NoError(t, err)
	orig, err := Get(cases, "INV001")
	require.NoError(t, err)

	cp := orig.Clone()
	cp.Request = "changed"
	cp.ActualResponse = "some response"
	cp.Context["product_id"] = "OTHER"
	cp.SuccessCriteria[0] = "changed criterion"
	cp.ExpectedDBChanges[0].Fields["stock_quantity"] = 99
	rating := 4.5
	cp.HumanRating = &rating

	assert.NotEqual(t, cp.Request, orig.Request)
	assert.Empty(t, orig.ActualResponse)
	assert.Equal(t, "DNM32-BLU", orig.Context["product_id"])
	assert.Equal(t, "Correctly identifies product", orig.SuccessCriteria[0])
	assert.Equal(t, 15, orig.ExpectedDBChanges[0].Fields["stock_quantity"])
	assert.Nil(t, orig.HumanRating)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		tc      TestCase
		wantErr bool
	}{
		{
			name: "valid",
			tc: TestCase{
				ID:              "T1",
				Request:         "do something",
				SuccessCriteria: []string{"Professional tone"},
				Complexity:      ComplexitySimple,
			},
		},
		{
			name:    "missing id",
			tc:      TestCase{Request: "x", SuccessCriteria: []string{"y"}, Complexity: ComplexitySimple},
			wantErr: true,
		},
		{
			name:    "missing request",
			tc:      TestCase{ID: "T1", SuccessCriteria: []string{"y"}, Complexity: ComplexitySimple},
			wantErr: true,
		},
		{
			name:    "no criteria",
			tc:      TestCase{ID: "T1", Request: "x", Complexity: ComplexitySimple},
			wantErr: true,
		},
		{
			name:    "bad complexity",
			tc:      TestCase{ID: "T1", Request: "x", SuccessCriteria: []string{"y"}, Complexity: "MEDIUM"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tc.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
