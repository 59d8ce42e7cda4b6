package criteria

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ticket-ai/outreach-eval/internal/testcase"
)

func inventoryCase() *testcase.TestCase {
	return &testcase.TestCase{
		ID:          "INV001",
		RequestType: testcase.RequestInventoryUpdate,
		Request:     "Update inventory for blue denim jeans size 32 to show 15 units in stock",
		Context: map[string]any{
			"product_id":    "DNM32-BLU",
			"current_stock": 10,
			"location":      "main_warehouse",
		},
		ExpectedDBChanges: []testcase.ExpectedDatabaseChange{
			{
				Table:      "inventory",
				Operation:  "UPDATE",
				Fields:     map[string]any{"stock_quantity": 15},
				Conditions: map[string]any{"product_id": "DNM32-BLU"},
			},
		},
		SuccessCriteria: []string{
			"Correctly identifies product",
			"Updates correct quantity",
			"Confirms update in response",
			"Professional tone",
		},
		Complexity: testcase.ComplexitySimple,
	}
}

func TestSubstringMatch(t *testing.T) {
	m := NewMatcher()
	tc := inventoryCase()

	assert.True(t, m.Matches("I will update inventory right away", "update inventory", tc))
	assert.True(t, m.Matches("  Update Inventory now  ", "update inventory", tc))
	assert.False(t, m.Matches("I will check the order status", "update inventory", tc))
}

func TestWordSubsetMatch(t *testing.T) {
	m := NewMatcher()
	tc := inventoryCase()

	// All criterion words appear in the response, in a different order.
	assert.True(t, m.Matches("the inventory was changed with an update today", "update inventory", tc))
	assert.False(t, m.Matches("the inventory is unchanged", "update inventory", tc))
}

func TestCaseInsensitivity(t *testing.T) {
	m := NewMatcher()
	tc := inventoryCase()

	upper := m.Matches("BEST REGARDS", "Professional Tone", tc)
	lower := m.Matches("best regards", "professional tone", tc)
	assert.Equal(t, lower, upper)
	assert.True(t, upper)
}

func TestProfessionalTone(t *testing.T) {
	m := NewMatcher()
	tc := inventoryCase()

	tests := []struct {
		response string
		want     bool
	}{
		{"Thank you for reaching out.", true},
		{"Sincerely, the support team", true},
		{"Please find the details below.", true},
		{"Kindly note the stock level.", true},
		{"yo the stock is updated lol", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.Matches(tt.response, "Professional tone", tc), tt.response)
	}
}

func TestProductIdentificationRequiresAllFamilies(t *testing.T) {
	m := NewMatcher()
	tc := inventoryCase()

	// Type, color and size all present.
	assert.True(t, m.Matches(
		"I've updated the blue denim jeans, size 32, as requested.",
		"Correctly identifies product", tc))

	// Missing size.
	assert.False(t, m.Matches(
		"I've updated the blue jeans as requested.",
		"Correctly identifies product", tc))

	// Missing color.
	assert.False(t, m.Matches(
		"The denim jeans in size 32 are updated.",
		"Correctly identifies product", tc))

	// Color satisfied by the product-id fragment "blu".
	assert.True(t, m.Matches(
		"Stock for denim item dnm32-blu set; size 32 confirmed.",
		"Correctly identifies product", tc))
}

func TestQuantityUpdatePatterns(t *testing.T) {
	m := NewMatcher()
	tc := inventoryCase()

	tests := []struct {
		response string
		want     bool
	}{
		{"Stock has been set to 15 units", true},
		{"The quantity was set to 15.", true},
		{"Inventory updated to 15 as requested.", true},
		{"There are now 15 items on hand.", true},
		{"We hold 15 pieces in the warehouse.", true},
		{"15 stock remaining", true},
		{"Stock has been set to 150 units", false},
		{"The inventory was adjusted.", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.Matches(tt.response, "Updates correct quantity", tc), tt.response)
	}
}

func TestQuantityUpdateAcceptsInsertChanges(t *testing.T) {
	m := NewMatcher()
	tc := inventoryCase()
	tc.ExpectedDBChanges[0].Operation = "INSERT"

	assert.True(t, m.Matches("stock set to 15", "Updates correct quantity", tc))
}

func TestQuantityUpdateUnsatisfiable(t *testing.T) {
	m := NewMatcher()
	tc := inventoryCase()
	tc.ExpectedDBChanges = nil

	// No expected inventory change: the criterion is unsatisfiable, not an error.
	assert.False(t, m.Matches("stock set to 15 units", "Updates correct quantity", tc))
}

func TestReferencesCriterion(t *testing.T) {
	m := NewMatcher()
	tc := inventoryCase()

	assert.True(t, m.Matches(
		"our sizing chart for premium basics runs slim",
		"References brand-specific sizing", tc))
	assert.False(t, m.Matches(
		"we recommend a large",
		"References brand-specific sizing", tc))
}

func TestReturnCriteria(t *testing.T) {
	m := NewMatcher()
	tc := inventoryCase()

	tests := []struct {
		criterion string
		response  string
		want      bool
	}{
		{"Verifies return eligibility", "the purchase is within our return window", true},
		{"Verifies return eligibility", "it was bought 10 days ago", true},
		{"Verifies return eligibility", "we do not accept this", false},
		{"Mentions return window", "within our 30-day policy", true},
		{"Mentions return window", "within our 30 day policy", true},
		{"Mentions return window", "within our thirty day policy", false},
		{"Explains return process", "a shipping label will be emailed", true},
		{"Offers size exchange", "would you like a different size?", true},
		{"Offers size exchange", "we can order a different one for you", true},
		{"Provides reasoning", "we suggest a large because our shirts run slim", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.Matches(tt.response, tt.criterion, tc), "%s / %s", tt.criterion, tt.response)
	}
}

func TestUnknownCriterionFailsClosed(t *testing.T) {
	m := NewMatcher()
	tc := inventoryCase()

	assert.False(t, m.Matches("a perfectly fine response", "exhibits telepathy", tc))
}

func TestMatcherIsIdempotent(t *testing.T) {
	m := NewMatcher()
	tc := inventoryCase()

	first := m.Matches("stock set to 15 units", "Updates correct quantity", tc)
	second := m.Matches("stock set to 15 units", "Updates correct quantity", tc)
	assert.Equal(t, first, second)
	assert.True(t, first)
}

func TestRegisterCustomHandler(t *testing.T) {
	m := NewMatcher()
	m.Register("Mentions Loyalty Program", func(response string, _ *testcase.TestCase) bool {
		return strings.Contains(response, "loyalty")
	})

	tc := inventoryCase()
	assert.True(t, m.Matches("join our loyalty scheme", "mentions loyalty program", tc))
	assert.False(t, m.Matches("join our points scheme", "mentions loyalty program", tc))
}
