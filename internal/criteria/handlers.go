package criteria

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/ticket-ai/outreach-eval/internal/testcase"
)

// productIDPattern splits a product identifier like "DNM32-BLU" into its
// alphabetic and numeric runs ("dnm", "32", "blu").
var productIDPattern = regexp.MustCompile(`[a-z]+|\d+`)

// Term families for product identification. The response must match at least
// one term from each family.
var (
	productTypeTerms = []string{"denim", "jeans"}
	colorTerms       = []string{"blue", "blu"}
	sizeTerms        = []string{"32", "size 32"}
)

// matchProductIdentification checks that the response names the product type,
// color, and size. All three families must be present; naming only one or two
// of them is not enough.
func matchProductIdentification(response string, tc *testcase.TestCase) bool {
	var details []string
	if pid, ok := tc.Context["product_id"].(string); ok {
		parts := productIDPattern.FindAllString(strings.ToLower(pid), -1)
		details = append(details, parts...)
	}
	for _, v := range tc.Context {
		switch val := v.(type) {
		case string:
			details = append(details, strings.ToLower(val))
		case int:
			details = append(details, strconv.Itoa(val))
		}
	}
	slog.Debug("checking product identification", "case", tc.ID, "details", details)

	return containsAny(response, productTypeTerms) &&
		containsAny(response, colorTerms) &&
		containsAny(response, sizeTerms)
}

// matchQuantityUpdate looks up the target stock quantity from the expected
// database changes and searches the response for it in a few common phrasings.
// When no expected change carries a target quantity the criterion is
// unsatisfiable and scores false.
func matchQuantityUpdate(response string, tc *testcase.TestCase) bool {
	target, ok := targetQuantity(tc)
	if !ok {
		slog.Warn("no target quantity found in expected database changes", "case", tc.ID)
		return false
	}

	quoted := regexp.QuoteMeta(target)
	patterns := []string{
		fmt.Sprintf(`\b%s\s*(?:units?|items?|pieces?|stock)\b`, quoted),
		fmt.Sprintf(`\bset\s*(?:to|at)\s*%s\b`, quoted),
		fmt.Sprintf(`\bupdated\s*(?:to)?\s*%s\b`, quoted),
	}
	for _, p := range patterns {
		if regexp.MustCompile(p).MatchString(response) {
			return true
		}
	}
	return false
}

// targetQuantity finds the stock_quantity value from the inventory change the
// scenario expects, rendered as it would appear in prose.
func targetQuantity(tc *testcase.TestCase) (string, bool) {
	for _, change := range tc.ExpectedDBChanges {
		if change.Table != "inventory" {
			continue
		}
		if change.Operation != "UPDATE" && change.Operation != "INSERT" {
			continue
		}
		if v, ok := change.Fields["stock_quantity"]; ok {
			return formatQuantity(v), true
		}
	}
	return "", false
}

func formatQuantity(v any) string {
	switch val := v.(type) {
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

func containsAny(response string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(response, t) {
			return true
		}
	}
	return false
}
