package testcase

import (
	"fmt"
	"time"
)

// RequestType categorizes what a CRM scenario asks the system to do.
type RequestType string

const (
	RequestInventoryUpdate       RequestType = "inventory_update"
	RequestCustomerInquiry       RequestType = "customer_inquiry"
	RequestOrderStatus           RequestType = "order_status"
	RequestProductRecommendation RequestType = "product_recommendation"
	RequestReturnProcess         RequestType = "return_process"
	RequestSizeRecommendation    RequestType = "size_recommendation"
)

// Complexity marks whether a scenario needs a human reviewer regardless of
// its automated score.
type Complexity string

const (
	ComplexitySimple  Complexity = "SIMPLE"
	ComplexityComplex Complexity = "COMPLEX"
)

// ExpectedDatabaseChange describes a database mutation the generated response
// should reflect. It is metadata checked against the response text; the
// evaluation engine never executes it.
type ExpectedDatabaseChange struct {
	Table      string         `yaml:"table" json:"table"`
	Operation  string         `yaml:"operation" json:"operation"` // INSERT, UPDATE, DELETE
	Fields     map[string]any `yaml:"fields" json:"fields"`
	Conditions map[string]any `yaml:"conditions,omitempty" json:"conditions,omitempty"`
}

// TestCase is a fixed scenario used to exercise and grade the generation path.
// The definition fields are set at registry load time; the evaluation fields
// are written by the evaluator after a response has been generated. Callers
// that evaluate the same scenario more than once must work on a Clone -- the
// evaluation fields are appended to, never reset.
type TestCase struct {
	ID                string                   `yaml:"id" json:"id"`
	RequestType       RequestType              `yaml:"request_type" json:"request_type"`
	Request           string                   `yaml:"request" json:"request"`
	Context           map[string]any           `yaml:"context" json:"context"`
	ExpectedOutput    string                   `yaml:"expected_output" json:"expected_output"`
	ExpectedDBChanges []ExpectedDatabaseChange `yaml:"expected_db_changes" json:"expected_db_changes"`
	SuccessCriteria   []string                 `yaml:"success_criteria" json:"success_criteria"`
	Complexity        Complexity               `yaml:"complexity" json:"complexity"`

	// Evaluation fields, populated after generation.
	ActualResponse        string    `yaml:"-" json:"actual_response,omitempty"`
	HumanRating           *float64  `yaml:"-" json:"human_rating,omitempty"`
	ManualEvaluationNotes string    `yaml:"-" json:"manual_evaluation_notes,omitempty"`
	EvaluatorID           string    `yaml:"-" json:"evaluator_id,omitempty"`
	EvaluationTimestamp   time.Time `yaml:"-" json:"evaluation_timestamp,omitzero"`
}

// Clone returns a deep copy of the test case. The suite runner clones once
// per execution so each evaluation mutates its own instance.
func (tc *TestCase) Clone() *TestCase {
	cp := *tc
	cp.Context = cloneMap(tc.Context)
	if tc.SuccessCriteria != nil {
		cp.SuccessCriteria = make([]string, len(tc.SuccessCriteria))
		copy(cp.SuccessCriteria, tc.SuccessCriteria)
	}
	if tc.ExpectedDBChanges != nil {
		cp.ExpectedDBChanges = make([]ExpectedDatabaseChange, len(tc.ExpectedDBChanges))
		for i, ch := range tc.ExpectedDBChanges {
			ch.Fields = cloneMap(ch.Fields)
			ch.Conditions = cloneMap(ch.Conditions)
			cp.ExpectedDBChanges[i] = ch
		}
	}
	if tc.HumanRating != nil {
		r := *tc.HumanRating
		cp.HumanRating = &r
	}
	return &cp
}

// CustomerID returns the customer identity from the case context, if any.
func (tc *TestCase) CustomerID() string {
	if id, ok := tc.Context["customer_id"].(string); ok {
		return id
	}
	return ""
}

// Validate checks that a scenario definition is usable by the evaluator.
func (tc *TestCase) Validate() error {
	if tc.ID == "" {
		return fmt.Errorf("test case has no id")
	}
	if tc.Request == "" {
		return fmt.Errorf("test case %s has no request text", tc.ID)
	}
	if len(tc.SuccessCriteria) == 0 {
		return fmt.Errorf("test case %s has no success criteria", tc.ID)
	}
	switch tc.Complexity {
	case ComplexitySimple, ComplexityComplex:
	default:
		return fmt.Errorf("test case %s has invalid complexity %q", tc.ID, tc.Complexity)
	}
	return nil
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cp := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			cp[k] = cloneMap(nested)
			continue
		}
		cp[k] = v
	}
	return cp
}
