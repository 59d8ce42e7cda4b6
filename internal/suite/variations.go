package suite

import "fmt"

// Variation rewrites a test case request into an alternative phrasing so
// every scenario is exercised in several registers.
type Variation struct {
	Name  string
	Apply func(request string) string
}

// Variations returns the standard phrasing variations applied on top of the
// original request.
func Variations() []Variation {
	return []Variation{
		{
			Name: "formal",
			Apply: func(request string) string {
				return fmt.Sprintf("I would kindly request assistance with the following matter: %s", request)
			},
		},
		{
			Name: "casual",
			Apply: func(request string) string {
				return fmt.Sprintf("Hey, quick question about %s", request)
			},
		},
		{
			Name: "detailed",
			Apply: func(request string) string {
				return fmt.Sprintf("%s - I need specific details and comprehensive information about this.", request)
			},
		},
	}
}
