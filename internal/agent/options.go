package agent

const (
	defaultModel       = "gpt-4o-mini"
	defaultTemperature = 0.7
)

// clientConfig holds configuration for a chat completion client.
type clientConfig struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
}

// Option is a functional option for configuring a chat completion client.
type Option func(*clientConfig)

// WithBaseURL sets the base URL for the API. Useful for pointing the agent
// at a local OpenAI-compatible server.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) {
		c.apiKey = key
	}
}

// WithModel sets the model used for outreach generation.
func WithModel(model string) Option {
	return func(c *clientConfig) {
		c.model = model
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(temp float64) Option {
	return func(c *clientConfig) {
		c.temperature = temp
	}
}
