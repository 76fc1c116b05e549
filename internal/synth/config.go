package synth

// Config controls the behavior of the LLMSynthesizer.
type Config struct {
	// Validators is the ordered list of validators to run on every
	// answer bundle. They execute in order; the first failure stops the
	// pipeline.
	Validators []Validator

	// NumOptions is the number of alternatives each question must have.
	NumOptions int

	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64
}

// DefaultConfig returns a Config with the standard validator chain and
// the four alternatives of a PAES item.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&DistinctOptionsValidator{},
		},
		NumOptions:  4,
		MaxTokens:   1024,
		Temperature: 0.4,
	}
}
