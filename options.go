package modelanalyzer

type loadOptions struct {
	weightsPath   string
	strictWeights bool
}

// LoadOption is the interface for all option functions
type LoadOption func(o *loadOptions)

// WithWeightsPath Use this function to set the path to the weights (.bin) file of an IR model.
// By default, the file next to the descriptor with the .bin extension is used.
// A weights file set with this option must exist.
func WithWeightsPath(weightsPath string) LoadOption {
	return func(o *loadOptions) {
		o.weightsPath = weightsPath
	}
}

// WithStrictWeights Fails the load if the default weights file is missing. Default is off,
// in which case a missing weights file is only logged.
func WithStrictWeights() LoadOption {
	return func(o *loadOptions) {
		o.strictWeights = true
	}
}
