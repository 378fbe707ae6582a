package cache

// Keyer builds cache keys for the pipeline stages.
type Keyer interface {
	// FitKey identifies a Dirichlet fit of the samples with the given hash.
	FitKey(samplesHash string, opts FitKeyOpts) string

	// ArtifactKey identifies a rendered plot of the data with the given hash.
	ArtifactKey(dataHash string, opts ArtifactKeyOpts) string
}

// FitKeyOpts holds the fit settings that change the result.
type FitKeyOpts struct {
	MaxIterations int     `json:"max_iterations"`
	Tolerance     float64 `json:"tolerance"`
}

// ArtifactKeyOpts holds the plot settings that change the output.
type ArtifactKeyOpts struct {
	Kind      string  `json:"kind"` // scatter or density
	Format    string  `json:"format"`
	Side      float64 `json:"side"`
	Margin    float64 `json:"margin"`
	Ticks     int     `json:"ticks"`
	Divisions int     `json:"divisions"`
	Title     string  `json:"title,omitempty"`
}

// DefaultKeyer hashes the options into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// FitKey returns "fit:<sha256>".
func (DefaultKeyer) FitKey(samplesHash string, opts FitKeyOpts) string {
	return hashKey("fit", samplesHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(dataHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", dataHash, opts)
}

// KeyType returns the stage a key belongs to, for metrics labels.
func KeyType(key string) string {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == ':' {
			prefix := key[:i]
			for j := len(prefix) - 1; j >= 0; j-- {
				if prefix[j] == ':' {
					return prefix[j+1:]
				}
			}
			return prefix
		}
	}
	return "unknown"
}
