package config

// DomainConfig holds the business limits of context assembly
type DomainConfig struct {
	// Chain constraints
	MaxChainLength      int // 0 means unlimited
	MaxEdgesPerSnapshot int

	// Message constraints
	MaxNewMessageLength int
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxChainLength:      0,
		MaxEdgesPerSnapshot: 50000,
		MaxNewMessageLength: 100000,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// Chains stay unlimited; only the snapshot size is bounded
	config.MaxEdgesPerSnapshot = 25000

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// More permissive for development
	config.MaxEdgesPerSnapshot = 500000
	config.MaxNewMessageLength = 1000000

	return config
}
