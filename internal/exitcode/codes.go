package exitcode

// Exit codes for the pairs CLI.
// Callers can use these to decide whether a rerun may help.
const (
	// Success - pairs written (possibly zero for an empty prefix)
	Success = 0

	// ConfigError - missing or invalid flags or environment
	// Don't retry: fix the invocation first
	ConfigError = 1

	// NetworkError - listing failed after retries (timeout, DNS, throttling)
	// Retry later
	NetworkError = 2

	// StorageError - bucket missing or access denied
	// Don't retry: check bucket name and credentials
	StorageError = 3

	// ExclusionError - exclusion file missing or unreadable
	// Don't retry: fix the file path
	ExclusionError = 4

	// CapacityError - too few keys for the requested number of pairs
	// Don't retry: lower --num-pairs or widen --directory
	CapacityError = 5

	// ApplicationError - anything else, e.g. stdout closed while writing
	// Check logs
	ApplicationError = 6
)
