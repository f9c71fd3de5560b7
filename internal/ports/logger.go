package ports

import "github.com/bft-labs/fibcalc/pkg/log"

// Logger is the structured logging port. It is the same interface as
// pkg/log so adapters from that package plug in directly.
type Logger = log.Logger

// Field is a structured log field.
type Field = log.Field
