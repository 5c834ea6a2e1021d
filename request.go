package samlgate

import (
	"github.com/philiph/samlgate/internal/adapters/driven/request"
	"github.com/philiph/samlgate/internal/core/ports"
)

// Re-export RequestStore interface from ports
type RequestStore = ports.RequestStore

// Re-export request adapter
type InMemoryRequestStore = request.InMemoryRequestStore

var (
	NewRequestID                       = request.NewID
	NewInMemoryRequestStore            = request.NewInMemoryRequestStore
	NewInMemoryRequestStoreWithCleanup = request.NewInMemoryRequestStoreWithCleanup
)
