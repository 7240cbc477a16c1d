package contracts

import estatecontracts "github.com/goliatone/go-estate/contracts"

type (
	Contract           = estatecontracts.Contract
	StatusHistoryEntry = estatecontracts.StatusHistoryEntry
	Status             = estatecontracts.Status
)

// DefaultInitialStatus is assigned when neither the request nor the service configures one.
const DefaultInitialStatus = estatecontracts.DefaultInitialStatus
