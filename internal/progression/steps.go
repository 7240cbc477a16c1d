package progression

import (
	"time"

	"github.com/goliatone/go-estate/contracts"
)

// Step is one entry of the status stepper shown on a contract detail view.
type Step struct {
	Status      contracts.Status
	Label       string
	Color       Color
	Index       int
	Reached     bool
	Current     bool
	Advanceable bool
	ReachedAt   *time.Time
}

// Steps projects the linear path against the contract's status and history.
// For terminal contracts a step counts as reached only when history shows it.
func (r *Resolver) Steps(contract contracts.Contract) []Step {
	currentIdx := r.CurrentStepIndex(contract.CurrentStatus)
	terminal := r.IsTerminal(contract.CurrentStatus)
	onPath := currentIdx < r.table.Len()

	steps := make([]Step, 0, r.table.Len())
	for idx, status := range r.table.path {
		reachedAt := LastChangedAt(contract.History, status)
		reached := onPath && idx <= currentIdx
		if terminal {
			reached = reachedAt != nil
		}
		steps = append(steps, Step{
			Status:      status,
			Label:       r.StatusLabel(status),
			Color:       r.StatusDisplayColor(status),
			Index:       idx,
			Reached:     reached,
			Current:     status == contract.CurrentStatus,
			Advanceable: r.CanAdvanceTo(contract.CurrentStatus, status),
			ReachedAt:   reachedAt,
		})
	}
	return steps
}
