package service

import (
	"context"
	"sync"

	"pmd-directory/internal/models"
	"pmd-directory/internal/observe"
	"pmd-directory/internal/pipeline"
)

// RecordHub holds the last loaded directory and fans it out to sessions.
// Every Publish swaps one immutable RecordSet.
type RecordHub struct {
	mu         sync.Mutex // 串行化 Publish
	generation uint64
	sets       *observe.Broadcaster[pipeline.RecordSet]
}

func NewRecordHub() *RecordHub {
	return &RecordHub{sets: observe.NewBroadcaster[pipeline.RecordSet]()}
}

// Publish replaces both record sets and returns the new generation.
func (h *RecordHub) Publish(employees []models.Employee, officers []models.Officer) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.generation++
	h.sets.Publish(pipeline.NewRecordSet(employees, officers, h.generation))
	return h.generation
}

func (h *RecordHub) ObserveRecords(ctx context.Context) <-chan pipeline.RecordSet {
	return h.sets.Observe(ctx)
}

// Snapshot returns the current record set. loaded is false before the first
// Publish.
func (h *RecordHub) Snapshot() (set pipeline.RecordSet, loaded bool) {
	return h.sets.Latest()
}

// Records returns the current record sets from one snapshot.
func (h *RecordHub) Records() (employees []models.Employee, officers []models.Officer, generation uint64, loaded bool) {
	set, loaded := h.Snapshot()
	return set.Employees, set.Officers, set.Generation, loaded
}

func (h *RecordHub) Generation() uint64 {
	set, _ := h.Snapshot()
	return set.Generation
}

// IsAdmin reports whether kgid belongs to an approved admin.
func (h *RecordHub) IsAdmin(kgid string) bool {
	set, _ := h.Snapshot()
	return set.IsAdmin(kgid)
}

// IsApproved reports whether kgid belongs to an approved employee.
func (h *RecordHub) IsApproved(kgid string) bool {
	set, _ := h.Snapshot()
	return set.IsApproved(kgid)
}
