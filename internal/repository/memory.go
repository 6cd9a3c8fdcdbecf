package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"pmd-directory/internal/models"
	"pmd-directory/internal/searchkey"
)

// MemoryDirectory is an in-process directory used when the database is
// disabled. It follows the same write rules as DirectoryRepository.
type MemoryDirectory struct {
	mu        sync.RWMutex
	employees map[string]models.Employee
	officers  map[string]models.Officer
	now       func() time.Time
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		employees: make(map[string]models.Employee),
		officers:  make(map[string]models.Officer),
		now:       time.Now,
	}
}

func (m *MemoryDirectory) ListEmployees(_ context.Context) ([]models.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].KGID < out[j].KGID })
	return out, nil
}

func (m *MemoryDirectory) GetEmployee(_ context.Context, kgid string) (*models.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.employees[kgid]
	if !ok {
		return nil, fmt.Errorf("employee %s: %w", kgid, ErrNotFound)
	}
	return &e, nil
}

func (m *MemoryDirectory) UpsertEmployee(_ context.Context, e *models.Employee) error {
	searchkey.StampEmployee(e)

	m.mu.Lock()
	defer m.mu.Unlock()
	for kgid, other := range m.employees {
		if kgid != e.KGID && e.Email != "" && strings.EqualFold(other.Email, e.Email) {
			return fmt.Errorf("upsert employee: email %s: %w", e.Email, ErrDuplicate)
		}
	}

	now := m.now()
	if prev, ok := m.employees[e.KGID]; ok {
		e.CreatedAt = prev.CreatedAt
	} else {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	m.employees[e.KGID] = *e
	return nil
}

func (m *MemoryDirectory) SetApproved(_ context.Context, kgid string, approved bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.employees[kgid]
	if !ok {
		return fmt.Errorf("employee %s: %w", kgid, ErrNotFound)
	}
	e.IsApproved = approved
	e.UpdatedAt = m.now()
	m.employees[kgid] = e
	return nil
}

func (m *MemoryDirectory) DeleteEmployee(_ context.Context, kgid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.employees[kgid]; !ok {
		return fmt.Errorf("employee %s: %w", kgid, ErrNotFound)
	}
	delete(m.employees, kgid)
	return nil
}

func (m *MemoryDirectory) ListOfficers(_ context.Context) ([]models.Officer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Officer, 0, len(m.officers))
	for _, o := range m.officers {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AGID < out[j].AGID })
	return out, nil
}

func (m *MemoryDirectory) UpsertOfficer(_ context.Context, o *models.Officer) error {
	searchkey.StampOfficer(o)
	m.mu.Lock()
	m.officers[o.AGID] = *o
	m.mu.Unlock()
	return nil
}

func (m *MemoryDirectory) ReplaceOfficers(_ context.Context, officers []models.Officer) error {
	next := make(map[string]models.Officer, len(officers))
	for i := range officers {
		searchkey.StampOfficer(&officers[i])
		next[officers[i].AGID] = officers[i]
	}
	m.mu.Lock()
	m.officers = next
	m.mu.Unlock()
	return nil
}

func (m *MemoryDirectory) SubstringSearch(_ context.Context, query string) ([]models.Employee, []models.Officer, error) {
	q := searchkey.Normalize(query)
	m.mu.RLock()
	defer m.mu.RUnlock()

	employees := []models.Employee{}
	for _, e := range m.employees {
		if strings.Contains(e.SearchBlob, q) {
			employees = append(employees, e)
		}
	}
	officers := []models.Officer{}
	for _, o := range m.officers {
		if strings.Contains(o.SearchBlob, q) {
			officers = append(officers, o)
		}
	}
	return employees, officers, nil
}
