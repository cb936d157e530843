// Package store provides an in-memory implementation of the leave store
// interfaces, for testing and development.
package store

import (
	"context"
	"sync"

	"github.com/HP189-pr/admindesk-sub000/leave"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type snapshotKey struct {
	Employee leave.EmployeeID
	Date     leave.Date
}

type Memory struct {
	mu          sync.RWMutex
	periods     map[string]leave.PeriodWindow
	profiles    map[leave.EmployeeID]leave.Profile
	types       []leave.LeaveType
	holidays    []leave.Date
	allocations map[string]leave.Allocation // keyed by row id
	entries     []leave.Entry
	snapshots   map[snapshotKey]leave.BalanceSnapshot
}

func NewMemory() *Memory {
	return &Memory{
		periods:     make(map[string]leave.PeriodWindow),
		profiles:    make(map[leave.EmployeeID]leave.Profile),
		allocations: make(map[string]leave.Allocation),
		snapshots:   make(map[snapshotKey]leave.BalanceSnapshot),
	}
}

var _ leave.Stores = (*Memory)(nil)
var _ leave.TxRunner = (*Memory)(nil)

// =============================================================================
// FIXTURE SEEDING
// =============================================================================

func (m *Memory) AddPeriod(p leave.PeriodWindow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.periods[p.ID] = p
}

func (m *Memory) AddProfile(p leave.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.EmployeeID] = p
}

func (m *Memory) AddType(t leave.LeaveType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.types = append(m.types, t)
}

func (m *Memory) AddHoliday(d leave.Date) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays = append(m.holidays, d)
}

func (m *Memory) AddAllocation(a leave.Allocation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allocations[a.ID] = a
}

func (m *Memory) AddEntry(e leave.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
}

// =============================================================================
// STORE INTERFACES
// =============================================================================

func (m *Memory) ListPeriods(_ context.Context) ([]leave.PeriodWindow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]leave.PeriodWindow, 0, len(m.periods))
	for _, p := range m.periods {
		out = append(out, p)
	}
	leave.SortPeriods(out)
	return out, nil
}

func (m *Memory) GetPeriod(_ context.Context, id string) (*leave.PeriodWindow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.periods[id]
	if !ok {
		return nil, leave.ErrPeriodNotFound
	}
	return &p, nil
}

func (m *Memory) MarkActive(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.periods[id]
	if !ok {
		return leave.ErrPeriodNotFound
	}
	p.Active = true
	m.periods[id] = p
	return nil
}

func (m *Memory) ListProfiles(_ context.Context) ([]leave.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]leave.Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (m *Memory) GetProfile(_ context.Context, id leave.EmployeeID) (*leave.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, leave.ErrEmployeeNotFound
	}
	return &p, nil
}

func (m *Memory) ListTypes(_ context.Context) ([]leave.LeaveType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]leave.LeaveType(nil), m.types...), nil
}

func (m *Memory) ListHolidays(_ context.Context) ([]leave.Date, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]leave.Date(nil), m.holidays...), nil
}

func (m *Memory) AllocationsForPeriods(_ context.Context, periodIDs []string) ([]leave.Allocation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wanted := make(map[string]bool, len(periodIDs))
	for _, id := range periodIDs {
		wanted[id] = true
	}
	var out []leave.Allocation
	for _, a := range m.allocations {
		if wanted[a.PeriodID] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *Memory) UpsertAllocation(_ context.Context, a leave.Allocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allocations[a.ID] = a
	return nil
}

// ApprovedEntries returns approved entries overlapping [from, to].
// Non-approved entries never leave the store.
func (m *Memory) ApprovedEntries(_ context.Context, from, to leave.Date) ([]leave.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []leave.Entry
	for _, e := range m.entries {
		if e.Status != leave.StatusApproved {
			continue
		}
		if e.End.Before(from) || e.Start.After(to) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *Memory) UpsertSnapshot(_ context.Context, s leave.BalanceSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := snapshotKey{Employee: s.EmployeeID, Date: s.BalanceDate}
	if existing, ok := m.snapshots[key]; ok {
		// Get-or-create: keep the original row id stable across re-runs.
		s.ID = existing.ID
	}
	m.snapshots[key] = s
	return nil
}

func (m *Memory) GetSnapshot(_ context.Context, emp leave.EmployeeID, date leave.Date) (*leave.BalanceSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.snapshots[snapshotKey{Employee: emp, Date: date}]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// WithTx simulates a transaction with a snapshot + rollback on error.
func (m *Memory) WithTx(_ context.Context, fn func(s leave.Stores) error) error {
	m.mu.Lock()
	saved := m.cloneLocked()
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.restoreLocked(saved)
		m.mu.Unlock()
		return err
	}
	return nil
}

type memoryState struct {
	allocations map[string]leave.Allocation
	snapshots   map[snapshotKey]leave.BalanceSnapshot
}

func (m *Memory) cloneLocked() memoryState {
	allocs := make(map[string]leave.Allocation, len(m.allocations))
	for k, v := range m.allocations {
		allocs[k] = v
	}
	snaps := make(map[snapshotKey]leave.BalanceSnapshot, len(m.snapshots))
	for k, v := range m.snapshots {
		snaps[k] = v
	}
	return memoryState{allocations: allocs, snapshots: snaps}
}

func (m *Memory) restoreLocked(s memoryState) {
	m.allocations = s.allocations
	m.snapshots = s.snapshots
}
