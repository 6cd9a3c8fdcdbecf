package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"pmd-directory/internal/consumer"
	"pmd-directory/internal/models"
	"pmd-directory/internal/repository"
	"pmd-directory/internal/sheet"

	"go.uber.org/zap"
)

// CreateEmployee registers a new employee. Records created by an admin are
// approved immediately; self registrations wait for approval and can never
// grant admin.
func (s *DirectoryService) CreateEmployee(ctx context.Context, actorKGID string, e models.Employee) (*models.Employee, error) {
	if err := validateEmployee(&e); err != nil {
		return nil, err
	}

	if s.records.IsAdmin(actorKGID) {
		e.IsApproved = true
	} else {
		e.IsApproved = false
		e.IsAdmin = false
	}

	if _, err := s.store.GetEmployee(ctx, e.KGID); err == nil {
		return nil, fmt.Errorf("employee %s: %w", e.KGID, repository.ErrDuplicate)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if err := s.store.UpsertEmployee(ctx, &e); err != nil {
		return nil, err
	}

	event := consumer.NewChangeEvent(consumer.EventEmployeeUpserted)
	event.KGID = e.KGID
	s.afterWrite(ctx, event)
	return &e, nil
}

// UpdateEmployee changes an existing record. Employees may edit their own
// record; approval and admin flags only change when an admin edits.
func (s *DirectoryService) UpdateEmployee(ctx context.Context, actorKGID string, e models.Employee) (*models.Employee, error) {
	if err := validateEmployee(&e); err != nil {
		return nil, err
	}

	isAdmin := s.records.IsAdmin(actorKGID)
	if !isAdmin && actorKGID != e.KGID {
		return nil, ErrForbidden
	}

	prev, err := s.store.GetEmployee(ctx, e.KGID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		e.IsApproved = prev.IsApproved
		e.IsAdmin = prev.IsAdmin
	}

	if err := s.store.UpsertEmployee(ctx, &e); err != nil {
		return nil, err
	}

	event := consumer.NewChangeEvent(consumer.EventEmployeeUpserted)
	event.KGID = e.KGID
	s.afterWrite(ctx, event)
	return &e, nil
}

// ApproveEmployee sets the approval flag. Admin only.
func (s *DirectoryService) ApproveEmployee(ctx context.Context, actorKGID, kgid string, approved bool) error {
	if !s.records.IsAdmin(actorKGID) {
		return ErrForbidden
	}
	if err := s.store.SetApproved(ctx, kgid, approved); err != nil {
		return err
	}

	event := consumer.NewChangeEvent(consumer.EventEmployeeApproved)
	event.KGID = kgid
	s.afterWrite(ctx, event)
	return nil
}

// DeleteEmployee removes a record. Admin only.
func (s *DirectoryService) DeleteEmployee(ctx context.Context, actorKGID, kgid string) error {
	if !s.records.IsAdmin(actorKGID) {
		return ErrForbidden
	}
	if err := s.store.DeleteEmployee(ctx, kgid); err != nil {
		return err
	}

	event := consumer.NewChangeEvent(consumer.EventEmployeeDeleted)
	event.KGID = kgid
	s.afterWrite(ctx, event)
	return nil
}

// UpsertOfficer creates or replaces one officer record. Admin only.
func (s *DirectoryService) UpsertOfficer(ctx context.Context, actorKGID string, o models.Officer) (*models.Officer, error) {
	if !s.records.IsAdmin(actorKGID) {
		return nil, ErrForbidden
	}
	o.AGID = strings.TrimSpace(o.AGID)
	o.Name = strings.TrimSpace(o.Name)
	if o.AGID == "" || o.Name == "" {
		return nil, fmt.Errorf("%w: agid and name are required", ErrInvalidInput)
	}
	if err := s.store.UpsertOfficer(ctx, &o); err != nil {
		return nil, err
	}

	event := consumer.NewChangeEvent(consumer.EventOfficerUpserted)
	event.AGID = o.AGID
	s.afterWrite(ctx, event)
	return &o, nil
}

// ImportOfficers replaces the officer set with the rows of an xlsx sheet.
// Admin only.
func (s *DirectoryService) ImportOfficers(ctx context.Context, actorKGID string, r io.Reader) (*sheet.OfficerImport, error) {
	if !s.records.IsAdmin(actorKGID) {
		return nil, ErrForbidden
	}

	imported, err := sheet.ParseOfficers(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := s.store.ReplaceOfficers(ctx, imported.Officers); err != nil {
		return nil, err
	}

	s.logger.Info("Officers imported",
		zap.String("actor_kgid", actorKGID),
		zap.Int("officer_count", len(imported.Officers)),
		zap.Int("skipped_rows", len(imported.Skipped)),
	)
	s.afterWrite(ctx, consumer.NewChangeEvent(consumer.EventOfficersReplaced))
	return imported, nil
}

// afterWrite 发布变更事件并立即刷新本地快照
func (s *DirectoryService) afterWrite(ctx context.Context, event consumer.ChangeEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish change event",
			zap.String("event_type", event.EventType),
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
	}
	if err := s.Reload(ctx); err != nil {
		s.logger.Error("Failed to reload directory after write",
			zap.String("event_type", event.EventType),
			zap.Error(err),
		)
	}
}

func validateEmployee(e *models.Employee) error {
	e.KGID = strings.TrimSpace(e.KGID)
	e.Name = strings.TrimSpace(e.Name)
	e.Email = strings.TrimSpace(e.Email)
	switch {
	case e.KGID == "":
		return fmt.Errorf("%w: kgid is required", ErrInvalidInput)
	case e.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return nil
}
