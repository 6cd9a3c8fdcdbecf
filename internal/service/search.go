package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"pmd-directory/internal/filter"
	"pmd-directory/internal/pipeline"
	"pmd-directory/internal/sheet"
	"pmd-directory/internal/store"

	"go.uber.org/zap"
)

const resultCachePrefix = "directory:result:"

// Search computes one result for viewerKGID without a session. Ready results
// are cached per (generation, taxonomy version, privilege, selection).
func (s *DirectoryService) Search(ctx context.Context, viewerKGID string, sel filter.Selection) (pipeline.Result, error) {
	tx := s.taxonomy.Current()
	sel = filter.Revalidate(tx, sel)
	set, loaded := s.records.Snapshot()
	isAdmin := set.IsAdmin(viewerKGID)
	gen := set.Generation
	key := resultCacheKey(gen, tx.Version, isAdmin, sel)

	if loaded {
		if res, ok := s.cachedResult(ctx, key); ok {
			return res, nil
		}
	}

	snap := pipeline.Snapshot{
		Employees: set.Employees,
		Officers:  set.Officers,
		Taxonomy:  tx,
		IsAdmin:   isAdmin,
		Loaded:    loaded,
	}
	res := s.engine.Compute(ctx, snap, sel)
	res.Generation = gen

	if res.State == pipeline.StateReady {
		s.storeResult(ctx, key, res)
	}
	return res, nil
}

// ReconcileFilters applies one dropdown change to sel against the current
// taxonomy and returns the valid selection with its options.
func (s *DirectoryService) ReconcileFilters(sel filter.Selection, dim filter.Dimension, value string) (filter.Selection, filter.Options) {
	tx := s.taxonomy.Current()
	switch dim {
	case filter.DimensionNone:
		sel = filter.Revalidate(tx, sel)
	default:
		sel = filter.Apply(tx, sel, dim, value)
	}
	return sel, filter.ValidOptions(tx, sel)
}

// ExportContacts renders the result for sel as an xlsx workbook.
func (s *DirectoryService) ExportContacts(ctx context.Context, viewerKGID string, sel filter.Selection) ([]byte, error) {
	res, err := s.Search(ctx, viewerKGID, sel)
	if err != nil {
		return nil, err
	}
	if res.State != pipeline.StateReady {
		return nil, errors.New("directory not loaded yet")
	}
	return sheet.ExportContacts(res.Contacts)
}

// CreateSession starts a reactive session for viewerKGID bound to the live
// records and the taxonomy store. The viewer's privilege follows the records.
func (s *DirectoryService) CreateSession(viewerKGID string) *pipeline.Session {
	sess := s.sessions.Create(pipeline.SessionOptions{
		Debounce: s.config.Debounce(),
		Engine:   s.engine,
		Taxonomy: s.taxonomy.Current(),
		Viewer:   viewerKGID,
	})
	sess.Bind(s.records, nil, s.taxonomy)

	s.logger.Debug("Session created",
		zap.String("session_id", sess.ID()),
		zap.String("viewer_kgid", viewerKGID),
	)
	return sess
}

func (s *DirectoryService) Session(id string) (*pipeline.Session, error) {
	return s.sessions.Get(id)
}

func (s *DirectoryService) CloseSession(id string) error {
	return s.sessions.Delete(id)
}

func (s *DirectoryService) cachedResult(ctx context.Context, key string) (pipeline.Result, bool) {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrMiss) {
			s.logger.Warn("Result cache read failed", zap.Error(err))
		}
		return pipeline.Result{}, false
	}
	var res pipeline.Result
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		s.logger.Warn("Discarding undecodable cached result", zap.String("key", key), zap.Error(err))
		return pipeline.Result{}, false
	}
	return res, true
}

func (s *DirectoryService) storeResult(ctx context.Context, key string, res pipeline.Result) {
	raw, err := json.Marshal(res)
	if err != nil {
		s.logger.Error("Failed to marshal result", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), s.config.ResultCacheTTL()); err != nil {
		s.logger.Warn("Result cache write failed", zap.Error(err))
	}
}

func resultCacheKey(gen uint64, taxonomyVersion string, isAdmin bool, sel filter.Selection) string {
	raw, _ := json.Marshal(sel)
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s|%t|%s", gen, taxonomyVersion, isAdmin, raw)))
	return resultCachePrefix + hex.EncodeToString(sum[:16])
}
