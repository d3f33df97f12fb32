// Package postgres persists the astrodex collection and equipment
// profiles.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/WorldOfGZ/myastroboard/internal/domain"
)

// ErrNotFound is returned when the requested record does not exist or
// belongs to another user.
var ErrNotFound = errors.New("record not found")

// Store implements the CRUD persistence using PostgreSQL.
type Store struct {
	db        *sql.DB
	opTimeout time.Duration
}

// New creates a store. opTimeout bounds every database operation.
func New(db *sql.DB, opTimeout time.Duration) *Store {
	if opTimeout == 0 {
		opTimeout = 5 * time.Second
	}
	return &Store{db: db, opTimeout: opTimeout}
}

func (s *Store) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

// ListAstrodexItems returns the user's collection, newest first.
func (s *Store) ListAstrodexItems(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.AstrodexItem, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, queryListAstrodexItems, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.AstrodexItem
	for rows.Next() {
		var item domain.AstrodexItem
		if err := scanAstrodexItem(rows, &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetAstrodexItem returns one item by id.
func (s *Store) GetAstrodexItem(ctx context.Context, id, userID uuid.UUID) (domain.AstrodexItem, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var item domain.AstrodexItem
	row := s.db.QueryRowContext(ctx, queryGetAstrodexItem, id, userID)
	if err := scanAstrodexItem(row, &item); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.AstrodexItem{}, ErrNotFound
		}
		return domain.AstrodexItem{}, err
	}
	return item, nil
}

// CreateAstrodexItem inserts item.
func (s *Store) CreateAstrodexItem(ctx context.Context, item domain.AstrodexItem) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, queryInsertAstrodexItem,
		item.ID, item.UserID, item.Name, item.ObjectType, item.Catalogue,
		item.RA, item.Dec, item.Constellation, item.Magnitude, item.Size,
		item.Notes, item.CreatedAt, item.UpdatedAt,
	)
	return err
}

// UpdateAstrodexItem updates the mutable fields of item.
func (s *Store) UpdateAstrodexItem(ctx context.Context, item domain.AstrodexItem) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, queryUpdateAstrodexItem,
		item.ID, item.UserID, item.ObjectType, item.Constellation,
		item.Magnitude, item.Size, item.Notes, item.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteAstrodexItem removes one item.
func (s *Store) DeleteAstrodexItem(ctx context.Context, id, userID uuid.UUID) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, queryDeleteAstrodexItem, id, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ListEquipmentProfiles returns the user's profiles of one kind.
func (s *Store) ListEquipmentProfiles(ctx context.Context, userID uuid.UUID, kind domain.EquipmentKind) ([]domain.EquipmentProfile, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, queryListEquipmentProfiles, userID, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.EquipmentProfile
	for rows.Next() {
		var p domain.EquipmentProfile
		if err := scanEquipmentProfile(rows, &p); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// GetEquipmentProfile returns one profile by id.
func (s *Store) GetEquipmentProfile(ctx context.Context, id, userID uuid.UUID) (domain.EquipmentProfile, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var p domain.EquipmentProfile
	row := s.db.QueryRowContext(ctx, queryGetEquipmentProfile, id, userID)
	if err := scanEquipmentProfile(row, &p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.EquipmentProfile{}, ErrNotFound
		}
		return domain.EquipmentProfile{}, err
	}
	return p, nil
}

// CreateEquipmentProfile inserts p.
func (s *Store) CreateEquipmentProfile(ctx context.Context, p domain.EquipmentProfile) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, queryInsertEquipmentProfile,
		p.ID, p.UserID, p.Kind, p.Name, p.FocalLengthMM, p.ApertureMM,
		p.PixelSizeUM, p.SensorWidthMM, p.Notes, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// UpdateEquipmentProfile updates the mutable fields of p.
func (s *Store) UpdateEquipmentProfile(ctx context.Context, p domain.EquipmentProfile) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, queryUpdateEquipmentProfile,
		p.ID, p.UserID, p.Name, p.FocalLengthMM, p.ApertureMM,
		p.PixelSizeUM, p.SensorWidthMM, p.Notes, p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteEquipmentProfile removes one profile.
func (s *Store) DeleteEquipmentProfile(ctx context.Context, id, userID uuid.UUID) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, queryDeleteEquipmentProfile, id, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAstrodexItem(row rowScanner, item *domain.AstrodexItem) error {
	return row.Scan(
		&item.ID, &item.UserID, &item.Name, &item.ObjectType, &item.Catalogue,
		&item.RA, &item.Dec, &item.Constellation, &item.Magnitude, &item.Size,
		&item.Notes, &item.CreatedAt, &item.UpdatedAt,
	)
}

func scanEquipmentProfile(row rowScanner, p *domain.EquipmentProfile) error {
	return row.Scan(
		&p.ID, &p.UserID, &p.Kind, &p.Name, &p.FocalLengthMM, &p.ApertureMM,
		&p.PixelSizeUM, &p.SensorWidthMM, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
	)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
