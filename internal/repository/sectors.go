package repository

import (
	"context"
	"time"

	"github.com/hotelops-dev/sector-scheduler/backend/internal/domain"
)

func (r *Repository) CreateSector(sector *domain.Sector) error {
	query := `
		INSERT INTO sectors (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, sector.Name, sector.Description).Scan(&sector.ID, &sector.CreatedAt, &sector.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetSectorByID(id int64) (*domain.Sector, error) {
	query := `
		SELECT name, description, created_at, version
		FROM sectors WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	sector := &domain.Sector{
		ID: id,
	}

	dst := []any{&sector.Name, &sector.Description, &sector.CreatedAt, &sector.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return sector, nil
}

func (r *Repository) GetAllSectors() ([]*domain.Sector, error) {
	query := `
		SELECT id, name, description, created_at, version
		FROM sectors
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sectors := make([]*domain.Sector, 0)
	for rows.Next() {
		sector := &domain.Sector{}
		dst := []any{&sector.ID, &sector.Name, &sector.Description, &sector.CreatedAt, &sector.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		sectors = append(sectors, sector)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sectors, nil
}
