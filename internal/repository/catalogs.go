package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/domain"
)

// catalogDocument 是排课目录存放在 document 列（jsonb）中的内容
type catalogDocument struct {
	Activities         []domain.Activity    `json:"activities"`
	Rooms              []domain.Room        `json:"rooms"`
	TimeSlots          []domain.TimeSlot    `json:"timeSlots"`
	Facilitators       []domain.Facilitator `json:"facilitators"`
	SectionPairs       []domain.SectionPair `json:"sectionPairs"`
	DistantBuildings   []string             `json:"distantBuildings"`
	MaxFacilitatorLoad int32                `json:"maxFacilitatorLoad"`
}

func encodeCatalogDocument(c *domain.Catalog) ([]byte, error) {
	return json.Marshal(catalogDocument{
		Activities:         c.Activities,
		Rooms:              c.Rooms,
		TimeSlots:          c.TimeSlots,
		Facilitators:       c.Facilitators,
		SectionPairs:       c.SectionPairs,
		DistantBuildings:   c.DistantBuildings,
		MaxFacilitatorLoad: c.MaxFacilitatorLoad,
	})
}

func decodeCatalogDocument(data []byte, c *domain.Catalog) error {
	var doc catalogDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	c.Activities = doc.Activities
	c.Rooms = doc.Rooms
	c.TimeSlots = doc.TimeSlots
	c.Facilitators = doc.Facilitators
	c.SectionPairs = doc.SectionPairs
	c.DistantBuildings = doc.DistantBuildings
	c.MaxFacilitatorLoad = doc.MaxFacilitatorLoad

	return nil
}

func (r *Repository) CreateCatalog(c *domain.Catalog) error {
	document, err := encodeCatalogDocument(c)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO catalogs (name, document)
		VALUES ($1, $2)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	dst := []any{&c.ID, &c.CreatedAt, &c.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, c.Name, string(document)).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAllCatalogs() ([]*domain.Catalog, error) {
	query := `
		SELECT id, name, document, created_at, version
		FROM catalogs
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	catalogs := []*domain.Catalog{}
	for rows.Next() {
		var catalog domain.Catalog
		var document []byte

		dst := []any{
			&catalog.ID,
			&catalog.Name,
			&document,
			&catalog.CreatedAt,
			&catalog.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		if err := decodeCatalogDocument(document, &catalog); err != nil {
			return nil, err
		}

		catalogs = append(catalogs, &catalog)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return catalogs, nil
}

func (r *Repository) GetCatalogByID(id int64) (*domain.Catalog, error) {
	query := `
		SELECT name, document, created_at, version
		FROM catalogs
		WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	catalog := &domain.Catalog{ID: id}
	var document []byte

	dst := []any{&catalog.Name, &document, &catalog.CreatedAt, &catalog.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}
	if err := decodeCatalogDocument(document, catalog); err != nil {
		return nil, err
	}

	return catalog, nil
}

func (r *Repository) GetCatalogByName(name string) (*domain.Catalog, error) {
	query := `
		SELECT id, document, created_at, version
		FROM catalogs
		WHERE name = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	catalog := &domain.Catalog{Name: name}
	var document []byte

	dst := []any{&catalog.ID, &document, &catalog.CreatedAt, &catalog.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, name).Scan(dst...); err != nil {
		return nil, err
	}
	if err := decodeCatalogDocument(document, catalog); err != nil {
		return nil, err
	}

	return catalog, nil
}

func (r *Repository) UpdateCatalog(c *domain.Catalog) error {
	document, err := encodeCatalogDocument(c)
	if err != nil {
		return err
	}

	// 通过 version 实现乐观锁，防止并发更新时互相覆盖
	query := `
		UPDATE catalogs
		SET
			name = $1,
			document = $2,
			version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, c.Name, string(document), c.ID, c.Version).Scan(&c.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteCatalog(id int64) error {
	query := `DELETE FROM catalogs WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
