package storage

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"tkpi-etl/models"
)

//go:embed schema/*.sql
var schemaFS embed.FS

const (
	upsertComponentSQL = `
		INSERT INTO komponen_gizi (nama, satuan) VALUES (?, ?)
		ON CONFLICT (nama) DO UPDATE SET satuan = excluded.satuan`

	upsertFoodSQL = `
		INSERT INTO tkpi (id, kode_baru, nama_bahan_makanan, bdd, mentah_olahan, kelompok_makanan, sumber)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (kode_baru) DO UPDATE SET
			nama_bahan_makanan = excluded.nama_bahan_makanan,
			bdd                = excluded.bdd,
			mentah_olahan      = excluded.mentah_olahan,
			kelompok_makanan   = excluded.kelompok_makanan,
			sumber             = excluded.sumber
		RETURNING id`

	upsertValueSQL = `
		INSERT INTO nilai_gizi (id, tkpi_id, komponen_gizi_id, nilai) VALUES (?, ?, ?, ?)
		ON CONFLICT (tkpi_id, komponen_gizi_id) DO UPDATE SET nilai = excluded.nilai`
)

var _ NutrientStore = (*SQLStore)(nil)

// SQLStore persists TKPI data to PostgreSQL (lib/pq) or SQLite (modernc).
// Queries are written with ? placeholders and rebound per driver.
type SQLStore struct {
	db     *sqlx.DB
	driver string
}

// NewSQLStore opens a single-connection pool for driver ("postgres" or
// "sqlite") and verifies it with a ping.
func NewSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", driver, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping %s: %w", driver, err)
	}

	return &SQLStore{db: db, driver: driver}, nil
}

// BootstrapSchema creates the three TKPI tables if they do not exist.
// Production databases are expected to have them already.
func (s *SQLStore) BootstrapSchema(ctx context.Context) error {
	ddl, err := schemaFS.ReadFile("schema/" + s.driver + ".sql")
	if err != nil {
		return fmt.Errorf("store: no schema for driver %q: %w", s.driver, err)
	}

	for _, stmt := range strings.Split(string(ddl), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: bootstrap schema: %w", err)
		}
	}
	return nil
}

// SeedComponents upserts every component by name inside one transaction,
// then reads back the whole dictionary.
func (s *SQLStore) SeedComponents(ctx context.Context, components []models.NutrientComponent) (map[string]int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin seed: %w", err)
	}

	query := tx.Rebind(upsertComponentSQL)
	for _, c := range components {
		if _, err := tx.ExecContext(ctx, query, c.Name, c.Unit); err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("store: upsert component %q: %w", c.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit seed: %w", err)
	}

	var stored []models.NutrientComponent
	if err := s.db.SelectContext(ctx, &stored, `SELECT id, nama, satuan FROM komponen_gizi`); err != nil {
		return nil, fmt.Errorf("store: fetch components: %w", err)
	}

	lookup := make(map[string]int64, len(stored))
	for _, c := range stored {
		lookup[c.Name] = c.ID
	}
	return lookup, nil
}

// UpsertFood writes food keyed by its code and then each value keyed by
// (food, component), all in one transaction. A new id is generated for
// food only when its code is not stored yet; the stored id is returned
// either way and copied into food and values.
func (s *SQLStore) UpsertFood(ctx context.Context, food *models.FoodItem, values []models.NutrientValue) (string, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("store: begin food %s: %w", food.Code, err)
	}

	var id string
	err = tx.QueryRowxContext(ctx, tx.Rebind(upsertFoodSQL),
		uuid.NewString(), food.Code, food.Name, food.BDD,
		food.RawOrProcessed, food.FoodGroup, food.Source,
	).Scan(&id)
	if err != nil {
		_ = tx.Rollback()
		return "", fmt.Errorf("store: upsert food %s: %w", food.Code, err)
	}

	query := tx.Rebind(upsertValueSQL)
	for i := range values {
		v := &values[i]
		v.FoodID = id
		if v.ID == "" {
			v.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, query, v.ID, v.FoodID, v.ComponentID, v.Value); err != nil {
			_ = tx.Rollback()
			return "", fmt.Errorf("store: upsert value %s/%d: %w", food.Code, v.ComponentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("store: commit food %s: %w", food.Code, err)
	}
	food.ID = id
	return id, nil
}

// Counts returns the number of rows in each TKPI table.
func (s *SQLStore) Counts(ctx context.Context) (models.TableCounts, error) {
	var c models.TableCounts
	for _, q := range []struct {
		dst   *int64
		query string
	}{
		{&c.Components, `SELECT COUNT(*) FROM komponen_gizi`},
		{&c.Foods, `SELECT COUNT(*) FROM tkpi`},
		{&c.Values, `SELECT COUNT(*) FROM nilai_gizi`},
	} {
		if err := s.db.GetContext(ctx, q.dst, q.query); err != nil {
			return c, fmt.Errorf("store: count: %w", err)
		}
	}
	return c, nil
}

// FoodByCode fetches a stored food item by its kode_baru.
func (s *SQLStore) FoodByCode(ctx context.Context, code string) (*models.FoodItem, error) {
	f := &models.FoodItem{}
	err := s.db.GetContext(ctx, f, s.db.Rebind(`
		SELECT id, kode_baru, nama_bahan_makanan, bdd, mentah_olahan, kelompok_makanan, sumber
		FROM tkpi
		WHERE kode_baru = ?`), code)
	if err != nil {
		return nil, fmt.Errorf("store: fetch food %s: %w", code, err)
	}
	return f, nil
}

// ValuesByCode returns the stored values of one food item keyed by
// component name.
func (s *SQLStore) ValuesByCode(ctx context.Context, code string) (map[string]float64, error) {
	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(`
		SELECT k.nama, n.nilai
		FROM nilai_gizi n
		JOIN tkpi t ON t.id = n.tkpi_id
		JOIN komponen_gizi k ON k.id = n.komponen_gizi_id
		WHERE t.kode_baru = ?
		ORDER BY k.id`), code)
	if err != nil {
		return nil, fmt.Errorf("store: fetch values %s: %w", code, err)
	}
	defer rows.Close()

	values := make(map[string]float64)
	for rows.Next() {
		var name string
		var v float64
		if err := rows.Scan(&name, &v); err != nil {
			return nil, fmt.Errorf("store: scan value: %w", err)
		}
		values[name] = v
	}
	return values, rows.Err()
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
