package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"transtools/internal/strref"
	"transtools/internal/textutil"
	"transtools/internal/worker"
)

// insertBatchSize bounds a single logged chunk of row inserts.
const insertBatchSize = 500

// Store persists extraction runs in PostgreSQL so that different game
// exports can be compared over time.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a new snapshot store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Row is one stored string with its position in the group ordering.
// GroupNo and GroupPos are zero-based; the complement group of unused
// IDs is not stored, since its members carry no record.
type Row struct {
	StringID int    `json:"string_id"`
	Text     string `json:"text"`
	Hash     string `json:"hash"`
	Type     string `json:"type"`
	File     string `json:"file"`
	GroupNo  int    `json:"group"`
	GroupPos int    `json:"position"`
}

// EnsureSchema creates the tables if they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS extraction_runs (
			id UUID PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			range_min INT NOT NULL,
			range_max INT NOT NULL,
			group_count INT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS game_strings (
			run_id UUID NOT NULL REFERENCES extraction_runs(id) ON DELETE CASCADE,
			string_id INT NOT NULL,
			text TEXT NOT NULL,
			text_hash TEXT NOT NULL,
			type TEXT NOT NULL,
			file TEXT NOT NULL,
			group_no INT NOT NULL,
			group_pos INT NOT NULL,
			PRIMARY KEY (run_id, string_id)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	log.Info().Msg("Store schema ensured")
	return nil
}

// SaveRun stores the grouped registry as a new extraction run and
// returns the run ID.
func (s *Store) SaveRun(ctx context.Context, reg *strref.Registry, groups []strref.Group, minInclusive, maxInclusive int) (string, error) {
	runID := uuid.New().String()
	if _, err := s.pool.Exec(ctx,
		`INSERT INTO extraction_runs (id, range_min, range_max, group_count) VALUES ($1, $2, $3, $4)`,
		runID, minInclusive, maxInclusive, len(groups)); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	rows := RowsFromGroups(reg, groups)
	inserted := 0
	for _, batch := range worker.Batch(rows, insertBatchSize) {
		for _, r := range batch {
			if _, err := s.pool.Exec(ctx,
				`INSERT INTO game_strings (run_id, string_id, text, text_hash, type, file, group_no, group_pos)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				runID, r.StringID, r.Text, r.Hash, r.Type, r.File, r.GroupNo, r.GroupPos); err != nil {
				return "", fmt.Errorf("insert string %d: %w", r.StringID, err)
			}
		}
		inserted += len(batch)
		log.Debug().Int("inserted", inserted).Int("total", len(rows)).Msg("Stored string batch")
	}

	log.Info().Str("run", runID).Int("strings", inserted).Msg("Saved extraction run")
	return runID, nil
}

// RowsFromGroups flattens the grouped registry into storable rows.
func RowsFromGroups(reg *strref.Registry, groups []strref.Group) []Row {
	var rows []Row
	for groupNo, g := range groups {
		if g.Kind == strref.KindNotUsed {
			continue
		}
		for pos, id := range g.IDs {
			rec := reg.Get(id)
			if rec == nil {
				continue
			}
			rows = append(rows, Row{
				StringID: id,
				Text:     rec.Text,
				Hash:     textutil.Hash(rec.Text),
				Type:     rec.Type.String(),
				File:     rec.File,
				GroupNo:  groupNo,
				GroupPos: pos,
			})
		}
	}
	return rows
}

// GetRun retrieves all rows of a stored run in group order.
func (s *Store) GetRun(ctx context.Context, runID string) ([]Row, error) {
	result, err := s.pool.Query(ctx,
		`SELECT string_id, text, text_hash, type, file, group_no, group_pos
		 FROM game_strings WHERE run_id = $1 ORDER BY group_no, group_pos`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	defer result.Close()

	var rows []Row
	for result.Next() {
		var r Row
		if err := result.Scan(&r.StringID, &r.Text, &r.Hash, &r.Type, &r.File, &r.GroupNo, &r.GroupPos); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rows = append(rows, r)
	}
	return rows, result.Err()
}

// ExportTSV writes a stored run to a TSV file.
func (s *Store) ExportTSV(ctx context.Context, runID, outputPath string) error {
	rows, err := s.GetRun(ctx, runID)
	if err != nil {
		return err
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create TSV file: %w", err)
	}
	defer f.Close()

	fmt.Fprintln(f, "string_id\ttext\ttype\tfile\tgroup\tposition")
	for _, r := range rows {
		fmt.Fprintf(f, "%d\t%s\t%s\t%s\t%d\t%d\n",
			r.StringID, escapeTSV(r.Text), r.Type, r.File, r.GroupNo, r.GroupPos)
	}

	log.Info().Str("path", outputPath).Int("rows", len(rows)).Msg("Exported run to TSV")
	return nil
}

// ExportJSON writes a stored run to a JSON file.
func (s *Store) ExportJSON(ctx context.Context, runID, outputPath string) error {
	rows, err := s.GetRun(ctx, runID)
	if err != nil {
		return err
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create JSON file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(rows); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}

	log.Info().Str("path", outputPath).Int("rows", len(rows)).Msg("Exported run to JSON")
	return nil
}

// escapeTSV replaces tabs and newlines in a string for TSV safety.
func escapeTSV(s string) string {
	s = strings.ReplaceAll(s, "\t", "\\t")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	return s
}
