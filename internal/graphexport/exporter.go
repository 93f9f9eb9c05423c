package graphexport

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"

	"transtools/internal/strref"
)

// Exporter mirrors the parsed string graph into Neo4j, where dialog
// transitions become NEXT relationships and script neighbor clusters
// become SAME_FILE relationships. That makes conversation paths
// queryable with plain Cypher.
type Exporter struct {
	driver neo4j.DriverWithContext
}

// New creates a new graph exporter.
func New(driver neo4j.DriverWithContext) *Exporter {
	return &Exporter{driver: driver}
}

// EnsureSchema creates constraints on the Neo4j database.
func (e *Exporter) EnsureSchema(ctx context.Context) error {
	session := e.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (s:GameString) REQUIRE s.id IS UNIQUE",
	}

	for _, c := range constraints {
		if _, err := session.Run(ctx, c, nil); err != nil {
			return fmt.Errorf("create constraint: %w", err)
		}
	}

	log.Info().Msg("Graph schema ensured")
	return nil
}

// Export upserts every record and its edges.
func (e *Exporter) Export(ctx context.Context, reg *strref.Registry) error {
	session := e.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	nodes := 0
	for _, id := range reg.Keys() {
		rec := reg.Get(id)
		_, err := session.Run(ctx, `
			MERGE (s:GameString {id: $id})
			SET s.text = $text,
			    s.type = $type,
			    s.file = $file
		`, map[string]any{
			"id":   id,
			"text": rec.Text,
			"type": rec.Type.String(),
			"file": rec.File,
		})
		if err != nil {
			return fmt.Errorf("upsert string %d: %w", id, err)
		}
		nodes++
	}
	log.Info().Int("nodes", nodes).Msg("Exported string nodes")

	edges := 0
	for _, id := range reg.Keys() {
		rec := reg.Get(id)
		for _, child := range rec.Children() {
			if err := e.mergeEdge(ctx, session, "NEXT", id, child); err != nil {
				log.Warn().Err(err).Int("from", id).Int("to", child).Msg("Failed to create NEXT relationship")
				continue
			}
			edges++
		}
		for _, neighbor := range rec.Neighbors() {
			// The neighbor relation is symmetric; store each pair once.
			if neighbor < id {
				continue
			}
			if err := e.mergeEdge(ctx, session, "SAME_FILE", id, neighbor); err != nil {
				log.Warn().Err(err).Int("from", id).Int("to", neighbor).Msg("Failed to create SAME_FILE relationship")
				continue
			}
			edges++
		}
	}
	log.Info().Int("relationships", edges).Msg("Exported string relationships")
	return nil
}

func (e *Exporter) mergeEdge(ctx context.Context, session neo4j.SessionWithContext, relType string, from, to int) error {
	_, err := session.Run(ctx, fmt.Sprintf(`
		MATCH (a:GameString {id: $from})
		MATCH (b:GameString {id: $to})
		MERGE (a)-[:%s]->(b)
	`, relType), map[string]any{
		"from": from,
		"to":   to,
	})
	return err
}
