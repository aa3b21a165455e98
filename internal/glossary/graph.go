package glossary

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"
)

// GraphStore keeps the glossary in Neo4j as Term nodes linked by
// RELATED_TO edges.
type GraphStore struct {
	driver neo4j.DriverWithContext
	log    zerolog.Logger
}

// NewGraphStore wraps an open driver.
func NewGraphStore(driver neo4j.DriverWithContext, log zerolog.Logger) *GraphStore {
	return &GraphStore{driver: driver, log: log}
}

// ConnectGraph opens a driver and checks connectivity.
func ConnectGraph(ctx context.Context, uri, user, password string, log zerolog.Logger) (*GraphStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("connect neo4j: %w", err)
	}
	return NewGraphStore(driver, log), nil
}

// Close closes the driver.
func (g *GraphStore) Close(ctx context.Context) error {
	return g.driver.Close(ctx)
}

// EnsureSchema creates the uniqueness constraint on term sources.
func (g *GraphStore) EnsureSchema(ctx context.Context) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	if _, err := session.Run(ctx,
		"CREATE CONSTRAINT IF NOT EXISTS FOR (t:Term) REQUIRE t.source IS UNIQUE", nil); err != nil {
		return fmt.Errorf("create constraint: %w", err)
	}
	g.log.Info().Msg("Glossary schema ensured")
	return nil
}

// Import upserts terms and their relations. A relation to a term that does
// not exist is logged and skipped.
func (g *GraphStore) Import(ctx context.Context, terms []Term) (int, error) {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	for _, t := range terms {
		_, err := session.Run(ctx, `
			MERGE (t:Term {source: $source})
			SET t.target = $target,
			    t.category = $category
		`, map[string]any{
			"source":   t.Source,
			"target":   t.Target,
			"category": t.Category,
		})
		if err != nil {
			return 0, fmt.Errorf("upsert term %s: %w", t.Source, err)
		}
	}

	links := 0
	for _, t := range terms {
		for _, rel := range t.Related {
			result, err := session.Run(ctx, `
				MATCH (a:Term {source: $from})
				MATCH (b:Term {source: $to})
				MERGE (a)-[:RELATED_TO]->(b)
				RETURN a.source AS linked
			`, map[string]any{"from": t.Source, "to": rel})
			if err != nil {
				return len(terms), fmt.Errorf("link %s to %s: %w", t.Source, rel, err)
			}
			if !result.Next(ctx) {
				g.log.Warn().Str("from", t.Source).Str("to", rel).Msg("Related term not found")
				continue
			}
			links++
		}
	}

	g.log.Info().Int("terms", len(terms)).Int("relations", links).Msg("Imported glossary")
	return len(terms), nil
}

// Lookup returns the stored terms whose source occurs in text, longest
// first, each with the sources of its neighbours.
func (g *GraphStore) Lookup(ctx context.Context, text string) ([]Term, error) {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (t:Term)
		WHERE toLower($text) CONTAINS toLower(t.source)
		OPTIONAL MATCH (t)-[:RELATED_TO]-(n:Term)
		RETURN t.source AS source, t.target AS target, t.category AS category,
		       collect(DISTINCT n.source) AS related
		ORDER BY size(t.source) DESC
	`, map[string]any{"text": text})
	if err != nil {
		return nil, fmt.Errorf("query terms: %w", err)
	}

	var terms []Term
	for result.Next(ctx) {
		record := result.Record()
		source, _ := record.Get("source")
		target, _ := record.Get("target")
		category, _ := record.Get("category")
		related, _ := record.Get("related")

		t := Term{
			Source:   asString(source),
			Target:   asString(target),
			Category: asString(category),
		}
		if list, ok := related.([]any); ok {
			for _, r := range list {
				if s := asString(r); s != "" {
					t.Related = append(t.Related, s)
				}
			}
		}
		terms = append(terms, t)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("read terms: %w", err)
	}

	g.log.Debug().Int("terms", len(terms)).Msg("Glossary lookup complete")
	return terms, nil
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
