package socialgraph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/jupiterclapton/reelfeed/internal/core/ports"
)

// Neo4jGraph lit les relations FOLLOWS. Lecture seule côté feed :
// la création/suppression des relations appartient au domaine social.
type Neo4jGraph struct {
	driver neo4j.DriverWithContext
}

func NewNeo4jGraph(driver neo4j.DriverWithContext) ports.SocialGraph {
	return &Neo4jGraph{driver: driver}
}

func (g *Neo4jGraph) FollowedCreators(ctx context.Context, userID string) ([]string, error) {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		// La flèche part du follower : u suit c
		query := `MATCH (u:User {id: $userId})-[:FOLLOWS]->(c:User) RETURN c.id as creatorId`
		res, err := tx.Run(ctx, query, map[string]any{"userId": userID})
		if err != nil {
			return nil, err
		}

		var creators []string
		for res.Next(ctx) {
			id, _ := res.Record().Get("creatorId")
			creators = append(creators, id.(string))
		}
		return creators, res.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}
