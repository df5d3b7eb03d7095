package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/safesphere/backend/internal/metrics"
	"github.com/safesphere/backend/pkg/circuitbreaker"
	"github.com/safesphere/backend/pkg/logger"
	"github.com/safesphere/backend/pkg/retry"
)

// Client maintains the case graph: complainants, respondents and the
// complaints linking them. Writes happen only when a complaint is
// submitted; analysis itself never touches the graph, which keeps the
// analysis path read-only and idempotent.
type Client struct {
	driver      neo4j.DriverWithContext
	database    string
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

// CaseEdge describes one complaint linking a complainant to an accused
// within an organization.
type CaseEdge struct {
	ComplaintID   string
	ComplainantID string
	AccusedID     string
	OrgID         string
	RiskLevel     string
}

// AccusationPattern summarises prior complaints against one person,
// surfaced on ICC dashboards as a repeat-offender signal.
type AccusationPattern struct {
	AccusedID       string
	ComplaintCount  int
	DistinctFilers  int
	HighestRisk     string
	FirstComplaint  time.Time
	LatestComplaint time.Time
}

func NewClient(uri, username, password, database string) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(
		uri,
		neo4j.BasicAuth(username, password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	ctx := context.Background()
	err = driver.VerifyConnectivity(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to verify connectivity: %w", err)
	}

	cb := circuitbreaker.NewCircuitBreaker("neo4j", circuitbreaker.Config{
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          20 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:    3,
		InitialDelay:   200 * time.Millisecond,
		MaxDelay:       3 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	logger.Info("Neo4j case graph client initialized", zap.String("uri", uri))

	return &Client{
		driver:      driver,
		database:    database,
		cb:          cb,
		retryConfig: retryConfig,
	}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

func (c *Client) executeWithRetry(ctx context.Context, operation func(neo4j.SessionWithContext) error) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database})
			defer session.Close(ctx)
			return operation(session)
		})
	})
}

// RecordComplaint upserts the person nodes and links them through the
// complaint. Person nodes use opaque application IDs; no names or
// statement text enter the graph.
func (c *Client) RecordComplaint(ctx context.Context, edge CaseEdge) error {
	err := c.executeWithRetry(ctx, func(session neo4j.SessionWithContext) error {
		query := `
			MERGE (complainant:Person {id: $complainant_id})
			MERGE (accused:Person {id: $accused_id})
			MERGE (complaint:Complaint {id: $complaint_id})
			SET complaint.org_id = $org_id,
			    complaint.risk_level = $risk_level,
			    complaint.filed_at = timestamp()
			MERGE (complainant)-[:FILED]->(complaint)
			MERGE (complaint)-[:AGAINST]->(accused)
		`

		_, err := session.Run(ctx, query, map[string]interface{}{
			"complainant_id": edge.ComplainantID,
			"accused_id":     edge.AccusedID,
			"complaint_id":   edge.ComplaintID,
			"org_id":         edge.OrgID,
			"risk_level":     edge.RiskLevel,
		})
		if err != nil {
			return fmt.Errorf("failed to record complaint edge: %w", err)
		}
		return nil
	})

	if err != nil {
		return err
	}

	metrics.CaseGraphWrites.Inc()
	logger.Debug("Complaint recorded in case graph",
		zap.String("complaint_id", edge.ComplaintID),
		zap.String("org_id", edge.OrgID),
	)

	return nil
}

// RepeatAccusations returns the accusation pattern for one accused
// within an organization.
func (c *Client) RepeatAccusations(ctx context.Context, accusedID, orgID string) (*AccusationPattern, error) {
	pattern := &AccusationPattern{AccusedID: accusedID}

	err := c.executeWithRetry(ctx, func(session neo4j.SessionWithContext) error {
		query := `
			MATCH (filer:Person)-[:FILED]->(complaint:Complaint)-[:AGAINST]->(accused:Person {id: $accused_id})
			WHERE complaint.org_id = $org_id
			RETURN count(complaint) AS complaint_count,
			       count(DISTINCT filer) AS distinct_filers,
			       collect(complaint.risk_level) AS risk_levels,
			       min(complaint.filed_at) AS first_filed,
			       max(complaint.filed_at) AS latest_filed
		`

		result, err := session.Run(ctx, query, map[string]interface{}{
			"accused_id": accusedID,
			"org_id":     orgID,
		})
		if err != nil {
			return fmt.Errorf("failed to query accusation pattern: %w", err)
		}

		if result.Next(ctx) {
			record := result.Record()

			if count, ok := record.Get("complaint_count"); ok {
				pattern.ComplaintCount = int(count.(int64))
			}
			if filers, ok := record.Get("distinct_filers"); ok {
				pattern.DistinctFilers = int(filers.(int64))
			}
			if levels, ok := record.Get("risk_levels"); ok {
				if list, ok := levels.([]interface{}); ok {
					pattern.HighestRisk = highestRisk(list)
				}
			}
			if pattern.ComplaintCount > 0 {
				if first, ok := record.Get("first_filed"); ok {
					if ms, ok := first.(int64); ok {
						pattern.FirstComplaint = time.UnixMilli(ms)
					}
				}
				if latest, ok := record.Get("latest_filed"); ok {
					if ms, ok := latest.(int64); ok {
						pattern.LatestComplaint = time.UnixMilli(ms)
					}
				}
			}
		}

		return result.Err()
	})

	if err != nil {
		return nil, err
	}

	logger.Info("Accusation pattern queried",
		zap.String("accused_id", accusedID),
		zap.Int("complaints", pattern.ComplaintCount),
	)

	return pattern, nil
}

var riskOrder = map[string]int{
	"low":      1,
	"medium":   2,
	"high":     3,
	"critical": 4,
}

func highestRisk(levels []interface{}) string {
	highest := ""
	rank := 0
	for _, l := range levels {
		level, ok := l.(string)
		if !ok {
			continue
		}
		if riskOrder[level] > rank {
			rank = riskOrder[level]
			highest = level
		}
	}
	return highest
}
