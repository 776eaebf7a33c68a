package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lucasharte/arbot/internal/domain"
)

// OpportunityStore implements domain.OpportunityStore using PostgreSQL.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

// NewOpportunityStore creates a store backed by the given connection pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

const opportunitySelectCols = `id, token_a, token_b,
	amount_in::TEXT, expected_profit::TEXT, profit_percentage,
	venue_a_name, venue_a_router, venue_a_price,
	venue_b_name, venue_b_router, venue_b_price,
	gas_estimate::TEXT, priority, detected_at`

// Insert stores a new opportunity record. Re-inserting a known ID is a
// no-op: the recorder replays whatever the backend currently holds, so
// duplicates are expected.
func (s *OpportunityStore) Insert(ctx context.Context, opp domain.OpportunityRecord, mode domain.Mode) error {
	const query = `
		INSERT INTO opportunity_history (
			id, token_a, token_b,
			amount_in, expected_profit, profit_percentage,
			venue_a_name, venue_a_router, venue_a_price,
			venue_b_name, venue_b_router, venue_b_price,
			gas_estimate, priority, mode, detected_at
		) VALUES (
			$1, $2, $3,
			$4, $5, $6,
			$7, $8, $9,
			$10, $11, $12,
			$13, $14, $15, $16
		)
		ON CONFLICT (id) DO NOTHING`

	_, err := s.pool.Exec(ctx, query,
		opp.ID, opp.TokenA, opp.TokenB,
		opp.AmountIn, opp.ExpectedProfit, opp.ProfitPercentage,
		opp.VenueA.Name, opp.VenueA.Router, opp.VenueA.QuotedPrice,
		opp.VenueB.Name, opp.VenueB.Router, opp.VenueB.QuotedPrice,
		opp.GasEstimate, opp.Priority, string(mode), opp.Timestamp,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return fmt.Errorf("postgres: insert opportunity %s: %s: %w", opp.ID, pgErr.Code, err)
		}
		return fmt.Errorf("postgres: insert opportunity %s: %w", opp.ID, err)
	}
	return nil
}

// ListRecent returns up to limit records ordered newest first.
func (s *OpportunityStore) ListRecent(ctx context.Context, limit int) ([]domain.OpportunityRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM opportunity_history
		ORDER BY detected_at DESC
		LIMIT $1`, opportunitySelectCols)

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent opportunities: %w", err)
	}
	defer rows.Close()

	var opps []domain.OpportunityRecord
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			return nil, err
		}
		opps = append(opps, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list recent opportunities: %w", err)
	}
	return opps, nil
}

// DeleteBefore prunes records detected before the given time and returns
// the number of rows removed.
func (s *OpportunityStore) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM opportunity_history WHERE detected_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("postgres: prune opportunities: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanOpportunity(row pgx.Row) (domain.OpportunityRecord, error) {
	var opp domain.OpportunityRecord
	err := row.Scan(
		&opp.ID, &opp.TokenA, &opp.TokenB,
		&opp.AmountIn, &opp.ExpectedProfit, &opp.ProfitPercentage,
		&opp.VenueA.Name, &opp.VenueA.Router, &opp.VenueA.QuotedPrice,
		&opp.VenueB.Name, &opp.VenueB.Router, &opp.VenueB.QuotedPrice,
		&opp.GasEstimate, &opp.Priority, &opp.Timestamp,
	)
	if err != nil {
		return domain.OpportunityRecord{}, fmt.Errorf("postgres: scan opportunity: %w", err)
	}
	return opp, nil
}

// Compile-time interface check.
var _ domain.OpportunityStore = (*OpportunityStore)(nil)
