package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"yield-farm-api/internal/storages"
)

const poolColumns = `id, name, description, token_symbol, apy, total_staked,
	min_stake_amount, max_stake_per_user, is_active, chain, project,
	external_pool_id, tvl_usd, url, created_at, updated_at`

func scanPool(row interface{ Scan(...interface{}) error }) (*storages.Pool, error) {
	var pool storages.Pool
	err := row.Scan(
		&pool.ID,
		&pool.Name,
		&pool.Description,
		&pool.TokenSymbol,
		&pool.APY,
		&pool.TotalStaked,
		&pool.MinStakeAmount,
		&pool.MaxStakePerUser,
		&pool.IsActive,
		&pool.Chain,
		&pool.Project,
		&pool.ExternalPoolID,
		&pool.TVLUsd,
		&pool.URL,
		&pool.CreatedAt,
		&pool.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &pool, nil
}

// CreatePool создает новый пул
func (s *PostgresStorage) CreatePool(ctx context.Context, pool *storages.Pool) error {
	query := `
		INSERT INTO pools (name, description, token_symbol, apy, total_staked,
			min_stake_amount, max_stake_per_user, is_active, chain, project,
			external_pool_id, tvl_usd, url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
		RETURNING id
	`

	now := time.Now()
	err := s.db.QueryRowContext(ctx, query,
		pool.Name,
		pool.Description,
		pool.TokenSymbol,
		pool.APY,
		pool.TotalStaked,
		pool.MinStakeAmount,
		pool.MaxStakePerUser,
		pool.IsActive,
		pool.Chain,
		pool.Project,
		pool.ExternalPoolID,
		pool.TVLUsd,
		pool.URL,
		now,
	).Scan(&pool.ID)

	if err != nil {
		s.logger.Errorf("Failed to create pool: %v", err)
		return fmt.Errorf("failed to create pool: %w", err)
	}

	pool.CreatedAt = now
	pool.UpdatedAt = now

	s.logger.Debugf("Created pool: ID=%d, Name=%s", pool.ID, pool.Name)
	return nil
}

// UpdatePool обновляет существующий пул
func (s *PostgresStorage) UpdatePool(ctx context.Context, pool *storages.Pool) error {
	query := `
		UPDATE pools
		SET name = $1, description = $2, token_symbol = $3, apy = $4,
			total_staked = $5, min_stake_amount = $6, max_stake_per_user = $7,
			is_active = $8, chain = $9, project = $10, external_pool_id = $11,
			tvl_usd = $12, url = $13, updated_at = $14
		WHERE id = $15
	`

	result, err := s.db.ExecContext(ctx, query,
		pool.Name,
		pool.Description,
		pool.TokenSymbol,
		pool.APY,
		pool.TotalStaked,
		pool.MinStakeAmount,
		pool.MaxStakePerUser,
		pool.IsActive,
		pool.Chain,
		pool.Project,
		pool.ExternalPoolID,
		pool.TVLUsd,
		pool.URL,
		time.Now(),
		pool.ID,
	)

	if err != nil {
		s.logger.Errorf("Failed to update pool: %v", err)
		return fmt.Errorf("failed to update pool: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return storages.ErrNotFound
	}

	return nil
}

// GetPoolByID возвращает пул по ID
func (s *PostgresStorage) GetPoolByID(ctx context.Context, poolID int64) (*storages.Pool, error) {
	return s.getPool(ctx, "id = $1", poolID)
}

// GetPoolByExternalID возвращает пул по внешнему идентификатору фида
func (s *PostgresStorage) GetPoolByExternalID(ctx context.Context, externalID string) (*storages.Pool, error) {
	if externalID == "" {
		return nil, storages.ErrNotFound
	}
	return s.getPool(ctx, "external_pool_id = $1", externalID)
}

// GetPoolByName возвращает пул по точному имени
func (s *PostgresStorage) GetPoolByName(ctx context.Context, name string) (*storages.Pool, error) {
	return s.getPool(ctx, "name = $1", name)
}

func (s *PostgresStorage) getPool(ctx context.Context, where string, arg interface{}) (*storages.Pool, error) {
	query := fmt.Sprintf("SELECT %s FROM pools WHERE %s LIMIT 1", poolColumns, where)

	pool, err := scanPool(s.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, storages.ErrNotFound
	}
	if err != nil {
		s.logger.Errorf("Failed to get pool: %v", err)
		return nil, fmt.Errorf("failed to get pool: %w", err)
	}

	return pool, nil
}

// ListActivePools возвращает активные пулы, новые первыми
func (s *PostgresStorage) ListActivePools(ctx context.Context) ([]storages.Pool, error) {
	query := fmt.Sprintf("SELECT %s FROM pools WHERE is_active = TRUE ORDER BY created_at DESC", poolColumns)
	return s.listPools(ctx, query)
}

// ListPoolsByCreation возвращает все пулы в порядке создания
func (s *PostgresStorage) ListPoolsByCreation(ctx context.Context) ([]storages.Pool, error) {
	query := fmt.Sprintf("SELECT %s FROM pools ORDER BY created_at ASC", poolColumns)
	return s.listPools(ctx, query)
}

func (s *PostgresStorage) listPools(ctx context.Context, query string) ([]storages.Pool, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.logger.Errorf("Failed to query pools: %v", err)
		return nil, fmt.Errorf("failed to query pools: %w", err)
	}
	defer rows.Close()

	var pools []storages.Pool
	for rows.Next() {
		pool, err := scanPool(rows)
		if err != nil {
			s.logger.Errorf("Failed to scan pool: %v", err)
			return nil, fmt.Errorf("failed to scan pool: %w", err)
		}
		pools = append(pools, *pool)
	}

	if err = rows.Err(); err != nil {
		s.logger.Errorf("Error iterating pools: %v", err)
		return nil, fmt.Errorf("error iterating pools: %w", err)
	}

	return pools, nil
}

// DeletePools удаляет пулы по списку ID (используется дедупликацией)
func (s *PostgresStorage) DeletePools(ctx context.Context, poolIDs []int64) error {
	if len(poolIDs) == 0 {
		return nil
	}

	_, err := s.db.ExecContext(ctx, "DELETE FROM pools WHERE id = ANY($1)", pq.Array(poolIDs))
	if err != nil {
		s.logger.Errorf("Failed to delete pools: %v", err)
		return fmt.Errorf("failed to delete pools: %w", err)
	}

	s.logger.Infof("Deleted %d pools", len(poolIDs))
	return nil
}

// IncrementPoolStake атомарно увеличивает total_staked пула
func (s *PostgresStorage) IncrementPoolStake(ctx context.Context, poolID int64, amount float64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE pools
		SET total_staked = total_staked + $1, updated_at = $2
		WHERE id = $3
	`, amount, time.Now(), poolID)

	if err != nil {
		s.logger.Errorf("Failed to increment pool stake: %v", err)
		return fmt.Errorf("failed to increment pool stake: %w", err)
	}

	return nil
}

// DecrementPoolStake атомарно уменьшает total_staked пула, не опускаясь ниже нуля
func (s *PostgresStorage) DecrementPoolStake(ctx context.Context, poolID int64, amount float64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE pools
		SET total_staked = GREATEST(total_staked - $1, 0), updated_at = $2
		WHERE id = $3
	`, amount, time.Now(), poolID)

	if err != nil {
		s.logger.Errorf("Failed to decrement pool stake: %v", err)
		return fmt.Errorf("failed to decrement pool stake: %w", err)
	}

	return nil
}
