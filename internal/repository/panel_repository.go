package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/yourusername/fplpanel/internal/database"
	"github.com/yourusername/fplpanel/internal/models"
)

// upsertChunk bounds the statements queued in one batch
const upsertChunk = 500

const upsertPanelRowQuery = `
	INSERT INTO panel_rows (player_key, season, gw, full_name, position, team_name, opponent_team_name,
		was_home, price, stats, extra, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
	ON CONFLICT (player_key, season, gw) DO UPDATE SET
		full_name = EXCLUDED.full_name,
		position = EXCLUDED.position,
		team_name = EXCLUDED.team_name,
		opponent_team_name = EXCLUDED.opponent_team_name,
		was_home = EXCLUDED.was_home,
		price = EXCLUDED.price,
		stats = EXCLUDED.stats,
		extra = EXCLUDED.extra,
		updated_at = NOW()
`

// PostgresPanelRepository implements PanelRepository for PostgreSQL
type PostgresPanelRepository struct {
	db database.Querier
}

// NewPostgresPanelRepository creates a new panel repository
func NewPostgresPanelRepository(db database.Querier) PanelRepository {
	return &PostgresPanelRepository{db: db}
}

// transactor is implemented by *database.DB
type transactor interface {
	WithTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// UpsertRecords writes records in batches of upsertChunk. When the
// connection supports transactions all batches commit together, so a
// failed row leaves the table unchanged and zero rows written.
func (p *PostgresPanelRepository) UpsertRecords(ctx context.Context, records []models.PlayerRecord) (int, error) {
	t, ok := p.db.(transactor)
	if !ok {
		return upsertBatches(ctx, p.db, records)
	}

	var written int
	err := t.WithTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		written, err = upsertBatches(ctx, tx, records)
		return err
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

func upsertBatches(ctx context.Context, q database.Querier, records []models.PlayerRecord) (int, error) {
	written := 0
	for start := 0; start < len(records); start += upsertChunk {
		end := start + upsertChunk
		if end > len(records) {
			end = len(records)
		}

		batch := &pgx.Batch{}
		for i := start; i < end; i++ {
			args, err := panelRowArgs(&records[i])
			if err != nil {
				return written, err
			}
			batch.Queue(upsertPanelRowQuery, args...)
		}

		if err := sendBatch(ctx, q, batch); err != nil {
			return written, err
		}
		written += end - start
	}
	return written, nil
}

func sendBatch(ctx context.Context, q database.Querier, batch *pgx.Batch) error {
	results := q.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to upsert panel row: %w", err)
		}
	}
	return results.Close()
}

// GetBySeason retrieves one season's rows ordered by player and gameweek
func (p *PostgresPanelRepository) GetBySeason(ctx context.Context, season int) ([]models.PlayerRecord, error) {
	query := `
		SELECT player_key, season, gw, full_name, position, team_name, opponent_team_name,
			was_home, price, stats, extra
		FROM panel_rows
		WHERE season = $1
		ORDER BY player_key ASC, gw ASC
	`

	rows, err := p.db.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query panel rows: %w", err)
	}
	defer rows.Close()

	var records []models.PlayerRecord
	for rows.Next() {
		var (
			row   panelRow
			price *decimal.Decimal
		)
		err := rows.Scan(&row.PlayerKey, &row.Season, &row.Gameweek, &row.FullName, &row.Position,
			&row.TeamName, &row.OpponentTeamName, &row.WasHome, &price, &row.Stats, &row.Extra)
		if err != nil {
			return nil, fmt.Errorf("failed to scan panel row: %w", err)
		}
		row.Price = price
		rec, err := row.record()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// CountBySeason returns the stored row count per season
func (p *PostgresPanelRepository) CountBySeason(ctx context.Context) (map[int]int, error) {
	rows, err := p.db.Query(ctx, `SELECT season, COUNT(*) FROM panel_rows GROUP BY season`)
	if err != nil {
		return nil, fmt.Errorf("failed to count panel rows: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var season, n int
		if err := rows.Scan(&season, &n); err != nil {
			return nil, fmt.Errorf("failed to scan panel count: %w", err)
		}
		counts[season] = n
	}
	return counts, rows.Err()
}

// panelRow is the stored shape of a PlayerRecord
type panelRow struct {
	PlayerKey        int
	Season           int
	Gameweek         int
	FullName         string
	Position         string
	TeamName         string
	OpponentTeamName string
	WasHome          *bool
	Price            *decimal.Decimal
	Stats            []byte
	Extra            []byte
}

func newPanelRow(r *models.PlayerRecord) (panelRow, error) {
	stats := make(map[string]float64, len(r.Stats))
	for s, v := range r.Stats {
		stats[s.String()] = v
	}
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return panelRow{}, fmt.Errorf("failed to encode stats: %w", err)
	}
	extra := r.Extra
	if extra == nil {
		extra = map[string]string{}
	}
	extraJSON, err := json.Marshal(extra)
	if err != nil {
		return panelRow{}, fmt.Errorf("failed to encode extra columns: %w", err)
	}

	team := r.TeamNameGW
	if team == "" {
		team = r.TeamNameCurrent
	}
	return panelRow{
		PlayerKey:        r.PlayerKey(),
		Season:           r.Season,
		Gameweek:         r.Gameweek,
		FullName:         r.FullName,
		Position:         string(r.Position),
		TeamName:         team,
		OpponentTeamName: r.OpponentTeamName,
		WasHome:          r.WasHome,
		Price:            r.Price,
		Stats:            statsJSON,
		Extra:            extraJSON,
	}, nil
}

func panelRowArgs(r *models.PlayerRecord) ([]interface{}, error) {
	row, err := newPanelRow(r)
	if err != nil {
		return nil, err
	}
	return []interface{}{
		row.PlayerKey, row.Season, row.Gameweek, row.FullName, row.Position, row.TeamName,
		row.OpponentTeamName, row.WasHome, row.Price, row.Stats, row.Extra,
	}, nil
}

func (row panelRow) record() (models.PlayerRecord, error) {
	rec := models.NewPlayerRecord()
	rec.Element = row.PlayerKey
	rec.Season = row.Season
	rec.Gameweek = row.Gameweek
	rec.FullName = row.FullName
	rec.Position = models.Position(row.Position)
	rec.TeamNameGW = row.TeamName
	rec.OpponentTeamName = row.OpponentTeamName
	rec.WasHome = row.WasHome
	rec.Price = row.Price

	var stats map[string]float64
	if len(row.Stats) > 0 {
		if err := json.Unmarshal(row.Stats, &stats); err != nil {
			return rec, fmt.Errorf("failed to decode stats: %w", err)
		}
	}
	for name, v := range stats {
		if s, ok := models.StatByName(name); ok {
			rec.SetStat(s, v)
		}
	}
	if len(row.Extra) > 0 {
		if err := json.Unmarshal(row.Extra, &rec.Extra); err != nil {
			return rec, fmt.Errorf("failed to decode extra columns: %w", err)
		}
	}
	return rec, nil
}
