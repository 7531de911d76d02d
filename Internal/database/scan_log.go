package datafeed

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fenixinvest/fenix/Internal/bp"
)

// ============================================================================
// SCAN LOG - historico dos ciclos BP-Fenix
// ============================================================================

type ScanLogEntry struct {
	ID         int64     `json:"id"`
	Profile    string    `json:"profile"`
	Processed  int       `json:"processed"`
	Skipped    int       `json:"skipped"`
	Selected   int       `json:"selected"`
	TopAssets  string    `json:"top_assets"` // JSON payload of the ranked candidates
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

type ScanLogStore struct{}

func NewScanLogStore() *ScanLogStore { return &ScanLogStore{} }

// RegistrarCiclo records a finished cycle with its ranked selection
// serialized as JSON.
func (s *ScanLogStore) RegistrarCiclo(profile string, cycle *bp.CycleResult, startedAt time.Time) error {
	payload, err := json.Marshal(cycle.TopAssets)
	if err != nil {
		return fmt.Errorf("serializar top assets: %w", err)
	}

	_, err = DB.Exec(`
		INSERT INTO scan_log (profile, processed, skipped, selected, top_assets, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		profile, cycle.Processed, cycle.Skipped, len(cycle.TopAssets), string(payload), startedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("registrar ciclo: %w", err)
	}
	return nil
}

// UltimoCiclo returns the most recent entry for a profile, or nil when the
// log is empty.
func (s *ScanLogStore) UltimoCiclo(profile string) (*ScanLogEntry, error) {
	row := DB.QueryRow(`
		SELECT id, profile, processed, skipped, selected, top_assets, started_at, finished_at
		FROM scan_log
		WHERE profile = $1
		ORDER BY finished_at DESC
		LIMIT 1`, profile)

	entry := &ScanLogEntry{}
	err := row.Scan(&entry.ID, &entry.Profile, &entry.Processed, &entry.Skipped,
		&entry.Selected, &entry.TopAssets, &entry.StartedAt, &entry.FinishedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("consultar último ciclo: %w", err)
	}
	return entry, nil
}
