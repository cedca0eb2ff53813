// internal/backend/relational.go
package backend

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"well-query-engine/internal/models"
)

// CandidateStore reads the locally-mirrored candidates table. The replica is
// eventually consistent with the CRM and strictly read-only here.
type CandidateStore struct {
	db      *sql.DB
	maxRows int
	timeout time.Duration
}

func NewCandidateStore(db *sql.DB, maxRows int, timeout time.Duration) *CandidateStore {
	return &CandidateStore{
		db:      db,
		maxRows: maxRows,
		timeout: timeout,
	}
}

const candidateColumns = "id, locator, first_name, last_name, email, title, company, location, owner_email, status, created_at, modified_at"

// Search applies the intent's filters plus the scope's owner restriction and
// returns raw rows. Temporal columns come back as time.Time; the normalizer
// serializes them at the boundary.
func (s *CandidateStore) Search(ctx context.Context, entities models.Entities, scope models.QueryScope) ([]map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		conditions []string
		args       []interface{}
	)

	addCondition := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if entities.CandidateLocator != "" {
		addCondition("locator = $%d", entities.CandidateLocator)
	}
	if entities.Location != "" {
		addCondition("location ILIKE $%d", "%"+entities.Location+"%")
	}
	if entities.SearchTerms != "" {
		addCondition("(first_name || ' ' || last_name || ' ' || company || ' ' || title) ILIKE $%d", "%"+entities.SearchTerms+"%")
	}
	if entities.FromDate != nil {
		addCondition("modified_at >= $%d", *entities.FromDate)
	}
	if entities.ToDate != nil {
		addCondition("modified_at < $%d", *entities.ToDate)
	}
	if scope.OwnerFilter != "" {
		addCondition("owner_email = $%d", scope.OwnerFilter)
	}

	query := "SELECT " + candidateColumns + " FROM candidates"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, s.maxRows)
	query += fmt.Sprintf(" ORDER BY modified_at DESC LIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("candidates query: %w", err)
	}
	defer rows.Close()

	results := make([]map[string]interface{}, 0)
	for rows.Next() {
		var (
			id, locator, firstName, lastName, email string
			title, company, location, owner, status sql.NullString
			createdAt, modifiedAt                   time.Time
		)
		if err := rows.Scan(
			&id, &locator, &firstName, &lastName, &email,
			&title, &company, &location, &owner, &status,
			&createdAt, &modifiedAt,
		); err != nil {
			return nil, fmt.Errorf("candidates scan: %w", err)
		}

		results = append(results, map[string]interface{}{
			"id":         id,
			"locator":    locator,
			"firstName":  firstName,
			"lastName":   lastName,
			"email":      email,
			"title":      title.String,
			"company":    company.String,
			"location":   location.String,
			"owner":      strings.ToLower(owner.String),
			"status":     status.String,
			"createdAt":  createdAt,
			"modifiedAt": modifiedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("candidates rows: %w", err)
	}

	return results, nil
}
