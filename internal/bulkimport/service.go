package bulkimport

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/stockdesk/stockdesk/internal/catalog"
	"github.com/stockdesk/stockdesk/internal/connectivity"
	"github.com/stockdesk/stockdesk/internal/shared"
)

// ProductSource exposes the loaded product set for uniqueness checks.
type ProductSource interface {
	List(ctx context.Context) []catalog.Product
}

// CommitStore writes an accepted file: every product row plus the staged
// lookup values in one transaction.
type CommitStore interface {
	Commit(ctx context.Context, products []catalog.Product, lookups []catalog.LookupValue) error
}

// Service runs spreadsheet imports end to end: parse, validate, commit.
type Service struct {
	conn     *connectivity.State
	products ProductSource
	lookups  Lookups
	store    CommitStore
}

// NewService constructs the import service.
func NewService(conn *connectivity.State, products ProductSource, lookups Lookups, store CommitStore) *Service {
	return &Service{conn: conn, products: products, lookups: lookups, store: store}
}

// Preview parses and validates a workbook without writing anything. The
// per-row results drive the review screen.
func (s *Service) Preview(ctx context.Context, r io.Reader) (Result, error) {
	header, rows, err := ParseXLSX(r)
	if err != nil {
		return Result{}, err
	}
	return Validate(header, rows, s.products.List(ctx), s.lookups), nil
}

// Commit validates a workbook and, only if every row is clean, writes all
// rows and staged lookup values atomically. A file with any error commits
// nothing; the returned result still carries the per-row findings.
func (s *Service) Commit(ctx context.Context, r io.Reader) (Result, error) {
	if !s.conn.Online() {
		return Result{}, shared.OfflineError("import products")
	}
	result, err := s.Preview(ctx, r)
	if err != nil {
		return Result{}, err
	}
	if !result.OK() {
		issues := &shared.ValidationError{}
		for _, fe := range result.FileErrors {
			issues.Add("%s", fe)
		}
		for _, row := range result.Rows {
			for _, rowErr := range row.Errors {
				issues.Add("line %d: %s", row.Line, rowErr)
			}
		}
		if issues.Empty() {
			issues.Add("file has no data rows")
		}
		return result, issues
	}

	now := time.Now().UTC()
	products := make([]catalog.Product, 0, len(result.Rows))
	for _, row := range result.Rows {
		p := row.Product
		p.ID = uuid.NewString()
		p.CreatedAt = now
		p.UpdatedAt = now
		products = append(products, p)
	}
	if err := s.store.Commit(ctx, products, result.NewLookups); err != nil {
		return result, fmt.Errorf("bulkimport: commit: %w", err)
	}
	return result, nil
}
