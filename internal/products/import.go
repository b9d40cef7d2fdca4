package products

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	pkgerrors "github.com/eps-tools/storefront-backend/pkg/errors"
)

// BulkImport creates each row in its own transaction. A rejected row is
// counted and reported without affecting the others.
func (s *service) BulkImport(ctx context.Context, rows []CreateProductInput) (*ImportResult, error) {
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no products to import")
	}

	result := &ImportResult{}
	var combined error
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := s.CreateProduct(ctx, row); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, ImportRowError{
				Index:   i,
				SKU:     row.SKU,
				Code:    string(pkgerrors.CodeOf(err)),
				Message: publicMessage(err),
			})
			combined = multierr.Append(combined, fmt.Errorf("row %d (%s): %w", i, row.SKU, err))
			continue
		}
		result.Success++
	}

	s.metrics.ProductsImported(result.Success, result.Failed)
	if combined != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"imported":   result.Success,
			"failed":     result.Failed,
			"error":      combined.Error(),
			"error_rows": len(multierr.Errors(combined)),
		})
		s.logg.Warn(logCtx, "products.bulk_import.partial")
	}
	return result, nil
}

func publicMessage(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Message()
	}
	return err.Error()
}
