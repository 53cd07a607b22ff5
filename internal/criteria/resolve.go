package criteria

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
)

// Resolve turns a query into criteria using, in order: a matching template
// name, the free-text parser, and finally the degraded fallback. Parser
// failures are logged and absorbed so a search always proceeds.
func Resolve(ctx context.Context, parser Parser, query string) *model.SearchCriteria {
	if c, err := FromTemplate(query); err == nil && c != nil {
		zap.L().Info("using template criteria", zap.String("template", query))
		return c
	}

	if parser != nil {
		c, err := parser.Parse(ctx, query)
		if err == nil && c != nil {
			return c
		}
		zap.L().Warn("criteria parse failed, falling back to literal query",
			zap.String("query", query), zap.Error(err))
	}

	return Fallback(query)
}
