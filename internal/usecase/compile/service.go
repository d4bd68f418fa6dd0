package compile

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/kailas-cloud/provquery"
	"github.com/kailas-cloud/provquery/internal/domain/query/filter"
	"github.com/kailas-cloud/provquery/internal/domain/query/plan"
	"github.com/kailas-cloud/provquery/internal/domain/query/vector"
	logpkg "github.com/kailas-cloud/provquery/internal/logger"
	"github.com/kailas-cloud/provquery/internal/metrics"
)

// Compilation sources, used as a metrics label.
const (
	SourceHTTP = "http"
	SourceCLI  = "cli"
)

// Defaults are applied to every compiled plan.
type Defaults struct {
	PerPage    int    // per_page when the plan sets none; 0 disables
	MaxPerPage int    // upper clamp for per_page; 0 disables
	Sort       string // sort when the plan sets none
}

// Result is a compiled query.
type Result struct {
	Query        string
	FilterFields []string
	Vector       string
}

// Service replays query plans onto a builder.
type Service struct {
	defaults Defaults
	source   string
}

// New creates a compile service.
func New(defaults Defaults, source string) *Service {
	return &Service{defaults: defaults, source: source}
}

// Compile validates p, applies it to a fresh builder and returns the query string.
func (s *Service) Compile(ctx context.Context, p plan.Plan) (Result, error) {
	log := logpkg.FromContext(ctx)

	if err := p.Validate(); err != nil {
		metrics.QueriesCompiledTotal.WithLabelValues(s.source, "invalid").Inc()
		log.Debug("Rejected query plan", zap.Error(err))
		return Result{}, fmt.Errorf("compile: %w", err)
	}

	b := provquery.NewBuilder()
	for i := range p.Ops {
		apply(b, &p.Ops[i])
	}
	s.applyDefaults(b)

	res := Result{Query: b.String(), FilterFields: b.Fields()}
	if f, _, ok := b.Vector(); ok {
		res.Vector = string(f)
	}

	s.observe(res)
	log.Debug("Compiled query plan",
		zap.Int("ops", len(p.Ops)),
		zap.Strings("filter_fields", res.FilterFields),
		zap.String("vector", res.Vector),
		zap.String("query", res.Query),
	)
	return res, nil
}

func apply(b *provquery.Builder, op *plan.Op) {
	switch op.Kind {
	case plan.KindFilter:
		b.SetFilter(op.Field, filter.ParseConjunction(op.Conjunction), op.Values...)
	case plan.KindOr:
		b.Or(op.Values...)
	case plan.KindWith:
		groups := make([]provquery.Group, len(op.Groups))
		for i, g := range op.Groups {
			groups[i] = provquery.Group(g)
		}
		if op.Field != "" && op.Field != b.LastField() {
			// Touch the field so the groups land on it.
			b.SetFilter(op.Field, filter.And)
		}
		b.With(groups...)
	case plan.KindRemove:
		b.RemoveFromFilter(op.Field, op.Values...)
	case plan.KindDelete:
		b.Delete(op.Field)
	case plan.KindVector:
		b.SetVector(vector.Field(op.Field), fmt.Sprint(op.Value))
	case plan.KindClearVector:
		b.ClearVector()
	case plan.KindLocation:
		b.SetLocation(op.Place, op.Distance)
	case plan.KindParam:
		b.SetParam(op.Name, op.Value)
	}
}

func (s *Service) applyDefaults(b *provquery.Builder) {
	if v, ok := b.Param(provquery.ParamPerPage); ok {
		if n, err := strconv.Atoi(v); err == nil && s.defaults.MaxPerPage > 0 && n > s.defaults.MaxPerPage {
			b.PerPage(s.defaults.MaxPerPage)
		}
	} else if s.defaults.PerPage > 0 {
		b.PerPage(s.defaults.PerPage)
	}
	if _, ok := b.Param(provquery.ParamSort); !ok && s.defaults.Sort != "" {
		b.Sort(s.defaults.Sort)
	}
}

func (s *Service) observe(res Result) {
	metrics.QueriesCompiledTotal.WithLabelValues(s.source, "ok").Inc()
	metrics.QueryFilterFields.Observe(float64(len(res.FilterFields)))
	metrics.QueryLengthBytes.Observe(float64(len(res.Query)))
	v := res.Vector
	if v == "" {
		v = "none"
	}
	metrics.QueryVectorTotal.WithLabelValues(v).Inc()
}
