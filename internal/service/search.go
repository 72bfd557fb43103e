package service

import (
	"context"
	"strings"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/cloo-solutions/dupefinder/internal/metrics"
	"github.com/cloo-solutions/dupefinder/internal/telemetry"
	"go.uber.org/zap"
)

// SearchInput is a user's search request
type SearchInput struct {
	Query string
	Type  string
}

// SearchOutput carries the identified original and its ranked dupes
type SearchOutput struct {
	SearchID         string
	OriginalProduct  *domain.Product
	Dupes            []domain.DupeWithProduct
	ProcessingTimeMs int64
}

// SearchService runs the extract, resolve, select and log pipeline
type SearchService struct {
	extractor ProductExtractor
	resolver  *Resolver
	dupes     *DupeService
	recorder  *searchRecorder
	now       func() time.Time
}

func NewSearchService(
	extractor ProductExtractor,
	resolver *Resolver,
	dupes *DupeService,
	searches SearchLogRepositoryInterface,
	logger *zap.Logger,
) *SearchService {
	return NewSearchServiceWithUUIDGen(extractor, resolver, dupes, searches, logger, &DefaultUUIDGenerator{})
}

// NewSearchServiceWithUUIDGen creates a SearchService with a custom UUID generator (for testing)
func NewSearchServiceWithUUIDGen(
	extractor ProductExtractor,
	resolver *Resolver,
	dupes *DupeService,
	searches SearchLogRepositoryInterface,
	logger *zap.Logger,
	uuidGen UUIDGenerator,
) *SearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{
		extractor: extractor,
		resolver:  resolver,
		dupes:     dupes,
		recorder:  &searchRecorder{repo: searches, uuidGen: uuidGen, logger: logger.Named("search")},
		now:       time.Now,
	}
}

// Search identifies the product a query refers to and returns its dupes.
func (s *SearchService) Search(ctx context.Context, input SearchInput) (*SearchOutput, error) {
	start := s.now()

	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "query is required")
	}
	queryType, err := domain.ParseQueryType(input.Type)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "SearchService.Search", telemetry.SpanAttributes{
		QueryType: string(queryType),
		Operation: "search",
	})
	defer span.End()

	record := s.recorder.begin(query, queryType, start)

	extracted, err := s.extractor.Extract(ctx, query)
	if err != nil {
		span.SetError(err)
		record.Success = false
		s.recorder.finish(ctx, record, start, s.now())
		return nil, err
	}
	if extracted == nil {
		extracted = &domain.ExtractedProduct{}
	}
	telemetry.AddBreadcrumb(ctx, "search", "extracted "+extracted.Brand+" "+extracted.ProductName)

	original, err := s.resolver.ResolveOriginal(ctx, extracted, query, queryType)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	dupes, err := s.dupes.FindDupes(ctx, original, extracted.Category)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	if original != nil {
		record.MatchedProductID = original.ID
	}
	record.Results = domain.RankResults(productIDs(dupes))
	searchID := s.recorder.finish(ctx, record, start, s.now())
	metrics.ObserveSearch(string(queryType), original != nil, len(dupes))

	return &SearchOutput{
		SearchID:         searchID,
		OriginalProduct:  original,
		Dupes:            dupes,
		ProcessingTimeMs: record.ProcessingTimeMs,
	}, nil
}

func productIDs(dupes []domain.DupeWithProduct) []string {
	ids := make([]string, 0, len(dupes))
	for _, d := range dupes {
		ids = append(ids, d.Product.ID)
	}
	return ids
}

// searchRecorder writes search analytics. Write failures are logged and
// never fail the request.
type searchRecorder struct {
	repo    SearchLogRepositoryInterface
	uuidGen UUIDGenerator
	logger  *zap.Logger
}

func (r *searchRecorder) begin(query string, queryType domain.QueryType, start time.Time) *domain.Search {
	return domain.NewSearch(r.uuidGen.NewString(), query, queryType, start.UTC())
}

func (r *searchRecorder) finish(ctx context.Context, record *domain.Search, start, end time.Time) string {
	record.ProcessingTimeMs = end.Sub(start).Milliseconds()
	if r.repo == nil {
		return record.ID
	}
	id, err := r.repo.Create(ctx, record)
	if err != nil {
		r.logger.Warn("failed to write search log",
			zap.String("search_id", record.ID),
			zap.Error(err))
		return ""
	}
	return id
}
