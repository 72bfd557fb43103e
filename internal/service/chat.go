package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/cloo-solutions/dupefinder/internal/metrics"
	"go.uber.org/zap"
)

const (
	ChatSourceDatabase = "database"
	ChatSourceCurated  = "curated"

	chatRoleUser      = "user"
	chatRoleAssistant = "assistant"

	chatSourcesNote   = " These recommendations come from beauty blogs, Reddit threads, and product comparison sites."
	chatInsightSource = "Information gathered from beauty blogs, Reddit discussions, YouTube reviews, and product comparison sites."
	chatErrorMessage  = "Sorry, I couldn't process your request. Please try again."
)

var (
	previousProductRe = regexp.MustCompile(`dupes for ([^.]+)`)
	followUpMarkers   = []string{"cheaper", "alternative", "similar", "dupe", "like that", "show me more"}
)

// ChatMessage is one turn of the conversation so far
type ChatMessage struct {
	Role    string
	Content string
}

// ChatInput is a conversational dupe request
type ChatInput struct {
	Query          string
	Type           string
	MessageHistory []ChatMessage
}

// ChatProduct is a dupe suggestion shown in the chat
type ChatProduct struct {
	ID              string
	Name            string
	Brand           string
	Price           *float64
	ImageURL        string
	Link            string
	SimilarityScore int
	IngredientMatch int
	ColorMatch      int
	FinishMatch     int
	Source          string
}

// AnalysisInsights summarises what the chat answer is based on
type AnalysisInsights struct {
	OriginalProduct string
	Summary         string
	Sources         string
}

// ComparedTo names the product the suggestions are compared against
type ComparedTo struct {
	Name  string
	Brand string
	Price string
}

// ChatOutput is the assistant's reply
type ChatOutput struct {
	Message          string
	Products         []ChatProduct
	AnalysisInsights AnalysisInsights
	ComparedTo       *ComparedTo
}

// ChatService answers conversational dupe requests without the language model
type ChatService struct {
	keywords *KeywordExtractor
	resolver *Resolver
	dupes    *DupeService
	curated  *CuratedCatalog
	recorder *searchRecorder
	logger   *zap.Logger
	now      func() time.Time
}

func NewChatService(
	resolver *Resolver,
	dupes *DupeService,
	curated *CuratedCatalog,
	searches SearchLogRepositoryInterface,
	logger *zap.Logger,
) *ChatService {
	return NewChatServiceWithUUIDGen(resolver, dupes, curated, searches, logger, &DefaultUUIDGenerator{})
}

// NewChatServiceWithUUIDGen creates a ChatService with a custom UUID generator (for testing)
func NewChatServiceWithUUIDGen(
	resolver *Resolver,
	dupes *DupeService,
	curated *CuratedCatalog,
	searches SearchLogRepositoryInterface,
	logger *zap.Logger,
	uuidGen UUIDGenerator,
) *ChatService {
	if curated == nil {
		curated = NewCuratedCatalog()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("chat")
	return &ChatService{
		keywords: NewKeywordExtractor(),
		resolver: resolver,
		dupes:    dupes,
		curated:  curated,
		recorder: &searchRecorder{repo: searches, uuidGen: uuidGen, logger: logger},
		logger:   logger,
		now:      time.Now,
	}
}

// Respond builds a chat reply. Only invalid input is returned as an error;
// failures while searching produce an apologetic reply instead.
func (s *ChatService) Respond(ctx context.Context, input ChatInput) (*ChatOutput, error) {
	start := s.now()

	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "query is required")
	}
	queryType, err := domain.ParseQueryType(input.Type)
	if err != nil {
		return nil, err
	}

	analysis := s.keywords.Analyze(query)
	contextualQuery, previousProduct := contextualize(query, analysis, input.MessageHistory)

	record := s.recorder.begin(contextualQuery, queryType, start)
	products, original, err := s.findProducts(ctx, contextualQuery, queryType)
	if err != nil {
		s.logger.Error("chat search failed", zap.String("query", contextualQuery), zap.Error(err))
		record.Success = false
		s.recorder.finish(ctx, record, start, s.now())
		return &ChatOutput{
			Message:          chatErrorMessage,
			Products:         []ChatProduct{},
			AnalysisInsights: AnalysisInsights{Summary: "An error occurred while processing your request."},
		}, nil
	}

	if original != nil {
		record.MatchedProductID = original.ID
	}
	if len(products) > 0 && products[0].Source == ChatSourceDatabase {
		ids := make([]string, 0, len(products))
		for _, p := range products {
			ids = append(ids, p.ID)
		}
		record.Results = domain.RankResults(ids)
	}
	s.recorder.finish(ctx, record, start, s.now())
	metrics.ObserveSearch(string(queryType), original != nil, len(products))

	return buildChatOutput(query, analysis, previousProduct, original, products), nil
}

// contextualize rewrites a follow-up question to name the product discussed
// earlier in the conversation.
func contextualize(query string, analysis domain.QueryAnalysis, history []ChatMessage) (string, string) {
	if analysis.IsNewProductSearch || len(history) == 0 {
		return query, ""
	}

	for i := len(history) - 1; i >= 0; i-- {
		msg := history[i]
		if msg.Role == chatRoleUser && msg.Content == query {
			continue
		}
		if msg.Role != chatRoleAssistant {
			continue
		}
		m := previousProductRe.FindStringSubmatch(msg.Content)
		if m == nil || strings.TrimSpace(m[1]) == "" {
			continue
		}
		previous := strings.TrimSpace(m[1])
		if containsAny(strings.ToLower(query), followUpMarkers...) {
			return query + " for " + previous, previous
		}
		return query, previous
	}
	return query, ""
}

func (s *ChatService) findProducts(ctx context.Context, query string, queryType domain.QueryType) ([]ChatProduct, *domain.Product, error) {
	extracted, _ := s.keywords.Extract(ctx, query)

	original, err := s.resolver.ResolveOriginal(ctx, extracted, query, queryType)
	if err != nil {
		return nil, nil, err
	}
	dupes, err := s.dupes.FindDupes(ctx, original, extracted.Category)
	if err != nil {
		return nil, nil, err
	}

	products := make([]ChatProduct, 0, len(dupes))
	for _, d := range dupes {
		products = append(products, chatProductFromDupe(d))
	}
	if len(products) == 0 {
		products = s.curated.Lookup(query)
	}
	return products, original, nil
}

func chatProductFromDupe(d domain.DupeWithProduct) ChatProduct {
	var price *float64
	if d.Product.Price != nil && d.Product.Price.Amount > 0 {
		amount := d.Product.Price.Amount
		price = &amount
	}
	return ChatProduct{
		ID:              d.Product.ID,
		Name:            d.Product.Name,
		Brand:           d.Product.Brand,
		Price:           price,
		ImageURL:        d.Product.ImageURL,
		Link:            d.Product.URL,
		SimilarityScore: d.Dupe.SimilarityScore,
		IngredientMatch: d.Dupe.IngredientMatch,
		ColorMatch:      d.Dupe.ColorMatch,
		FinishMatch:     d.Dupe.FinishMatch,
		Source:          ChatSourceDatabase,
	}
}

func buildChatOutput(
	query string,
	analysis domain.QueryAnalysis,
	previousProduct string,
	original *domain.Product,
	products []ChatProduct,
) *ChatOutput {
	if len(products) == 0 {
		return &ChatOutput{
			Message:  fmt.Sprintf(`I couldn't find any dupes for %q. Please try a different search term or specify a popular beauty product.`, query),
			Products: []ChatProduct{},
			AnalysisInsights: AnalysisInsights{
				Summary: fmt.Sprintf("No results found for %q.", query),
				Sources: "Searched beauty blogs, social media, and product databases.",
			},
		}
	}

	n := len(products)
	subject := previousProduct
	var message string
	switch {
	case analysis.Brand != "" && analysis.ProductType != "":
		subject = analysis.Brand + " " + analysis.ProductType
		message = fmt.Sprintf("I found %d dupes for %s. Here are some alternatives at different price points.", n, subject)
	case analysis.Brand != "":
		subject = analysis.Brand
		message = fmt.Sprintf("I found %d alternative products from %s. Here are some options at different price points.", n, subject)
	case analysis.ProductType != "":
		subject = analysis.ProductType
		message = fmt.Sprintf("I found %d %s options that might interest you. Here are some highly-rated alternatives.", n, subject)
	case previousProduct != "":
		message = fmt.Sprintf("Here are %d more alternatives similar to %s. These options offer comparable results at different price points.", n, previousProduct)
	default:
		subject = query
		message = fmt.Sprintf("I found %d beauty products related to %q. Here are some options you might like.", n, query)
	}
	message += chatSourcesNote

	compared := &ComparedTo{Name: subject, Brand: analysis.Brand}
	if original != nil {
		compared.Name = original.Name
		compared.Brand = original.Brand
		if original.Price != nil && original.Price.Amount > 0 {
			compared.Price = domain.FormatPrice(original.Price)
		}
	}

	return &ChatOutput{
		Message:  message,
		Products: products,
		AnalysisInsights: AnalysisInsights{
			OriginalProduct: subject,
			Summary:         fmt.Sprintf("Found %d alternatives for %s. These products offer similar benefits at different price points.", n, subject),
			Sources:         chatInsightSource,
		},
		ComparedTo: compared,
	}
}
