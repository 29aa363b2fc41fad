package competitionService

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tickerduel/stockpick_backend/internal/model"
	"github.com/tickerduel/stockpick_backend/internal/model/yahooModel"
)

const (
	// MaxPortfolioItems caps the composition of a single portfolio.
	MaxPortfolioItems = 10

	// DefaultLeaderboardLimit bounds leaderboard queries.
	DefaultLeaderboardLimit = 100

	// DefaultPageSize bounds portfolio listing queries.
	DefaultPageSize = 100
)

// DefaultFallbackPrice is persisted when every price source for a symbol is
// exhausted, so current_price is never left unset.
var DefaultFallbackPrice = decimal.NewFromInt(100)

// symbolCorrections fixes common ticker typos before lookup.
var symbolCorrections = map[string]string{
	"APPL": "AAPL",
}

type MarketApi interface {
	GetQuote(ctx context.Context, symbol string) (yahooModel.Quote, error)
	GetDailyClose(ctx context.Context, symbol string) (decimal.Decimal, error)
}

type Cache interface {
	GetQuote(ctx context.Context, symbol string) (yahooModel.Quote, error)
	SetQuote(ctx context.Context, quote yahooModel.Quote) error
}

type ReportGenerator interface {
	GenerateLeaderboard(ctx context.Context, competition model.Competition, rows []model.LeaderboardRow) (fileBytes []byte, fileExtension string, err error)
}

type Repository interface {
	InsertUser(ctx context.Context, email, username, passwordHash, verificationToken string) (userID int64, err error)
	GetUser(ctx context.Context, userID int64) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	VerifyUserByToken(ctx context.Context, token string) error

	InsertCompetition(ctx context.Context, name, slug string, entryDeadline *time.Time) (competitionID int64, err error)
	GetCompetition(ctx context.Context, competitionID int64) (model.Competition, error)
	GetCompetitions(ctx context.Context) ([]model.Competition, error)
	GetLeaderboard(ctx context.Context, competitionID int64, limit int) ([]model.LeaderboardRow, error)

	InsertPortfolio(ctx context.Context, name string, userID int64, competitionID *int64) (portfolioID int64, err error)
	GetPortfolio(ctx context.Context, portfolioID int64) (model.Portfolio, error)
	GetPortfolios(ctx context.Context, offset, limit int) ([]model.Portfolio, error)
	GetPortfolioItems(ctx context.Context, portfolioID int64) ([]model.PortfolioItem, error)
	GetPortfolioIDs(ctx context.Context) ([]int64, error)
	InsertPortfolioItem(ctx context.Context, item model.PortfolioItem) (itemID int64, err error)
	UpdateItemCurrentPrice(ctx context.Context, itemID int64, currentPrice decimal.Decimal) error
	UpdatePortfolioTotals(ctx context.Context, portfolioID int64, totalValue, totalReturnPercent decimal.Decimal) error
	AddToPortfolioValue(ctx context.Context, portfolioID int64, delta decimal.Decimal) error

	WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error
}

type CompetitionService struct {
	repo            Repository
	cache           Cache
	marketApi       MarketApi
	reportGenerator ReportGenerator

	portfolioLocks keyedMutex
}

func New(repo Repository, cache Cache, marketApi MarketApi, reportGenerator ReportGenerator) *CompetitionService {
	return &CompetitionService{
		repo:            repo,
		cache:           cache,
		marketApi:       marketApi,
		reportGenerator: reportGenerator,
	}
}

// keyedMutex serializes mutations per portfolio id. Concurrent add-item and
// refresh on the same portfolio would otherwise race on the aggregates.
type keyedMutex struct {
	locks sync.Map
}

func (k *keyedMutex) lock(key int64) (unlock func()) {
	v, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// normalizeSymbol uppercases a ticker and fixes known typos.
func normalizeSymbol(symbol string) string {
	normalized := strings.ToUpper(strings.TrimSpace(symbol))
	if corrected, ok := symbolCorrections[normalized]; ok {
		return corrected
	}
	return normalized
}
