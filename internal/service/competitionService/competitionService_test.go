package competitionService

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tickerduel/stockpick_backend/data/repository"
	"github.com/tickerduel/stockpick_backend/internal/model"
	"github.com/tickerduel/stockpick_backend/internal/model/yahooModel"
	"github.com/tickerduel/stockpick_backend/internal/service"
)

type fakeRepo struct {
	users        map[int64]model.User
	competitions map[int64]model.Competition
	portfolios   map[int64]model.Portfolio
	items        map[int64][]model.PortfolioItem

	nextUserID        int64
	nextCompetitionID int64
	nextPortfolioID   int64
	nextItemID        int64

	leaderboard []model.LeaderboardRow
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:        make(map[int64]model.User),
		competitions: make(map[int64]model.Competition),
		portfolios:   make(map[int64]model.Portfolio),
		items:        make(map[int64][]model.PortfolioItem),
	}
}

func (r *fakeRepo) InsertUser(_ context.Context, email, username, passwordHash, _ string) (int64, error) {
	for _, u := range r.users {
		if u.Email == email {
			return 0, repository.ErrAlreadyExists
		}
	}
	r.nextUserID++
	r.users[r.nextUserID] = model.User{UserID: r.nextUserID, Email: email, Username: username, PasswordHash: passwordHash}
	return r.nextUserID, nil
}

func (r *fakeRepo) GetUser(_ context.Context, userID int64) (model.User, error) {
	user, ok := r.users[userID]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (r *fakeRepo) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (r *fakeRepo) VerifyUserByToken(_ context.Context, _ string) error {
	return nil
}

func (r *fakeRepo) InsertCompetition(_ context.Context, name, slug string, entryDeadline *time.Time) (int64, error) {
	for _, c := range r.competitions {
		if c.Slug == slug {
			return 0, repository.ErrAlreadyExists
		}
	}
	r.nextCompetitionID++
	r.competitions[r.nextCompetitionID] = model.Competition{CompetitionID: r.nextCompetitionID, Name: name, Slug: slug, EntryDeadline: entryDeadline}
	return r.nextCompetitionID, nil
}

func (r *fakeRepo) GetCompetition(_ context.Context, competitionID int64) (model.Competition, error) {
	competition, ok := r.competitions[competitionID]
	if !ok {
		return model.Competition{}, repository.ErrNotFound
	}
	return competition, nil
}

func (r *fakeRepo) GetCompetitions(_ context.Context) ([]model.Competition, error) {
	result := make([]model.Competition, 0, len(r.competitions))
	for _, c := range r.competitions {
		result = append(result, c)
	}
	return result, nil
}

func (r *fakeRepo) GetLeaderboard(_ context.Context, _ int64, limit int) ([]model.LeaderboardRow, error) {
	if len(r.leaderboard) > limit {
		return r.leaderboard[:limit], nil
	}
	return r.leaderboard, nil
}

func (r *fakeRepo) InsertPortfolio(_ context.Context, name string, userID int64, competitionID *int64) (int64, error) {
	r.nextPortfolioID++
	r.portfolios[r.nextPortfolioID] = model.Portfolio{
		PortfolioID:   r.nextPortfolioID,
		Name:          name,
		OwnerID:       userID,
		CompetitionID: competitionID,
		CreatedAt:     time.Now().UTC(),
	}
	return r.nextPortfolioID, nil
}

func (r *fakeRepo) GetPortfolio(_ context.Context, portfolioID int64) (model.Portfolio, error) {
	portfolio, ok := r.portfolios[portfolioID]
	if !ok {
		return model.Portfolio{}, repository.ErrNotFound
	}
	return portfolio, nil
}

func (r *fakeRepo) GetPortfolios(_ context.Context, offset, limit int) ([]model.Portfolio, error) {
	var all []model.Portfolio
	for id := int64(1); id <= r.nextPortfolioID; id++ {
		if p, ok := r.portfolios[id]; ok {
			all = append(all, p)
		}
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeRepo) GetPortfolioItems(_ context.Context, portfolioID int64) ([]model.PortfolioItem, error) {
	items := make([]model.PortfolioItem, len(r.items[portfolioID]))
	copy(items, r.items[portfolioID])
	return items, nil
}

func (r *fakeRepo) GetPortfolioIDs(_ context.Context) ([]int64, error) {
	ids := make([]int64, 0, len(r.portfolios))
	for id := range r.portfolios {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *fakeRepo) InsertPortfolioItem(_ context.Context, item model.PortfolioItem) (int64, error) {
	for _, existing := range r.items[item.PortfolioID] {
		if existing.Symbol == item.Symbol {
			return 0, repository.ErrAlreadyExists
		}
	}
	r.nextItemID++
	item.ItemID = r.nextItemID
	r.items[item.PortfolioID] = append(r.items[item.PortfolioID], item)
	return item.ItemID, nil
}

func (r *fakeRepo) UpdateItemCurrentPrice(_ context.Context, itemID int64, currentPrice decimal.Decimal) error {
	for portfolioID, items := range r.items {
		for i := range items {
			if items[i].ItemID == itemID {
				r.items[portfolioID][i].CurrentPrice = currentPrice
				return nil
			}
		}
	}
	return repository.ErrNotFound
}

func (r *fakeRepo) UpdatePortfolioTotals(_ context.Context, portfolioID int64, totalValue, totalReturnPercent decimal.Decimal) error {
	portfolio, ok := r.portfolios[portfolioID]
	if !ok {
		return repository.ErrNotFound
	}
	portfolio.TotalValue = totalValue
	portfolio.TotalReturnPercent = totalReturnPercent
	r.portfolios[portfolioID] = portfolio
	return nil
}

func (r *fakeRepo) AddToPortfolioValue(_ context.Context, portfolioID int64, delta decimal.Decimal) error {
	portfolio, ok := r.portfolios[portfolioID]
	if !ok {
		return repository.ErrNotFound
	}
	portfolio.TotalValue = portfolio.TotalValue.Add(delta)
	r.portfolios[portfolioID] = portfolio
	return nil
}

func (r *fakeRepo) WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error {
	return tFunc(ctx)
}

type fakeMarketApi struct {
	quotes      map[string]decimal.Decimal
	closes      map[string]decimal.Decimal
	quoteErr    error
	closeErr    error
	quoteCalls  int
	closeCalls  int
}

func (m *fakeMarketApi) GetQuote(_ context.Context, symbol string) (yahooModel.Quote, error) {
	m.quoteCalls++
	if m.quoteErr != nil {
		return yahooModel.Quote{}, m.quoteErr
	}
	price, ok := m.quotes[symbol]
	if !ok {
		return yahooModel.Quote{}, errors.New("quote unavailable")
	}
	return yahooModel.Quote{Symbol: symbol, Price: price}, nil
}

func (m *fakeMarketApi) GetDailyClose(_ context.Context, symbol string) (decimal.Decimal, error) {
	m.closeCalls++
	if m.closeErr != nil {
		return decimal.Decimal{}, m.closeErr
	}
	price, ok := m.closes[symbol]
	if !ok {
		return decimal.Decimal{}, errors.New("close unavailable")
	}
	return price, nil
}

type noopCache struct{}

func (noopCache) GetQuote(_ context.Context, _ string) (yahooModel.Quote, error) {
	return yahooModel.Quote{}, errors.New("cache miss")
}

func (noopCache) SetQuote(_ context.Context, _ yahooModel.Quote) error { return nil }

type fakeReportGenerator struct{}

func (fakeReportGenerator) GenerateLeaderboard(_ context.Context, _ model.Competition, _ []model.LeaderboardRow) ([]byte, string, error) {
	return []byte("workbook"), ".xlsx", nil
}

func newTestService(repo *fakeRepo, market MarketApi) *CompetitionService {
	return New(repo, noopCache{}, market, fakeReportGenerator{})
}

func seedCompetition(repo *fakeRepo, deadline *time.Time) int64 {
	id, _ := repo.InsertCompetition(context.Background(), "Test Competition", "test", deadline)
	return id
}

func futureDeadline() *time.Time {
	deadline := time.Now().UTC().Add(24 * time.Hour)
	return &deadline
}

func pastDeadline() *time.Time {
	deadline := time.Now().UTC().Add(-24 * time.Hour)
	return &deadline
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestCreatePortfolio_TotalValueIsSumOfItems(t *testing.T) {
	repo := newFakeRepo()
	market := &fakeMarketApi{quotes: map[string]decimal.Decimal{
		"AAPL": dec("150"),
		"MSFT": dec("300"),
	}}
	srv := newTestService(repo, market)

	portfolio, err := srv.CreatePortfolio(context.Background(), 1, "My Picks", nil, []model.PortfolioItemRequest{
		{Symbol: "AAPL", AssetType: "STOCK", Quantity: dec("2")},
		{Symbol: "MSFT", AssetType: "STOCK", Quantity: dec("1")},
	})
	require.NoError(t, err)

	require.True(t, portfolio.TotalValue.Equal(dec("600")), "got %s", portfolio.TotalValue)
	require.True(t, portfolio.TotalReturnPercent.IsZero())
	require.Len(t, portfolio.Items, 2)
	for _, item := range portfolio.Items {
		require.True(t, item.InitialPrice.Equal(item.CurrentPrice))
	}
}

func TestCreatePortfolio_SymbolNormalization(t *testing.T) {
	repo := newFakeRepo()
	market := &fakeMarketApi{quotes: map[string]decimal.Decimal{"AAPL": dec("150")}}
	srv := newTestService(repo, market)

	for _, input := range []string{"appl", "APPL", " aapl "} {
		portfolio, err := srv.CreatePortfolio(context.Background(), 1, "p-"+input, nil, []model.PortfolioItemRequest{
			{Symbol: input, AssetType: "STOCK", Quantity: dec("1")},
		})
		require.NoError(t, err)
		require.Equal(t, "AAPL", portfolio.Items[0].Symbol)
		require.True(t, portfolio.Items[0].InitialPrice.Equal(dec("150")))
	}
}

func TestCreatePortfolio_RejectsOverLimit(t *testing.T) {
	repo := newFakeRepo()
	srv := newTestService(repo, &fakeMarketApi{})

	requests := make([]model.PortfolioItemRequest, MaxPortfolioItems+1)
	for i := range requests {
		requests[i] = model.PortfolioItemRequest{Symbol: string(rune('A' + i)), AssetType: "STOCK", Quantity: dec("1")}
	}

	_, err := srv.CreatePortfolio(context.Background(), 1, "too big", nil, requests)
	require.ErrorIs(t, err, service.ErrItemLimitReached)
	require.Empty(t, repo.portfolios)
}

func TestCreatePortfolio_RejectsDuplicateSymbols(t *testing.T) {
	repo := newFakeRepo()
	srv := newTestService(repo, &fakeMarketApi{quotes: map[string]decimal.Decimal{"AAPL": dec("150")}})

	_, err := srv.CreatePortfolio(context.Background(), 1, "dups", nil, []model.PortfolioItemRequest{
		{Symbol: "aapl", AssetType: "STOCK", Quantity: dec("1")},
		{Symbol: "APPL", AssetType: "STOCK", Quantity: dec("1")},
	})
	require.ErrorIs(t, err, service.ErrDuplicateSymbol)
	require.Empty(t, repo.portfolios)
}

func TestCreatePortfolio_RejectsNonPositiveQuantity(t *testing.T) {
	repo := newFakeRepo()
	srv := newTestService(repo, &fakeMarketApi{})

	_, err := srv.CreatePortfolio(context.Background(), 1, "bad qty", nil, []model.PortfolioItemRequest{
		{Symbol: "AAPL", AssetType: "STOCK", Quantity: dec("-1")},
	})
	require.ErrorIs(t, err, service.ErrInvalidQuantity)
}

func TestCreatePortfolio_DeadlinePassed(t *testing.T) {
	repo := newFakeRepo()
	competitionID := seedCompetition(repo, pastDeadline())
	srv := newTestService(repo, &fakeMarketApi{})

	_, err := srv.CreatePortfolio(context.Background(), 1, "late", &competitionID, nil)
	require.ErrorIs(t, err, service.ErrDeadlinePassed)
}

func TestCreatePortfolio_MissingCompetition(t *testing.T) {
	repo := newFakeRepo()
	srv := newTestService(repo, &fakeMarketApi{})

	missing := int64(42)
	_, err := srv.CreatePortfolio(context.Background(), 1, "orphan", &missing, nil)
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestFetchCreationPrice_FallbackChain(t *testing.T) {
	tests := []struct {
		name   string
		market *fakeMarketApi
		want   decimal.Decimal
	}{
		{
			name:   "quote wins",
			market: &fakeMarketApi{quotes: map[string]decimal.Decimal{"AAPL": dec("151.5")}, closes: map[string]decimal.Decimal{"AAPL": dec("149")}},
			want:   dec("151.5"),
		},
		{
			name:   "daily close when quote missing",
			market: &fakeMarketApi{closes: map[string]decimal.Decimal{"AAPL": dec("149")}},
			want:   dec("149"),
		},
		{
			name:   "default when both missing",
			market: &fakeMarketApi{},
			want:   DefaultFallbackPrice,
		},
		{
			name:   "errors are absorbed",
			market: &fakeMarketApi{quoteErr: errors.New("boom"), closeErr: errors.New("boom")},
			want:   DefaultFallbackPrice,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestService(newFakeRepo(), tc.market)
			price := srv.fetchCreationPrice(context.Background(), "AAPL")
			require.True(t, price.Equal(tc.want), "got %s want %s", price, tc.want)
		})
	}
}

func TestFetchRefreshPrice_FallsBackToInitialPrice(t *testing.T) {
	srv := newTestService(newFakeRepo(), &fakeMarketApi{quoteErr: errors.New("down"), closeErr: errors.New("down")})

	item := model.PortfolioItem{Symbol: "AAPL", InitialPrice: dec("120"), Quantity: dec("1")}
	price := srv.fetchRefreshPrice(context.Background(), item)
	require.True(t, price.Equal(dec("120")))

	item.InitialPrice = decimal.Zero
	price = srv.fetchRefreshPrice(context.Background(), item)
	require.True(t, price.Equal(DefaultFallbackPrice))
}

func TestAddPortfolioItem_BumpsValueWithoutRecomputingReturn(t *testing.T) {
	repo := newFakeRepo()
	market := &fakeMarketApi{quotes: map[string]decimal.Decimal{"AAPL": dec("100"), "MSFT": dec("50")}}
	srv := newTestService(repo, market)

	created, err := srv.CreatePortfolio(context.Background(), 1, "picks", nil, []model.PortfolioItemRequest{
		{Symbol: "AAPL", AssetType: "STOCK", Quantity: dec("1")},
	})
	require.NoError(t, err)

	// simulate a refresh after the market moved
	market.quotes["AAPL"] = dec("110")
	refreshed, err := srv.RefreshPortfolio(context.Background(), created.PortfolioID)
	require.NoError(t, err)
	require.True(t, refreshed.TotalReturnPercent.Equal(dec("10")), "got %s", refreshed.TotalReturnPercent)

	updated, err := srv.AddPortfolioItem(context.Background(), created.PortfolioID, 1, model.PortfolioItemRequest{
		Symbol: "MSFT", AssetType: "STOCK", Quantity: dec("2"),
	})
	require.NoError(t, err)

	require.True(t, updated.TotalValue.Equal(dec("210")), "got %s", updated.TotalValue)
	require.True(t, updated.TotalReturnPercent.Equal(dec("10")), "return must stay stale until next refresh, got %s", updated.TotalReturnPercent)
}

func TestAddPortfolioItem_EleventhItemRejectedStateUnchanged(t *testing.T) {
	repo := newFakeRepo()
	quotes := make(map[string]decimal.Decimal)
	requests := make([]model.PortfolioItemRequest, MaxPortfolioItems)
	for i := range requests {
		symbol := "SY" + string(rune('A'+i))
		quotes[symbol] = dec("10")
		requests[i] = model.PortfolioItemRequest{Symbol: symbol, AssetType: "STOCK", Quantity: dec("1")}
	}
	srv := newTestService(repo, &fakeMarketApi{quotes: quotes})

	created, err := srv.CreatePortfolio(context.Background(), 1, "full", nil, requests)
	require.NoError(t, err)
	require.Len(t, created.Items, MaxPortfolioItems)

	_, err = srv.AddPortfolioItem(context.Background(), created.PortfolioID, 1, model.PortfolioItemRequest{
		Symbol: "EXTRA", AssetType: "STOCK", Quantity: dec("1"),
	})
	require.ErrorIs(t, err, service.ErrItemLimitReached)

	after, err := srv.GetPortfolio(context.Background(), created.PortfolioID, 1)
	require.NoError(t, err)
	require.Len(t, after.Items, MaxPortfolioItems)
	require.True(t, after.TotalValue.Equal(created.TotalValue))
}

func TestAddPortfolioItem_DuplicateRejectedIdempotently(t *testing.T) {
	repo := newFakeRepo()
	srv := newTestService(repo, &fakeMarketApi{quotes: map[string]decimal.Decimal{"AAPL": dec("100")}})

	created, err := srv.CreatePortfolio(context.Background(), 1, "picks", nil, []model.PortfolioItemRequest{
		{Symbol: "AAPL", AssetType: "STOCK", Quantity: dec("1")},
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = srv.AddPortfolioItem(context.Background(), created.PortfolioID, 1, model.PortfolioItemRequest{
			Symbol: "appl", AssetType: "STOCK", Quantity: dec("1"),
		})
		require.ErrorIs(t, err, service.ErrDuplicateSymbol)
	}

	after, err := srv.GetPortfolio(context.Background(), created.PortfolioID, 1)
	require.NoError(t, err)
	require.Len(t, after.Items, 1)
	require.True(t, after.TotalValue.Equal(created.TotalValue))
}

func TestAddPortfolioItem_NotOwner(t *testing.T) {
	repo := newFakeRepo()
	srv := newTestService(repo, &fakeMarketApi{quotes: map[string]decimal.Decimal{"AAPL": dec("100")}})

	created, err := srv.CreatePortfolio(context.Background(), 1, "picks", nil, []model.PortfolioItemRequest{
		{Symbol: "AAPL", AssetType: "STOCK", Quantity: dec("1")},
	})
	require.NoError(t, err)

	_, err = srv.AddPortfolioItem(context.Background(), created.PortfolioID, 2, model.PortfolioItemRequest{
		Symbol: "MSFT", AssetType: "STOCK", Quantity: dec("1"),
	})
	require.ErrorIs(t, err, service.ErrNotAuthorized)
}

func TestAddPortfolioItem_DeadlinePassedEvenUnderLimit(t *testing.T) {
	repo := newFakeRepo()
	srv := newTestService(repo, &fakeMarketApi{quotes: map[string]decimal.Decimal{"AAPL": dec("100")}})

	competitionID := seedCompetition(repo, futureDeadline())
	created, err := srv.CreatePortfolio(context.Background(), 1, "picks", &competitionID, []model.PortfolioItemRequest{
		{Symbol: "AAPL", AssetType: "STOCK", Quantity: dec("1")},
	})
	require.NoError(t, err)

	// close the entry window
	competition := repo.competitions[competitionID]
	competition.EntryDeadline = pastDeadline()
	repo.competitions[competitionID] = competition

	_, err = srv.AddPortfolioItem(context.Background(), created.PortfolioID, 1, model.PortfolioItemRequest{
		Symbol: "MSFT", AssetType: "STOCK", Quantity: dec("1"),
	})
	require.ErrorIs(t, err, service.ErrDeadlinePassed)
}

func TestRefreshPortfolio_IdempotentUnderStableQuotes(t *testing.T) {
	repo := newFakeRepo()
	market := &fakeMarketApi{quotes: map[string]decimal.Decimal{"AAPL": dec("100"), "MSFT": dec("200")}}
	srv := newTestService(repo, market)

	created, err := srv.CreatePortfolio(context.Background(), 1, "picks", nil, []model.PortfolioItemRequest{
		{Symbol: "AAPL", AssetType: "STOCK", Quantity: dec("3")},
		{Symbol: "MSFT", AssetType: "STOCK", Quantity: dec("1")},
	})
	require.NoError(t, err)

	first, err := srv.RefreshPortfolio(context.Background(), created.PortfolioID)
	require.NoError(t, err)

	second, err := srv.RefreshPortfolio(context.Background(), created.PortfolioID)
	require.NoError(t, err)

	require.True(t, first.TotalValue.Equal(second.TotalValue))
	require.True(t, first.TotalReturnPercent.Equal(second.TotalReturnPercent))
	require.True(t, second.TotalValue.Equal(dec("500")))
	require.True(t, second.TotalReturnPercent.IsZero())
}

func TestRefreshPortfolio_ZeroInitialTotalYieldsZeroReturn(t *testing.T) {
	repo := newFakeRepo()
	market := &fakeMarketApi{quotes: map[string]decimal.Decimal{"AAPL": dec("100")}}
	srv := newTestService(repo, market)

	created, err := srv.CreatePortfolio(context.Background(), 1, "zeroed", nil, []model.PortfolioItemRequest{
		{Symbol: "AAPL", AssetType: "STOCK", Quantity: dec("1")},
	})
	require.NoError(t, err)

	// force a degenerate cost basis
	repo.items[created.PortfolioID][0].InitialPrice = decimal.Zero

	refreshed, err := srv.RefreshPortfolio(context.Background(), created.PortfolioID)
	require.NoError(t, err)
	require.True(t, refreshed.TotalReturnPercent.IsZero())
	require.True(t, refreshed.TotalValue.Equal(dec("100")))
}

func TestRefreshPortfolio_NotFound(t *testing.T) {
	srv := newTestService(newFakeRepo(), &fakeMarketApi{})

	_, err := srv.RefreshPortfolio(context.Background(), 404)
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestRefreshPortfolio_PersistsItemPrices(t *testing.T) {
	repo := newFakeRepo()
	market := &fakeMarketApi{quotes: map[string]decimal.Decimal{"AAPL": dec("100")}}
	srv := newTestService(repo, market)

	created, err := srv.CreatePortfolio(context.Background(), 1, "picks", nil, []model.PortfolioItemRequest{
		{Symbol: "AAPL", AssetType: "STOCK", Quantity: dec("2")},
	})
	require.NoError(t, err)

	market.quotes["AAPL"] = dec("125")
	refreshed, err := srv.RefreshPortfolio(context.Background(), created.PortfolioID)
	require.NoError(t, err)

	require.True(t, refreshed.TotalValue.Equal(dec("250")))
	require.True(t, refreshed.TotalReturnPercent.Equal(dec("25")))
	require.True(t, repo.items[created.PortfolioID][0].CurrentPrice.Equal(dec("125")))
}

func TestGetPortfolio_VisibilityBeforeAndAfterDeadline(t *testing.T) {
	repo := newFakeRepo()
	market := &fakeMarketApi{quotes: map[string]decimal.Decimal{"AAPL": dec("100")}}
	srv := newTestService(repo, market)

	competitionID := seedCompetition(repo, futureDeadline())
	created, err := srv.CreatePortfolio(context.Background(), 1, "secret picks", &competitionID, []model.PortfolioItemRequest{
		{Symbol: "AAPL", AssetType: "STOCK", Quantity: dec("1")},
	})
	require.NoError(t, err)

	// non-owner before the deadline sees aggregates but no items
	hidden, err := srv.GetPortfolio(context.Background(), created.PortfolioID, 2)
	require.NoError(t, err)
	require.Empty(t, hidden.Items)
	require.NotNil(t, hidden.Items)
	require.True(t, hidden.TotalValue.Equal(created.TotalValue))

	// owner always sees everything
	owned, err := srv.GetPortfolio(context.Background(), created.PortfolioID, 1)
	require.NoError(t, err)
	require.Len(t, owned.Items, 1)

	competition := repo.competitions[competitionID]
	competition.EntryDeadline = pastDeadline()
	repo.competitions[competitionID] = competition

	// non-owner after the deadline sees the full composition
	revealed, err := srv.GetPortfolio(context.Background(), created.PortfolioID, 2)
	require.NoError(t, err)
	require.Len(t, revealed.Items, 1)
}

func TestGetPortfolio_StandalonePortfolioNeverRevealed(t *testing.T) {
	repo := newFakeRepo()
	srv := newTestService(repo, &fakeMarketApi{quotes: map[string]decimal.Decimal{"AAPL": dec("100")}})

	created, err := srv.CreatePortfolio(context.Background(), 1, "private", nil, []model.PortfolioItemRequest{
		{Symbol: "AAPL", AssetType: "STOCK", Quantity: dec("1")},
	})
	require.NoError(t, err)

	hidden, err := srv.GetPortfolio(context.Background(), created.PortfolioID, 2)
	require.NoError(t, err)
	require.Empty(t, hidden.Items)
}

func TestListPortfolios_PagingWithoutItems(t *testing.T) {
	repo := newFakeRepo()
	market := &fakeMarketApi{quotes: map[string]decimal.Decimal{"AAPL": dec("100")}}
	srv := newTestService(repo, market)

	for _, name := range []string{"first", "second", "third"} {
		_, err := srv.CreatePortfolio(context.Background(), 1, name, nil, []model.PortfolioItemRequest{
			{Symbol: "AAPL", AssetType: "STOCK", Quantity: dec("1")},
		})
		require.NoError(t, err)
	}

	portfolios, err := srv.ListPortfolios(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, portfolios, 3)
	for _, portfolio := range portfolios {
		require.Empty(t, portfolio.Items)
		require.True(t, portfolio.TotalValue.Equal(dec("100")))
	}

	page, err := srv.ListPortfolios(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "second", page[0].Name)

	tail, err := srv.ListPortfolios(context.Background(), -5, 2)
	require.NoError(t, err)
	require.Len(t, tail, 2)
}

func TestGetLeaderboard_OrderAndLimit(t *testing.T) {
	repo := newFakeRepo()
	competitionID := seedCompetition(repo, futureDeadline())
	repo.leaderboard = []model.LeaderboardRow{
		{PortfolioID: 1, PortfolioName: "winner", Username: "alice", TotalReturnPercent: dec("12.5")},
		{PortfolioID: 2, PortfolioName: "flat", Username: "bob", TotalReturnPercent: dec("0")},
		{PortfolioID: 3, PortfolioName: "loser", Username: "carol", TotalReturnPercent: dec("-3")},
	}
	srv := newTestService(repo, &fakeMarketApi{})

	rows, err := srv.GetLeaderboard(context.Background(), competitionID, 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.True(t, rows[0].TotalReturnPercent.Equal(dec("12.5")))
	require.True(t, rows[1].TotalReturnPercent.IsZero())
	require.True(t, rows[2].TotalReturnPercent.Equal(dec("-3")))

	limited, err := srv.GetLeaderboard(context.Background(), competitionID, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
}

func TestGetLeaderboard_MissingCompetition(t *testing.T) {
	srv := newTestService(newFakeRepo(), &fakeMarketApi{})

	_, err := srv.GetLeaderboard(context.Background(), 404, 10)
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestEnsureDefaultCompetitions_SeedsOnlyEmptyTable(t *testing.T) {
	repo := newFakeRepo()
	srv := newTestService(repo, &fakeMarketApi{})

	require.NoError(t, srv.EnsureDefaultCompetitions(context.Background()))
	require.Len(t, repo.competitions, 2)

	require.NoError(t, srv.EnsureDefaultCompetitions(context.Background()))
	require.Len(t, repo.competitions, 2)
}

func TestNormalizeSymbol(t *testing.T) {
	require.Equal(t, "AAPL", normalizeSymbol("appl"))
	require.Equal(t, "AAPL", normalizeSymbol(" AAPL "))
	require.Equal(t, "MSFT", normalizeSymbol("msft"))
}
