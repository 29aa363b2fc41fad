package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tickerduel/stockpick_backend/data/session"
	"github.com/tickerduel/stockpick_backend/internal/model"
	"github.com/tickerduel/stockpick_backend/internal/service"
	"github.com/tickerduel/stockpick_backend/utils"
)

type CompetitionService interface {
	RegisterUser(ctx context.Context, email, username, password string) (model.User, string, error)
	AuthenticateUser(ctx context.Context, email, password string) (model.User, error)
	VerifyEmail(ctx context.Context, token string) error
	GetUser(ctx context.Context, userID int64) (model.User, error)

	CreateCompetition(ctx context.Context, name, slug string, entryDeadline *time.Time) (model.Competition, error)
	GetCompetitions(ctx context.Context) ([]model.Competition, error)
	GetLeaderboard(ctx context.Context, competitionID int64, limit int) ([]model.LeaderboardRow, error)
	ExportLeaderboard(ctx context.Context, competitionID int64) ([]byte, string, error)

	CreatePortfolio(ctx context.Context, userID int64, name string, competitionID *int64, items []model.PortfolioItemRequest) (model.Portfolio, error)
	AddPortfolioItem(ctx context.Context, portfolioID, callerID int64, item model.PortfolioItemRequest) (model.Portfolio, error)
	RefreshPortfolio(ctx context.Context, portfolioID int64) (model.Portfolio, error)
	GetPortfolio(ctx context.Context, portfolioID, viewerID int64) (model.Portfolio, error)
	ListPortfolios(ctx context.Context, skip, limit int) ([]model.Portfolio, error)

	GetStockPrice(ctx context.Context, symbol string) (model.StockPrice, error)
	SearchStock(ctx context.Context, query string) (model.StockSearchResult, error)
}

type Session interface {
	GetSession(ctx context.Context, token string) (model.Session, error)
	SetSession(ctx context.Context, token string, session model.Session) error
	DeleteSession(ctx context.Context, token string) error
}

type Controller struct {
	competitionService CompetitionService
	session            Session
}

func NewController(competitionService CompetitionService, session Session) *Controller {
	return &Controller{
		competitionService: competitionService,
		session:            session,
	}
}

func (ctrl *Controller) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotAuthorized):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDeadlinePassed),
		errors.Is(err, service.ErrItemLimitReached),
		errors.Is(err, service.ErrDuplicateSymbol),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrAlreadyExists),
		errors.Is(err, service.ErrInvalidCredentials):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return ""
	}
	return token
}

// AuthRequired resolves the bearer token to a user and aborts with 401 when
// the session is missing or expired.
func (ctrl *Controller) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := utils.CreateCtxWithRqID(c)

		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		userSession, err := ctrl.session.GetSession(ctx, token)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
				return
			}
			slog.Error("got error from session.GetSession", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set("userID", userSession.UserID)
		c.Next()
	}
}

// AuthOptional resolves the viewer when a valid bearer token is present and
// continues anonymously otherwise.
func (ctrl *Controller) AuthOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := utils.CreateCtxWithRqID(c)

		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		userSession, err := ctrl.session.GetSession(ctx, token)
		if err == nil {
			c.Set("userID", userSession.UserID)
		}
		c.Next()
	}
}

func viewerID(c *gin.Context) int64 {
	userID, ok := c.Value("userID").(int64)
	if !ok {
		return 0
	}
	return userID
}

func (ctrl *Controller) Register(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)

	req := registerRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, _, err := ctrl.competitionService.RegisterUser(ctx, req.Email, req.Username, req.Password)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, convertUser(user))
}

func (ctrl *Controller) Login(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	req := loginRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ctrl.competitionService.AuthenticateUser(ctx, req.Email, req.Password)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	token := uuid.NewString()
	if err := ctrl.session.SetSession(ctx, token, model.Session{UserID: user.UserID}); err != nil {
		slog.Error("got error from session.SetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, loginResponse{Token: token, User: convertUser(user)})
}

func (ctrl *Controller) Logout(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)

	token := bearerToken(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	if err := ctrl.session.DeleteSession(ctx, token); err != nil {
		slog.Error("got error from session.DeleteSession", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (ctrl *Controller) GetUser(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)

	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := ctrl.competitionService.GetUser(ctx, userID)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, convertUser(user))
}

func (ctrl *Controller) VerifyEmail(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)

	token := c.Query("token")
	if token == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	if err := ctrl.competitionService.VerifyEmail(ctx, token); err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "email verified"})
}

func (ctrl *Controller) GetCompetitions(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)

	competitions, err := ctrl.competitionService.GetCompetitions(ctx)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	result := make([]competitionResponse, 0, len(competitions))
	for _, competition := range competitions {
		result = append(result, convertCompetition(competition))
	}

	c.JSON(http.StatusOK, result)
}

func (ctrl *Controller) CreateCompetition(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)

	req := createCompetitionRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	competition, err := ctrl.competitionService.CreateCompetition(ctx, req.Name, req.Slug, req.EntryDeadline)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, convertCompetition(competition))
}

func (ctrl *Controller) GetLeaderboard(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)

	competitionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid competition id"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	rows, err := ctrl.competitionService.GetLeaderboard(ctx, competitionID, limit)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, convertLeaderboard(rows))
}

func (ctrl *Controller) ExportLeaderboard(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)

	competitionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid competition id"})
		return
	}

	fileBytes, fileExtension, err := ctrl.competitionService.ExportLeaderboard(ctx, competitionID)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	fileName := fmt.Sprintf("leaderboard-%d%s", competitionID, fileExtension)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", fileBytes)
}

func convertItemRequest(req portfolioItemRequest) model.PortfolioItemRequest {
	quantity := req.Quantity
	if quantity.IsZero() {
		quantity = decimal.NewFromInt(1)
	}

	assetType := req.AssetType
	if assetType == "" {
		assetType = "STOCK"
	}

	return model.PortfolioItemRequest{
		Symbol:    req.Symbol,
		AssetType: assetType,
		Quantity:  quantity,
	}
}

func (ctrl *Controller) CreatePortfolio(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)

	req := createPortfolioRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items := make([]model.PortfolioItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, convertItemRequest(item))
	}

	portfolio, err := ctrl.competitionService.CreatePortfolio(ctx, viewerID(c), req.Name, req.CompetitionID, items)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, convertPortfolio(portfolio))
}

func (ctrl *Controller) ListPortfolios(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)

	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	portfolios, err := ctrl.competitionService.ListPortfolios(ctx, skip, limit)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	result := make([]portfolioResponse, 0, len(portfolios))
	for _, portfolio := range portfolios {
		result = append(result, convertPortfolio(portfolio))
	}

	c.JSON(http.StatusOK, result)
}

func (ctrl *Controller) GetPortfolio(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)

	portfolioID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid portfolio id"})
		return
	}

	portfolio, err := ctrl.competitionService.GetPortfolio(ctx, portfolioID, viewerID(c))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, convertPortfolio(portfolio))
}

func (ctrl *Controller) AddPortfolioItem(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)

	portfolioID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid portfolio id"})
		return
	}

	req := portfolioItemRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	portfolio, err := ctrl.competitionService.AddPortfolioItem(ctx, portfolioID, viewerID(c), convertItemRequest(req))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, convertPortfolio(portfolio))
}

func (ctrl *Controller) RefreshPortfolio(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)

	portfolioID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid portfolio id"})
		return
	}

	portfolio, err := ctrl.competitionService.RefreshPortfolio(ctx, portfolioID)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, convertPortfolio(portfolio))
}

func (ctrl *Controller) GetStockPrice(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)

	symbol := c.Param("symbol")

	stockPrice, err := ctrl.competitionService.GetStockPrice(ctx, symbol)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stockPriceResponse{
		Symbol:        stockPrice.Symbol,
		Price:         stockPrice.Price,
		ChangePercent: stockPrice.ChangePercent,
	})
}

func (ctrl *Controller) SearchStocks(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)

	query := c.Query("query")
	if query == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	result, err := ctrl.competitionService.SearchStock(ctx, query)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stockSearchResponse{
		Symbol: result.Symbol,
		Name:   result.Name,
		Price:  result.Price,
	})
}
