package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nvoronina/matching-engine/internal/api/dto"
	"github.com/nvoronina/matching-engine/internal/api/ws"
	"github.com/nvoronina/matching-engine/internal/core"
	"github.com/nvoronina/matching-engine/internal/domain"
	"github.com/nvoronina/matching-engine/internal/middleware"
	"github.com/nvoronina/matching-engine/pkg/logger"
)

// Server is the HTTP transport over the engine. It only translates frames:
// request ordering per connection is preserved by gin's synchronous handler
// execution, and the book serializes everything behind its own lock.
type Server struct {
	eng       *core.Engine
	hub       *ws.Hub
	log       *logger.Logger
	rateLimit time.Duration
}

func NewServer(eng *core.Engine, hub *ws.Hub, log *logger.Logger, rateLimit time.Duration) *Server {
	if log == nil {
		log = logger.Default()
	}
	return &Server{eng: eng, hub: hub, log: log, rateLimit: rateLimit}
}

// Router builds the gin handler; main owns the http.Server around it.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/health", s.health)
	r.GET("/orderbook", s.getOrderbook)
	r.GET("/orders/:id/trades", s.getTrades)

	orders := r.Group("/")
	if s.rateLimit > 0 {
		rl := middleware.NewRateLimiter(s.rateLimit)
		orders.Use(rl.Middleware())
	}
	orders.POST("/orders", s.submitOrder)
	orders.POST("/orders/modify", s.modifyOrder)
	orders.POST("/orders/cancel", s.cancelOrder)

	if s.hub != nil {
		r.GET("/ws/trades", gin.WrapF(s.hub.HandleTrades))
	}

	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok", Timestamp: time.Now()})
}

func (s *Server) submitOrder(c *gin.Context) {
	var req dto.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := orderFromRequest(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trades, err := s.eng.SubmitOrder(c.Request.Context(), order)
	if err != nil {
		if core.IsRejection(err) {
			c.JSON(http.StatusOK, dto.SubmitOrderResponse{
				OrderID: req.OrderID,
				Status:  dto.StatusRejected,
				Reason:  err.Error(),
				Trades:  []dto.Trade{},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.SubmitOrderResponse{
		OrderID: req.OrderID,
		Status:  dto.StatusAccepted,
		Trades:  tradesToDTO(trades),
	})
}

func (s *Server) modifyOrder(c *gin.Context) {
	var req dto.ModifyOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validateModify(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trades, err := s.eng.ModifyOrder(c.Request.Context(), domain.OrderModify{
		OrderID:  req.OrderID,
		Side:     domain.Side(req.Side),
		Price:    req.Price,
		Quantity: req.Quantity,
	})
	if err != nil {
		if core.IsRejection(err) {
			c.JSON(http.StatusOK, dto.ModifyOrderResponse{
				OrderID: req.OrderID,
				Status:  dto.StatusRejected,
				Reason:  err.Error(),
				Trades:  []dto.Trade{},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.ModifyOrderResponse{
		OrderID: req.OrderID,
		Status:  dto.StatusAccepted,
		Trades:  tradesToDTO(trades),
	})
}

func (s *Server) cancelOrder(c *gin.Context) {
	var req dto.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.eng.CancelOrder(c.Request.Context(), req.OrderID)
	c.JSON(http.StatusOK, dto.CancelOrderResponse{OrderID: req.OrderID, Cancelled: true})
}

func (s *Server) getOrderbook(c *gin.Context) {
	snap := s.eng.Depth(c.Request.Context())

	resp := dto.OrderbookResponse{
		Instrument: snap.Instrument,
		Bids:       levelsToDTO(snap.Bids),
		Asks:       levelsToDTO(snap.Asks),
		Size:       s.eng.Size(),
		Timestamp:  snap.Timestamp,
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getTrades(c *gin.Context) {
	id, err := parseOrderID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recs, err := s.eng.TradesForOrder(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]dto.TradeRecord, 0, len(recs))
	for _, rec := range recs {
		out = append(out, dto.TradeRecord{
			ID:         rec.ID,
			Instrument: rec.Instrument,
			BuyOrder:   rec.BuyOrder,
			SellOrder:  rec.SellOrder,
			BidPrice:   rec.BidPrice,
			AskPrice:   rec.AskPrice,
			Quantity:   rec.Quantity,
			ExecutedAt: rec.ExecutedAt,
		})
	}
	c.JSON(http.StatusOK, dto.TradesResponse{Trades: out})
}

func tradesToDTO(trades domain.Trades) []dto.Trade {
	out := make([]dto.Trade, 0, len(trades))
	for _, t := range trades {
		out = append(out, dto.Trade{
			Bid: dto.TradeInfo{OrderID: t.Bid.OrderID, Price: t.Bid.Price, Quantity: t.Bid.Quantity},
			Ask: dto.TradeInfo{OrderID: t.Ask.OrderID, Price: t.Ask.Price, Quantity: t.Ask.Quantity},
		})
	}
	return out
}

func levelsToDTO(levels []domain.LevelInfo) []dto.Level {
	out := make([]dto.Level, 0, len(levels))
	for _, l := range levels {
		out = append(out, dto.Level{Price: l.Price, Quantity: l.Quantity})
	}
	return out
}
