package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with domain-specific helpers.
type Logger struct {
	*slog.Logger
}

func New() *Logger {
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("request_id", requestID))}
}

func (l *Logger) WithHotelID(hotelID string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("hotel_id", hotelID))}
}

func (l *Logger) WithError(err error) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("error", err.Error()))}
}

// LogHTTPRequest logs a completed HTTP request.
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
	)
}

// LogBookingCreated logs a room booking creation.
func (l *Logger) LogBookingCreated(ctx context.Context, bookingID, hotelID, roomID string) {
	l.Logger.InfoContext(ctx, "Booking Created",
		slog.String("booking_id", bookingID),
		slog.String("hotel_id", hotelID),
		slog.String("room_id", roomID),
	)
}

// LogBookingCancelled logs a room booking cancellation.
func (l *Logger) LogBookingCancelled(ctx context.Context, bookingID, hotelID string) {
	l.Logger.InfoContext(ctx, "Booking Cancelled",
		slog.String("booking_id", bookingID),
		slog.String("hotel_id", hotelID),
	)
}

// LogPriceRecomputed logs a pricing engine recompute, good or clamped.
func (l *Logger) LogPriceRecomputed(ctx context.Context, hotelID, roomID string, price float64, approvalPending bool) {
	l.Logger.InfoContext(ctx, "Price Recomputed",
		slog.String("hotel_id", hotelID),
		slog.String("room_id", roomID),
		slog.Float64("price", price),
		slog.Bool("approval_pending", approvalPending),
	)
}

// LogCacheEvent logs a hybrid cache hit/miss/invalidation.
func (l *Logger) LogCacheEvent(ctx context.Context, event, key string, tier string) {
	l.Logger.DebugContext(ctx, "Cache Event",
		slog.String("event", event),
		slog.String("key", key),
		slog.String("tier", tier),
	)
}

// LogLoyaltyTransaction logs a loyalty point accrual/redemption.
func (l *Logger) LogLoyaltyTransaction(ctx context.Context, accountID, txType string, points int) {
	l.Logger.InfoContext(ctx, "Loyalty Transaction",
		slog.String("account_id", accountID),
		slog.String("type", txType),
		slog.Int("points", points),
	)
}

// LogRealtimeEvent logs a pub/sub hub broadcast.
func (l *Logger) LogRealtimeEvent(ctx context.Context, room, eventType string, subscriberCount int) {
	l.Logger.DebugContext(ctx, "Realtime Broadcast",
		slog.String("room", room),
		slog.String("event_type", eventType),
		slog.Int("subscribers", subscriberCount),
	)
}

func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}

var defaultLogger = New()

func GetDefault() *Logger        { return defaultLogger }
func SetDefault(logger *Logger)  { defaultLogger = logger }
