package insights

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"saldo/internal/state"
)

// RetryLaterMessage is the only failure text that crosses the adapter
// boundary; the raw provider error never does.
const RetryLaterMessage = "Falha ao gerar os insights. Tente novamente mais tarde."

// ErrUnavailable tags a failed service call. Callers show RetryLaterMessage.
var ErrUnavailable = errors.New(RetryLaterMessage)

// Service is the insight adapter used by the HTTP layer. With no client
// configured it answers with the deterministic fallback computation, so
// the feature degrades instead of disappearing.
type Service struct {
	client Client
	logger *slog.Logger
	now    func() time.Time
}

func NewService(client Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, logger: logger, now: time.Now}
}

// AnalyzeSpending returns suggested spending limits plus advice for the
// given snapshot. Provider numeric outputs are passed through as returned.
func (s *Service) AnalyzeSpending(ctx context.Context, snap state.Snapshot) (SpendingAnalysis, error) {
	if s.client == nil {
		s.logger.Debug("No insight provider configured, using fallback computation")
		return FallbackAnalysis(snap, s.now()), nil
	}

	input := BuildSpendingInput(snap)
	analysis, err := s.client.AnalyzeSpending(ctx, input)
	if err != nil {
		s.logger.ErrorContext(ctx, "Spending analysis failed", "error", err)
		return SpendingAnalysis{}, ErrUnavailable
	}
	return analysis, nil
}

// GenerateInsights returns free-text insight strings for the snapshot.
func (s *Service) GenerateInsights(ctx context.Context, snap state.Snapshot) ([]string, error) {
	if s.client == nil {
		fb := FallbackAnalysis(snap, s.now())
		return []string{fb.Advice}, nil
	}

	input := InsightsInput{
		IncomeList:  snap.IncomeList,
		ExpenseList: snap.ExpenseList,
		GoalList:    snap.GoalList,
	}
	out, err := s.client.GenerateInsights(ctx, input)
	if err != nil {
		s.logger.ErrorContext(ctx, "Insight generation failed", "error", err)
		return nil, ErrUnavailable
	}
	return out, nil
}
