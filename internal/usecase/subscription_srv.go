package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"service-marketplace/internal/data/entity"
	"service-marketplace/internal/data/repository"
	"service-marketplace/internal/dto/request"
	"service-marketplace/internal/dto/response"
	"service-marketplace/pkg/apperror"
	"service-marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SubscriptionService interface {
	ListPlans(ctx context.Context) ([]response.SubscriptionPlanResponse, error)
	GetStatus(ctx context.Context, providerID uuid.UUID) (*response.SubscriptionStatusResponse, error)
	// Checkout records a pending payment for a plan.
	Checkout(ctx context.Context, providerID uuid.UUID, req *request.CheckoutRequest) (*response.PaymentResponse, error)
	// ConfirmPayment settles a pending payment. A completed payment activates
	// the plan, extending a running subscription from its end date.
	ConfirmPayment(ctx context.Context, req *request.ConfirmPaymentRequest) (*response.PaymentResponse, error)
}

type subscriptionService struct {
	repo *repository.Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewSubscriptionService(repo *repository.Repository, log *zap.Logger) SubscriptionService {
	return &subscriptionService{
		repo: repo,
		log:  log.With(zap.String("service", "subscription")),
		now:  time.Now,
	}
}

func (s *subscriptionService) ListPlans(ctx context.Context) ([]response.SubscriptionPlanResponse, error) {
	plans, err := s.repo.Subscription.ListPlans(ctx)
	if err != nil {
		s.log.Error("Failed to list plans", zap.Error(err))
		return nil, fmt.Errorf("list plans: %w", err)
	}

	result := make([]response.SubscriptionPlanResponse, len(plans))
	for i, p := range plans {
		result[i] = response.SubscriptionPlanResponse{
			ID:             p.ID.String(),
			Name:           p.Name,
			Description:    p.Description,
			Price:          p.Price,
			FormattedPrice: utils.FormatCurrency(p.Price),
			DurationInDays: p.DurationInDays,
		}
	}
	return result, nil
}

func (s *subscriptionService) GetStatus(ctx context.Context, providerID uuid.UUID) (*response.SubscriptionStatusResponse, error) {
	provider, err := s.findProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}

	latest, err := s.repo.Subscription.FindLatest(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("find subscription: %w", err)
	}

	return s.convertStatusResponse(provider, latest), nil
}

func (s *subscriptionService) Checkout(ctx context.Context, providerID uuid.UUID, req *request.CheckoutRequest) (*response.PaymentResponse, error) {
	// 1. Validasi
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation("Validation failed", utils.ValidationDetails(errs))
	}

	// 2. Provider and plan must exist
	if _, err := s.findProvider(ctx, providerID); err != nil {
		return nil, err
	}
	planID, err := uuid.Parse(req.PlanID)
	if err != nil {
		return nil, apperror.NotFound("Subscription plan")
	}
	plan, err := s.findPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	// 3. Record a pending payment; nothing is granted until the gateway confirms
	now := s.now()
	payment := &entity.Payment{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ProviderID: providerID,
		PlanID:     plan.ID,
		Amount:     plan.Price,
		Status:     entity.PaymentStatusPending,
	}
	if err := s.repo.Payment.Create(ctx, payment); err != nil {
		s.log.Error("Failed to create payment", zap.Error(err), zap.String("provider_id", providerID.String()))
		return nil, fmt.Errorf("create payment: %w", err)
	}

	s.log.Info("Subscription checkout started",
		zap.String("payment_id", payment.ID.String()),
		zap.String("provider_id", providerID.String()),
		zap.String("plan", plan.Name),
	)

	return convertPaymentResponse(payment, plan), nil
}

func (s *subscriptionService) ConfirmPayment(ctx context.Context, req *request.ConfirmPaymentRequest) (*response.PaymentResponse, error) {
	// 1. Validasi
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation("Validation failed", utils.ValidationDetails(errs))
	}

	// 2. Payment must be pending
	paymentID, _ := uuid.Parse(req.PaymentID)
	payment, err := s.repo.Payment.FindByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("find payment: %w", err)
	}
	if payment == nil {
		return nil, apperror.NotFound("Payment")
	}
	if payment.Status != entity.PaymentStatusPending {
		return nil, apperror.InvalidState(fmt.Sprintf("Payment is already %s", payment.Status))
	}

	plan, err := s.findPlan(ctx, payment.PlanID)
	if err != nil {
		return nil, err
	}
	provider, err := s.findProvider(ctx, payment.ProviderID)
	if err != nil {
		return nil, err
	}

	// 3. Declined payments grant nothing
	if req.Status == string(entity.PaymentStatusFailed) {
		if err := s.repo.Payment.Fail(ctx, payment.ID, req.TransactionID); err != nil {
			return nil, s.paymentWriteError(err, payment.ID)
		}
		payment.Status = entity.PaymentStatusFailed
		payment.TransactionID = &req.TransactionID

		s.log.Info("Subscription payment failed", zap.String("payment_id", payment.ID.String()))
		return convertPaymentResponse(payment, plan), nil
	}

	// 4. Mark paid and activate in one step
	sub, err := s.nextSubscription(ctx, payment, plan)
	if err != nil {
		return nil, err
	}
	paidAt := s.now()
	if err := s.repo.Payment.Complete(ctx, payment.ID, req.TransactionID, paidAt, sub); err != nil {
		return nil, s.paymentWriteError(err, payment.ID)
	}
	payment.Status = entity.PaymentStatusCompleted
	payment.TransactionID = &req.TransactionID
	payment.PaidAt = &paidAt

	s.log.Info("Subscription activated",
		zap.String("payment_id", payment.ID.String()),
		zap.String("provider_id", payment.ProviderID.String()),
		zap.String("plan", plan.Name),
		zap.Time("end_date", sub.EndDate),
	)

	resp := convertPaymentResponse(payment, plan)
	resp.Subscription = s.convertStatusResponse(provider, sub)
	return resp, nil
}

// ==================== HELPER METHODS ====================

func (s *subscriptionService) findProvider(ctx context.Context, providerID uuid.UUID) (*entity.Provider, error) {
	provider, err := s.repo.Provider.FindByUserID(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("find provider: %w", err)
	}
	if provider == nil {
		return nil, apperror.NotFound("Provider")
	}
	return provider, nil
}

func (s *subscriptionService) findPlan(ctx context.Context, planID uuid.UUID) (*entity.SubscriptionPlan, error) {
	plan, err := s.repo.Subscription.FindPlanByID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("find plan: %w", err)
	}
	if plan == nil {
		return nil, apperror.NotFound("Subscription plan")
	}
	return plan, nil
}

// nextSubscription starts now, or at the end of a still running subscription.
func (s *subscriptionService) nextSubscription(ctx context.Context, payment *entity.Payment, plan *entity.SubscriptionPlan) (*entity.Subscription, error) {
	latest, err := s.repo.Subscription.FindLatest(ctx, payment.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("find subscription: %w", err)
	}
	now := s.now()
	start := now
	if latest != nil && latest.EndDate.After(now) {
		start = latest.EndDate
	}

	return &entity.Subscription{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		ProviderID: payment.ProviderID,
		PlanID:     plan.ID,
		PlanName:   plan.Name,
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, plan.DurationInDays),
		AmountPaid: payment.Amount,
	}, nil
}

func (s *subscriptionService) paymentWriteError(err error, paymentID uuid.UUID) error {
	if errors.Is(err, repository.ErrStaleWrite) {
		return apperror.Conflict("Payment was settled by another request")
	}
	s.log.Error("Failed to settle payment", zap.Error(err), zap.String("payment_id", paymentID.String()))
	return fmt.Errorf("settle payment: %w", err)
}

func convertPaymentResponse(payment *entity.Payment, plan *entity.SubscriptionPlan) *response.PaymentResponse {
	return &response.PaymentResponse{
		ID:              payment.ID.String(),
		PlanName:        plan.Name,
		Amount:          payment.Amount,
		FormattedAmount: utils.FormatCurrency(payment.Amount),
		Status:          string(payment.Status),
		TransactionID:   payment.TransactionID,
	}
}

func (s *subscriptionService) convertStatusResponse(provider *entity.Provider, latest *entity.Subscription) *response.SubscriptionStatusResponse {
	resp := &response.SubscriptionStatusResponse{IsProviderActive: provider.IsActive}
	if latest == nil || latest.EndDate.Before(s.now()) {
		return resp
	}

	expiry := latest.EndDate.Format("Jan 2, 2006")
	planName := latest.PlanName
	resp.HasActiveSubscription = true
	resp.ExpiryDate = &expiry
	resp.PlanName = &planName
	return resp
}
