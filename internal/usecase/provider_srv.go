package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
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

type ProviderService interface {
	// BecomeProvider creates the provider profile for an existing user.
	BecomeProvider(ctx context.Context, userID uuid.UUID, req *request.ProviderProfileRequest) (*response.ProviderProfileResponse, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*response.ProviderProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *request.ProviderProfileRequest) (*response.ProviderProfileResponse, error)
}

type providerService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewProviderService(repo *repository.Repository, log *zap.Logger) ProviderService {
	return &providerService{
		repo: repo,
		log:  log.With(zap.String("service", "provider")),
	}
}

func (s *providerService) BecomeProvider(ctx context.Context, userID uuid.UUID, req *request.ProviderProfileRequest) (*response.ProviderProfileResponse, error) {
	// 1. Validasi input dan jadwal
	serviceIDs, areaIDs, schedules, err := s.validateProfile(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	// 2. User must exist and not be a provider yet
	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, apperror.NotFound("User")
	}
	existing, err := s.repo.Provider.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find provider: %w", err)
	}
	if existing != nil {
		return nil, apperror.Conflict("User is already registered as a service provider.")
	}

	// 3. Create provider entity
	now := time.Now()
	provider := &entity.Provider{
		UserID:     userID,
		Bio:        strings.TrimSpace(req.Bio),
		CreatedAt:  now,
		UpdatedAt:  now,
		FullName:   user.FullName,
		Phone:      user.Phone,
		IsActive:   user.IsActive,
		ServiceIDs: serviceIDs,
		AreaIDs:    areaIDs,
		Schedules:  schedules,
	}

	// 4. Save; the repository also promotes the user role
	if err := s.repo.Provider.Create(ctx, provider); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict("User is already registered as a service provider.")
		}
		s.log.Error("Failed to create provider", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("create provider: %w", err)
	}

	s.log.Info("Provider registered",
		zap.String("user_id", userID.String()),
		zap.Int("services", len(serviceIDs)),
		zap.Int("areas", len(areaIDs)),
	)

	return s.convertProfileResponse(ctx, provider)
}

func (s *providerService) GetProfile(ctx context.Context, userID uuid.UUID) (*response.ProviderProfileResponse, error) {
	provider, err := s.repo.Provider.FindByUserID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to find provider", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("find provider: %w", err)
	}
	if provider == nil {
		return nil, apperror.NotFound("Provider profile")
	}

	return s.convertProfileResponse(ctx, provider)
}

func (s *providerService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *request.ProviderProfileRequest) (*response.ProviderProfileResponse, error) {
	// 1. Validasi
	serviceIDs, areaIDs, schedules, err := s.validateProfile(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	// 2. Find profile
	provider, err := s.repo.Provider.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find provider: %w", err)
	}
	if provider == nil {
		return nil, apperror.NotFound("Provider profile")
	}

	// 3. Replace everything editable
	provider.Bio = strings.TrimSpace(req.Bio)
	provider.ServiceIDs = serviceIDs
	provider.AreaIDs = areaIDs
	provider.Schedules = schedules
	provider.UpdatedAt = time.Now()

	if err := s.repo.Provider.Update(ctx, provider); err != nil {
		s.log.Error("Failed to update provider", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("update provider: %w", err)
	}

	s.log.Info("Provider profile updated", zap.String("user_id", userID.String()))

	return s.convertProfileResponse(ctx, provider)
}

// ==================== HELPER METHODS ====================

func (s *providerService) validateProfile(ctx context.Context, userID uuid.UUID, req *request.ProviderProfileRequest) ([]uuid.UUID, []uuid.UUID, []entity.ScheduleSlot, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Provider profile validation failed", zap.Any("errors", errs))
		return nil, nil, nil, apperror.Validation("Validation failed", utils.ValidationDetails(errs))
	}

	schedules, errs := BuildSchedule(userID, req.Schedules)
	if len(errs) > 0 {
		return nil, nil, nil, apperror.Validation("Invalid schedule", utils.ValidationDetails(errs))
	}

	serviceIDs, err := parseIDs(req.ServiceIDs)
	if err != nil {
		return nil, nil, nil, apperror.Validation("Validation failed", map[string]any{"service_ids": "Must be a valid UUID"})
	}
	services, err := s.repo.Catalog.FindServicesByIDs(ctx, serviceIDs)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load services: %w", err)
	}
	if len(services) != len(serviceIDs) {
		return nil, nil, nil, apperror.Validation("Validation failed", map[string]any{"service_ids": "One or more services do not exist"})
	}

	areaIDs, err := parseIDs(req.ServiceAreaIDs)
	if err != nil {
		return nil, nil, nil, apperror.Validation("Validation failed", map[string]any{"service_area_ids": "Must be a valid UUID"})
	}
	areas, err := s.repo.Catalog.FindAreasByIDs(ctx, areaIDs)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load areas: %w", err)
	}
	if len(areas) != len(areaIDs) {
		return nil, nil, nil, apperror.Validation("Validation failed", map[string]any{"service_area_ids": "One or more areas do not exist"})
	}

	return serviceIDs, areaIDs, schedules, nil
}

// BuildSchedule parses weekly slots. Each slot must end after it starts and
// slots on the same day must not overlap. Errors are keyed by field path.
func BuildSchedule(providerID uuid.UUID, reqs []request.ScheduleRequest) ([]entity.ScheduleSlot, map[string]string) {
	errs := make(map[string]string)
	slots := make([]entity.ScheduleSlot, 0, len(reqs))

	for i, r := range reqs {
		start, err := entity.ParseTimeOfDay(r.StartTime)
		if err != nil {
			errs[fmt.Sprintf("schedules[%d].start_time", i)] = "Must be HH:MM"
		}
		end, errEnd := entity.ParseTimeOfDay(r.EndTime)
		if errEnd != nil {
			errs[fmt.Sprintf("schedules[%d].end_time", i)] = "Must be HH:MM"
		}
		if err != nil || errEnd != nil {
			continue
		}
		if end <= start {
			errs[fmt.Sprintf("schedules[%d].end_time", i)] = "Must be after start_time"
			continue
		}

		slots = append(slots, entity.ScheduleSlot{
			ID:         uuid.New(),
			ProviderID: providerID,
			DayOfWeek:  time.Weekday(r.DayOfWeek),
			StartTime:  start,
			EndTime:    end,
		})
	}
	if len(errs) > 0 {
		return nil, errs
	}

	sorted := append([]entity.ScheduleSlot(nil), slots...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].DayOfWeek != sorted[j].DayOfWeek {
			return sorted[i].DayOfWeek < sorted[j].DayOfWeek
		}
		return sorted[i].StartTime < sorted[j].StartTime
	})
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if prev.DayOfWeek == cur.DayOfWeek && cur.StartTime < prev.EndTime {
			errs["schedules"] = fmt.Sprintf("Overlapping slots on %s", cur.DayOfWeek)
			return nil, errs
		}
	}

	return slots, nil
}

func (s *providerService) convertProfileResponse(ctx context.Context, p *entity.Provider) (*response.ProviderProfileResponse, error) {
	services, err := s.repo.Catalog.FindServicesByIDs(ctx, p.ServiceIDs)
	if err != nil {
		return nil, fmt.Errorf("load services: %w", err)
	}
	areas, err := s.repo.Catalog.FindAreasByIDs(ctx, p.AreaIDs)
	if err != nil {
		return nil, fmt.Errorf("load areas: %w", err)
	}

	resp := &response.ProviderProfileResponse{
		UserID:       p.UserID.String(),
		FullName:     p.FullName,
		Bio:          p.Bio,
		Rating:       p.Rating,
		TotalReviews: p.TotalReviews,
		IsVerified:   p.IsVerified,
		Services:     make([]response.ServiceResponse, len(services)),
		Cities:       groupAreasByCity(areas),
		Schedules:    make([]response.ScheduleResponse, len(p.Schedules)),
	}
	for i, svc := range services {
		resp.Services[i] = convertServiceResponse(svc)
	}
	for i, slot := range p.Schedules {
		resp.Schedules[i] = response.ScheduleResponse{
			DayOfWeek: int(slot.DayOfWeek),
			DayName:   slot.DayOfWeek.String(),
			StartTime: slot.StartTime.String(),
			EndTime:   slot.EndTime.String(),
		}
	}

	return resp, nil
}
