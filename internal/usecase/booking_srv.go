package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"service-marketplace/internal/data/entity"
	"service-marketplace/internal/data/repository"
	"service-marketplace/internal/dto/request"
	"service-marketplace/internal/dto/response"
	"service-marketplace/internal/matching"
	"service-marketplace/internal/storage"
	"service-marketplace/pkg/apperror"
	"service-marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type BookingService interface {
	// Customer
	CreateBooking(ctx context.Context, customerID uuid.UUID, req *request.CreateBookingRequest) (*response.CreateBookingResponse, error)

	// Assigned provider
	AcceptBooking(ctx context.Context, providerID uuid.UUID, bookingID string) error
	RejectBooking(ctx context.Context, providerID uuid.UUID, bookingID string) error
	CompleteBooking(ctx context.Context, providerID uuid.UUID, bookingID string) error

	// Either side; the actor decides between cancel and provider hand-off
	CancelBooking(ctx context.Context, actorID uuid.UUID, bookingID string) error

	ListBookings(ctx context.Context, userID uuid.UUID, req *request.BookingListRequest) ([]response.BookingListResponse, error)
	GetBooking(ctx context.Context, userID uuid.UUID, bookingID string) (*response.BookingDetailResponse, error)
}

// ProviderAssigner picks one eligible provider for a request.
type ProviderAssigner interface {
	Assign(ctx context.Context, c matching.Criteria) (*entity.Provider, error)
}

type bookingService struct {
	repo     *repository.Repository // grouping semua booking-related repos
	assigner ProviderAssigner
	files    storage.FileStore
	notifier NotificationService
	log      *zap.Logger
}

func NewBookingService(
	repo *repository.Repository,
	assigner ProviderAssigner,
	files storage.FileStore,
	notifier NotificationService,
	log *zap.Logger,
) BookingService {
	return &bookingService{
		repo:     repo,
		assigner: assigner,
		files:    files,
		notifier: notifier,
		log:      log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, customerID uuid.UUID, req *request.CreateBookingRequest) (*response.CreateBookingResponse, error) {
	// 1. Validasi input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, apperror.Validation("Validation failed", utils.ValidationDetails(errs))
	}
	if req.TotalAttachmentBytes() > request.MaxAttachmentTotalBytes {
		return nil, apperror.Validation("Validation failed", map[string]any{
			"attachments": "Total size of attachments must not exceed 30 MB",
		})
	}

	// 2. Parse IDs
	areaID, err := uuid.Parse(req.ServiceAreaID)
	if err != nil {
		return nil, apperror.NotFound("Service area")
	}
	serviceIDs, err := parseIDs(req.ServiceIDs)
	if err != nil {
		return nil, apperror.NotFound("One or more services")
	}

	// 3. Load requested services for price snapshot
	services, err := s.repo.Catalog.FindServicesByIDs(ctx, serviceIDs)
	if err != nil {
		s.log.Error("Failed to load services", zap.Error(err))
		return nil, fmt.Errorf("load services: %w", err)
	}
	if len(services) != len(serviceIDs) {
		return nil, apperror.NotFound("One or more services")
	}

	// 4. Provider selection dan upload attachment jalan paralel
	var (
		provider    *entity.Provider
		attachments = make([]entity.Attachment, len(req.Attachments))
		storedMu    sync.Mutex
		stored      []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.assigner.Assign(gctx, matching.Criteria{
			AreaID:      areaID,
			ServiceIDs:  serviceIDs,
			ScheduledAt: req.ScheduledDate,
			CustomerID:  customerID,
		})
		if err != nil {
			return err
		}
		provider = p
		return nil
	})
	for i, upload := range req.Attachments {
		g.Go(func() error {
			a, err := s.storeAttachment(gctx, upload)
			if err != nil {
				return err
			}
			storedMu.Lock()
			stored = append(stored, a.FileRef)
			storedMu.Unlock()
			attachments[i] = *a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.discardFiles(stored)
		s.log.Warn("Create booking aborted",
			zap.Error(err), zap.String("customer_id", customerID.String()))
		return nil, err
	}

	// 5. Build booking entity
	now := time.Now()
	booking := &entity.Booking{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		CustomerID:        customerID,
		ServiceProviderID: provider.UserID,
		ServiceAreaID:     areaID,
		Status:            entity.BookingStatusPending,
		Address:           strings.TrimSpace(req.Address),
		Latitude:          req.Latitude,
		Longitude:         req.Longitude,
		Notes:             req.Notes,
	}
	booking.SetSchedule(req.ScheduledDate)
	for _, svc := range services {
		booking.Items = append(booking.Items, entity.BookingServiceItem{
			BookingID:      booking.ID,
			ServiceID:      svc.ID,
			ServiceName:    svc.Name,
			PriceAtBooking: svc.BasePrice,
		})
		booking.TotalAmount += svc.BasePrice
		booking.EstimatedHours += svc.EstimatedHours
	}
	for i := range attachments {
		attachments[i].BookingID = booking.ID
		attachments[i].CreatedAt = now
	}
	booking.Attachments = attachments

	// 6. Save booking
	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		s.discardFiles(stored)
		s.log.Error("Failed to create booking", zap.Error(err))
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("provider_id", provider.UserID.String()),
		zap.Int("attachments", len(attachments)),
	)

	// 7. Notify assigned provider
	if err := s.notifier.Notify(ctx, provider.UserID, entity.NotificationBookingCreated, &booking.ID, ""); err != nil {
		return nil, err
	}

	return &response.CreateBookingResponse{BookingID: booking.ID.String()}, nil
}

func (s *bookingService) AcceptBooking(ctx context.Context, providerID uuid.UUID, bookingID string) error {
	// 1. Load booking
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	// 2. Only the assigned provider, only while pending
	if booking.ServiceProviderID != providerID {
		return apperror.Unauthorized("Only the assigned provider can accept this booking")
	}
	if booking.Status != entity.BookingStatusPending {
		return apperror.InvalidState("Only pending bookings can be accepted")
	}

	// 3. Pending -> Active
	if err := s.transition(ctx, booking, entity.BookingStatusActive, providerID); err != nil {
		return err
	}

	s.log.Info("Booking accepted", zap.String("booking_id", booking.ID.String()))

	// 4. Notify customer
	return s.notifier.Notify(ctx, booking.CustomerID, entity.NotificationBookingAccepted, &booking.ID, s.userName(ctx, providerID))
}

func (s *bookingService) RejectBooking(ctx context.Context, providerID uuid.UUID, bookingID string) error {
	// 1. Load booking
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	// 2. Only the assigned provider, only while pending
	if booking.ServiceProviderID != providerID {
		return apperror.Unauthorized("Only the assigned provider can reject this booking")
	}
	if booking.Status != entity.BookingStatusPending {
		return apperror.InvalidState("Only pending bookings can be rejected")
	}

	// 3. Cari provider pengganti; tanpa pengganti booking tetap milik provider ini
	replacement, err := s.findReplacement(ctx, booking)
	if err != nil {
		return err
	}

	// 4. Pending -> Pending with the new provider
	if err := s.transition(ctx, booking, entity.BookingStatusPending, replacement.UserID); err != nil {
		return err
	}

	s.log.Info("Booking reassigned after reject",
		zap.String("booking_id", booking.ID.String()),
		zap.String("from_provider", providerID.String()),
		zap.String("to_provider", replacement.UserID.String()),
	)

	// 5. Notify new provider and customer
	if err := s.notifier.Notify(ctx, replacement.UserID, entity.NotificationBookingCreated, &booking.ID, ""); err != nil {
		return err
	}
	return s.notifier.Notify(ctx, booking.CustomerID, entity.NotificationBookingReassignedAfterBeingRejected, &booking.ID, "")
}

func (s *bookingService) CompleteBooking(ctx context.Context, providerID uuid.UUID, bookingID string) error {
	// 1. Load booking
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	// 2. Only the assigned provider, only while active
	if booking.ServiceProviderID != providerID {
		return apperror.Unauthorized("Only the assigned provider can complete this booking")
	}
	if booking.Status != entity.BookingStatusActive {
		return apperror.InvalidState("Only active bookings can be completed")
	}

	// 3. Active -> Completed
	if err := s.transition(ctx, booking, entity.BookingStatusCompleted, providerID); err != nil {
		return err
	}

	s.log.Info("Booking completed", zap.String("booking_id", booking.ID.String()))

	// 4. Notify customer
	return s.notifier.Notify(ctx, booking.CustomerID, entity.NotificationBookingCompleted, &booking.ID, "")
}

func (s *bookingService) CancelBooking(ctx context.Context, actorID uuid.UUID, bookingID string) error {
	// 1. Load booking
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	// 2. Route by actor
	switch actorID {
	case booking.CustomerID:
		return s.cancelByCustomer(ctx, booking)
	case booking.ServiceProviderID:
		return s.cancelByProvider(ctx, booking)
	default:
		return apperror.Unauthorized("You are not part of this booking.")
	}
}

func (s *bookingService) ListBookings(ctx context.Context, userID uuid.UUID, req *request.BookingListRequest) ([]response.BookingListResponse, error) {
	// 1. Validasi role filter
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation("Validation failed", utils.ValidationDetails(errs))
	}

	// 2. Load bookings for the requested side
	var (
		bookings []*entity.Booking
		err      error
	)
	asProvider := req.Role == string(entity.RoleServiceProvider)
	if asProvider {
		bookings, err = s.repo.Booking.ListByProvider(ctx, userID)
	} else {
		bookings, err = s.repo.Booking.ListByCustomer(ctx, userID)
	}
	if err != nil {
		s.log.Error("Failed to list bookings", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	// 3. Build response
	names := make(map[uuid.UUID]string)
	result := make([]response.BookingListResponse, 0, len(bookings))
	for _, b := range bookings {
		other := b.ServiceProviderID
		if asProvider {
			other = b.CustomerID
		}
		if _, ok := names[other]; !ok {
			names[other] = s.userName(ctx, other)
		}

		item, err := s.convertListResponse(ctx, b, names[other])
		if err != nil {
			return nil, err
		}
		result = append(result, *item)
	}

	return result, nil
}

func (s *bookingService) GetBooking(ctx context.Context, userID uuid.UUID, bookingID string) (*response.BookingDetailResponse, error) {
	// 1. Load booking
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// 2. Only the two participants may read it
	var otherID uuid.UUID
	switch userID {
	case booking.CustomerID:
		otherID = booking.ServiceProviderID
	case booking.ServiceProviderID:
		otherID = booking.CustomerID
	default:
		return nil, apperror.Unauthorized("You are not part of this booking.")
	}

	other, err := s.repo.User.FindByID(ctx, otherID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	otherName := ""
	if other != nil {
		otherName = other.FullName
	}

	area, err := s.repo.Catalog.FindAreaByID(ctx, booking.ServiceAreaID)
	if err != nil {
		return nil, fmt.Errorf("find area: %w", err)
	}

	// 3. Build response
	base, err := s.convertListResponse(ctx, booking, otherName)
	if err != nil {
		return nil, err
	}

	detail := &response.BookingDetailResponse{
		BookingListResponse: *base,
		OtherSidePhone:      other.PhoneOrEmpty(),
		ScheduledDay:        booking.ScheduledLocal().Format("Monday, Jan 2, 2006"),
		ScheduledTime:       booking.ScheduledLocal().Format("3:04 PM"),
		Address:             booking.Address,
		Latitude:            booking.Latitude,
		Longitude:           booking.Longitude,
		EstimatedTime:       utils.FormatEstimatedTime(booking.EstimatedHours),
		Notes:               booking.Notes,
		Items:               make([]response.BookingItemResponse, 0, len(booking.Items)),
		Attachments:         make([]response.AttachmentResponse, 0, len(booking.Attachments)),
	}
	if area != nil {
		detail.AreaName = fmt.Sprintf("%s, %s", area.AreaName, area.CityName)
	}
	for _, item := range booking.Items {
		detail.Items = append(detail.Items, response.BookingItemResponse{
			ServiceID:      item.ServiceID.String(),
			ServiceName:    item.ServiceName,
			PriceAtBooking: item.PriceAtBooking,
			FormattedPrice: utils.FormatCurrency(item.PriceAtBooking),
		})
	}
	for _, a := range booking.Attachments {
		detail.Attachments = append(detail.Attachments, response.AttachmentResponse{
			ID:       a.ID.String(),
			URL:      s.files.PublicURL(a.Folder, a.FileRef),
			FileType: a.FileType,
			MimeType: a.MimeType,
		})
	}

	return detail, nil
}

// ==================== HELPER METHODS ====================

func (s *bookingService) cancelByCustomer(ctx context.Context, booking *entity.Booking) error {
	if booking.Status.IsClosed() {
		return apperror.InvalidState("This booking can no longer be cancelled")
	}

	if err := s.transition(ctx, booking, entity.BookingStatusCancelled, booking.ServiceProviderID); err != nil {
		return err
	}

	s.log.Info("Booking cancelled by customer", zap.String("booking_id", booking.ID.String()))

	return s.notifier.Notify(ctx, booking.ServiceProviderID, entity.NotificationBookingCancelledByUser,
		&booking.ID, s.userName(ctx, booking.CustomerID))
}

// cancelByProvider hands the booking to another provider. The provider
// cannot walk away when nobody else can take it.
func (s *bookingService) cancelByProvider(ctx context.Context, booking *entity.Booking) error {
	if booking.Status.IsClosed() {
		return apperror.InvalidState("This booking can no longer be cancelled")
	}

	oldProviderID := booking.ServiceProviderID
	replacement, err := s.findReplacement(ctx, booking)
	if err != nil {
		if apperror.Is(err, apperror.CodeNoProviderAvailable) {
			return apperror.NoProviderAvailable("You cannot cancel, no replacement found", err)
		}
		return err
	}

	if err := s.transition(ctx, booking, entity.BookingStatusPending, replacement.UserID); err != nil {
		return err
	}

	s.log.Info("Booking reassigned after provider cancel",
		zap.String("booking_id", booking.ID.String()),
		zap.String("from_provider", oldProviderID.String()),
		zap.String("to_provider", replacement.UserID.String()),
	)

	if err := s.notifier.Notify(ctx, replacement.UserID, entity.NotificationBookingCreated, &booking.ID, ""); err != nil {
		return err
	}
	return s.notifier.Notify(ctx, booking.CustomerID, entity.NotificationBookingReassignedAfterBeingCancelled,
		&booking.ID, s.userName(ctx, oldProviderID))
}

// findReplacement reruns matching for the booking's original request
// without the current provider.
func (s *bookingService) findReplacement(ctx context.Context, booking *entity.Booking) (*entity.Provider, error) {
	return s.assigner.Assign(ctx, matching.Criteria{
		AreaID:      booking.ServiceAreaID,
		ServiceIDs:  booking.ServiceIDs(),
		ScheduledAt: booking.ScheduledLocal(),
		CustomerID:  booking.CustomerID,
		Exclude:     []uuid.UUID{booking.ServiceProviderID},
	})
}

func (s *bookingService) transition(ctx context.Context, booking *entity.Booking, to entity.BookingStatus, providerID uuid.UUID) error {
	if !entity.CanTransition(booking.Status, to) {
		return apperror.InvalidState(fmt.Sprintf("Cannot move a %s booking to %s", booking.Status, to))
	}

	err := s.repo.Booking.Transition(ctx, repository.BookingTransition{
		BookingID:   booking.ID,
		FromStatus:  booking.Status,
		FromVersion: booking.Version,
		ToStatus:    to,
		ProviderID:  providerID,
		At:          time.Now(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrStaleWrite) {
			s.log.Warn("Booking changed concurrently", zap.String("booking_id", booking.ID.String()))
			return apperror.Conflict("This booking was just updated, please refresh and try again")
		}
		s.log.Error("Failed to update booking", zap.Error(err), zap.String("booking_id", booking.ID.String()))
		return fmt.Errorf("update booking: %w", err)
	}

	booking.Status = to
	booking.ServiceProviderID = providerID
	booking.Version++
	return nil
}

func (s *bookingService) findBooking(ctx context.Context, rawID string) (*entity.Booking, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, apperror.NotFound("Booking")
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find booking", zap.Error(err), zap.String("booking_id", rawID))
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, apperror.NotFound("Booking")
	}

	return booking, nil
}

func (s *bookingService) storeAttachment(ctx context.Context, upload request.AttachmentUpload) (*entity.Attachment, error) {
	if upload.Open == nil {
		return nil, apperror.Validation("Validation failed", map[string]any{"attachments": "Empty file"})
	}

	file, err := upload.Open()
	if err != nil {
		return nil, fmt.Errorf("open attachment: %w", err)
	}
	defer file.Close()

	classified, err := storage.Classify(upload.FileName, file)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			return nil, apperror.Validation("Validation failed", map[string]any{
				"attachments": "Invalid file type. Allowed: Images, Video, Audio",
			})
		}
		return nil, err
	}

	ref, err := s.files.Store(ctx, storage.AttachmentsFolder, upload.FileName, classified.Body)
	if err != nil {
		s.log.Error("Failed to store attachment", zap.Error(err), zap.String("file_name", upload.FileName))
		return nil, fmt.Errorf("store attachment: %w", err)
	}

	return &entity.Attachment{
		BaseSimple: entity.BaseSimple{ID: uuid.New()},
		FileRef:    ref,
		Folder:     storage.AttachmentsFolder,
		FileType:   classified.FileType,
		MimeType:   classified.MimeType,
	}, nil
}

// discardFiles removes uploads of a booking that was never saved.
func (s *bookingService) discardFiles(refs []string) {
	if len(refs) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, ref := range refs {
		if err := s.files.Delete(ctx, storage.AttachmentsFolder, ref); err != nil {
			s.log.Warn("Failed to discard attachment", zap.Error(err), zap.String("file_ref", ref))
		}
	}
}

func (s *bookingService) userName(ctx context.Context, id uuid.UUID) string {
	user, err := s.repo.User.FindByID(ctx, id)
	if err != nil || user == nil {
		if err != nil {
			s.log.Warn("Failed to load user name", zap.Error(err), zap.String("user_id", id.String()))
		}
		return ""
	}
	return user.FullName
}

func (s *bookingService) convertListResponse(ctx context.Context, b *entity.Booking, otherName string) (*response.BookingListResponse, error) {
	review, err := s.repo.Review.FindByBookingID(ctx, b.ID)
	if err != nil {
		return nil, fmt.Errorf("find review: %w", err)
	}

	names := make([]string, len(b.Items))
	for i, item := range b.Items {
		names[i] = item.ServiceName
	}

	return &response.BookingListResponse{
		ID:             b.ID.String(),
		OtherSideName:  otherName,
		ServiceName:    strings.Join(names, ", "),
		Status:         b.Status,
		ScheduledDate:  b.ScheduledLocal(),
		FormattedPrice: utils.FormatCurrency(b.TotalAmount),
		HasReview:      review != nil,
	}, nil
}

func parseIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, len(raw))
	for i, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}
