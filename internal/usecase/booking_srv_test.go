package usecase

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"service-marketplace/internal/data/entity"
	"service-marketplace/internal/dto/request"
	"service-marketplace/internal/realtime"
	"service-marketplace/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type marketplace struct {
	*fixture
	area     *entity.ServiceArea
	cleaning *entity.Service
	customer *entity.User
}

func newMarketplace(t *testing.T) *marketplace {
	f := newFixture(t)
	return &marketplace{
		fixture:  f,
		area:     f.store.addArea("Amman", "Abdoun"),
		cleaning: f.store.addService("Deep Cleaning", 25, 2),
		customer: f.store.addUser("Lina"),
	}
}

func (m *marketplace) addProvider(name string) *entity.Provider {
	return m.store.addProvider(name, []*entity.ServiceArea{m.area}, []*entity.Service{m.cleaning})
}

func (m *marketplace) request(services ...*entity.Service) *request.CreateBookingRequest {
	ids := make([]string, len(services))
	for i, s := range services {
		ids[i] = s.ID.String()
	}
	return &request.CreateBookingRequest{
		ServiceIDs:    ids,
		ServiceAreaID: m.area.ID.String(),
		ScheduledDate: upcoming(),
		Address:       "12 Zahran St",
		Latitude:      31.95,
		Longitude:     35.88,
	}
}

func (m *marketplace) create(t *testing.T) uuid.UUID {
	t.Helper()
	resp, err := m.booking.CreateBooking(context.Background(), m.customer.ID, m.request(m.cleaning))
	require.NoError(t, err)
	return uuid.MustParse(resp.BookingID)
}

func upload(name string, data []byte) request.AttachmentUpload {
	return request.AttachmentUpload{
		FileName: name,
		Size:     int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func TestCreateBooking_AssignsEligibleProvider(t *testing.T) {
	m := newMarketplace(t)
	ahmad := m.addProvider("Ahmad")

	id := m.create(t)

	b := m.store.booking(id)
	assert.Equal(t, entity.BookingStatusPending, b.Status)
	assert.Equal(t, ahmad.UserID, b.ServiceProviderID)
	assert.Equal(t, m.customer.ID, b.CustomerID)
	assert.Equal(t, 25.0, b.TotalAmount)
	assert.Equal(t, 2.0, b.EstimatedHours)
	require.Len(t, b.Items, 1)
	assert.Equal(t, "Deep Cleaning", b.Items[0].ServiceName)

	notes := m.store.notificationsFor(ahmad.UserID)
	require.Len(t, notes, 1)
	assert.Equal(t, entity.NotificationBookingCreated, notes[0].Type)
	assert.Equal(t, "New Booking Request", notes[0].Title)
	require.NotNil(t, notes[0].BookingID)
	assert.Equal(t, id, *notes[0].BookingID)

	assert.Len(t, m.publisher.named(realtime.EventReceiveNotification), 1)
	updated := m.publisher.named(realtime.EventBookingUpdated)
	require.Len(t, updated, 1)
	assert.Equal(t, id.String(), updated[0].Payload)
}

func TestCreateBooking_PriceIsSnapshotted(t *testing.T) {
	m := newMarketplace(t)
	m.addProvider("Ahmad")
	id := m.create(t)

	m.store.mu.Lock()
	m.store.services[m.cleaning.ID].BasePrice = 99
	m.store.mu.Unlock()

	b := m.store.booking(id)
	assert.Equal(t, 25.0, b.TotalAmount)
	assert.Equal(t, 25.0, b.Items[0].PriceAtBooking)
}

func TestCreateBooking_NoProviderPersistsNothing(t *testing.T) {
	m := newMarketplace(t)

	req := m.request(m.cleaning)
	req.Attachments = []request.AttachmentUpload{upload("sink.png", pngBytes())}

	_, err := m.booking.CreateBooking(context.Background(), m.customer.ID, req)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeNoProviderAvailable))

	m.store.mu.Lock()
	assert.Empty(t, m.store.bookings)
	assert.Empty(t, m.store.notifications)
	m.store.mu.Unlock()
	assert.Zero(t, m.files.count(), "uploaded files are discarded")
}

func TestCreateBooking_CustomerNeverAssignedToThemself(t *testing.T) {
	m := newMarketplace(t)
	self := m.addProvider("Omar")

	_, err := m.booking.CreateBooking(context.Background(), self.UserID, m.request(m.cleaning))
	assert.True(t, apperror.Is(err, apperror.CodeNoProviderAvailable))
}

func TestCreateBooking_UnknownServiceAndArea(t *testing.T) {
	m := newMarketplace(t)
	m.addProvider("Ahmad")

	req := m.request(m.cleaning)
	req.ServiceIDs = append(req.ServiceIDs, uuid.NewString())
	_, err := m.booking.CreateBooking(context.Background(), m.customer.ID, req)
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))

	req = m.request(m.cleaning)
	req.ServiceAreaID = uuid.NewString()
	_, err = m.booking.CreateBooking(context.Background(), m.customer.ID, req)
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))
}

func TestCreateBooking_Validation(t *testing.T) {
	m := newMarketplace(t)
	m.addProvider("Ahmad")

	t.Run("past date", func(t *testing.T) {
		req := m.request(m.cleaning)
		req.ScheduledDate = upcoming().AddDate(0, 0, -5)
		_, err := m.booking.CreateBooking(context.Background(), m.customer.ID, req)
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
		assert.Contains(t, appErr.Details, "scheduled_date")
	})

	t.Run("zero coordinates", func(t *testing.T) {
		req := m.request(m.cleaning)
		req.Latitude = 0
		_, err := m.booking.CreateBooking(context.Background(), m.customer.ID, req)
		assert.True(t, apperror.Is(err, apperror.CodeValidation))
	})

	t.Run("too many attachments", func(t *testing.T) {
		req := m.request(m.cleaning)
		for i := 0; i < 4; i++ {
			req.Attachments = append(req.Attachments, upload("a.png", pngBytes()))
		}
		_, err := m.booking.CreateBooking(context.Background(), m.customer.ID, req)
		assert.True(t, apperror.Is(err, apperror.CodeValidation))
	})

	t.Run("attachments over total size", func(t *testing.T) {
		req := m.request(m.cleaning)
		big := upload("a.mp4", pngBytes())
		big.Size = 16 << 20
		req.Attachments = []request.AttachmentUpload{big, big}
		_, err := m.booking.CreateBooking(context.Background(), m.customer.ID, req)
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
		assert.Contains(t, appErr.Details, "attachments")
	})

	t.Run("bad extension", func(t *testing.T) {
		req := m.request(m.cleaning)
		req.Attachments = []request.AttachmentUpload{upload("notes.exe", pngBytes())}
		_, err := m.booking.CreateBooking(context.Background(), m.customer.ID, req)
		assert.True(t, apperror.Is(err, apperror.CodeValidation))
	})
}

func TestCreateBooking_StoresAttachments(t *testing.T) {
	m := newMarketplace(t)
	m.addProvider("Ahmad")

	req := m.request(m.cleaning)
	req.Attachments = []request.AttachmentUpload{upload("sink.png", pngBytes())}

	resp, err := m.booking.CreateBooking(context.Background(), m.customer.ID, req)
	require.NoError(t, err)

	b := m.store.booking(uuid.MustParse(resp.BookingID))
	require.Len(t, b.Attachments, 1)
	assert.Equal(t, entity.FileTypeImage, b.Attachments[0].FileType)
	assert.Equal(t, "image/png", b.Attachments[0].MimeType)
	assert.Equal(t, b.ID, b.Attachments[0].BookingID)
	assert.Equal(t, 1, m.files.count())
}

func TestCreateBooking_FailedUploadDiscardsOthers(t *testing.T) {
	m := newMarketplace(t)
	m.addProvider("Ahmad")
	m.files.failOn = "broken.png"

	req := m.request(m.cleaning)
	req.Attachments = []request.AttachmentUpload{
		upload("ok.png", pngBytes()),
		upload("broken.png", pngBytes()),
	}

	_, err := m.booking.CreateBooking(context.Background(), m.customer.ID, req)
	require.Error(t, err)
	assert.Zero(t, m.files.count())
}

func TestCreateBooking_SameSlotTwiceIsAllowed(t *testing.T) {
	m := newMarketplace(t)
	ahmad := m.addProvider("Ahmad")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = m.booking.CreateBooking(context.Background(), m.customer.ID, m.request(m.cleaning))
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Len(t, m.store.notificationsFor(ahmad.UserID), 2)
}

func TestAcceptBooking(t *testing.T) {
	m := newMarketplace(t)
	ahmad := m.addProvider("Ahmad")
	id := m.create(t)

	err := m.booking.AcceptBooking(context.Background(), ahmad.UserID, id.String())
	require.NoError(t, err)

	b := m.store.booking(id)
	assert.Equal(t, entity.BookingStatusActive, b.Status)
	assert.Equal(t, 1, b.Version)

	notes := m.store.notificationsFor(m.customer.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, "Booking Accepted", notes[0].Title)
	assert.Equal(t, "Your booking has been accepted by Ahmad.", notes[0].Message)

	// Accepting twice is a state error
	err = m.booking.AcceptBooking(context.Background(), ahmad.UserID, id.String())
	assert.True(t, apperror.Is(err, apperror.CodeInvalidState))
}

func TestAcceptBooking_OnlyAssignedProvider(t *testing.T) {
	m := newMarketplace(t)
	m.addProvider("Ahmad")
	other := m.addProvider("Basel")
	id := m.create(t)

	err := m.booking.AcceptBooking(context.Background(), other.UserID, id.String())
	assert.True(t, apperror.Is(err, apperror.CodeUnauthorized))

	err = m.booking.AcceptBooking(context.Background(), m.customer.ID, id.String())
	assert.True(t, apperror.Is(err, apperror.CodeUnauthorized))

	assert.Equal(t, entity.BookingStatusPending, m.store.booking(id).Status)
}

func TestAcceptBooking_UnknownBooking(t *testing.T) {
	m := newMarketplace(t)
	ahmad := m.addProvider("Ahmad")

	err := m.booking.AcceptBooking(context.Background(), ahmad.UserID, uuid.NewString())
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))

	err = m.booking.AcceptBooking(context.Background(), ahmad.UserID, "not-a-uuid")
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))
}

func TestAcceptBooking_ConcurrentAcceptsOneWins(t *testing.T) {
	m := newMarketplace(t)
	ahmad := m.addProvider("Ahmad")
	id := m.create(t)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = m.booking.AcceptBooking(context.Background(), ahmad.UserID, id.String())
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperror.Is(err, apperror.CodeConflict) || apperror.Is(err, apperror.CodeInvalidState), err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, m.store.booking(id).Version)
}

func TestTransition_StaleReadIsConflict(t *testing.T) {
	m := newMarketplace(t)
	ahmad := m.addProvider("Ahmad")
	id := m.create(t)

	stale := m.store.booking(id)
	require.NoError(t, m.booking.AcceptBooking(context.Background(), ahmad.UserID, id.String()))

	svc := m.booking.(*bookingService)
	err := svc.transition(context.Background(), &stale, entity.BookingStatusCancelled, ahmad.UserID)
	assert.True(t, apperror.Is(err, apperror.CodeConflict))
	assert.Equal(t, entity.BookingStatusActive, m.store.booking(id).Status)
}

func TestRejectBooking_NoReplacementKeepsBooking(t *testing.T) {
	m := newMarketplace(t)
	ahmad := m.addProvider("Ahmad")
	id := m.create(t)

	err := m.booking.RejectBooking(context.Background(), ahmad.UserID, id.String())
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeNoProviderAvailable))

	b := m.store.booking(id)
	assert.Equal(t, entity.BookingStatusPending, b.Status)
	assert.Equal(t, ahmad.UserID, b.ServiceProviderID)
	assert.Empty(t, m.store.notificationsFor(m.customer.ID))
}

func TestRejectBooking_ReassignsToAnotherProvider(t *testing.T) {
	m := newMarketplace(t)
	ahmad := m.addProvider("Ahmad")
	id := m.create(t)
	basel := m.addProvider("Basel")

	err := m.booking.RejectBooking(context.Background(), ahmad.UserID, id.String())
	require.NoError(t, err)

	b := m.store.booking(id)
	assert.Equal(t, entity.BookingStatusPending, b.Status)
	assert.Equal(t, basel.UserID, b.ServiceProviderID)
	assert.Equal(t, m.area.ID, b.ServiceAreaID)
	assert.Equal(t, upcoming(), b.ScheduledDate.UTC())
	assert.Equal(t, []uuid.UUID{m.cleaning.ID}, b.ServiceIDs())

	baselNotes := m.store.notificationsFor(basel.UserID)
	require.Len(t, baselNotes, 1)
	assert.Equal(t, entity.NotificationBookingCreated, baselNotes[0].Type)

	customerNotes := m.store.notificationsFor(m.customer.ID)
	require.Len(t, customerNotes, 1)
	assert.Equal(t, entity.NotificationBookingReassignedAfterBeingRejected, customerNotes[0].Type)
	assert.Equal(t, "We found a new provider for your request.", customerNotes[0].Message)

	// Ahmad no longer owns it
	err = m.booking.AcceptBooking(context.Background(), ahmad.UserID, id.String())
	assert.True(t, apperror.Is(err, apperror.CodeUnauthorized))
}

// nextMondayAt returns next week's Monday at hour:00 on a +03:00 clock.
func nextMondayAt(hour int) time.Time {
	amman := time.FixedZone("+03", 3*60*60)
	d := time.Now().In(amman).AddDate(0, 0, 7)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, amman)
}

func TestRejectBooking_ReassignUsesClientWallClock(t *testing.T) {
	m := newMarketplace(t)
	ahmad := m.addProvider("Ahmad")

	req := m.request(m.cleaning)
	req.ScheduledDate = nextMondayAt(10) // 07:00 UTC
	resp, err := m.booking.CreateBooking(context.Background(), m.customer.ID, req)
	require.NoError(t, err)
	id := uuid.MustParse(resp.BookingID)

	// Basel only works Monday 09:00-17:00
	basel := m.addProvider("Basel")
	basel.Schedules = []entity.ScheduleSlot{{
		ID:         uuid.New(),
		ProviderID: basel.UserID,
		DayOfWeek:  time.Monday,
		StartTime:  entity.NewTimeOfDay(9, 0),
		EndTime:    entity.NewTimeOfDay(17, 0),
	}}

	require.NoError(t, m.booking.RejectBooking(context.Background(), ahmad.UserID, id.String()))
	assert.Equal(t, basel.UserID, m.store.booking(id).ServiceProviderID)

	detail, err := m.booking.GetBooking(context.Background(), m.customer.ID, id.String())
	require.NoError(t, err)
	assert.Equal(t, "10:00 AM", detail.ScheduledTime)
	assert.Contains(t, detail.ScheduledDay, "Monday")
}

func TestRejectBooking_OnlyWhilePending(t *testing.T) {
	m := newMarketplace(t)
	ahmad := m.addProvider("Ahmad")
	id := m.create(t)
	require.NoError(t, m.booking.AcceptBooking(context.Background(), ahmad.UserID, id.String()))

	err := m.booking.RejectBooking(context.Background(), ahmad.UserID, id.String())
	assert.True(t, apperror.Is(err, apperror.CodeInvalidState))
}

func TestCompleteBooking(t *testing.T) {
	m := newMarketplace(t)
	ahmad := m.addProvider("Ahmad")
	id := m.create(t)

	err := m.booking.CompleteBooking(context.Background(), ahmad.UserID, id.String())
	assert.True(t, apperror.Is(err, apperror.CodeInvalidState), "pending cannot complete")

	require.NoError(t, m.booking.AcceptBooking(context.Background(), ahmad.UserID, id.String()))
	require.NoError(t, m.booking.CompleteBooking(context.Background(), ahmad.UserID, id.String()))

	assert.Equal(t, entity.BookingStatusCompleted, m.store.booking(id).Status)

	notes := m.store.notificationsFor(m.customer.ID)
	require.Len(t, notes, 2)
	assert.Equal(t, entity.NotificationBookingCompleted, notes[1].Type)
	assert.Equal(t, "Your service has been completed. Please leave a review!", notes[1].Message)
}

func TestCancelBooking_ByCustomer(t *testing.T) {
	m := newMarketplace(t)
	ahmad := m.addProvider("Ahmad")
	id := m.create(t)

	require.NoError(t, m.booking.CancelBooking(context.Background(), m.customer.ID, id.String()))
	assert.Equal(t, entity.BookingStatusCancelled, m.store.booking(id).Status)

	notes := m.store.notificationsFor(ahmad.UserID)
	require.Len(t, notes, 2)
	assert.Equal(t, entity.NotificationBookingCancelledByUser, notes[1].Type)
	assert.Equal(t, "Booking cancelled by Lina.", notes[1].Message)
}

func TestCancelBooking_ByProviderReassigns(t *testing.T) {
	m := newMarketplace(t)
	ahmad := m.addProvider("Ahmad")
	id := m.create(t)
	require.NoError(t, m.booking.AcceptBooking(context.Background(), ahmad.UserID, id.String()))
	basel := m.addProvider("Basel")
	before := m.store.booking(id)

	require.NoError(t, m.booking.CancelBooking(context.Background(), ahmad.UserID, id.String()))

	b := m.store.booking(id)
	assert.Equal(t, entity.BookingStatusPending, b.Status)
	assert.Equal(t, basel.UserID, b.ServiceProviderID)

	// Only the provider changes hands
	assert.Equal(t, m.area.ID, b.ServiceAreaID)
	assert.True(t, upcoming().Equal(b.ScheduledDate), "scheduled %v", b.ScheduledDate)
	assert.Equal(t, before.ScheduledOffset, b.ScheduledOffset)
	assert.Equal(t, []uuid.UUID{m.cleaning.ID}, b.ServiceIDs())
	assert.Equal(t, before.TotalAmount, b.TotalAmount)
	assert.Equal(t, before.CustomerID, b.CustomerID)

	notes := m.store.notificationsFor(m.customer.ID)
	last := notes[len(notes)-1]
	assert.Equal(t, entity.NotificationBookingReassignedAfterBeingCancelled, last.Type)
	assert.Equal(t, "Your provider Ahmad cancelled. We found a new provider for you automatically.", last.Message)
}

func TestCancelBooking_ByProviderWithoutReplacement(t *testing.T) {
	m := newMarketplace(t)
	ahmad := m.addProvider("Ahmad")
	id := m.create(t)
	require.NoError(t, m.booking.AcceptBooking(context.Background(), ahmad.UserID, id.String()))

	err := m.booking.CancelBooking(context.Background(), ahmad.UserID, id.String())
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNoProviderAvailable, appErr.Code)
	assert.Equal(t, "You cannot cancel, no replacement found", appErr.Message)

	b := m.store.booking(id)
	assert.Equal(t, entity.BookingStatusActive, b.Status)
	assert.Equal(t, ahmad.UserID, b.ServiceProviderID)
}

func TestCancelBooking_ClosedAndStrangers(t *testing.T) {
	m := newMarketplace(t)
	ahmad := m.addProvider("Ahmad")
	stranger := m.store.addUser("Sami")
	id := m.create(t)

	err := m.booking.CancelBooking(context.Background(), stranger.ID, id.String())
	assert.True(t, apperror.Is(err, apperror.CodeUnauthorized))

	require.NoError(t, m.booking.AcceptBooking(context.Background(), ahmad.UserID, id.String()))
	require.NoError(t, m.booking.CompleteBooking(context.Background(), ahmad.UserID, id.String()))

	for _, actor := range []uuid.UUID{m.customer.ID, ahmad.UserID} {
		err := m.booking.CancelBooking(context.Background(), actor, id.String())
		assert.True(t, apperror.Is(err, apperror.CodeInvalidState))
	}
	err = m.booking.AcceptBooking(context.Background(), ahmad.UserID, id.String())
	assert.True(t, apperror.Is(err, apperror.CodeInvalidState))

	assert.Equal(t, entity.BookingStatusCompleted, m.store.booking(id).Status)
}

func TestTerminalBookingsRejectEveryTransition(t *testing.T) {
	type action struct {
		name string
		run  func(m *marketplace, provider uuid.UUID, id string) error
	}
	actions := []action{
		{"accept", func(m *marketplace, p uuid.UUID, id string) error {
			return m.booking.AcceptBooking(context.Background(), p, id)
		}},
		{"reject", func(m *marketplace, p uuid.UUID, id string) error {
			return m.booking.RejectBooking(context.Background(), p, id)
		}},
		{"complete", func(m *marketplace, p uuid.UUID, id string) error {
			return m.booking.CompleteBooking(context.Background(), p, id)
		}},
		{"cancel by customer", func(m *marketplace, _ uuid.UUID, id string) error {
			return m.booking.CancelBooking(context.Background(), m.customer.ID, id)
		}},
		{"cancel by provider", func(m *marketplace, p uuid.UUID, id string) error {
			return m.booking.CancelBooking(context.Background(), p, id)
		}},
		{"reassign", func(m *marketplace, _ uuid.UUID, id string) error {
			b := m.store.booking(uuid.MustParse(id))
			return m.booking.(*bookingService).transition(context.Background(), &b, entity.BookingStatusPending, uuid.New())
		}},
	}

	terminal := map[entity.BookingStatus]func(m *marketplace, provider uuid.UUID, id string){
		entity.BookingStatusCompleted: func(m *marketplace, p uuid.UUID, id string) {
			require.NoError(t, m.booking.AcceptBooking(context.Background(), p, id))
			require.NoError(t, m.booking.CompleteBooking(context.Background(), p, id))
		},
		entity.BookingStatusCancelled: func(m *marketplace, _ uuid.UUID, id string) {
			require.NoError(t, m.booking.CancelBooking(context.Background(), m.customer.ID, id))
		},
	}

	for status, reach := range terminal {
		for _, a := range actions {
			t.Run(string(status)+"/"+a.name, func(t *testing.T) {
				m := newMarketplace(t)
				ahmad := m.addProvider("Ahmad")
				id := m.create(t)
				reach(m, ahmad.UserID, id.String())
				// A spare provider must not turn a closed booking into a hand-off
				m.addProvider("Basel")
				before := m.store.booking(id)

				err := a.run(m, ahmad.UserID, id.String())
				assert.True(t, apperror.Is(err, apperror.CodeInvalidState), "got %v", err)

				after := m.store.booking(id)
				assert.Equal(t, status, after.Status)
				assert.Equal(t, before.Version, after.Version)
				assert.Equal(t, ahmad.UserID, after.ServiceProviderID)
			})
		}
	}
}

func TestListAndGetBooking(t *testing.T) {
	m := newMarketplace(t)
	ahmad := m.addProvider("Ahmad")
	phone := "0790000000"
	m.store.mu.Lock()
	m.store.users[ahmad.UserID].Phone = &phone
	m.store.mu.Unlock()

	req := m.request(m.cleaning)
	req.Attachments = []request.AttachmentUpload{upload("sink.png", pngBytes())}
	resp, err := m.booking.CreateBooking(context.Background(), m.customer.ID, req)
	require.NoError(t, err)

	mine, err := m.booking.ListBookings(context.Background(), m.customer.ID, &request.BookingListRequest{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Ahmad", mine[0].OtherSideName)
	assert.Equal(t, "Deep Cleaning", mine[0].ServiceName)
	assert.Equal(t, "JOD 25.00", mine[0].FormattedPrice)
	assert.False(t, mine[0].HasReview)

	jobs, err := m.booking.ListBookings(context.Background(), ahmad.UserID, &request.BookingListRequest{Role: "serviceprovider"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Lina", jobs[0].OtherSideName)

	_, err = m.booking.ListBookings(context.Background(), ahmad.UserID, &request.BookingListRequest{Role: "admin"})
	assert.True(t, apperror.Is(err, apperror.CodeValidation))

	detail, err := m.booking.GetBooking(context.Background(), m.customer.ID, resp.BookingID)
	require.NoError(t, err)
	assert.Equal(t, phone, detail.OtherSidePhone)
	assert.Equal(t, "Abdoun, Amman", detail.AreaName)
	assert.Equal(t, "Est. Time: 2 hrs", detail.EstimatedTime)
	assert.Equal(t, "10:00 AM", detail.ScheduledTime)
	require.Len(t, detail.Attachments, 1)
	assert.Contains(t, detail.Attachments[0].URL, "/uploads/attachments/")

	stranger := m.store.addUser("Sami")
	_, err = m.booking.GetBooking(context.Background(), stranger.ID, resp.BookingID)
	assert.True(t, apperror.Is(err, apperror.CodeUnauthorized))
}
