package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/Leganyst/clinic-booking/internal/calendar"
	"github.com/Leganyst/clinic-booking/internal/model"
	"github.com/Leganyst/clinic-booking/internal/scheduling"
)

// CalendarService — gRPC-фасад над генератором слотов и движком бронирований.
type CalendarService struct {
	slots     *scheduling.SlotService
	engine    *scheduling.Engine
	validator *validator.Validate
}

func NewCalendarService(slots *scheduling.SlotService, engine *scheduling.Engine) *CalendarService {
	return &CalendarService{
		slots:     slots,
		engine:    engine,
		validator: newValidator(),
	}
}

var _ CalendarServer = (*CalendarService)(nil)

func principalFrom(ctx context.Context) (calendar.Principal, error) {
	p, ok := calendar.PrincipalFromContext(ctx)
	if !ok {
		return calendar.Principal{}, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	return p, nil
}

func (s *CalendarService) GenerateSlots(ctx context.Context, req *GenerateSlotsRequest) (*GenerateSlotsResponse, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, toStatus(err)
	}

	created, err := s.slots.Generate(ctx, p, scheduling.GenerateParams{
		DoctorID:            uuid.MustParse(req.DoctorID),
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		SlotDurationMinutes: req.SlotDurationMinutes,
		TimeZone:            req.TimeZone,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &GenerateSlotsResponse{CreatedCount: created}, nil
}

func (s *CalendarService) ListAvailableSlots(ctx context.Context, req *ListAvailableSlotsRequest) (*SlotsResponse, error) {
	if _, err := principalFrom(ctx); err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, toStatus(err)
	}

	q := scheduling.AvailableQuery{Date: req.Date, StartDate: req.StartDate, EndDate: req.EndDate}
	if req.DoctorID != "" {
		id := uuid.MustParse(req.DoctorID)
		q.DoctorID = &id
	}

	slots, err := s.slots.ListAvailable(ctx, q)
	if err != nil {
		return nil, toStatus(err)
	}
	return &SlotsResponse{Slots: mapSlots(slots)}, nil
}

func (s *CalendarService) ListDoctorSlots(ctx context.Context, req *ListDoctorSlotsRequest) (*SlotsResponse, error) {
	if _, err := principalFrom(ctx); err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, toStatus(err)
	}

	slots, err := s.slots.ListDoctorSlots(ctx, uuid.MustParse(req.DoctorID), req.Status)
	if err != nil {
		return nil, toStatus(err)
	}
	return &SlotsResponse{Slots: mapSlots(slots)}, nil
}

func (s *CalendarService) BlockSlot(ctx context.Context, req *SlotRequest) (*SlotResponse, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, toStatus(err)
	}

	slot, err := s.slots.Block(ctx, p, uuid.MustParse(req.SlotID))
	if err != nil {
		return nil, toStatus(err)
	}
	return &SlotResponse{Slot: mapSlot(slot)}, nil
}

func (s *CalendarService) DeleteSlot(ctx context.Context, req *SlotRequest) (*emptypb.Empty, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, toStatus(err)
	}

	if err := s.slots.Delete(ctx, p, uuid.MustParse(req.SlotID)); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *CalendarService) CreateBooking(ctx context.Context, req *CreateBookingRequest) (*BookingResponse, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, toStatus(err)
	}

	b, err := s.engine.Create(ctx, p, uuid.MustParse(req.SlotID))
	if err != nil {
		return nil, toStatus(err)
	}
	return &BookingResponse{Booking: mapBooking(b)}, nil
}

func (s *CalendarService) MyBookings(ctx context.Context, req *MyBookingsRequest) (*BookingsResponse, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, toStatus(err)
	}

	page, err := s.engine.MyBookings(ctx, p, calendar.PageRequest{Page: req.Page, PageSize: req.PageSize})
	if err != nil {
		return nil, toStatus(err)
	}
	return mapBookingsPage(page), nil
}

func (s *CalendarService) AllBookings(ctx context.Context, req *AllBookingsRequest) (*BookingsResponse, error) {
	if _, err := principalFrom(ctx); err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, toStatus(err)
	}

	page, err := s.engine.AllBookings(ctx, req.Status, calendar.PageRequest{Page: req.Page, PageSize: req.PageSize})
	if err != nil {
		return nil, toStatus(err)
	}
	return mapBookingsPage(page), nil
}

func (s *CalendarService) CancelBooking(ctx context.Context, req *CancelBookingRequest) (*BookingResponse, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, toStatus(err)
	}

	b, err := s.engine.Cancel(ctx, p, uuid.MustParse(req.BookingID), req.Reason)
	if err != nil {
		return nil, toStatus(err)
	}
	return &BookingResponse{Booking: mapBooking(b)}, nil
}

func (s *CalendarService) RescheduleBooking(ctx context.Context, req *RescheduleBookingRequest) (*BookingResponse, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, toStatus(err)
	}

	b, err := s.engine.Reschedule(ctx, p, uuid.MustParse(req.BookingID), uuid.MustParse(req.NewSlotID))
	if err != nil {
		return nil, toStatus(err)
	}
	return &BookingResponse{Booking: mapBooking(b)}, nil
}

func (s *CalendarService) CompleteBooking(ctx context.Context, req *CompleteBookingRequest) (*BookingResponse, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, toStatus(err)
	}

	b, err := s.engine.Complete(ctx, p, uuid.MustParse(req.BookingID))
	if err != nil {
		return nil, toStatus(err)
	}
	return &BookingResponse{Booking: mapBooking(b)}, nil
}

func (s *CalendarService) ExpirePastBookings(ctx context.Context, _ *emptypb.Empty) (*ExpirePastBookingsResponse, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}

	n, err := s.engine.ExpirePast(ctx, p)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ExpirePastBookingsResponse{Count: n}, nil
}

func mapSlot(s *model.Slot) Slot {
	return Slot{
		ID:        s.ID.String(),
		DoctorID:  s.DoctorID.String(),
		Date:      s.Day().Format(calendar.DateLayout),
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Status:    mapSlotStatus(s.Status),
		TimeZone:  s.TimeZone,
	}
}

func mapSlots(slots []model.Slot) []Slot {
	out := make([]Slot, 0, len(slots))
	for i := range slots {
		out = append(out, mapSlot(&slots[i]))
	}
	return out
}

func mapSlotStatus(s model.SlotStatus) string {
	switch s {
	case model.SlotStatusAvailable, model.SlotStatusBooked, model.SlotStatusBlocked:
		return string(s)
	default:
		return "unspecified"
	}
}

func mapBooking(b *model.Booking) Booking {
	out := Booking{
		ID:                 b.ID.String(),
		UserID:             b.UserID.String(),
		SlotID:             b.SlotID.String(),
		DoctorID:           b.DoctorID.String(),
		Status:             string(b.Status),
		CancellationReason: b.CancellationReason,
		CancelledAt:        b.CancelledAt,
		CreatedAt:          b.CreatedAt,
	}
	if b.Slot != nil {
		slot := mapSlot(b.Slot)
		out.Slot = &slot
	}
	if b.Doctor != nil {
		out.Doctor = &Doctor{ID: b.Doctor.ID.String(), Name: b.Doctor.Name, Specialization: b.Doctor.Specialization}
	}
	if b.User != nil {
		out.User = &User{ID: b.User.ID.String(), Name: b.User.Name, Email: b.User.Email}
	}
	return out
}

func mapBookingsPage(page calendar.Page[model.Booking]) *BookingsResponse {
	resp := &BookingsResponse{
		Bookings: make([]Booking, 0, len(page.Items)),
		Page:     page.Page,
		PageSize: page.PageSize,
		Total:    page.Total,
		HasNext:  page.HasNext,
		HasPrev:  page.HasPrev,
	}
	for i := range page.Items {
		resp.Bookings = append(resp.Bookings, mapBooking(&page.Items[i]))
	}
	return resp
}
