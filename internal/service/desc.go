package service

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

const ServiceName = "clinic.calendar.v1.CalendarService"

// Полные имена методов.
const (
	MethodGenerateSlots      = "/" + ServiceName + "/GenerateSlots"
	MethodListAvailableSlots = "/" + ServiceName + "/ListAvailableSlots"
	MethodListDoctorSlots    = "/" + ServiceName + "/ListDoctorSlots"
	MethodBlockSlot          = "/" + ServiceName + "/BlockSlot"
	MethodDeleteSlot         = "/" + ServiceName + "/DeleteSlot"
	MethodCreateBooking      = "/" + ServiceName + "/CreateBooking"
	MethodMyBookings         = "/" + ServiceName + "/MyBookings"
	MethodAllBookings        = "/" + ServiceName + "/AllBookings"
	MethodCancelBooking      = "/" + ServiceName + "/CancelBooking"
	MethodRescheduleBooking  = "/" + ServiceName + "/RescheduleBooking"
	MethodCompleteBooking    = "/" + ServiceName + "/CompleteBooking"
	MethodExpirePastBookings = "/" + ServiceName + "/ExpirePastBookings"
)

// CalendarServer is the server API for CalendarService.
type CalendarServer interface {
	GenerateSlots(context.Context, *GenerateSlotsRequest) (*GenerateSlotsResponse, error)
	ListAvailableSlots(context.Context, *ListAvailableSlotsRequest) (*SlotsResponse, error)
	ListDoctorSlots(context.Context, *ListDoctorSlotsRequest) (*SlotsResponse, error)
	BlockSlot(context.Context, *SlotRequest) (*SlotResponse, error)
	DeleteSlot(context.Context, *SlotRequest) (*emptypb.Empty, error)
	CreateBooking(context.Context, *CreateBookingRequest) (*BookingResponse, error)
	MyBookings(context.Context, *MyBookingsRequest) (*BookingsResponse, error)
	AllBookings(context.Context, *AllBookingsRequest) (*BookingsResponse, error)
	CancelBooking(context.Context, *CancelBookingRequest) (*BookingResponse, error)
	RescheduleBooking(context.Context, *RescheduleBookingRequest) (*BookingResponse, error)
	CompleteBooking(context.Context, *CompleteBookingRequest) (*BookingResponse, error)
	ExpirePastBookings(context.Context, *emptypb.Empty) (*ExpirePastBookingsResponse, error)
}

func unaryHandler[Req, Resp any](fullMethod string, call func(CalendarServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CalendarServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CalendarServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var CalendarServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CalendarServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GenerateSlots", Handler: unaryHandler(MethodGenerateSlots, CalendarServer.GenerateSlots)},
		{MethodName: "ListAvailableSlots", Handler: unaryHandler(MethodListAvailableSlots, CalendarServer.ListAvailableSlots)},
		{MethodName: "ListDoctorSlots", Handler: unaryHandler(MethodListDoctorSlots, CalendarServer.ListDoctorSlots)},
		{MethodName: "BlockSlot", Handler: unaryHandler(MethodBlockSlot, CalendarServer.BlockSlot)},
		{MethodName: "DeleteSlot", Handler: unaryHandler(MethodDeleteSlot, CalendarServer.DeleteSlot)},
		{MethodName: "CreateBooking", Handler: unaryHandler(MethodCreateBooking, CalendarServer.CreateBooking)},
		{MethodName: "MyBookings", Handler: unaryHandler(MethodMyBookings, CalendarServer.MyBookings)},
		{MethodName: "AllBookings", Handler: unaryHandler(MethodAllBookings, CalendarServer.AllBookings)},
		{MethodName: "CancelBooking", Handler: unaryHandler(MethodCancelBooking, CalendarServer.CancelBooking)},
		{MethodName: "RescheduleBooking", Handler: unaryHandler(MethodRescheduleBooking, CalendarServer.RescheduleBooking)},
		{MethodName: "CompleteBooking", Handler: unaryHandler(MethodCompleteBooking, CalendarServer.CompleteBooking)},
		{MethodName: "ExpirePastBookings", Handler: unaryHandler(MethodExpirePastBookings, CalendarServer.ExpirePastBookings)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "clinic/calendar/v1/calendar.proto",
}

func RegisterCalendarServer(s grpc.ServiceRegistrar, srv CalendarServer) {
	s.RegisterService(&CalendarServiceDesc, srv)
}

// CalendarClient ходит в CalendarService через JSON-кодек.
type CalendarClient struct {
	cc grpc.ClientConnInterface
}

func NewCalendarClient(cc grpc.ClientConnInterface) *CalendarClient {
	return &CalendarClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *CalendarClient, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CalendarClient) GenerateSlots(ctx context.Context, in *GenerateSlotsRequest, opts ...grpc.CallOption) (*GenerateSlotsResponse, error) {
	return invoke[GenerateSlotsResponse](ctx, c, MethodGenerateSlots, in, opts)
}

func (c *CalendarClient) ListAvailableSlots(ctx context.Context, in *ListAvailableSlotsRequest, opts ...grpc.CallOption) (*SlotsResponse, error) {
	return invoke[SlotsResponse](ctx, c, MethodListAvailableSlots, in, opts)
}

func (c *CalendarClient) ListDoctorSlots(ctx context.Context, in *ListDoctorSlotsRequest, opts ...grpc.CallOption) (*SlotsResponse, error) {
	return invoke[SlotsResponse](ctx, c, MethodListDoctorSlots, in, opts)
}

func (c *CalendarClient) BlockSlot(ctx context.Context, in *SlotRequest, opts ...grpc.CallOption) (*SlotResponse, error) {
	return invoke[SlotResponse](ctx, c, MethodBlockSlot, in, opts)
}

func (c *CalendarClient) DeleteSlot(ctx context.Context, in *SlotRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c, MethodDeleteSlot, in, opts)
}

func (c *CalendarClient) CreateBooking(ctx context.Context, in *CreateBookingRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	return invoke[BookingResponse](ctx, c, MethodCreateBooking, in, opts)
}

func (c *CalendarClient) MyBookings(ctx context.Context, in *MyBookingsRequest, opts ...grpc.CallOption) (*BookingsResponse, error) {
	return invoke[BookingsResponse](ctx, c, MethodMyBookings, in, opts)
}

func (c *CalendarClient) AllBookings(ctx context.Context, in *AllBookingsRequest, opts ...grpc.CallOption) (*BookingsResponse, error) {
	return invoke[BookingsResponse](ctx, c, MethodAllBookings, in, opts)
}

func (c *CalendarClient) CancelBooking(ctx context.Context, in *CancelBookingRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	return invoke[BookingResponse](ctx, c, MethodCancelBooking, in, opts)
}

func (c *CalendarClient) RescheduleBooking(ctx context.Context, in *RescheduleBookingRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	return invoke[BookingResponse](ctx, c, MethodRescheduleBooking, in, opts)
}

func (c *CalendarClient) CompleteBooking(ctx context.Context, in *CompleteBookingRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	return invoke[BookingResponse](ctx, c, MethodCompleteBooking, in, opts)
}

func (c *CalendarClient) ExpirePastBookings(ctx context.Context, opts ...grpc.CallOption) (*ExpirePastBookingsResponse, error) {
	return invoke[ExpirePastBookingsResponse](ctx, c, MethodExpirePastBookings, &emptypb.Empty{}, opts)
}
