package methodapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// InvocationServer exposes a Registry over gRPC so a method class can run on
// a remote executor pool instead of in-process (§4.8). Request and response
// both travel as structpb.Struct, which is itself a ready-made proto.Message
// from the protobuf well-known types, so no generated stubs are needed.
type InvocationServer struct {
	Registry *Registry
}

// Invoke dispatches a single method call. The envelope must carry
// "class_name" and "method_name" string fields alongside the method's
// declared input fields; both are stripped before the call and are not part
// of the method's own input schema.
func (s *InvocationServer) Invoke(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.AsMap()
	className, _ := fields["class_name"].(string)
	methodName, _ := fields["method_name"].(string)
	delete(fields, "class_name")
	delete(fields, "method_name")

	method, ok := s.Registry.Lookup(className, methodName)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "methodapi: unknown method %s.%s", className, methodName)
	}

	in, err := ToEnvelope(fields)
	if err != nil {
		return nil, err
	}
	return method.Invoke(ctx, in)
}

// methodInvocationServiceDesc is a hand-built service descriptor: there is
// no .proto file to generate one from, since the message types are the
// pre-generated structpb well-known type rather than a domain-specific
// schema.
var methodInvocationServiceDesc = grpc.ServiceDesc{
	ServiceName: "policyproof.methodapi.MethodInvocation",
	HandlerType: (*rawInvoker)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Invoke",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				req := new(structpb.Struct)
				if err := dec(req); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(rawInvoker).Invoke(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/policyproof.methodapi.MethodInvocation/Invoke"}
				handler := func(ctx context.Context, req interface{}) (interface{}, error) {
					return srv.(rawInvoker).Invoke(ctx, req.(*structpb.Struct))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "methodapi/invocation.proto",
}

// rawInvoker is the handler-facing shape the service descriptor dispatches
// to; *InvocationServer satisfies it.
type rawInvoker interface {
	Invoke(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// RegisterInvocationServer attaches srv to an existing *grpc.Server.
func RegisterInvocationServer(s *grpc.Server, srv *InvocationServer) {
	s.RegisterService(&methodInvocationServiceDesc, srv)
}
