package server

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/contract-extractor/internal/entity"
)

// ExtractResponse is the decoded Extract reply.
type ExtractResponse struct {
	Record    entity.ContractRecord
	FullText  string
	RequestID string
}

// Client calls contracts.v1.ContractsService.
type Client struct {
	cc   grpc.ClientConnInterface
	conn *grpc.ClientConn
}

// Dial connects to addr without TLS.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.MaxCallSendMsgSize(MaxMessageBytes), grpc.MaxCallRecvMsgSize(MaxMessageBytes)),
	}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Client{cc: conn, conn: conn}, nil
}

// NewClient wraps an existing connection; Close is then a no-op.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Extract uploads a PDF and returns the extracted record.
func (c *Client) Extract(ctx context.Context, pdf []byte) (ExtractResponse, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, extractMethod, wrapperspb.Bytes(pdf), out); err != nil {
		return ExtractResponse{}, err
	}
	fields := out.GetFields()

	values := map[string]*string{}
	for name, v := range fields[KeyExtractedData].GetStructValue().GetFields() {
		if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
			values[name] = nil
			continue
		}
		s := v.GetStringValue()
		values[name] = &s
	}
	rec, err := entity.NewContractRecord(values)
	if err != nil {
		return ExtractResponse{}, fmt.Errorf("decode extracted_data: %w", err)
	}
	return ExtractResponse{
		Record:    rec,
		FullText:  fields[KeyFullText].GetStringValue(),
		RequestID: fields[KeyRequestID].GetStringValue(),
	}, nil
}

// Ask returns the answer to question over fullText; ok is false when there is none.
func (c *Client) Ask(ctx context.Context, fullText, question string) (string, bool, error) {
	in := &structpb.Struct{Fields: map[string]*structpb.Value{
		KeyFullContractText: structpb.NewStringValue(fullText),
		KeyQuestion:         structpb.NewStringValue(question),
	}}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, askMethod, in, out); err != nil {
		return "", false, err
	}
	v, ok := out.GetFields()[KeyAnswer]
	if !ok {
		return "", false, nil
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return "", false, nil
	}
	return v.GetStringValue(), true, nil
}

// WithRequestID attaches id as the outgoing x-request-id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, RequestIDHeader, id)
}
