package server

import (
	"context"
	"net"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/contract-extractor/constants"
	"github.com/joseph-ayodele/contract-extractor/internal/common"
	"github.com/joseph-ayodele/contract-extractor/internal/entity"
	"github.com/joseph-ayodele/contract-extractor/internal/pipeline"
)

type stubProcessor struct {
	err      error
	seenPath string
	existed  bool
	content  []byte
}

func (s *stubProcessor) ProcessFile(_ context.Context, path string, _ bool) (pipeline.Result, error) {
	s.seenPath = path
	b, err := os.ReadFile(path)
	s.existed = err == nil
	s.content = b
	if s.err != nil {
		return pipeline.Result{Path: path}, s.err
	}
	rec := entity.NewRecordBuilder().
		Set(constants.ContractNumber, "2023/045", entity.SourcePattern).
		Set(constants.Currency, "EUR", entity.SourcePattern).
		Build()
	return pipeline.Result{Path: path, Record: rec, FullText: "CONTRAT N° 2023/045"}, nil
}

type stubAnswerer struct {
	answer string
	ok     bool
	got    string
}

func (s *stubAnswerer) AnswerFreeform(_ context.Context, _, question string) (string, bool) {
	s.got = question
	return s.answer, s.ok
}

func startServer(t *testing.T, svc ContractsServer) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv, _ := NewGRPCServer(svc, nil)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestExtract(t *testing.T) {
	proc := &stubProcessor{}
	conn := startServer(t, NewContractsService(proc, &stubAnswerer{}, t.TempDir(), nil))
	client := NewClient(conn)

	pdf := []byte("%PDF-1.4\n...")
	resp, err := client.Extract(WithRequestID(context.Background(), "req-1"), pdf)
	require.NoError(t, err)

	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, "CONTRAT N° 2023/045", resp.FullText)
	v, ok := resp.Record.Get(constants.ContractNumber)
	assert.True(t, ok)
	assert.Equal(t, "2023/045", v)
	_, ok = resp.Record.Get(constants.Location)
	assert.False(t, ok)

	assert.True(t, proc.existed)
	assert.Equal(t, pdf, proc.content)
	assert.True(t, strings.HasSuffix(proc.seenPath, ".pdf"))
	_, err = os.Stat(proc.seenPath)
	assert.True(t, os.IsNotExist(err), "staged upload must be removed")
}

func TestExtractGeneratesRequestID(t *testing.T) {
	conn := startServer(t, NewContractsService(&stubProcessor{}, &stubAnswerer{}, t.TempDir(), nil))

	out, err := NewClient(conn).Extract(context.Background(), []byte("%PDF-1.7"))
	require.NoError(t, err)
	assert.NotEmpty(t, out.RequestID)

	var header metadata.MD
	reply := new(structpb.Struct)
	err = conn.Invoke(context.Background(), extractMethod, wrapperspb.Bytes([]byte("%PDF-1.7")), reply, grpc.Header(&header))
	require.NoError(t, err)
	require.Len(t, header.Get(RequestIDHeader), 1)
	assert.Equal(t, header.Get(RequestIDHeader)[0], reply.GetFields()[KeyRequestID].GetStringValue())
}

func TestExtractRejectsInvalidInput(t *testing.T) {
	conn := startServer(t, NewContractsService(&stubProcessor{}, &stubAnswerer{}, t.TempDir(), nil))
	client := NewClient(conn)

	_, err := client.Extract(context.Background(), nil)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Extract(context.Background(), []byte("hello, not a pdf"))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), "only PDF")
}

func TestExtractDocumentErrors(t *testing.T) {
	for name, tc := range map[string]struct {
		err  error
		code codes.Code
	}{
		"empty":    {err: common.EmptyDocumentError("x.pdf"), code: codes.FailedPrecondition},
		"read":     {err: common.DocumentReadError("x.pdf", os.ErrInvalid), code: codes.FailedPrecondition},
		"deadline": {err: context.DeadlineExceeded, code: codes.DeadlineExceeded},
		"other":    {err: os.ErrPermission, code: codes.Internal},
	} {
		t.Run(name, func(t *testing.T) {
			proc := &stubProcessor{err: tc.err}
			conn := startServer(t, NewContractsService(proc, &stubAnswerer{}, t.TempDir(), nil))

			_, err := NewClient(conn).Extract(context.Background(), []byte("%PDF-1.4"))
			assert.Equal(t, tc.code, status.Code(err))

			_, statErr := os.Stat(proc.seenPath)
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestAsk(t *testing.T) {
	ans := &stubAnswerer{answer: "Paris, France", ok: true}
	conn := startServer(t, NewContractsService(&stubProcessor{}, ans, t.TempDir(), nil))
	client := NewClient(conn)

	got, ok, err := client.Ask(context.Background(), "Fait à Paris, France", "  Where was it signed? ")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Paris, France", got)
	assert.Equal(t, "Where was it signed?", ans.got)

	ans.ok = false
	_, ok, err = client.Ask(context.Background(), "text", "question")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAskValidation(t *testing.T) {
	conn := startServer(t, NewContractsService(&stubProcessor{}, &stubAnswerer{}, t.TempDir(), nil))
	client := NewClient(conn)

	_, _, err := client.Ask(context.Background(), "", "question")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, _, err = client.Ask(context.Background(), "text", "")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, _, err = client.Ask(context.Background(), "text", strings.Repeat("q", MaxQuestionLength+1))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, _, err = client.Ask(context.Background(), "text", strings.Repeat("é", MaxQuestionLength))
	assert.NoError(t, err)
}

func TestHealth(t *testing.T) {
	conn := startServer(t, NewContractsService(&stubProcessor{}, &stubAnswerer{}, t.TempDir(), nil))
	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
