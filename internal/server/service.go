package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/contract-extractor/constants"
	"github.com/joseph-ayodele/contract-extractor/internal/common"
	"github.com/joseph-ayodele/contract-extractor/internal/entity"
	"github.com/joseph-ayodele/contract-extractor/internal/pipeline"
)

// MaxQuestionLength caps Ask questions, in characters.
const MaxQuestionLength = 1000

// Request and response keys.
const (
	KeyExtractedData    = "extracted_data"
	KeyFullText         = "full_text"
	KeyRequestID        = "request_id"
	KeyFullContractText = "full_contract_text"
	KeyQuestion         = "question"
	KeyAnswer           = "answer"
)

// FileProcessor is satisfied by *pipeline.Processor.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string, force bool) (pipeline.Result, error)
}

// FreeformAnswerer is satisfied by *pipeline.Pipeline.
type FreeformAnswerer interface {
	AnswerFreeform(ctx context.Context, fullText, question string) (string, bool)
}

type ContractsService struct {
	processor FileProcessor
	answerer  FreeformAnswerer
	tmpDir    string
	logger    *slog.Logger
}

// NewContractsService creates the service. Uploads are staged in tmpDir ("" -> os.TempDir()).
func NewContractsService(proc FileProcessor, answerer FreeformAnswerer, tmpDir string, logger *slog.Logger) *ContractsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContractsService{processor: proc, answerer: answerer, tmpDir: tmpDir, logger: logger}
}

// Extract implements ContractsServer.
func (s *ContractsService) Extract(ctx context.Context, req *wrapperspb.BytesValue) (*structpb.Struct, error) {
	requestID := common.RequestIDFromContext(ctx)
	data := req.GetValue()

	v := common.NewValidator().
		Field("pdf", data, common.Required, common.MaxBytes(constants.MaxUploadMB<<20))
	if err := common.ValidateAndReturnError(v); err != nil {
		s.logger.Error("extract request invalid", "request_id", requestID, "error", v.ErrorMessage())
		return nil, err
	}
	if !constants.LooksLikePDF(data) {
		s.logger.Error("extract request is not a PDF", "request_id", requestID, "bytes", len(data))
		return nil, common.InvalidArgumentError("only PDF files are supported")
	}

	path, cleanup, err := s.stage(data)
	if err != nil {
		s.logger.Error("failed to stage upload", "request_id", requestID, "error", err)
		return nil, common.InternalError("failed to stage upload")
	}
	defer cleanup()

	s.logger.Info("starting extraction", "request_id", requestID, "bytes", len(data))
	res, err := s.processor.ProcessFile(ctx, path, false)
	if err != nil {
		s.logger.Error("extraction failed", "request_id", requestID, "error", err)
		return nil, common.StatusFromError(err)
	}
	s.logger.Info("extraction succeeded", "request_id", requestID, "run_id", res.RunID, "cached", res.Cached)

	out, err := structpb.NewStruct(map[string]any{
		KeyExtractedData: recordToMap(res.Record),
		KeyFullText:      res.FullText,
		KeyRequestID:     requestID,
	})
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return out, nil
}

// Ask implements ContractsServer.
func (s *ContractsService) Ask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	requestID := common.RequestIDFromContext(ctx)
	fields := req.GetFields()
	text := fields[KeyFullContractText].GetStringValue()
	question := fields[KeyQuestion].GetStringValue()

	v := common.NewValidator().
		Field(KeyFullContractText, text, common.Required).
		Field(KeyQuestion, question, common.Required, common.MaxLength(MaxQuestionLength))
	if err := common.ValidateAndReturnError(v); err != nil {
		s.logger.Error("ask request invalid", "request_id", requestID, "error", v.ErrorMessage())
		return nil, err
	}

	answer, ok := s.answerer.AnswerFreeform(ctx, text, strings.TrimSpace(question))
	s.logger.Info("ask answered", "request_id", requestID, "found", ok)

	value := structpb.NewNullValue()
	if ok {
		value = structpb.NewStringValue(answer)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{KeyAnswer: value}}, nil
}

// stage writes data to a temp .pdf. cleanup removes it.
func (s *ContractsService) stage(data []byte) (string, func(), error) {
	f, err := os.CreateTemp(s.tmpDir, "contract-*.pdf")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	cleanup := func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to remove staged upload", "path", path, "error", err)
		}
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}
	return path, cleanup, nil
}

func recordToMap(rec entity.ContractRecord) map[string]any {
	out := make(map[string]any, len(constants.Fields()))
	for name, v := range rec.Map() {
		if v == nil {
			out[name] = nil
			continue
		}
		out[name] = *v
	}
	return out
}
