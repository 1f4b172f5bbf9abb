package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/cv-screener/internal/logger"
	"alfredoptarigan/cv-screener/internal/models"
	"alfredoptarigan/cv-screener/internal/repositories"
)

type ScreeningInput struct {
	Filename string
	FileData []byte
	Role     string
}

type ScreeningResult struct {
	ID          uuid.UUID
	Feedback    string
	RoleMatched string
	Similarity  float64
	Fallback    bool
	Timing      Timing
}

type Timing struct {
	Parse      time.Duration
	Retrieval  time.Duration
	Generation time.Duration
	Total      time.Duration
}

type ScreeningService interface {
	Screen(ctx context.Context, input *ScreeningInput) (*ScreeningResult, error)
}

type screeningService struct {
	screeningRepo repositories.ScreeningRepository
	uploadRepo    repositories.UploadRepository
	storage       StorageService
	extractor     TextExtractor
	retriever     RetrieverService
	corpus        RoleCorpus
	promptBuilder *PromptBuilder
	generator     FeedbackGenerator
	logger        *zap.Logger
}

func NewScreeningService(
	screeningRepo repositories.ScreeningRepository,
	uploadRepo repositories.UploadRepository,
	storage StorageService,
	extractor TextExtractor,
	retriever RetrieverService,
	corpus RoleCorpus,
	generator FeedbackGenerator,
	logger *zap.Logger,
) ScreeningService {
	return &screeningService{
		screeningRepo: screeningRepo,
		uploadRepo:    uploadRepo,
		storage:       storage,
		extractor:     extractor,
		retriever:     retriever,
		corpus:        corpus,
		promptBuilder: NewPromptBuilder(),
		generator:     generator,
		logger:        logger,
	}
}

// Screen runs the pipeline synchronously. The upload is staged before anything else, and the
// first failing step aborts the request.
func (s *screeningService) Screen(ctx context.Context, input *ScreeningInput) (*ScreeningResult, error) {
	totalStart := time.Now()
	id := uuid.New()
	log := s.logger.With(zap.String("screening_id", id.String()))

	log.Info("📥 Receiving file", zap.String("filename", input.Filename), zap.String("role", input.Role))
	s.record(log, s.screeningRepo.Create(&models.Screening{
		ID:            id,
		RequestedRole: input.Role,
		Status:        models.StatusReceived,
		CreatedAt:     totalStart,
		UpdatedAt:     totalStart,
	}))

	stored, err := s.storage.SaveUpload(id, input.Filename, input.FileData)
	if err != nil {
		return nil, s.fail(log, id, "save upload", err)
	}
	// retention only finds files through their record, so an unrecorded file is removed
	if err := s.uploadRepo.Create(&models.Upload{
		ID:               id,
		OriginalFilename: input.Filename,
		StoredFilename:   stored.Filename,
		FilePath:         stored.Path,
		Size:             stored.Size,
		CreatedAt:        time.Now(),
	}); err != nil {
		if delErr := s.storage.DeleteFile(stored.Filename); delErr != nil {
			log.Warn("⚠️ Failed to remove unrecorded upload", zap.String("path", stored.Path), zap.Error(delErr))
		}
		return nil, s.fail(log, id, "record upload", err)
	}
	s.advance(log, id, models.StatusFileSaved)
	log.Info("✅ File saved", zap.String("path", stored.Path))

	parseStart := time.Now()
	cvText, err := s.extractor.ExtractText(stored.Path)
	if err != nil {
		return nil, s.fail(log, id, "parse CV", err)
	}
	parseTime := time.Since(parseStart)
	s.advance(log, id, models.StatusParsed)
	log.Info("📄 CV parsed", zap.Int("characters", len([]rune(cvText))), zap.Duration("elapsed", parseTime))

	retrievalStart := time.Now()
	match, err := s.retriever.RetrieveRole(ctx, cvText)
	if err != nil {
		return nil, s.fail(log, id, "retrieve role", err)
	}
	retrievalTime := time.Since(retrievalStart)
	s.advance(log, id, models.StatusRoleRetrieved)
	log.Info("🔍 Closest role",
		zap.String("role", match.Role),
		zap.Float64("similarity", match.Similarity),
		zap.Duration("elapsed", retrievalTime),
	)

	jobDescription, err := s.corpus.JobDescription(match.Role)
	if err != nil {
		return nil, s.fail(log, id, "resolve job description", err)
	}
	s.advance(log, id, models.StatusJobDescriptionResolved)

	// the selected role picks the persona; the matched role only supplies the job description
	personaRole := input.Role
	if personaRole == "" {
		personaRole = match.Role
	}
	prompt := s.promptBuilder.BuildScreeningPrompt(cvText, jobDescription, personaRole)
	log.Debug("📝 Prompt built",
		zap.Stringer("persona", SelectPersona(personaRole, cvText)),
		zap.Int("characters", len(prompt)),
	)

	generationStart := time.Now()
	feedback, err := s.generator.GenerateFeedback(ctx, prompt)
	if err != nil {
		return nil, s.fail(log, id, "generate feedback", err)
	}
	generationTime := time.Since(generationStart)
	s.advance(log, id, models.StatusFeedbackGenerated)
	log.Info("🧠 Feedback generated",
		zap.Duration("elapsed", generationTime),
		zap.String("preview", logger.Truncate(feedback, 80)),
	)

	result := &ScreeningResult{
		ID:          id,
		Feedback:    feedback,
		RoleMatched: match.Role,
		Similarity:  match.Similarity,
		Fallback:    match.Fallback,
		Timing: Timing{
			Parse:      parseTime,
			Retrieval:  retrievalTime,
			Generation: generationTime,
			Total:      time.Since(totalStart),
		},
	}

	parseSec := RoundSeconds(result.Timing.Parse)
	retrievalSec := RoundSeconds(result.Timing.Retrieval)
	generationSec := RoundSeconds(result.Timing.Generation)
	totalSec := RoundSeconds(result.Timing.Total)
	s.record(log, s.screeningRepo.UpdateResult(id, &repositories.ScreeningUpdateData{
		RoleMatched:    &result.RoleMatched,
		Similarity:     &result.Similarity,
		Fallback:       &result.Fallback,
		ParseTime:      &parseSec,
		RetrievalTime:  &retrievalSec,
		GenerationTime: &generationSec,
		TotalTime:      &totalSec,
	}))

	log.Info("⏱️ Screening completed", zap.Duration("total", result.Timing.Total))
	return result, nil
}

// RoundSeconds converts d to seconds rounded to two decimals.
func RoundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}

func (s *screeningService) advance(log *zap.Logger, id uuid.UUID, status models.ScreeningStatus) {
	s.record(log, s.screeningRepo.UpdateStatus(id, status))
}

func (s *screeningService) fail(log *zap.Logger, id uuid.UUID, step string, err error) error {
	err = fmt.Errorf("%s: %w", step, err)
	log.Error("❌ Screening failed", zap.Error(err))
	s.record(log, s.screeningRepo.UpdateError(id, err.Error()))
	return err
}

// record logs audit trail failures; they never fail the request.
func (s *screeningService) record(log *zap.Logger, err error) {
	if err != nil {
		log.Warn("⚠️ Failed to record screening progress", zap.Error(err))
	}
}
