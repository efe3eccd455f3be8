package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"schoolhub-backend/internal/models"
	"schoolhub-backend/internal/parse"
	"schoolhub-backend/internal/repository"
	"schoolhub-backend/internal/services"
)

const (
	QueueFlashCards = "queue:flash-card-generation"
	QueueQuizzes    = "queue:quiz-generation"
)

// Pool runs the background AI generation jobs: pull a job off redis, call
// the model, parse the output, and write the parsed cards or questions
// into the target resource.
type Pool struct {
	redis        *redis.Client
	gemini       *services.GeminiService
	jobRepo      *repository.JobRepo
	resourceRepo *repository.ResourceRepo
	workerCount  int
	stopChan     chan struct{}
}

func NewPool(
	redisClient *redis.Client,
	gemini *services.GeminiService,
	jobRepo *repository.JobRepo,
	resourceRepo *repository.ResourceRepo,
	workerCount int,
) *Pool {
	return &Pool{
		redis:        redisClient,
		gemini:       gemini,
		jobRepo:      jobRepo,
		resourceRepo: resourceRepo,
		workerCount:  workerCount,
		stopChan:     make(chan struct{}),
	}
}

func (p *Pool) Start() {
	queues := []string{QueueFlashCards, QueueQuizzes}

	for i := 0; i < p.workerCount; i++ {
		go p.worker(i, queues)
	}

	log.Printf("Started %d worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int, queues []string) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 30s timeout
		result, err := p.redis.BLPop(ctx, 30*time.Second, queues...).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		var job models.Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse job: %v", id, err)
			continue
		}

		// Try to acquire lock
		lockKey := fmt.Sprintf("job_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 10*time.Minute).Result()
		if err != nil || !locked {
			continue // Another worker has this job
		}

		log.Printf("Worker %d: processing job %s (type: %s)", id, job.ID, job.Type)

		p.jobRepo.UpdateStatus(ctx, job.ID, "processing")

		p.gemini.PublishUpdate(ctx, job.UserID, models.WSMessage{
			Type: "status_update",
			Payload: models.StatusUpdate{
				JobID:    job.ID,
				Step:     1,
				StepName: "Reading material",
			},
		})

		var processErr error
		switch job.Type {
		case "flash-card-generation":
			processErr = p.processFlashCards(ctx, &job)
		case "quiz-generation":
			processErr = p.processQuiz(ctx, &job)
		default:
			processErr = fmt.Errorf("unknown job type: %s", job.Type)
		}

		if processErr != nil {
			p.handleFailure(ctx, &job, processErr)
		} else {
			p.handleSuccess(ctx, &job)
		}

		p.redis.Del(ctx, lockKey)
	}
}

func (p *Pool) processFlashCards(ctx context.Context, job *models.Job) error {
	var config models.GenerateFlashCardsRequest
	json.Unmarshal(job.ConfigJSON, &config)

	sourceText, err := p.loadSourceText(ctx, config.MaterialID)
	if err != nil {
		return err
	}

	p.publishStep(ctx, job, 2, "Generating flash cards")

	content, err := p.gemini.GenerateFlashCards(ctx, config, sourceText)
	if err != nil {
		return fmt.Errorf("model call failed: %w", err)
	}

	result := parse.FlashCards(content)
	if result.Kind != parse.Cards {
		return fmt.Errorf("model output was not a usable card list")
	}

	cardsJSON, err := json.Marshal(result.Cards)
	if err != nil {
		return fmt.Errorf("failed to encode cards: %w", err)
	}

	if err := p.resourceRepo.UpdateCards(ctx, job.ReferenceID, cardsJSON); err != nil {
		return fmt.Errorf("failed to save cards: %w", err)
	}

	log.Printf("Job %s: saved %d flash cards to resource %s", job.ID, len(result.Cards), job.ReferenceID)
	return nil
}

func (p *Pool) processQuiz(ctx context.Context, job *models.Job) error {
	var config models.GenerateQuizRequest
	json.Unmarshal(job.ConfigJSON, &config)

	sourceText, err := p.loadSourceText(ctx, config.MaterialID)
	if err != nil {
		return err
	}

	p.publishStep(ctx, job, 2, "Generating quiz questions")

	content, err := p.gemini.GenerateQuiz(ctx, config, sourceText)
	if err != nil {
		return fmt.Errorf("model call failed: %w", err)
	}

	result := parse.QuizQuestions(content)
	if result.Kind != parse.Quiz {
		return fmt.Errorf("model output was not a usable question list")
	}

	questionsJSON, err := json.Marshal(result.Questions)
	if err != nil {
		return fmt.Errorf("failed to encode questions: %w", err)
	}

	if err := p.resourceRepo.UpdateQuestions(ctx, job.ReferenceID, questionsJSON); err != nil {
		return fmt.Errorf("failed to save questions: %w", err)
	}

	log.Printf("Job %s: saved %d questions to resource %s", job.ID, len(result.Questions), job.ReferenceID)
	return nil
}

func (p *Pool) loadSourceText(ctx context.Context, materialID uuid.UUID) (string, error) {
	if materialID == uuid.Nil {
		return "", fmt.Errorf("job config has no material")
	}

	material, err := p.resourceRepo.GetByID(ctx, materialID)
	if err != nil {
		return "", fmt.Errorf("failed to get material: %w", err)
	}

	if material.BodyRaw == nil || *material.BodyRaw == "" {
		return "", fmt.Errorf("material %s has no text", material.ID)
	}
	return *material.BodyRaw, nil
}

func (p *Pool) publishStep(ctx context.Context, job *models.Job, step int, name string) {
	p.gemini.PublishUpdate(ctx, job.UserID, models.WSMessage{
		Type: "status_update",
		Payload: models.StatusUpdate{
			JobID:    job.ID,
			Step:     step,
			StepName: name,
		},
	})
}

func (p *Pool) handleSuccess(ctx context.Context, job *models.Job) {
	p.jobRepo.UpdateStatus(ctx, job.ID, "completed")

	p.gemini.PublishUpdate(ctx, job.UserID, models.WSMessage{
		Type: "completed",
		Payload: models.CompletedEvent{
			JobID:      job.ID,
			ResultID:   job.ReferenceID,
			ResultType: resultType(job.Type),
		},
	})

	log.Printf("Job %s completed successfully", job.ID)
}

func (p *Pool) handleFailure(ctx context.Context, job *models.Job, err error) {
	job.RetryCount++
	errMsg := err.Error()

	if job.RetryCount < 3 {
		log.Printf("Job %s failed (attempt %d): %s, retrying", job.ID, job.RetryCount, errMsg)
		p.jobRepo.UpdateStatus(ctx, job.ID, "pending")
		p.jobRepo.UpdateError(ctx, job.ID, errMsg, job.RetryCount)

		// Re-queue after backoff
		jobBytes, _ := json.Marshal(job)
		backoff := time.Duration(1<<uint(job.RetryCount)) * time.Second
		queue := queueName(job.Type)
		time.AfterFunc(backoff, func() {
			p.redis.LPush(context.Background(), queue, string(jobBytes))
		})
	} else {
		log.Printf("Job %s failed permanently: %s", job.ID, errMsg)
		p.jobRepo.UpdateStatus(ctx, job.ID, "failed")
		p.jobRepo.UpdateError(ctx, job.ID, errMsg, job.RetryCount)

		p.gemini.PublishUpdate(ctx, job.UserID, models.WSMessage{
			Type: "error",
			Payload: models.ErrorEvent{
				JobID:        job.ID,
				ErrorCode:    "JOB_FAILED",
				ErrorMessage: errMsg,
			},
		})
	}
}

func queueName(jobType string) string {
	switch jobType {
	case "flash-card-generation":
		return QueueFlashCards
	case "quiz-generation":
		return QueueQuizzes
	default:
		return "queue:" + jobType
	}
}

func resultType(jobType string) string {
	if jobType == "quiz-generation" {
		return "quiz"
	}
	return "flash_cards"
}
