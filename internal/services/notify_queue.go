package services

import (
	"context"
	"encoding/json"

	"github.com/bugnest/backend/internal/config"
	"github.com/bugnest/backend/pkg/logger"
	"github.com/hibiken/asynq"
)

const TaskTypeInviteNotify = "notify:invite"

// InviteNotifyTask is the payload for an invitation notification job.
type InviteNotifyTask struct {
	Email       string `json:"email"`
	ProjectName string `json:"project_name"`
	InviterName string `json:"inviter_name"`
	Message     string `json:"message,omitempty"`
}

// Notifier delivers invitation notifications. Implementations must be
// fire-and-forget: engine calls never block on or fail from delivery.
type Notifier interface {
	NotifyInvite(email, projectName, inviterName, message string)
}

// NopNotifier discards notifications; used in tests.
type NopNotifier struct{}

func (NopNotifier) NotifyInvite(string, string, string, string) {}

// SyncNotifier sends mail directly on a background goroutine.
type SyncNotifier struct {
	email *EmailService
}

func NewSyncNotifier(email *EmailService) *SyncNotifier {
	return &SyncNotifier{email: email}
}

func (n *SyncNotifier) NotifyInvite(email, projectName, inviterName, message string) {
	go n.email.SendInviteEmail(email, projectName, inviterName, message)
}

// AsyncNotifier enqueues notification jobs on Redis via asynq so mail
// delivery survives retries and restarts.
type AsyncNotifier struct {
	client *asynq.Client
}

// NewAsyncNotifier connects to Redis; returns an error when Redis is
// unreachable so the caller can fall back to the sync notifier.
func NewAsyncNotifier(cfg *config.RedisConfig) (*AsyncNotifier, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()
	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncNotifier{client: client}, nil
}

func (n *AsyncNotifier) NotifyInvite(email, projectName, inviterName, message string) {
	payload, err := json.Marshal(&InviteNotifyTask{
		Email:       email,
		ProjectName: projectName,
		InviterName: inviterName,
		Message:     message,
	})
	if err != nil {
		logger.Errorf("[Notify] marshal invite task: %v", err)
		return
	}

	task := asynq.NewTask(TaskTypeInviteNotify, payload)
	if _, err := n.client.Enqueue(task, asynq.Queue("default"), asynq.MaxRetry(3)); err != nil {
		logger.Warnf("[Notify] enqueue invite notification for %s failed: %v", email, err)
	}
}

func (n *AsyncNotifier) Close() error {
	return n.client.Close()
}

// NotifyWorker consumes queued notification jobs.
type NotifyWorker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	email  *EmailService
}

func NewNotifyWorker(cfg *config.RedisConfig, email *EmailService) *NotifyWorker {
	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		},
		asynq.Config{
			Concurrency: 5,
			Queues:      map[string]int{"default": 1},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Warnf("[NotifyWorker] task %s failed: %v", task.Type(), err)
			}),
		},
	)

	return &NotifyWorker{
		server: server,
		mux:    asynq.NewServeMux(),
		email:  email,
	}
}

// Start runs the worker on a background goroutine.
func (w *NotifyWorker) Start() {
	w.mux.HandleFunc(TaskTypeInviteNotify, w.handleInviteNotify)
	go func() {
		logger.Infof("[NotifyWorker] starting")
		if err := w.server.Run(w.mux); err != nil {
			logger.Errorf("[NotifyWorker] server error: %v", err)
		}
	}()
}

func (w *NotifyWorker) Stop() {
	w.server.Shutdown()
}

func (w *NotifyWorker) handleInviteNotify(ctx context.Context, task *asynq.Task) error {
	var payload InviteNotifyTask
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}
	w.email.SendInviteEmail(payload.Email, payload.ProjectName, payload.InviterName, payload.Message)
	return nil
}
