package services

import (
	"time"

	"github.com/bugnest/backend/internal/models"
	"github.com/bugnest/backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// SystemLogService records write operations and prunes old entries.
type SystemLogService struct {
	db *gorm.DB
}

func NewSystemLogService(db *gorm.DB) *SystemLogService {
	return &SystemLogService{db: db}
}

// Record stores one operation log entry. Failures are logged and swallowed;
// audit logging never breaks a request.
func (s *SystemLogService) Record(level, module, action, message string, userID *uint, ip, userAgent string) {
	entry := models.SystemLog{
		Level:     level,
		Module:    module,
		Action:    action,
		Message:   message,
		UserID:    userID,
		IP:        ip,
		UserAgent: userAgent,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		logger.Warnf("[SystemLog] record failed: %v", err)
	}
}

type SystemLogListRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Level    string `form:"level"`
	Module   string `form:"module"`
}

type SystemLogListResponse struct {
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Items    []models.SystemLog `json:"items"`
}

// List returns paginated log entries, newest first.
func (s *SystemLogService) List(req *SystemLogListRequest) (*SystemLogListResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.SystemLog{})
	if req.Level != "" {
		query = query.Where("level = ?", req.Level)
	}
	if req.Module != "" {
		query = query.Where("module = ?", req.Module)
	}

	var total int64
	query.Count(&total)

	var items []models.SystemLog
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.PageSize).
		Find(&items).Error; err != nil {
		return nil, err
	}

	return &SystemLogListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}

// CleanupOld deletes entries older than retentionDays and returns the
// number removed.
func (s *SystemLogService) CleanupOld(retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.Where("created_at < ?", cutoff).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}

// StartCleanupScheduler prunes the operation log every night at 03:00.
// Returns the scheduler so callers can stop it on shutdown.
func StartCleanupScheduler(db *gorm.DB, retentionDays int) *cron.Cron {
	if retentionDays <= 0 {
		retentionDays = 30
	}

	service := NewSystemLogService(db)
	c := cron.New()
	c.AddFunc("0 3 * * *", func() {
		deleted, err := service.CleanupOld(retentionDays)
		if err != nil {
			logger.Warnf("[SystemLog] cleanup failed: %v", err)
			return
		}
		if deleted > 0 {
			logger.Infof("[SystemLog] removed %d entries older than %d days", deleted, retentionDays)
		}
	})
	c.Start()
	return c
}
