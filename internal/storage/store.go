package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/agoraops/agora/config"
	"github.com/agoraops/agora/types"
)

// Store provides conversation persistence on top of GORM. It works on
// postgres, mysql, and the embedded sqlite driver.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open connects to the configured database, applies pool settings, and
// migrates the schema.
func Open(cfg config.DatabaseConfig, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	case "mysql":
		dialector = mysql.Open(cfg.DSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	store := NewStore(db, logger)
	if err := store.Migrate(); err != nil {
		return nil, err
	}

	logger.Info("database connected",
		zap.String("driver", cfg.Driver),
		zap.String("name", cfg.Name))
	return store, nil
}

// NewStore wraps an existing GORM handle. The caller is responsible for
// migration.
func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		db:     db,
		logger: logger.With(zap.String("component", "storage")),
	}
}

// Migrate creates or updates the schema.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&ConversationRecord{}, &MessageRecord{}); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// CreateConversation inserts a new conversation record.
func (s *Store) CreateConversation(ctx context.Context, id, goal, status, phase string) error {
	rec := ConversationRecord{
		ID:              id,
		GoalDescription: goal,
		Status:          status,
		Phase:           phase,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return storageErr("create conversation", err)
	}
	return nil
}

// GetConversation loads a conversation with its messages in transcript
// order.
func (s *Store) GetConversation(ctx context.Context, id string) (*ConversationRecord, error) {
	var rec ConversationRecord
	err := s.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewError(types.ErrNotFound,
			fmt.Sprintf("conversation %q not found", id))
	}
	if err != nil {
		return nil, storageErr("get conversation", err)
	}
	return &rec, nil
}

// ListConversations returns all conversations, newest first, without
// their messages.
func (s *Store) ListConversations(ctx context.Context) ([]ConversationRecord, error) {
	var recs []ConversationRecord
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&recs).Error; err != nil {
		return nil, storageErr("list conversations", err)
	}
	return recs, nil
}

// UpdateStatus updates the lifecycle status of a conversation.
func (s *Store) UpdateStatus(ctx context.Context, id, status string) error {
	return s.updateColumn(ctx, id, "status", status)
}

// UpdatePhase updates the discussion phase of a conversation.
func (s *Store) UpdatePhase(ctx context.Context, id, phase string) error {
	return s.updateColumn(ctx, id, "phase", phase)
}

// SetFinalSummary stores the compiled decision text.
func (s *Store) SetFinalSummary(ctx context.Context, id, summary string) error {
	return s.updateColumn(ctx, id, "final_summary", summary)
}

func (s *Store) updateColumn(ctx context.Context, id, column string, value any) error {
	res := s.db.WithContext(ctx).
		Model(&ConversationRecord{}).
		Where("id = ?", id).
		Update(column, value)
	if res.Error != nil {
		return storageErr("update conversation", res.Error)
	}
	if res.RowsAffected == 0 {
		return types.NewError(types.ErrNotFound,
			fmt.Sprintf("conversation %q not found", id))
	}
	return nil
}

// DeleteConversation removes a conversation and, via the cascade
// constraint, its messages. SQLite needs foreign keys enabled for the
// cascade, so messages are deleted explicitly as well.
func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&ConversationRecord{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.NewError(types.ErrNotFound,
				fmt.Sprintf("conversation %q not found", id))
		}
		return tx.Where("conversation_id = ?", id).Delete(&MessageRecord{}).Error
	})
	if err != nil {
		if types.HasCode(err, types.ErrNotFound) {
			return err
		}
		return storageErr("delete conversation", err)
	}
	return nil
}

// AppendMessage persists one transcript entry. Seq is assigned from the
// current message count inside a transaction so order survives restarts.
func (s *Store) AppendMessage(ctx context.Context, conversationID string, msg types.Message) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&MessageRecord{}).
			Where("conversation_id = ?", conversationID).
			Count(&count).Error; err != nil {
			return err
		}
		rec := MessageRecord{
			ConversationID:       conversationID,
			Seq:                  int(count),
			Sender:               msg.Sender,
			Content:              msg.Content,
			Type:                 string(msg.Type),
			RequiresUserResponse: msg.RequiresUserResponse,
		}
		return tx.Create(&rec).Error
	})
	if err != nil {
		return storageErr("append message", err)
	}
	return nil
}

// Messages returns the transcript of a conversation in append order.
func (s *Store) Messages(ctx context.Context, conversationID string) ([]MessageRecord, error) {
	var recs []MessageRecord
	if err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("seq ASC").
		Find(&recs).Error; err != nil {
		return nil, storageErr("load messages", err)
	}
	return recs, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func storageErr(op string, err error) error {
	return types.NewError(types.ErrStorageError, op+" failed").WithCause(err)
}
