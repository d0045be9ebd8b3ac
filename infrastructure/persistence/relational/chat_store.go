package relational

import (
	"context"
	"fmt"

	"canvaschat/domain/core/entities"
	"canvaschat/domain/core/valueobjects"
	pkgerrors "canvaschat/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"
)

// Open connects to a relational database through gorm.
// driver is "sqlite" or "postgres".
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("open", err)
	}
	return db, nil
}

// Migrate creates or updates the chat tables
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&chatNodeRow{}, &chatMessageRow{}); err != nil {
		return pkgerrors.NewDatabaseError("migrate", err)
	}
	return nil
}

// ChatStore implements ports.ChatStore on top of gorm
type ChatStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewChatStore creates a new gorm chat store
func NewChatStore(db *gorm.DB, logger *zap.Logger) *ChatStore {
	return &ChatStore{
		db:     db,
		logger: logger.With(zap.String("store", "sql")),
	}
}

// GetOwners implements ports.NodeOwnerReader
func (s *ChatStore) GetOwners(ctx context.Context, ids []valueobjects.PersistedID) (map[valueobjects.PersistedID]valueobjects.UserID, error) {
	owners := make(map[valueobjects.PersistedID]valueobjects.UserID, len(ids))
	if len(ids) == 0 {
		return owners, nil
	}

	var rows []chatNodeRow
	if err := s.db.WithContext(ctx).
		Model(&chatNodeRow{}).
		Select("id", "owner_id").
		Where("id IN ?", valueobjects.PersistedIDStrings(ids)).
		Find(&rows).Error; err != nil {
		s.logger.Error("Failed to query node owners", zap.Int("nodes", len(ids)), zap.Error(err))
		return nil, pkgerrors.NewDatabaseError("get owners", err)
	}

	for _, row := range rows {
		owners[valueobjects.PersistedID(row.ID)] = valueobjects.UserID(row.OwnerID)
	}
	return owners, nil
}

// ListByNodes implements ports.MessageReader
func (s *ChatStore) ListByNodes(ctx context.Context, ids []valueobjects.PersistedID) ([]*entities.Message, error) {
	if len(ids) == 0 {
		return []*entities.Message{}, nil
	}

	var rows []*chatMessageRow
	if err := s.db.WithContext(ctx).
		Model(&chatMessageRow{}).
		Where("node_id IN ?", valueobjects.PersistedIDStrings(ids)).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		s.logger.Error("Failed to query messages", zap.Int("nodes", len(ids)), zap.Error(err))
		return nil, pkgerrors.NewDatabaseError("list messages", err)
	}

	messages := make([]*entities.Message, 0, len(rows))
	for _, row := range rows {
		msg, err := row.toEntity()
		if err != nil {
			s.logger.Error("Malformed message row",
				zap.String("messageID", row.ID),
				zap.Error(err),
			)
			return nil, pkgerrors.NewDatabaseError("decode message "+row.ID, err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// SaveNode upserts a node
func (s *ChatStore) SaveNode(ctx context.Context, node *entities.ChatNode) error {
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(nodeRowFrom(node)).Error; err != nil {
		return pkgerrors.NewDatabaseError("save node", err)
	}
	return nil
}

// SaveMessage inserts a message, assigning an id when it has none
func (s *ChatStore) SaveMessage(ctx context.Context, message *entities.Message) error {
	row := messageRowFrom(message)
	if row.ID == "" {
		row.ID = uuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return pkgerrors.NewDatabaseError("save message", err)
	}
	return nil
}
