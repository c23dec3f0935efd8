package store

import (
	"context"
	"errors"
	"strconv"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// userRow users 表模型
type userRow struct {
	UserID       uint   `gorm:"primaryKey;autoIncrement;column:user_id"`
	Username     string `gorm:"uniqueIndex;size:64"`
	PasswordHash string `gorm:"size:128"`
	Score        int    `gorm:"default:0;index:idx_users_score,sort:desc"`
}

func (userRow) TableName() string { return "users" }

// SQL postgres 实现，身份与排行榜共用一个库
type SQL struct {
	db *gorm.DB
}

// OpenSQL 打开 postgres 连接并迁移表结构
func OpenSQL(dsn string) (*SQL, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&userRow{}); err != nil {
		return nil, err
	}
	return &SQL{db: db}, nil
}

func (s *SQL) Register(ctx context.Context, username, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	row := userRow{Username: username, PasswordHash: string(hash)}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return &User{ID: strconv.FormatUint(uint64(row.UserID), 10), Username: username}, nil
}

func (s *SQL) Authenticate(ctx context.Context, username, password string) (*User, error) {
	var row userRow
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &User{
		ID:       strconv.FormatUint(uint64(row.UserID), 10),
		Username: row.Username,
		Score:    row.Score,
	}, nil
}

func (s *SQL) AddScore(ctx context.Context, userID string, delta int) error {
	res := s.db.WithContext(ctx).Model(&userRow{}).
		Where("user_id = ?", userID).
		Update("score", gorm.Expr("score + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *SQL) TopN(ctx context.Context, limit, offset int) ([]LeaderboardEntry, int, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&userRow{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []userRow
	err := s.db.WithContext(ctx).
		Order("score DESC, username ASC").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	out := make([]LeaderboardEntry, 0, len(rows))
	for i, r := range rows {
		out = append(out, LeaderboardEntry{
			Rank:     offset + i + 1,
			UserID:   strconv.FormatUint(uint64(r.UserID), 10),
			Username: r.Username,
			Score:    r.Score,
		})
	}
	return out, int(total), nil
}
