package repository

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/core-coin/stips/internal/models"
	"github.com/core-coin/stips/pkg/logger"
	"github.com/core-coin/stips/pkg/validation"
)

// PostgresDB is the durable models.Repository. The profiles table doubles as
// the enumeration index and the normalized column as the case-insensitive
// reservation set; tip records are keyed by the normalized handle string and
// are never deleted.
type PostgresDB struct {
	logger *logger.Logger

	Conn *gorm.DB
}

func NewPostgresDB(user, password, dbname, host string, port int, logger *logger.Logger) (*PostgresDB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		host, user, password, dbname, port)

	// Configure GORM logger to suppress "record not found" messages
	gormLogger := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %s", err)
	}

	if err := db.AutoMigrate(&models.Profile{}, &models.TipRecord{}, &models.EscrowBalance{}, &models.SocialLink{}, &models.JarState{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate models: %s", err)
	}
	logger.Info("Successfully connected to PostgreSQL!")
	return &PostgresDB{Conn: db, logger: logger}, nil
}

func (db *PostgresDB) Close() error {
	sqlDB, err := db.Conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %s", err)
	}
	return sqlDB.Close()
}

func (db *PostgresDB) CreateProfile(profile *models.Profile) error {
	err := db.Conn.Transaction(func(tx *gorm.DB) error {
		var existing models.Profile
		if err := tx.Where("normalized = ?", profile.Normalized).First(&existing).Error; err == nil {
			return models.ErrHandleTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(profile).Error
	})
	if err != nil {
		if errors.Is(err, models.ErrHandleTaken) {
			return models.ErrHandleTaken
		}
		return fmt.Errorf("failed to create profile: %s", err)
	}
	return nil
}

func (db *PostgresDB) DeleteProfile(handle string) error {
	normalized := validation.NormalizeHandle(handle)
	err := db.Conn.Transaction(func(tx *gorm.DB) error {
		var profile models.Profile
		if err := tx.Where("normalized = ?", normalized).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrNotFound
			}
			return err
		}
		if err := tx.Where("handle = ?", profile.Handle).Delete(&models.SocialLink{}).Error; err != nil {
			return err
		}
		// Tip records are intentionally left in place.
		return tx.Delete(&profile).Error
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		return fmt.Errorf("failed to delete profile: %s", err)
	}
	return nil
}

func (db *PostgresDB) GetProfile(handle string) (*models.Profile, error) {
	var profile models.Profile
	if err := db.Conn.Where("normalized = ?", validation.NormalizeHandle(handle)).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %s", err)
	}
	return &profile, nil
}

func (db *PostgresDB) GetHandleByOwner(owner string) (string, error) {
	var profile models.Profile
	if err := db.Conn.Where("owner = ?", owner).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", models.ErrNotFound
		}
		return "", fmt.Errorf("failed to get handle by owner: %s", err)
	}
	return profile.Handle, nil
}

func (db *PostgresDB) HandleReserved(normalized string) (bool, error) {
	var count int64
	if err := db.Conn.Model(&models.Profile{}).Where("normalized = ?", normalized).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check reservation: %s", err)
	}
	return count > 0, nil
}

func (db *PostgresDB) Handles() ([]string, error) {
	var handles []string
	if err := db.Conn.Model(&models.Profile{}).Pluck("handle", &handles).Error; err != nil {
		return nil, fmt.Errorf("failed to list handles: %s", err)
	}
	return handles, nil
}

func (db *PostgresDB) HandleCount() (int64, error) {
	var count int64
	if err := db.Conn.Model(&models.Profile{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count handles: %s", err)
	}
	return count, nil
}

func (db *PostgresDB) SettleTip(handle string, payout uint64, record *models.TipRecord) error {
	normalized := validation.NormalizeHandle(handle)
	err := db.Conn.Transaction(func(tx *gorm.DB) error {
		var profile models.Profile
		if err := tx.Where("normalized = ?", normalized).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrNotFound
			}
			return err
		}
		if profile.TotalReceived > math.MaxUint64-payout {
			return models.ErrAmountOverflow
		}
		profile.TotalReceived += payout
		if err := tx.Save(&profile).Error; err != nil {
			return err
		}
		record.Handle = profile.Handle
		return tx.Create(record).Error
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrAmountOverflow) {
			return err
		}
		return fmt.Errorf("failed to settle tip: %s", err)
	}
	return nil
}

func (db *PostgresDB) Tips(handle string) ([]*models.TipRecord, error) {
	var records []*models.TipRecord
	if err := db.Conn.Where("lower(handle) = ?", validation.NormalizeHandle(handle)).Order("id asc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to get tips: %s", err)
	}
	return records, nil
}

func (db *PostgresDB) TipsSlice(handle string, offset, limit int) ([]*models.TipRecord, error) {
	if offset < 0 || limit <= 0 {
		return []*models.TipRecord{}, nil
	}
	var records []*models.TipRecord
	if err := db.Conn.Where("lower(handle) = ?", validation.NormalizeHandle(handle)).
		Order("id desc").Offset(offset).Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to get tips slice: %s", err)
	}
	return records, nil
}

func (db *PostgresDB) TipCount(handle string) (int64, error) {
	var count int64
	if err := db.Conn.Model(&models.TipRecord{}).Where("lower(handle) = ?", validation.NormalizeHandle(handle)).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count tips: %s", err)
	}
	return count, nil
}

func (db *PostgresDB) CreditEscrow(identity string, amount uint64) error {
	err := db.Conn.Transaction(func(tx *gorm.DB) error {
		var balance models.EscrowBalance
		if err := tx.Where("identity = ?", identity).First(&balance).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			balance = models.EscrowBalance{Identity: identity}
			if err := tx.Create(&balance).Error; err != nil {
				return err
			}
		}
		if balance.Amount > math.MaxUint64-amount {
			return models.ErrAmountOverflow
		}
		balance.Amount += amount
		return tx.Save(&balance).Error
	})
	if err != nil {
		if errors.Is(err, models.ErrAmountOverflow) {
			return models.ErrAmountOverflow
		}
		return fmt.Errorf("failed to credit escrow: %s", err)
	}
	return nil
}

func (db *PostgresDB) DebitEscrow(identity string) (uint64, error) {
	var amount uint64
	err := db.Conn.Transaction(func(tx *gorm.DB) error {
		var balance models.EscrowBalance
		if err := tx.Where("identity = ?", identity).First(&balance).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		amount = balance.Amount
		balance.Amount = 0
		return tx.Save(&balance).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to debit escrow: %s", err)
	}
	return amount, nil
}

func (db *PostgresDB) EscrowBalance(identity string) (uint64, error) {
	var balance models.EscrowBalance
	if err := db.Conn.Where("identity = ?", identity).First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get escrow balance: %s", err)
	}
	return balance.Amount, nil
}

func (db *PostgresDB) JarState() (*models.JarState, error) {
	var state models.JarState
	if err := db.Conn.Where("id = ?", 1).First(&state).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get jar state: %s", err)
	}
	return &state, nil
}

func (db *PostgresDB) SaveJarState(state *models.JarState) error {
	state.ID = 1
	if err := db.Conn.Save(state).Error; err != nil {
		return fmt.Errorf("failed to save jar state: %s", err)
	}
	return nil
}

func (db *PostgresDB) AddLink(link *models.SocialLink) error {
	err := db.Conn.Transaction(func(tx *gorm.DB) error {
		var existing models.SocialLink
		if err := tx.Where("handle = ? AND key = ?", link.Handle, link.Key).First(&existing).Error; err == nil {
			existing.Value = link.Value
			return tx.Save(&existing).Error
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(link).Error
	})
	if err != nil {
		return fmt.Errorf("failed to add link: %s", err)
	}
	return nil
}

func (db *PostgresDB) RemoveLink(handle, key string) error {
	result := db.Conn.Where("handle = ? AND key = ?", handle, key).Delete(&models.SocialLink{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove link: %s", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (db *PostgresDB) Links(handle string) ([]*models.SocialLink, error) {
	var links []*models.SocialLink
	if err := db.Conn.Where("handle = ?", handle).Order("id asc").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to get links: %s", err)
	}
	return links, nil
}

func (db *PostgresDB) LinkCount(handle string) (int64, error) {
	var count int64
	if err := db.Conn.Model(&models.SocialLink{}).Where("handle = ?", handle).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count links: %s", err)
	}
	return count, nil
}
