package common

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/samber/do/v2"
	bolt "go.etcd.io/bbolt"
)

const (
	SettingsBucket = "settings"

	SettingLanguage  = "language"
	SettingTheme     = "theme"
	SettingLastStake = "last-stake"
)

type DatabaseService struct {
	DB *bolt.DB
}

func NewDatabaseService(i do.Injector) (*DatabaseService, error) {
	dataDir := do.MustInvokeNamed[string](i, "data-dir")

	err := os.MkdirAll(dataDir, 0750)
	if err != nil {
		return nil, fmt.Errorf("failed to create database path: %w", err)
	}

	dbPath := path.Join(dataDir, "suidrift.db")

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range []string{
			SettingsBucket,
		} {
			_, err := tx.CreateBucketIfNotExists([]byte(bucket))
			if err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", bucket, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database buckets: %w", err)
	}

	return &DatabaseService{
		DB: db,
	}, nil
}

func (s *DatabaseService) Shutdown() error {
	//nolint:wrapcheck
	return s.DB.Close()
}

// GetSetting returns the stored value for key, or _default when unset.
func (s *DatabaseService) GetSetting(key string, _default string) string {
	result := _default

	_ = s.DB.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(SettingsBucket))
		if bucket == nil {
			return nil
		}

		value := bucket.Get([]byte(key))
		if len(value) > 0 {
			result = string(value)
		}

		return nil
	})

	return result
}

func (s *DatabaseService) PutSetting(key string, value string) error {
	err := s.DB.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(SettingsBucket))
		if bucket == nil {
			return fmt.Errorf("failed to find %s bucket", SettingsBucket)
		}

		//nolint:wrapcheck
		return bucket.Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("failed to store setting %s: %w", key, err)
	}

	return nil
}
