package files

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"genomed/pkg/config"
	"genomed/pkg/logger"
)

// Info describes a file the viewer may open.
type Info struct {
	Size      int64     `json:"size"`
	Modified  time.Time `json:"modified"`
	Name      string    `json:"name"`
	Extension string    `json:"extension"`
}

// Service answers whole-file reads and metadata lookups. Metadata is cached
// with a short TTL since the viewer polls it while a file is open.
type Service struct {
	maxWholeRead int64
	cache        *gocache.Cache
	logger       *logger.Logger
}

func NewService(cfg config.FilesConfig) *Service {
	return &Service{
		maxWholeRead: cfg.MaxWholeReadSize,
		cache:        gocache.New(cfg.InfoCacheTTL, cfg.InfoCacheCleanup),
		logger:       logger.WithField("component", "files"),
	}
}

// ReadWhole reads the entire file into memory. Files past the configured cap
// are rejected; the streaming path has no such cap.
func (s *Service) ReadWhole(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("file not found or unreadable: %w", err)
	}

	if info.Size() > s.maxWholeRead {
		return nil, fmt.Errorf("file too large for whole read: %d bytes (limit %d), use streaming", info.Size(), s.maxWholeRead)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	s.logger.Debug("whole file read", "path", path, "size", len(data))
	return data, nil
}

// Info returns metadata for the file at path.
func (s *Service) Info(path string) (Info, error) {
	if cached, found := s.cache.Get(path); found {
		if info, ok := cached.(Info); ok {
			s.logger.Debug("file info cache hit", "path", path)
			return info, nil
		}
	}

	stat, err := os.Stat(path)
	if err != nil {
		return Info{}, fmt.Errorf("file not found or unreadable: %w", err)
	}

	info := Info{
		Size:      stat.Size(),
		Modified:  stat.ModTime(),
		Name:      filepath.Base(path),
		Extension: filepath.Ext(path),
	}

	s.cache.SetDefault(path, info)

	return info, nil
}

// Invalidate drops any cached metadata for path. The watcher calls this when
// the file changes on disk.
func (s *Service) Invalidate(path string) {
	s.cache.Delete(path)
}
