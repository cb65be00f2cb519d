package thumbnails

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/phambaophuc/image-thumbnails/internal/config"
	"github.com/phambaophuc/image-thumbnails/internal/models"
	"github.com/phambaophuc/image-thumbnails/internal/services/cache"
	"github.com/phambaophuc/image-thumbnails/internal/services/processor"
	"github.com/phambaophuc/image-thumbnails/internal/services/storage"
	"github.com/phambaophuc/image-thumbnails/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrUnknownThumbnail is returned when a URL is requested for a thumbnail
// name or geometry that is not configured.
var ErrUnknownThumbnail = errors.New("unknown thumbnail")

// fallbackFormat is used for sources that can be decoded but not encoded.
const fallbackFormat = processor.FormatPNG

type URLOptions struct {
	SSL bool
}

// Service generates, deletes and resolves the configured set of thumbnails
// for originals kept in a storage backend.
type Service struct {
	backend     storage.Backend
	cache       cache.URLCache
	engine      *processor.Engine
	set         *config.ThumbnailSet
	allowed     []string
	maxSize     int64
	urlTTL      time.Duration
	cacheBuster string
	logger      *zap.Logger
}

// NewService wires a Service. urlCache may be nil, in which case URLs are
// built on every call.
func NewService(
	cfg *config.Config,
	backend storage.Backend,
	urlCache cache.URLCache,
	engine *processor.Engine,
	logger *zap.Logger,
) *Service {
	return &Service{
		backend:     backend,
		cache:       urlCache,
		engine:      engine,
		set:         cfg.Thumbnails.Set,
		allowed:     cfg.Storage.AllowedExtensions,
		maxSize:     cfg.Storage.MaxFileSize,
		urlTTL:      cfg.Thumbnails.URLCacheTTL,
		cacheBuster: cfg.Thumbnails.CacheBuster,
		logger:      logger,
	}
}

func (s *Service) Backend() storage.Backend { return s.backend }

// Names lists the configured thumbnail names in definition order.
func (s *Service) Names() []string {
	names := make([]string, len(s.set.Specs))
	for i, spec := range s.set.Specs {
		names[i] = spec.Name
	}
	return names
}

// Upload validates and stores an original, then generates its thumbnails.
// A name collision on a backend that refuses overwrites is retried once
// under a unique name.
func (s *Service) Upload(ctx context.Context, filename string, data []byte) (*models.UploadResponse, error) {
	key := storage.CleanKey(filename)
	if err := utils.ValidateExtension(key, s.allowed); err != nil {
		return nil, err
	}
	format, err := processor.ValidateImage(bytes.NewReader(data), s.maxSize)
	if err != nil {
		return nil, err
	}

	contentType := utils.DetectContentType(data)
	url, err := s.backend.Save(ctx, key, data, contentType)
	if errors.Is(err, storage.ErrConflict) {
		key = storage.UniqueKey(key)
		s.logger.Info("Original already exists, saving under a new name",
			zap.String("filename", filename),
			zap.String("key", key),
		)
		url, err = s.backend.Save(ctx, key, data, contentType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save original: %w", err)
	}

	thumbs, err := s.render(ctx, key, data)
	if err != nil {
		s.discard(context.WithoutCancel(ctx), key, thumbs)
		return nil, err
	}

	s.logger.Info("Image uploaded",
		zap.String("key", key),
		zap.String("format", format),
		zap.Int("thumbnails", len(thumbs)),
	)

	return &models.UploadResponse{
		Key:        key,
		URL:        url,
		Thumbnails: thumbs,
		UploadedAt: time.Now(),
	}, nil
}

// Generate renders every configured thumbnail of src and saves it next to
// originalKey. The source is decoded once and shared by all renders.
func (s *Service) Generate(ctx context.Context, originalKey string, src []byte) ([]models.ThumbnailResult, error) {
	results, err := s.render(ctx, originalKey, src)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// render saves every thumbnail of src. On failure the returned slice still
// holds the entries that were saved before the error; unsaved entries have
// an empty Key.
func (s *Service) render(ctx context.Context, originalKey string, src []byte) ([]models.ThumbnailResult, error) {
	img, srcFormat, err := s.engine.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}

	results := make([]models.ThumbnailResult, len(s.set.Specs))
	g, gctx := errgroup.WithContext(ctx)

	for i, spec := range s.set.Specs {
		g.Go(func() error {
			spec.Format = s.outputFormat(originalKey, srcFormat, spec)

			artifact, err := s.engine.Thumbnail(img, srcFormat, spec)
			if err != nil {
				return err
			}

			key := s.thumbKey(originalKey, spec)
			url, err := s.backend.Save(gctx, key, artifact.Data, artifact.Format.ContentType())
			if err != nil {
				return fmt.Errorf("failed to save thumbnail %q: %w", spec.Name, err)
			}

			results[i] = models.ThumbnailResult{
				Name:     spec.Name,
				Key:      key,
				URL:      url,
				Width:    artifact.Width,
				Height:   artifact.Height,
				Format:   string(artifact.Format),
				FileSize: int64(len(artifact.Data)),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// discard removes an original and whichever of its thumbnails were saved
// by a failed upload.
func (s *Service) discard(ctx context.Context, originalKey string, thumbs []models.ThumbnailResult) {
	keys := []string{originalKey}
	for _, t := range thumbs {
		if t.Key != "" {
			keys = append(keys, t.Key)
		}
	}

	deleted, err := storage.DeleteAll(ctx, s.backend, keys)
	if err != nil {
		s.logger.Warn("Failed to clean up after thumbnail failure",
			zap.String("key", originalKey),
			zap.Strings("deleted", deleted),
			zap.Error(err),
		)
	}
}

// Regenerate re-renders the thumbnails of an original already in storage.
func (s *Service) Regenerate(ctx context.Context, originalKey string) ([]models.ThumbnailResult, error) {
	data, err := s.backend.Open(ctx, originalKey)
	if err != nil {
		return nil, fmt.Errorf("failed to open original: %w", err)
	}
	results, err := s.Generate(ctx, originalKey, data)
	if err != nil {
		return nil, err
	}
	s.forgetURLs(ctx, originalKey)
	return results, nil
}

// Delete removes every thumbnail of originalKey and then the original.
// Thumbnails that cannot be deleted are logged and skipped.
func (s *Service) Delete(ctx context.Context, originalKey string) error {
	keys := make([]string, len(s.set.Specs))
	for i, spec := range s.set.Specs {
		keys[i] = s.thumbKey(originalKey, spec)
	}

	if _, err := storage.DeleteAll(ctx, s.backend, keys); err != nil {
		s.logger.Warn("Some thumbnails could not be deleted",
			zap.String("key", originalKey),
			zap.Error(err),
		)
	}

	if err := s.backend.Delete(ctx, originalKey); err != nil {
		return fmt.Errorf("failed to delete original: %w", err)
	}

	s.forgetURLs(ctx, originalKey)
	return nil
}

// URL returns the public URL of one thumbnail, looked up by name or by
// "WxH" geometry.
func (s *Service) URL(ctx context.Context, originalKey, thumbName string, opts URLOptions) (string, error) {
	spec, ok := s.set.Find(thumbName)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownThumbnail, thumbName)
	}

	cacheKey := s.cacheKey(originalKey, spec.Name, opts.SSL)
	if s.cache != nil {
		url, hit, err := s.cache.Get(ctx, cacheKey)
		if err != nil {
			s.logger.Warn("URL cache lookup failed", zap.String("cache_key", cacheKey), zap.Error(err))
		} else if hit {
			return url, nil
		}
	}

	url := s.buildURL(s.thumbKey(originalKey, spec), opts)

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, url, s.urlTTL); err != nil {
			s.logger.Warn("Failed to cache URL", zap.String("cache_key", cacheKey), zap.Error(err))
		}
	}
	return url, nil
}

// URLs returns the URL of every configured thumbnail keyed by name.
func (s *Service) URLs(ctx context.Context, originalKey string, opts URLOptions) (map[string]string, error) {
	urls := make(map[string]string, len(s.set.Specs))
	for _, spec := range s.set.Specs {
		url, err := s.URL(ctx, originalKey, spec.Name, opts)
		if err != nil {
			return nil, err
		}
		urls[spec.Name] = url
	}
	return urls, nil
}

func (s *Service) buildURL(key string, opts URLOptions) string {
	url := s.backend.URL(key)
	if s.cacheBuster != "" {
		sep := "?"
		if strings.Contains(url, "?") {
			sep = "&"
		}
		url += sep + "cbust=" + s.cacheBuster
	}
	if opts.SSL {
		if rest, ok := strings.CutPrefix(url, "http://"); ok {
			url = "https://" + rest
		}
	}
	return url
}

func (s *Service) cacheKey(originalKey, thumbName string, ssl bool) string {
	key := fmt.Sprintf("Thumbcache_%s_%s", s.backend.URL(originalKey), thumbName)
	if ssl {
		key += "_ssl"
	}
	return key
}

func (s *Service) forgetURLs(ctx context.Context, originalKey string) {
	if s.cache == nil {
		return
	}
	keys := make([]string, 0, 2*len(s.set.Specs))
	for _, spec := range s.set.Specs {
		keys = append(keys,
			s.cacheKey(originalKey, spec.Name, false),
			s.cacheKey(originalKey, spec.Name, true),
		)
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("Failed to drop cached URLs", zap.String("key", originalKey), zap.Error(err))
	}
}

// outputFormat picks the thumbnail format: the spec's override, then the
// set-wide override, then the original's extension, then the decoded format.
func (s *Service) outputFormat(originalKey, srcFormat string, spec processor.ThumbnailSpec) string {
	for _, candidate := range []string{
		spec.Format,
		s.set.Format,
		path.Ext(originalKey),
		srcFormat,
	} {
		if candidate == "" {
			continue
		}
		if f, err := processor.ParseFormat(candidate); err == nil {
			return string(f)
		}
	}
	return string(fallbackFormat)
}

// thumbKey is the storage key of one thumbnail. The extension only changes
// when an override is configured or the original's extension cannot be
// written.
func (s *Service) thumbKey(originalKey string, spec processor.ThumbnailSpec) string {
	override := spec.Format
	if override == "" {
		override = s.set.Format
	}
	if override == "" {
		if _, err := processor.ParseFormat(path.Ext(originalKey)); err == nil {
			return storage.ThumbFilename(originalKey, spec.Name, "")
		}
		override = string(fallbackFormat)
	}
	f, err := processor.ParseFormat(override)
	if err != nil {
		return storage.ThumbFilename(originalKey, spec.Name, override)
	}
	return storage.ThumbFilename(originalKey, spec.Name, f.Extension())
}
