package service

import (
	"context"
	"fmt"
	"os"
	"path"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stockpilot/backend-go/internal/cache"
	"github.com/stockpilot/backend-go/internal/domain"
	"github.com/stockpilot/backend-go/internal/ingest"
	"github.com/stockpilot/backend-go/internal/repository"
	"github.com/stockpilot/backend-go/internal/storage"
)

// IngestService processes uploaded sales files: parse and validate, upsert
// items and daily sales, then archive the raw file when object storage is
// configured.
type IngestService struct {
	items   repository.ItemRepository
	sales   repository.SalesRepository
	cache   cache.AlertsCache
	archive storage.ObjectStorage
}

func NewIngestService(items repository.ItemRepository, sales repository.SalesRepository, cacheImpl cache.AlertsCache, archive storage.ObjectStorage) *IngestService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopAlertsCache()
	}

	return &IngestService{
		items:   items,
		sales:   sales,
		cache:   cacheImpl,
		archive: archive,
	}
}

// ProcessSalesFile ingests one uploaded .csv or .xlsx sales file.
func (s *IngestService) ProcessSalesFile(ctx context.Context, file *domain.UploadedFile) (*domain.IngestResult, error) {
	records, err := ingest.ReadRows(file.Path)
	if err != nil {
		return nil, err
	}

	parsed, err := ingest.ParseSales(records)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sales file %s: %w", file.Filename, err)
	}

	for sku, events := range parsed.Events {
		// Register unknown SKUs with zero stock; operators set real
		// levels through the forecast endpoint or the seed CLI.
		existing, err := s.items.GetBySKU(ctx, sku)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			if _, err := s.items.Upsert(ctx, &domain.Item{SKU: sku, Name: sku}); err != nil {
				return nil, err
			}
		}

		if err := s.sales.UpsertDailySales(ctx, sku, events); err != nil {
			return nil, err
		}
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("ingest: cache invalidation failed")
	}

	s.archiveUpload(ctx, file)

	return &domain.IngestResult{
		Filename:    file.Filename,
		RowsRead:    parsed.RowsRead,
		RowsSkipped: parsed.RowsSkipped,
		Items:       len(parsed.Events),
		ProcessedAt: time.Now(),
	}, nil
}

// ProcessSalesFiles ingests several uploads concurrently, one goroutine per
// file.
func (s *IngestService) ProcessSalesFiles(ctx context.Context, files []*domain.UploadedFile) ([]*domain.IngestResult, error) {
	var (
		wg       sync.WaitGroup
		resultCh = make(chan *domain.IngestResult, len(files))
		errCh    = make(chan error, len(files))
	)

	for _, file := range files {
		wg.Add(1)
		go func(f *domain.UploadedFile) {
			defer wg.Done()

			result, err := s.ProcessSalesFile(ctx, f)
			if err != nil {
				errCh <- fmt.Errorf("error processing file %s: %w", f.Filename, err)
				return
			}

			resultCh <- result
		}(file)
	}

	go func() {
		wg.Wait()
		close(resultCh)
		close(errCh)
	}()

	results := make([]*domain.IngestResult, 0, len(files))
	for result := range resultCh {
		results = append(results, result)
	}

	if len(errCh) > 0 {
		var errs []error
		for err := range errCh {
			errs = append(errs, err)
		}
		return nil, fmt.Errorf("errors processing files: %v", errs)
	}

	return results, nil
}

func (s *IngestService) archiveUpload(ctx context.Context, file *domain.UploadedFile) {
	if s.archive == nil {
		return
	}

	data, err := os.ReadFile(file.Path)
	if err != nil {
		log.Warn().Err(err).Str("file", file.Filename).Msg("ingest: could not read upload for archiving")
		return
	}

	key := path.Join("sales-uploads", time.Now().UTC().Format("2006/01/02"), file.Filename)
	if err := s.archive.UploadObject(ctx, key, data); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("ingest: archive upload failed")
		return
	}

	log.Info().Str("key", key).Msg("ingest: raw upload archived")
}
