package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"filemart/internal/client"
	"filemart/internal/identity"
	"filemart/internal/model"
	"filemart/internal/repository"

	"github.com/klauspost/compress/zip"
)

// DownloadService gates file retrieval on the purchase ledger. It fails
// closed: a ledger read error denies, it is never read as "not purchased".
type DownloadService interface {
	// Authorize returns a time-limited retrieval URL for one product.
	Authorize(ctx context.Context, principal identity.Principal, productID string) (string, error)
	// ArchiveAll streams every purchased file into one zip archive,
	// appending file by file rather than materializing them in memory.
	ArchiveAll(ctx context.Context, principal identity.Principal, w io.Writer) error
}

type downloadServiceImpl struct {
	purchaseRepo repository.PurchaseRepository
	productRepo  repository.ProductRepository
	downloadRepo repository.DownloadRepository
	storage      client.Storage
	handleTTL    time.Duration
}

func NewDownloadService(
	purchaseRepo repository.PurchaseRepository,
	productRepo repository.ProductRepository,
	downloadRepo repository.DownloadRepository,
	storage client.Storage,
	handleTTL time.Duration,
) DownloadService {
	return &downloadServiceImpl{
		purchaseRepo: purchaseRepo,
		productRepo:  productRepo,
		downloadRepo: downloadRepo,
		storage:      storage,
		handleTTL:    handleTTL,
	}
}

func (s *downloadServiceImpl) Authorize(ctx context.Context, principal identity.Principal, productID string) (string, error) {
	email, ok := principal.LedgerEmail()
	if !ok {
		// Guests and anonymous visitors never own a purchase.
		return "", model.ErrIdentityRequired
	}

	purchased, err := s.purchaseRepo.HasPurchased(ctx, email, productID)
	if err != nil {
		// Fail closed: an unavailable ledger denies, it does not leak.
		return "", fmt.Errorf("%w: ledger read: %v", model.ErrUpstream, err)
	}
	if !purchased {
		return "", model.ErrNotEntitled
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return "", fmt.Errorf("find product: %w", err)
	}

	url, err := s.storage.RetrievalURL(product.StoragePath, s.handleTTL)
	if err != nil {
		return "", fmt.Errorf("%w: retrieval handle: %v", model.ErrUpstream, err)
	}

	s.recordDownload(email, productID)

	return url, nil
}

func (s *downloadServiceImpl) ArchiveAll(ctx context.Context, principal identity.Principal, w io.Writer) error {
	email, ok := principal.LedgerEmail()
	if !ok {
		return model.ErrIdentityRequired
	}

	purchases, err := s.purchaseRepo.ListByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("%w: ledger read: %v", model.ErrUpstream, err)
	}
	if len(purchases) == 0 {
		return model.ErrNotEntitled
	}

	zw := zip.NewWriter(w)

	for _, purchase := range purchases {
		product, err := s.productRepo.FindByID(ctx, purchase.ProductID)
		if err != nil {
			return fmt.Errorf("find product %s: %w", purchase.ProductID, err)
		}

		if err := s.appendToArchive(zw, product); err != nil {
			return err
		}

		s.recordDownload(email, purchase.ProductID)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish archive: %w", err)
	}

	return nil
}

// appendToArchive copies one stored object into the archive. Streaming
// copy, one open object at a time, so memory stays bounded regardless of
// purchase history size.
func (s *downloadServiceImpl) appendToArchive(zw *zip.Writer, product *model.Product) error {
	obj, err := s.storage.Open(product.StoragePath)
	if err != nil {
		return fmt.Errorf("%w: open object %s: %v", model.ErrUpstream, product.StoragePath, err)
	}
	defer obj.Close()

	entry, err := zw.CreateHeader(&zip.FileHeader{
		Name:     product.StoragePath,
		Method:   zip.Deflate,
		Modified: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("archive entry %s: %w", product.StoragePath, err)
	}

	if _, err := io.Copy(entry, obj); err != nil {
		return fmt.Errorf("%w: stream object %s: %v", model.ErrUpstream, product.StoragePath, err)
	}

	return nil
}

// recordDownload appends audit history after a handle is handed out.
// Best-effort by contract: a history failure never blocks the download.
func (s *downloadServiceImpl) recordDownload(email, productID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.downloadRepo.Append(ctx, email, productID); err != nil {
			log.Printf("record download email=%s product=%s: %v", email, productID, err)
		}
	}()
}
