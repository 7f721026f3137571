package services

import (
	"archive/zip"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/enrollhub/admitd/internal/common"
	"github.com/enrollhub/admitd/internal/cryptox"
	"github.com/enrollhub/admitd/internal/filex"
	"github.com/enrollhub/admitd/internal/logging"
	"github.com/enrollhub/admitd/internal/server/config"
	"github.com/enrollhub/admitd/internal/server/repositories/repomanager"
	"github.com/enrollhub/admitd/internal/server/storage"
	"github.com/google/uuid"
)

// ArtifactKind names one of the three required portfolio artifacts.
type ArtifactKind string

const (
	ArtifactCoverLetter     ArtifactKind = "cover_letter"
	ArtifactPortfolioLetter ArtifactKind = "portfolio_letter"
	ArtifactArchive         ArtifactKind = "portfolio_archive"
)

// RequiredArtifacts lists every artifact that must be staged before
// submission.
var RequiredArtifacts = []ArtifactKind{ArtifactCoverLetter, ArtifactPortfolioLetter, ArtifactArchive}

// PortfolioService runs the staging state machine
// Empty -> PartiallyStaged -> FullyStaged -> Packaged -> Submitted.
// Uploaded artifacts sit in a per-candidate cache directory; submission
// zips them, encrypts the bundle for the candidate+admins recipient set,
// uploads the ciphertext to the blob store, and clears the cache. No
// plaintext archive outlives the packaging window.
type PortfolioService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       storage.BlobStore
	cacheDir    string
	logger      logging.Logger
	locks       keyedMutex
}

func NewPortfolioService(db *sql.DB, m repomanager.RepositoryManager, blobs storage.BlobStore, cfg *config.Config, logger logging.Logger) *PortfolioService {
	return &PortfolioService{
		db:          db,
		repomanager: m,
		blobs:       blobs,
		cacheDir:    cfg.CacheDir,
		logger:      logger,
	}
}

func (s *PortfolioService) stagingDir(candidateID int64) string {
	return filepath.Join(s.cacheDir, strconv.FormatInt(candidateID, 10))
}

func validKind(kind ArtifactKind) bool {
	for _, k := range RequiredArtifacts {
		if k == kind {
			return true
		}
	}
	return false
}

// Stage stores one uploaded artifact in the candidate's cache directory,
// replacing any earlier upload of the same kind.
func (s *PortfolioService) Stage(ctx context.Context, candidateID int64, kind ArtifactKind, r io.Reader) error {
	if !validKind(kind) {
		return fmt.Errorf("unknown artifact kind %q", kind)
	}

	unlock := s.locks.lock(candidateID)
	defer unlock()

	dir, err := filex.EnsureDir(s.stagingDir(candidateID))
	if err != nil {
		s.logger.Error(ctx, "staging dir creation failed", "error", err)
		return common.ErrorInternal
	}
	if err := filex.WriteFileAtomic(filepath.Join(dir, string(kind)), r); err != nil {
		s.logger.Error(ctx, "artifact staging failed", "error", err)
		return common.ErrorInternal
	}
	return nil
}

// Staged reports which artifacts are currently in the cache.
func (s *PortfolioService) Staged(ctx context.Context, candidateID int64) (map[ArtifactKind]bool, error) {
	staged := make(map[ArtifactKind]bool, len(RequiredArtifacts))
	dir := s.stagingDir(candidateID)
	for _, kind := range RequiredArtifacts {
		if _, err := os.Stat(filepath.Join(dir, string(kind))); err == nil {
			staged[kind] = true
		} else if !errors.Is(err, os.ErrNotExist) {
			s.logger.Error(ctx, "staging cache stat failed", "error", err)
			return nil, common.ErrorInternal
		}
	}
	return staged, nil
}

// packageArtifacts zips the staged files into one archive with a
// deterministic entry order.
func packageArtifacts(dir, zipPath string) error {
	names := make([]string, 0, len(RequiredArtifacts))
	for _, kind := range RequiredArtifacts {
		names = append(names, string(kind))
	}
	sort.Strings(names)

	out, err := os.OpenFile(zipPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, name := range names {
		src, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			zw.Close()
			return err
		}
		entry, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			src.Close()
			zw.Close()
			return err
		}
		if _, err := io.Copy(entry, src); err != nil {
			src.Close()
			zw.Close()
			return err
		}
		src.Close()
	}
	return zw.Close()
}

func storageKey(candidateID int64) string {
	d := time.Now()
	return fmt.Sprintf("portfolios/%d/%d/%d/%d/%v", candidateID, d.Year(), d.Month(), d.Day(), uuid.New())
}

// Submit packages the staged artifacts, encrypts the bundle for the
// current recipient set, uploads it, and clears the staging cache. Fails
// with ErrIncompletePortfolio unless all three artifacts are staged.
// On a mid-submit failure, any partial portfolio state is the caller's to
// clean up via Discard.
func (s *PortfolioService) Submit(ctx context.Context, candidateID int64) error {
	unlock := s.locks.lock(candidateID)
	defer unlock()

	staged, err := s.Staged(ctx, candidateID)
	if err != nil {
		return err
	}
	for _, kind := range RequiredArtifacts {
		if !staged[kind] {
			return common.ErrIncompletePortfolio
		}
	}

	candidate, err := s.repomanager.Candidates(s.db).GetByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		s.logger.Error(ctx, "candidate lookup failed", "error", err)
		return common.ErrorInternal
	}
	adminKeys, err := s.repomanager.Admins(s.db).ListPublicKeys(ctx)
	if err != nil {
		s.logger.Error(ctx, "admin key listing failed", "error", err)
		return common.ErrorInternal
	}
	recipients := append([]string{candidate.PublicKey}, adminKeys...)

	dir := s.stagingDir(candidateID)
	zipPath := filepath.Join(dir, "bundle.zip")
	encPath := zipPath + ".enc"
	// neither intermediate survives this function
	defer os.Remove(zipPath)
	defer os.Remove(encPath)

	if err := packageArtifacts(dir, zipPath); err != nil {
		s.logger.Error(ctx, "portfolio packaging failed", "error", err)
		return common.ErrorInternal
	}
	if err := cryptox.EncryptFileWithRecipients(zipPath, encPath, recipients); err != nil {
		s.logger.Error(ctx, "portfolio encryption failed", "error", err)
		return common.ErrorInternal
	}

	enc, err := os.Open(encPath)
	if err != nil {
		s.logger.Error(ctx, "opening encrypted bundle failed", "error", err)
		return common.ErrorInternal
	}
	defer enc.Close()

	key := storageKey(candidateID)
	if err := s.blobs.Put(ctx, key, enc); err != nil {
		s.logger.Error(ctx, "portfolio upload failed", "error", err)
		return common.ErrorInternal
	}

	if err := s.repomanager.Portfolios(s.db).Upsert(ctx, candidateID, key); err != nil {
		s.logger.Error(ctx, "portfolio record upsert failed", "error", err)
		return common.ErrorInternal
	}

	if err := filex.RemoveDir(dir); err != nil {
		s.logger.Error(ctx, "staging cache cleanup failed", "error", err)
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "portfolio submitted", "candidate_id", candidateID, "storage_key", key)
	return nil
}

// Fetch downloads and decrypts the submitted archive into dst using the
// requester's private key. The decrypted file belongs to the caller.
func (s *PortfolioService) Fetch(ctx context.Context, candidateID int64, privateKey, dst string) error {
	record, err := s.repomanager.Portfolios(s.db).GetByCandidateID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrPortfolioNotFound
		}
		s.logger.Error(ctx, "portfolio lookup failed", "error", err)
		return common.ErrorInternal
	}

	blob, err := s.blobs.Get(ctx, record.StorageKey)
	if err != nil {
		s.logger.Error(ctx, "portfolio download failed", "error", err)
		return common.ErrorInternal
	}
	defer blob.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".fetch-*")
	if err != nil {
		return common.ErrorInternal
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, blob); err != nil {
		tmp.Close()
		s.logger.Error(ctx, "portfolio download failed", "error", err)
		return common.ErrorInternal
	}
	if err := tmp.Close(); err != nil {
		return common.ErrorInternal
	}

	if err := cryptox.DecryptFileWithPrivateKey(tmpName, dst, privateKey); err != nil {
		if errors.Is(err, common.ErrCryptoDecryptFailed) {
			return err
		}
		s.logger.Error(ctx, "portfolio decryption failed", "error", err)
		return common.ErrorInternal
	}
	return nil
}

// Discard is the compensating action after a failed submit or a withdrawn
// application: it clears the staging cache and removes any stored archive.
func (s *PortfolioService) Discard(ctx context.Context, candidateID int64) error {
	unlock := s.locks.lock(candidateID)
	defer unlock()

	if err := filex.RemoveDir(s.stagingDir(candidateID)); err != nil {
		s.logger.Error(ctx, "staging cache cleanup failed", "error", err)
		return common.ErrorInternal
	}

	record, err := s.repomanager.Portfolios(s.db).GetByCandidateID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		s.logger.Error(ctx, "portfolio lookup failed", "error", err)
		return common.ErrorInternal
	}

	if err := s.blobs.Delete(ctx, record.StorageKey); err != nil {
		s.logger.Error(ctx, "portfolio blob delete failed", "error", err)
		return common.ErrorInternal
	}
	if err := s.repomanager.Portfolios(s.db).Delete(ctx, candidateID); err != nil {
		s.logger.Error(ctx, "portfolio record delete failed", "error", err)
		return common.ErrorInternal
	}
	return nil
}
