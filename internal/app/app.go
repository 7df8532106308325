// Package app is the application layer between the CLI and the fic
// Service. It constructs all dependencies from config, exposes
// high-level operations that accept raw string paths, and manages the
// store lifecycle on Close.
package app

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"fic-go/internal/config"
	"fic-go/internal/database"
	"fic-go/internal/digest"
	"fic-go/internal/encryption"
	"fic-go/internal/fic"
	"fic-go/internal/fs"
	"fic-go/internal/model"
	"fic-go/internal/vault"
)

// App wires a fully constructed Service with its store and logging.
type App struct {
	cfg       *config.Config
	store     fic.RecordStore
	fsmgr     fic.FilesystemManager
	encryptor fic.Encryptor
	service   *fic.Service
	clock     fic.Clock
	idgen     fic.IDGenerator
	run       *CheckRun
	logCloser io.Closer
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "Add", "VerifyAll").
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	fsmgr := fs.NewOSFilesystemManager()

	store, err := database.NewStoreFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating record store: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	archives := vault.NewRouter(cfg.Export)

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logCloser, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	clock := fic.RealClock{}
	idgen := fic.UUIDGenerator{}
	svc := fic.NewService(store, fsmgr, digest.NewSHA256(), archives, enc,
		&slogAdapter{l: logger}, clock, idgen, cfg.Verify.Workers)

	return &App{
		cfg:       cfg,
		store:     store,
		fsmgr:     fsmgr,
		encryptor: enc,
		service:   svc,
		clock:     clock,
		idgen:     idgen,
		run:       NewCheckRun(operation, ""),
		logCloser: logCloser,
	}, nil
}

// persistRun saves the check run to the database, giving it a UUID.
// This should only be called for DB-mutating commands.
func (a *App) persistRun(parameters string) error {
	if a.run.Persisted() {
		return nil // already persisted
	}
	a.run.ID = a.idgen.New()
	a.run.Parameters = parameters
	a.run.StartedAt = a.clock.Now()
	err := a.store.CreateOperation(&model.CheckOperation{
		ID:         a.run.ID,
		Operation:  a.run.Operation,
		Parameters: a.run.Parameters,
		StartedAt:  a.run.StartedAt,
		Status:     a.run.Status,
	})
	if err != nil {
		return fmt.Errorf("persisting check run: %w", err)
	}
	return nil
}

// fail marks the current run as errored and passes the error through.
func (a *App) fail(err error) error {
	if err != nil {
		a.run.Status = "error"
	}
	return err
}

// Add resolves the given path and tracks it, computing its digest from
// current content. Returns the record and whether an existing record
// was re-baselined.
func (a *App) Add(rawPath, description string) (*model.Record, bool, error) {
	if err := a.persistRun(rawPath); err != nil {
		return nil, false, a.fail(err)
	}
	p, err := a.fsmgr.Resolve(rawPath)
	if err != nil {
		return nil, false, a.fail(fmt.Errorf("%w: %s: %v", fic.ErrFileUnreadable, rawPath, err))
	}
	rec, rebaselined, err := a.service.Add(p, description)
	return rec, rebaselined, a.fail(err)
}

// Verify checks one identity. The path may no longer exist on disk —
// resolution uses filepath.Abs only, since a missing file is exactly
// what verify is for.
func (a *App) Verify(rawPath string) (*fic.VerificationResult, error) {
	if err := a.persistRun(rawPath); err != nil {
		return nil, a.fail(err)
	}
	identity, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, a.fail(fmt.Errorf("resolving path: %w", err))
	}
	res, err := a.service.Verify(identity)
	return res, a.fail(err)
}

// VerifyAll verifies every tracked record.
func (a *App) VerifyAll() (*fic.VerifySummary, error) {
	if err := a.persistRun(""); err != nil {
		return nil, a.fail(err)
	}
	sum, err := a.service.VerifyAll()
	return sum, a.fail(err)
}

// Remove stops tracking an identity.
func (a *App) Remove(rawPath string) error {
	if err := a.persistRun(rawPath); err != nil {
		return a.fail(err)
	}
	identity, err := filepath.Abs(rawPath)
	if err != nil {
		return a.fail(fmt.Errorf("resolving path: %w", err))
	}
	return a.fail(a.service.Remove(identity))
}

// List returns all records in identity order.
func (a *App) List() ([]*model.Record, error) {
	return a.service.List()
}

// Export serializes the store to the destination reference.
func (a *App) Export(dest string, encrypt bool) (int, error) {
	return a.service.Export(dest, encrypt)
}

// Import loads an archive into the store per the strategy.
// passphrase is consulted only when decrypt is true.
func (a *App) Import(src string, strategy fic.MergeStrategy, decrypt bool, passphrase string) (int, error) {
	if err := a.persistRun(fmt.Sprintf("%s %s", src, strategy)); err != nil {
		return 0, a.fail(err)
	}
	var dec fic.DecryptionContext
	if decrypt {
		var err error
		dec, err = a.service.Unlock(passphrase)
		if err != nil {
			return 0, a.fail(fmt.Errorf("unlocking private key: %w", err))
		}
	}
	n, err := a.service.Import(src, strategy, dec)
	return n, a.fail(err)
}

// History returns the most recent mutating operations, newest first.
func (a *App) History(limit int) ([]*model.CheckOperation, error) {
	return a.service.History(limit)
}

// Close finalizes the check run and closes all resources.
func (a *App) Close() error {
	var firstErr error

	if a.run.Persisted() {
		if err := a.store.FinishOperation(a.run.ID, a.clock.Now(), a.run.Status); err != nil {
			firstErr = fmt.Errorf("finishing check run: %w", err)
		}
	}

	if err := a.store.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing record store: %w", err)
	}

	if a.logCloser != nil {
		a.logCloser.Close()
	}

	return firstErr
}
