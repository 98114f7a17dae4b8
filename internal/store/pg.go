package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bonesdao/onboarding/internal/domain"
	"github.com/bonesdao/onboarding/internal/logger"
	"github.com/bonesdao/onboarding/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance.
// The connection pool is owned by the caller.
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// Zero values fall back to the defaults of NormalizeConnectionPoolSettings.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 10
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns <= 0 {
		maxOpenConns = 10
	}
	if maxIdleConns <= 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime <= 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime <= 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	maxIdleConns = min(maxIdleConns, maxOpenConns)

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// persistenceError wraps a database failure so callers can match domain.ErrPersistence
func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistence, op, err)
}

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint violation
const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique constraint violation,
// whether or not the connection was opened with TranslateError
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// escapeLike escapes LIKE wildcards so user input matches literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Ping checks the database connection
func (s *pgStore) Ping(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
		return persistenceError("failed to ping database", err)
	}
	return nil
}

// GetSubmissionByAddress retrieves the active submission of a wallet address
func (s *pgStore) GetSubmissionByAddress(ctx context.Context, walletAddress string) (*schema.Submission, error) {
	var submission schema.Submission
	err := s.db.WithContext(ctx).
		Where("wallet_address = ?", domain.NormalizeAddress(walletAddress)).
		First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, persistenceError("failed to get submission", err)
	}
	if err := submission.Validate(); err != nil {
		return nil, err
	}
	return &submission, nil
}

// CreateSubmission inserts a pending submission for an address with no blocking row
func (s *pgStore) CreateSubmission(ctx context.Context, input CreateSubmissionInput) (*schema.Submission, error) {
	address := domain.NormalizeAddress(input.WalletAddress)
	submission := schema.Submission{
		WalletAddress: address,
		Discord:       input.Contacts.Discord,
		WeChat:        input.Contacts.WeChat,
		Telegram:      input.Contacts.Telegram,
		Forum:         input.Contacts.Forum,
		Referrer:      input.Referrer,
		Status:        domain.SubmissionStatusPending,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the existing row so a concurrent reviewer cannot reopen it mid-way
		var existing schema.Submission
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("wallet_address = ?", address).
			First(&existing).Error
		switch {
		case err == nil:
			switch existing.Status {
			case domain.SubmissionStatusPending:
				return domain.ErrAlreadyPending
			case domain.SubmissionStatusApproved:
				return domain.ErrAlreadyApproved
			}
			// A rejected row is replaced so the address keeps a single active row
			if err := tx.Delete(&schema.Submission{}, existing.ID).Error; err != nil {
				return persistenceError("failed to replace rejected submission", err)
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return persistenceError("failed to lock submission", err)
		}

		if err := tx.Create(&submission).Error; err != nil {
			if isUniqueViolation(err) {
				// Lost the race against a concurrent submit for the same address
				return domain.ErrAlreadyPending
			}
			return persistenceError("failed to create submission", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &submission, nil
}

// ListSubmissions lists submissions newest first
func (s *pgStore) ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]schema.Submission, error) {
	query := s.db.WithContext(ctx).Model(&schema.Submission{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		query = query.Where(
			"wallet_address ILIKE @p OR discord ILIKE @p OR wechat ILIKE @p OR telegram ILIKE @p OR forum ILIKE @p OR referrer ILIKE @p",
			map[string]interface{}{"p": pattern},
		)
	}

	query = query.Order("created_at DESC").Order("id DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var submissions []schema.Submission
	if err := query.Find(&submissions).Error; err != nil {
		return nil, persistenceError("failed to list submissions", err)
	}

	for _, submission := range submissions {
		if err := submission.Validate(); err != nil {
			return nil, err
		}
	}

	return submissions, nil
}

// TransitionSubmission applies a review edge and archives approved rows in the same transaction
func (s *pgStore) TransitionSubmission(ctx context.Context, input TransitionSubmissionInput) (*schema.Submission, error) {
	var updated schema.Submission

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current schema.Submission
		if err := tx.Where("id = ?", input.ID).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrSubmissionNotFound
			}
			return persistenceError("failed to get submission", err)
		}

		if !domain.CanTransition(current.Status, input.To) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current.Status, input.To)
		}

		// Conditional on the observed status so only one of two concurrent reviewers wins
		now := time.Now().UTC()
		result := tx.Model(&schema.Submission{}).
			Where("id = ? AND status = ?", input.ID, current.Status).
			Updates(map[string]interface{}{
				"status":      input.To,
				"reviewed_by": input.Reviewer,
				"reviewed_at": now,
				"updated_at":  now,
			})
		if result.Error != nil {
			return persistenceError("failed to update submission status", result.Error)
		}
		if result.RowsAffected != 1 {
			return fmt.Errorf("%w: submission %d changed concurrently", domain.ErrInvalidTransition, input.ID)
		}

		if err := tx.Where("id = ?", input.ID).First(&updated).Error; err != nil {
			return persistenceError("failed to read back submission", err)
		}
		if err := updated.Validate(); err != nil {
			return err
		}

		if input.To != domain.SubmissionStatusApproved {
			return nil
		}

		snapshot, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("failed to marshal submission snapshot: %w", err)
		}

		archived := schema.OnboardedIdentity{
			SubmissionID:  updated.ID,
			WalletAddress: updated.WalletAddress,
			Discord:       updated.Discord,
			WeChat:        updated.WeChat,
			Telegram:      updated.Telegram,
			Forum:         updated.Forum,
			Referrer:      updated.Referrer,
			ApprovedBy:    input.Reviewer,
			Snapshot:      datatypes.JSON(snapshot),
			ApprovedAt:    now,
		}
		if err := tx.Create(&archived).Error; err != nil {
			// Returning the error rolls back the status update as well
			return persistenceError("failed to archive approved submission", err)
		}

		logger.DebugCtx(ctx, "Archived approved submission",
			zap.Uint64("submission_id", updated.ID),
			zap.String("wallet_address", updated.WalletAddress),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// ListOnboardedIdentities lists the approval archive newest first
func (s *pgStore) ListOnboardedIdentities(ctx context.Context, limit, offset int) ([]schema.OnboardedIdentity, error) {
	query := s.db.WithContext(ctx).Order("approved_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var identities []schema.OnboardedIdentity
	if err := query.Find(&identities).Error; err != nil {
		return nil, persistenceError("failed to list onboarded identities", err)
	}
	return identities, nil
}

// GetAdminByUsername retrieves an admin by username
func (s *pgStore) GetAdminByUsername(ctx context.Context, username string) (*schema.Admin, error) {
	var admin schema.Admin
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, persistenceError("failed to get admin", err)
	}
	return &admin, nil
}

// GetAdminByAddress retrieves an admin by linked wallet address
func (s *pgStore) GetAdminByAddress(ctx context.Context, walletAddress string) (*schema.Admin, error) {
	var admin schema.Admin
	err := s.db.WithContext(ctx).
		Where("wallet_address = ?", domain.NormalizeAddress(walletAddress)).
		First(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, persistenceError("failed to get admin by address", err)
	}
	return &admin, nil
}

// UpsertAdmin creates or updates an admin by username
func (s *pgStore) UpsertAdmin(ctx context.Context, input UpsertAdminInput) (*schema.Admin, error) {
	admin := schema.Admin{
		Username:     input.Username,
		PasswordHash: input.PasswordHash,
	}
	if input.WalletAddress != nil {
		address := domain.NormalizeAddress(*input.WalletAddress)
		admin.WalletAddress = &address
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoUpdates: clause.AssignmentColumns([]string{"password_hash", "wallet_address"}),
		}).
		Create(&admin).Error
	if err != nil {
		return nil, persistenceError("failed to upsert admin", err)
	}

	return s.GetAdminByUsername(ctx, input.Username)
}

// CreateTransactionRecord inserts a ledger row in a single transaction.
// created is false when the tx hash was already recorded.
func (s *pgStore) CreateTransactionRecord(ctx context.Context, input CreateTransactionRecordInput) (*schema.TransactionRecord, bool, error) {
	var record schema.TransactionRecord
	var created bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, inserted, err := insertTransactionRecord(tx, input)
		if err != nil {
			return err
		}
		record = *row
		created = inserted
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return &record, created, nil
}

// insertTransactionRecord inserts a ledger row inside tx, returning the existing
// row and false when the tx hash is already recorded
func insertTransactionRecord(tx *gorm.DB, input CreateTransactionRecordInput) (*schema.TransactionRecord, bool, error) {
	if input.TxHash != nil {
		existing, err := findTransactionRecord(tx, *input.TxHash)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			return existing, false, nil
		}
		if err := tx.SavePoint("insert_record").Error; err != nil {
			return nil, false, persistenceError("failed to create savepoint", err)
		}
	}

	record := schema.TransactionRecord{
		ReviewerAddress:  domain.NormalizeAddress(input.ReviewerAddress),
		RecipientAddress: domain.NormalizeAddress(input.RecipientAddress),
		RecipientForum:   input.RecipientForum,
		AssetKind:        input.AssetKind,
		Amount:           input.Amount,
		TxHash:           input.TxHash,
		ChainID:          input.ChainID,
	}
	if err := tx.Create(&record).Error; err != nil {
		if input.TxHash != nil && isUniqueViolation(err) {
			// A concurrent writer recorded the same hash after the lookup
			if err := tx.RollbackTo("insert_record").Error; err != nil {
				return nil, false, persistenceError("failed to roll back to savepoint", err)
			}
			existing, err := findTransactionRecord(tx, *input.TxHash)
			if err != nil {
				return nil, false, err
			}
			if existing != nil {
				return existing, false, nil
			}
		}
		return nil, false, persistenceError("failed to create transaction record", err)
	}

	// transferred_at is assigned by the database
	if err := tx.Where("id = ?", record.ID).First(&record).Error; err != nil {
		return nil, false, persistenceError("failed to read back transaction record", err)
	}
	if err := record.Validate(); err != nil {
		return nil, false, err
	}

	return &record, true, nil
}

// findTransactionRecord looks up a ledger row by tx hash, nil if none
func findTransactionRecord(tx *gorm.DB, txHash string) (*schema.TransactionRecord, error) {
	var existing schema.TransactionRecord
	err := tx.Where("tx_hash = ?", txHash).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, persistenceError("failed to look up transaction record", err)
	}
	return &existing, nil
}

// ListTransactionRecords lists ledger rows newest first
func (s *pgStore) ListTransactionRecords(ctx context.Context, filter TransactionRecordFilter) ([]schema.TransactionRecord, error) {
	query := s.db.WithContext(ctx).Model(&schema.TransactionRecord{})

	if filter.RecipientAddress != "" {
		query = query.Where("recipient_address = ?", domain.NormalizeAddress(filter.RecipientAddress))
	}
	if filter.AssetKind != "" {
		query = query.Where("asset_kind = ?", filter.AssetKind)
	}
	if filter.Since != nil {
		query = query.Where("transferred_at >= ?", *filter.Since)
	}
	if filter.Until != nil {
		query = query.Where("transferred_at < ?", *filter.Until)
	}

	query = query.Order("transferred_at DESC").Order("id DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var records []schema.TransactionRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, persistenceError("failed to list transaction records", err)
	}

	for _, record := range records {
		if err := record.Validate(); err != nil {
			return nil, err
		}
	}

	return records, nil
}

// CreatePendingTransfer tracks an unconfirmed transfer
func (s *pgStore) CreatePendingTransfer(ctx context.Context, input CreatePendingTransferInput) (*schema.PendingTransfer, error) {
	pending := schema.PendingTransfer{
		TxHash:           strings.ToLower(input.TxHash),
		ChainID:          input.ChainID,
		ReviewerAddress:  domain.NormalizeAddress(input.ReviewerAddress),
		RecipientAddress: domain.NormalizeAddress(input.RecipientAddress),
		RecipientForum:   input.RecipientForum,
		AssetKind:        input.AssetKind,
		Amount:           input.Amount,
		Status:           schema.PendingTransferStatusPending,
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tx_hash"}},
			DoNothing: true,
		}).
		Create(&pending).Error
	if err != nil {
		return nil, persistenceError("failed to create pending transfer", err)
	}

	var stored schema.PendingTransfer
	if err := s.db.WithContext(ctx).Where("tx_hash = ?", pending.TxHash).First(&stored).Error; err != nil {
		return nil, persistenceError("failed to read back pending transfer", err)
	}
	return &stored, nil
}

// GetPendingTransfersForChecking returns unresolved transfers, least recently checked first
func (s *pgStore) GetPendingTransfersForChecking(ctx context.Context, limit int) ([]schema.PendingTransfer, error) {
	var pending []schema.PendingTransfer
	err := s.db.WithContext(ctx).
		Where("status = ?", schema.PendingTransferStatusPending).
		Order("last_checked_at ASC NULLS FIRST").
		Order("id ASC").
		Limit(limit).
		Find(&pending).Error
	if err != nil {
		return nil, persistenceError("failed to get pending transfers", err)
	}
	return pending, nil
}

// TouchPendingTransfer stamps the last check time of a pending transfer
func (s *pgStore) TouchPendingTransfer(ctx context.Context, id uint64) error {
	err := s.db.WithContext(ctx).
		Model(&schema.PendingTransfer{}).
		Where("id = ?", id).
		Update("last_checked_at", time.Now().UTC()).Error
	if err != nil {
		return persistenceError("failed to touch pending transfer", err)
	}
	return nil
}

// ConfirmPendingTransfer moves a pending transfer into the ledger in one transaction
func (s *pgStore) ConfirmPendingTransfer(ctx context.Context, id uint64) (*schema.TransactionRecord, error) {
	var record *schema.TransactionRecord

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pending schema.PendingTransfer
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND status = ?", id, schema.PendingTransferStatusPending).
			First(&pending).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return persistenceError("failed to lock pending transfer", err)
		}

		txHash := pending.TxHash
		row, created, err := insertTransactionRecord(tx, CreateTransactionRecordInput{
			ReviewerAddress:  pending.ReviewerAddress,
			RecipientAddress: pending.RecipientAddress,
			RecipientForum:   pending.RecipientForum,
			AssetKind:        pending.AssetKind,
			Amount:           pending.Amount,
			TxHash:           &txHash,
			ChainID:          pending.ChainID,
		})
		if err != nil {
			return err
		}
		if created {
			record = row
		}

		if err := tx.Delete(&schema.PendingTransfer{}, pending.ID).Error; err != nil {
			return persistenceError("failed to delete pending transfer", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// FailPendingTransfer marks a pending transfer as reverted on the ledger
func (s *pgStore) FailPendingTransfer(ctx context.Context, id uint64) error {
	err := s.db.WithContext(ctx).
		Model(&schema.PendingTransfer{}).
		Where("id = ? AND status = ?", id, schema.PendingTransferStatusPending).
		Updates(map[string]interface{}{
			"status":          schema.PendingTransferStatusFailed,
			"last_checked_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return persistenceError("failed to mark pending transfer failed", err)
	}
	return nil
}
