package billing

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/invoiceapp/backend/internal/domain/billing"
	"github.com/invoiceapp/backend/internal/domain/shared"
	csvimport "github.com/invoiceapp/backend/internal/infrastructure/import"
	"github.com/invoiceapp/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Client CSV columns. name and email are required, the rest are
// optional and imported verbatim.
const (
	importColName    = "name"
	importColEmail   = "email"
	importColCompany = "company"
	importColAddress = "address"
	importColPhone   = "phone"
	importColNotes   = "notes"
)

const importMaxErrors = 100

// ClientImportResult summarizes a client CSV import run
type ClientImportResult struct {
	TotalRows    int                  `json:"total_rows"`
	ImportedRows int                  `json:"imported_rows"`
	SkippedRows  int                  `json:"skipped_rows"`
	ErrorRows    int                  `json:"error_rows"`
	Errors       []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated  bool                 `json:"is_truncated,omitempty"`
}

// ImportCSV bulk-creates clients from a CSV file. Rows that duplicate
// an existing client's email are skipped rather than rejected, so the
// same file can be re-imported safely. Invalid rows are reported but
// do not abort the run.
func (s *ClientService) ImportCSV(ctx context.Context, ownerID uuid.UUID, r io.Reader) (*ClientImportResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ClientService", "ImportCSV",
		telemetry.WithAttribute(telemetry.SpanAttrOwnerID, ownerID.String()))
	defer span.End()

	reader, err := csvimport.NewReader(r)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, importInputError(err)
	}
	if err := reader.ReadHeader(); err != nil {
		telemetry.RecordError(span, err)
		return nil, importInputError(err)
	}
	if missing := reader.MissingColumns([]string{importColName, importColEmail}); len(missing) > 0 {
		return nil, shared.NewDomainError("INVALID_INPUT",
			"CSV file is missing required columns: "+strings.Join(missing, ", "))
	}

	collection := csvimport.NewErrorCollection(importMaxErrors)
	result := &ClientImportResult{}
	seenEmails := make(map[string]int)

	for {
		row, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.TotalRows++
			result.ErrorRows++
			collection.Add(csvimport.NewRowError(reader.Line(), "", csvimport.CodeMalformedRow, err.Error()))
			continue
		}
		if row.IsEmpty() {
			continue
		}
		result.TotalRows++

		switch s.importRow(ctx, ownerID, row, seenEmails, collection) {
		case importCreated:
			result.ImportedRows++
		case importSkipped:
			result.SkippedRows++
		case importFailed:
			result.ErrorRows++
		}
	}

	result.Errors = collection.Errors()
	result.IsTruncated = collection.IsTruncated()

	s.logger.Info("client CSV import finished",
		zap.String("owner_id", ownerID.String()),
		zap.Int("total_rows", result.TotalRows),
		zap.Int("imported", result.ImportedRows),
		zap.Int("skipped", result.SkippedRows),
		zap.Int("errors", result.ErrorRows))

	return result, nil
}

type importOutcome int

const (
	importCreated importOutcome = iota
	importSkipped
	importFailed
)

// importRow validates and persists a single CSV row. Rows whose email
// already belongs to one of the owner's clients are skipped, leaving
// the existing record untouched.
func (s *ClientService) importRow(ctx context.Context, ownerID uuid.UUID, row *csvimport.Row, seenEmails map[string]int, collection *csvimport.ErrorCollection) importOutcome {
	name := row.Get(importColName)
	email := row.Get(importColEmail)

	valid := true
	if name == "" {
		collection.AddRequiredError(row.Line, importColName)
		valid = false
	}
	if email == "" {
		collection.AddRequiredError(row.Line, importColEmail)
		valid = false
	} else if !strings.Contains(email, "@") {
		collection.AddFormatError(row.Line, importColEmail, "email@domain.com", email)
		valid = false
	}
	if !valid {
		return importFailed
	}

	emailKey := strings.ToLower(email)
	if _, dup := seenEmails[emailKey]; dup {
		collection.AddDuplicateError(row.Line, importColEmail, email)
		return importFailed
	}
	seenEmails[emailKey] = row.Line

	if _, err := s.clientRepo.FindByEmailForOwner(ctx, ownerID, email); err == nil {
		// Existing client, skip silently so re-imports are idempotent
		return importSkipped
	} else if !errors.Is(err, shared.ErrNotFound) {
		collection.Add(csvimport.NewRowError(row.Line, importColEmail, csvimport.CodeInvalidFile, err.Error()))
		return importFailed
	}

	client, err := billing.NewClient(ownerID, name, email,
		row.Get(importColCompany), row.Get(importColAddress), row.Get(importColPhone), row.Get(importColNotes))
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			collection.Add(csvimport.NewRowError(row.Line, "", domainErr.Code, domainErr.Message))
		} else {
			collection.Add(csvimport.NewRowError(row.Line, "", csvimport.CodeMalformedRow, err.Error()))
		}
		return importFailed
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		s.logger.Warn("failed to save imported client",
			zap.String("owner_id", ownerID.String()),
			zap.Int("row", row.Line),
			zap.Error(err))
		collection.Add(csvimport.NewRowError(row.Line, "", csvimport.CodeInvalidFile, "failed to save client"))
		return importFailed
	}
	return importCreated
}

// importInputError maps parser failures to domain errors so handlers
// render them as 400s instead of 500s
func importInputError(err error) error {
	switch {
	case errors.Is(err, csvimport.ErrEmptyFile):
		return shared.NewDomainError("INVALID_INPUT", "CSV file is empty")
	case errors.Is(err, csvimport.ErrMissingHeader):
		return shared.NewDomainError("INVALID_INPUT", "CSV file is missing a header row")
	case errors.Is(err, csvimport.ErrInvalidEncoding):
		return shared.NewDomainError("INVALID_INPUT", "CSV file must be UTF-8 encoded")
	default:
		return err
	}
}
