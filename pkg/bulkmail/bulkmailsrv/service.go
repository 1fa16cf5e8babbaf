// Package bulkmailsrv exposes the batch use cases: run a batch from an
// uploaded sheet, re-run the failed ones, and list failed outcomes.
package bulkmailsrv

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/bulkmail"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/errx"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/fsx"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/logx"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/sheetx"
)

type Service struct {
	orchestrator *bulkmail.Orchestrator
	outcomes     bulkmail.OutcomeRepository
	files        fsx.FileSystem
}

func NewService(orchestrator *bulkmail.Orchestrator, outcomes bulkmail.OutcomeRepository, files fsx.FileSystem) *Service {
	return &Service{
		orchestrator: orchestrator,
		outcomes:     outcomes,
		files:        files,
	}
}

// RunUploadBatch decodes the uploaded workbook, archives a copy and runs the
// batch to completion. It returns the number of recipients processed.
func (s *Service) RunUploadBatch(ctx context.Context, filename string, upload io.Reader) (int, error) {
	data, err := io.ReadAll(upload)
	if err != nil {
		return 0, errx.Validation("failed to read uploaded file").WithDetail("cause", err.Error())
	}

	rows, err := sheetx.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, err
	}

	s.archive(ctx, filename, data)

	return s.orchestrator.Run(ctx, recipientsFromRows(rows))
}

// RunFailedRetryBatch re-drives every recipient with a failed outcome. The
// retried deliveries append new outcome records; the original failures stay
// in the log.
func (s *Service) RunFailedRetryBatch(ctx context.Context) (int, error) {
	failed, err := s.FailedOutcomes(ctx)
	if err != nil {
		return 0, err
	}

	recipients := make([]bulkmail.Recipient, 0, len(failed))
	for _, rec := range failed {
		recipients = append(recipients, rec.Recipient())
	}

	return s.orchestrator.Run(ctx, recipients)
}

// FailedOutcomes lists every failed record in the outcome log, oldest first.
func (s *Service) FailedOutcomes(ctx context.Context) ([]bulkmail.OutcomeRecord, error) {
	records, err := s.outcomes.FindByStatus(ctx, bulkmail.OutcomeFailed)
	if err != nil {
		return nil, bulkmail.ErrOutcomeQuery(err)
	}
	return records, nil
}

// archive keeps a copy of the uploaded sheet. Best effort: an archive
// failure is logged and the batch runs anyway.
func (s *Service) archive(ctx context.Context, filename string, data []byte) {
	if s.files == nil {
		return
	}

	path := s.files.Join("bulkmail", fmt.Sprintf("%s-%s", time.Now().UTC().Format("20060102T150405"), filename))
	if err := s.files.WriteFile(ctx, path, data); err != nil {
		logx.WithError(err).WithField("path", path).Warn("bulkmail: failed to archive uploaded sheet")
	}
}

// recipientsFromRows maps sheet rows to recipients. Columns are positional:
// name, email, code. The first row is treated as a header and skipped when
// its email cell does not look like an address.
func recipientsFromRows(rows []sheetx.Row) []bulkmail.Recipient {
	recipients := make([]bulkmail.Recipient, 0, len(rows))
	for i, row := range rows {
		email := strings.TrimSpace(row.Cell(1))
		if i == 0 && !strings.Contains(email, "@") {
			continue
		}
		recipients = append(recipients, bulkmail.Recipient{
			Name:  strings.TrimSpace(row.Cell(0)),
			Email: email,
			Code:  strings.TrimSpace(row.Cell(2)),
		})
	}
	return recipients
}
