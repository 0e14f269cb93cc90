package command

import (
	"context"
	"fmt"

	"github.com/learnhub/enrollment-hub/internal/domain/certificate"
	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// AMEND CERTIFICATE COMMAND
// Score/feedback amendment is the only mutation a certificate supports.
// ══════════════════════════════════════════════════════════════════════════════

// AmendCertificateCommand contains the data to amend a certificate.
type AmendCertificateCommand struct {
	// CertificateID is the certificate to amend.
	CertificateID string

	// Score replaces the score when non-nil.
	Score *float64

	// Feedback replaces the feedback when non-nil.
	Feedback *string
}

// Validate validates the command.
func (c AmendCertificateCommand) Validate() error {
	if c.CertificateID == "" {
		return shared.NewDomainError("certificate", "Amend", shared.ErrBadRequest, "certificate_id is required")
	}
	if c.Score == nil && c.Feedback == nil {
		return shared.NewDomainError("certificate", "Amend", shared.ErrBadRequest, "nothing to amend")
	}
	return nil
}

// AmendCertificateHandler handles the AmendCertificateCommand.
type AmendCertificateHandler struct {
	certificateRepo certificate.Repository
}

// NewAmendCertificateHandler creates a new AmendCertificateHandler.
func NewAmendCertificateHandler(certificateRepo certificate.Repository) *AmendCertificateHandler {
	return &AmendCertificateHandler{certificateRepo: certificateRepo}
}

// Handle executes the amend certificate command.
func (h *AmendCertificateHandler) Handle(ctx context.Context, cmd AmendCertificateCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	cert, err := h.certificateRepo.GetByID(ctx, cmd.CertificateID)
	if err != nil {
		return fmt.Errorf("amend_certificate: load certificate: %w", err)
	}

	if err := cert.Amend(cmd.Score, cmd.Feedback); err != nil {
		return err
	}

	if err := h.certificateRepo.Update(ctx, cert); err != nil {
		return fmt.Errorf("amend_certificate: persist certificate: %w", err)
	}

	return nil
}
