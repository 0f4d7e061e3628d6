package bootstrap

import (
	"context"

	auditapp "warden/contexts/moderation-safety/audit-trail/application"
	pipelineports "warden/contexts/moderation-safety/moderation-pipeline/ports"
	ledgercommands "warden/contexts/moderation-safety/strike-ledger/application/commands"
	ledgerentities "warden/contexts/moderation-safety/strike-ledger/domain/entities"
	ledgerports "warden/contexts/moderation-safety/strike-ledger/ports"
)

// Modules never import each other. These clients translate one module's
// outbound port into another module's inbound use case.

type pipelineAuditClient struct {
	service auditapp.Service
}

func (c pipelineAuditClient) AppendAudit(ctx context.Context, record pipelineports.AuditRecord) error {
	_, err := c.service.Append(ctx, auditapp.AppendCommand{
		ActorID:  record.ActorID,
		Action:   record.Action,
		TargetID: record.TargetID,
		Details:  record.Details,
	})
	return err
}

type ledgerAuditClient struct {
	service auditapp.Service
}

func (c ledgerAuditClient) AppendAudit(ctx context.Context, record ledgerports.AuditRecord) error {
	_, err := c.service.Append(ctx, auditapp.AppendCommand{
		ActorID:  record.ActorID,
		Action:   record.Action,
		TargetID: record.TargetID,
		Details:  record.Details,
	})
	return err
}

// strikeClient files rejected uploads as upload_abuse warnings.
type strikeClient struct {
	recordWarning ledgercommands.RecordWarningUseCase
}

func (c strikeClient) RecordUploadViolation(ctx context.Context, request pipelineports.StrikeRequest) error {
	_, err := c.recordWarning.Execute(ctx, ledgercommands.RecordWarningCommand{
		UserID:   request.UserID,
		Category: string(ledgerentities.CategoryUploadAbuse),
		Message:  request.Message,
		Evidence: request.Evidence,
	})
	return err
}

var _ pipelineports.AuditAppender = pipelineAuditClient{}
var _ ledgerports.AuditAppender = ledgerAuditClient{}
var _ pipelineports.StrikeRecorder = strikeClient{}
