package lifecycle

import (
	"context"

	"golang.org/x/sync/errgroup"

	"credrelay/internal/credential/models"
	"credrelay/internal/platform/tracer"
)

// FetchPending collects every pending request across all lifecycle
// types. The per-type fetches run concurrently into isolated result
// slots; results are stitched together in the fixed type order so the
// output is deterministic regardless of completion order.
func (p *Processor) FetchPending(ctx context.Context) (result []models.LifecycleRequest, err error) {
	ctx, span := p.tracer.Start(ctx, tracer.SpanLifecyclePending)
	defer func() { span.End(err) }()

	slots := make([][]models.LifecycleRequest, len(models.RequestTypes))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range models.RequestTypes {
		g.Go(func() error {
			requests, err := p.boundary.PendingRequests(gctx, t)
			if err != nil {
				return err
			}
			slots[i] = requests
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}

	for i, t := range models.RequestTypes {
		if p.metrics != nil {
			p.metrics.PendingFetched.WithLabelValues(string(t)).Add(float64(len(slots[i])))
		}
		result = append(result, slots[i]...)
	}
	for i := range result {
		p.annotateSchema(ctx, &result[i])
	}
	return result, nil
}

// annotateSchema attaches the schema identity to a pending request for
// the review listing. Best effort: a body that cannot be opened or
// decoded is logged and listed without schema fields, never dropped.
// The decision path reports its own errors for such bodies.
func (p *Processor) annotateSchema(ctx context.Context, req *models.LifecycleRequest) {
	if len(p.cfg.PrivateKey) != 32 {
		return
	}
	var body map[string]any
	if err := p.codec.DecryptWith(req.EncryptedBody, p.cfg.PrivateKey, &body); err != nil {
		p.logSchemaSkip(ctx, req, err)
		return
	}
	payload, err := models.DecodeRequestBody(req.Type, body)
	if err != nil {
		p.logSchemaSkip(ctx, req, err)
		return
	}
	schemaID, schemaVersion, _, err := payload.SchemaRef()
	if err != nil {
		p.logSchemaSkip(ctx, req, err)
		return
	}
	req.SchemaID = schemaID
	req.SchemaVersion = schemaVersion
}

func (p *Processor) logSchemaSkip(ctx context.Context, req *models.LifecycleRequest, err error) {
	if p.logger == nil {
		return
	}
	p.logger.DebugContext(ctx, "pending request body not readable, listing without schema info",
		"request_id", req.ID,
		"request_type", string(req.Type),
		"error", err,
	)
}

// BulkOutcome tallies a sweep of rejections.
type BulkOutcome struct {
	Rejected int
	Failed   int
	Errors   []error
}

// RejectAll rejects every given pending request sequentially. A failed
// rejection does not stop the sweep; failures are tallied and returned
// so the caller can report partial completion.
func (p *Processor) RejectAll(ctx context.Context, requests []models.LifecycleRequest) BulkOutcome {
	ctx, span := p.tracer.Start(ctx, tracer.SpanLifecycleReject,
		tracer.Int("request_count", len(requests)),
	)
	var outcome BulkOutcome
	defer func() { span.End(nil) }()

	for _, req := range requests {
		if req.Status != models.StatusPending {
			continue
		}
		if err := p.boundary.RejectRequest(ctx, req.Type, req.ID); err != nil {
			outcome.Failed++
			outcome.Errors = append(outcome.Errors, err)
			if p.logger != nil {
				p.logger.WarnContext(ctx, "bulk rejection failed",
					"request_id", req.ID,
					"request_type", string(req.Type),
					"error", err,
				)
			}
			if p.metrics != nil {
				p.metrics.BulkRejections.WithLabelValues("failed").Inc()
			}
			continue
		}
		outcome.Rejected++
		if p.metrics != nil {
			p.metrics.BulkRejections.WithLabelValues("rejected").Inc()
		}
	}
	return outcome
}
